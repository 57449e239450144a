package catalog

import (
	"context"
	"encoding/json"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Catalog supplies ordered task definitions of a course.
type Catalog interface {
	// Tasks falls back to the default language when lang has no data.
	// No data in either language yields an empty list, not an error.
	Tasks(ctx context.Context, lang, courseID string) ([]Task, error)
}

// FSCatalog reads tasks/{lang}/{courseID}.json files. Parsed files are cached.
type FSCatalog struct {
	fsys        fs.FS
	defaultLang string

	mu    sync.RWMutex
	cache map[string][]Task
}

var _ Catalog = (*FSCatalog)(nil)

func NewFSCatalog(fsys fs.FS, defaultLang string) *FSCatalog {
	return &FSCatalog{
		fsys:        fsys,
		defaultLang: defaultLang,
		cache:       make(map[string][]Task),
	}
}

func (c *FSCatalog) Tasks(ctx context.Context, lang, courseID string) ([]Task, error) {
	cacheKey := lang + "/" + courseID
	c.mu.RLock()
	tasks, ok := c.cache[cacheKey]
	c.mu.RUnlock()
	if ok {
		return tasks, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tasks, found, err := c.load(lang, courseID)
	if err != nil {
		return nil, err
	}
	if !found && lang != c.defaultLang {
		if tasks, found, err = c.load(c.defaultLang, courseID); err != nil {
			return nil, err
		}
	}
	if !found {
		tasks = []Task{}
	}

	c.mu.Lock()
	c.cache[cacheKey] = tasks
	c.mu.Unlock()
	return tasks, nil
}

func (c *FSCatalog) load(lang, courseID string) ([]Task, bool, error) {
	if !validSegment(lang) || !validSegment(courseID) {
		return nil, false, nil
	}
	fp := path.Join("tasks", lang, courseID+".json")
	data, err := fs.ReadFile(c.fsys, fp)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "reading %s", fp)
	}

	var tasks []Task
	if err = json.Unmarshal(data, &tasks); err != nil {
		return nil, false, errors.Wrapf(err, "parsing %s", fp)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, true, nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
