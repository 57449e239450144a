package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/catalog"
	"github.com/ExtCrs/extcourses/core/lesson"
	"github.com/ExtCrs/extcourses/core/user"
	"github.com/ExtCrs/extcourses/storage/database"
)

const (
	CourseNo = "c1"
	Lang     = "ru"
)

func CreateUser(t *testing.T, repo user.Repository, name, email, role, orgID string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		OrgID:     orgID,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// OpenDB returns a migrated in-memory sqlite database, closed when the test ends.
func OpenDB(t *testing.T) *sqlx.DB {
	db, err := database.Open(core.NewTestConfig())
	if err != nil {
		t.Fatalf("openDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate() failed: %v", err)
	}
	return db
}

// Catalog serves course c1:
//   - lesson 1: write "1", read "2", pic "3"
//   - lesson 2: write "4"
//   - lesson 3: read "5"
//   - lesson 4: write "6", write "7"
func Catalog() catalog.Catalog {
	fsys := fstest.MapFS{
		"tasks/ru/c1.json": {Data: []byte(`[
			{"id": 1, "lesson_id": 1, "type": "write", "question": "Опишите свой день", "num": 1},
			{"id": 2, "lesson_id": 1, "type": "read", "question": "Прочитайте параграф", "num": 2},
			{"id": 3, "lesson_id": 1, "type": "pic", "question": "Нарисуйте дом", "num": 3},
			{"id": 4, "lesson_id": 2, "type": "write", "question": "Перескажите", "num": 1},
			{"id": 5, "lesson_id": 3, "type": "read", "question": "Прочитайте главу", "num": 1},
			{"id": 6, "lesson_id": 4, "type": "write", "question": "Ответьте на вопрос 1", "num": 1},
			{"id": 7, "lesson_id": 4, "type": "write", "question": "Ответьте на вопрос 2", "num": 2}
		]`)},
		"tasks/en/c1.json": {Data: []byte(`[
			{"id": 1, "lesson_id": 1, "type": "write", "question": "Describe your day", "num": 1},
			{"id": 2, "lesson_id": 1, "type": "read", "question": "Read the paragraph", "num": 2},
			{"id": 3, "lesson_id": 1, "type": "pic", "question": "Draw a house", "num": 3},
			{"id": 4, "lesson_id": 2, "type": "write", "question": "Retell", "num": 1},
			{"id": 5, "lesson_id": 3, "type": "read", "question": "Read the chapter", "num": 1}
		]`)},
	}
	return catalog.NewFSCatalog(fsys, Lang)
}

func Scope() lesson.Scope {
	return lesson.Scope{CourseNo: CourseNo, Lang: Lang}
}

// Drawing returns a stored pic answer holding one stroke through points.
func Drawing(points ...[2]float64) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf(`{"x":%g,"y":%g}`, p[0], p[1]))
	}
	return `[{"drawMode":true,"strokeColor":"#000000","strokeWidth":4,"paths":[` +
		strings.Join(parts, ",") +
		`],"startTimestamp":0,"endTimestamp":0}]`
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records every entry.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warning", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("critical", msg, args) }

// Levels lists the level of every entry, in order.
func (l *Logger) Levels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	levels := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		levels = append(levels, e.Level)
	}
	return levels
}

// Notifier records every event and fails with Err when set.
type Notifier struct {
	mu     sync.Mutex
	Events []lesson.Event
	Err    error
}

var _ lesson.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(_ context.Context, ev lesson.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, ev)
	return n.Err
}

func (n *Notifier) Kinds() []lesson.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]lesson.EventKind, 0, len(n.Events))
	for _, ev := range n.Events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// NewValidator returns a validator with every custom tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	lesson.InitValidators(validate, translator)
	return validate, translator
}
