package inmemdb

import (
	"sync"

	"github.com/ExtCrs/extcourses/core/lesson"
	"github.com/ExtCrs/extcourses/core/user"
)

type (
	// DB keeps every table in memory. Used by tests and the local demo setup.
	DB struct {
		lesson     *lessonTable
		user       *userTable
		preference *preferenceTable
	}

	lessonTable struct {
		table map[lesson.Key]*lesson.Record
		order []lesson.Key // insertion order
		mutex sync.RWMutex
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	preferenceTable struct {
		table map[[2]string]string // {contextKey, name}: value
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		lesson:     &lessonTable{table: make(map[lesson.Key]*lesson.Record)},
		user:       &userTable{table: make(map[string]*user.User)},
		preference: &preferenceTable{table: make(map[[2]string]string)},
	}
}
