package lesson

import (
	"time"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/catalog"
)

// NewServiceMock returns a Service that notifies synchronously and reads the time from now.
func NewServiceMock(repo Repository, cat catalog.Catalog, profiles ProfileGetter, notifier Notifier, logger core.Logger, now func() time.Time) *Service {
	svc := NewService(repo, cat, profiles, notifier, logger)
	// run synchronously
	svc.runAsync = func(f func()) { f() }
	if now != nil {
		svc.now = now
	}
	return svc
}
