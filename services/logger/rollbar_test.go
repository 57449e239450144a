package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/user"
)

func TestRollbarLogger(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	logger := NewRollbarLogger(zap.New(obsCore).Sugar(), core.NewTestConfig())
	logger.Enable(false)

	usr := user.User{ID: "u-1", Role: user.RoleReviewer}
	logger.Warn("malformed drawing", errors.New("boom"), map[string]interface{}{"task_id": "3"}, usr)
	logger.Info("started")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "malformed drawing", entries[0].Message)
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "3", ctx["task_id"])
		assert.Equal(t, "u-1", ctx["user_id"])
		assert.Equal(t, "reviewer", ctx["user_role"])

		assert.Equal(t, zap.InfoLevel, entries[1].Level)
		assert.Empty(t, entries[1].ContextMap())
	}
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := RollbarLogger{}
	err := errors.New("boom")
	args := logger.prepare("msg", []interface{}{err, user.User{ID: "u-1"}, user.User{ID: "u-2"}})
	assert.Equal(t, []interface{}{"msg", err}, args, "users become the rollbar person")
}
