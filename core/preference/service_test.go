package preference_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/preference"
	inmemdb "github.com/ExtCrs/extcourses/storage/database/inmem"
)

func TestService_ActiveLesson(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewPreferenceRepository(inmemdb.Open())
	svc := preference.NewService(repo)

	_, ok, err := svc.ActiveLesson(ctx, "tab-1", "course-1")
	require.NoError(t, err)
	assert.False(t, ok, "nothing stored yet")

	require.NoError(t, svc.SetActiveLesson(ctx, "tab-1", "course-1", 3))
	require.NoError(t, svc.SetActiveLesson(ctx, "tab-1", "course-2", 7))
	require.NoError(t, svc.SetActiveLesson(ctx, "tab-2", "course-1", 5))

	tests := []struct {
		contextKey string
		courseID   string
		want       int
		wantOK     bool
	}{
		{"tab-1", "course-1", 3, true},
		{"tab-1", "course-2", 7, true},
		{"tab-2", "course-1", 5, true},
		{"tab-2", "course-2", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.contextKey+"/"+tt.courseID, func(t *testing.T) {
			n, ok, err := svc.ActiveLesson(ctx, tt.contextKey, tt.courseID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, n)
		})
	}

	require.NoError(t, svc.SetActiveLesson(ctx, "tab-1", "course-1", 4))
	n, _, err := svc.ActiveLesson(ctx, "tab-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, 4, n, "overwritten")
}

func TestService_invalidInput(t *testing.T) {
	ctx := context.Background()
	svc := preference.NewService(inmemdb.NewPreferenceRepository(inmemdb.Open()))
	var verr *core.ValidationError

	_, _, err := svc.ActiveLesson(ctx, " ", "course-1")
	assert.True(t, errors.As(err, &verr))

	err = svc.SetActiveLesson(ctx, "", "course-1", 1)
	assert.True(t, errors.As(err, &verr))

	err = svc.SetActiveLesson(ctx, "tab-1", "course-1", 0)
	assert.True(t, errors.As(err, &verr))
}

func TestService_ignoresGarbage(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewPreferenceRepository(inmemdb.Open())
	require.NoError(t, repo.SetPreference(ctx, "tab-1", "active_lesson:course-1", "abc"))

	_, ok, err := preference.NewService(repo).ActiveLesson(ctx, "tab-1", "course-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
