package catalog

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"tasks/ru/c1.json": {Data: []byte(`[
			{"id": 1, "lesson_id": 1, "type": "write", "question": "Опишите", "num": 1},
			{"id": "r-2", "lesson_id": 1, "type": "read", "question": "Прочитайте", "num": 2},
			{"id": 3, "lesson_id": 2, "type": "pic", "question": "Нарисуйте", "num": 1}
		]`)},
		"tasks/en/c1.json":  {Data: []byte(`[{"id": 1, "lesson_id": 1, "type": "write", "question": "Describe", "num": 1}]`)},
		"tasks/ru/bad.json": {Data: []byte(`{not json`)},
	}
}

func TestFSCatalog_Tasks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		lang       string
		courseID   string
		wantIDs    []string
		wantPrompt string
		wantErr    bool
	}{
		{name: "requested language", lang: "en", courseID: "c1", wantIDs: []string{"1"}, wantPrompt: "Describe"},
		{name: "default language", lang: "ru", courseID: "c1", wantIDs: []string{"1", "r-2", "3"}, wantPrompt: "Опишите"},
		{name: "fallback to default language", lang: "fr", courseID: "c1", wantIDs: []string{"1", "r-2", "3"}, wantPrompt: "Опишите"},
		{name: "unknown course", lang: "en", courseID: "nope", wantIDs: []string{}},
		{name: "path traversal", lang: "..", courseID: "c1", wantIDs: []string{"1", "r-2", "3"}, wantPrompt: "Опишите"},
		{name: "malformed file", lang: "ru", courseID: "bad", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFSCatalog(testFS(), "ru")
			tasks, err := c.Tasks(ctx, tt.lang, tt.courseID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tasks)

			ids := make([]string, 0, len(tasks))
			for _, task := range tasks {
				ids = append(ids, task.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			if tt.wantPrompt != "" {
				assert.Equal(t, tt.wantPrompt, tasks[0].Prompt)
			}
		})
	}
}

func TestFSCatalog_Tasks_cached(t *testing.T) {
	fsys := testFS()
	c := NewFSCatalog(fsys, "ru")

	first, err := c.Tasks(context.Background(), "en", "c1")
	require.NoError(t, err)

	delete(fsys, "tasks/en/c1.json")
	second, err := c.Tasks(context.Background(), "en", "c1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHelpers(t *testing.T) {
	tasks, err := NewFSCatalog(testFS(), "ru").Tasks(context.Background(), "ru", "c1")
	require.NoError(t, err)

	lesson1 := ForLesson(tasks, 1)
	assert.Len(t, lesson1, 2)
	assert.Empty(t, ForLesson(tasks, 9))

	task, ok := Find(tasks, "3")
	assert.True(t, ok)
	assert.Equal(t, TaskPic, task.Type)
	_, ok = Find(tasks, "42")
	assert.False(t, ok)

	assert.Equal(t, 2, LessonCount(tasks))
	assert.True(t, TaskPic.HasValue())
	assert.False(t, TaskRead.HasValue())
}
