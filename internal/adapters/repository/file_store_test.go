package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/infrastructure/logger"
)

func newTestEvent(id, title string) *entities.Event {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return &entities.Event{
		ID:        id,
		Title:     title,
		Date:      now.Add(48 * time.Hour),
		Status:    entities.EventStatusUpcoming,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func setupFileStore(t *testing.T) (*JSONFileStore[*entities.Event], afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewEventFileStore(fs, "/data", logger.NewNop()), fs
}

func TestFileStore_ListMissingFile(t *testing.T) {
	store, _ := setupFileStore(t)

	events, err := store.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestFileStore_CreateGetList(t *testing.T) {
	store, fs := setupFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestEvent("e-1", "Standup")))
	require.NoError(t, store.Create(ctx, newTestEvent("e-2", "Retro")))

	events, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e-1", events[0].ID)
	assert.Equal(t, "e-2", events[1].ID)

	got, err := store.Get(ctx, "e-2")
	require.NoError(t, err)
	assert.Equal(t, "Retro", got.Title)
	assert.True(t, got.CreatedAt.Equal(events[1].CreatedAt))

	exists, err := afero.Exists(fs, "/data/events.json")
	require.NoError(t, err)
	assert.True(t, exists)

	tmpExists, _ := afero.Exists(fs, "/data/events.json.tmp")
	assert.False(t, tmpExists)
}

func TestFileStore_FileFormat(t *testing.T) {
	store, fs := setupFileStore(t)
	require.NoError(t, store.Create(context.Background(), newTestEvent("e-1", "Standup")))

	data, err := afero.ReadFile(fs, "/data/events.json")
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "[\n  {\n    \"id\": \"e-1\""))
	assert.Contains(t, content, `"createdAt": "2024-05-01T09:30:00Z"`)
	assert.NotContains(t, content, "description")
}

func TestFileStore_CreateDuplicate(t *testing.T) {
	store, _ := setupFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestEvent("e-1", "Standup")))
	assert.Error(t, store.Create(ctx, newTestEvent("e-1", "Again")))
}

func TestFileStore_GetNotFound(t *testing.T) {
	store, _ := setupFileStore(t)

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, entities.ErrEventNotFound)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestFileStore_Update(t *testing.T) {
	store, _ := setupFileStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newTestEvent("e-1", "Standup")))
	require.NoError(t, store.Create(ctx, newTestEvent("e-2", "Retro")))

	updated := newTestEvent("e-1", "Daily standup")
	updated.Status = entities.EventStatusInProgress
	require.NoError(t, store.Update(ctx, updated))

	events, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Daily standup", events[0].Title)
	assert.Equal(t, entities.EventStatusInProgress, events[0].Status)

	err = store.Update(ctx, newTestEvent("missing", "x"))
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestFileStore_Delete(t *testing.T) {
	store, _ := setupFileStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newTestEvent("e-1", "Standup")))
	require.NoError(t, store.Create(ctx, newTestEvent("e-2", "Retro")))

	require.NoError(t, store.Delete(ctx, "e-1"))

	events, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e-2", events[0].ID)

	assert.ErrorIs(t, store.Delete(ctx, "e-1"), entities.ErrEventNotFound)
}

func TestFileStore_DeleteAll(t *testing.T) {
	store, fs := setupFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.DeleteAll(ctx))
	require.NoError(t, store.Create(ctx, newTestEvent("e-1", "Standup")))
	require.NoError(t, store.DeleteAll(ctx))

	events, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	data, err := afero.ReadFile(fs, "/data/events.json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestFileStore_ReplaceAll(t *testing.T) {
	store, _ := setupFileStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newTestEvent("old", "Old")))

	replacement := []*entities.Event{newTestEvent("a", "A"), newTestEvent("b", "B")}
	require.NoError(t, store.ReplaceAll(ctx, replacement))

	events, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, "b", events[1].ID)
}

func TestFileStore_MalformedFile(t *testing.T) {
	store, fs := setupFileStore(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/data/events.json", []byte("{not json"), 0o644))

	events, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = store.Get(ctx, "e-1")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	require.NoError(t, store.Create(ctx, newTestEvent("e-1", "Standup")))

	backup, err := afero.ReadFile(fs, "/data/events.json.corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))

	events, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFileStore_NullElement(t *testing.T) {
	store, fs := setupFileStore(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/data/events.json", []byte("[null]"), 0o644))

	events, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = store.Get(ctx, "x")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	require.NoError(t, store.Create(ctx, newTestEvent("a", "Standup")))

	backup, err := afero.ReadFile(fs, "/data/events.json.corrupt")
	require.NoError(t, err)
	assert.Equal(t, "[null]", string(backup))

	events, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a", events[0].ID)
}

func TestFileStore_NullFile(t *testing.T) {
	store, fs := setupFileStore(t)
	require.NoError(t, afero.WriteFile(fs, "/data/events.json", []byte("null"), 0o644))

	events, err := store.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestFileStore_WriteFailureSurfaces(t *testing.T) {
	store := NewEventFileStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/data", logger.NewNop())
	ctx := context.Background()

	assert.Error(t, store.Create(ctx, newTestEvent("e-1", "Standup")))
	assert.Error(t, store.DeleteAll(ctx))

	events, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFileStore_CanceledContext(t *testing.T) {
	store, _ := setupFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Create(ctx, newTestEvent("e-1", "Standup")), context.Canceled)
	_, err := store.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore_Tasks(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewTaskFileStore(fs, "/data", logger.NewNop())
	ctx := context.Background()

	task := &entities.Task{ID: "t-1", Title: "Write report", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	require.NoError(t, store.Create(ctx, task))

	_, err := store.Get(ctx, "t-2")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
	assert.Equal(t, "/data/tasks.json", store.Path())

	exists, _ := afero.Exists(fs, "/data/tasks.json")
	assert.True(t, exists)
}

func TestFileStore_Ping(t *testing.T) {
	store, fs := setupFileStore(t)

	require.NoError(t, store.Ping(context.Background()))

	isDir, err := afero.IsDir(fs, "/data")
	require.NoError(t, err)
	assert.True(t, isDir)
}
