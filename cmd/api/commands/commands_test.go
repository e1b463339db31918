package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/tracker/internal/infrastructure/config"
	"github.com/taskmaster/tracker/internal/infrastructure/logger"
	"github.com/taskmaster/tracker/internal/infrastructure/notify"
	"github.com/taskmaster/tracker/internal/infrastructure/server"
	"github.com/taskmaster/tracker/internal/infrastructure/storage"
)

var createdID = regexp.MustCompile(`Created (?:event|task) ([0-9a-f-]{36})`)

func setupAPI(t *testing.T) *Options {
	t.Helper()
	log := logger.NewNop()
	cfg := &config.Config{
		Storage:  config.StorageConfig{Driver: config.DriverFile, DataDir: "/data", Timeout: time.Second},
		Security: config.SecurityConfig{CORSAllowedOrigins: "http://localhost:5173"},
	}

	backend, err := storage.Open(context.Background(), cfg, log, storage.WithFilesystem(afero.NewMemMapFs()))
	require.NoError(t, err)
	bus := notify.New(log)
	ts := httptest.NewServer(server.New(cfg, backend, bus, log).Handler())
	t.Cleanup(func() {
		ts.Close()
		bus.Close()
		_ = backend.Close()
	})

	return &Options{APIURL: ts.URL}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// a nil slice makes cobra fall back to os.Args
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestEventsCommand(t *testing.T) {
	opts := setupAPI(t)

	out, err := run(t, NewEventsCommand(opts), "add", "--title", "Meeting", "--date", "2025-01-01T10:00:00Z")
	require.NoError(t, err)
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = run(t, NewEventsCommand(opts), "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "upcoming")
	assert.Contains(t, out, "Meeting")

	out, err = run(t, NewEventsCommand(opts), "advance", id)
	require.NoError(t, err)
	assert.Contains(t, out, "is now in_progress")

	out, err = run(t, NewEventsCommand(opts), "advance", id)
	require.NoError(t, err)
	assert.Contains(t, out, "is now completed")

	_, err = run(t, NewEventsCommand(opts), "advance", id)
	assert.EqualError(t, err, "event "+id+" is already completed")

	out, err = run(t, NewEventsCommand(opts), "advance", id, "--status", "upcoming")
	require.NoError(t, err)
	assert.Contains(t, out, "is now upcoming")

	out, err = run(t, NewEventsCommand(opts), "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "upcoming: 1")
	assert.Contains(t, out, "total: 1")

	out, err = run(t, NewEventsCommand(opts), "list", "--status", "completed")
	require.NoError(t, err)
	assert.NotContains(t, out, id)

	out, err = run(t, NewEventsCommand(opts), "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Event deleted successfully")

	_, err = run(t, NewEventsCommand(opts), "delete", id)
	assert.EqualError(t, err, "api error 404: event not found")

	out, err = run(t, NewEventsCommand(opts), "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "All events deleted successfully")
}

func TestEventsAdd_InvalidDate(t *testing.T) {
	opts := setupAPI(t)

	_, err := run(t, NewEventsCommand(opts), "add", "--title", "Meeting", "--date", "next week")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestTasksCommand(t *testing.T) {
	opts := setupAPI(t)

	out, err := run(t, NewTasksCommand(opts), "add", "--title", "Write report")
	require.NoError(t, err)
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = run(t, NewTasksCommand(opts), "toggle", id)
	require.NoError(t, err)
	assert.Contains(t, out, "completed: true")

	out, err = run(t, NewTasksCommand(opts), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "Write report")

	out, err = run(t, NewTasksCommand(opts), "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Task deleted successfully")

	out, err = run(t, NewTasksCommand(opts), "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "All tasks deleted successfully")
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2025-01-01T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))

	got, err = parseDate("2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Day())

	_, err = parseDate("04/03/2025")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, NewVersionCommand())

	require.NoError(t, err)
	assert.Contains(t, out, "Tracker "+Version)
}
