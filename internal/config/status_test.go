package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/linksync/internal/config"
)

// setTestStateDir overrides the state directory for a test and restores it
// after the test completes.
func setTestStateDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "linksync")
	config.SetStateDirOverride(dir)
	t.Cleanup(func() { config.SetStateDirOverride("") })
	return dir
}

func TestWriteReadStatus(t *testing.T) {
	dir := setTestStateDir(t)

	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := config.RunStatus{
		Profile:    "media",
		RunID:      "8f1c",
		State:      "Done",
		Started:    started,
		Elapsed:    3 * time.Second,
		Planned:    5,
		Applied:    4,
		NeedsRetry: []string{"movies/a.mkv"},
	}
	require.NoError(t, config.WriteStatus(in))

	data, err := os.ReadFile(filepath.Join(dir, "media.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `run_id = "8f1c"`)
	assert.NotContains(t, string(data), "error", "empty fields are omitted")

	out, err := config.ReadStatus("media")
	require.NoError(t, err)
	assert.Equal(t, "Done", out.State)
	assert.True(t, started.Equal(out.Started))
	assert.Equal(t, []string{"movies/a.mkv"}, out.NeedsRetry)
	assert.Equal(t, int64(4), out.Applied)
}

func TestReadStatusMissing(t *testing.T) {
	setTestStateDir(t)
	_, err := config.ReadStatus("never")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStatusPathDefault(t *testing.T) {
	dir := setTestStateDir(t)
	assert.Equal(t, filepath.Join(dir, "default.toml"), config.StatusPath(""))
}
