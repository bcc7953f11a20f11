package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// stateDirOverride allows tests to redirect the state directory.
var stateDirOverride string //nolint:gochecknoglobals // test hook

// SetStateDirOverride sets a test override for StateDir. Pass "" to
// restore the default. This is intended for tests only.
func SetStateDirOverride(dir string) {
	stateDirOverride = dir
}

// RunStatus is the report of the most recent pass of one profile, kept so an
// operator can see what needs manual retry. It is never read back by a
// sync pass.
type RunStatus struct {
	Started    time.Time     `toml:"started"`
	Profile    string        `toml:"profile"`
	RunID      string        `toml:"run_id"`
	State      string        `toml:"state"`
	Error      string        `toml:"error,omitempty"`
	NeedsRetry []string      `toml:"needs_retry,omitempty"`
	Failed     []string      `toml:"failed,omitempty"`
	Elapsed    time.Duration `toml:"elapsed"`
	Applied    int64         `toml:"applied"`
	Planned    int64         `toml:"planned"`
	DryRun     bool          `toml:"dry_run"`
}

// StateDir returns the directory holding run reports.
func StateDir() string {
	if stateDirOverride != "" {
		return stateDirOverride
	}
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "linksync")
}

// StatusPath returns the report path for a profile.
func StatusPath(profile string) string {
	if profile == "" {
		profile = "default"
	}
	return filepath.Join(StateDir(), profile+".toml")
}

// WriteStatus records the report for s.Profile.
func WriteStatus(s RunStatus) error {
	path := StatusPath(s.Profile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encode run status: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644) //nolint:gosec // G306: report holds no secrets
}

// ReadStatus reads the last report for profile. Returns os.ErrNotExist if
// the profile never ran.
func ReadStatus(profile string) (RunStatus, error) {
	var s RunStatus
	if _, err := toml.DecodeFile(StatusPath(profile), &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RunStatus{}, os.ErrNotExist
		}
		return RunStatus{}, err
	}
	return s, nil
}
