package tree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// RcloneMode selects which rclone listing command is run.
type RcloneMode int

const (
	// ModeJSON runs `rclone lsjson -R`; kind comes from the IsDir field.
	ModeJSON RcloneMode = iota
	// ModeTree runs `rclone tree` and relies on the trailing "/" that -F
	// appends to directories.
	ModeTree
)

func (m RcloneMode) String() string {
	if m == ModeTree {
		return "rclone-tree"
	}
	return "rclone-json"
}

// Runner runs an external command and returns its stdout and stderr.
// A non-zero exit is reported through err.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Compile-time interface check.
var _ Lister = (*RcloneLister)(nil)

// RcloneLister lists a remote through the rclone CLI.
type RcloneLister struct {
	Run    Runner
	Exe    string
	Remote string // e.g. "MP:/115_share/media_center" or a local path
	Cookie string // sent as a Cookie header to HTTP-based backends
	Args   []string
	Mode   RcloneMode
}

func (l *RcloneLister) Name() string { return l.Mode.String() }

func (l *RcloneLister) args() []string {
	var args []string
	switch l.Mode {
	case ModeTree:
		args = []string{"tree", "--noindent", "--full-path", "--noreport", "-F", "-a", "-L", "999"}
	default:
		args = []string{"lsjson", "-R", "--no-mimetype", "--no-modtime"}
	}
	if l.Cookie != "" {
		args = append(args, "--header", "Cookie: "+l.Cookie)
	}
	args = append(args, l.Args...)
	return append(args, l.Remote)
}

// List runs rclone and parses its output.
func (l *RcloneLister) List(ctx context.Context) (*Snapshot, error) {
	run := l.Run
	if run == nil {
		run = ExecRunner
	}
	exe := l.Exe
	if exe == "" {
		exe = "rclone"
	}

	stdout, stderr, err := run(ctx, exe, l.args()...)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			err = fmt.Errorf("rclone executable %q not found: %w", exe, err)
		}
		le := listingErr(l.Name(), l.Remote, err)
		le.Stderr = string(stderr)
		return nil, le
	}

	var entries []Entry
	if l.Mode == ModeTree {
		entries, err = ParseTreeOutput(bytes.NewReader(stdout))
	} else {
		entries, err = ParseLsjson(bytes.NewReader(stdout))
	}
	if err != nil {
		return nil, listingErr(l.Name(), l.Remote, fmt.Errorf("parse output: %w", err))
	}
	return NewSnapshot(l.Remote, entries), nil
}

// lsjsonItem is the subset of an `rclone lsjson` record we need.
type lsjsonItem struct {
	Path  string `json:"Path"`
	IsDir bool   `json:"IsDir"`
}

// ParseLsjson decodes the JSON array produced by `rclone lsjson`, one record
// at a time.
func ParseLsjson(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("expected JSON array, got %v", tok)
	}

	var entries []Entry
	for dec.More() {
		var item lsjsonItem
		if err := dec.Decode(&item); err != nil {
			return nil, err
		}
		if item.Path == "" {
			return nil, errors.New("record without Path")
		}
		kind := File
		rel, _ := Normalize(item.Path)
		if item.IsDir {
			kind = Dir
		} else {
			rel = StripLinkMarker(rel)
		}
		entries = append(entries, Entry{RelPath: rel, Kind: kind})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("unterminated JSON array: %w", err)
	}
	return entries, nil
}
