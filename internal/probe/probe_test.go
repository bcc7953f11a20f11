package probe_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/linksync/internal/probe"
)

func mountTree(t *testing.T) string {
	t.Helper()
	anchor := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(anchor, "movies", "Film.2024"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(anchor, "movies", "Film.2024", "a.mkv"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(anchor, "movies", "plain"), []byte("x"), 0644))
	return anchor
}

func TestProbe_Ready(t *testing.T) {
	t.Parallel()
	anchor := mountTree(t)
	p := probe.New(probe.Config{Anchor: anchor})

	out := p.Probe(context.Background(), filepath.Join(anchor, "movies", "Film.2024", "a.mkv"))
	assert.True(t, out.Ready())
	assert.Equal(t, probe.Ready, out.Status)
	assert.Equal(t, 3, out.Levels)
	assert.NoError(t, out.Err())
}

func TestProbe_Failures(t *testing.T) {
	t.Parallel()
	anchor := mountTree(t)

	tests := []struct {
		name   string
		target string
		want   probe.Status
		levels int
	}{
		{name: "missing file", target: "movies/Film.2024/b.mkv", want: probe.NotVisible, levels: 3},
		{name: "missing dir", target: "shows/S01/e01.mkv", want: probe.MissingSegment, levels: 1},
		{name: "file as dir", target: "movies/plain/x.mkv", want: probe.NotDirectory, levels: 2},
		{name: "target is dir", target: "movies/Film.2024", want: probe.NotVisible, levels: 2},
		{name: "anchor itself", target: ".", want: probe.NotVisible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := probe.New(probe.Config{Anchor: anchor})
			out := p.Probe(context.Background(), filepath.Join(anchor, tt.target))

			assert.Equal(t, tt.want, out.Status, "got %s", out.Status)
			assert.Equal(t, tt.levels, out.Levels)
			assert.False(t, out.Ready())

			err := out.Err()
			require.Error(t, err)
			assert.True(t, errors.Is(err, probe.ErrRefreshTimeout))
			var re *probe.RefreshError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.want, re.Outcome.Status)
		})
	}
}

func TestProbe_TooDeep(t *testing.T) {
	t.Parallel()
	anchor := mountTree(t)
	p := probe.New(probe.Config{Anchor: anchor, MaxLevels: 2})

	out := p.Probe(context.Background(), filepath.Join(anchor, "movies", "Film.2024", "a.mkv"))
	assert.Equal(t, probe.TooDeep, out.Status)
	assert.Equal(t, 0, out.Levels, "nothing listed")
}

func TestProbe_OutsideAnchor(t *testing.T) {
	t.Parallel()
	anchor := mountTree(t)
	other := mountTree(t)
	p := probe.New(probe.Config{Anchor: anchor})

	target := filepath.Join(other, "movies", "plain")
	out := p.Probe(context.Background(), target)
	assert.True(t, out.Ready(), "walked from / : %s", out.Status)
	assert.Greater(t, out.Levels, 2)
}

func TestProbe_Canceled(t *testing.T) {
	t.Parallel()
	anchor := mountTree(t)
	p := probe.New(probe.Config{Anchor: anchor})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := p.Probe(ctx, filepath.Join(anchor, "movies", "plain"))
	assert.Equal(t, probe.Canceled, out.Status)
	assert.True(t, errors.Is(out.Err(), context.Canceled))
	assert.True(t, errors.Is(out.Err(), probe.ErrRefreshTimeout))
}

func TestProbe_Delay(t *testing.T) {
	t.Parallel()
	anchor := mountTree(t)
	p := probe.New(probe.Config{Anchor: anchor, Delay: 20 * time.Millisecond})

	start := time.Now()
	out := p.Probe(context.Background(), filepath.Join(anchor, "movies", "Film.2024", "a.mkv"))
	require.True(t, out.Ready())

	// Three listings, two pauses between them.
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestProbe_SymlinkedDirectory(t *testing.T) {
	t.Parallel()
	anchor := mountTree(t)
	require.NoError(t, os.Symlink(filepath.Join(anchor, "movies"), filepath.Join(anchor, "alias")))
	p := probe.New(probe.Config{Anchor: anchor})

	out := p.Probe(context.Background(), filepath.Join(anchor, "alias", "plain"))
	assert.True(t, out.Ready(), "got %s", out.Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ready", probe.Ready.String())
	assert.Equal(t, "not-visible", probe.NotVisible.String())
	assert.Equal(t, "status(99)", probe.Status(99).String())
}
