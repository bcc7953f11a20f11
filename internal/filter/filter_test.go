package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/linksync/internal/tree"
)

func file(p string) tree.Entry { return tree.Entry{RelPath: p, Kind: tree.File} }
func dir(p string) tree.Entry  { return tree.Entry{RelPath: p, Kind: tree.Dir} }

func TestEmptyChainIncludesAll(t *testing.T) {
	c := NewChain()
	assert.True(t, c.Match(file("any/file.mkv")))
	assert.True(t, c.Match(dir("any/dir")))
	assert.True(t, c.Empty())

	var nilChain *Chain
	assert.True(t, nilChain.Empty())
	assert.True(t, nilChain.Match(file("x")))
}

func TestExcludePattern(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddExclude("*.nfo"))

	assert.False(t, c.Match(file("movie.nfo")))
	assert.False(t, c.Match(file("movies/Film.2024/movie.nfo")))
	assert.True(t, c.Match(file("movie.mkv")))
}

func TestFirstMatchWins(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddInclude("poster.jpg"))
	require.NoError(t, c.AddExclude("*.jpg"))
	assert.True(t, c.Match(file("poster.jpg")))
	assert.False(t, c.Match(file("fanart.jpg")))

	c = NewChain()
	require.NoError(t, c.AddExclude("*.jpg"))
	require.NoError(t, c.AddInclude("poster.jpg"))
	assert.False(t, c.Match(file("poster.jpg")))
}

func TestDirOnlyPattern(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddExclude("@eaDir/"))

	assert.False(t, c.Match(dir("@eaDir")))
	assert.False(t, c.Match(dir("movies/@eaDir")))
	assert.True(t, c.Match(file("@eaDir")))
}

func TestApplyExcludesSubtree(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddExclude("/downloads/"))
	require.NoError(t, c.AddExclude("*.!qB"))

	s := tree.NewSnapshot("/remote", []tree.Entry{
		dir("downloads"),
		dir("downloads/tmp"),
		file("downloads/tmp/x.mkv"),
		dir("movies"),
		file("movies/a.mkv"),
		file("movies/b.mkv.!qB"),
		dir("movies/downloads"),
	})

	got := c.Apply(s)
	assert.Equal(t, []tree.Entry{
		dir("movies"),
		file("movies/a.mkv"),
		dir("movies/downloads"),
	}, got.Entries())
	assert.Equal(t, "/remote", got.Root())
	assert.Equal(t, 7, s.Len(), "input is unchanged")
}

func TestApplyEmptyChainReturnsInput(t *testing.T) {
	s := tree.NewSnapshot("/", []tree.Entry{file("a")})
	assert.Same(t, s, NewChain().Apply(s))
}

func TestRuleString(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddInclude("*.mkv"))
	require.NoError(t, c.AddExclude("*"))
	require.Len(t, c.Rules(), 2)
	assert.Equal(t, "+ *.mkv", c.Rules()[0].String())
	assert.Equal(t, "- *", c.Rules()[1].String())
}

func TestEmptyPatternRejected(t *testing.T) {
	assert.Error(t, NewChain().AddExclude("  "))
}
