package reconcile_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/linksync/internal/reconcile"
	"github.com/bamsammich/linksync/internal/tree"
)

func dir(p string) tree.Entry  { return tree.Entry{RelPath: p, Kind: tree.Dir} }
func file(p string) tree.Entry { return tree.Entry{RelPath: p, Kind: tree.File} }

func snap(es ...tree.Entry) *tree.Snapshot { return tree.NewSnapshot("/", es) }

func TestReconcile_MoviesScenario(t *testing.T) {
	desired := snap(dir("movies"), file("movies/a.mkv"))
	current := snap(dir("movies"), file("movies/b.mkv"))

	plan := reconcile.Reconcile(desired, current)

	assert.Equal(t, []tree.Entry{file("movies/b.mkv")}, plan.Deletions)
	assert.Equal(t, []tree.Entry{file("movies/a.mkv")}, plan.Creations)
	assert.Equal(t, 2, plan.Len())
	assert.False(t, plan.Empty())
}

func TestReconcile_Identical(t *testing.T) {
	s := snap(dir("a"), file("a/b"), dir("a/c"))
	plan := reconcile.Reconcile(s, s)
	assert.True(t, plan.Empty())
	assert.Equal(t, 0, plan.Len())
}

func TestReconcile_NilSides(t *testing.T) {
	plan := reconcile.Reconcile(snap(dir("a"), file("a/x")), nil)
	assert.Empty(t, plan.Deletions)
	assert.Equal(t, []tree.Entry{dir("a"), file("a/x")}, plan.Creations)

	plan = reconcile.Reconcile(nil, snap(dir("a"), file("a/x")))
	assert.Equal(t, []tree.Entry{file("a/x"), dir("a")}, plan.Deletions)
	assert.Empty(t, plan.Creations)
}

func TestReconcile_KindMismatch(t *testing.T) {
	// Remote turned a file into a directory; the stale link goes first.
	plan := reconcile.Reconcile(
		snap(dir("extras"), file("extras/x.mkv")),
		snap(file("extras")),
	)
	assert.Equal(t, []tree.Entry{file("extras")}, plan.Deletions)
	assert.Equal(t, []tree.Entry{dir("extras"), file("extras/x.mkv")}, plan.Creations)

	// And back: the local directory and its contents are removed, then the
	// link is created.
	plan = reconcile.Reconcile(
		snap(file("extras")),
		snap(dir("extras"), file("extras/x.mkv")),
	)
	assert.Equal(t, []tree.Entry{file("extras/x.mkv"), dir("extras")}, plan.Deletions)
	assert.Equal(t, []tree.Entry{file("extras")}, plan.Creations)
}

func TestReconcile_RootIgnored(t *testing.T) {
	plan := reconcile.Reconcile(
		snap(dir("."), dir(""), file("a")),
		snap(dir("/")),
	)
	assert.Equal(t, []tree.Entry{file("a")}, plan.Creations)
	assert.Empty(t, plan.Deletions)
}

func TestReconcile_Ordering(t *testing.T) {
	plan := reconcile.Reconcile(
		snap(
			dir("b"), dir("b/cc"), file("b/cc/z"), file("b/a"), file("bb"),
			dir("a"), file("a/long-name"), file("a/x"),
		),
		nil,
	)
	assert.Equal(t, []tree.Entry{
		dir("a"), dir("b"), file("bb"),
		file("a/x"), file("b/a"), dir("b/cc"), file("a/long-name"),
		file("b/cc/z"),
	}, plan.Creations)

	plan = reconcile.Reconcile(nil, snap(
		dir("b"), dir("b/cc"), file("b/cc/z"), file("b/a"), file("bb"),
	))
	assert.Equal(t, []tree.Entry{
		file("b/cc/z"),
		dir("b/cc"), file("b/a"),
		file("bb"), dir("b"),
	}, plan.Deletions)
}

// randomTree builds a tree of up to n entries whose every entry has its
// parent directories present.
func randomTree(r *rand.Rand, n int) *tree.Snapshot {
	names := []string{"a", "b", "Film.2024", "s01", "x.mkv"}
	var es []tree.Entry
	for range n {
		depth := 1 + r.Intn(3)
		parts := make([]string, depth)
		for i := range parts {
			parts[i] = names[r.Intn(len(names))]
		}
		for i := 1; i < depth; i++ {
			es = append(es, dir(strings.Join(parts[:i], "/")))
		}
		kind := tree.File
		if r.Intn(3) == 0 {
			kind = tree.Dir
		}
		es = append(es, tree.Entry{RelPath: strings.Join(parts, "/"), Kind: kind})
	}
	return tree.NewSnapshot("/", es)
}

func minus(a, b *tree.Snapshot) map[tree.Entry]bool {
	out := make(map[tree.Entry]bool)
	for _, e := range a.Entries() {
		if !b.Has(e) {
			out[e] = true
		}
	}
	return out
}

func isAncestor(parent, child string) bool {
	return strings.HasPrefix(child, parent+"/")
}

func TestReconcile_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic test data
	for i := range 200 {
		desired := randomTree(r, r.Intn(12))
		current := randomTree(r, r.Intn(12))

		t.Run(fmt.Sprint(i), func(t *testing.T) {
			plan := reconcile.Reconcile(desired, current)

			// Set semantics.
			wantDel := minus(current, desired)
			wantCre := minus(desired, current)
			require.Len(t, plan.Deletions, len(wantDel))
			require.Len(t, plan.Creations, len(wantCre))
			for _, e := range plan.Deletions {
				assert.True(t, wantDel[e], "unexpected deletion %s", e)
			}
			for _, e := range plan.Creations {
				assert.True(t, wantCre[e], "unexpected creation %s", e)
			}

			// Disjoint by identity.
			for _, d := range plan.Deletions {
				for _, c := range plan.Creations {
					assert.NotEqual(t, d, c)
				}
			}

			// Depth ordering.
			for j := 1; j < len(plan.Deletions); j++ {
				assert.GreaterOrEqual(t, plan.Deletions[j-1].Depth(), plan.Deletions[j].Depth())
			}
			for j := 1; j < len(plan.Creations); j++ {
				assert.LessOrEqual(t, plan.Creations[j-1].Depth(), plan.Creations[j].Depth())
			}

			// Descendants are deleted before ancestors and created after them.
			for j, a := range plan.Deletions {
				for _, b := range plan.Deletions[:j] {
					assert.False(t, isAncestor(b.RelPath, a.RelPath), "%s deleted before descendant %s", b, a)
				}
			}
			for j, a := range plan.Creations {
				for _, b := range plan.Creations[:j] {
					assert.False(t, isAncestor(a.RelPath, b.RelPath), "%s created before ancestor %s", b, a)
				}
			}

			// Applying the plan to current yields desired.
			applied := make(map[tree.Entry]bool)
			for _, e := range current.Entries() {
				applied[e] = true
			}
			for _, e := range plan.Deletions {
				delete(applied, e)
			}
			for _, e := range plan.Creations {
				applied[e] = true
			}
			var got []tree.Entry
			for e := range applied {
				got = append(got, e)
			}
			next := tree.NewSnapshot("/", got)
			assert.Equal(t, desired.Entries(), next.Entries())
			assert.True(t, reconcile.Reconcile(desired, next).Empty())
		})
	}
}
