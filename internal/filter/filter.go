// Package filter holds rsync-style include/exclude rules that scope which
// parts of a tree take part in a sync.
package filter

import (
	"path"

	"github.com/bamsammich/linksync/internal/tree"
)

// Rule is a single include or exclude rule.
type Rule struct {
	pattern *pattern
	Include bool
}

// String renders the rule in filter-file form.
func (r Rule) String() string {
	if r.Include {
		return "+ " + r.pattern.source
	}
	return "- " + r.pattern.source
}

// Chain is an ordered rule list. The first matching rule decides; an entry
// no rule matches is included.
type Chain struct {
	rules []Rule
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(glob string) error { return c.add(glob, false) }

// AddInclude appends an include rule.
func (c *Chain) AddInclude(glob string) error { return c.add(glob, true) }

func (c *Chain) add(glob string, include bool) error {
	p, err := compile(glob)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{pattern: p, Include: include})
	return nil
}

// Rules returns the rules in evaluation order.
func (c *Chain) Rules() []Rule { return c.rules }

// Empty reports whether the chain has no rules. A nil chain is empty.
func (c *Chain) Empty() bool { return c == nil || len(c.rules) == 0 }

// Match reports whether e itself is included, ignoring its ancestors.
func (c *Chain) Match(e tree.Entry) bool {
	if c.Empty() {
		return true
	}
	for _, r := range c.rules {
		if r.pattern.match(e.RelPath, e.IsDir()) {
			return r.Include
		}
	}
	return true
}

// Apply returns the part of s the chain includes. An excluded directory
// takes its whole subtree with it, so nothing beneath it is created or
// deleted.
func (c *Chain) Apply(s *tree.Snapshot) *tree.Snapshot {
	if c.Empty() {
		return s
	}
	excludedDirs := make(map[string]bool)
	for _, e := range s.Entries() {
		if e.IsDir() && !c.Match(e) {
			excludedDirs[e.RelPath] = true
		}
	}
	return s.Filter(func(e tree.Entry) bool {
		for dir := path.Dir(e.RelPath); dir != "."; dir = path.Dir(dir) {
			if excludedDirs[dir] {
				return false
			}
		}
		return c.Match(e)
	})
}
