package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// AddRule appends one rule in filter-file syntax: "+ glob" includes,
// "- glob" or a bare glob excludes.
func (c *Chain) AddRule(line string) error {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "+ "):
		return c.AddInclude(strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "- "):
		return c.AddExclude(strings.TrimSpace(line[2:]))
	default:
		return c.AddExclude(line)
	}
}

// LoadFile reads rules from a file, one per line. Blank lines and lines
// starting with "#" are skipped.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := c.AddRule(line); err != nil {
			return fmt.Errorf("filter file %s line %d: %w", path, lineNum, err)
		}
	}
	return scanner.Err()
}
