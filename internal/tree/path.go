package tree

import (
	"bufio"
	"io"
	"path"
	"strings"
)

// LinkMarker is the suffix rclone appends to symlink entries when it is run
// with --links. It is never part of the name we mirror.
const LinkMarker = ".rclonelink"

// Normalize cleans a listing path into RelPath form. dirHint reports whether
// the raw path ended in "/", the convention some listings use for
// directories. The root ("", ".", "/") normalizes to "".
func Normalize(p string) (rel string, dirHint bool) {
	dirHint = strings.HasSuffix(p, "/")
	rel = path.Clean("/" + p)
	rel = strings.TrimPrefix(rel, "/")
	return rel, dirHint
}

// StripLinkMarker removes a trailing LinkMarker from the last segment.
func StripLinkMarker(p string) string {
	if strings.HasSuffix(p, LinkMarker) && len(p) > len(LinkMarker) {
		return strings.TrimSuffix(p, LinkMarker)
	}
	return p
}

// ParseEntry converts a single listing line in trailing-"/" form into an
// Entry. ok is false for blank lines and the root.
func ParseEntry(line string) (Entry, bool) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Entry{}, false
	}
	rel, dir := Normalize(line)
	if !dir {
		rel = StripLinkMarker(rel)
	}
	if rel == "" {
		return Entry{}, false
	}
	kind := File
	if dir {
		kind = Dir
	}
	return Entry{RelPath: rel, Kind: kind}, true
}

// ParseTreeOutput reads a flat listing where each line is one path and
// directories end in "/". This is the format of
// `rclone tree --noindent --full-path -F` and of the older text listings.
func ParseTreeOutput(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if e, ok := ParseEntry(sc.Text()); ok {
			entries = append(entries, e)
		}
	}
	return entries, sc.Err()
}
