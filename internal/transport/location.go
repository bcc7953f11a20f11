package transport

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// Scheme identifies how a remote tree is reached.
type Scheme string

const (
	SchemeLocal  Scheme = ""
	SchemeRclone Scheme = "rclone"
	SchemeSFTP   Scheme = "sftp"
	SchemeS3     Scheme = "s3"
)

// Location is a parsed remote or local tree argument.
type Location struct {
	Scheme Scheme
	Remote string // rclone remote name
	Host   string // sftp host or s3 bucket
	User   string
	Path   string
	Port   int
}

// IsRemote returns true if the location is not a plain local path.
func (l Location) IsRemote() bool {
	return l.Scheme != SchemeLocal
}

// String returns a human-readable representation.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeRclone:
		return l.Remote + ":" + l.Path
	case SchemeS3:
		return "s3://" + l.Host + "/" + strings.TrimPrefix(l.Path, "/")
	case SchemeSFTP:
		host := l.Host
		if l.Port != 0 {
			host = fmt.Sprintf("%s:%d", l.Host, l.Port)
		}
		if l.User != "" {
			host = l.User + "@" + host
		}
		return "sftp://" + host + l.Path
	default:
		return l.Path
	}
}

// ParseLocation parses a tree argument into a Location.
//
// Supported formats:
//   - /absolute/path                  → local
//   - relative/path                   → local
//   - remote:path                     → rclone remote
//   - sftp://[user@]host[:port]/path  → SFTP
//   - s3://bucket/prefix              → S3 (or S3-compatible) bucket
//
// Ambiguity rule: a bare "word" with no colon is always local. A path
// containing ":" is only treated as an rclone remote if the part before the
// colon contains no path separators (so "/foo:bar" and "./x:y" are local).
func ParseLocation(arg string) Location {
	switch {
	case strings.HasPrefix(arg, "sftp://"):
		return parseSFTPURL(arg)
	case strings.HasPrefix(arg, "s3://"):
		return parseS3URL(arg)
	}

	if filepath.IsAbs(arg) || strings.HasPrefix(arg, "./") || strings.HasPrefix(arg, "../") {
		return Location{Path: arg}
	}

	colonIdx := strings.IndexByte(arg, ':')
	if colonIdx <= 0 {
		return Location{Path: arg}
	}

	remote := arg[:colonIdx]
	if strings.ContainsRune(remote, filepath.Separator) || strings.ContainsRune(remote, '/') {
		return Location{Path: arg}
	}

	return Location{
		Scheme: SchemeRclone,
		Remote: remote,
		Path:   arg[colonIdx+1:],
	}
}

func parseSFTPURL(raw string) Location {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return Location{Path: raw}
	}

	port := 0
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return Location{Path: raw}
		}
	}

	path := u.Path
	if path == "" {
		path = "."
	}

	var user string
	if u.User != nil {
		user = u.User.Username()
	}

	return Location{
		Scheme: SchemeSFTP,
		Host:   u.Hostname(),
		User:   user,
		Port:   port,
		Path:   path,
	}
}

func parseS3URL(raw string) Location {
	rest := strings.TrimPrefix(raw, "s3://")
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{Path: raw}
	}
	return Location{
		Scheme: SchemeS3,
		Host:   bucket,
		Path:   prefix,
	}
}
