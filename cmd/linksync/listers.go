package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bamsammich/linksync/internal/config"
	"github.com/bamsammich/linksync/internal/materialize"
	"github.com/bamsammich/linksync/internal/probe"
	"github.com/bamsammich/linksync/internal/transport"
	"github.com/bamsammich/linksync/internal/tree"
)

// listerKind picks the lister for a profile: the explicit setting, or one
// derived from the shape of the remote.
func listerKind(p config.Profile) string {
	if p.Lister != config.ListerAuto {
		return p.Lister
	}
	switch transport.ParseLocation(p.Remote).Scheme {
	case transport.SchemeRclone:
		return config.ListerRcloneJSON
	case transport.SchemeS3:
		return config.ListerS3
	case transport.SchemeSFTP:
		return config.ListerSFTP
	default:
		return config.ListerLocal
	}
}

// remoteLister builds the lister for a profile's remote. The returned closer
// releases any connection the lister holds.
//
//nolint:ireturn // factory returns interface by design
func remoteLister(ctx context.Context, p config.Profile) (tree.Lister, io.Closer, error) {
	kind := listerKind(p)
	loc := transport.ParseLocation(p.Remote)
	nop := io.NopCloser(nil)

	switch kind {
	case config.ListerRcloneJSON, config.ListerRcloneTree:
		mode := tree.ModeJSON
		if kind == config.ListerRcloneTree {
			mode = tree.ModeTree
		}
		return &tree.RcloneLister{
			Exe:    p.Rclone,
			Remote: p.Remote,
			Cookie: p.Cookie,
			Args:   p.RcloneArgs,
			Mode:   mode,
		}, nop, nil

	case config.ListerLocal:
		if loc.Scheme != transport.SchemeLocal {
			return nil, nil, fmt.Errorf("lister local needs a local path, got %s", loc)
		}
		return tree.NewLocalLister(loc.Path), nop, nil

	case config.ListerS3:
		if loc.Scheme != transport.SchemeS3 {
			return nil, nil, fmt.Errorf("lister s3 needs an s3://bucket/prefix remote, got %q", p.Remote)
		}
		client, err := tree.NewS3Client(ctx, tree.S3Options{
			Endpoint:  p.S3.Endpoint,
			Region:    p.S3.Region,
			AccessKey: p.S3.AccessKey,
			SecretKey: p.S3.SecretKey,
			PathStyle: p.S3.PathStyle,
		})
		if err != nil {
			return nil, nil, &tree.ListingError{Backend: kind, Root: p.Remote, Err: err}
		}
		return &tree.S3Lister{Client: client, Bucket: loc.Host, Prefix: loc.Path}, nop, nil

	case config.ListerSFTP:
		if loc.Scheme != transport.SchemeSFTP {
			return nil, nil, fmt.Errorf("lister sftp needs an sftp://[user@]host[:port]/path remote, got %q", p.Remote)
		}
		sshClient, err := transport.DialSSH(ctx, loc, transport.SSHOpts{
			KeyFile:        p.SFTP.KeyFile,
			Password:       p.SFTP.Password,
			KnownHostsFile: p.SFTP.KnownHostsFile,
			Timeout:        p.SFTP.Timeout,
			InsecureHost:   p.SFTP.InsecureHost,
		})
		if err != nil {
			return nil, nil, &tree.ListingError{Backend: kind, Root: p.Remote, Err: err}
		}
		ep, err := transport.NewSFTPEndpoint(sshClient, loc.Path)
		if err != nil {
			_ = sshClient.Close() //nolint:errcheck // best-effort cleanup
			return nil, nil, &tree.ListingError{Backend: kind, Root: p.Remote, Err: err}
		}
		return &tree.WalkLister{Endpoint: ep, Backend: kind}, ep, nil

	default:
		return nil, nil, fmt.Errorf("unknown lister %q", kind)
	}
}

// newProber builds the mount refresh probe for a profile, or nil when
// probing is disabled.
//
//nolint:ireturn // nil interface when disabled
func newProber(p config.Profile) materialize.Prober {
	if p.Probe.Disabled {
		return nil
	}
	return probe.New(probe.Config{
		Anchor:    p.LinkPrefix,
		Delay:     p.Probe.Delay,
		MaxLevels: p.Probe.MaxLevels,
	})
}
