package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHOpts configures SSH connection behavior.
type SSHOpts struct {
	KeyFile        string // override key file path; empty = try defaults
	Password       string // empty = skip password auth
	KnownHostsFile string // empty = ~/.ssh/known_hosts
	Timeout        time.Duration
	InsecureHost   bool // skip host key verification
}

// DialSSH establishes an SSH connection to an sftp:// location.
//
// Auth methods are tried in order:
//  1. SSH agent (if SSH_AUTH_SOCK is set)
//  2. SSHOpts.KeyFile, or ~/.ssh/id_ed25519, id_ecdsa, id_rsa
//  3. SSHOpts.Password
func DialSSH(ctx context.Context, loc Location, opts SSHOpts) (*ssh.Client, error) {
	userName := loc.User
	if userName == "" {
		u, err := user.Current()
		if err != nil {
			return nil, fmt.Errorf("determine current user: %w", err)
		}
		userName = u.Username
	}

	port := loc.Port
	if port == 0 {
		port = 22
	}

	authMethods := buildAuthMethods(opts)
	if len(authMethods) == 0 {
		return nil, errors.New("no SSH auth methods available (set SSH_AUTH_SOCK, provide a key, or password)")
	}

	hostKeyCallback, err := hostKeyCallback(opts)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	config := &ssh.ClientConfig{
		User:            userName,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(loc.Host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake %s: %w", addr, err)
	}
	return ssh.NewClient(c, chans, reqs), nil
}

func buildAuthMethods(opts SSHOpts) []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	if opts.KeyFile != "" {
		if m := keyFileAuth(opts.KeyFile); m != nil {
			methods = append(methods, m)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
			if m := keyFileAuth(filepath.Join(home, ".ssh", name)); m != nil {
				methods = append(methods, m)
			}
		}
	}

	if opts.Password != "" {
		methods = append(methods, ssh.Password(opts.Password))
	}

	return methods
}

func keyFileAuth(path string) ssh.AuthMethod {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil
	}
	return ssh.PublicKeys(signer)
}

func hostKeyCallback(opts SSHOpts) (ssh.HostKeyCallback, error) {
	if opts.InsecureHost {
		//nolint:gosec // explicit opt-in from configuration
		return ssh.InsecureIgnoreHostKey(), nil
	}
	path := opts.KnownHostsFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %s: %w", path, err)
	}
	return cb, nil
}
