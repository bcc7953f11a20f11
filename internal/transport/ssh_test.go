package transport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAuthMethods_PasswordOnly(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("HOME", t.TempDir())

	assert.Empty(t, buildAuthMethods(SSHOpts{}))
	assert.Len(t, buildAuthMethods(SSHOpts{Password: "secret"}), 1)
}

func TestKeyFileAuth_Unusable(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "id_ed25519")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0o600))

	assert.Nil(t, keyFileAuth(filepath.Join(dir, "missing")))
	assert.Nil(t, keyFileAuth(garbage))
}

func TestHostKeyCallback(t *testing.T) {
	cb, err := hostKeyCallback(SSHOpts{InsecureHost: true})
	require.NoError(t, err)
	assert.NotNil(t, cb)

	_, err = hostKeyCallback(SSHOpts{KnownHostsFile: filepath.Join(t.TempDir(), "absent")})
	assert.ErrorContains(t, err, "known_hosts")

	empty := filepath.Join(t.TempDir(), "known_hosts")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cb, err = hostKeyCallback(SSHOpts{KnownHostsFile: empty})
	require.NoError(t, err)
	assert.NotNil(t, cb)
}

func TestDialSSH_NoAuth(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("HOME", t.TempDir())

	_, err := DialSSH(context.Background(), Location{Scheme: SchemeSFTP, Host: "127.0.0.1", User: "u"}, SSHOpts{})
	assert.ErrorContains(t, err, "no SSH auth methods")
}
