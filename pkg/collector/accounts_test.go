package collector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPasswd = `# comment
root:x:0:0:root:/root:/bin/bash
daemon:x:1:1:daemon:/usr/sbin:/usr/sbin/nologin

+nis::::::
broken:x:abc:1:broken:/:/bin/false
short:x:5
app:x:1000:1000:App User,,,:/home/app:/bin/zsh
`

const testGroup = `root:x:0:
daemon:x:1:
wheel:x:10:root,app
bad:x:zz:
app:x:1000:
`

func testAccounts(t *testing.T) *Accounts {
	dir := t.TempDir()
	a := &Accounts{PasswdFile: filepath.Join(dir, "passwd"), GroupFile: filepath.Join(dir, "group")}
	require.NoError(t, os.WriteFile(a.PasswdFile, []byte(testPasswd), 0o600))
	require.NoError(t, os.WriteFile(a.GroupFile, []byte(testGroup), 0o600))
	return a
}

func TestAccounts_Users(t *testing.T) {
	a := testAccounts(t)
	users, err := a.Users()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, User{UID: 0, GID: 0, Username: "root", Description: "root", Directory: "/root", Shell: "/bin/bash"}, users[0])
	assert.Equal(t, "daemon", users[1].Username)
	assert.Equal(t, User{UID: 1000, GID: 1000, Username: "app", Description: "App User,,,", Directory: "/home/app",
		Shell: "/bin/zsh"}, users[2])

	u, err := a.User(1000)
	require.NoError(t, err)
	assert.Equal(t, "app", u.Username)

	_, err = a.User(987654)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccounts_Groups(t *testing.T) {
	a := testAccounts(t)
	groups, err := a.Groups()
	require.NoError(t, err)
	assert.Equal(t, []Group{{GID: 0, Name: "root"}, {GID: 1, Name: "daemon"}, {GID: 10, Name: "wheel"}, {GID: 1000, Name: "app"}}, groups)

	g, err := a.Group(10)
	require.NoError(t, err)
	assert.Equal(t, "wheel", g.Name)

	_, err = a.Group(987654)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccounts_NoFiles(t *testing.T) {
	a := &Accounts{PasswdFile: "/no/such/passwd", GroupFile: "/no/such/group"}
	_, err := a.Users()
	assert.Error(t, err)
	_, err = a.Groups()
	assert.Error(t, err)
}
