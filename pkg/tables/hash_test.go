package tables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/hostql/pkg/hashcache"
	"github.com/umputun/hostql/pkg/table"
)

func TestHash_Generate(t *testing.T) {
	dir := makeTree(t)
	cache := hashcache.New(true)
	tbl := &Hash{Cache: cache}
	require.NoError(t, tbl.Schema().Validate())

	t.Run("path", func(t *testing.T) {
		rows, err := tbl.Generate(req("path", table.Eq(filepath.Join(dir, "a.txt"))))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, map[string]string{
			"path":      filepath.Join(dir, "a.txt"),
			"directory": dir,
			"md5":       "2adfc0fd337a144cb2f8abd7cb0bf98e",
			"sha1":      "21bd89f4580ef635e87f655fab5807a01e0ff2e9",
			"sha256":    "6f1c16ac918f64721d14ff4bb3c51fe25ffde92f795ce6dbeb45722ce9d6e05c",
		}, rows[0].Map())
	})

	t.Run("directories and missing files skipped", func(t *testing.T) {
		rows, err := tbl.Generate(req("path", table.Eq(dir), table.Eq(filepath.Join(dir, "sub")),
			table.Eq(filepath.Join(dir, "missing"))))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("directory listing", func(t *testing.T) {
		rows, err := tbl.Generate(req("directory", table.Eq(filepath.Join(dir, "sub"))))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, filepath.Join(dir, "sub", "c.txt"), rows[0].Value("path"))
		assert.Equal(t, filepath.Join(dir, "sub"), rows[0].Value("directory"))
	})

	t.Run("no constraints", func(t *testing.T) {
		rows, err := tbl.Generate(table.NewRequest(table.NewConstraintSet()))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestHash_DigestsNotUsed(t *testing.T) {
	dir := makeTree(t)
	cache := hashcache.New(true)
	tbl := &Hash{Cache: cache}

	cs := table.NewConstraintSet(table.ColumnConstraint{Column: "path", Constraint: table.Eq(filepath.Join(dir, "a.txt"))})
	rows, err := tbl.Generate(table.NewRequest(cs, "path"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Value("md5"))
	assert.Equal(t, hashcache.Stats{}, cache.Stats(), "content not read")

	rows, err = tbl.Generate(table.NewRequest(cs, "path", "sha1"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "21bd89f4580ef635e87f655fab5807a01e0ff2e9", rows[0].Value("sha1"))
	assert.Equal(t, int64(1), cache.Stats().Misses)
}

func TestHash_Device(t *testing.T) {
	if _, err := os.Stat("/dev/zero"); err != nil {
		t.Skip("no /dev/zero")
	}
	rows, err := (&Hash{Cache: hashcache.New(false)}).Generate(req("path", table.Eq("/dev/zero")))
	require.NoError(t, err)
	assert.Empty(t, rows, "devices are not hashed")
}
