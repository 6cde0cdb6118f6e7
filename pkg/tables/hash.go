package tables

import (
	"errors"
	"log"
	"os"

	"github.com/umputun/hostql/pkg/hashcache"
	"github.com/umputun/hostql/pkg/table"
)

// Hash is hash table, md5, sha1 and sha256 of regular files selected by path or directory constraints.
// Anything but regular files, and files vanished before hashing, produce no rows.
// Paths are selected the same way as for File, LIKE patterns match letter case exactly.
type Hash struct {
	Cache *hashcache.Cache
}

var hashSchema = table.Schema{
	{Name: "path", Required: true},
	{Name: "directory", Required: true},
	{Name: "md5"},
	{Name: "sha1"},
	{Name: "sha256"},
}

// Name of the table
func (t *Hash) Name() string { return "hash" }

// Schema of the table
func (t *Hash) Schema() table.Schema { return hashSchema }

// Generate returns digests of the selected files. Content is not read if no digest column is used.
func (t *Hash) Generate(req table.Request) ([]table.Row, error) {
	targets := resolveTargets(req.Constraints)
	withDigests := req.AnyColumnUsed("md5", "sha1", "sha256")
	res := make([]table.Row, 0, len(targets))
	for _, tg := range targets {
		if fi, err := os.Stat(tg.path); err != nil || !fi.Mode().IsRegular() {
			continue // devices, pipes and directories are not hashed
		}
		row := hashSchema.NewRow()
		row.Set("path", tg.path)
		row.Set("directory", tg.dir)
		if withDigests {
			d, err := t.Cache.GetOrCompute(tg.path)
			if err != nil {
				if !errors.Is(err, hashcache.ErrNotFound) {
					log.Printf("[DEBUG] can't hash %s, %v", tg.path, err)
				}
				continue
			}
			row.Set("md5", d.MD5)
			row.Set("sha1", d.SHA1)
			row.Set("sha256", d.SHA256)
		}
		res = append(res, row)
	}
	return res, nil
}
