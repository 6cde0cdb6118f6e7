package tables

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/umputun/hostql/pkg/table"
)

// File is file table, stat information of paths selected by path or directory constraints.
// Without such constraints the table is empty. LIKE patterns are expanded by globbing the filesystem,
// which matches letter case exactly, so a pattern differing from the names only in case selects nothing.
type File struct{}

var fileSchema = table.Schema{
	{Name: "path", Required: true},
	{Name: "directory", Required: true},
	{Name: "filename"},
	{Name: "inode", Type: table.BigInt},
	{Name: "uid", Type: table.BigInt},
	{Name: "gid", Type: table.BigInt},
	{Name: "mode"},
	{Name: "device", Type: table.BigInt},
	{Name: "size", Type: table.BigInt},
	{Name: "block_size", Type: table.Integer},
	{Name: "atime", Type: table.BigInt},
	{Name: "mtime", Type: table.BigInt},
	{Name: "ctime", Type: table.BigInt},
	{Name: "hard_links", Type: table.Integer},
	{Name: "symlink", Type: table.Integer},
	{Name: "type"},
}

// Name of the table
func (t *File) Name() string { return "file" }

// Schema of the table
func (t *File) Schema() table.Schema { return fileSchema }

// Generate returns a row per existing selected path, vanished paths are skipped
func (t *File) Generate(req table.Request) ([]table.Row, error) {
	targets := resolveTargets(req.Constraints)
	res := make([]table.Row, 0, len(targets))
	for _, tg := range targets {
		row, err := fileRow(tg)
		if err != nil {
			log.Printf("[DEBUG] %v", err)
			continue
		}
		res = append(res, row)
	}
	return res, nil
}

// fileRow stats the target following symlinks, the symlink column tells if the path itself is a link.
// Dangling links are reported with the information of the link.
func fileRow(tg target) (table.Row, error) {
	lfi, err := os.Lstat(tg.path)
	if err != nil {
		return table.Row{}, fmt.Errorf("can't stat %s: %w", tg.path, err)
	}
	fi := lfi
	isLink := lfi.Mode()&fs.ModeSymlink != 0
	if isLink {
		if sfi, err := os.Stat(tg.path); err == nil {
			fi = sfi
		}
	}

	row := fileSchema.NewRow()
	row.Set("path", tg.path)
	row.Set("directory", tg.dir)
	row.Set("filename", filepath.Base(tg.path))
	row.SetInt("size", fi.Size())
	row.Set("mode", fmt.Sprintf("%04o", unixMode(fi.Mode())))
	row.SetInt("mtime", fi.ModTime().Unix())
	row.SetBool("symlink", isLink)
	row.Set("type", fileType(fi.Mode()))

	if st, ok := statOf(fi); ok {
		row.SetUint("inode", st.inode)
		row.SetUint("uid", st.uid)
		row.SetUint("gid", st.gid)
		row.SetUint("device", st.device)
		row.SetInt("block_size", st.blockSize)
		row.SetInt("atime", st.atime)
		row.SetInt("ctime", st.ctime)
		row.SetUint("hard_links", st.hardLinks)
	}
	return row, nil
}

// fileStat is the platform specific part of file information
type fileStat struct {
	inode, uid, gid, device, hardLinks uint64
	blockSize                          int64
	atime, ctime                       int64
}

// unixMode returns permission bits with setuid, setgid and sticky bits in their unix positions
func unixMode(m fs.FileMode) uint32 {
	res := uint32(m.Perm())
	if m&fs.ModeSetuid != 0 {
		res |= 0o4000
	}
	if m&fs.ModeSetgid != 0 {
		res |= 0o2000
	}
	if m&fs.ModeSticky != 0 {
		res |= 0o1000
	}
	return res
}

func fileType(m fs.FileMode) string {
	switch {
	case m.IsRegular():
		return "regular"
	case m.IsDir():
		return "directory"
	case m&fs.ModeSymlink != 0:
		return "symlink"
	case m&fs.ModeDevice != 0 && m&fs.ModeCharDevice != 0:
		return "character"
	case m&fs.ModeDevice != 0:
		return "block"
	case m&fs.ModeNamedPipe != 0:
		return "fifo"
	case m&fs.ModeSocket != 0:
		return "socket"
	default:
		return "unknown"
	}
}
