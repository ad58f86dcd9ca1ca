package iso

import (
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/kdomanski/iso9660"
)

// imageFS exposes an ISO9660 image as an fs.FS. Names are the Rock Ridge
// names when the image carries them.
type imageFS struct {
	root *iso9660.File
}

func newImageFS(img *iso9660.Image) (*imageFS, error) {
	root, err := img.RootDir()
	if err != nil {
		return nil, err
	}
	return &imageFS{root: root}, nil
}

// Open implements fs.FS
func (fsys *imageFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	current := fsys.root
	if name != "." {
		for _, part := range strings.Split(name, "/") {
			next, err := child(current, part)
			if err != nil {
				return nil, &fs.PathError{Op: "open", Path: name, Err: err}
			}
			current = next
		}
	}
	return &imageFile{file: current}, nil
}

func child(dir *iso9660.File, name string) (*iso9660.File, error) {
	if !dir.IsDir() {
		return nil, fs.ErrNotExist
	}
	children, err := dir.GetChildren()
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fs.ErrNotExist
}

// imageFile is an open file or directory of the image
type imageFile struct {
	file    *iso9660.File
	reader  io.Reader
	entries []fs.DirEntry
	listed  bool
	offset  int
}

func (f *imageFile) Stat() (fs.FileInfo, error) {
	return fileInfo{f.file}, nil
}

func (f *imageFile) Read(p []byte) (int, error) {
	if f.file.IsDir() {
		return 0, &fs.PathError{Op: "read", Path: f.file.Name(), Err: fs.ErrInvalid}
	}
	if f.reader == nil {
		f.reader = f.file.Reader()
	}
	return f.reader.Read(p)
}

func (f *imageFile) Close() error {
	return nil
}

// ReadDir implements fs.ReadDirFile. Entries are returned in image order.
func (f *imageFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !f.listed {
		if err := f.list(); err != nil {
			return nil, err
		}
	}

	rest := f.entries[f.offset:]
	if n <= 0 {
		f.offset = len(f.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	f.offset += n
	return rest[:n], nil
}

func (f *imageFile) list() error {
	if !f.file.IsDir() {
		return &fs.PathError{Op: "readdir", Path: f.file.Name(), Err: fs.ErrInvalid}
	}
	children, err := f.file.GetChildren()
	if err != nil {
		return err
	}

	f.entries = make([]fs.DirEntry, 0, len(children))
	for _, c := range children {
		switch c.Name() {
		case "", ".", "..", "\x00", "\x01":
			continue
		}
		f.entries = append(f.entries, fs.FileInfoToDirEntry(fileInfo{c}))
	}
	f.listed = true
	return nil
}

// fileInfo implements fs.FileInfo for image entries
type fileInfo struct {
	file *iso9660.File
}

func (fi fileInfo) Name() string       { return path.Base(fi.file.Name()) }
func (fi fileInfo) Size() int64        { return fi.file.Size() }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return fi.file.IsDir() }
func (fi fileInfo) Sys() interface{}   { return nil }

func (fi fileInfo) Mode() fs.FileMode {
	if fi.file.IsDir() {
		return fs.ModeDir | 0555
	}
	return 0444
}
