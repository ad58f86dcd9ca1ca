package iso

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/kdomanski/iso9660"
	log "github.com/sirupsen/logrus"

	"github.com/AlmaLinux/alma-sbom/internal/models"
)

const packageSuffix = ".rpm"

// ErrNotReleased is returned by Iterator when Next is called while the
// previous entry is still borrowed
var ErrNotReleased = errors.New("previous package entry was not released")

// Collector describes an installation image and walks the packages it ships
type Collector struct {
	fsys   fs.FS
	closer io.Closer
	info   *TreeInfo
}

// OpenImage opens an ISO9660 image file
func OpenImage(path string) (*Collector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, path, err)
	}

	img, err := iso9660.OpenImage(f)
	if err != nil {
		f.Close()
		return nil, models.NewError(models.ErrMalformedInput, path, fmt.Errorf("failed to open ISO image: %w", err))
	}
	fsys, err := newImageFS(img)
	if err != nil {
		f.Close()
		return nil, models.NewError(models.ErrMalformedInput, path, fmt.Errorf("failed to read root directory: %w", err))
	}

	return &Collector{fsys: fsys, closer: f}, nil
}

// NewCollector creates a collector over an already opened image tree
func NewCollector(fsys fs.FS) *Collector {
	return &Collector{fsys: fsys}
}

// Close releases the image
func (c *Collector) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// CollectIso reads the image descriptor and returns the Iso without packages
func (c *Collector) CollectIso() (*models.Iso, error) {
	data, err := fs.ReadFile(c.fsys, treeInfoPath)
	if err != nil {
		return nil, models.NewError(models.ErrMalformedInput, treeInfoPath, err)
	}

	info, err := ParseTreeInfo(data)
	if err != nil {
		return nil, models.NewError(models.ErrMalformedInput, treeInfoPath, err)
	}
	imageType, err := info.ImageType()
	if err != nil {
		return nil, models.NewError(models.ErrMalformedInput, treeInfoPath, err)
	}
	c.info = info

	log.Infof("Found %s %s %s image", info.Family, info.Version, imageType)
	return &models.Iso{
		ReleaseVersion: info.Version,
		ImageType:      imageType,
	}, nil
}

// Packages starts a single pass over the packages of every variant.
// CollectIso must be called first.
func (c *Collector) Packages() (*Iterator, error) {
	if c.info == nil {
		return nil, fmt.Errorf("image descriptor has not been read")
	}

	scratch, err := NewScratch()
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, "scratch buffer", err)
	}

	return &Iterator{
		fsys:     c.fsys,
		variants: c.info.Variants,
		scratch:  scratch,
	}, nil
}

// Entry is a package copied out of the image. Path stays valid only until
// the entry is released.
type Entry struct {
	Variant string
	Name    string
	Size    int64
	Path    string
}

// Iterator yields the packages of an image one at a time through a single
// scratch buffer. Each entry must be released before the next call to Next.
type Iterator struct {
	fsys     fs.FS
	variants []Variant
	scratch  *Scratch

	variant  int
	dir      string
	pending  []fs.DirEntry
	current  *Entry
	borrowed bool
	err      error
}

// Next copies the next package into the scratch buffer
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}
	if it.borrowed {
		it.err = ErrNotReleased
		return false
	}

	for {
		for len(it.pending) == 0 {
			if it.variant >= len(it.variants) {
				return false
			}
			v := it.variants[it.variant]
			it.variant++

			entries, err := fs.ReadDir(it.fsys, v.Packages)
			if err != nil {
				it.err = models.NewError(models.ErrMalformedInput, v.Packages, fmt.Errorf("failed to list variant %s: %w", v.Name, err))
				return false
			}
			log.Debugf("Variant %s has %d entries in %s", v.Name, len(entries), v.Packages)
			it.dir = v.Packages
			it.pending = entries
		}

		entry := it.pending[0]
		it.pending = it.pending[1:]
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), packageSuffix) {
			continue
		}

		name := path.Join(it.dir, entry.Name())
		size, err := it.fill(name)
		if err != nil {
			it.err = models.NewError(models.ErrFileOp, name, err)
			return false
		}

		it.current = &Entry{
			Variant: it.variants[it.variant-1].Name,
			Name:    entry.Name(),
			Size:    size,
			Path:    it.scratch.Path(),
		}
		it.borrowed = true
		return true
	}
}

func (it *Iterator) fill(name string) (int64, error) {
	f, err := it.fsys.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return it.scratch.Fill(f)
}

// Entry returns the package produced by the last successful Next
func (it *Iterator) Entry() *Entry {
	return it.current
}

// Release hands the scratch buffer back to the iterator
func (it *Iterator) Release() {
	it.current = nil
	it.borrowed = false
}

// Err returns the error that stopped the iteration, if any
func (it *Iterator) Err() error {
	return it.err
}

// Close releases the scratch buffer
func (it *Iterator) Close() error {
	return it.scratch.Close()
}
