// Package catalog holds the opened folders and their images, applies field
// edits through the sidecar and keeps the tag index in step with both.
//
// A Catalog is not safe for concurrent use. All reads and writes are
// expected to happen on one goroutine.
package catalog

import (
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"tagshelf/internal/config"
	"tagshelf/internal/errors"
	"tagshelf/internal/index"
	"tagshelf/internal/log"
	"tagshelf/internal/sidecar"
	"tagshelf/pkg/types"
)

// Sidecar runs one command block and returns its output.
// *sidecar.Driver satisfies it.
type Sidecar interface {
	Submit(lines []string) (string, error)
}

// Catalog is the in-memory catalog of opened folders
type Catalog struct {
	sidecar Sidecar
	folders []*Folder
	index   *index.Index

	// changes on every structural mutation; addresses from an older
	// generation must be re-resolved
	generation string

	exts       []string
	labelWidth int
	exclude    []glob.Glob
	recursive  bool
	logger     log.Logging
	probe      func(path string) string
	onWrite    func(path string)

	writeErrs []error
}

// Option configures a Catalog
type Option func(*Catalog)

// WithConfig applies the catalog section of cfg
func WithConfig(cfg *config.Config) Option {
	return func(c *Catalog) {
		c.exts = cfg.Catalog.Extensions
		c.labelWidth = cfg.Catalog.LabelWidth
		c.recursive = cfg.Catalog.Recursive
		c.exclude = compileExcludes(cfg.Catalog.Exclude, c.logger)
	}
}

// WithLogger replaces the package-level logger
func WithLogger(logger log.Logging) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithSizeProbe replaces the EXIF dimension fallback
func WithSizeProbe(probe func(path string) string) Option {
	return func(c *Catalog) {
		c.probe = probe
	}
}

// WithWriteObserver registers fn to be called with each file path just
// before a field write is sent for it
func WithWriteObserver(fn func(path string)) Option {
	return func(c *Catalog) {
		c.onWrite = fn
	}
}

// New creates an empty catalog that reads and writes through sc
func New(sc Sidecar, opts ...Option) *Catalog {
	defaults := config.New()
	c := &Catalog{
		sidecar:    sc,
		index:      index.New(),
		generation: uuid.NewString(),
		exts:       defaults.Catalog.Extensions,
		labelWidth: defaults.Catalog.LabelWidth,
		recursive:  defaults.Catalog.Recursive,
		logger:     log.Default(),
		probe:      probeSize,
	}
	c.exclude = compileExcludes(defaults.Catalog.Exclude, c.logger)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OpenFolders opens every folder named or implied by paths and rebuilds the
// index. A file path opens its parent folder; its address is returned when
// it was found in the bulk read (the last such file wins). Folders that are
// already open are re-read in place. Read failures are logged per folder and
// never abort the call.
func (c *Catalog) OpenFolders(paths []string) (types.Address, bool) {
	found := c.discover(paths)

	for _, dir := range found.folders {
		c.loadFolder(dir)
	}
	c.rebuild()

	var addr types.Address
	ok := false
	for _, file := range found.files {
		if a, hit := c.Resolve(file); hit {
			addr, ok = a, true
		} else {
			c.logger.With(log.F("path", file)).Warn("Opened file was not returned by the bulk read")
		}
	}

	c.logger.With(log.F("folders", len(c.folders)), log.F("images", c.Len())).Info("Catalog opened")
	return addr, ok
}

// CloseFolder removes the folder at path and all of its images. Every
// address handed out before the call is invalidated.
func (c *Catalog) CloseFolder(path string) bool {
	i := c.folderIndex(path)
	if i < 0 {
		return false
	}
	c.folders = append(c.folders[:i], c.folders[i+1:]...)
	c.rebuild()
	c.logger.With(log.F("folder", path)).Info("Folder closed")
	return true
}

// ReloadFolder re-reads an open folder in place
func (c *Catalog) ReloadFolder(path string) bool {
	i := c.folderIndex(path)
	if i < 0 {
		return false
	}
	c.loadFolder(c.folders[i].Path)
	c.rebuild()
	return true
}

func (c *Catalog) loadFolder(dir string) {
	folder := newFolder(dir, c.labelWidth)

	images, err := c.readFolder(dir)
	if err != nil {
		log.LogWithError(err).Warn("Folder registered without images")
	}
	folder.Images = images

	if i := c.folderIndex(dir); i >= 0 {
		folder.Collapsed = c.folders[i].Collapsed
		c.folders[i] = folder
		return
	}
	c.folders = append(c.folders, folder)
}

func (c *Catalog) readFolder(dir string) ([]*Image, error) {
	response, err := c.sidecar.Submit(sidecar.ReadFolderArgs(dir, c.exts, false))
	if err != nil {
		return nil, errors.NewFolderError("bulk read failed", dir, err)
	}

	images, skipped, err := parseRecords(dir, response)
	if err != nil {
		return nil, err
	}
	for _, recErr := range skipped {
		log.LogWithError(recErr).Warn("Skipped metadata record")
	}

	kept := images[:0]
	for _, img := range images {
		// a -r read or a symlinked path can report files outside dir
		if filepath.Dir(img.Path) != dir {
			c.logger.With(log.F("path", img.Path), log.F("folder", dir)).Debug("Record outside folder")
			continue
		}
		if img.Size == "" && c.probe != nil {
			img.Size = c.probe(img.Path)
		}
		img.Notes = decodeNotes(img.Notes)
		kept = append(kept, img)
	}
	return kept, nil
}

func (c *Catalog) rebuild() {
	c.index.Rebuild(c)
	c.generation = uuid.NewString()
}

// EachTerm implements index.Source over the current folders
func (c *Catalog) EachTerm(fn func(term string, addr types.Address)) {
	for f, folder := range c.folders {
		for i, img := range folder.Images {
			addr := types.Addr(f, i)
			for _, term := range img.Terms() {
				fn(term, addr)
			}
		}
	}
}

func (c *Catalog) folderIndex(path string) int {
	path = filepath.Clean(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	for i, f := range c.folders {
		if f.Path == path {
			return i
		}
	}
	return -1
}

// Resolve finds the address of file by its parent folder and full path
func (c *Catalog) Resolve(file string) (types.Address, bool) {
	path, err := cleanPath(file)
	if err != nil {
		return types.Address{}, false
	}
	parent := filepath.Dir(path)
	for f, folder := range c.folders {
		if folder.Path != parent {
			continue
		}
		for i, img := range folder.Images {
			if img.Path == path {
				return types.Addr(f, i), true
			}
		}
	}
	return types.Address{}, false
}

// Image returns the image at addr or a StaleAddress error
func (c *Catalog) Image(addr types.Address) (*Image, error) {
	if addr.Folder < 0 || addr.Folder >= len(c.folders) {
		return nil, errors.NewAddressError(addr.Folder, addr.Image)
	}
	images := c.folders[addr.Folder].Images
	if addr.Image < 0 || addr.Image >= len(images) {
		return nil, errors.NewAddressError(addr.Folder, addr.Image)
	}
	return images[addr.Image], nil
}

// Folder returns the folder at position i
func (c *Catalog) Folder(i int) (*Folder, error) {
	if i < 0 || i >= len(c.folders) {
		return nil, errors.NewAddressError(i, -1)
	}
	return c.folders[i], nil
}

// Folders returns the open folders in order. The slice must not be modified.
func (c *Catalog) Folders() []*Folder {
	return c.folders
}

// ToggleCollapsed flips the display-only collapsed flag of folder i
func (c *Catalog) ToggleCollapsed(i int) error {
	f, err := c.Folder(i)
	if err != nil {
		return err
	}
	f.Collapsed = !f.Collapsed
	return nil
}

// FolderCount returns the number of open folders
func (c *Catalog) FolderCount() int {
	return len(c.folders)
}

// ImageCount returns the number of images in folder i, 0 if out of range
func (c *Catalog) ImageCount(i int) int {
	if i < 0 || i >= len(c.folders) {
		return 0
	}
	return len(c.folders[i].Images)
}

// Len returns the total number of images
func (c *Catalog) Len() int {
	n := 0
	for _, f := range c.folders {
		n += len(f.Images)
	}
	return n
}

// Index returns the catalog's tag index
func (c *Catalog) Index() *index.Index {
	return c.index
}

// Lookup returns the addresses carrying term
func (c *Catalog) Lookup(term string) []types.Address {
	return c.index.Lookup(term)
}

// Generation identifies the current folder layout
func (c *Catalog) Generation() string {
	return c.generation
}
