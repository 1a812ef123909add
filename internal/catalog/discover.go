package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gobwas/glob"

	"tagshelf/internal/errors"
	"tagshelf/internal/log"
)

// discovery is the outcome of expanding user-supplied paths
type discovery struct {
	folders []string // cleaned, de-duplicated, in first-seen order
	files   []string // single files whose folder was opened
}

func (d *discovery) addFolder(path string, seen map[string]bool) {
	if seen[path] {
		return
	}
	seen[path] = true
	d.folders = append(d.folders, path)
}

// discover turns paths into the folders to read. Files contribute their
// parent directory; directories contribute themselves and, when recursive,
// every nested directory not matched by an exclude pattern.
func (c *Catalog) discover(paths []string) discovery {
	var d discovery
	seen := make(map[string]bool)

	for _, input := range paths {
		path, err := cleanPath(input)
		if err != nil {
			log.LogWithError(errors.NewFileError("cannot resolve path", input, errors.InvalidPath, err)).Warn("Skipping path")
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			kind := errors.FileAccessDenied
			if os.IsNotExist(err) {
				kind = errors.FileNotFound
			}
			log.LogWithError(errors.NewFileError("cannot open path", path, kind, err)).Warn("Skipping path")
			continue
		}

		if !info.IsDir() {
			c.checkImageFile(path)
			d.files = append(d.files, path)
			d.addFolder(filepath.Dir(path), seen)
			continue
		}

		if !c.recursive {
			d.addFolder(path, seen)
			continue
		}

		err = filepath.WalkDir(path, func(p string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				c.logger.With(log.F("path", p), log.F("error", walkErr.Error())).Warn("Cannot read directory")
				if entry != nil && entry.IsDir() && p != path {
					return filepath.SkipDir
				}
				return nil
			}
			if !entry.IsDir() {
				return nil
			}
			if p != path && c.excluded(entry.Name()) {
				c.logger.With(log.F("path", p)).Debug("Excluded directory")
				return filepath.SkipDir
			}
			d.addFolder(p, seen)
			return nil
		})
		if err != nil {
			c.logger.With(log.F("path", path), log.F("error", err.Error())).Warn("Directory walk stopped early")
		}
	}
	return d
}

func (c *Catalog) excluded(name string) bool {
	for _, g := range c.exclude {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// checkImageFile warns when a single file will not show up in its folder
// after the bulk read.
func (c *Catalog) checkImageFile(path string) {
	logger := c.logger.With(log.F("path", path))

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !c.hasExtension(ext) {
		logger.With(log.F("extension", ext)).Warn("File extension is not catalogued")
		return
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		logger.With(log.F("error", err.Error())).Debug("Cannot detect content type")
		return
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		logger.With(log.F("mime", mtype.String())).Warn("File does not look like an image")
	}
}

func (c *Catalog) hasExtension(ext string) bool {
	for _, e := range c.exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func compileExcludes(patterns []string, logger log.Logging) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			logger.With(log.F("pattern", p), log.F("error", err.Error())).Warn("Ignoring invalid exclude pattern")
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

func cleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
