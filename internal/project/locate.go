package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Project is one directory that holds a manifest.
type Project struct {
	Dir      string // absolute
	Rel      string // slash-separated, relative to the base directory
	Manifest string
	Name     string
}

// Label returns a short human name for progress output.
func (p Project) Label() string {
	if p.Name != "" && p.Rel != "" && p.Rel != "." {
		return p.Rel + " (" + p.Name + ")"
	}
	if p.Rel != "" {
		return p.Rel
	}
	return p.Dir
}

// Locator expands a glob under a base directory into project directories.
type Locator struct {
	fs  afero.Fs
	log *zap.SugaredLogger
}

func NewLocator(fsys afero.Fs, log *zap.SugaredLogger) *Locator {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Locator{fs: fsys, log: log}
}

// Locate returns every directory under base whose base-relative path matches
// pattern and that contains a manifest. Matches without a manifest are
// excluded silently. Results follow the directory walk order.
func (l *Locator) Locate(base, pattern string) ([]Project, error) {
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, errors.Wrap(err, "resolve base directory")
	}
	pattern = normalizePattern(pattern)
	if pattern == "" {
		return nil, errors.WithHint(errors.New("empty glob pattern"), "omit the pattern to check the base directory only")
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, errors.Wrapf(err, "invalid glob pattern %q", pattern)
	}

	var projects []Project
	walkErr := afero.Walk(l.fs, base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == base {
				return err
			}
			l.log.Debugw("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == ".git" {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." && pattern != "." {
			return nil
		}
		if !g.Match(rel) {
			return nil
		}
		proj, ok := l.inspect(path, rel)
		if ok {
			projects = append(projects, proj)
		}
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrapf(walkErr, "walk %s", base)
	}
	return projects, nil
}

func (l *Locator) inspect(dir, rel string) (Project, bool) {
	manifestPath := filepath.Join(dir, ManifestName)
	info, err := l.fs.Stat(manifestPath)
	if err != nil || info.IsDir() {
		return Project{}, false
	}
	proj := Project{Dir: dir, Rel: rel, Manifest: manifestPath}
	m, err := LoadManifest(l.fs, manifestPath)
	if err != nil {
		l.log.Warnw("manifest could not be read, checking anyway", "manifest", manifestPath, "error", err)
		return proj, true
	}
	proj.Name = m.Name
	return proj, true
}

// Root describes dir as a single project. The nearest manifest at or above
// dir supplies the name. Without one the tool will fail to find a crate, so
// that case is logged.
func (l *Locator) Root(dir string) Project {
	proj := Project{Dir: dir, Rel: "."}
	manifestPath, ok, err := FindManifest(l.fs, dir)
	switch {
	case err != nil:
		l.log.Warnw("manifest lookup failed", "dir", dir, "error", err)
		return proj
	case !ok:
		l.log.Warnw("no "+ManifestName+" at or above workspace", "dir", dir)
		return proj
	}
	proj.Manifest = manifestPath
	m, err := LoadManifest(l.fs, manifestPath)
	if err != nil {
		l.log.Warnw("manifest could not be read, checking anyway", "manifest", manifestPath, "error", err)
		return proj
	}
	proj.Name = m.Name
	return proj
}

func normalizePattern(pattern string) string {
	pattern = strings.TrimSpace(filepath.ToSlash(pattern))
	for strings.HasPrefix(pattern, "./") {
		pattern = strings.TrimPrefix(pattern, "./")
	}
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	return pattern
}
