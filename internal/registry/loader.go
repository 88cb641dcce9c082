package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"surrogated/internal/artifact"
	"surrogated/internal/catalog"
	"surrogated/internal/common/fsutil"
	"surrogated/internal/model"
)

// Options tunes LoadDir. The zero value is usable.
type Options struct {
	// Extensions are tried in order for each configuration.
	// Empty means artifact.Extensions.
	Extensions []string
	// NoLoadRepair skips the repair pass applied to each handle after loading.
	NoLoadRepair bool
	// Logger receives one line per missing or corrupt artifact. Nil is silent.
	Logger *zerolog.Logger
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return artifact.Extensions
	}
	return o.Extensions
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger == nil {
		l := zerolog.Nop()
		return &l
	}
	return o.Logger
}

// LoadDir builds a registry for names from the artifacts in dir. Missing and
// corrupt artifacts are recorded per configuration. A directory that does not
// exist leaves every configuration missing; only a path that exists but
// cannot be read is an error.
func LoadDir(dir string, names []catalog.Name, opts Options) (*Registry, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	log := opts.logger()
	files, err := os.ReadDir(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("dir", abs).Msg("models directory does not exist")
	case err != nil:
		return nil, fmt.Errorf("read dir: %w", err)
	}
	start := time.Now()

	r := &Registry{dir: abs, entries: make(map[catalog.Name]Entry, len(names))}
	for _, n := range names {
		r.add(loadEntry(abs, n, opts))
	}
	warnStray(files, r, log)

	counts := map[Status]int{}
	for _, e := range r.entries {
		counts[e.Status]++
	}
	for _, s := range []Status{StatusLoaded, StatusMissing, StatusCorrupt} {
		registryModels.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
	log.Info().
		Str("dir", abs).
		Int("loaded", counts[StatusLoaded]).
		Int("missing", counts[StatusMissing]).
		Int("corrupt", counts[StatusCorrupt]).
		Dur("dur", time.Since(start)).
		Msg("registry loaded")
	return r, nil
}

func loadEntry(dir string, n catalog.Name, opts Options) Entry {
	log := opts.logger()
	e := Entry{Name: n}
	h, path, err := Load(dir, n, opts.extensions())
	e.Path = path
	switch {
	case err == nil:
		e.Status = StatusLoaded
		e.Handle = h
		if !opts.NoLoadRepair {
			e.Repair = RepairBuffers(h)
			if e.Repair.Replaced > 0 {
				log.Debug().Str("configuration", string(n)).Int("buffers", e.Repair.Replaced).Msg("normalized buffers at load")
			}
		}
	case IsArtifactMissing(err):
		e.Status = StatusMissing
		e.Err = err.Error()
		log.Warn().Str("configuration", string(n)).Msg("missing model file")
	default:
		e.Status = StatusCorrupt
		e.Err = err.Error()
		log.Error().Str("configuration", string(n)).Str("path", path).Err(err).Msg("failed to load model")
	}
	return e
}

// Load reads the artifact for n from dir and returns its normalized handle.
// It returns the path it used (empty when nothing was found).
func Load(dir string, n catalog.Name, exts []string) (model.Component, string, error) {
	var path string
	for _, ext := range exts {
		p := filepath.Join(dir, catalog.ArtifactFile(n, ext))
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			path = p
			break
		}
	}
	if path == "" {
		return nil, "", ErrArtifactMissing
	}
	parts, err := open(path)
	if err != nil {
		return nil, path, artifactCorruptError{path: path, err: err}
	}
	return Unwrap(parts), path, nil
}

// open guards against codecs that panic on hostile input.
func open(path string) (parts []model.Component, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode panic: %v", r)
		}
	}()
	return artifact.Open(path)
}

// Unwrap picks the handle out of a decoded artifact: the first part that is a
// Predictor or a Function. If none qualifies the artifact is used whole.
func Unwrap(parts []model.Component) model.Component {
	for _, p := range parts {
		if model.Invocable(p) {
			return p
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return &model.Tuple{Parts: parts}
}

// warnStray logs artifacts in dir that match the naming convention but belong
// to no requested configuration.
func warnStray(files []os.DirEntry, r *Registry, log *zerolog.Logger) {
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		ext := filepath.Ext(name)
		if !strings.HasPrefix(name, "surrogate_") || !artifact.Supported(ext) {
			continue
		}
		cfg := catalog.Name(strings.TrimSuffix(strings.TrimPrefix(name, "surrogate_"), ext))
		if _, ok := r.entries[cfg]; ok {
			continue
		}
		if !catalog.Known(cfg) {
			log.Warn().Str("file", name).Msg("ignoring artifact for unknown configuration")
		}
	}
}
