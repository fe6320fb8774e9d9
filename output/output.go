// Package output writes rendered targets to disk and records what was
// written in a lock manifest, so a later check can tell whether the
// files on disk still match what the current inputs would produce.
//
// Layout:
//
//	<dir>/python/<name>.py
//	<dir>/rust/<name>.rs
//	<dir>/typescript/<name>.ts
//	<dir>/typeforge.lock.toml
package output

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/teranos/typeforge/emit"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/logger"
	"github.com/teranos/typeforge/pipeline"
)

// DefaultName is the base file name when none is configured.
const DefaultName = "types"

// File is one generated file, with Path relative to the output directory.
type File struct {
	Language     string
	Path         string
	Content      []byte
	Declarations int
	Sources      []Source
}

// Files lists the files for every successful target of res.
func Files(res *pipeline.Result, name string) []File {
	if name == "" {
		name = DefaultName
	}
	var files []File
	for _, t := range res.Targets {
		if t.Err != nil {
			continue
		}
		files = append(files, File{
			Language:     t.Language,
			Path:         filepath.ToSlash(filepath.Join(t.Language, name+"."+t.Extension)),
			Content:      []byte(t.Source),
			Declarations: len(t.Output.Declarations),
			Sources:      sources(t.Output),
		})
	}
	return files
}

func sources(out *emit.Output) []Source {
	groups := out.Groups()
	list := make([]Source, 0, len(groups))
	for _, g := range groups {
		src := Source{Name: g.Source}
		for _, d := range g.Declarations {
			src.Declarations = append(src.Declarations, d.Name)
			if d.Kind == emit.KindPromoted {
				src.Promoted = append(src.Promoted, d.Name)
			}
		}
		list = append(list, src)
	}
	return list
}

// Digest returns the BLAKE3 digest of data, hex encoded with an algorithm prefix.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return "blake3:" + hex.EncodeToString(sum[:])
}

// Writer writes generated files under one directory.
type Writer struct {
	dir    string
	logger *zap.SugaredLogger
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, logger: logger.ComponentLogger("output.writer")}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Write writes files and the manifest describing them. Files are replaced
// atomically; files listed in a previous manifest but no longer generated
// are removed.
func (w *Writer) Write(files []File, m *Manifest) error {
	previous, err := ReadManifest(w.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warnw("Ignoring unreadable lock manifest", logger.FieldError, err.Error())
	}

	current := make(map[string]bool, len(files))
	m.Files = m.Files[:0]
	for _, f := range files {
		if err := writeAtomic(filepath.Join(w.dir, filepath.FromSlash(f.Path)), f.Content); err != nil {
			return err
		}
		current[f.Path] = true
		entry := Entry{
			Language:     f.Language,
			Path:         f.Path,
			Digest:       Digest(f.Content),
			Size:         len(f.Content),
			Declarations: f.Declarations,
			Sources:      f.Sources,
		}
		m.Files = append(m.Files, entry)
		w.logger.Debugw("Wrote file",
			logger.FieldPhase, logger.PhaseWrite,
			logger.FieldFile, f.Path,
			logger.FieldDigest, entry.Digest,
			logger.FieldSize, entry.Size)
	}
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })

	if previous != nil {
		for _, e := range previous.Files {
			if current[e.Path] {
				continue
			}
			if err := os.Remove(filepath.Join(w.dir, filepath.FromSlash(e.Path))); err != nil && !os.IsNotExist(err) {
				return errors.Wrapf(err, "failed to remove orphaned %s", e.Path)
			}
			w.logger.Infow("Removed orphaned file", logger.FieldPhase, logger.PhaseWrite, logger.FieldFile, e.Path)
		}
	}

	return WriteManifest(w.dir, m)
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to set mode on %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}
