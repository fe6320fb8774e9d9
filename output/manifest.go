package output

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/typeforge/errors"
)

// LockFile is the manifest's file name inside the output directory.
const LockFile = "typeforge.lock.toml"

// Manifest records one generation run.
type Manifest struct {
	// Generator is the typeforge version that produced the files.
	Generator   string  `toml:"generator"`
	Input       string  `toml:"input,omitempty"`
	InputDigest string  `toml:"input_digest,omitempty"`
	Files       []Entry `toml:"files"`
}

// Entry describes one written file.
type Entry struct {
	Language     string   `toml:"language"`
	Path         string   `toml:"path"`
	Digest       string   `toml:"digest"`
	Size         int      `toml:"size"`
	Declarations int      `toml:"declarations"`
	Sources      []Source `toml:"sources,omitempty"`
}

// Source lists what one input declaration was rendered into.
type Source struct {
	Name         string   `toml:"name"`
	Declarations []string `toml:"declarations"`
	// Promoted names structs synthesized from the source's anonymous variants.
	Promoted []string `toml:"promoted,omitempty"`
}

// Entry returns the manifest entry for path.
func (m *Manifest) Entry(path string) (Entry, bool) {
	for _, e := range m.Files {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// ReadManifest loads dir's lock manifest. A missing manifest yields an
// error matching os.ErrNotExist.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, LockFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read lock manifest")
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse lock manifest")
	}
	return &m, nil
}

// WriteManifest stores m as dir's lock manifest.
func WriteManifest(dir string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to marshal lock manifest")
	}
	header := []byte("# Generated by typeforge. Do not edit.\n\n")
	return writeAtomic(filepath.Join(dir, LockFile), append(header, data...))
}
