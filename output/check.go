package output

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/teranos/typeforge/errors"
)

// Reasons a file is reported by Check.
const (
	ReasonMissing  = "missing"
	ReasonStale    = "stale"
	ReasonEdited   = "edited"
	ReasonOrphaned = "orphaned"
)

// Difference is one file that does not match the expected output.
type Difference struct {
	Language string
	Path     string
	Reason   string
}

// CheckResult holds the result of comparing expected files with a directory.
type CheckResult struct {
	UpToDate    bool
	Differences []Difference
}

// ByLanguage groups differing paths per language.
func (r *CheckResult) ByLanguage() map[string][]string {
	out := make(map[string][]string)
	for _, d := range r.Differences {
		out[d.Language] = append(out[d.Language], d.Path)
	}
	return out
}

// Check compares the files that would be generated with the ones in dir.
//
// A file is stale when its content differs from what would be generated,
// and edited when it also no longer matches the digest recorded in the
// lock manifest, meaning someone changed it by hand. Files recorded in the
// manifest that would no longer be generated are orphaned.
func Check(dir string, files []File) (*CheckResult, error) {
	manifest, err := ReadManifest(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var diffs []Difference
	expected := make(map[string]bool, len(files))
	for _, f := range files {
		expected[f.Path] = true
		existing, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Path)))
		if os.IsNotExist(err) {
			diffs = append(diffs, Difference{f.Language, f.Path, ReasonMissing})
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", f.Path)
		}
		if bytes.Equal(existing, f.Content) {
			continue
		}
		reason := ReasonStale
		if manifest != nil {
			if e, ok := manifest.Entry(f.Path); ok && e.Digest != Digest(existing) {
				reason = ReasonEdited
			}
		}
		diffs = append(diffs, Difference{f.Language, f.Path, reason})
	}

	if manifest != nil {
		for _, e := range manifest.Files {
			if !expected[e.Path] {
				diffs = append(diffs, Difference{e.Language, e.Path, ReasonOrphaned})
			}
		}
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Path < diffs[j].Path })
	return &CheckResult{UpToDate: len(diffs) == 0, Differences: diffs}, nil
}
