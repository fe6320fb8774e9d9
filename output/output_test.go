package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/pipeline"
)

func compile(t *testing.T, targets ...string) *pipeline.Result {
	t.Helper()
	g := ir.MustNew(&ir.Struct{DeclInfo: ir.DeclInfo{Name: "User"}, Fields: []ir.Field{
		{Name: "name", Type: ir.Primitive(ir.String)},
	}})
	res, err := pipeline.Compile(context.Background(), g, pipeline.Options{Targets: targets})
	require.NoError(t, err)
	require.NoError(t, res.Err())
	return res
}

func TestDigest(t *testing.T) {
	d := Digest([]byte("hello"))
	assert.True(t, strings.HasPrefix(d, "blake3:"))
	assert.Len(t, d, len("blake3:")+64)
	assert.Equal(t, d, Digest([]byte("hello")))
	assert.NotEqual(t, d, Digest([]byte("hello!")))
}

func TestFiles(t *testing.T) {
	files := Files(compile(t, "all"), "")
	require.Len(t, files, 3)
	assert.Equal(t, "python/types.py", files[0].Path)
	assert.Equal(t, "rust/types.rs", files[1].Path)
	assert.Equal(t, "typescript/types.ts", files[2].Path)
	assert.Equal(t, 1, files[0].Declarations)
}

func TestWriteAndCheck(t *testing.T) {
	dir := t.TempDir()
	files := Files(compile(t, "all"), "models")

	require.NoError(t, NewWriter(dir).Write(files, &Manifest{Generator: "test", Input: "types.yaml"}))

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "test", m.Generator)
	require.Len(t, m.Files, 3)
	entry, ok := m.Entry("rust/models.rs")
	require.True(t, ok)
	assert.Equal(t, Digest(files[1].Content), entry.Digest)

	res, err := Check(dir, files)
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
	assert.Empty(t, res.Differences)
}

func TestCheckReasons(t *testing.T) {
	dir := t.TempDir()
	files := Files(compile(t, "all"), "")
	require.NoError(t, NewWriter(dir).Write(files, &Manifest{Generator: "test"}))

	// hand edit
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rust", "types.rs"), []byte("// mine\n"), 0o644))
	// deleted
	require.NoError(t, os.Remove(filepath.Join(dir, "typescript", "types.ts")))

	// the python file would now be generated differently
	expected := append([]File(nil), files...)
	expected[0].Content = append([]byte(nil), files[0].Content...)
	expected[0].Content = append(expected[0].Content, '\n')

	res, err := Check(dir, expected)
	require.NoError(t, err)
	assert.False(t, res.UpToDate)
	assert.Equal(t, []Difference{
		{"python", "python/types.py", ReasonStale},
		{"rust", "rust/types.rs", ReasonEdited},
		{"typescript", "typescript/types.ts", ReasonMissing},
	}, res.Differences)
	assert.Equal(t, []string{"rust/types.rs"}, res.ByLanguage()["rust"])
}

func TestOrphans(t *testing.T) {
	dir := t.TempDir()
	all := Files(compile(t, "all"), "")
	require.NoError(t, NewWriter(dir).Write(all, &Manifest{Generator: "test"}))

	pyOnly := Files(compile(t, "python"), "")
	res, err := Check(dir, pyOnly)
	require.NoError(t, err)
	require.Len(t, res.Differences, 2)
	assert.Equal(t, ReasonOrphaned, res.Differences[0].Reason)

	require.NoError(t, NewWriter(dir).Write(pyOnly, &Manifest{Generator: "test"}))
	_, err = os.Stat(filepath.Join(dir, "rust", "types.rs"))
	assert.True(t, os.IsNotExist(err))

	res, err = Check(dir, pyOnly)
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
}

func TestCheckWithoutManifest(t *testing.T) {
	res, err := Check(t.TempDir(), Files(compile(t, "ts"), ""))
	require.NoError(t, err)
	require.Len(t, res.Differences, 1)
	assert.Equal(t, ReasonMissing, res.Differences[0].Reason)
}

func TestManifestRecordsSources(t *testing.T) {
	g := ir.MustNew(
		&ir.Struct{DeclInfo: ir.DeclInfo{Name: "User"}, Fields: []ir.Field{
			{Name: "name", Type: ir.Primitive(ir.String)},
		}},
		&ir.Enum{DeclInfo: ir.DeclInfo{Name: "Event"}, Variants: []ir.Variant{
			{Name: "Created", Payload: ir.AnonymousPayload(ir.Field{Name: "user", Type: ir.Named("User")})},
			{Name: "Closed"},
		}},
	)
	res, err := pipeline.Compile(context.Background(), g, pipeline.Options{Targets: []string{"python"}})
	require.NoError(t, err)
	require.NoError(t, res.Err())

	dir := t.TempDir()
	files := Files(res, "")
	require.NoError(t, NewWriter(dir).Write(files, &Manifest{Generator: "test"}))

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	entry, ok := m.Entry("python/types.py")
	require.True(t, ok)
	assert.Equal(t, []Source{
		{Name: "User", Declarations: []string{"User"}},
		{Name: "Event", Declarations: []string{"EventCreated", "EventTypes", "EventClosed", "Event"}, Promoted: []string{"EventCreated"}},
	}, entry.Sources)
}
