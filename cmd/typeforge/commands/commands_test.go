package commands

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/typeforge/config"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/output"
)

const modelYAML = `version: "1.0.0"
decls:
  - kind: struct
    name: User
    fields:
      - {name: user_id, type: string}
      - {name: email, type: optional<string>}
  - kind: enum
    name: Event
    variants:
      - {name: Created, type: User}
      - {name: Closed}
`

const projectTOML = `targets = ["all"]

[input]
path = "model.yaml"

[output]
dir = "gen"
`

func writeProject(t *testing.T, model string) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.yaml"), []byte(model), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(projectTOML), 0o644))

	cfg, err := config.LoadFromFile(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	return dir, cfg
}

func TestGenerateThenCheck(t *testing.T) {
	dir, cfg := writeProject(t, modelYAML)
	log := zap.NewNop().Sugar()

	b, err := runGenerate(context.Background(), cfg, log)
	require.NoError(t, err)
	require.Len(t, b.files, 3)

	for _, rel := range []string{"python/types.py", "rust/types.rs", "typescript/types.ts", output.LockFile} {
		assert.FileExists(t, filepath.Join(dir, "gen", filepath.FromSlash(rel)))
	}

	m, err := output.ReadManifest(filepath.Join(dir, "gen"))
	require.NoError(t, err)
	assert.Contains(t, m.Generator, "typeforge")
	assert.Equal(t, "model.yaml", m.Input)
	assert.Equal(t, b.manifest.InputDigest, m.InputDigest)
	assert.Len(t, m.Files, 3)

	res, _, err := runCheck(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.True(t, res.UpToDate)

	// hand edit
	rs := filepath.Join(dir, "gen", "rust", "types.rs")
	require.NoError(t, os.WriteFile(rs, []byte("// edited\n"), 0o644))
	res, _, err = runCheck(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.False(t, res.UpToDate)
	require.Len(t, res.Differences, 1)
	assert.Equal(t, output.ReasonEdited, res.Differences[0].Reason)

	// regenerate, then change the model
	_, err = runGenerate(context.Background(), cfg, log)
	require.NoError(t, err)
	changed := modelYAML + "  - {kind: alias, name: Users, target: list<User>}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.yaml"), []byte(changed), 0o644))

	res, _, err = runCheck(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.False(t, res.UpToDate)
	assert.Len(t, res.Differences, 3)
	for _, d := range res.Differences {
		assert.Equal(t, output.ReasonStale, d.Reason, d.Path)
	}
}

func TestGenerateTargetFailureWritesNothing(t *testing.T) {
	dir, cfg := writeProject(t, `version: "1.0.0"
decls:
  - kind: enum
    name: Msg
    fields:
      - {name: id, type: string}
    variants:
      - {name: Ping}
      - {name: Text, type: string}
`)

	b, err := runGenerate(context.Background(), cfg, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errTargetsFailed))
	assert.Equal(t, 1, ExitCode(err))

	require.NotNil(t, b)
	failed := b.result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "rust", failed[0].Language)

	assert.NoDirExists(t, filepath.Join(dir, "gen"))
}

func TestGenerateInvalidGraph(t *testing.T) {
	_, cfg := writeProject(t, `version: "1.0.0"
decls:
  - kind: struct
    name: Box
    fields:
      - {name: item, type: string}
      - {name: item, type: i32}
`)

	_, err := runGenerate(context.Background(), cfg, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidGraph))
	assert.Equal(t, 2, ExitCode(err))
}

func TestGenerateWithoutInput(t *testing.T) {
	cfg := &config.Config{Targets: []string{"all"}, Output: config.OutputConfig{Dir: t.TempDir()}}
	_, err := runGenerate(context.Background(), cfg, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"stale", errors.WithHint(errStale, "regenerate"), 1},
		{"target failed", errors.Mark(errors.New("rust"), errTargetsFailed), 1},
		{"other", errors.New("boom"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestInputFormat(t *testing.T) {
	tests := []struct {
		path    string
		format  string
		want    string
		wantErr bool
	}{
		{"model.yaml", "", "yaml", false},
		{"model.yml", "", "yaml", false},
		{"model.json", "", "json", false},
		{"model.toml", "", "toml", false},
		{"./model/...", "", "go", false},
		{"./model", "", "go", false},
		{"github.com/acme/model", "go", "go", false},
		{"model.txt", "yml", "yaml", false},
		{"model", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			cfg := &config.Config{Input: config.InputConfig{Path: tt.path, Format: tt.format}}
			got, err := inputFormat(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatchTargets(t *testing.T) {
	dir, cfg := writeProject(t, modelYAML)

	paths, relevant, err := watchTargets(cfg)
	require.NoError(t, err)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, paths)
	assert.True(t, relevant(filepath.Join(dir, "model.yaml")))
	assert.True(t, relevant(filepath.Join(dir, config.FileName)))
	assert.False(t, relevant(filepath.Join(dir, "notes.md")))
}

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	relevant := func(name string) bool { return filepath.Base(name) == "model.yaml" }
	w, err := newWatcher([]string{dir}, 100*time.Millisecond, relevant, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) { calls.Add(1) })
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte{byte('a' + i)}, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
