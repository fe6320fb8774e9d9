package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/typeforge/naming"
)

const sampleConfig = `
targets = ["py", "ts"]
constructors = true
parallelism = 2

[input]
path = "schema/types.yaml"

[output]
dir = "gen"
name = "models"

[naming]
typescript = "camelCase"
identifier_source = "rename"

[[type_mappings]]
language = "python"
name = "DateTime"
type = "pendulum.DateTime"

[[type_mappings]]
language = "rs"
name = "Url"
type = "String"
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleConfig)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"py", "ts"}, cfg.Targets)
	assert.True(t, cfg.Constructors)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, "gen", cfg.Output.Dir)
	assert.Equal(t, "models", cfg.Output.Name)
	assert.Equal(t, 200, cfg.Watch.DebounceMS, "default applies")
	require.Len(t, cfg.TypeMappings, 2)
	assert.Equal(t, "DateTime", cfg.TypeMappings[0].Name, "type names keep their case")
	assert.Equal(t, filepath.Join(filepath.Dir(path), "schema/types.yaml"), cfg.Resolve(cfg.Input.Path))
}

func TestLoadSearchesUpward(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, sampleConfig)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, []string{"all"}, cfg.Targets)
	assert.Equal(t, "generated", cfg.Output.Dir)
	assert.Equal(t, ".", cfg.BaseDir())
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)
	t.Setenv("TYPEFORGE_OUTPUT_DIR", "from-env")
	t.Setenv("TYPEFORGE_LOG_VERBOSITY", "3")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output.Dir)
	assert.Equal(t, 3, cfg.Log.Verbosity)
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TYPEFORGE_OUTPUT_NAME=dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("TYPEFORGE_OUTPUT_NAME") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.Output.Name)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Targets:     []string{"all"},
			Output:      OutputConfig{Dir: "gen"},
			Parallelism: 1,
		}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no targets", func(c *Config) { c.Targets = nil }, "targets cannot be empty"},
		{"unknown target", func(c *Config) { c.Targets = []string{"go"} }, `unknown target "go"`},
		{"bad format", func(c *Config) { c.Input.Format = "xml" }, "input.format"},
		{"empty output", func(c *Config) { c.Output.Dir = "" }, "output.dir"},
		{"negative parallelism", func(c *Config) { c.Parallelism = -1 }, "parallelism"},
		{"bad convention", func(c *Config) { c.Naming.Rust = "shouty" }, "naming.rust"},
		{"bad source", func(c *Config) { c.Naming.IdentifierSource = "both" }, "naming.identifier_source"},
		{"mapping language", func(c *Config) {
			c.TypeMappings = []TypeMapping{{Language: "all", Name: "A", Type: "B"}}
		}, "type_mappings[0]"},
		{"mapping incomplete", func(c *Config) {
			c.TypeMappings = []TypeMapping{{Language: "py", Name: "A"}}
		}, "name and type are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, t.TempDir(), sampleConfig))
	require.NoError(t, err)

	opts, err := cfg.PipelineOptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"py", "ts"}, opts.Targets)
	assert.True(t, opts.Constructors)
	assert.Equal(t, "models", opts.Module)
	assert.Equal(t, naming.Options{Fields: naming.Camel, Source: naming.FromRename}, opts.Naming["typescript"])
	assert.Equal(t, naming.Options{Source: naming.FromRename}, opts.Naming["python"])
	assert.Equal(t, "pendulum.DateTime", opts.TypeMappings["python"]["DateTime"])
	assert.Equal(t, "String", opts.TypeMappings["rust"]["Url"])
}
