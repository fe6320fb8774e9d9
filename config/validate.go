package config

import (
	"github.com/teranos/typeforge/emit"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/naming"
	"github.com/teranos/typeforge/pipeline"
)

var knownLanguages = map[string]bool{"python": true, "rust": true, "typescript": true, "all": true}

var inputFormats = map[string]bool{"": true, "json": true, "yaml": true, "yml": true, "toml": true, "go": true}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return errors.New("targets cannot be empty")
	}
	for _, t := range c.Targets {
		if !knownLanguages[emit.CanonicalLanguage(t)] {
			return errors.WithHint(errors.Newf("unknown target %q", t), "use python, rust, typescript or all")
		}
	}
	if !inputFormats[c.Input.Format] {
		return errors.Newf("input.format must be json, yaml, toml or go, got %q", c.Input.Format)
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir cannot be empty")
	}
	if c.Parallelism < 0 {
		return errors.Newf("parallelism must be >= 0, got %d", c.Parallelism)
	}
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	for key, value := range map[string]string{
		"naming.python":     c.Naming.Python,
		"naming.rust":       c.Naming.Rust,
		"naming.typescript": c.Naming.TypeScript,
	} {
		if _, err := naming.ParseConvention(value); err != nil {
			return errors.Wrap(err, key)
		}
	}
	if _, err := naming.ParseSource(c.Naming.IdentifierSource); err != nil {
		return errors.Wrap(err, "naming.identifier_source")
	}
	for i, m := range c.TypeMappings {
		lang := emit.CanonicalLanguage(m.Language)
		if !knownLanguages[lang] || lang == "all" {
			return errors.Newf("type_mappings[%d]: unknown language %q", i, m.Language)
		}
		if m.Name == "" || m.Type == "" {
			return errors.Newf("type_mappings[%d]: name and type are required", i)
		}
	}
	return nil
}

// PipelineOptions converts the configuration into compiler options.
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	source, err := naming.ParseSource(c.Naming.IdentifierSource)
	if err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Targets:      c.Targets,
		Constructors: c.Constructors,
		Parallelism:  c.Parallelism,
		Naming:       make(map[string]naming.Options),
		TypeMappings: make(map[string]map[string]string),
		Module:       c.Output.Name,
	}
	for lang, value := range map[string]string{
		"python":     c.Naming.Python,
		"rust":       c.Naming.Rust,
		"typescript": c.Naming.TypeScript,
	} {
		conv, err := naming.ParseConvention(value)
		if err != nil {
			return pipeline.Options{}, err
		}
		nopts := naming.Options{Source: source}
		// an empty value keeps the target's own field convention
		if value != "" {
			nopts.Fields = conv
		}
		opts.Naming[lang] = nopts
	}
	for _, m := range c.TypeMappings {
		lang := emit.CanonicalLanguage(m.Language)
		if opts.TypeMappings[lang] == nil {
			opts.TypeMappings[lang] = make(map[string]string)
		}
		opts.TypeMappings[lang][m.Name] = m.Type
	}
	return opts, nil
}
