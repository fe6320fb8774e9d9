package irfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
)

// Format is a document encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ParseFormat accepts a format name; "yml" is YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", errors.WithHint(errors.Newf("unknown IR format %q", s), "use json, yaml or toml")
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.Newf("cannot infer IR format of %s: no file extension", path)
	}
	return ParseFormat(ext)
}

// Decode parses a document. Unknown keys are rejected so that typos in
// hand-written documents surface instead of being silently ignored.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode JSON document")
		}
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode YAML document")
		}
	case TOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode TOML document")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Newf("failed to decode TOML document: unknown key %s", undecoded[0])
		}
	default:
		return nil, errors.Newf("unknown IR format %q", format)
	}
	return &doc, nil
}

// Encode serializes a document.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case JSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode JSON document")
		}
		return append(data, '\n'), nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML document")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML document")
		}
		return buf.Bytes(), nil
	case TOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, errors.Wrap(err, "failed to encode TOML document")
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Newf("unknown IR format %q", format)
}

// Parse decodes data and builds its graph.
func Parse(data []byte, format Format) (*ir.Graph, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return doc.Graph()
}

// Load reads a document from path. An empty format is inferred from the extension.
func Load(path string, format Format) (*ir.Graph, error) {
	if format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		format = f
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read IR document %s", path)
	}
	g, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	return g, nil
}
