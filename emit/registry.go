package emit

import (
	"strings"

	"github.com/teranos/typeforge/errors"
)

// languageAliases maps short names accepted on the command line.
var languageAliases = map[string]string{
	"py": "python",
	"rs": "rust",
	"ts": "typescript",
}

// CanonicalLanguage returns the full language name for an alias.
func CanonicalLanguage(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if full, ok := languageAliases[name]; ok {
		return full
	}
	return name
}

// Registry holds the available backends in registration order.
type Registry struct {
	backends map[string]Backend
	order    []string
}

// NewRegistry creates a registry holding backends.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{backends: make(map[string]Backend)}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// Register adds or replaces a backend.
func (r *Registry) Register(b Backend) {
	if _, exists := r.backends[b.Language()]; !exists {
		r.order = append(r.order, b.Language())
	}
	r.backends[b.Language()] = b
}

// Get returns the backend for a language name or alias.
func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := r.backends[CanonicalLanguage(name)]
	return b, ok
}

// Languages returns registered language names in registration order.
func (r *Registry) Languages() []string {
	return append([]string(nil), r.order...)
}

// Select resolves requested language names into backends, keeping request
// order and dropping duplicates. "all" expands to every registered backend.
func (r *Registry) Select(names []string) ([]Backend, error) {
	var out []Backend
	seen := make(map[string]bool)
	add := func(lang string) error {
		b, ok := r.Get(lang)
		if !ok {
			return errors.WithHintf(errors.Newf("unknown target language %q", lang),
				"available: %s", strings.Join(r.order, ", "))
		}
		if !seen[b.Language()] {
			seen[b.Language()] = true
			out = append(out, b)
		}
		return nil
	}

	for _, name := range names {
		if CanonicalLanguage(name) == "all" {
			for _, lang := range r.order {
				if err := add(lang); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := add(name); err != nil {
			return nil, err
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no target languages selected")
	}
	return out, nil
}
