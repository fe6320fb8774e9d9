package emit

import (
	"sort"
)

// Imports collects imported names per module without duplicates.
type Imports struct {
	modules map[string]map[string]bool
}

// NewImports creates an empty set.
func NewImports() *Imports {
	return &Imports{modules: make(map[string]map[string]bool)}
}

// Add records that name is imported from module.
func (im *Imports) Add(module, name string) {
	names, ok := im.modules[module]
	if !ok {
		names = make(map[string]bool)
		im.modules[module] = names
	}
	names[name] = true
}

// Has reports whether name is imported from module.
func (im *Imports) Has(module, name string) bool {
	return im.modules[module][name]
}

// Empty reports whether nothing was imported.
func (im *Imports) Empty() bool {
	return len(im.modules) == 0
}

// Modules returns module names, sorted.
func (im *Imports) Modules() []string {
	mods := make([]string, 0, len(im.modules))
	for m := range im.modules {
		mods = append(mods, m)
	}
	sort.Strings(mods)
	return mods
}

// Names returns the names imported from module, sorted.
func (im *Imports) Names(module string) []string {
	names := make([]string, 0, len(im.modules[module]))
	for n := range im.modules[module] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
