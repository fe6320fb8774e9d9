package logger

import "sort"

// OutputCategory names a kind of CLI output gated by verbosity.
type OutputCategory int

const (
	// Level 0 - always shown
	OutputResults OutputCategory = iota
	OutputErrors

	// Level 1 - progress
	OutputProgress
	OutputTargetSummary

	// Level 2 - detailed
	OutputTiming
	OutputConfig
	OutputPromotions

	// Level 3 - per-declaration decisions
	OutputClassification
	OutputNaming

	// Level 4 - full dump
	OutputSourceDump
	OutputGraphDump
)

var categoryLevels = map[OutputCategory]int{
	OutputResults: VerbosityUser,
	OutputErrors:  VerbosityUser,

	OutputProgress:      VerbosityInfo,
	OutputTargetSummary: VerbosityInfo,

	OutputTiming:     VerbosityDebug,
	OutputConfig:     VerbosityDebug,
	OutputPromotions: VerbosityDebug,

	OutputClassification: VerbosityTrace,
	OutputNaming:         VerbosityTrace,

	OutputSourceDump: VerbosityAll,
	OutputGraphDump:  VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:        "results",
	OutputErrors:         "errors",
	OutputProgress:       "progress",
	OutputTargetSummary:  "target-summary",
	OutputTiming:         "timing",
	OutputConfig:         "config",
	OutputPromotions:     "promotions",
	OutputClassification: "classification",
	OutputNaming:         "naming",
	OutputSourceDump:     "source-dump",
	OutputGraphDump:      "graph-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// EnabledCategories returns all output categories enabled at the given verbosity, in declaration order
func EnabledCategories(verbosity int) []OutputCategory {
	var enabled []OutputCategory
	for cat, minLevel := range categoryLevels {
		if verbosity >= minLevel {
			enabled = append(enabled, cat)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i] < enabled[j] })
	return enabled
}

// VerbosityDescription returns a description of what's shown at each level
func VerbosityDescription(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "results and errors only"
	case VerbosityInfo:
		return "results, errors, progress, and per-target summaries"
	case VerbosityDebug:
		return "above + timing, config, promotions"
	case VerbosityTrace:
		return "above + classification and naming decisions"
	case VerbosityAll:
		return "full output including generated source and graph dumps"
	default:
		if verbosity > VerbosityAll {
			return "maximum verbosity"
		}
		return "unknown verbosity level"
	}
}
