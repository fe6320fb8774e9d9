package commands

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/typeforge/config"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/frontend/goast"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/irfile"
	"github.com/teranos/typeforge/logger"
	"github.com/teranos/typeforge/output"
	"github.com/teranos/typeforge/pipeline"
	"github.com/teranos/typeforge/version"
)

// formatGo selects the Go source front end.
const formatGo = "go"

// errTargetsFailed marks a run where at least one target could not be rendered.
var errTargetsFailed = errors.New("one or more targets failed")

// overrides are command line flags layered over the configuration.
type overrides struct {
	input        string
	format       string
	targets      []string
	outputDir    string
	name         string
	constructors bool
}

func (o *overrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "IR document or Go package pattern (overrides input.path)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "Input format: json, yaml, toml, go (default: from extension)")
	cmd.Flags().StringSliceVarP(&o.targets, "targets", "t", nil, "Target languages: python, rust, typescript, all")
	cmd.Flags().StringVarP(&o.outputDir, "output", "o", "", "Output directory (overrides output.dir)")
	cmd.Flags().StringVar(&o.name, "name", "", "Base name of generated files (overrides output.name)")
	cmd.Flags().BoolVar(&o.constructors, "constructors", false, "Emit variant constructor helpers")
}

// apply layers the flags that were set onto cfg and revalidates it.
func (o *overrides) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input.Path = o.input
		// a path given on the command line is relative to the working directory
		if !filepath.IsAbs(o.input) && !isPackagePattern(o.input) {
			cfg.Input.Path, _ = filepath.Abs(o.input)
		}
	}
	if flags.Changed("format") {
		cfg.Input.Format = o.format
	}
	if flags.Changed("targets") {
		cfg.Targets = o.targets
	}
	if flags.Changed("output") {
		cfg.Output.Dir, _ = filepath.Abs(o.outputDir)
	}
	if flags.Changed("name") {
		cfg.Output.Name = o.name
	}
	if flags.Changed("constructors") {
		cfg.Constructors = o.constructors
	}
	return cfg.Validate()
}

// applyLogConfig raises the log level when the configuration asks for more
// than the command line did.
func applyLogConfig(cmd *cobra.Command, cfg *config.Config) {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if cfg.Log.Verbosity <= verbosity && cfg.Log.JSON == jsonLogs {
		return
	}
	if cfg.Log.Verbosity > verbosity {
		verbosity = cfg.Log.Verbosity
	}
	if err := logger.Initialize(jsonLogs || cfg.Log.JSON, verbosity); err != nil {
		logger.Warnw("Failed to reconfigure logger", logger.FieldError, err.Error())
	}
}

func isPackagePattern(path string) bool {
	return strings.HasSuffix(path, "/...") || strings.HasPrefix(path, "./") && filepath.Ext(path) == ""
}

// inputFormat resolves the configured input format, inferring it from the path when unset.
func inputFormat(cfg *config.Config) (string, error) {
	switch cfg.Input.Format {
	case formatGo:
		return formatGo, nil
	case "":
		if isPackagePattern(cfg.Input.Path) {
			return formatGo, nil
		}
		f, err := irfile.FormatFromPath(cfg.Input.Path)
		if err != nil {
			return "", errors.WithHint(err, "set input.format or pass --format")
		}
		return string(f), nil
	}
	f, err := irfile.ParseFormat(cfg.Input.Format)
	return string(f), err
}

// loadGraph reads the configured input.
func loadGraph(ctx context.Context, cfg *config.Config) (*ir.Graph, error) {
	if cfg.Input.Path == "" {
		return nil, errors.WithHint(errors.New("no input configured"),
			"set input.path in "+config.FileName+" or pass --input")
	}
	format, err := inputFormat(cfg)
	if err != nil {
		return nil, err
	}
	if format == formatGo {
		return goast.Load(ctx, strings.Split(cfg.Input.Path, ","), goast.Options{Dir: cfg.BaseDir()})
	}
	return irfile.Load(cfg.Resolve(cfg.Input.Path), irfile.Format(format))
}

// build is the outcome of compiling the configured project.
type build struct {
	result   *pipeline.Result
	files    []output.File
	manifest *output.Manifest
}

// compileProject loads the input, compiles every target and assembles the
// files and manifest a write would produce.
func compileProject(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*build, error) {
	g, err := loadGraph(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = log

	res, err := pipeline.Compile(ctx, g, opts)
	if err != nil {
		return nil, err
	}

	// the digest covers the graph, not the input's formatting
	canonical, err := irfile.Encode(irfile.FromGraph(g), irfile.JSON)
	if err != nil {
		return nil, err
	}
	return &build{
		result: res,
		files:  output.Files(res, cfg.Output.Name),
		manifest: &output.Manifest{
			Generator:   version.Get().Generator(),
			Input:       cfg.Input.Path,
			InputDigest: output.Digest(canonical),
		},
	}, nil
}

// outputDir is the configured output directory resolved against the config file.
func outputDir(cfg *config.Config) string {
	return cfg.Resolve(cfg.Output.Dir)
}
