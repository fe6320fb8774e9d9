package commands

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/typeforge/config"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/logger"
	"github.com/teranos/typeforge/output"
)

var generateFlags overrides

// GenerateCmd compiles the project and writes the generated files.
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate type definitions",
	Long: `Compile the type graph for every configured target and write one file per
target under the output directory, together with a lock manifest recording
each file's digest.

Nothing is written when any target fails; the errors of all failed targets
are reported.

Examples:
  typeforge generate
  typeforge generate --targets python,rust --output gen/
  typeforge generate -i ./model/... -f go`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := generateFlags.apply(cmd, cfg); err != nil {
			return err
		}
		applyLogConfig(cmd, cfg)

		start := time.Now()
		b, err := runGenerate(cmd.Context(), cfg, logger.ComponentLogger("generate"))
		if err != nil {
			printTargetErrors(b)
			return err
		}
		for _, f := range b.files {
			pterm.Success.Printf("Generated %s (%d declarations)\n", f.Path, f.Declarations)
		}
		pterm.Info.Printf("Wrote %d files to %s in %s\n", len(b.files), outputDir(cfg), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	generateFlags.register(GenerateCmd)
}

// runGenerate compiles cfg and writes the result. When a target fails the
// build is returned alongside the error so the caller can report it.
func runGenerate(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*build, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := compileProject(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := b.result.Err(); err != nil {
		return b, errors.Mark(errors.Wrap(err, "nothing written"), errTargetsFailed)
	}
	if err := output.NewWriter(outputDir(cfg)).Write(b.files, b.manifest); err != nil {
		return b, err
	}
	log.Infow("Generated files",
		logger.FieldRunID, b.result.RunID,
		logger.FieldPhase, logger.PhaseWrite,
		logger.FieldOutput, outputDir(cfg),
		logger.FieldCount, len(b.files))
	return b, nil
}

func printTargetErrors(b *build) {
	if b == nil || b.result == nil {
		return
	}
	for _, t := range b.result.Failed() {
		pterm.Error.Printf("%s: %v\n", t.Language, t.Err)
		for _, hint := range errors.GetAllHints(t.Err) {
			pterm.Println("  hint: " + hint)
		}
	}
}
