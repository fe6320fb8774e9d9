package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/typeforge/config"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/logger"
	"github.com/teranos/typeforge/output"
)

var checkFlags overrides

// CheckCmd verifies that generated files are up to date.
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check if generated files are up to date",
	Long: `Compile the type graph in memory and compare the result with the files in
the output directory. Nothing is written.

Exit codes:
  0 - Files are up to date
  1 - Files are out of date, or a target failed
  2 - Error during check

Examples:
  typeforge check
  typeforge check --targets rust`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := checkFlags.apply(cmd, cfg); err != nil {
			return err
		}
		applyLogConfig(cmd, cfg)

		res, b, err := runCheck(cmd.Context(), cfg, logger.ComponentLogger("check"))
		if err != nil {
			printTargetErrors(b)
			return err
		}
		if res.UpToDate {
			pterm.Success.Println("Generated files are up to date")
			return nil
		}

		pterm.Error.Println("Generated files are out of date")
		for _, d := range res.Differences {
			pterm.Printf("  %-8s %s\n", d.Reason, d.Path)
		}
		return errors.WithHint(errStale, "run 'typeforge generate' to update")
	},
}

func init() {
	checkFlags.register(CheckCmd)
}

func runCheck(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*output.CheckResult, *build, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := compileProject(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if err := b.result.Err(); err != nil {
		return nil, b, errors.Mark(err, errTargetsFailed)
	}
	res, err := output.Check(outputDir(cfg), b.files)
	if err != nil {
		return nil, b, err
	}
	log.Infow("Checked generated files",
		logger.FieldRunID, b.result.RunID,
		logger.FieldOutput, outputDir(cfg),
		logger.FieldCount, len(b.files),
		"differences", len(res.Differences))
	return res, b, nil
}
