package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teranos/typeforge/emit"
	"github.com/teranos/typeforge/irfile"
)

var (
	irInput    string
	irFormat   string
	irTo       string
	irPrepared bool
)

// IRCmd prints the type graph as an IR document.
var IRCmd = &cobra.Command{
	Use:   "ir",
	Short: "Print or convert the type graph",
	Long: `Load the configured input and print it as an IR document. Use it to convert
between JSON, YAML and TOML, to export the types of a Go package, or with
--prepared to inspect the graph after variant promotion.

Examples:
  typeforge ir --to yaml
  typeforge ir -i ./model/... -f go --to json > model.json
  typeforge ir --prepared`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("input") {
			cfg.Input.Path = irInput
			if !filepath.IsAbs(irInput) && !isPackagePattern(irInput) {
				cfg.Input.Path, _ = filepath.Abs(irInput)
			}
		}
		if cmd.Flags().Changed("format") {
			cfg.Input.Format = irFormat
		}
		to, err := irfile.ParseFormat(irTo)
		if err != nil {
			return err
		}

		g, err := loadGraph(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if irPrepared {
			p, err := emit.Prepare(g)
			if err != nil {
				return err
			}
			g = p.Graph
		}

		out, err := irfile.Encode(irfile.FromGraph(g), to)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	IRCmd.Flags().StringVarP(&irInput, "input", "i", "", "IR document or Go package pattern (overrides input.path)")
	IRCmd.Flags().StringVarP(&irFormat, "format", "f", "", "Input format: json, yaml, toml, go (default: from extension)")
	IRCmd.Flags().StringVar(&irTo, "to", "yaml", "Output format: json, yaml, toml")
	IRCmd.Flags().BoolVar(&irPrepared, "prepared", false, "Print the graph after promotion")
}
