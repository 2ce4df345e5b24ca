// Package cli provides the command-line interface for the analysis tool.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"stocklens/internal/models"
)

func newExamplesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		Long:  "Display examples of common analysis workflows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "Quick Analysis",
					commands: []string{
						"stocklens analyze RELIANCE          # Full report, default lookback",
						"stocklens analyze SUNFLAG -m 6      # 6-month lookback",
						"stocklens analyze INFY --chart      # Report with charts",
					},
				},
				{
					title: "Charts and History",
					commands: []string{
						"stocklens chart TCS                 # Price and volume charts",
						"stocklens chart TCS --price-only    # Close price only",
						"stocklens history RELIANCE -l 20    # Last 20 trading days",
					},
				},
				{
					title: "Exchange Control",
					commands: []string{
						"stocklens analyze SUNFLAG           # NSE first, BSE fallback",
						"stocklens analyze SUNFLAG -e BSE    # BSE only, no fallback",
					},
				},
				{
					title: "Scripting",
					commands: []string{
						"stocklens analyze RELIANCE --json   # Machine-readable report",
						"stocklens export RELIANCE -f csv    # Raw candles to CSV",
						"stocklens export INFY -f json -o infy.json",
					},
				},
				{
					title: "Monitoring",
					commands: []string{
						"stocklens watch RELIANCE                      # Every 5 min in market hours",
						"stocklens watch INFY --cron \"0 0 * * * *\"     # Hourly",
						"stocklens watch TCS --always                  # Ignore market hours",
					},
				},
			}

			for _, ex := range examples {
				output.Printf("%s %s\n", output.Cyan("▸"), output.BoldText(ex.title))
				for _, c := range ex.commands {
					output.Printf("  %s\n", c)
				}
				output.Println()
			}

			output.Dim("Popular symbols: %s", strings.Join(models.PopularSymbols, ", "))
			return nil
		},
	}
}

func newQuickstartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "New user guide",
		Long:  "Step-by-step guide for new users.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("stocklens - Quick Start Guide")
			output.Println()

			steps := []struct {
				step  int
				title string
				desc  string
				cmd   string
			}{
				{
					step:  1,
					title: "Run Your First Analysis",
					desc:  "No setup needed; a default config file is created on first run.",
					cmd:   "stocklens analyze RELIANCE",
				},
				{
					step:  2,
					title: "Pick a Lookback Window",
					desc:  "Analyze between 1 and 60 months of daily history.",
					cmd:   "stocklens analyze RELIANCE --months 24",
				},
				{
					step:  3,
					title: "Add Charts",
					desc:  "Append the price line chart and volume bars to the report.",
					cmd:   "stocklens analyze RELIANCE --chart",
				},
				{
					step:  4,
					title: "Inspect Raw History",
					desc:  "See the daily OHLCV table behind the numbers.",
					cmd:   "stocklens history RELIANCE --limit 20",
				},
				{
					step:  5,
					title: "Tune the Defaults",
					desc:  "Edit the config file for exchange order, cache TTL, chart size.",
					cmd:   "stocklens config path",
				},
			}

			for _, s := range steps {
				output.Printf("%s Step %d: %s\n", output.Cyan("→"), s.step, output.BoldText(s.title))
				output.Printf("  %s\n", s.desc)
				output.Printf("  %s\n\n", output.DimText(s.cmd))
			}

			output.Bold("Notes")
			output.Println()
			output.Printf("  • The 50-day and 200-day moving averages use a shrinking window on\n")
			output.Printf("    short histories, so every report has defined values.\n")
			output.Printf("  • Fetched candles are cached locally; use --no-cache to refetch.\n")
			output.Printf("  • Analysis results themselves are never written to disk.\n")

			return nil
		},
	}
}
