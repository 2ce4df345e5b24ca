// Package cli provides the command-line interface for the analysis tool.
package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/marketdata"
	"stocklens/internal/models"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <symbol>",
		Short: "Export candle data to a file",
		Long: `Fetch daily candle history for a stock and write it to a CSV or JSON file.
Only raw fetched candles are exported; computed analysis results are not
persisted anywhere.`,
		Example: `  stocklens export RELIANCE
  stocklens export INFY --months 6 --format json
  stocklens export TCS --output tcs.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			months, _ := cmd.Flags().GetInt("months")
			format, _ := cmd.Flags().GetString("format")
			outFile, _ := cmd.Flags().GetString("output")
			exchangeFlag, _ := cmd.Flags().GetString("exchange")
			noCache, _ := cmd.Flags().GetBool("no-cache")

			if format != "csv" && format != "json" {
				output.Error("Unknown format %q (use csv or json)", format)
				return fmt.Errorf("unknown export format %q", format)
			}

			opts := marketdata.Options{Months: months, NoCache: noCache}
			if exchangeFlag != "" {
				exchange, ok := models.ParseExchange(exchangeFlag)
				if !ok {
					output.Error("Unknown exchange %q (use NSE or BSE)", exchangeFlag)
					return apperrors.ErrUnknownExchange
				}
				opts.Exchange = exchange
			}

			symbol := models.NormalizeSymbol(args[0])
			result, err := fetchHistory(ctx, app, output, args[0], opts)
			if err != nil {
				return err
			}

			if outFile == "" {
				outFile = fmt.Sprintf("%s_candles.%s", symbol, format)
			}

			if err := writeCandles(outFile, format, result.Candles); err != nil {
				output.Error("Export failed: %v", err)
				return err
			}

			output.Success("✓ Exported %d candles to %s", len(result.Candles), outFile)
			return nil
		},
	}

	cmd.Flags().IntP("months", "m", 0, "lookback window in months (1-60, default from config)")
	cmd.Flags().StringP("format", "f", "csv", "output format: csv or json")
	cmd.Flags().StringP("output", "o", "", "output file (default: <symbol>_candles.<format>)")
	cmd.Flags().StringP("exchange", "e", "", "pin to one exchange: NSE or BSE (disables fallback)")
	cmd.Flags().Bool("no-cache", false, "bypass the local candle cache")

	return cmd
}

func writeCandles(path, format string, candles []models.Candle) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if format == "json" {
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		return encoder.Encode(candles)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, c := range candles {
		record := []string{
			c.Timestamp.Format(time.RFC3339),
			fmt.Sprintf("%.2f", c.Open),
			fmt.Sprintf("%.2f", c.High),
			fmt.Sprintf("%.2f", c.Low),
			fmt.Sprintf("%.2f", c.Close),
			fmt.Sprintf("%d", c.Volume),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}
