// Package cli provides the command-line interface for the analysis tool.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/marketdata"
	"stocklens/internal/models"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <symbol>",
		Short: "Show daily OHLCV history",
		Long: `Fetch and display the daily OHLCV (Open, High, Low, Close, Volume) history
for a stock over the lookback window. Fetched candles are cached locally.`,
		Example: `  stocklens history RELIANCE
  stocklens history INFY --months 3 --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			months, _ := cmd.Flags().GetInt("months")
			limit, _ := cmd.Flags().GetInt("limit")
			exchangeFlag, _ := cmd.Flags().GetString("exchange")
			noCache, _ := cmd.Flags().GetBool("no-cache")

			opts := marketdata.Options{Months: months, NoCache: noCache}
			if exchangeFlag != "" {
				exchange, ok := models.ParseExchange(exchangeFlag)
				if !ok {
					output.Error("Unknown exchange %q (use NSE or BSE)", exchangeFlag)
					return apperrors.ErrUnknownExchange
				}
				opts.Exchange = exchange
			}

			result, err := fetchHistory(ctx, app, output, args[0], opts)
			if err != nil {
				return err
			}

			candles := result.Candles
			if limit > 0 && len(candles) > limit {
				candles = candles[len(candles)-limit:]
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":   models.NormalizeSymbol(args[0]),
					"exchange": result.Exchange,
					"source":   result.Source,
					"count":    len(candles),
					"candles":  candles,
				})
			}

			return displayCandles(output, models.NormalizeSymbol(args[0]), result, candles)
		},
	}

	cmd.Flags().IntP("months", "m", 0, "lookback window in months (1-60, default from config)")
	cmd.Flags().IntP("limit", "l", 0, "show only the most recent N candles (0 for all)")
	cmd.Flags().StringP("exchange", "e", "", "pin to one exchange: NSE or BSE (disables fallback)")
	cmd.Flags().Bool("no-cache", false, "bypass the local candle cache")

	return cmd
}

func displayCandles(output *Output, symbol string, result *marketdata.Result, candles []models.Candle) error {
	output.Printf("%s %s %s\n",
		output.BoldText(symbol),
		output.DimText("("+string(result.Exchange)+")"),
		output.SourceTag(result.Source))
	output.Printf("  %d candles\n\n", len(candles))

	table := NewTable(output, "Date", "Open", "High", "Low", "Close", "Volume", "Change")

	for i, c := range candles {
		change := "-"
		if i > 0 && candles[i-1].Close != 0 {
			pctChange := ((c.Close - candles[i-1].Close) / candles[i-1].Close) * 100
			change = output.FormatSignedPercent(pctChange)
		}

		table.AddRow(
			FormatDate(c.Timestamp),
			FormatPrice(c.Open),
			output.Green(FormatPrice(c.High)),
			output.Red(FormatPrice(c.Low)),
			FormatPrice(c.Close),
			FormatVolume(c.Volume),
			change,
		)
	}

	table.Render()
	return nil
}
