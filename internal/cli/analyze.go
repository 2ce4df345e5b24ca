// Package cli provides the command-line interface for the analysis tool.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stocklens/internal/analysis"
	apperrors "stocklens/internal/errors"
	"stocklens/internal/logging"
	"stocklens/internal/marketdata"
	"stocklens/internal/models"
	"stocklens/pkg/utils"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Analyze a stock over a lookback window",
		Long: `Fetch daily price history for a stock and compute its summary report:
- Stock information (symbol, exchange, trading days)
- Price metrics (current, high, low, average, range %)
- Volume metrics (average, max, last)
- Technical indicators (price vs 50-day and 200-day moving averages)

The default exchange is tried first; when it has no data the fallback
exchange is used automatically.`,
		Example: `  stocklens analyze RELIANCE
  stocklens analyze SUNFLAG --months 6
  stocklens analyze INFY --exchange BSE --chart
  stocklens analyze TCS --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			months, _ := cmd.Flags().GetInt("months")
			exchangeFlag, _ := cmd.Flags().GetString("exchange")
			withChart, _ := cmd.Flags().GetBool("chart")
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

			report, err := app.Builder.Build(models.NormalizeSymbol(args[0]), result.Exchange, result.Candles)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			renderAnalysis(output, report, result)
			if withChart {
				output.Println()
				renderCharts(output, app, result, chartOptions{price: true, volume: true})
			}
			return nil
		},
	}

	cmd.Flags().IntP("months", "m", 0, "lookback window in months (1-60, default from config)")
	cmd.Flags().StringP("exchange", "e", "", "pin to one exchange: NSE or BSE (disables fallback)")
	cmd.Flags().Bool("chart", false, "append price and volume charts to the report")
	cmd.Flags().Bool("no-cache", false, "bypass the local candle cache")

	return cmd
}

// fetchHistory wraps Service.History with user-facing error messages shared
// by every data-driven command.
func fetchHistory(ctx context.Context, app *App, output *Output, symbol string, opts marketdata.Options) (*marketdata.Result, error) {
	result, err := app.Service.History(ctx, symbol, opts)
	if err == nil {
		return result, nil
	}
	logger := logging.FromContext(ctx)
	logger.Debug().Err(err).Str("symbol", symbol).Msg("History fetch failed")

	switch {
	case apperrors.Is(err, apperrors.ErrNoData):
		if opts.Exchange != "" {
			output.Error("No data available for %s on %s", models.NormalizeSymbol(symbol), opts.Exchange)
		} else {
			output.Error("No data available for %s on either NSE or BSE", models.NormalizeSymbol(symbol))
		}
		output.Dim("Try a listed symbol, e.g. %s", strings.Join(models.PopularSymbols, ", "))
	case apperrors.Is(err, apperrors.ErrInvalidSymbol):
		output.Error("Invalid symbol %q", symbol)
		output.Dim("Symbols are 1-20 characters: letters, digits, & or -")
	case apperrors.Is(err, apperrors.ErrInvalidMonths):
		output.Error("Invalid lookback: %v", err)
	default:
		output.Error("Failed to fetch history: %v", err)
	}
	return nil, err
}

func renderAnalysis(output *Output, report *analysis.Analysis, result *marketdata.Result) {
	info := report.StockInfo
	price := report.PriceMetrics
	volume := report.VolumeMetrics
	tech := report.TechnicalIndicators

	output.Printf("%s %s %s\n",
		output.BoldText(info.Symbol),
		output.DimText("("+string(info.Exchange)+")"),
		output.SourceTag(result.Source))
	output.Printf("Market: %s  %s\n\n",
		marketStatusText(output),
		output.DimText("As of "+FormatDate(result.Candles[len(result.Candles)-1].Timestamp)))

	output.Bold("Stock Information")
	infoTable := NewTable(output, "Metric", "Value")
	infoTable.AddRow("Symbol", info.Symbol)
	infoTable.AddRow("Exchange", string(info.Exchange))
	infoTable.AddRow("Trading Days", FormatQuantity(int64(info.TradingDays)))
	infoTable.Render()
	output.Println()

	output.Bold("Price Metrics")
	priceTable := NewTable(output, "Metric", "Value")
	priceTable.AddRow("Current Price", FormatIndianCurrency(price.CurrentPrice))
	priceTable.AddRow("High", output.Green(FormatIndianCurrency(price.High)))
	priceTable.AddRow("Low", output.Red(FormatIndianCurrency(price.Low)))
	priceTable.AddRow("Average Price", FormatIndianCurrency(price.AveragePrice))
	priceTable.AddRow("Price Range", FormatPercent(price.RangePercent))
	priceTable.Render()
	output.Println()

	output.Bold("Volume Metrics")
	volumeTable := NewTable(output, "Metric", "Value")
	volumeTable.AddRow("Average Volume", FormatAverageVolume(volume.AverageVolume))
	volumeTable.AddRow("Max Volume", FormatVolume(volume.MaxVolume))
	volumeTable.AddRow("Last Volume", FormatVolume(volume.LastVolume))
	volumeTable.Render()
	output.Println()

	output.Bold("Technical Indicators")
	techTable := NewTable(output, "Indicator", "Value", "Position")
	techTable.AddRow(
		fmt.Sprintf("%d-Day MA", analysis.ShortMAWindow),
		FormatIndianCurrency(tech.MA50),
		output.PositionText(tech.VsMA50),
	)
	techTable.AddRow(
		fmt.Sprintf("%d-Day MA", analysis.LongMAWindow),
		FormatIndianCurrency(tech.MA200),
		output.PositionText(tech.VsMA200),
	)
	techTable.Render()

	if info.TradingDays < analysis.LongMAWindow {
		output.Println()
		output.Dim("Note: only %d trading days available; averages use a shrinking window until %d days exist.",
			info.TradingDays, analysis.LongMAWindow)
	}
}

func marketStatusText(output *Output) string {
	switch utils.GetMarketStatus() {
	case models.MarketOpen:
		return output.Green(string(models.MarketOpen))
	case models.MarketPreOpen:
		return output.ColoredString(ColorYellow, string(models.MarketPreOpen))
	default:
		return output.DimText(string(models.MarketClosed))
	}
}
