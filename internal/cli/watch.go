// Package cli provides the command-line interface for the analysis tool.
package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/marketdata"
	"stocklens/internal/models"
	"stocklens/pkg/utils"
)

func newWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <symbol>",
		Short: "Re-run the analysis on a schedule",
		Long: `Re-run the analysis for one stock on a cron schedule and print a compact
summary line per tick. Ticks outside market hours are skipped unless
--always is set. Stop with Ctrl+C.

The schedule uses a 6-field cron spec with seconds.`,
		Example: `  stocklens watch RELIANCE
  stocklens watch INFY --cron "0 */15 * * * *"
  stocklens watch TCS --always`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			cronSpec, _ := cmd.Flags().GetString("cron")
			months, _ := cmd.Flags().GetInt("months")
			exchangeFlag, _ := cmd.Flags().GetString("exchange")
			always, _ := cmd.Flags().GetBool("always")

			opts := marketdata.Options{Months: months, NoCache: true}
			if exchangeFlag != "" {
				exchange, ok := models.ParseExchange(exchangeFlag)
				if !ok {
					output.Error("Unknown exchange %q (use NSE or BSE)", exchangeFlag)
					return apperrors.ErrUnknownExchange
				}
				opts.Exchange = exchange
			}
			symbol := models.NormalizeSymbol(args[0])

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			scheduler := cron.New(cron.WithSeconds())
			_, err := scheduler.AddFunc(cronSpec, func() {
				watchTick(ctx, app, output, symbol, opts, always)
			})
			if err != nil {
				output.Error("Invalid cron spec %q: %v", cronSpec, err)
				return err
			}

			output.Info("Watching %s (%s); press Ctrl+C to stop", symbol, cronSpec)
			if utils.IsMarketOpen() {
				output.Dim("Market is open until %s", FormatTime(utils.GetMarketClose()))
			} else if !always {
				output.Dim("Market is closed; ticks are skipped until %s (use --always to override)",
					FormatDateTime(utils.GetNextMarketOpen()))
			}

			scheduler.Start()
			<-ctx.Done()
			cronCtx := scheduler.Stop()
			<-cronCtx.Done()

			output.Println()
			output.Dim("Watch stopped")
			return nil
		},
	}

	cmd.Flags().String("cron", "0 */5 * * * *", "6-field cron spec with seconds")
	cmd.Flags().IntP("months", "m", 0, "lookback window in months (1-60, default from config)")
	cmd.Flags().StringP("exchange", "e", "", "pin to one exchange: NSE or BSE (disables fallback)")
	cmd.Flags().Bool("always", false, "run ticks even while the market is closed")

	return cmd
}

// watchTick runs one scheduled analysis. Failures are logged and never kill
// the watch loop.
func watchTick(ctx context.Context, app *App, output *Output, symbol string, opts marketdata.Options, always bool) {
	if !always && !utils.IsMarketOpen() {
		app.Logger.Debug().Str("symbol", symbol).Msg("Market closed, skipping tick")
		return
	}

	tickCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	result, err := app.Service.History(tickCtx, symbol, opts)
	if err != nil {
		app.Logger.Error().Err(err).Str("symbol", symbol).Msg("Watch fetch failed")
		output.Warning("%s  %s  fetch failed: %v", time.Now().Format("15:04:05"), symbol, err)
		return
	}

	report, err := app.Builder.Build(symbol, result.Exchange, result.Candles)
	if err != nil {
		app.Logger.Error().Err(err).Str("symbol", symbol).Msg("Watch analysis failed")
		return
	}

	tech := report.TechnicalIndicators
	output.Printf("%s  %s %s  %s  50MA %s  200MA %s  range %s\n",
		output.DimText(FormatTime(time.Now())),
		output.BoldText(symbol),
		output.DimText("("+string(report.StockInfo.Exchange)+")"),
		FormatIndianCurrency(report.PriceMetrics.CurrentPrice),
		fmt.Sprintf("%s %s", FormatIndianCurrency(tech.MA50), output.PositionText(tech.VsMA50)),
		fmt.Sprintf("%s %s", FormatIndianCurrency(tech.MA200), output.PositionText(tech.VsMA200)),
		FormatPercent(report.PriceMetrics.RangePercent),
	)
}
