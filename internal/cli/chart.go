// Package cli provides the command-line interface for the analysis tool.
package cli

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/marketdata"
	"stocklens/internal/models"
	"stocklens/internal/series"
)

func newChartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart <symbol>",
		Short: "Render terminal charts for a stock",
		Long: `Render the close-price line chart and the volume bar chart for a stock's
daily history over the lookback window.`,
		Example: `  stocklens chart RELIANCE
  stocklens chart INFY --months 3
  stocklens chart TCS --price-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			months, _ := cmd.Flags().GetInt("months")
			exchangeFlag, _ := cmd.Flags().GetString("exchange")
			priceOnly, _ := cmd.Flags().GetBool("price-only")
			volumeOnly, _ := cmd.Flags().GetBool("volume-only")
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

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":   models.NormalizeSymbol(args[0]),
					"exchange": result.Exchange,
					"source":   result.Source,
					"candles":  result.Candles,
				})
			}

			renderCharts(output, app, result, chartOptions{
				price:  !volumeOnly,
				volume: !priceOnly,
			})
			return nil
		},
	}

	cmd.Flags().IntP("months", "m", 0, "lookback window in months (1-60, default from config)")
	cmd.Flags().StringP("exchange", "e", "", "pin to one exchange: NSE or BSE (disables fallback)")
	cmd.Flags().Bool("price-only", false, "render only the price chart")
	cmd.Flags().Bool("volume-only", false, "render only the volume chart")
	cmd.Flags().Bool("no-cache", false, "bypass the local candle cache")

	return cmd
}

type chartOptions struct {
	price  bool
	volume bool
}

func renderCharts(output *Output, app *App, result *marketdata.Result, opts chartOptions) {
	width := app.Config.UI.ChartWidth
	height := app.Config.UI.ChartHeight
	candles := result.Candles

	span := FormatDate(candles[0].Timestamp) + " to " + FormatDate(candles[len(candles)-1].Timestamp)

	if opts.price {
		output.Bold("Close Price")
		for _, line := range renderLineChart(series.Closes(candles), width, height) {
			output.Println(line)
		}
		output.Dim("%s  %d trading days", span, len(candles))
		output.Println()
	}

	if opts.volume {
		output.Bold("Volume")
		for _, line := range renderBarChart(series.Volumes(candles), width, height) {
			output.Println(line)
		}
		output.Dim("%s", span)
	}
}

const chartLabelWidth = 12

// downsample reduces values to width buckets, each the mean of its slice of
// the input, so long histories fit the terminal without losing the shape.
func downsample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		if hi <= lo {
			hi = lo + 1
		}
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// renderLineChart renders values as a rune-grid line chart with min/mid/max
// y-axis labels. It is a pure function of its inputs.
func renderLineChart(values []float64, width, height int) []string {
	if len(values) == 0 || width < 1 || height < 2 {
		return nil
	}

	cols := downsample(values, width)

	lowest, highest := cols[0], cols[0]
	for _, v := range cols {
		if v < lowest {
			lowest = v
		}
		if v > highest {
			highest = v
		}
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", len(cols)))
	}

	for col, v := range cols {
		row := 0
		if highest > lowest {
			row = int(math.Round((highest - v) / (highest - lowest) * float64(height-1)))
		} else {
			row = height / 2
		}
		grid[row][col] = '█'
	}

	labels := make([]string, height)
	labels[0] = FormatPrice(highest)
	labels[height-1] = FormatPrice(lowest)
	labels[height/2] = FormatPrice((highest + lowest) / 2)

	lines := make([]string, height)
	for i := range grid {
		lines[i] = PadLeft(labels[i], chartLabelWidth) + " ┤" + string(grid[i])
	}
	return lines
}

// renderBarChart renders volumes as vertical bars with a max-volume axis
// label. It is a pure function of its inputs.
func renderBarChart(volumes []int64, width, height int) []string {
	if len(volumes) == 0 || width < 1 || height < 2 {
		return nil
	}

	values := make([]float64, len(volumes))
	for i, v := range volumes {
		values[i] = float64(v)
	}

	// The axis label and bar scale use the true series max; downsampled
	// bucket means understate spikes.
	var highest float64
	for _, v := range values {
		if v > highest {
			highest = v
		}
	}

	cols := downsample(values, width)

	lines := make([]string, height)
	for row := 0; row < height; row++ {
		cells := make([]rune, len(cols))
		// Rows render top-down; a bar fills the bottom `bar` rows.
		for col, v := range cols {
			bar := 0
			if highest > 0 {
				bar = int(math.Ceil(v / highest * float64(height)))
			}
			if height-row <= bar {
				cells[col] = '█'
			} else {
				cells[col] = ' '
			}
		}

		label := ""
		if row == 0 {
			label = FormatAverageVolume(highest)
		}
		lines[row] = PadLeft(label, chartLabelWidth) + " ┤" + string(cells)
	}
	return lines
}
