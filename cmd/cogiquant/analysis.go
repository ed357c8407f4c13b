package main

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cogiquant/cogiquant/internal/analysis/stats"
	"github.com/cogiquant/cogiquant/internal/analysis/technical"
	"github.com/cogiquant/cogiquant/internal/pricing"
	"github.com/cogiquant/cogiquant/pkg/models"
	"github.com/cogiquant/cogiquant/pkg/pairedset"
	"github.com/cogiquant/cogiquant/pkg/series"
	"github.com/cogiquant/cogiquant/pkg/utils"
)

func init() {
	addRangeFlags(indicatorsCmd)
	indicatorsCmd.Flags().IntSlice("sma", nil, "SMA/EMA windows (default from config)")
	indicatorsCmd.Flags().Int("rsi", 0, "RSI period (default from config)")
	indicatorsCmd.Flags().Int("tail", 10, "show only the last N rows, 0 for all")
	indicatorsCmd.Flags().Bool("summary", false, "print the signal summary instead of the table")

	addRangeFlags(normalizeCmd)
	normalizeCmd.Flags().String("column", models.ColClose, "price column to normalise")
	normalizeCmd.Flags().String("method", "", "minmax or z (default from config)")
	normalizeCmd.Flags().Int("tail", 10, "show only the last N rows, 0 for all")

	addRangeFlags(statsCmd)
	statsCmd.Flags().String("column", models.ColClose, "price column to summarise")
	statsCmd.Flags().StringSlice("values", nil, "summarise these numbers instead of fetching prices")

	rootCmd.AddCommand(indicatorsCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(statsCmd)
}

// fetchColumn loads one price column for args[0] and fills its gaps with
// the configured fill mode.
func fetchColumn(cmd *cobra.Command, ticker, column string) (*series.Series[time.Time], error) {
	r, err := rangeFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	s, err := pricing.Column(cmd.Context(), agg.Provider(), ticker, column, r)
	if err != nil {
		return nil, err
	}
	mode, err := series.ParseFillMode(cfg.Analysis.FillMode)
	if err != nil {
		return nil, err
	}
	return series.Fill(s, mode)
}

// --- Indicators Command ---

// indicatorRow is one output row; nil fields are undefined at that bar.
type indicatorRow struct {
	Time      time.Time           `json:"time"`
	Close     *float64            `json:"close"`
	SMA       map[string]*float64 `json:"sma"`
	EMA       map[string]*float64 `json:"ema"`
	RSI       *float64            `json:"rsi"`
	MACD      *float64            `json:"macd"`
	Signal    *float64            `json:"signal"`
	Histogram *float64            `json:"histogram"`
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators <ticker>",
	Short: "Compute SMA, EMA, RSI and MACD over closing prices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		closes, err := fetchColumn(cmd, args[0], models.ColClose)
		if err != nil {
			return err
		}
		ticker := utils.ToYahooTicker(args[0])
		out := cmd.OutOrStdout()

		if summary, _ := cmd.Flags().GetBool("summary"); summary {
			snap := technical.Snapshot(ticker, closes)
			if wantJSON(cmd) {
				return printJSON(out, snap)
			}
			fmt.Fprintln(out, snap.Summary)
			for _, s := range snap.Signals {
				fmt.Fprintf(out, "  %-8s %-7s %s\n", s.Source, s.Type, s.Reason)
			}
			return nil
		}

		a := cfg.Analysis
		windows, _ := cmd.Flags().GetIntSlice("sma")
		if len(windows) == 0 {
			windows = a.SMAWindows
		}
		rsiPeriod, _ := cmd.Flags().GetInt("rsi")
		if rsiPeriod == 0 {
			rsiPeriod = a.RSIPeriod
		}

		smas := make([]*series.Series[time.Time], len(windows))
		emas := make([]*series.Series[time.Time], len(windows))
		for i, w := range windows {
			if smas[i], err = technical.SMA(closes, w); err != nil {
				return fmt.Errorf("SMA(%d): %w", w, err)
			}
			if emas[i], err = technical.EMA(closes, w, a.EMAAdjust); err != nil {
				return fmt.Errorf("EMA(%d): %w", w, err)
			}
		}
		rsi, err := technical.RSI(closes, rsiPeriod)
		if err != nil {
			return fmt.Errorf("RSI(%d): %w", rsiPeriod, err)
		}
		macd, err := technical.MACDAll(closes, technical.MACDParams{Fast: a.MACDFast, Slow: a.MACDSlow, Signal: a.MACDSignal})
		if err != nil {
			return fmt.Errorf("MACD: %w", err)
		}

		from := tailStart(cmd, closes.Len())
		rows := make([]indicatorRow, 0, closes.Len()-from)
		for i := from; i < closes.Len(); i++ {
			r := indicatorRow{
				Time:      closes.Index[i],
				Close:     nullable(closes.Values[i]),
				SMA:       map[string]*float64{},
				EMA:       map[string]*float64{},
				RSI:       nullable(rsi.Values[i]),
				MACD:      nullable(macd.MACD.Values[i]),
				Signal:    nullable(macd.Signal.Values[i]),
				Histogram: nullable(macd.Histogram.Values[i]),
			}
			for j, w := range windows {
				r.SMA[strconv.Itoa(w)] = nullable(smas[j].Values[i])
				r.EMA[strconv.Itoa(w)] = nullable(emas[j].Values[i])
			}
			rows = append(rows, r)
		}
		if wantJSON(cmd) {
			return printJSON(out, rows)
		}

		header := []string{"Date", "Close"}
		for _, w := range windows {
			header = append(header, fmt.Sprintf("SMA%d", w), fmt.Sprintf("EMA%d", w))
		}
		header = append(header, fmt.Sprintf("RSI%d", rsiPeriod), "MACD", "Signal", "Hist")

		interval, _ := cmd.Flags().GetString("interval")
		if interval == "" {
			interval = a.Interval
		}
		tw := newTable(out)
		fmt.Fprint(tw, row(header...))
		for i := from; i < closes.Len(); i++ {
			cells := []string{barTime(closes.Index[i], interval), num(closes.Values[i])}
			for j := range windows {
				cells = append(cells, num(smas[j].Values[i]), num(emas[j].Values[i]))
			}
			cells = append(cells, num(rsi.Values[i]), num(macd.MACD.Values[i]), num(macd.Signal.Values[i]), num(macd.Histogram.Values[i]))
			fmt.Fprint(tw, row(cells...))
		}
		return tw.Flush()
	},
}

// --- Normalize Command ---

var normalizeCmd = &cobra.Command{
	Use:   "normalize <ticker>",
	Short: "Min-max or z-score normalise a price column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		column, _ := cmd.Flags().GetString("column")
		s, err := fetchColumn(cmd, args[0], column)
		if err != nil {
			return err
		}
		methodName, _ := cmd.Flags().GetString("method")
		if methodName == "" {
			methodName = cfg.Analysis.NormMethod
		}
		method, err := series.ParseNormMethod(methodName)
		if err != nil {
			return err
		}
		norm, err := series.Normalize(s, method)
		if err != nil {
			return err
		}

		from := tailStart(cmd, norm.Len())
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			type point struct {
				Time       time.Time `json:"time"`
				Value      *float64  `json:"value"`
				Normalized *float64  `json:"normalized"`
			}
			points := make([]point, 0, norm.Len()-from)
			for i := from; i < norm.Len(); i++ {
				points = append(points, point{norm.Index[i], nullable(s.Values[i]), nullable(norm.Values[i])})
			}
			return printJSON(out, points)
		}
		tw := newTable(out)
		fmt.Fprint(tw, row("Date", s.Name, string(method)))
		for i := from; i < norm.Len(); i++ {
			fmt.Fprint(tw, row(utils.FormatDate(norm.Index[i]), num(s.Values[i]), utils.FormatFloat(norm.Values[i], 4)))
		}
		return tw.Flush()
	},
}

// --- Stats Command ---

var statsCmd = &cobra.Command{
	Use:   "stats [ticker]",
	Short: "Sample statistics of a price column or a list of numbers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			sample []float64
			label  string
		)
		if values, _ := cmd.Flags().GetStringSlice("values"); len(values) > 0 {
			cells := make([]any, len(values))
			pos := make([]int, len(values))
			for i, v := range values {
				cells[i], pos[i] = v, i
			}
			set, err := pairedset.Coerce(pos, cells)
			if err != nil {
				return err
			}
			sample, label = set.Y(), "values"
		} else {
			if len(args) == 0 {
				return fmt.Errorf("give a ticker or --values")
			}
			column, _ := cmd.Flags().GetString("column")
			r, err := rangeFromFlags(cmd)
			if err != nil {
				return err
			}
			s, err := pricing.Column(cmd.Context(), agg.Provider(), args[0], column, r)
			if err != nil {
				return err
			}
			sample, label = s.Values, s.Name
		}

		sum, err := stats.Summarize(stats.Dropna(sample))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, sum)
		}
		fmt.Fprintf(out, "%s (%d observations)\n", label, sum.Count)
		fmt.Fprintf(out, "  Mean:      %s\n", utils.FormatFloat(sum.Mean, 4))
		fmt.Fprintf(out, "  Std dev:   %s\n", utils.FormatFloat(sum.StdDev, 4))
		fmt.Fprintf(out, "  Variance:  %s\n", utils.FormatFloat(sum.Variance, 4))
		fmt.Fprintf(out, "  Min:       %s\n", utils.FormatFloat(sum.Min, 4))
		fmt.Fprintf(out, "  Max:       %s\n", utils.FormatFloat(sum.Max, 4))
		fmt.Fprintf(out, "  Range:     %s\n", utils.FormatFloat(sum.Range, 4))
		fmt.Fprintf(out, "  Mode:      %s\n", utils.FormatFloat(sum.Mode, 4))
		return nil
	},
}

// tailStart returns the first row index to print for --tail.
func tailStart(cmd *cobra.Command, n int) int {
	tail, _ := cmd.Flags().GetInt("tail")
	if tail <= 0 || tail >= n {
		return 0
	}
	return n - tail
}

// nullable maps NaN to nil so results survive JSON encoding.
func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
