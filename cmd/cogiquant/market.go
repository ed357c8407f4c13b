package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cogiquant/cogiquant/internal/analysis/sentiment"
	"github.com/cogiquant/cogiquant/internal/analysis/technical"
	"github.com/cogiquant/cogiquant/internal/datasource"
	"github.com/cogiquant/cogiquant/internal/instrument"
	"github.com/cogiquant/cogiquant/pkg/models"
	"github.com/cogiquant/cogiquant/pkg/utils"
)

func init() {
	quoteCmd.Flags().String("name", "", "look the company up by name instead of ticker")
	profileCmd.Flags().String("name", "", "look the company up by name instead of ticker")
	addRangeFlags(historyCmd)
	historyCmd.Flags().Int("tail", 0, "show only the last N bars")
	newsCmd.Flags().Int("limit", 10, "maximum number of headlines")
	newsCmd.Flags().Bool("tone", false, "score each headline and show the overall tone")
	snp500Cmd.Flags().String("sector", "", "only list members of this GICS sector")
	addRangeFlags(compareCmd)
	overviewCmd.Flags().Int("news", 5, "number of headlines to include")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(snp500Cmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(overviewCmd)
}

// loadStock resolves the positional ticker or the --name flag.
func loadStock(cmd *cobra.Command, args []string) (*instrument.Stock, error) {
	ref := instrument.Ref{}
	ref.CompanyName, _ = cmd.Flags().GetString("name")
	if len(args) > 0 {
		ref.Ticker = args[0]
	}
	return instrument.New(cmd.Context(), agg.Provider(), ref)
}

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote [ticker]...",
	Short: "Show the latest quote for one or more stocks",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return quoteMany(cmd, args)
		}
		s, err := loadStock(cmd, args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, s.Quote())
		}

		q := s.Quote()
		fmt.Fprintf(out, "%s  %s\n", s.Ticker(), s.Name())
		fmt.Fprintf(out, "  Price:       %s  %s (%s)\n", utils.FormatUSD(s.CurrentPrice()), num(q.Change), utils.FormatPct(q.ChangePct))
		fmt.Fprintf(out, "  Prev close:  %s\n", utils.FormatUSD(s.PrevClose()))
		fmt.Fprintf(out, "  Day range:   %s - %s (open %s)\n", utils.FormatUSD(s.DayLow()), utils.FormatUSD(s.DayHigh()), utils.FormatUSD(s.Open()))
		fmt.Fprintf(out, "  52w range:   %s - %s\n", utils.FormatUSD(s.YearLow()), utils.FormatUSD(s.YearHigh()))
		fmt.Fprintf(out, "  Volume:      %s (10d avg %s)\n", utils.FormatVolume(s.Volume()), utils.FormatVolume(s.AvgVolume10Day()))
		fmt.Fprintf(out, "  Market cap:  %s\n", utils.FormatCompact(q.MarketCap))
		fmt.Fprintf(out, "  Beta:        %s\n", num(s.Beta()))
		fmt.Fprintf(out, "  P/E:         %s trailing, %s forward\n", num(s.TrailingPE()), num(s.ForwardPE()))
		fmt.Fprintf(out, "  Market:      %s\n", utils.MarketStatus(utils.NowET()))
		return nil
	},
}

// quoteMany prints one table row per ticker, skipping the ones that failed.
func quoteMany(cmd *cobra.Command, args []string) error {
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		return fmt.Errorf("--name looks up a single company, got %d tickers as well", len(args))
	}
	tickers := utils.SplitTickers(strings.Join(args, ","))
	quotes, err := agg.FetchQuotes(cmd.Context(), tickers)
	if err != nil {
		log.Warn().Err(err).Msg("some quotes failed")
	}
	if len(quotes) == 0 {
		return fmt.Errorf("no quotes for %s", strings.Join(tickers, ", "))
	}

	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return printJSON(out, quotes)
	}
	tw := newTable(out)
	fmt.Fprint(tw, row("Ticker", "Name", "Price", "Change", "Change %", "Volume", "Market cap"))
	for _, t := range tickers {
		q, ok := quotes[t]
		if !ok {
			continue
		}
		fmt.Fprint(tw, row(t, q.Name, num(q.LastPrice), num(q.Change), utils.FormatPct(q.ChangePct),
			utils.FormatVolume(q.Volume), utils.FormatCompact(q.MarketCap)))
	}
	return tw.Flush()
}

// --- Profile Command ---

var profileCmd = &cobra.Command{
	Use:   "profile [ticker]",
	Short: "Show company profile and officers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadStock(cmd, args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, s.Profile())
		}
		if s.Profile() == nil {
			return fmt.Errorf("no company profile for %s", s.Ticker())
		}

		fmt.Fprintf(out, "%s  %s\n", s.Ticker(), s.Name())
		fmt.Fprintf(out, "  Sector:     %s\n", s.Sector(false))
		fmt.Fprintf(out, "  Industry:   %s\n", s.Industry(false))
		fmt.Fprintf(out, "  Employees:  %s\n", utils.FormatVolume(s.Employees()))
		if p := s.Profile(); p.City != "" {
			fmt.Fprintf(out, "  Location:   %s, %s\n", p.City, p.Country)
		}
		if chair := s.Chair(); len(chair) > 0 {
			fmt.Fprintln(out, "  Officers:")
			tw := newTable(out)
			fmt.Fprint(tw, row("", "Name", "Title", "Age", "Pay"))
			for _, o := range chair {
				age := ""
				if o.Age > 0 {
					age = strconv.Itoa(o.Age)
				}
				pay := ""
				if o.TotalPay > 0 {
					pay = utils.FormatCompact(o.TotalPay)
				}
				fmt.Fprint(tw, row("", o.Name, o.Title, age, pay))
			}
			tw.Flush()
		}
		if sum := s.Summary(); sum != "" {
			fmt.Fprintf(out, "\n%s\n", sum)
		}
		return nil
	},
}

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history <ticker>",
	Short: "Show OHLCV price history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rangeFromFlags(cmd)
		if err != nil {
			return err
		}
		frame, err := agg.Provider().History(cmd.Context(), args[0], r)
		if err != nil {
			return err
		}
		if tail, _ := cmd.Flags().GetInt("tail"); tail > 0 && tail < frame.Len() {
			frame.Bars = frame.Bars[frame.Len()-tail:]
		}

		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, frame)
		}
		tw := newTable(out)
		fmt.Fprint(tw, row("Date", models.ColOpen, models.ColHigh, models.ColLow, models.ColClose, models.ColVolume))
		for _, b := range frame.Bars {
			fmt.Fprint(tw, row(barTime(b.Timestamp, frame.Interval), num(b.Open), num(b.High), num(b.Low), num(b.Close),
				utils.FormatVolume(int64(b.Volume))))
		}
		return tw.Flush()
	},
}

// --- Search Command ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find tickers by company name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := agg.Provider().Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, results)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "no matches")
			return nil
		}
		tw := newTable(out)
		fmt.Fprint(tw, row("Symbol", "Name", "Type", "Exchange"))
		for _, r := range results {
			fmt.Fprint(tw, row(r.Symbol, r.Name, r.QuoteType, r.Exchange))
		}
		return tw.Flush()
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [ticker]",
	Short: "Show recent headlines for a stock, or the market",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		ticker := datasource.MarketNewsTicker
		if len(args) > 0 {
			ticker = args[0]
		}
		articles, err := agg.News().Headlines(cmd.Context(), ticker, limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if tone, _ := cmd.Flags().GetBool("tone"); tone {
			sum := sentiment.Summarize(utils.ToYahooTicker(ticker), articles, time.Now())
			if wantJSON(cmd) {
				return printJSON(out, sum)
			}
			for _, s := range sum.Scores {
				fmt.Fprintf(out, "%+.2f  %s\n", s.Score, s.Headline)
			}
			sig := sum.Signal()
			fmt.Fprintf(out, "\n%s: %s (score %+.2f, confidence %.0f%%)\n", sig.Type, sig.Reason, sum.Score, sum.Confidence*100)
			return nil
		}
		if wantJSON(cmd) {
			return printJSON(out, articles)
		}
		for _, a := range articles {
			fmt.Fprintf(out, "%s  %s\n", a.PublishedAt.In(utils.ET).Format("Jan 02 15:04"), a.Title)
			fmt.Fprintf(out, "                %s\n", a.URL)
		}
		return nil
	},
}

// --- S&P 500 Command ---

var snp500Cmd = &cobra.Command{
	Use:   "snp500",
	Short: "List S&P 500 constituents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			list []models.Constituent
			err  error
		)
		if sector, _ := cmd.Flags().GetString("sector"); sector != "" {
			list, err = agg.SNP500().Sector(cmd.Context(), sector)
		} else {
			list, err = agg.SNP500().Constituents(cmd.Context())
		}
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, list)
		}
		tw := newTable(out)
		fmt.Fprint(tw, row("Symbol", "Security", "Sector", "Sub-Industry"))
		for _, c := range list {
			fmt.Fprint(tw, row(c.Symbol, c.Security, c.Sector, c.SubIndustry))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%d companies\n", len(list))
		return nil
	},
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare <ticker> <ticker>...",
	Short: "Compare technical snapshots of several stocks",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rangeFromFlags(cmd)
		if err != nil {
			return err
		}
		tickers := utils.SplitTickers(strings.Join(args, ","))
		frames, err := agg.FetchHistories(cmd.Context(), tickers, r)
		if err != nil {
			log.Warn().Err(err).Msg("some tickers failed")
		}
		if len(frames) == 0 {
			return fmt.Errorf("no data for %s", strings.Join(tickers, ", "))
		}

		var summaries []*models.TechnicalSummary
		for _, t := range tickers {
			f, ok := frames[t]
			if !ok {
				continue
			}
			closes, err := f.Column(models.ColClose)
			if err != nil {
				return err
			}
			summaries = append(summaries, technical.Snapshot(t, closes))
		}

		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, summaries)
		}
		tw := newTable(out)
		fmt.Fprint(tw, row("Ticker", "Price", "RSI", "MACD hist", "SMA50", "SMA200", "Signal", "Confidence"))
		for _, s := range summaries {
			ind := s.Indicators
			fmt.Fprint(tw, row(s.Ticker, num(ind.Price), num(ind.RSI), num(ind.MACD.Histogram),
				smaCell(ind.SMA, 50), smaCell(ind.SMA, 200), string(s.Recommendation), num(float64(s.Confidence))))
		}
		return tw.Flush()
	},
}

// --- Overview Command ---

var overviewCmd = &cobra.Command{
	Use:   "overview <ticker>",
	Short: "Quote, company profile and headlines in one view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("news")
		ov, err := agg.FetchOverview(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, ov)
		}

		q := ov.Quote
		fmt.Fprintf(out, "%s  %s\n", ov.Ticker, q.Name)
		fmt.Fprintf(out, "  Price:       %s  %s (%s)\n", utils.FormatUSD(q.LastPrice), num(q.Change), utils.FormatPct(q.ChangePct))
		fmt.Fprintf(out, "  52w range:   %s - %s\n", utils.FormatUSD(q.WeekLow52), utils.FormatUSD(q.WeekHigh52))
		fmt.Fprintf(out, "  Market cap:  %s\n", utils.FormatCompact(q.MarketCap))
		if p := ov.Profile; p != nil {
			fmt.Fprintf(out, "  Sector:      %s\n", p.Sector)
			fmt.Fprintf(out, "  Industry:    %s\n", p.Industry)
		}
		if len(ov.News) > 0 {
			fmt.Fprintln(out, "\nHeadlines:")
			for _, a := range ov.News {
				fmt.Fprintf(out, "  %s  %s\n", a.PublishedAt.In(utils.ET).Format("Jan 02 15:04"), a.Title)
			}
		}
		for _, e := range ov.Errors {
			log.Warn().Str("ticker", ov.Ticker).Msg(e)
		}
		return nil
	},
}

func smaCell(m map[int]float64, period int) string {
	v, ok := m[period]
	if !ok {
		return "-"
	}
	return num(v)
}
