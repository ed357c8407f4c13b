package technical

import (
	"fmt"
	"math"
	"time"

	"github.com/cogiquant/cogiquant/pkg/models"
)

// MinSignalBars is the shortest close history GenerateSignals will read.
const MinSignalBars = 30

// ComputeAll collects the latest value of every indicator over a close
// series. Indicators that cannot be computed are left at zero.
func ComputeAll[S Indexed[S]](ticker string, closes S) *models.TechnicalIndicators {
	ind := &models.TechnicalIndicators{
		Ticker:    ticker,
		SMA:       MultiSMA(closes, StandardPeriods),
		EMA:       MultiEMA(closes, StandardPeriods),
		Timestamp: time.Now(),
	}
	if v, ok := Latest(closes); ok {
		ind.Price = v
	}
	if rsi, err := RSI(closes, DefaultRSIPeriod); err == nil {
		ind.RSI, _ = Latest(rsi)
	}
	if m, err := MACDAll(closes, DefaultMACDParams()); err == nil {
		ind.MACD.MACDLine, _ = Latest(m.MACD)
		ind.MACD.SignalLine, _ = Latest(m.Signal)
		ind.MACD.Histogram, _ = Latest(m.Histogram)
	}
	return ind
}

// GenerateSignals produces trading signals from the latest indicator values.
// Fewer than MinSignalBars closes yields no signals.
func GenerateSignals[S Indexed[S]](closes S) []models.Signal {
	if closes.Len() < MinSignalBars {
		return nil
	}
	return signalsFrom(ComputeAll("", closes))
}

func signalsFrom(ind *models.TechnicalIndicators) []models.Signal {
	var signals []models.Signal
	price := ind.Price
	if price == 0 || math.IsNaN(price) {
		return nil
	}

	// --- RSI signals ---
	rsi := ind.RSI
	if rsi > 0 {
		if rsi < 30 {
			signals = append(signals, models.Signal{
				Source:     "RSI",
				Type:       models.SignalBuy,
				Confidence: models.Confidence(0.5 + (30-rsi)/100),
				Reason:     fmt.Sprintf("RSI oversold at %.1f", rsi),
				Price:      price,
			})
		} else if rsi > 70 {
			signals = append(signals, models.Signal{
				Source:     "RSI",
				Type:       models.SignalSell,
				Confidence: models.Confidence(clampf(0.5+(rsi-70)/100, 0, 1)),
				Reason:     fmt.Sprintf("RSI overbought at %.1f", rsi),
				Price:      price,
			})
		}
	}

	// --- MACD signals ---
	macd := ind.MACD
	if macd.MACDLine != 0 && macd.SignalLine != 0 {
		if macd.Histogram > 0 && macd.MACDLine > macd.SignalLine {
			signals = append(signals, models.Signal{
				Source:     "MACD",
				Type:       models.SignalBuy,
				Confidence: models.Confidence(clampf(0.5+macd.Histogram/price*100, 0, 1)),
				Reason:     fmt.Sprintf("MACD above signal line (histogram: %.2f)", macd.Histogram),
				Price:      price,
			})
		} else if macd.Histogram < 0 && macd.MACDLine < macd.SignalLine {
			signals = append(signals, models.Signal{
				Source:     "MACD",
				Type:       models.SignalSell,
				Confidence: models.Confidence(clampf(0.5-macd.Histogram/price*100, 0, 1)),
				Reason:     fmt.Sprintf("MACD below signal line (histogram: %.2f)", macd.Histogram),
				Price:      price,
			})
		}
	}

	// --- Moving average crossover signals ---
	if sma50, ok := ind.SMA[50]; ok {
		if sma200, ok2 := ind.SMA[200]; ok2 {
			if sma50 > sma200 && price > sma50 {
				signals = append(signals, models.Signal{
					Source:     "MA_Golden_Cross",
					Type:       models.SignalBuy,
					Confidence: 0.7,
					Reason:     fmt.Sprintf("SMA50 (%.2f) above SMA200 (%.2f), golden cross", sma50, sma200),
					Price:      price,
				})
			} else if sma50 < sma200 && price < sma50 {
				signals = append(signals, models.Signal{
					Source:     "MA_Death_Cross",
					Type:       models.SignalSell,
					Confidence: 0.7,
					Reason:     fmt.Sprintf("SMA50 (%.2f) below SMA200 (%.2f), death cross", sma50, sma200),
					Price:      price,
				})
			}
		}
	}

	// --- Price vs EMA20 signals ---
	if ema20, ok := ind.EMA[20]; ok && ema20 != 0 {
		pctDiff := (price - ema20) / ema20 * 100
		if pctDiff < -3 {
			signals = append(signals, models.Signal{
				Source:     "EMA20",
				Type:       models.SignalBuy,
				Confidence: models.Confidence(clampf(0.4+(-pctDiff)/20, 0, 0.9)),
				Reason:     fmt.Sprintf("Price %.1f%% below EMA20 (%.2f)", pctDiff, ema20),
				Price:      price,
			})
		} else if pctDiff > 5 {
			signals = append(signals, models.Signal{
				Source:     "EMA20",
				Type:       models.SignalSell,
				Confidence: models.Confidence(clampf(0.4+pctDiff/20, 0, 0.9)),
				Reason:     fmt.Sprintf("Price %.1f%% above EMA20 (%.2f)", pctDiff, ema20),
				Price:      price,
			})
		}
	}

	return signals
}

// signalWeights weights each source in AggregateSignal. Unknown sources weigh 1.
var signalWeights = map[string]float64{
	"RSI":             1.0,
	"MACD":            1.2,
	"MA_Golden_Cross": 1.3,
	"MA_Death_Cross":  1.3,
	"EMA20":           0.7,
}

// AggregateSignal computes a weighted aggregate from multiple signals.
func AggregateSignal(signals []models.Signal) (models.SignalType, models.Confidence, models.Recommendation) {
	if len(signals) == 0 {
		return models.SignalNeutral, 0, models.Hold
	}

	var buyScore, sellScore, totalWeight float64
	for _, sig := range signals {
		w := signalWeights[sig.Source]
		if w == 0 {
			w = 1.0
		}
		conf := float64(sig.Confidence)

		switch sig.Type {
		case models.SignalBuy:
			buyScore += w * conf
		case models.SignalSell:
			sellScore += w * conf
		}
		totalWeight += w
	}

	netScore := (buyScore - sellScore) / totalWeight // -1 to +1

	switch {
	case netScore > 0.3:
		return models.SignalBuy, models.Confidence(clampf(0.7+netScore*0.3, 0, 1)), models.StrongBuy
	case netScore > 0.1:
		return models.SignalBuy, models.Confidence(clampf(0.5+netScore*0.3, 0, 1)), models.ModerateBuy
	case netScore < -0.3:
		return models.SignalSell, models.Confidence(clampf(0.7-netScore*0.3, 0, 1)), models.StrongSell
	case netScore < -0.1:
		return models.SignalSell, models.Confidence(clampf(0.5-netScore*0.3, 0, 1)), models.ModerateSell
	default:
		return models.SignalNeutral, 0.4, models.Hold
	}
}

// Snapshot runs the full technical pass over a close series.
func Snapshot[S Indexed[S]](ticker string, closes S) *models.TechnicalSummary {
	ind := ComputeAll(ticker, closes)
	var signals []models.Signal
	if closes.Len() >= MinSignalBars {
		signals = signalsFrom(ind)
	}
	sigType, conf, rec := AggregateSignal(signals)

	return &models.TechnicalSummary{
		Ticker:         ticker,
		Indicators:     ind,
		Signals:        signals,
		Direction:      sigType,
		Recommendation: rec,
		Confidence:     conf,
		Summary: fmt.Sprintf("Technical analysis for %s: %s signal with %.0f%% confidence. %s",
			ticker, sigType, float64(conf)*100, summarizeSignals(signals)),
		Timestamp: ind.Timestamp,
	}
}

// --- helpers ---

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func summarizeSignals(signals []models.Signal) string {
	buy, sell, neutral := 0, 0, 0
	for _, s := range signals {
		switch s.Type {
		case models.SignalBuy:
			buy++
		case models.SignalSell:
			sell++
		default:
			neutral++
		}
	}
	return fmt.Sprintf("%d buy, %d sell, %d neutral signals", buy, sell, neutral)
}
