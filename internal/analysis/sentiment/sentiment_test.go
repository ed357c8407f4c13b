package sentiment

import (
	"math"
	"testing"
	"time"

	"github.com/cogiquant/cogiquant/pkg/models"
)

var now = time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)

func TestScoreHeadline(t *testing.T) {
	tests := []struct {
		name     string
		headline string
		sign     int
	}{
		{"bullish", "Apple shares rally to record high on strong iPhone growth", 1},
		{"bearish", "Stocks plunge as fraud investigation widens", -1},
		{"neutral", "Company opens new office in Austin", 0},
		{"mixed", "Profit beats estimates but layoffs loom", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, conf := ScoreHeadline(tt.headline)
			if score < -1 || score > 1 {
				t.Fatalf("score %v out of range", score)
			}
			switch tt.sign {
			case 1:
				if score <= 0 {
					t.Errorf("expected positive score, got %.4f", score)
				}
			case -1:
				if score >= 0 {
					t.Errorf("expected negative score, got %.4f", score)
				}
			}
			if tt.name == "neutral" && (score != 0 || conf != 0.1) {
				t.Errorf("neutral headline = %v @ %v, want 0 @ 0.1", score, conf)
			}
		})
	}
}

func TestScoreHeadlineConfidenceCap(t *testing.T) {
	_, conf := ScoreHeadline("bullish rally surge soar upbeat positive growth upgrade outperform")
	if conf != 0.85 {
		t.Errorf("confidence = %v, want cap 0.85", conf)
	}
}

func TestScoreArticleIncludesSummary(t *testing.T) {
	a := models.NewsArticle{Title: "Apple reports quarter", Summary: "Revenue beats and shares surge", URL: "u"}
	s := ScoreArticle(a)
	if s.Score <= 0 {
		t.Errorf("summary words should count, got %v", s.Score)
	}
	if s.Headline != "Apple reports quarter" || s.URL != "u" {
		t.Errorf("score = %+v", s)
	}
}

func TestSummarizeTimeDecay(t *testing.T) {
	articles := []models.NewsArticle{
		{Title: "Shares plunge", PublishedAt: now.Add(-48 * time.Hour)},
		{Title: "Shares surge", PublishedAt: now},
	}
	sum := Summarize("AAPL", articles, now)

	// equal confidence, the older one decays to a quarter: (1 - 0.25) / 1.25
	if math.Abs(sum.Score-0.6) > 1e-9 {
		t.Errorf("Score = %v, want 0.6", sum.Score)
	}
	if sum.Label != "Bullish" || sum.Articles != 2 {
		t.Errorf("label=%q articles=%d", sum.Label, sum.Articles)
	}
	if sum.Scores[0].Headline != "Shares surge" {
		t.Errorf("scores should be newest first, got %q", sum.Scores[0].Headline)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize("AAPL", nil, now)
	if sum.Label != "Neutral" || sum.Score != 0 || sum.Articles != 0 {
		t.Errorf("empty summary = %+v", sum)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, "Bullish"},
		{0.2, "Slightly Bullish"},
		{0, "Neutral"},
		{-0.2, "Slightly Bearish"},
		{-0.9, "Bearish"},
	}
	for _, tt := range tests {
		if got := Label(tt.score); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestSummarySignal(t *testing.T) {
	tests := []struct {
		sum  Summary
		want models.SignalType
		why  string
	}{
		{Summary{Score: 0.5, Label: "Bullish", Articles: 3}, models.SignalBuy, "Bullish tone across 3 articles"},
		{Summary{Score: -0.5, Label: "Bearish", Articles: 1}, models.SignalSell, "Bearish tone across 1 article"},
		{Summary{Score: 0.05, Label: "Neutral", Articles: 12}, models.SignalNeutral, "Neutral tone across 12 articles"},
	}
	for _, tt := range tests {
		sig := tt.sum.Signal()
		if sig.Type != tt.want || sig.Reason != tt.why || sig.Source != "News" {
			t.Errorf("Signal() = %+v, want %s %q", sig, tt.want, tt.why)
		}
	}
}
