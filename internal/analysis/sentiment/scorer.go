// Package sentiment gives news headlines a keyword-based tone score.
package sentiment

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cogiquant/cogiquant/pkg/models"
)

// HalfLife is the age at which a headline counts half as much.
const HalfLife = 24 * time.Hour

// bullish / bearish phrase weights (lowercase).
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "soar": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buy rating": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beats": 0.5,
	"tops estimates": 0.6, "raises guidance": 0.6, "expansion": 0.4,
	"profit": 0.3, "dividend hike": 0.5, "buyback": 0.4,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6, "tumble": 0.6,
	"negative": 0.4, "downgrade": 0.6, "underperform": 0.6,
	"sell rating": 0.5, "weak": 0.4, "decline": 0.5, "loss": 0.4,
	"selloff": 0.7, "sell-off": 0.7, "falls": 0.4, "correction": 0.5,
	"bankruptcy": 0.8, "fraud": 0.8, "lawsuit": 0.5, "investigation": 0.5,
	"layoffs": 0.4, "misses": 0.5, "cuts guidance": 0.6, "warning": 0.5,
}

// Score is the tone of one article.
type Score struct {
	Headline    string    `json:"headline"`
	URL         string    `json:"url,omitempty"`
	Score       float64   `json:"score"`      // -1 bearish .. +1 bullish
	Confidence  float64   `json:"confidence"` // 0..1
	PublishedAt time.Time `json:"published_at"`
}

// Summary is the time-weighted tone of a set of articles.
type Summary struct {
	Ticker     string    `json:"ticker"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	Label      string    `json:"label"`
	Articles   int       `json:"articles"`
	Scores     []Score   `json:"scores,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ScoreHeadline returns a tone in [-1, 1] and a confidence that grows with
// the number of matched phrases. Text with no matches scores 0 at 0.1.
func ScoreHeadline(text string) (score, confidence float64) {
	lower := strings.ToLower(text)

	var bull, bear float64
	matches := 0
	for word, weight := range bullishWords {
		if strings.Contains(lower, word) {
			bull += weight
			matches++
		}
	}
	for word, weight := range bearishWords {
		if strings.Contains(lower, word) {
			bear += weight
			matches++
		}
	}
	if matches == 0 {
		return 0, 0.1
	}

	score = (bull - bear) / (bull + bear)
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)
	return score, confidence
}

// ScoreArticle scores the title and summary of an article together.
func ScoreArticle(a models.NewsArticle) Score {
	text := a.Title
	if a.Summary != "" {
		text += " " + a.Summary
	}
	s, c := ScoreHeadline(text)
	return Score{
		Headline:    a.Title,
		URL:         a.URL,
		Score:       s,
		Confidence:  c,
		PublishedAt: a.PublishedAt,
	}
}

// Summarize scores every article and aggregates them as of now. Each
// article is weighted by its confidence and an exponential decay with
// HalfLife; articles dated after now count at full weight.
func Summarize(ticker string, articles []models.NewsArticle, now time.Time) Summary {
	sum := Summary{Ticker: ticker, Label: Label(0), Articles: len(articles), Timestamp: now}
	if len(articles) == 0 {
		return sum
	}

	var weighted, total, conf float64
	for _, a := range articles {
		s := ScoreArticle(a)
		sum.Scores = append(sum.Scores, s)

		age := now.Sub(s.PublishedAt)
		if age < 0 {
			age = 0
		}
		w := math.Exp2(-float64(age)/float64(HalfLife)) * s.Confidence
		weighted += s.Score * w
		total += w
		conf += s.Confidence
	}
	if total > 0 {
		sum.Score = weighted / total
	}
	sum.Confidence = conf / float64(len(articles))
	sum.Label = Label(sum.Score)

	sort.SliceStable(sum.Scores, func(i, j int) bool {
		return sum.Scores[i].PublishedAt.After(sum.Scores[j].PublishedAt)
	})
	return sum
}

// Label names a tone score.
func Label(score float64) string {
	switch {
	case score > 0.3:
		return "Bullish"
	case score > 0.1:
		return "Slightly Bullish"
	case score < -0.3:
		return "Bearish"
	case score < -0.1:
		return "Slightly Bearish"
	}
	return "Neutral"
}

// Signal converts a summary into a news signal comparable with the
// technical ones.
func (s Summary) Signal() models.Signal {
	sig := models.Signal{
		Source:     "News",
		Type:       models.SignalNeutral,
		Confidence: models.Confidence(s.Confidence),
		Reason:     s.Label + " tone across " + pluralArticles(s.Articles),
	}
	switch {
	case s.Score > 0.1:
		sig.Type = models.SignalBuy
	case s.Score < -0.1:
		sig.Type = models.SignalSell
	}
	return sig
}

func pluralArticles(n int) string {
	if n == 1 {
		return "1 article"
	}
	return strconv.Itoa(n) + " articles"
}
