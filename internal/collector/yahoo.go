package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"NoteValuator/internal/model"

	log "github.com/sirupsen/logrus"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"TXLV":   "^TXLV",
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Price arrays hold null on days without a print.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchHistory returns daily adjusted closes (plain closes when Yahoo has no
// adjusted series) within the window.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, from, to time.Time) (History, error) {
	params := url.Values{
		"interval": {"1d"},
		"events":   {"history"},
	}
	if from.IsZero() && to.IsZero() {
		params.Set("range", "1y")
	} else {
		end := time.Now()
		if !to.IsZero() {
			// period2 is exclusive
			end = truncateDay(to).AddDate(0, 0, 1)
		}
		var start int64
		if !from.IsZero() {
			start = truncateDay(from).Unix()
		}
		params.Set("period1", strconv.FormatInt(start, 10))
		params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	}
	base := f.BaseURL
	if base == "" {
		base = yahooBaseURL
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", base, url.PathEscape(f.yahooSymbol(symbol)), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return History{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return History{}, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return History{}, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return History{}, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return History{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return History{}, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return History{}, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 && len(result.Indicators.Quote[0].Close) == len(result.Timestamp) {
		closes = result.Indicators.Quote[0].Close
	} else {
		return History{}, fmt.Errorf("yahoo: price series does not match %d timestamps", len(result.Timestamp))
	}

	points := make([]model.PricePoint, 0, len(result.Timestamp))
	var nulls int
	for i, ts := range result.Timestamp {
		t := time.Unix(ts, 0).UTC()
		if !inWindow(t, from, to) {
			continue
		}
		if closes[i] == nil {
			nulls++
			continue
		}
		points = append(points, model.PricePoint{Time: t, Price: *closes[i]})
	}
	if nulls > 0 {
		log.WithFields(log.Fields{"symbol": symbol, "nulls": nulls}).Warn("yahoo returned days without a close, excluded")
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return History{Points: points, Excluded: nulls}, nil
}
