package connectors

// REST client for the Yahoo Finance quote API.
// RESTY ONLY + INTERNAL RETRY

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultRetryAttempts   = 4
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 4 * time.Second
	quoteEndpoint          = "/v7/finance/quote"
	requestTimeout         = 10 * time.Second
)

// StockQuote is the subset of the Yahoo quote payload the service exposes.
type StockQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previousClose"`
	Open          float64 `json:"open"`
	DayHigh       float64 `json:"dayHigh"`
	DayLow        float64 `json:"dayLow"`
	Volume        int64   `json:"volume"`
	Currency      string  `json:"currency"`
	MarketState   string  `json:"marketState"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			ShortName                  string  `json:"shortName"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			RegularMarketOpen          float64 `json:"regularMarketOpen"`
			RegularMarketDayHigh       float64 `json:"regularMarketDayHigh"`
			RegularMarketDayLow        float64 `json:"regularMarketDayLow"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
			Currency                   string  `json:"currency"`
			MarketState                string  `json:"marketState"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteResponse"`
}

// YahooClient fetches live quotes. Responses are cached for a short TTL and
// outgoing requests are rate limited, so a large open-position fan-out does
// not hammer the provider.
type YahooClient struct {
	http    *resty.Client
	suffix  string
	cache   *gocache.Cache
	limiter *rate.Limiter
}

// NewYahooClient builds a quote client from the connector config.
func NewYahooClient(cfg Config) *YahooClient {
	baseURL := strings.TrimRight(cfg.QuoteBaseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &YahooClient{
		http:    httpClient,
		suffix:  cfg.QuoteSuffix,
		cache:   gocache.New(cfg.QuoteCacheTTL, 2*cfg.QuoteCacheTTL),
		limiter: rate.NewLimiter(rate.Limit(cfg.QuoteRateLimit), cfg.QuoteRateBurst),
	}
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return r.StatusCode() == 429 || r.StatusCode() >= 500
}

// Quote fetches the full quote for a raw instrument name. The configured
// exchange suffix is appended before querying unless the symbol already
// carries one.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (*StockQuote, error) {

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}

	if cached, ok := c.cache.Get(symbol); ok {
		quote := cached.(StockQuote)
		return &quote, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	yahooSymbol := symbol
	if !strings.Contains(yahooSymbol, ".") {
		yahooSymbol += c.suffix
	}

	var out yahooQuoteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbols", yahooSymbol).
		SetResult(&out).
		Get(quoteEndpoint)

	if err != nil {
		return nil, fmt.Errorf("quote request failed for %s: %w", yahooSymbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote request for %s returned status %d", yahooSymbol, resp.StatusCode())
	}
	if len(out.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no data found for stock symbol %s", symbol)
	}

	r := out.QuoteResponse.Result[0]
	quote := StockQuote{
		Symbol:        r.Symbol,
		Name:          r.ShortName,
		Price:         r.RegularMarketPrice,
		PreviousClose: r.RegularMarketPreviousClose,
		Open:          r.RegularMarketOpen,
		DayHigh:       r.RegularMarketDayHigh,
		DayLow:        r.RegularMarketDayLow,
		Volume:        r.RegularMarketVolume,
		Currency:      r.Currency,
		MarketState:   r.MarketState,
	}

	c.cache.Set(symbol, quote, gocache.DefaultExpiration)

	logger.WithFields(map[string]interface{}{
		"symbol": yahooSymbol,
		"price":  quote.Price,
	}).Debug("Quote fetched")

	return &quote, nil
}

// LastTradedPrice satisfies pnl.QuoteProvider.
func (c *YahooClient) LastTradedPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := c.Quote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return quote.Price, nil
}
