package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*YahooClient, *httptest.Server, *int64) {
	t.Helper()

	var hits int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	client := NewYahooClient(Config{
		QuoteBaseURL:   ts.URL,
		QuoteSuffix:    ".NS",
		QuoteCacheTTL:  time.Minute,
		QuoteRateLimit: 100,
		QuoteRateBurst: 100,
	})
	return client, ts, &hits
}

func quotePayload(symbol string) string {
	return `{"quoteResponse":{"result":[{` +
		`"symbol":"` + symbol + `","shortName":"Infosys Limited",` +
		`"regularMarketPrice":` + "1460.75" + `,` +
		`"regularMarketPreviousClose":1458.2,"regularMarketOpen":1465,` +
		`"regularMarketDayHigh":1472,"regularMarketDayLow":1451.5,` +
		`"regularMarketVolume":5218650,"currency":"INR","marketState":"REGULAR"}],"error":null}}`
}

func TestQuoteAppliesSuffixAndMapsFields(t *testing.T) {
	var requested string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Query().Get("symbols")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quotePayload("INFY.NS")))
	})

	quote, err := client.Quote(context.Background(), "infy")
	require.NoError(t, err)

	assert.Equal(t, "INFY.NS", requested)
	assert.Equal(t, "INFY.NS", quote.Symbol)
	assert.Equal(t, "Infosys Limited", quote.Name)
	assert.Equal(t, 1460.75, quote.Price)
	assert.Equal(t, 1458.2, quote.PreviousClose)
	assert.Equal(t, int64(5218650), quote.Volume)
	assert.Equal(t, "INR", quote.Currency)
	assert.Equal(t, "REGULAR", quote.MarketState)
}

func TestQuoteKeepsExistingSuffix(t *testing.T) {
	var requested string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Query().Get("symbols")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quotePayload("TXT.WA")))
	})

	_, err := client.Quote(context.Background(), "TXT.WA")
	require.NoError(t, err)
	assert.Equal(t, "TXT.WA", requested)
}

func TestQuoteCachesResponses(t *testing.T) {
	client, _, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quotePayload("INFY.NS")))
	})

	_, err := client.Quote(context.Background(), "INFY")
	require.NoError(t, err)
	_, err = client.Quote(context.Background(), "INFY")
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(hits))
}

func TestQuoteEmptyResult(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
	})

	_, err := client.Quote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data found")
}

func TestQuoteEmptySymbol(t *testing.T) {
	client, _, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Quote(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, int64(0), atomic.LoadInt64(hits))
}

func TestLastTradedPrice(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quotePayload("INFY.NS")))
	})

	ltp, err := client.LastTradedPrice(context.Background(), "INFY")
	require.NoError(t, err)
	assert.Equal(t, 1460.75, ltp)
}
