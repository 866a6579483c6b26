// Package pnl turns trade records into profit-and-loss reports: realized
// PnL from the immutable sold-trade snapshots, unrealized PnL from open
// positions valued at live market quotes.
package pnl

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/psychoder05/chartworm-backend/src/model"
	"github.com/psychoder05/chartworm-backend/src/repository"
	"github.com/psychoder05/chartworm-backend/src/trading"
)

// QuoteProvider supplies the last traded price for an instrument symbol.
type QuoteProvider interface {
	LastTradedPrice(ctx context.Context, symbol string) (float64, error)
}

const (
	defaultMaxConcurrentQuotes = 8
	defaultQuoteTimeout        = 5 * time.Second
)

// Reporter aggregates sold trades into realized PnL and joins open trades
// with live quotes for unrealized PnL. Quote fan-out is bounded and each
// quote carries its own timeout so one slow symbol cannot stall a report.
type Reporter struct {
	trades *repository.TradeRepository
	sold   *repository.SoldTradeRepository
	quotes QuoteProvider

	maxConcurrentQuotes int
	quoteTimeout        time.Duration
}

// NewReporter builds a reporter over the given database handle and quote
// provider.
func NewReporter(db *gorm.DB, quotes QuoteProvider) *Reporter {
	return &Reporter{
		trades:              repository.NewTradeRepository().WithDB(db),
		sold:                repository.NewSoldTradeRepository().WithDB(db),
		quotes:              quotes,
		maxConcurrentQuotes: defaultMaxConcurrentQuotes,
		quoteTimeout:        defaultQuoteTimeout,
	}
}

// WithQuoteLimits overrides the fan-out bound and per-quote timeout.
func (r *Reporter) WithQuoteLimits(maxConcurrent int, timeout time.Duration) *Reporter {
	if maxConcurrent > 0 {
		r.maxConcurrentQuotes = maxConcurrent
	}
	if timeout > 0 {
		r.quoteTimeout = timeout
	}
	return r
}

// RealizedTransaction is one row of the realized PnL statement. Money
// fields are pre-formatted strings: two decimal places, with an explicit
// "+" prefix on non-negative gain values.
type RealizedTransaction struct {
	TradeID          uint       `json:"tradeId"`
	ScripName        string     `json:"scripName"`
	BuyDate          *time.Time `json:"buyDate"`
	BuyPrice         float64    `json:"buyPrice"`
	SellDate         *time.Time `json:"sellDate"`
	SellPrice        float64    `json:"sellPrice"`
	Quantity         float64    `json:"quantity"`
	InvestedAmount   string     `json:"investedAmount"`
	RealisedGainLoss string     `json:"realisedGainLoss"`
	GainLossPercent  string     `json:"gainLossPercent"`
}

// RealizedStatement is the full realized PnL report.
type RealizedStatement struct {
	Transactions []RealizedTransaction `json:"transactions"`
	TotalRows    int                   `json:"totalRows"`
	LastUpdated  time.Time             `json:"lastUpdated"`
}

// LivePosition is one open position valued at the latest market quote.
type LivePosition struct {
	TradeID            uint       `json:"tradeId"`
	ScripName          string     `json:"scripName"`
	BuyDate            *time.Time `json:"buyDate"`
	BuyPrice           float64    `json:"buyPrice"`
	Quantity           float64    `json:"quantity"`
	InvestedAmount     string     `json:"investedAmount"`
	LTP                string     `json:"ltp"`
	UnrealisedGainLoss string     `json:"unrealisedGainLoss"`
	GainLossPercent    string     `json:"gainLossPercent"`
	StopLoss           float64    `json:"stopLoss"`
}

// RealizedStatement computes realized PnL from the sold-trade records. Each
// record carries its own buy snapshot taken at sell time, so no live join
// against the trades table is done. The originating trade may have been
// further sold or deleted since.
func (r *Reporter) RealizedStatement(ctx context.Context) (*RealizedStatement, error) {

	soldTrades, err := r.sold.FindAll(ctx)
	if err != nil {
		return nil, &trading.PersistenceError{Op: "realized_statement", Err: err}
	}

	transactions := make([]RealizedTransaction, 0, len(soldTrades))

	for _, sold := range soldTrades {
		qty := decimal.NewFromFloat(sold.Quantity)
		buyPrice := decimal.NewFromFloat(sold.BuyPrice)
		sellPrice := decimal.NewFromFloat(sold.SellPrice)

		invested := buyPrice.Mul(qty)
		gain := sellPrice.Sub(buyPrice).Mul(qty)

		percent := decimal.Zero
		if !invested.IsZero() {
			percent = gain.Div(invested).Mul(decimal.NewFromInt(100))
		}

		transactions = append(transactions, RealizedTransaction{
			TradeID:          sold.OriginalTradeID,
			ScripName:        sold.StockName,
			BuyDate:          sold.BuyDate,
			BuyPrice:         sold.BuyPrice,
			SellDate:         sold.SellDate,
			SellPrice:        sold.SellPrice,
			Quantity:         sold.Quantity,
			InvestedAmount:   invested.StringFixed(2),
			RealisedGainLoss: signedFixed(gain),
			GainLossPercent:  signedFixed(percent) + "%",
		})
	}

	return &RealizedStatement{
		Transactions: transactions,
		TotalRows:    len(transactions),
		LastUpdated:  time.Now().UTC(),
	}, nil
}

// LivePositions values every open trade at its latest traded price. Quote
// failures degrade individually: the failing position is reported with an
// LTP of zero and the rest of the batch is unaffected.
func (r *Reporter) LivePositions(ctx context.Context) ([]LivePosition, error) {

	openTrades, err := r.trades.FindOpen(ctx)
	if err != nil {
		return nil, &trading.PersistenceError{Op: "live_positions", Err: err}
	}

	prices := r.fetchQuotes(ctx, openTrades)

	positions := make([]LivePosition, 0, len(openTrades))
	for i, trade := range openTrades {
		positions = append(positions, r.valuePosition(&trade, prices[i]))
	}

	logger.WithFields(map[string]interface{}{
		"open_positions": len(positions),
	}).Debug("Live positions computed")

	return positions, nil
}

// fetchQuotes fans out one quote request per open trade, bounded by
// maxConcurrentQuotes, and returns prices indexed like trades. A failed
// quote leaves 0 in its slot.
func (r *Reporter) fetchQuotes(ctx context.Context, trades []model.Trade) []float64 {

	prices := make([]float64, len(trades))

	sem := make(chan struct{}, r.maxConcurrentQuotes)
	var wg sync.WaitGroup

	for i := range trades {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			symbol := strings.ToUpper(trades[i].StockName)

			quoteCtx, cancel := context.WithTimeout(ctx, r.quoteTimeout)
			defer cancel()

			ltp, err := r.quotes.LastTradedPrice(quoteCtx, symbol)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"symbol":   symbol,
					"trade_id": trades[i].ID,
				}).WithError(&trading.ProviderError{Symbol: symbol, Err: err}).
					Warn("Failed to fetch quote, reporting LTP 0")
				return
			}
			prices[i] = ltp
		}(i)
	}

	wg.Wait()
	return prices
}

func (r *Reporter) valuePosition(trade *model.Trade, ltp float64) LivePosition {

	qty := decimal.NewFromFloat(trade.Quantity)
	buyPrice := decimal.NewFromFloat(trade.BuyPrice)
	ltpDec := decimal.NewFromFloat(ltp)

	invested := buyPrice.Mul(qty)
	gain := ltpDec.Sub(buyPrice).Mul(qty)

	percent := decimal.Zero
	if !invested.IsZero() {
		percent = gain.Div(invested).Mul(decimal.NewFromInt(100))
	}

	return LivePosition{
		TradeID:            trade.ID,
		ScripName:          strings.ToUpper(trade.StockName),
		BuyDate:            trade.BuyDate,
		BuyPrice:           trade.BuyPrice,
		Quantity:           trade.Quantity,
		InvestedAmount:     invested.StringFixed(2),
		LTP:                ltpDec.StringFixed(2),
		UnrealisedGainLoss: signedFixed(gain),
		GainLossPercent:    signedFixed(percent) + "%",
		StopLoss:           trade.StopLoss,
	}
}

// signedFixed renders d with two decimal places and an explicit "+" prefix
// for non-negative values.
func signedFixed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Sign() >= 0 {
		return "+" + s
	}
	return s
}
