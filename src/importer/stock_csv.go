// Package importer ingests stock lists from CSV files into the stocks
// table, enriching each row with a live quote where one is available.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/psychoder05/chartworm-backend/src/connectors"
	"github.com/psychoder05/chartworm-backend/src/model"
)

// QuoteSource supplies full quotes for imported symbols.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (*connectors.StockQuote, error)
}

type stockCreator interface {
	CreateBatch(ctx context.Context, stocks []model.Stock) error
}

// StockImporter parses a CSV of instrument symbols and inserts one stock
// snapshot per row.
type StockImporter struct {
	stocks stockCreator
	quotes QuoteSource
}

// NewStockImporter builds an importer over the given store and quote
// source.
func NewStockImporter(stocks stockCreator, quotes QuoteSource) *StockImporter {
	return &StockImporter{stocks: stocks, quotes: quotes}
}

// ImportCSV reads rows from r and inserts them as stocks, returning the
// number of rows inserted. Expected columns (header names are matched
// after trimming, lowercasing and stripping spaces): "symbol" and
// "name of company". A failed quote lookup degrades that row to zero
// market fields instead of aborting the import.
func (i *StockImporter) ImportCSV(ctx context.Context, r io.Reader) (int, error) {

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("error parsing CSV file: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[cleanHeader(name)] = idx
	}

	symbolIdx, ok := columns["symbol"]
	if !ok {
		return 0, fmt.Errorf("CSV is missing a symbol column")
	}
	nameIdx, hasName := columns["nameofcompany"]

	var stocks []model.Stock

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("error parsing CSV file: %w", err)
		}

		symbol := strings.ToUpper(strings.TrimSpace(record[symbolIdx]))
		if symbol == "" {
			continue
		}

		stock := model.Stock{Symbol: symbol}
		if hasName && nameIdx < len(record) {
			stock.NameOfCompany = strings.TrimSpace(record[nameIdx])
		}

		if quote, err := i.quotes.Quote(ctx, symbol); err != nil {
			logger.WithField("symbol", symbol).WithError(err).
				Warn("Quote lookup failed during import, inserting without market data")
		} else {
			stock.Price = quote.Price
			stock.PreviousClose = quote.PreviousClose
			stock.Open = quote.Open
			stock.DayHigh = quote.DayHigh
			stock.DayLow = quote.DayLow
			stock.Volume = quote.Volume
			stock.Currency = quote.Currency
			stock.MarketState = quote.MarketState
			if stock.NameOfCompany == "" {
				stock.NameOfCompany = quote.Name
			}
		}

		stocks = append(stocks, stock)
	}

	if err := i.stocks.CreateBatch(ctx, stocks); err != nil {
		return 0, fmt.Errorf("error inserting data: %w", err)
	}

	logger.WithField("rows", len(stocks)).Info("CSV import completed")

	return len(stocks), nil
}

func cleanHeader(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "")
}
