package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psychoder05/chartworm-backend/src/connectors"
	"github.com/psychoder05/chartworm-backend/src/model"
)

type fakeQuoteSource struct {
	quotes map[string]*connectors.StockQuote
	errs   map[string]error
}

func (f *fakeQuoteSource) Quote(ctx context.Context, symbol string) (*connectors.StockQuote, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, errors.New("unknown symbol")
}

type fakeStockStore struct {
	inserted []model.Stock
	err      error
}

func (f *fakeStockStore) CreateBatch(ctx context.Context, stocks []model.Stock) error {
	f.inserted = stocks
	return f.err
}

func TestImportCSVMapsAndEnrichesRows(t *testing.T) {
	store := &fakeStockStore{}
	quotes := &fakeQuoteSource{quotes: map[string]*connectors.StockQuote{
		"INFY": {Name: "Infosys Limited", Price: 1426.2, PreviousClose: 1430.6,
			Open: 1429.9, DayHigh: 1440.7, DayLow: 1417.3, Volume: 8026620,
			Currency: "INR", MarketState: "POSTPOST"},
	}}
	imp := NewStockImporter(store, quotes)

	// Header names arrive messy; they are matched after cleaning.
	csv := " Symbol , Name Of Company \ninfy,Infosys\n"
	rows, err := imp.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	require.Len(t, store.inserted, 1)
	stock := store.inserted[0]
	assert.Equal(t, "INFY", stock.Symbol)
	assert.Equal(t, "Infosys", stock.NameOfCompany)
	assert.Equal(t, 1426.2, stock.Price)
	assert.Equal(t, int64(8026620), stock.Volume)
	assert.Equal(t, "INR", stock.Currency)
}

func TestImportCSVDegradesOnQuoteFailure(t *testing.T) {
	store := &fakeStockStore{}
	quotes := &fakeQuoteSource{errs: map[string]error{"TCS": errors.New("rate limited")}}
	imp := NewStockImporter(store, quotes)

	rows, err := imp.ImportCSV(context.Background(), strings.NewReader("symbol\nTCS\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, "TCS", store.inserted[0].Symbol)
	assert.Zero(t, store.inserted[0].Price)
}

func TestImportCSVSkipsBlankSymbols(t *testing.T) {
	store := &fakeStockStore{}
	imp := NewStockImporter(store, &fakeQuoteSource{})

	rows, err := imp.ImportCSV(context.Background(), strings.NewReader("symbol\n\" \"\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
	assert.Empty(t, store.inserted)
}

func TestImportCSVMissingSymbolColumn(t *testing.T) {
	imp := NewStockImporter(&fakeStockStore{}, &fakeQuoteSource{})

	_, err := imp.ImportCSV(context.Background(), strings.NewReader("name\nInfosys\n"))
	assert.Error(t, err)
}

func TestCleanHeader(t *testing.T) {
	assert.Equal(t, "nameofcompany", cleanHeader(" Name Of Company "))
	assert.Equal(t, "symbol", cleanHeader("SYMBOL"))
}
