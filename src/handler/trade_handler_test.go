package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psychoder05/chartworm-backend/src/model"
	"github.com/psychoder05/chartworm-backend/src/pnl"
	"github.com/psychoder05/chartworm-backend/src/position"
	"github.com/psychoder05/chartworm-backend/src/trading"
)

type mockEngine struct {
	openTrade   *model.Trade
	closeResult *position.CloseResult
	err         error

	openInput  position.OpenTradeInput
	closeInput position.ClosePositionInput
	calledOpen int
}

func (m *mockEngine) OpenTrade(ctx context.Context, in position.OpenTradeInput) (*model.Trade, error) {
	m.calledOpen++
	m.openInput = in
	if m.err != nil {
		return nil, m.err
	}
	return m.openTrade, nil
}

func (m *mockEngine) ClosePosition(ctx context.Context, in position.ClosePositionInput) (*position.CloseResult, error) {
	m.closeInput = in
	if m.err != nil {
		return nil, m.err
	}
	return m.closeResult, nil
}

type mockReporter struct {
	statement *pnl.RealizedStatement
	positions []pnl.LivePosition
	err       error
}

func (m *mockReporter) RealizedStatement(ctx context.Context) (*pnl.RealizedStatement, error) {
	return m.statement, m.err
}

func (m *mockReporter) LivePositions(ctx context.Context) ([]pnl.LivePosition, error) {
	return m.positions, m.err
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func TestAddTradeHandlerSuccess(t *testing.T) {
	engine := &mockEngine{openTrade: &model.Trade{ID: 1, StockName: "INFY", Quantity: 10}}
	handler := AddTradeHandler(engine)

	body := `{"stockName":"INFY","buyDate":"2025-03-10T00:00:00Z","buyPrice":100,"quantity":10,"stopLoss":90}`
	req := httptest.NewRequest(http.MethodPost, "/api/addTrade", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	assert.Equal(t, "Trade added successfully!", env.Message)
	assert.Equal(t, 1, engine.calledOpen)
	require.NotNil(t, engine.openInput.Quantity)
	assert.Equal(t, 10.0, engine.openInput.Quantity.Float64())
}

func TestAddTradeHandlerQuantityArrayForm(t *testing.T) {
	engine := &mockEngine{openTrade: &model.Trade{ID: 1}}
	handler := AddTradeHandler(engine)

	// Older clients send quantity as a single-element array.
	body := `{"stockName":"INFY","buyDate":"2025-03-10T00:00:00Z","buyPrice":100,"quantity":[10]}`
	req := httptest.NewRequest(http.MethodPost, "/api/addTrade", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, engine.openInput.Quantity)
	assert.Equal(t, 10.0, engine.openInput.Quantity.Float64())
}

func TestAddTradeHandlerValidationError(t *testing.T) {
	engine := &mockEngine{err: trading.NewValidationError("Missing or invalid required fields.")}
	handler := AddTradeHandler(engine)

	req := httptest.NewRequest(http.MethodPost, "/api/addTrade", strings.NewReader(`{"stockName":"INFY"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.False(t, env.Success)
	assert.Equal(t, "Missing or invalid required fields.", env.Message)
}

func TestAddTradeHandlerBadPayload(t *testing.T) {
	handler := AddTradeHandler(&mockEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/addTrade", strings.NewReader(`{not json`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClosePositionHandlerSuccess(t *testing.T) {
	engine := &mockEngine{closeResult: &position.CloseResult{
		UpdatedTrade: &model.Trade{ID: 1, Quantity: 6, ExitType: model.ExitPartial},
		SoldTrade:    &model.SoldTrade{ID: 1, Quantity: 4, OriginalTradeID: 1},
	}}
	handler := ClosePositionHandler(engine, nil)

	body := `{"tradeId":1,"quantity":4,"sellDate":"2025-04-01T00:00:00Z","sellPrice":120}`
	req := httptest.NewRequest(http.MethodPost, "/api/updateClosePosition", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	assert.Equal(t, "Trade updated and sold trade recorded successfully", env.Message)
	assert.Equal(t, uint(1), engine.closeInput.TradeID)
}

func TestClosePositionHandlerOversell(t *testing.T) {
	engine := &mockEngine{err: trading.NewValidationError("Sell quantity exceeds available quantity.")}
	handler := ClosePositionHandler(engine, nil)

	body := `{"tradeId":1,"quantity":99,"sellPrice":120}`
	req := httptest.NewRequest(http.MethodPost, "/api/updateClosePosition", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Sell quantity exceeds available quantity.", env.Message)
}

func TestClosePositionHandlerNotFound(t *testing.T) {
	engine := &mockEngine{err: &trading.NotFoundError{Resource: "trade", ID: 9}}
	handler := ClosePositionHandler(engine, nil)

	body := `{"tradeId":9,"quantity":1,"sellPrice":120}`
	req := httptest.NewRequest(http.MethodPost, "/api/updateClosePosition", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Trade not found.", env.Message)
}

func TestPnlStatementHandler(t *testing.T) {
	reporter := &mockReporter{statement: &pnl.RealizedStatement{
		Transactions: []pnl.RealizedTransaction{{TradeID: 1, RealisedGainLoss: "+80.00"}},
		TotalRows:    1,
	}}
	handler := PnlStatementHandler(reporter)

	req := httptest.NewRequest(http.MethodGet, "/api/getPnlStatement", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["totalRows"])
}

func TestLivePositionsHandlerError(t *testing.T) {
	reporter := &mockReporter{err: &trading.PersistenceError{Op: "live_positions", Err: assert.AnError}}
	handler := LivePositionsHandler(reporter)

	req := httptest.NewRequest(http.MethodGet, "/api/getLiveOpenPositions", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
