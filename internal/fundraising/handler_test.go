package fundraising

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/fundraising/internal/exchangerate"
	"github.com/richxcame/fundraising/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope[T any] struct {
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Error   *common.ErrorInfo `json:"error"`
}

func setupRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(f.boxes, f.events).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func perform[T any](t *testing.T, r *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, envelope[T]) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp envelope[T]
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func TestHandler_BoxLifecycle(t *testing.T) {
	f := newFixture(defaultRates(), BoxConfig{AllowForceUnregister: true})
	r := setupRouter(f)

	w, event := perform[FundraisingEventResponse](t, r, http.MethodPost, "/api/v1/fundraising-events", `{"name":"Charity run","currency":"PLN"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "PLN", event.Data.Currency)

	w, box := perform[CollectionBoxResponse](t, r, http.MethodPost, "/api/v1/collection-boxes", "")
	require.Equal(t, http.StatusCreated, w.Code)
	boxURL := "/api/v1/collection-boxes/" + box.Data.ID.String()

	w, assigned := perform[CollectionBoxResponse](t, r, http.MethodPut, boxURL+"/assign/"+event.Data.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, assigned.Data.IsAssigned)

	w, _ = perform[CollectionBoxResponse](t, r, http.MethodPut, boxURL+"/deposit", `{"currency":"EUR","amount":100.00}`)
	require.Equal(t, http.StatusOK, w.Code)
	w, deposited := perform[CollectionBoxResponse](t, r, http.MethodPut, boxURL+"/deposit", `{"currency":"USD","amount":"50.00"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, deposited.Data.IsEmpty)

	w, emptied := perform[CollectionBoxResponse](t, r, http.MethodPut, boxURL+"/empty", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, emptied.Data.IsEmpty)

	w, report := perform[[]FinancialReportEntry](t, r, http.MethodGet, "/api/v1/fundraising-events/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, report.Data, 1)
	assertDecimal(t, "671.07", report.Data[0].Amount)
	assert.Equal(t, "PLN", report.Data[0].Currency)

	w, list := perform[[]map[string]any](t, r, http.MethodGet, "/api/v1/collection-boxes", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, list.Data, 1)
	assert.ElementsMatch(t, []string{"id", "is_empty", "is_assigned"}, keys(list.Data[0]))

	w, _ = perform[any](t, r, http.MethodDelete, boxURL, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, missing := perform[any](t, r, http.MethodGet, boxURL, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, missing.Success)
}

func TestHandler_ErrorStatuses(t *testing.T) {
	f := newFixture(defaultRates(), BoxConfig{})
	r := setupRouter(f)
	boxID := f.register(t)
	fullID := f.register(t)
	f.deposit(t, fullID, "EUR", "1")
	eventID := f.event(t, "EUR")
	otherEvent := f.event(t, "USD")
	assignedID := f.register(t)
	f.assign(t, assignedID, eventID)

	boxes := "/api/v1/collection-boxes/"
	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		status  int
		message string
	}{
		{"invalid box id", http.MethodGet, boxes + "not-a-uuid", "", http.StatusBadRequest, "invalid collection box id"},
		{"invalid event id", http.MethodPut, boxes + boxID.String() + "/assign/nope", "", http.StatusBadRequest, "invalid fundraising event id"},
		{"unknown event", http.MethodGet, "/api/v1/fundraising-events/" + uuid.NewString(), "", http.StatusNotFound, ""},
		{"zero amount", http.MethodPut, boxes + boxID.String() + "/deposit", `{"currency":"EUR","amount":0}`, http.StatusBadRequest, ErrInvalidAmount.Error()},
		{"missing amount", http.MethodPut, boxes + boxID.String() + "/deposit", `{"currency":"EUR"}`, http.StatusBadRequest, ErrInvalidAmount.Error()},
		{"unsupported currency", http.MethodPut, boxes + boxID.String() + "/deposit", `{"currency":"XXX","amount":1}`, http.StatusBadRequest, `unsupported currency: "XXX"`},
		{"malformed currency", http.MethodPut, boxes + boxID.String() + "/deposit", `{"currency":"usd","amount":1}`, http.StatusBadRequest, "validation failed"},
		{"malformed body", http.MethodPut, boxes + boxID.String() + "/deposit", `{"currency":`, http.StatusBadRequest, "invalid request body"},
		{"blank event name", http.MethodPost, "/api/v1/fundraising-events", `{"name":"  ","currency":"EUR"}`, http.StatusBadRequest, "validation failed"},
		{"assign non-empty", http.MethodPut, boxes + fullID.String() + "/assign/" + eventID.String(), "", http.StatusConflict, ErrBoxNotEmpty.Error()},
		{"assign elsewhere", http.MethodPut, boxes + assignedID.String() + "/assign/" + otherEvent.String(), "", http.StatusConflict, ErrAlreadyAssigned.Error()},
		{"empty unassigned", http.MethodPut, boxes + fullID.String() + "/empty", "", http.StatusConflict, ErrNotAssigned.Error()},
		{"unregister refused", http.MethodDelete, boxes + fullID.String(), "", http.StatusConflict, ErrUnregisterRefused.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := perform[any](t, r, tt.method, tt.target, tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.status, resp.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error.Message)
			}
		})
	}
}

func TestHandler_InternalErrorsAreMasked(t *testing.T) {
	f := newFixture(defaultRates(), BoxConfig{})
	r := setupRouter(f)
	boxID := f.register(t)
	f.assign(t, boxID, f.event(t, "EUR"))
	f.deposit(t, boxID, "EUR", "3")
	f.repo.saveEventErr = assert.AnError

	w, resp := perform[any](t, r, http.MethodPut, "/api/v1/collection-boxes/"+boxID.String()+"/empty", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), resp.Error.Message)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestHandler_RateUnavailable(t *testing.T) {
	f := newFixture(defaultRates(), BoxConfig{})
	r := setupRouter(&fixture{
		repo:   f.repo,
		boxes:  f.boxes,
		events: NewEventService(f.repo, NewLivePolicy(stubRates{err: exchangerate.ErrRateUnavailable})),
	})

	w, resp := perform[any](t, r, http.MethodPost, "/api/v1/fundraising-events", `{"name":"Run","currency":"EUR"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "exchange rates are temporarily unavailable", resp.Error.Message)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
