package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/dto"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/reference"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/worklist"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/repository"
	apphttp "github.com/jhidalgob2/alpayana-maquetado-ui5/internal/interfaces/http"
	pkgjwt "github.com/jhidalgob2/alpayana-maquetado-ui5/pkg/jwt"
)

// ── fake del backend ──────────────────────────────────────────────────────────

type backend struct {
	mu       sync.Mutex
	lines    []lifecycle.RawRecord
	batches  []entity.BatchRequest
	failWith error
}

func (b *backend) ListMaterialGroups(context.Context) ([]entity.ReferenceItem, error) {
	return []entity.ReferenceItem{{Key: "ZN", Text: "Zinc"}}, nil
}
func (b *backend) ListSellingPlants(context.Context) ([]entity.ReferenceItem, error) {
	return []entity.ReferenceItem{{Key: "P100", Text: "Unidad Minera"}}, nil
}
func (b *backend) ListBuyingPlants(context.Context) ([]entity.ReferenceItem, error) {
	return []entity.ReferenceItem{{Key: "P200", Text: "Comercial"}}, nil
}
func (b *backend) ListRegistrationStatuses(context.Context) ([]entity.ReferenceItem, error) {
	return nil, nil
}
func (b *backend) ListActionStatuses(context.Context, string) ([]entity.ActionStatus, error) {
	return nil, nil
}
func (b *backend) QueryLines(context.Context, repository.DocumentQuery) ([]lifecycle.RawRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]lifecycle.RawRecord(nil), b.lines...), nil
}

// SubmitBatch factura cada línea con un número correlativo.
func (b *backend) SubmitBatch(_ context.Context, req entity.BatchRequest) (*entity.BatchResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches = append(b.batches, req)
	if b.failWith != nil {
		return nil, b.failWith
	}
	resp := &entity.BatchResponse{}
	for i, l := range req.Lines {
		inv := "F001-" + string(rune('1'+i))
		resp.Lines = append(resp.Lines, entity.ResponseLine{CorrelationID: l.CorrelationID, InvoiceNumber: &inv})
		resp.Messages = append(resp.Messages, entity.BatchMessage{LineID: l.CorrelationID, Type: "S", Text: "Factura " + inv + " creada"})
	}
	return resp, nil
}

func line(pos string, mutate func(*lifecycle.RawRecord)) lifecycle.RawRecord {
	r := lifecycle.RawRecord{
		OrderID:        "4500000001",
		LineNo:         pos,
		Material:       "ZN-CONC",
		Description:    "Concentrado de zinc",
		QtyShipped:     "10",
		QtyReceived:    "10",
		AmountShipped:  "1500",
		AmountReceived: "1500",
		DeliveryDate:   "2025-07-10",
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

// ── helpers ───────────────────────────────────────────────────────────────────

type api struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T, b *backend) *api {
	t.Helper()
	refs := reference.NewService(b, "", zerolog.Nop())
	wl := worklist.NewService(b, nil, refs, worklist.Options{ConfirmationTTL: time.Minute}, zerolog.Nop())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Worklist: wl, References: refs, JWTSecret: testJWTSecret})
	return &api{t: t, app: app}
}

func (a *api) do(method, path, role string, body any) (int, []byte) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(a.t, role))
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (a *api) openAndQuery() string {
	a.t.Helper()
	status, raw := a.do(http.MethodPost, "/api/views", "operador", nil)
	require.Equal(a.t, http.StatusCreated, status)
	id := decode[dto.ViewResponse](a.t, raw).ID

	status, raw = a.do(http.MethodPost, "/api/views/"+id+"/query", "operador", dto.QueryRequest{
		SellingPlant: "P100", BuyingPlant: "P200", MaterialGroup: "ZN",
		DateFrom: "2025-07-01", DateTo: "2025-07-31",
	})
	require.Equal(a.t, http.StatusOK, status, string(raw))
	return id
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestWorklist_FlujoFacturacion(t *testing.T) {
	b := &backend{lines: []lifecycle.RawRecord{line("10", nil), line("20", nil)}}
	a := newAPI(t, b)
	id := a.openAndQuery()

	status, raw := a.do(http.MethodGet, "/api/views/"+id+"/rows", "consulta", nil)
	require.Equal(t, http.StatusOK, status)
	rows := decode[dto.RowListResponse](t, raw)
	require.Equal(t, 2, rows.Total)

	status, raw = a.do(http.MethodPut, "/api/views/"+id+"/selection", "operador",
		dto.SelectionRequest{Keys: []string{"4500000001/20", "4500000001/10"}})
	require.Equal(t, http.StatusOK, status, string(raw))
	view := decode[dto.ViewResponse](t, raw)
	assert.Equal(t, 2, view.SelectedCount)
	assert.True(t, view.Actions["INVOICE"])

	status, raw = a.do(http.MethodPost, "/api/views/"+id+"/actions/INVOICE", "operador", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(raw), "PERIOD_REQUIRED")

	status, raw = a.do(http.MethodPost, "/api/views/"+id+"/actions/invoice", "operador", dto.ActionRequest{Period: "07/2025"})
	require.Equal(t, http.StatusOK, status, string(raw))
	out := decode[dto.ActionResponse](t, raw)
	assert.Equal(t, dto.ActionStatusSent, out.Status)
	assert.Equal(t, 2, out.LineCount)
	assert.Equal(t, 2, out.Updated)

	require.Len(t, b.batches, 1)
	assert.Equal(t, "07/2025", b.batches[0].Header.Period)
	assert.Equal(t, "4500000001", b.batches[0].Lines[0].OrderID)
	assert.Equal(t, "20", b.batches[0].Lines[0].LineNo, "el lote respeta el orden de selección")

	status, raw = a.do(http.MethodGet, "/api/views/"+id+"/notifications", "consulta", nil)
	require.Equal(t, http.StatusOK, status)
	notes := decode[dto.NotificationListResponse](t, raw)
	assert.NotEmpty(t, notes.Items)
}

func TestWorklist_PeriodoDesdeFechaContabilizacion(t *testing.T) {
	b := &backend{lines: []lifecycle.RawRecord{line("10", nil)}}
	a := newAPI(t, b)
	id := a.openAndQuery()
	a.do(http.MethodPut, "/api/views/"+id+"/selection", "operador", dto.SelectionRequest{Keys: []string{"4500000001/10"}})

	status, raw := a.do(http.MethodPost, "/api/views/"+id+"/actions/INVOICE", "operador", dto.ActionRequest{PostingDate: "2025-08-03"})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "08/2025", b.batches[0].Header.Period)
}

func TestWorklist_ValidacionDeConsulta(t *testing.T) {
	a := newAPI(t, &backend{})
	status, raw := a.do(http.MethodPost, "/api/views", "operador", nil)
	require.Equal(t, http.StatusCreated, status)
	id := decode[dto.ViewResponse](t, raw).ID

	status, raw = a.do(http.MethodPost, "/api/views/"+id+"/query", "operador", map[string]string{
		"selling_plant": "P100", "buying_plant": "P200", "material_group": "ZN", "date_from": "01/07/2025",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	resp := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "VALIDATION", resp.Code)
	assert.Contains(t, resp.Message, "date_from")
	assert.Contains(t, resp.Message, "date_to")
}

func TestWorklist_ConfirmacionParcial(t *testing.T) {
	b := &backend{lines: []lifecycle.RawRecord{
		line("10", nil),
		line("20", func(r *lifecycle.RawRecord) { r.QtyReceived = "9" }),
	}}
	a := newAPI(t, b)
	id := a.openAndQuery()
	a.do(http.MethodPut, "/api/views/"+id+"/selection", "operador",
		dto.SelectionRequest{Keys: []string{"4500000001/10", "4500000001/20"}})

	status, raw := a.do(http.MethodPost, "/api/views/"+id+"/actions/INVOICE", "operador", dto.ActionRequest{Period: "07/2025"})
	require.Equal(t, http.StatusAccepted, status, string(raw))
	out := decode[dto.ActionResponse](t, raw)
	require.NotNil(t, out.Confirmation)
	assert.Equal(t, 1, out.Confirmation.EligibleCount)
	require.Len(t, out.Confirmation.Skipped, 1)
	assert.Equal(t, "4500000001/20", out.Confirmation.Skipped[0].Key)
	assert.Empty(t, b.batches)

	path := "/api/views/" + id + "/confirmations/" + out.Confirmation.Token
	status, raw = a.do(http.MethodPost, path, "operador", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status, "accept es obligatorio")

	status, raw = a.do(http.MethodPost, path, "operador", map[string]any{"accept": true})
	require.Equal(t, http.StatusOK, status, string(raw))
	require.Len(t, b.batches, 1)
	assert.Len(t, b.batches[0].Lines, 1)

	status, raw = a.do(http.MethodPost, path, "operador", map[string]any{"accept": true})
	assert.Equal(t, http.StatusGone, status)
	assert.Contains(t, string(raw), "CONFIRMATION_EXPIRED")
}

func TestWorklist_ErrorDelBackend(t *testing.T) {
	b := &backend{lines: []lifecycle.RawRecord{line("10", nil)}, failWith: errors.New("gateway HTTP 503: sin detalle")}
	a := newAPI(t, b)
	id := a.openAndQuery()
	a.do(http.MethodPut, "/api/views/"+id+"/selection", "operador", dto.SelectionRequest{Keys: []string{"4500000001/10"}})

	status, raw := a.do(http.MethodPost, "/api/views/"+id+"/actions/INVOICE", "operador", dto.ActionRequest{Period: "07/2025"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, string(raw), "BACKEND_ERROR")

	status, raw = a.do(http.MethodGet, "/api/views/"+id+"/notifications", "operador", nil)
	require.Equal(t, http.StatusOK, status)
	notes := decode[dto.NotificationListResponse](t, raw)
	require.Len(t, notes.Items, 1)
	assert.Equal(t, "Error", notes.Items[0].Severity)
}

func TestWorklist_AccionNoHabilitadaEnPestana(t *testing.T) {
	b := &backend{lines: []lifecycle.RawRecord{line("10", nil)}}
	a := newAPI(t, b)
	id := a.openAndQuery()
	a.do(http.MethodPut, "/api/views/"+id+"/selection", "operador", dto.SelectionRequest{Keys: []string{"4500000001/10"}})

	status, raw := a.do(http.MethodPost, "/api/views/"+id+"/actions/SUBMIT_TAX", "operador", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(raw), "ACTION_DISABLED")

	status, _ = a.do(http.MethodPost, "/api/views/"+id+"/actions/ANULAR", "operador", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWorklist_RolConsultaNoEjecuta(t *testing.T) {
	b := &backend{lines: []lifecycle.RawRecord{line("10", nil)}}
	a := newAPI(t, b)
	id := a.openAndQuery()

	status, _ := a.do(http.MethodPut, "/api/views/"+id+"/selection", "consulta", dto.SelectionRequest{Keys: []string{"4500000001/10"}})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = a.do(http.MethodPost, "/api/views/"+id+"/actions/INVOICE", "consulta", dto.ActionRequest{Period: "07/2025"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Empty(t, b.batches)
}

func TestWorklist_PestanasYFiltros(t *testing.T) {
	b := &backend{lines: []lifecycle.RawRecord{
		line("10", nil),
		line("20", func(r *lifecycle.RawRecord) { r.Description = "Concentrado de plomo" }),
	}}
	a := newAPI(t, b)
	id := a.openAndQuery()

	status, raw := a.do(http.MethodPut, "/api/views/"+id+"/search", "consulta", dto.SearchRequest{Query: "PLOMO"})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, 1, decode[dto.ViewResponse](t, raw).VisibleCount)

	status, raw = a.do(http.MethodDelete, "/api/views/"+id+"/search", "consulta", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, decode[dto.ViewResponse](t, raw).VisibleCount)

	status, raw = a.do(http.MethodPut, "/api/views/"+id+"/columns/lineNo", "consulta",
		dto.ColumnFilterRequest{Operator: "EQ", Values: []string{"20"}})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, 1, decode[dto.ViewResponse](t, raw).VisibleCount)

	status, _ = a.do(http.MethodPut, "/api/views/"+id+"/columns/lineNo", "consulta",
		dto.ColumnFilterRequest{Operator: "LIKE", Values: []string{"20"}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = a.do(http.MethodPut, "/api/views/"+id+"/stage", "consulta", dto.StageRequest{Stage: "facturado"})
	require.Equal(t, http.StatusOK, status, string(raw))
	view := decode[dto.ViewResponse](t, raw)
	assert.Equal(t, "facturado", view.Stage)
	assert.Equal(t, 0, view.VisibleCount)

	status, _ = a.do(http.MethodPut, "/api/views/"+id+"/stage", "consulta", dto.StageRequest{Stage: "anulado"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWorklist_VistaAjenaOInexistente(t *testing.T) {
	a := newAPI(t, &backend{})
	status, raw := a.do(http.MethodGet, "/api/views/no-existe", "operador", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(raw), "NOT_FOUND")

	status, raw = a.do(http.MethodPost, "/api/views", "operador", nil)
	require.Equal(t, http.StatusCreated, status)
	id := decode[dto.ViewResponse](t, raw).ID

	other, err := pkgjwt.Generate(testJWTSecret, "OTRO", "operador", testIssuer, testExpMin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/views/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+other)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	status, _ = a.do(http.MethodDelete, "/api/views/"+id, "operador", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = a.do(http.MethodGet, "/api/views/"+id, "operador", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestReferences(t *testing.T) {
	a := newAPI(t, &backend{})
	status, raw := a.do(http.MethodGet, "/api/references", "consulta", nil)
	require.Equal(t, http.StatusOK, status)
	refs := decode[dto.ReferencesResponse](t, raw)
	require.Len(t, refs.SellingPlants, 1)
	assert.Equal(t, "P100", refs.SellingPlants[0].Key)
}

func TestAuditSinBaseDeDatos(t *testing.T) {
	a := newAPI(t, &backend{})
	status, raw := a.do(http.MethodGet, "/api/audit/batches?limit=5", "consulta", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	out := decode[dto.BatchAuditListResponse](t, raw)
	assert.Empty(t, out.Items)
	assert.Equal(t, 5, out.Page.Limit)

	status, _ = a.do(http.MethodGet, "/api/audit/batches?limit=500", "consulta", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
