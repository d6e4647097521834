package lifecycle_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
)

func str(s string) *string { return &s }

func built(t *testing.T, n int) []*entity.DeliveryLine {
	t.Helper()
	rows := make([]*entity.DeliveryLine, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, newRow(t, "4500000001", string(rune('1'+i))+"0", nil))
	}
	_, err := lifecycle.Build(lifecycle.ActionInvoice, header(), rows, rows)
	require.NoError(t, err)
	return rows
}

// La respuesta con ids "2" y "1" (en ese orden) aplica cada actualización a
// la fila correcta.
func TestReconciler_AplicaPorIdSinImportarOrden(t *testing.T) {
	rows := built(t, 3)
	rc := lifecycle.NewReconciler(nil, zerolog.Nop())

	res := rc.Apply(&entity.BatchResponse{Lines: []entity.ResponseLine{
		{CorrelationID: "2", InvoiceNumber: str("INV-B")},
		{CorrelationID: "1", InvoiceNumber: str("INV-A")},
	}}, rows)

	assert.Equal(t, "INV-A", rows[0].InvoiceNumber)
	assert.Equal(t, "INV-B", rows[1].InvoiceNumber)
	assert.Equal(t, "", rows[2].InvoiceNumber)
	assert.Equal(t, []*entity.DeliveryLine{rows[1], rows[0]}, res.Updated)
	assert.Empty(t, res.Unmatched)
}

// Una línea con solo la factura cambia ese campo y nada más de la fila.
func TestReconciler_SoloCambiaLoRecibido(t *testing.T) {
	rows := built(t, 2)
	require.Equal(t, "1", rows[0].CorrelationID)
	want := *rows[0]
	want.InvoiceNumber = "INV99"
	other := *rows[1]

	lifecycle.NewReconciler(nil, zerolog.Nop()).Apply(&entity.BatchResponse{Lines: []entity.ResponseLine{
		{CorrelationID: "1", InvoiceNumber: str("INV99")},
	}}, rows)

	assert.Equal(t, want, *rows[0])
	assert.Equal(t, other, *rows[1])
}

func TestReconciler_Idempotente(t *testing.T) {
	rows := built(t, 2)
	rc := lifecycle.NewReconciler(nil, zerolog.Nop())
	resp := &entity.BatchResponse{Lines: []entity.ResponseLine{
		{CorrelationID: "1", InvoiceNumber: str("INV-A"), TaxSubmissionStatus: str("AP - Approved"), LastAction: str("SUBMIT_TAX")},
	}}

	rc.Apply(resp, rows)
	once := *rows[0]
	rc.Apply(resp, rows)
	assert.Equal(t, once, *rows[0])
	assert.Equal(t, entity.TaxStatusApproved, rows[0].TaxStatus)
}

// Los campos ausentes no borran datos locales.
func TestReconciler_CamposAusentesNoSobrescriben(t *testing.T) {
	rows := built(t, 1)
	rows[0].InvoiceNumber = "INV-LOCAL"
	rows[0].TaxReference = "REF-LOCAL"
	rc := lifecycle.NewReconciler(nil, zerolog.Nop())

	rc.Apply(&entity.BatchResponse{Lines: []entity.ResponseLine{
		{CorrelationID: "1", LastEventMessage: str("Factura contabilizada"), TaxReference: str("")},
	}}, rows)

	assert.Equal(t, "INV-LOCAL", rows[0].InvoiceNumber)
	assert.Equal(t, "", rows[0].TaxReference)
	assert.Equal(t, "Factura contabilizada", rows[0].LastEventMessage)
}

// Sin id de correlación se concilia por pedido/posición.
func TestReconciler_RespaldoPorClaveDeNegocio(t *testing.T) {
	rows := built(t, 2)
	lifecycle.ClearCorrelation(rows)
	rc := lifecycle.NewReconciler(nil, zerolog.Nop())

	res := rc.Apply(&entity.BatchResponse{Lines: []entity.ResponseLine{
		{CorrelationID: "77", OrderID: "4500000001", LineNo: "20", InvoiceVerificationDoc: str("5100000009")},
	}}, rows)

	assert.Equal(t, "5100000009", rows[1].InvoiceVerificationDoc)
	assert.Same(t, rows[1], res.Matched["77"])
}

func TestReconciler_LineasSinFila(t *testing.T) {
	rows := built(t, 1)
	rc := lifecycle.NewReconciler(nil, zerolog.Nop())

	res := rc.Apply(&entity.BatchResponse{Lines: []entity.ResponseLine{
		{CorrelationID: "9", OrderID: "4599999999", LineNo: "10", InvoiceNumber: str("X")},
	}}, rows)

	require.Len(t, res.Unmatched, 1)
	assert.Empty(t, res.Updated)
	assert.Equal(t, "", rows[0].InvoiceNumber)

	assert.Empty(t, rc.Apply(nil, rows).Updated)
}
