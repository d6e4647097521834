package lifecycle_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/pkg/sunat"
)

// ── helpers ───────────────────────────────────────────────────────────────────

// newRow arma una fila normalizada con cantidades iguales y sin etapas.
func newRow(t *testing.T, order, line string, mutate func(*lifecycle.RawRecord)) *entity.DeliveryLine {
	t.Helper()
	raw := lifecycle.RawRecord{
		OrderID:        order,
		LineNo:         line,
		Material:       "MAT-" + order,
		Description:    "Concentrado de zinc",
		QtyShipped:     "10",
		QtyReceived:    "10",
		AmountShipped:  "1500.00",
		AmountReceived: "1500.00",
	}
	if mutate != nil {
		mutate(&raw)
	}
	row, err := lifecycle.NormalizeRow(raw, lifecycle.DefaultStatusCatalog())
	require.NoError(t, err)
	return row
}

// ── INVOICE ───────────────────────────────────────────────────────────────────

// Cantidades iguales, sin diferencia, sin factura → elegible.
func TestIsEligible_Invoice_SinFacturaEsElegible(t *testing.T) {
	row := newRow(t, "4500000001", "10", func(r *lifecycle.RawRecord) {
		r.ToleranceCode = sunat.ToleranceCodeNoDifference
	})
	assert.Equal(t, entity.WithinZero, row.Tolerance)
	assert.True(t, lifecycle.IsEligible(lifecycle.ActionInvoice, row))
	assert.Equal(t, lifecycle.ReasonNone, lifecycle.ReasonIneligible(lifecycle.ActionInvoice, row))
}

// La misma fila con factura → no elegible, motivo "already invoiced".
func TestIsEligible_Invoice_YaFacturada(t *testing.T) {
	row := newRow(t, "4500000001", "10", func(r *lifecycle.RawRecord) { r.InvoiceNumber = "INV1" })
	assert.False(t, lifecycle.IsEligible(lifecycle.ActionInvoice, row))
	reason := lifecycle.ReasonIneligible(lifecycle.ActionInvoice, row)
	assert.Equal(t, lifecycle.ReasonAlreadyInvoiced, reason)
	assert.Equal(t, "already invoiced", string(reason))
}

// Con factura nunca es elegible para INVOICE, sin importar el resto de campos.
func TestIsEligible_Invoice_FacturaSiempreBloquea(t *testing.T) {
	tolerances := []string{"", "1", "0", "-1", "9"}
	received := []string{"10", "7", "12"}
	for _, tol := range tolerances {
		for _, rec := range received {
			row := newRow(t, "4500000002", "20", func(r *lifecycle.RawRecord) {
				r.InvoiceNumber = "F001-123"
				r.ToleranceCode = tol
				r.QtyReceived = rec
			})
			assert.False(t, lifecycle.IsEligible(lifecycle.ActionInvoice, row), "tol=%q rec=%q", tol, rec)
		}
	}
}

func TestIsEligible_Invoice_DiferenciaDeCantidad(t *testing.T) {
	row := newRow(t, "4500000003", "10", func(r *lifecycle.RawRecord) { r.QtyReceived = "9.5" })
	assert.Equal(t, lifecycle.ReasonQuantityMismatch, lifecycle.ReasonIneligible(lifecycle.ActionInvoice, row))
}

func TestIsEligible_Invoice_FueraDeTolerancia(t *testing.T) {
	row := newRow(t, "4500000003", "10", func(r *lifecycle.RawRecord) { r.ToleranceCode = "-1" })
	assert.Equal(t, lifecycle.ReasonOutOfTolerance, lifecycle.ReasonIneligible(lifecycle.ActionInvoice, row))

	within := newRow(t, "4500000003", "20", func(r *lifecycle.RawRecord) { r.ToleranceCode = "0" })
	assert.True(t, lifecycle.IsEligible(lifecycle.ActionInvoice, within))
}

// ── SUBMIT_TAX / RESUBMIT_TAX ─────────────────────────────────────────────────

func TestIsEligible_SubmitTax(t *testing.T) {
	t.Run("facturada sin referencia", func(t *testing.T) {
		row := newRow(t, "1", "10", func(r *lifecycle.RawRecord) { r.InvoiceNumber = "INV1" })
		assert.True(t, lifecycle.IsEligible(lifecycle.ActionSubmitTax, row))
	})
	t.Run("sin factura", func(t *testing.T) {
		row := newRow(t, "1", "10", nil)
		assert.Equal(t, lifecycle.ReasonNotInvoiced, lifecycle.ReasonIneligible(lifecycle.ActionSubmitTax, row))
	})
	t.Run("con referencia SUNAT", func(t *testing.T) {
		row := newRow(t, "1", "10", func(r *lifecycle.RawRecord) {
			r.InvoiceNumber = "INV1"
			r.TaxReference = "REF-9"
		})
		assert.Equal(t, lifecycle.ReasonTaxReferenceAssigned, lifecycle.ReasonIneligible(lifecycle.ActionSubmitTax, row))
	})
	t.Run("ya aprobada", func(t *testing.T) {
		row := newRow(t, "1", "10", func(r *lifecycle.RawRecord) {
			r.InvoiceNumber = "INV1"
			r.TaxSubmissionStatus = sunat.ApprovedLabel
		})
		assert.Equal(t, lifecycle.ReasonTaxApproved, lifecycle.ReasonIneligible(lifecycle.ActionSubmitTax, row))
	})
}

func TestIsEligible_ResubmitTax(t *testing.T) {
	rejected := newRow(t, "1", "10", func(r *lifecycle.RawRecord) {
		r.InvoiceNumber = "INV1"
		r.TaxSubmissionStatus = "RE - Rejected"
	})
	assert.True(t, lifecycle.IsEligible(lifecycle.ActionResubmitTax, rejected))

	notSent := newRow(t, "1", "20", func(r *lifecycle.RawRecord) { r.InvoiceNumber = "INV1" })
	assert.Equal(t, lifecycle.ReasonTaxNotSubmitted, lifecycle.ReasonIneligible(lifecycle.ActionResubmitTax, notSent))

	withMiro := newRow(t, "1", "30", func(r *lifecycle.RawRecord) {
		r.InvoiceNumber = "INV1"
		r.TaxSubmissionStatus = "RE - Rejected"
		r.InvoiceVerificationDoc = "5100000001"
	})
	assert.Equal(t, lifecycle.ReasonVerificationRegistered, lifecycle.ReasonIneligible(lifecycle.ActionResubmitTax, withMiro))
}

// Una etiqueta que solo contiene la palabra de aprobación no cuenta como aprobada.
func TestIsEligible_AprobacionEsComparacionExacta(t *testing.T) {
	row := newRow(t, "1", "10", func(r *lifecycle.RawRecord) {
		r.InvoiceNumber = "INV1"
		r.TaxSubmissionStatus = "AP - Approved pending review"
	})
	assert.Equal(t, entity.TaxStatusUnknown, row.TaxStatus)
	assert.True(t, lifecycle.IsEligible(lifecycle.ActionResubmitTax, row))
	assert.False(t, lifecycle.IsEligible(lifecycle.ActionRegisterReceipt, row))
}

// ── REGISTER_RECEIPT ──────────────────────────────────────────────────────────

// Factura, SUNAT aprobado, sin MIRO, sin diferencia, dentro de tolerancia.
func TestIsEligible_RegisterReceipt_AprobadaDentroDeTolerancia(t *testing.T) {
	row := newRow(t, "4500000009", "10", func(r *lifecycle.RawRecord) {
		r.InvoiceNumber = "INV1"
		r.TaxSubmissionStatus = "AP - Approved"
		r.ToleranceCode = "0"
	})
	require.True(t, row.QtyDelta.IsZero())
	assert.Equal(t, entity.WithinTolerance, row.Tolerance)
	assert.True(t, lifecycle.IsEligible(lifecycle.ActionRegisterReceipt, row))
}

// Sin aprobación nunca es elegible, para cualquier tolerancia o cantidad.
func TestIsEligible_RegisterReceipt_SinAprobacion(t *testing.T) {
	statuses := []string{"", "PE - Pending", "RE - Rejected", "Approved", "ap - approved"}
	for _, st := range statuses {
		for _, tol := range []string{"", "0", "-1"} {
			for _, rec := range []string{"10", "3"} {
				row := newRow(t, "1", "10", func(r *lifecycle.RawRecord) {
					r.InvoiceNumber = "INV1"
					r.TaxSubmissionStatus = st
					r.ToleranceCode = tol
					r.QtyReceived = rec
				})
				assert.False(t, lifecycle.IsEligible(lifecycle.ActionRegisterReceipt, row),
					"status=%q tol=%q rec=%q", st, tol, rec)
			}
		}
	}
}

func TestIsEligible_RegisterReceipt_OrdenDeMotivos(t *testing.T) {
	row := newRow(t, "1", "10", func(r *lifecycle.RawRecord) {
		r.InvoiceNumber = "INV1"
		r.TaxSubmissionStatus = sunat.ApprovedLabel
		r.QtyReceived = "8"
		r.ToleranceCode = "-1"
	})
	// La diferencia de cantidad se reporta antes que la tolerancia.
	assert.Equal(t, lifecycle.ReasonQuantityMismatch, lifecycle.ReasonIneligible(lifecycle.ActionRegisterReceipt, row))
}

func TestReasonIneligible_AccionDesconocida(t *testing.T) {
	row := newRow(t, "1", "10", nil)
	assert.Equal(t, lifecycle.ReasonUnknownAction, lifecycle.ReasonIneligible(lifecycle.Action("CANCEL"), row))
	assert.NotEmpty(t, lifecycle.ReasonUnknownAction.Message())
}

// ── Partition ─────────────────────────────────────────────────────────────────

func TestPartition_ConservaOrden(t *testing.T) {
	a := newRow(t, "1", "10", nil)
	b := newRow(t, "1", "20", func(r *lifecycle.RawRecord) { r.InvoiceNumber = "INV1" })
	c := newRow(t, "1", "30", nil)
	d := newRow(t, "1", "40", func(r *lifecycle.RawRecord) { r.QtyReceived = "1" })

	eligible, skipped := lifecycle.Partition(lifecycle.ActionInvoice, []*entity.DeliveryLine{a, b, c, d})
	assert.Equal(t, []*entity.DeliveryLine{a, c}, eligible)
	require.Len(t, skipped, 2)
	assert.Same(t, b, skipped[0].Row)
	assert.Equal(t, lifecycle.ReasonAlreadyInvoiced, skipped[0].Reason)
	assert.Same(t, d, skipped[1].Row)
	assert.Equal(t, lifecycle.ReasonQuantityMismatch, skipped[1].Reason)
	assert.True(t, d.QtyDelta.Equal(decimal.NewFromInt(9)))
}
