package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
)

func TestRouter_ArrancaEnInicial(t *testing.T) {
	r := lifecycle.NewRouter(lifecycle.NewComposer())
	assert.Equal(t, lifecycle.StageInitial, r.Current().Stage)
	for _, a := range lifecycle.Actions {
		assert.False(t, r.Enabled(a), a)
	}
}

// En Facturado con dos filas marcadas, al pasar a Registrado MIRO la selección
// queda en cero y no hay acciones habilitadas.
func TestRouter_PestanaTerminalSinAcciones(t *testing.T) {
	c := lifecycle.NewComposer()
	r := lifecycle.NewRouter(c)

	r.Select(lifecycle.StageInvoiced)
	r.UpdateSelection(2)
	require.True(t, r.Enabled(lifecycle.ActionSubmitTax))
	assert.False(t, r.Enabled(lifecycle.ActionInvoice))

	view := r.Select(lifecycle.StageReceiptRegistered)
	assert.Equal(t, 0, r.Selected())
	assert.Equal(t, lifecycle.SelectionNone, view.Selection)
	for a, on := range r.EnabledActions() {
		assert.False(t, on, a)
	}

	// Marcar filas en la pestaña terminal no habilita nada.
	r.UpdateSelection(3)
	assert.Equal(t, 0, r.Selected())
	for _, a := range lifecycle.Actions {
		assert.False(t, r.Enabled(a), a)
	}
}

func TestRouter_AccionesPorPestana(t *testing.T) {
	cases := []struct {
		stage   lifecycle.Stage
		enabled []lifecycle.Action
	}{
		{lifecycle.StageInitial, []lifecycle.Action{lifecycle.ActionInvoice}},
		{lifecycle.StageInvoiced, []lifecycle.Action{lifecycle.ActionSubmitTax}},
		{lifecycle.StageTaxSubmitted, []lifecycle.Action{lifecycle.ActionResubmitTax, lifecycle.ActionRegisterReceipt}},
		{lifecycle.StageTaxResubmitted, []lifecycle.Action{lifecycle.ActionResubmitTax, lifecycle.ActionRegisterReceipt}},
		{lifecycle.StageReceiptRegistered, nil},
	}
	for _, tc := range cases {
		t.Run(tc.stage.Key(), func(t *testing.T) {
			r := lifecycle.NewRouter(lifecycle.NewComposer())
			r.Select(tc.stage)
			r.UpdateSelection(1)
			var got []lifecycle.Action
			for _, a := range lifecycle.Actions {
				if r.Enabled(a) {
					got = append(got, a)
				}
			}
			assert.Equal(t, tc.enabled, got)

			r.UpdateSelection(0)
			for _, a := range lifecycle.Actions {
				assert.False(t, r.Enabled(a))
			}
		})
	}
}

// Cambiar de pestaña solo toca el grupo de pestaña.
func TestRouter_NoTocaBusquedaNiColumnas(t *testing.T) {
	c := lifecycle.NewComposer()
	r := lifecycle.NewRouter(c)
	c.SetSearch("zinc")
	require.NoError(t, c.SetColumn(lifecycle.FieldMaterial, lifecycle.OpEQ, "MAT-1"))

	r.Select(lifecycle.StageTaxSubmitted)
	spec := c.Compose()
	assert.Len(t, spec.Stage.Conditions, 3)
	assert.Equal(t, "zinc", c.SearchQuery())
	assert.Len(t, spec.Columns, 1)
}

func TestStageViews_Predicados(t *testing.T) {
	fresh := newRow(t, "1", "10", nil)
	invoiced := newRow(t, "1", "20", func(r *lifecycle.RawRecord) { r.InvoiceNumber = "INV1" })
	submitted := newRow(t, "1", "30", func(r *lifecycle.RawRecord) {
		r.InvoiceNumber = "INV1"
		r.TaxSubmissionStatus = "PE - Pending"
		r.LastAction = "submit_tax"
	})
	resubmitted := newRow(t, "1", "40", func(r *lifecycle.RawRecord) {
		r.InvoiceNumber = "INV1"
		r.TaxSubmissionStatus = "RE - Rejected"
		r.LastAction = "RESUBMIT_TAX"
	})
	registered := newRow(t, "1", "50", func(r *lifecycle.RawRecord) {
		r.InvoiceNumber = "INV1"
		r.TaxSubmissionStatus = "AP - Approved"
		r.InvoiceVerificationDoc = "5100000001"
	})
	rows := []*entity.DeliveryLine{fresh, invoiced, submitted, resubmitted, registered}

	filter := func(s lifecycle.Stage) []*entity.DeliveryLine {
		return lifecycle.FilterSpec{Stage: lifecycle.StageViews(s).Predicate}.Apply(rows)
	}
	assert.Len(t, filter(lifecycle.StageInitial), 5)
	assert.Equal(t, []*entity.DeliveryLine{invoiced}, filter(lifecycle.StageInvoiced))
	assert.Equal(t, []*entity.DeliveryLine{submitted}, filter(lifecycle.StageTaxSubmitted))
	assert.Equal(t, []*entity.DeliveryLine{resubmitted}, filter(lifecycle.StageTaxResubmitted))
	assert.Equal(t, []*entity.DeliveryLine{registered}, filter(lifecycle.StageReceiptRegistered))
}

func TestParseStage(t *testing.T) {
	s, err := lifecycle.ParseStage("registradoMiro")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StageReceiptRegistered, s)
	assert.True(t, s.Terminal())

	s, err = lifecycle.ParseStage(lifecycle.StageInvoiced.Key())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StageInvoiced, s)

	_, err = lifecycle.ParseStage("archivado")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAction_EtapaDestino(t *testing.T) {
	assert.Equal(t, lifecycle.StageInvoiced, lifecycle.ActionInvoice.TargetStage())
	assert.Equal(t, lifecycle.StageReceiptRegistered, lifecycle.ActionRegisterReceipt.TargetStage())
	assert.True(t, lifecycle.ActionInvoice.RequiresPeriod())
	assert.False(t, lifecycle.ActionSubmitTax.RequiresPeriod())

	a, err := lifecycle.ParseAction(" register_receipt ")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.ActionRegisterReceipt, a)
}
