package lifecycle_test

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
)

func TestSeverityFromCode(t *testing.T) {
	cases := map[string]lifecycle.Severity{
		"E":  lifecycle.SeverityError,
		"w":  lifecycle.SeverityWarning,
		"S":  lifecycle.SeveritySuccess,
		"":   lifecycle.SeveritySuccess,
		"I":  lifecycle.SeverityInfo,
		"A":  lifecycle.SeverityInfo,
		"XY": lifecycle.SeverityInfo,
	}
	for code, want := range cases {
		assert.Equal(t, want, lifecycle.SeverityFromCode(code), "code=%q", code)
	}
}

func TestAggregate_SinMensajesEsExito(t *testing.T) {
	notes := lifecycle.Aggregate(nil, lifecycle.Reconciliation{})
	require.Len(t, notes, 1)
	assert.Equal(t, lifecycle.SeveritySuccess, notes[0].Severity)
	assert.Equal(t, lifecycle.MsgBatchSent, notes[0].Text)
}

func TestAggregate_PrefijoYDuplicados(t *testing.T) {
	rows := built(t, 2)
	rc := lifecycle.NewReconciler(nil, zerolog.Nop())
	rec := rc.Apply(&entity.BatchResponse{}, rows)

	notes := lifecycle.Aggregate([]entity.BatchMessage{
		{LineID: "1", Type: "E", Text: "Periodo cerrado"},
		{LineID: "1", Type: "E", Text: "Periodo cerrado "},
		{LineID: "2", Type: "W", Text: "Periodo cerrado"},
		{LineID: "99", Type: "S", Text: "Procesado"},
		{Type: "I", Text: "Lote recibido"},
	}, rec)

	require.Len(t, notes, 4)
	assert.Equal(t, "Pedido 4500000001/10: Periodo cerrado", notes[0].Text)
	assert.Equal(t, lifecycle.SeverityError, notes[0].Severity)
	assert.Equal(t, "Pedido 4500000001/20: Periodo cerrado", notes[1].Text)
	assert.Equal(t, lifecycle.SeverityWarning, notes[1].Severity)
	assert.Equal(t, "Línea 99: Procesado", notes[2].Text)
	assert.Equal(t, "Lote recibido", notes[3].Text)
	assert.Equal(t, lifecycle.SeverityInfo, notes[3].Severity)
}

func TestFailureNotification(t *testing.T) {
	notes := lifecycle.FailureNotification("timeout")
	require.Len(t, notes, 1)
	assert.Equal(t, lifecycle.SeverityError, notes[0].Severity)
	assert.Contains(t, notes[0].Text, lifecycle.MsgBatchFailed)
	assert.Contains(t, notes[0].Text, "timeout")
}

// Publicar el mismo lote reemplaza; nunca suma notificaciones.
func TestBoard_Reemplaza(t *testing.T) {
	b := lifecycle.NewBoard()
	b.Publish("b1", []lifecycle.Notification{{Severity: lifecycle.SeverityError, Text: "x"}, {Text: "y"}})
	b.Publish("b1", []lifecycle.Notification{{Severity: lifecycle.SeveritySuccess, Text: "ok"}})

	id, notes := b.Latest()
	assert.Equal(t, "b1", id)
	require.Len(t, notes, 1)
	assert.Equal(t, "ok", notes[0].Text)

	b.Publish("b2", nil)
	id, notes = b.Latest()
	assert.Equal(t, "b2", id)
	assert.Empty(t, notes)
	assert.Len(t, b.Batch("b1"), 1)
}

func TestBoard_Capacidad(t *testing.T) {
	b := lifecycle.NewBoard()
	for i := 0; i < 25; i++ {
		b.Publish(fmt.Sprintf("b%d", i), []lifecycle.Notification{{Text: "n"}})
	}
	assert.Empty(t, b.Batch("b0"))
	assert.Empty(t, b.Batch("b4"))
	assert.Len(t, b.Batch("b5"), 1)
	assert.Len(t, b.Batch("b24"), 1)
}
