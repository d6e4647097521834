package lifecycle

import (
	"strings"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/pkg/sunat"
)

// Severity tipo de notificación para el operador.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
	SeveritySuccess Severity = "Success"
	SeverityInfo    Severity = "Information"
)

// Textos estándar de la vista.
const (
	MsgBatchSent    = "Los registros fueron enviados correctamente para su procesamiento."
	MsgBatchFailed  = "Error al enviar los registros para su procesamiento. Por favor, intente nuevamente."
	MsgNoSelection  = "No se han seleccionado registros para procesar."
	MsgSkippedLines = "Existen registros seleccionados que no cumplen las condiciones y no serán procesados."
)

// Notification mensaje ya armado para el operador.
type Notification struct {
	Severity Severity
	Text     string
	LineID   string
}

// SeverityFromCode E→error, W→warning, vacío o S→success, cualquier otro→info.
func SeverityFromCode(code string) Severity {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case sunat.MessageTypeError:
		return SeverityError
	case sunat.MessageTypeWarning:
		return SeverityWarning
	case "", sunat.MessageTypeSuccess:
		return SeveritySuccess
	}
	return SeverityInfo
}

// Aggregate convierte los mensajes por línea en notificaciones sin duplicados
// (por texto final, en orden de aparición). Si el lote terminó bien y no trajo
// mensajes, devuelve exactamente una notificación de éxito.
func Aggregate(msgs []entity.BatchMessage, rec Reconciliation) []Notification {
	if len(msgs) == 0 {
		return []Notification{{Severity: SeveritySuccess, Text: MsgBatchSent}}
	}
	seen := make(map[string]bool, len(msgs))
	out := make([]Notification, 0, len(msgs))
	for _, m := range msgs {
		text := contextPrefix(m.LineID, rec) + strings.TrimSpace(m.Text)
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, Notification{Severity: SeverityFromCode(m.Type), Text: text, LineID: m.LineID})
	}
	return out
}

// contextPrefix usa la clave de negocio de la fila si el id de la línea se
// puede resolver; si no, el id crudo.
func contextPrefix(lineID string, rec Reconciliation) string {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return ""
	}
	if row := resolveLine(lineID, rec); row != nil {
		return "Pedido " + row.Key() + ": "
	}
	return "Línea " + lineID + ": "
}

func resolveLine(lineID string, rec Reconciliation) *entity.DeliveryLine {
	if row, ok := rec.Matched[lineID]; ok {
		return row
	}
	if rec.Index == nil {
		return nil
	}
	if row, ok := rec.Index.ByCorrelation(lineID); ok {
		return row
	}
	if order, line, ok := strings.Cut(lineID, "/"); ok {
		if row, ok := rec.Index.ByKey(order, line); ok {
			return row
		}
	}
	return nil
}

// FailureNotification única notificación de un lote que falló en el transporte.
func FailureNotification(detail string) []Notification {
	text := MsgBatchFailed
	if detail = strings.TrimSpace(detail); detail != "" {
		text += " (" + detail + ")"
	}
	return []Notification{{Severity: SeverityError, Text: text}}
}

// boardCapacity lotes que conserva un tablero.
const boardCapacity = 20

// Board conjunto publicado de notificaciones por lote. Publicar un lote
// reemplaza lo que hubiera para ese lote; nunca agrega.
type Board struct {
	byBatch map[string][]Notification
	order   []string
	latest  string
}

// NewBoard crea un tablero vacío.
func NewBoard() *Board {
	return &Board{byBatch: make(map[string][]Notification)}
}

// Publish reemplaza las notificaciones del lote y lo marca como el último.
func (b *Board) Publish(batchID string, notes []Notification) {
	cp := make([]Notification, len(notes))
	copy(cp, notes)
	if _, ok := b.byBatch[batchID]; !ok {
		b.order = append(b.order, batchID)
		if len(b.order) > boardCapacity {
			delete(b.byBatch, b.order[0])
			b.order = b.order[1:]
		}
	}
	b.byBatch[batchID] = cp
	b.latest = batchID
}

// Batch notificaciones publicadas para un lote.
func (b *Board) Batch(batchID string) []Notification {
	notes := b.byBatch[batchID]
	cp := make([]Notification, len(notes))
	copy(cp, notes)
	return cp
}

// Latest id y notificaciones del último lote publicado.
func (b *Board) Latest() (string, []Notification) {
	return b.latest, b.Batch(b.latest)
}
