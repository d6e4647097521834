package lifecycle

// SelectionMode modo de selección de filas de la tabla.
type SelectionMode string

const (
	SelectionMulti SelectionMode = "MultiSelect"
	SelectionNone  SelectionMode = "None"
)

// StageView configuración de una pestaña: predicado, columnas visibles, modo de
// selección y acciones permitidas.
type StageView struct {
	Stage         Stage
	Predicate     Group
	VisibleFields []Field
	Selection     SelectionMode
	Actions       []Action
}

// Allows indica si la acción está permitida en la pestaña.
func (v StageView) Allows(a Action) bool {
	for _, x := range v.Actions {
		if x == a {
			return true
		}
	}
	return false
}

var baseFields = []Field{
	FieldOrderID, FieldLineNo, FieldDelivery, FieldDeliveryDate, FieldMaterial, FieldDescription,
	FieldQtyShipped, FieldQtyReceived, FieldQtyDelta, FieldAmountShipped, FieldAmountReceived,
	FieldAmountDelta, FieldTolerance, FieldRegistrationStatus, FieldLastEventMessage,
}

func withFields(extra ...Field) []Field {
	out := make([]Field, 0, len(baseFields)+len(extra))
	out = append(out, baseFields...)
	return append(out, extra...)
}

// StageViews devuelve la configuración de la pestaña. Cada llamada entrega
// slices nuevos.
func StageViews(s Stage) StageView {
	switch s {
	case StageInvoiced:
		return StageView{
			Stage: s,
			Predicate: AllOf(
				Ne(FieldInvoiceNumber, ""),
				Eq(FieldInvoiceVerificationDoc, ""),
				Eq(FieldTaxSubmissionStatus, ""),
			),
			VisibleFields: withFields(FieldInvoiceNumber),
			Selection:     SelectionMulti,
			Actions:       []Action{ActionSubmitTax},
		}
	case StageTaxSubmitted, StageTaxResubmitted:
		last := ActionSubmitTax
		if s == StageTaxResubmitted {
			last = ActionResubmitTax
		}
		return StageView{
			Stage: s,
			Predicate: AllOf(
				Ne(FieldTaxSubmissionStatus, ""),
				Eq(FieldInvoiceVerificationDoc, ""),
				Eq(FieldLastAction, string(last)),
			),
			VisibleFields: withFields(FieldInvoiceNumber, FieldTaxSubmissionStatus, FieldTaxReference),
			Selection:     SelectionMulti,
			Actions:       []Action{ActionResubmitTax, ActionRegisterReceipt},
		}
	case StageReceiptRegistered:
		return StageView{
			Stage:     s,
			Predicate: AllOf(Ne(FieldInvoiceVerificationDoc, "")),
			VisibleFields: withFields(FieldInvoiceNumber, FieldTaxSubmissionStatus, FieldTaxReference,
				FieldInvoiceVerificationDoc),
			Selection: SelectionNone,
		}
	}
	// Inicial: sin predicado, se ve todo el backlog.
	return StageView{
		Stage:         StageInitial,
		VisibleFields: withFields(),
		Selection:     SelectionMulti,
		Actions:       []Action{ActionInvoice},
	}
}

// Router máquina de estados de pestañas de una vista. Es el único que escribe
// el grupo de pestaña del Composer.
type Router struct {
	composer *Composer
	view     StageView
	selected int
	enabled  map[Action]bool
}

// NewRouter crea el router en la pestaña inicial.
func NewRouter(c *Composer) *Router {
	r := &Router{composer: c}
	r.Select(StageInitial)
	return r
}

// Select cambia de pestaña: fija el predicado, resetea la selección y apaga
// todas las acciones.
func (r *Router) Select(s Stage) StageView {
	r.view = StageViews(s)
	r.composer.SetStage(r.view.Predicate)
	r.selected = 0
	r.enabled = make(map[Action]bool, len(Actions))
	for _, a := range Actions {
		r.enabled[a] = false
	}
	return r.view
}

// Current pestaña vigente.
func (r *Router) Current() StageView {
	return r.view
}

// UpdateSelection recalcula las acciones habilitadas para n filas seleccionadas.
// En la pestaña terminal no hay selección ni acciones.
func (r *Router) UpdateSelection(n int) {
	if r.view.Selection == SelectionNone {
		n = 0
	}
	r.selected = n
	for _, a := range Actions {
		r.enabled[a] = n > 0 && r.view.Allows(a)
	}
}

// Selected cantidad de filas seleccionadas.
func (r *Router) Selected() int {
	return r.selected
}

// Enabled indica si la acción está habilitada ahora.
func (r *Router) Enabled(a Action) bool {
	return r.enabled[a]
}

// EnabledActions copia de las banderas por acción.
func (r *Router) EnabledActions() map[Action]bool {
	out := make(map[Action]bool, len(r.enabled))
	for k, v := range r.enabled {
		out[k] = v
	}
	return out
}
