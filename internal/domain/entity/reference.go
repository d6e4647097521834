package entity

// ReferenceItem elemento de una lista de referencia (centros, grupos de material,
// estados de registro).
type ReferenceItem struct {
	Key  string
	Text string
}

// ActionStatus estado posible para una acción del flujo.
type ActionStatus struct {
	Action string
	Code   string
	Label  string
}
