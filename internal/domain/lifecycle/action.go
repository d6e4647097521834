// Package lifecycle contiene el motor del ciclo de vida de las entregas:
// elegibilidad por acción, composición de filtros por pestaña, armado del lote
// con ids de correlación y conciliación de la respuesta del backend.
//
// Todo el paquete es puro: no hace I/O y no guarda estado global.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
)

// Action acción del flujo que se envía como un lote.
type Action string

const (
	ActionInvoice         Action = "INVOICE"
	ActionSubmitTax       Action = "SUBMIT_TAX"
	ActionResubmitTax     Action = "RESUBMIT_TAX"
	ActionRegisterReceipt Action = "REGISTER_RECEIPT"
)

// Actions lista todas las acciones en orden del flujo.
var Actions = []Action{ActionInvoice, ActionSubmitTax, ActionResubmitTax, ActionRegisterReceipt}

// ParseAction valida el código de acción (sin distinguir mayúsculas).
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: acción desconocida %q", domain.ErrInvalidInput, s)
	}
	return a, nil
}

// Valid indica si es una de las cuatro acciones conocidas.
func (a Action) Valid() bool {
	switch a {
	case ActionInvoice, ActionSubmitTax, ActionResubmitTax, ActionRegisterReceipt:
		return true
	}
	return false
}

// RequiresPeriod solo la facturación exige periodo contable en la cabecera.
func (a Action) RequiresPeriod() bool {
	return a == ActionInvoice
}

// TargetStage etapa a la que avanza la fila si la acción termina bien.
func (a Action) TargetStage() Stage {
	switch a {
	case ActionInvoice:
		return StageInvoiced
	case ActionSubmitTax:
		return StageTaxSubmitted
	case ActionResubmitTax:
		return StageTaxResubmitted
	case ActionRegisterReceipt:
		return StageReceiptRegistered
	}
	return StageInitial
}

// Stage posición de un documento en el ciclo de vida (una pestaña de la vista).
type Stage int

const (
	StageInitial Stage = iota
	StageInvoiced
	StageTaxSubmitted
	StageTaxResubmitted
	StageReceiptRegistered
)

var stageKeys = map[Stage]string{
	StageInitial:           "inicial",
	StageInvoiced:          "facturado",
	StageTaxSubmitted:      "enviadoSunat",
	StageTaxResubmitted:    "reenviadoSunat",
	StageReceiptRegistered: "registradoMiro",
}

// Key clave de la pestaña.
func (s Stage) Key() string {
	if k, ok := stageKeys[s]; ok {
		return k
	}
	return "desconocido"
}

// String implementa fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageInitial:
		return "Initial"
	case StageInvoiced:
		return "Invoiced"
	case StageTaxSubmitted:
		return "TaxSubmitted"
	case StageTaxResubmitted:
		return "TaxResubmitted"
	case StageReceiptRegistered:
		return "ReceiptRegistered"
	}
	return "Unknown"
}

// Terminal la última etapa es de solo lectura.
func (s Stage) Terminal() bool {
	return s == StageReceiptRegistered
}

// ParseStage acepta la clave de la pestaña o el nombre de la etapa.
func ParseStage(s string) (Stage, error) {
	s = strings.TrimSpace(s)
	for st, key := range stageKeys {
		if strings.EqualFold(s, key) || strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return StageInitial, fmt.Errorf("%w: pestaña desconocida %q", domain.ErrInvalidInput, s)
}
