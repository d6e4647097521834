// Package sunat contiene los códigos que el backend SAP usa para el envío de
// comprobantes a SUNAT (Perú) y para el resultado de cada línea de un lote.
package sunat

// =============================================================================
// Estados de envío a SUNAT
// Las etiquetas llegan como "<código> - <texto>" (ej. "AP - Approved").
// =============================================================================

const (
	StatusCodeApproved = "AP" // Aceptado por SUNAT
	StatusCodePending  = "PE" // Enviado, sin respuesta
	StatusCodeRejected = "RE" // Rechazado
	StatusCodeObserved = "OB" // Aceptado con observaciones (requiere reenvío)
	StatusCodeError    = "ER" // Error técnico en el envío

	// ApprovedLabel etiqueta canónica de aprobación usada cuando no hay
	// catálogo de referencia cargado.
	ApprovedLabel = "AP - Approved"
)

// DefaultStatusLabels etiquetas conocidas por código de estado.
var DefaultStatusLabels = map[string]string{
	StatusCodeApproved: ApprovedLabel,
	StatusCodePending:  "PE - Pending",
	StatusCodeRejected: "RE - Rejected",
	StatusCodeObserved: "OB - Observed",
	StatusCodeError:    "ER - Error",
}

// =============================================================================
// Estado de tolerancia (codificación del backend)
// =============================================================================

const (
	ToleranceCodeNoDifference = "1"  // Sin diferencia
	ToleranceCodeWithin       = "0"  // Dentro de tolerancia
	ToleranceCodeOut          = "-1" // Fuera de tolerancia
)

// =============================================================================
// Tipos de mensaje por línea (BAPIRET2-TYPE)
// =============================================================================

const (
	MessageTypeError   = "E"
	MessageTypeWarning = "W"
	MessageTypeSuccess = "S"
	MessageTypeInfo    = "I"
	MessageTypeAbort   = "A"
)
