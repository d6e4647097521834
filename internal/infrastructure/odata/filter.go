package odata

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
)

// properties propiedad del modelo OData por columna del motor.
var properties = map[lifecycle.Field]string{
	lifecycle.FieldOrderID:                "Pedido",
	lifecycle.FieldLineNo:                 "Posicion",
	lifecycle.FieldDelivery:               "Entrega",
	lifecycle.FieldDeliveryDate:           "FechaEntrega",
	lifecycle.FieldSellingPlant:           "CentroSum",
	lifecycle.FieldBuyingPlant:            "CentroRecep",
	lifecycle.FieldMaterial:               "Material",
	lifecycle.FieldMaterialGroup:          "GrupoMaterial",
	lifecycle.FieldDescription:            "Descripcion",
	lifecycle.FieldUnit:                   "Unidad",
	lifecycle.FieldQtyShipped:             "CantSal",
	lifecycle.FieldQtyReceived:            "CantEnt",
	lifecycle.FieldQtyDelta:               "DifCant",
	lifecycle.FieldAmountShipped:          "ImpSal",
	lifecycle.FieldAmountReceived:         "ImpEnt",
	lifecycle.FieldAmountDelta:            "DifImp",
	lifecycle.FieldTolerance:              "Tolerancia",
	lifecycle.FieldInvoiceNumber:          "Factura",
	lifecycle.FieldTaxSubmissionStatus:    "StatusEnvioSunat",
	lifecycle.FieldTaxReference:           "Referencia",
	lifecycle.FieldInvoiceVerificationDoc: "DocMiro",
	lifecycle.FieldLastEventMessage:       "Mensaje",
	lifecycle.FieldRegistrationStatus:     "StatusRegistro",
	lifecycle.FieldLastAction:             "UltimaAccion",
}

// RenderFilter traduce el filtro a la sintaxis $filter de OData v2. Los grupos
// se unen con "and"; dentro de un grupo se usa "or" u "and" según Any. Las
// condiciones sobre columnas sin propiedad se omiten.
func RenderFilter(spec lifecycle.FilterSpec) string {
	var parts []string
	for _, g := range spec.Groups() {
		if s := renderGroup(g); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " and ")
}

func renderGroup(g lifecycle.Group) string {
	var conds []string
	for _, c := range g.Conditions {
		if s := renderCondition(c); s != "" {
			conds = append(conds, s)
		}
	}
	switch len(conds) {
	case 0:
		return ""
	case 1:
		return conds[0]
	}
	sep := " and "
	if g.Any {
		sep = " or "
	}
	return "(" + strings.Join(conds, sep) + ")"
}

func renderCondition(c lifecycle.Condition) string {
	prop, ok := properties[c.Field]
	if !ok {
		return ""
	}
	lit := func(v string) string { return literal(c.Field, v) }
	switch c.Op {
	case lifecycle.OpEQ:
		return prop + " eq " + lit(c.Value)
	case lifecycle.OpNE:
		return prop + " ne " + lit(c.Value)
	case lifecycle.OpContains:
		return "substringof(" + quote(c.Value) + "," + prop + ")"
	case lifecycle.OpGE:
		return prop + " ge " + lit(c.Value)
	case lifecycle.OpLE:
		return prop + " le " + lit(c.Value)
	case lifecycle.OpBT:
		return "(" + prop + " ge " + lit(c.Value) + " and " + prop + " le " + lit(c.Value2) + ")"
	}
	return ""
}

// literal formatea el valor según el tipo Edm de la propiedad.
func literal(f lifecycle.Field, v string) string {
	switch f {
	case lifecycle.FieldDeliveryDate:
		if len(v) == len("2006-01-02") {
			return "datetime'" + v + "T00:00:00'"
		}
	case lifecycle.FieldQtyShipped, lifecycle.FieldQtyReceived, lifecycle.FieldQtyDelta,
		lifecycle.FieldAmountShipped, lifecycle.FieldAmountReceived, lifecycle.FieldAmountDelta:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d.String() + "M"
		}
	}
	return quote(v)
}

// quote literal de texto con comillas simples duplicadas.
func quote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
