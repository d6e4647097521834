package lifecycle

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
)

// Field nombre lógico de una columna de la fila.
type Field string

const (
	FieldOrderID                Field = "orderId"
	FieldLineNo                 Field = "lineNo"
	FieldDelivery               Field = "delivery"
	FieldDeliveryDate           Field = "deliveryDate"
	FieldSellingPlant           Field = "sellingPlant"
	FieldBuyingPlant            Field = "buyingPlant"
	FieldMaterial               Field = "material"
	FieldMaterialGroup          Field = "materialGroup"
	FieldDescription            Field = "description"
	FieldUnit                   Field = "unit"
	FieldQtyShipped             Field = "qtyShipped"
	FieldQtyReceived            Field = "qtyReceived"
	FieldQtyDelta               Field = "qtyDelta"
	FieldAmountShipped          Field = "amountShipped"
	FieldAmountReceived         Field = "amountReceived"
	FieldAmountDelta            Field = "amountDelta"
	FieldTolerance              Field = "toleranceState"
	FieldInvoiceNumber          Field = "invoiceNumber"
	FieldTaxSubmissionStatus    Field = "taxSubmissionStatus"
	FieldTaxReference           Field = "taxReference"
	FieldInvoiceVerificationDoc Field = "invoiceVerificationDoc"
	FieldLastEventMessage       Field = "lastEventMessage"
	FieldRegistrationStatus     Field = "registrationStatus"
	FieldLastAction             Field = "lastAction"
)

var numericFields = map[Field]bool{
	FieldQtyShipped: true, FieldQtyReceived: true, FieldQtyDelta: true,
	FieldAmountShipped: true, FieldAmountReceived: true, FieldAmountDelta: true,
}

// ParseField valida un nombre de columna recibido desde fuera.
func ParseField(s string) (Field, error) {
	f := Field(strings.TrimSpace(s))
	if _, ok := fieldValue(&entity.DeliveryLine{}, f); !ok {
		return "", fmt.Errorf("%w: columna desconocida %q", domain.ErrInvalidInput, s)
	}
	return f, nil
}

// fieldValue devuelve el valor textual de la columna; false si la columna no existe.
func fieldValue(r *entity.DeliveryLine, f Field) (string, bool) {
	switch f {
	case FieldOrderID:
		return r.OrderID, true
	case FieldLineNo:
		return r.LineNo, true
	case FieldDelivery:
		return r.Delivery, true
	case FieldDeliveryDate:
		if r.DeliveryDate.IsZero() {
			return "", true
		}
		return r.DeliveryDate.Format("2006-01-02"), true
	case FieldSellingPlant:
		return r.SellingPlant, true
	case FieldBuyingPlant:
		return r.BuyingPlant, true
	case FieldMaterial:
		return r.Material, true
	case FieldMaterialGroup:
		return r.MaterialGroup, true
	case FieldDescription:
		return r.Description, true
	case FieldUnit:
		return r.Unit, true
	case FieldQtyShipped:
		return r.QtyShipped.String(), true
	case FieldQtyReceived:
		return r.QtyReceived.String(), true
	case FieldQtyDelta:
		return r.QtyDelta.String(), true
	case FieldAmountShipped:
		return r.AmountShipped.String(), true
	case FieldAmountReceived:
		return r.AmountReceived.String(), true
	case FieldAmountDelta:
		return r.AmountDelta.String(), true
	case FieldTolerance:
		return r.Tolerance.String(), true
	case FieldInvoiceNumber:
		return r.InvoiceNumber, true
	case FieldTaxSubmissionStatus:
		return r.TaxSubmissionStatus, true
	case FieldTaxReference:
		return r.TaxReference, true
	case FieldInvoiceVerificationDoc:
		return r.InvoiceVerificationDoc, true
	case FieldLastEventMessage:
		return r.LastEventMessage, true
	case FieldRegistrationStatus:
		return r.RegistrationStatus, true
	case FieldLastAction:
		return r.LastAction, true
	}
	return "", false
}

// Operator operador de comparación (subconjunto de los de OData v2).
type Operator string

const (
	OpEQ       Operator = "EQ"
	OpNE       Operator = "NE"
	OpContains Operator = "Contains"
	OpBT       Operator = "BT"
	OpGE       Operator = "GE"
	OpLE       Operator = "LE"
)

// ParseOperator valida el operador.
func ParseOperator(s string) (Operator, error) {
	for _, op := range []Operator{OpEQ, OpNE, OpContains, OpBT, OpGE, OpLE} {
		if strings.EqualFold(s, string(op)) {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: operador desconocido %q", domain.ErrInvalidInput, s)
}

// Condition predicado sobre una columna. Value2 solo aplica a BT.
type Condition struct {
	Field  Field
	Op     Operator
	Value  string
	Value2 string
}

// Eq, Ne, Contains, Between, Ge y Le construyen condiciones.
func Eq(f Field, v string) Condition       { return Condition{Field: f, Op: OpEQ, Value: v} }
func Ne(f Field, v string) Condition       { return Condition{Field: f, Op: OpNE, Value: v} }
func Contains(f Field, v string) Condition { return Condition{Field: f, Op: OpContains, Value: v} }
func Ge(f Field, v string) Condition       { return Condition{Field: f, Op: OpGE, Value: v} }
func Le(f Field, v string) Condition       { return Condition{Field: f, Op: OpLE, Value: v} }
func Between(f Field, from, to string) Condition {
	return Condition{Field: f, Op: OpBT, Value: from, Value2: to}
}

// Matches evalúa la condición sobre la fila.
func (c Condition) Matches(r *entity.DeliveryLine) bool {
	v, ok := fieldValue(r, c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case OpEQ:
		return compare(c.Field, v, c.Value) == 0
	case OpNE:
		return compare(c.Field, v, c.Value) != 0
	case OpContains:
		return strings.Contains(searchKey(v), searchKey(c.Value))
	case OpGE:
		return compare(c.Field, v, c.Value) >= 0
	case OpLE:
		return compare(c.Field, v, c.Value) <= 0
	case OpBT:
		return compare(c.Field, v, c.Value) >= 0 && compare(c.Field, v, c.Value2) <= 0
	}
	return false
}

// searchKey forma comparable de un texto de búsqueda: sin tildes ni
// mayúsculas ("Descripción" y "DESCRIPCION" coinciden).
func searchKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	return cases.Fold().String(plain)
}

// compare compara numéricamente las columnas de cantidades/importes y
// lexicográficamente el resto (las fechas van en yyyy-MM-dd).
func compare(f Field, a, b string) int {
	if numericFields[f] {
		da, errA := decimal.NewFromString(a)
		db, errB := decimal.NewFromString(strings.TrimSpace(b))
		if errA == nil && errB == nil {
			return da.Cmp(db)
		}
	}
	return strings.Compare(a, b)
}

// Group conjunto de condiciones: OR si Any, AND en caso contrario.
// Un grupo vacío no filtra.
type Group struct {
	Conditions []Condition
	Any        bool
}

// AllOf y AnyOf construyen grupos.
func AllOf(cs ...Condition) Group { return Group{Conditions: cs} }
func AnyOf(cs ...Condition) Group { return Group{Conditions: cs, Any: true} }

// Empty indica si el grupo no tiene condiciones.
func (g Group) Empty() bool { return len(g.Conditions) == 0 }

// Matches evalúa el grupo.
func (g Group) Matches(r *entity.DeliveryLine) bool {
	if g.Empty() {
		return true
	}
	for _, c := range g.Conditions {
		m := c.Matches(r)
		if g.Any && m {
			return true
		}
		if !g.Any && !m {
			return false
		}
	}
	return !g.Any
}

func (g Group) clone() Group {
	if g.Conditions == nil {
		return Group{Any: g.Any}
	}
	cs := make([]Condition, len(g.Conditions))
	copy(cs, g.Conditions)
	return Group{Conditions: cs, Any: g.Any}
}

// FilterSpec filtro combinado de la vista: pestaña AND búsqueda AND columnas.
// Es un valor: quien lo recibe no comparte memoria con el Composer.
type FilterSpec struct {
	Stage   Group
	Search  Group
	Columns []Group
}

// Groups devuelve los grupos no vacíos en orden pestaña, búsqueda, columnas.
func (s FilterSpec) Groups() []Group {
	out := make([]Group, 0, 2+len(s.Columns))
	for _, g := range append([]Group{s.Stage, s.Search}, s.Columns...) {
		if !g.Empty() {
			out = append(out, g)
		}
	}
	return out
}

// Empty indica si el filtro deja pasar todo.
func (s FilterSpec) Empty() bool {
	return len(s.Groups()) == 0
}

// Matches aplica el AND de todos los grupos.
func (s FilterSpec) Matches(r *entity.DeliveryLine) bool {
	for _, g := range s.Groups() {
		if !g.Matches(r) {
			return false
		}
	}
	return true
}

// Apply devuelve las filas que cumplen el filtro, en el mismo orden.
func (s FilterSpec) Apply(rows []*entity.DeliveryLine) []*entity.DeliveryLine {
	out := make([]*entity.DeliveryLine, 0, len(rows))
	for _, r := range rows {
		if s.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
