package lifecycle

import (
	"fmt"
	"strings"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
)

// SearchFields columnas sobre las que actúa la búsqueda libre.
var SearchFields = []Field{FieldOrderID, FieldMaterial, FieldDescription, FieldInvoiceNumber}

type columnFilter struct {
	field  Field
	op     Operator
	values []string
}

// Composer mantiene los tres grupos de filtro de una vista (pestaña, búsqueda,
// columnas) de forma independiente. Compose arma el filtro efectivo; cambiar un
// grupo nunca toca los otros dos.
//
// No es seguro para uso concurrente: la vista dueña serializa el acceso.
type Composer struct {
	stage   Group
	search  Group
	query   string
	columns []columnFilter
}

// NewComposer crea un composer sin filtros.
func NewComposer() *Composer {
	return &Composer{}
}

// SetStage reemplaza el grupo de pestaña. Solo lo invoca el Router.
func (c *Composer) SetStage(g Group) {
	c.stage = g.clone()
}

// SetSearch reemplaza la búsqueda libre; texto vacío equivale a ClearSearch.
func (c *Composer) SetSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		c.ClearSearch()
		return
	}
	conds := make([]Condition, 0, len(SearchFields))
	for _, f := range SearchFields {
		conds = append(conds, Contains(f, query))
	}
	c.query = query
	c.search = AnyOf(conds...)
}

// ClearSearch elimina la búsqueda libre.
func (c *Composer) ClearSearch() {
	c.query = ""
	c.search = Group{}
}

// SearchQuery texto de búsqueda vigente.
func (c *Composer) SearchQuery() string {
	return c.query
}

// SetColumn reemplaza el filtro de una columna. Con EQ los valores se combinan
// con OR; con NE se excluyen todos (AND). Sin valores equivale a ClearColumn.
func (c *Composer) SetColumn(field Field, op Operator, values ...string) error {
	if op != OpEQ && op != OpNE {
		return fmt.Errorf("%w: filtro de columna solo admite EQ o NE", domain.ErrInvalidInput)
	}
	if _, err := ParseField(string(field)); err != nil {
		return err
	}
	if len(values) == 0 {
		c.ClearColumn(field)
		return nil
	}
	vs := make([]string, len(values))
	copy(vs, values)
	for i := range c.columns {
		if c.columns[i].field == field {
			c.columns[i] = columnFilter{field: field, op: op, values: vs}
			return nil
		}
	}
	c.columns = append(c.columns, columnFilter{field: field, op: op, values: vs})
	return nil
}

// ClearColumn quita el filtro de la columna, si existe.
func (c *Composer) ClearColumn(field Field) {
	out := c.columns[:0:0]
	for _, cf := range c.columns {
		if cf.field != field {
			out = append(out, cf)
		}
	}
	if len(out) == 0 {
		out = nil
	}
	c.columns = out
}

// ClearColumns quita todos los filtros de columna.
func (c *Composer) ClearColumns() {
	c.columns = nil
}

// Compose arma el filtro efectivo como un valor nuevo.
func (c *Composer) Compose() FilterSpec {
	spec := FilterSpec{Stage: c.stage.clone(), Search: c.search.clone()}
	for _, cf := range c.columns {
		conds := make([]Condition, 0, len(cf.values))
		for _, v := range cf.values {
			conds = append(conds, Condition{Field: cf.field, Op: cf.op, Value: v})
		}
		spec.Columns = append(spec.Columns, Group{Conditions: conds, Any: cf.op == OpEQ})
	}
	return spec
}
