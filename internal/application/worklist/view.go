package worklist

import (
	"sync"
	"time"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/repository"
)

// View sesión de trabajo de un operador: filas leídas, filtros, pestaña,
// selección y notificaciones. Todo acceso pasa por mu; durante la llamada al
// backend mu se libera e inFlight bloquea un segundo envío.
type View struct {
	mu sync.Mutex

	id        string
	owner     string
	createdAt time.Time
	lastUsed  time.Time

	composer *lifecycle.Composer
	router   *lifecycle.Router
	board    *lifecycle.Board

	header  entity.BatchHeader
	query   repository.DocumentQuery
	queried bool
	rows    []*entity.DeliveryLine
	// selected en el orden en que se marcaron; siempre un subconjunto de rows.
	selected []*entity.DeliveryLine

	inFlight bool
	pending  *pendingAction
	// closed la vista ya salió del mapa (cierre o inactividad).
	closed bool
}

// pendingAction acción detenida esperando que el operador confirme que se
// descarten las filas no elegibles.
type pendingAction struct {
	token     string
	action    lifecycle.Action
	period    lifecycle.Period
	eligible  []*entity.DeliveryLine
	skipped   []lifecycle.Skipped
	expiresAt time.Time
}

func newView(id, owner string, now time.Time) *View {
	c := lifecycle.NewComposer()
	return &View{
		id:        id,
		owner:     owner,
		createdAt: now,
		lastUsed:  now,
		composer:  c,
		router:    lifecycle.NewRouter(c),
		board:     lifecycle.NewBoard(),
	}
}

// visible filas que pasan el filtro vigente, en el orden leído.
func (v *View) visible() []*entity.DeliveryLine {
	return v.composer.Compose().Apply(v.rows)
}

// setSelection reemplaza la selección y actualiza las acciones habilitadas.
// Una confirmación pendiente solo vale para la selección que la originó.
func (v *View) setSelection(rows []*entity.DeliveryLine) {
	if v.router.Current().Selection == lifecycle.SelectionNone {
		rows = nil
	}
	if !sameRows(v.selected, rows) {
		v.pending = nil
	}
	v.selected = rows
	v.router.UpdateSelection(len(rows))
}

func sameRows(a, b []*entity.DeliveryLine) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// pruneSelection quita de la selección las filas que dejaron de verse.
func (v *View) pruneSelection() {
	if len(v.selected) == 0 {
		return
	}
	shown := make(map[*entity.DeliveryLine]bool)
	for _, r := range v.visible() {
		shown[r] = true
	}
	kept := v.selected[:0:0]
	for _, r := range v.selected {
		if shown[r] {
			kept = append(kept, r)
		}
	}
	v.setSelection(kept)
}

func (v *View) isSelected(r *entity.DeliveryLine) bool {
	for _, s := range v.selected {
		if s == r {
			return true
		}
	}
	return false
}
