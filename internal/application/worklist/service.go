// Package worklist orquesta las vistas de trabajo del operador: lectura de
// líneas, pestañas, filtros, selección y el envío de acciones como lotes al
// backend con conciliación de la respuesta.
package worklist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/dto"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/repository"
)

// CatalogSource entrega el catálogo de estados SUNAT vigente.
type CatalogSource interface {
	Catalog() *lifecycle.StatusCatalog
}

// Options parámetros de las vistas.
type Options struct {
	ConfirmationTTL time.Duration
	IdleTimeout     time.Duration
}

// Service casos de uso de las vistas de trabajo. Las vistas viven en memoria.
type Service struct {
	store   repository.DocumentStore
	audit   repository.BatchAuditRepository
	catalog CatalogSource
	opts    Options
	log     zerolog.Logger
	now     func() time.Time

	mu    sync.Mutex
	views map[string]*View
}

// NewService construye el servicio. audit puede ser nil (sin bitácora).
func NewService(
	store repository.DocumentStore,
	audit repository.BatchAuditRepository,
	catalog CatalogSource,
	opts Options,
	log zerolog.Logger,
) *Service {
	if audit == nil {
		audit = nopAudit{}
	}
	if opts.ConfirmationTTL <= 0 {
		opts.ConfirmationTTL = 5 * time.Minute
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Minute
	}
	return &Service{
		store:   store,
		audit:   audit,
		catalog: catalog,
		opts:    opts,
		log:     log,
		now:     time.Now,
		views:   make(map[string]*View),
	}
}

// SetClock reemplaza el reloj (tests).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ═══════════════════════════════════════════════════════════════════════════════
// Sesiones
// ═══════════════════════════════════════════════════════════════════════════════

// OpenView crea una vista vacía en la pestaña inicial.
func (s *Service) OpenView(owner string) *dto.ViewResponse {
	v := newView(uuid.New().String(), owner, s.now())
	s.mu.Lock()
	s.views[v.id] = v
	s.mu.Unlock()
	s.log.Debug().Str("view_id", v.id).Str("owner", owner).Msg("vista abierta")
	return toViewResponse(v, s.now())
}

// CloseView elimina la vista.
func (s *Service) CloseView(viewID, owner string) error {
	v, err := s.acquire(viewID, owner)
	if err != nil {
		return err
	}
	defer v.mu.Unlock()
	s.discard(v)
	return nil
}

// SweepIdle cierra las vistas sin uso por más de IdleTimeout y descarta las
// confirmaciones vencidas. Devuelve cuántas vistas se cerraron.
func (s *Service) SweepIdle() int {
	now := s.now()
	s.mu.Lock()
	views := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.Unlock()

	closed := 0
	for _, v := range views {
		// La decisión y el borrado ocurren bajo v.mu: una petición que ya
		// obtuvo la vista la encuentra cerrada en lugar de usarla.
		v.mu.Lock()
		if v.pending != nil && now.After(v.pending.expiresAt) {
			v.pending = nil
		}
		if !v.closed && !v.inFlight && now.Sub(v.lastUsed) > s.opts.IdleTimeout {
			s.discard(v)
			closed++
		}
		v.mu.Unlock()
	}
	if closed > 0 {
		s.log.Info().Int("closed", closed).Msg("vistas inactivas cerradas")
	}
	return closed
}

// lookup obtiene la vista verificando que pertenezca al usuario.
func (s *Service) lookup(viewID, owner string) (*View, error) {
	s.mu.Lock()
	v, ok := s.views[viewID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: vista %s", domain.ErrNotFound, viewID)
	}
	if v.owner != owner {
		return nil, fmt.Errorf("%w: la vista pertenece a otro usuario", domain.ErrForbidden)
	}
	return v, nil
}

// acquire obtiene la vista con v.mu tomado y marca el uso. El llamador libera mu.
func (s *Service) acquire(viewID, owner string) (*View, error) {
	v, err := s.lookup(viewID, owner)
	if err != nil {
		return nil, err
	}
	if err := s.lockOpen(v); err != nil {
		return nil, err
	}
	return v, nil
}

// lockOpen toma v.mu si la vista sigue abierta.
func (s *Service) lockOpen(v *View) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return fmt.Errorf("%w: vista %s", domain.ErrNotFound, v.id)
	}
	v.lastUsed = s.now()
	return nil
}

// discard marca la vista cerrada y la quita del mapa. Requiere v.mu tomado.
func (s *Service) discard(v *View) {
	v.closed = true
	v.pending = nil
	s.mu.Lock()
	delete(s.views, v.id)
	s.mu.Unlock()
}

// withView ejecuta fn con la vista bloqueada y marca el uso.
func (s *Service) withView(viewID, owner string, fn func(v *View) error) error {
	v, err := s.acquire(viewID, owner)
	if err != nil {
		return err
	}
	defer v.mu.Unlock()
	return fn(v)
}

// View estado de la vista.
func (s *Service) View(viewID, owner string) (*dto.ViewResponse, error) {
	var out *dto.ViewResponse
	err := s.withView(viewID, owner, func(v *View) error {
		out = toViewResponse(v, s.now())
		return nil
	})
	return out, err
}

// ═══════════════════════════════════════════════════════════════════════════════
// Lectura
// ═══════════════════════════════════════════════════════════════════════════════

// Query lee las líneas del backend y reemplaza las filas de la vista. Los
// registros que no se pueden normalizar se descartan con un log. La selección y
// cualquier confirmación pendiente se pierden.
func (s *Service) Query(ctx context.Context, viewID, owner string, in dto.QueryRequest) (*dto.QueryResponse, error) {
	q, err := toDocumentQuery(in)
	if err != nil {
		return nil, err
	}
	v, err := s.acquire(viewID, owner)
	if err != nil {
		return nil, err
	}
	busy := v.inFlight
	v.mu.Unlock()
	if busy {
		return nil, domain.ErrBatchInFlight
	}

	raws, err := s.store.QueryLines(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	catalog := s.catalog.Catalog()
	rows := make([]*entity.DeliveryLine, 0, len(raws))
	rejected := 0
	for _, raw := range raws {
		row, err := lifecycle.NormalizeRow(raw, catalog)
		if err != nil {
			rejected++
			s.log.Warn().Err(err).Str("view_id", viewID).Msg("registro descartado")
			continue
		}
		rows = append(rows, row)
	}

	var out *dto.QueryResponse
	err = s.withView(viewID, owner, func(v *View) error {
		if v.inFlight {
			return domain.ErrBatchInFlight
		}
		v.rows = rows
		v.query = q
		v.queried = true
		v.header = entity.BatchHeader{
			SellingPlant:  q.SellingPlant,
			BuyingPlant:   q.BuyingPlant,
			MaterialGroup: q.MaterialGroup,
		}
		v.pending = nil
		v.setSelection(nil)
		out = &dto.QueryResponse{Loaded: len(rows), Rejected: rejected, View: *toViewResponse(v, s.now())}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("view_id", viewID).Int("loaded", len(rows)).Int("rejected", rejected).Msg("líneas leídas")
	return out, nil
}

func toDocumentQuery(in dto.QueryRequest) (repository.DocumentQuery, error) {
	from, err := time.Parse("2006-01-02", in.DateFrom)
	if err != nil {
		return repository.DocumentQuery{}, fmt.Errorf("%w: fecha desde %q", domain.ErrInvalidInput, in.DateFrom)
	}
	to, err := time.Parse("2006-01-02", in.DateTo)
	if err != nil {
		return repository.DocumentQuery{}, fmt.Errorf("%w: fecha hasta %q", domain.ErrInvalidInput, in.DateTo)
	}
	if to.Before(from) {
		return repository.DocumentQuery{}, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	return repository.DocumentQuery{
		SellingPlant:         strings.TrimSpace(in.SellingPlant),
		BuyingPlant:          strings.TrimSpace(in.BuyingPlant),
		MaterialGroup:        strings.TrimSpace(in.MaterialGroup),
		DateFrom:             from,
		DateTo:               to,
		RegistrationStatuses: in.RegistrationStatuses,
		ActionStatuses:       in.ActionStatuses,
	}, nil
}

// Rows filas visibles con el filtro vigente.
func (s *Service) Rows(viewID, owner string) (*dto.RowListResponse, error) {
	var out *dto.RowListResponse
	err := s.withView(viewID, owner, func(v *View) error {
		visible := v.visible()
		out = &dto.RowListResponse{Items: make([]dto.RowResponse, 0, len(visible)), Total: len(visible)}
		for _, r := range visible {
			out.Items = append(out.Items, toRowResponse(r, v.isSelected(r)))
		}
		return nil
	})
	return out, err
}

// ═══════════════════════════════════════════════════════════════════════════════
// Pestañas, filtros y selección
// ═══════════════════════════════════════════════════════════════════════════════

// SelectStage cambia de pestaña. La selección vuelve a cero y todas las
// acciones quedan deshabilitadas.
func (s *Service) SelectStage(viewID, owner, stage string) (*dto.ViewResponse, error) {
	st, err := lifecycle.ParseStage(stage)
	if err != nil {
		return nil, err
	}
	var out *dto.ViewResponse
	err = s.withView(viewID, owner, func(v *View) error {
		v.router.Select(st)
		v.selected = nil
		v.pending = nil
		out = toViewResponse(v, s.now())
		return nil
	})
	return out, err
}

// Search fija la búsqueda libre; texto vacío la quita.
func (s *Service) Search(viewID, owner, query string) (*dto.ViewResponse, error) {
	var out *dto.ViewResponse
	err := s.withView(viewID, owner, func(v *View) error {
		v.composer.SetSearch(query)
		v.pruneSelection()
		out = toViewResponse(v, s.now())
		return nil
	})
	return out, err
}

// ClearSearch quita la búsqueda libre.
func (s *Service) ClearSearch(viewID, owner string) (*dto.ViewResponse, error) {
	return s.Search(viewID, owner, "")
}

// SetColumn fija el filtro de una columna.
func (s *Service) SetColumn(viewID, owner, field string, in dto.ColumnFilterRequest) (*dto.ViewResponse, error) {
	f, err := lifecycle.ParseField(field)
	if err != nil {
		return nil, err
	}
	op, err := lifecycle.ParseOperator(in.Operator)
	if err != nil {
		return nil, err
	}
	var out *dto.ViewResponse
	err = s.withView(viewID, owner, func(v *View) error {
		if err := v.composer.SetColumn(f, op, in.Values...); err != nil {
			return err
		}
		v.pruneSelection()
		out = toViewResponse(v, s.now())
		return nil
	})
	return out, err
}

// ClearColumn quita el filtro de una columna.
func (s *Service) ClearColumn(viewID, owner, field string) (*dto.ViewResponse, error) {
	f, err := lifecycle.ParseField(field)
	if err != nil {
		return nil, err
	}
	var out *dto.ViewResponse
	err = s.withView(viewID, owner, func(v *View) error {
		v.composer.ClearColumn(f)
		v.pruneSelection()
		out = toViewResponse(v, s.now())
		return nil
	})
	return out, err
}

// Select reemplaza la selección por las claves pedido/posición indicadas, en
// ese orden. Solo se pueden marcar filas visibles.
func (s *Service) Select(viewID, owner string, keys []string) (*dto.ViewResponse, error) {
	var out *dto.ViewResponse
	err := s.withView(viewID, owner, func(v *View) error {
		if len(keys) > 0 && v.router.Current().Selection == lifecycle.SelectionNone {
			return fmt.Errorf("%w: la pestaña %s no permite selección", domain.ErrInvalidInput, v.router.Current().Stage)
		}
		byKey := make(map[string]*entity.DeliveryLine)
		for _, r := range v.visible() {
			byKey[r.Key()] = r
		}
		picked := make([]*entity.DeliveryLine, 0, len(keys))
		seen := make(map[string]bool, len(keys))
		for _, k := range keys {
			k = strings.TrimSpace(k)
			r, ok := byKey[k]
			if !ok {
				return fmt.Errorf("%w: la fila %s no está visible", domain.ErrInvalidInput, k)
			}
			if seen[k] {
				return fmt.Errorf("%w: la fila %s está repetida", domain.ErrInvalidInput, k)
			}
			seen[k] = true
			picked = append(picked, r)
		}
		v.pending = nil
		v.setSelection(picked)
		out = toViewResponse(v, s.now())
		return nil
	})
	return out, err
}

// Notifications notificaciones del último lote de la vista.
func (s *Service) Notifications(viewID, owner string) (*dto.NotificationListResponse, error) {
	var out *dto.NotificationListResponse
	err := s.withView(viewID, owner, func(v *View) error {
		id, notes := v.board.Latest()
		out = &dto.NotificationListResponse{BatchID: id, Items: toNotificationResponses(notes)}
		return nil
	})
	return out, err
}
