// Package reference mantiene en caché las listas de referencia del backend
// (centros, grupos de material, estados) y el catálogo de estados SUNAT que
// usa el motor para decidir aprobación.
package reference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/dto"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/repository"
)

// Lists snapshot de las listas de referencia.
type Lists struct {
	MaterialGroups       []entity.ReferenceItem
	SellingPlants        []entity.ReferenceItem
	BuyingPlants         []entity.ReferenceItem
	RegistrationStatuses []entity.ReferenceItem
	ActionStatuses       map[lifecycle.Action][]entity.ActionStatus
	RefreshedAt          time.Time
}

// Service caché de referencias. Seguro para uso concurrente.
type Service struct {
	store         repository.DocumentStore
	approvedLabel string
	log           zerolog.Logger
	now           func() time.Time

	mu      sync.RWMutex
	lists   *Lists
	catalog *lifecycle.StatusCatalog
}

// NewService construye el servicio. approvedLabel es la etiqueta de aprobación
// configurada (TAX_APPROVED_LABEL); vacía usa solo el catálogo.
func NewService(store repository.DocumentStore, approvedLabel string, log zerolog.Logger) *Service {
	return &Service{
		store:         store,
		approvedLabel: approvedLabel,
		log:           log,
		now:           time.Now,
		catalog:       lifecycle.NewStatusCatalog(nil, approvedLabel),
	}
}

// Catalog catálogo de estados vigente. Antes del primer Refresh contiene las
// etiquetas por defecto.
func (s *Service) Catalog() *lifecycle.StatusCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Refresh vuelve a leer todas las listas. Si alguna falla se conserva la caché
// anterior completa.
func (s *Service) Refresh(ctx context.Context) error {
	var (
		l   = &Lists{ActionStatuses: make(map[lifecycle.Action][]entity.ActionStatus, len(lifecycle.Actions))}
		err error
	)
	if l.MaterialGroups, err = s.store.ListMaterialGroups(ctx); err != nil {
		return fmt.Errorf("grupos de material: %w", err)
	}
	if l.SellingPlants, err = s.store.ListSellingPlants(ctx); err != nil {
		return fmt.Errorf("centros vendedores: %w", err)
	}
	if l.BuyingPlants, err = s.store.ListBuyingPlants(ctx); err != nil {
		return fmt.Errorf("centros compradores: %w", err)
	}
	if l.RegistrationStatuses, err = s.store.ListRegistrationStatuses(ctx); err != nil {
		return fmt.Errorf("estados de registro: %w", err)
	}
	var all []entity.ActionStatus
	for _, a := range lifecycle.Actions {
		st, err := s.store.ListActionStatuses(ctx, string(a))
		if err != nil {
			return fmt.Errorf("estados de %s: %w", a, err)
		}
		l.ActionStatuses[a] = st
		all = append(all, st...)
	}
	l.RefreshedAt = s.now()
	catalog := lifecycle.NewStatusCatalog(all, s.approvedLabel)

	s.mu.Lock()
	s.lists = l
	s.catalog = catalog
	s.mu.Unlock()

	s.log.Info().
		Int("material_groups", len(l.MaterialGroups)).
		Int("selling_plants", len(l.SellingPlants)).
		Int("buying_plants", len(l.BuyingPlants)).
		Int("status_labels", catalog.Len()).
		Msg("referencias actualizadas")
	return nil
}

// Lists devuelve la caché; si aún no se cargó, la carga.
func (s *Service) Lists(ctx context.Context) (*Lists, error) {
	s.mu.RLock()
	l := s.lists
	s.mu.RUnlock()
	if l != nil {
		return l, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lists, nil
}

// Get listas en formato de respuesta HTTP.
func (s *Service) Get(ctx context.Context) (*dto.ReferencesResponse, error) {
	l, err := s.Lists(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.ReferencesResponse{
		MaterialGroups:       toItems(l.MaterialGroups),
		SellingPlants:        toItems(l.SellingPlants),
		BuyingPlants:         toItems(l.BuyingPlants),
		RegistrationStatuses: toItems(l.RegistrationStatuses),
		ActionStatuses:       make(map[string][]dto.ActionStatusResponse, len(l.ActionStatuses)),
		RefreshedAt:          l.RefreshedAt,
	}
	for a, sts := range l.ActionStatuses {
		items := make([]dto.ActionStatusResponse, 0, len(sts))
		for _, st := range sts {
			items = append(items, dto.ActionStatusResponse{Code: st.Code, Label: st.Label})
		}
		out.ActionStatuses[string(a)] = items
	}
	return out, nil
}

func toItems(in []entity.ReferenceItem) []dto.ReferenceItemResponse {
	out := make([]dto.ReferenceItemResponse, 0, len(in))
	for _, it := range in {
		out = append(out, dto.ReferenceItemResponse{Key: it.Key, Text: it.Text})
	}
	return out
}
