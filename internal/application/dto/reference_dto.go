package dto

import "time"

// ReferenceItemResponse elemento de una lista de referencia.
type ReferenceItemResponse struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// ActionStatusResponse estado posible de una acción.
type ActionStatusResponse struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// ReferencesResponse listas de referencia en caché.
type ReferencesResponse struct {
	MaterialGroups       []ReferenceItemResponse           `json:"material_groups"`
	SellingPlants        []ReferenceItemResponse           `json:"selling_plants"`
	BuyingPlants         []ReferenceItemResponse           `json:"buying_plants"`
	RegistrationStatuses []ReferenceItemResponse           `json:"registration_statuses"`
	ActionStatuses       map[string][]ActionStatusResponse `json:"action_statuses"`
	RefreshedAt          time.Time                         `json:"refreshed_at"`
}
