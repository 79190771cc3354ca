package handlers

import (
	"net/http"
)

// ProviderLister lists registered booking provider names
type ProviderLister interface {
	Names() []string
}

// ProviderHandler exposes the booking adapter registry
type ProviderHandler struct {
	registry ProviderLister
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(registry ProviderLister) *ProviderHandler {
	return &ProviderHandler{registry: registry}
}

// ListProviders handles GET /api/providers
func (h *ProviderHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	if names == nil {
		names = []string{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"providers": names,
	})
}
