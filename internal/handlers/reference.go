package handlers

import (
	"log/slog"
	"net/http"

	"github.com/planbar-app/planbar/internal/billing"
	"github.com/planbar-app/planbar/internal/model"
	"github.com/planbar-app/planbar/internal/storage"
)

// ReferenceHandler lists the CRM-synced clients and projects.
type ReferenceHandler struct {
	refs   *storage.ReferenceRepository
	logger *slog.Logger
}

func NewReferenceHandler(refs *storage.ReferenceRepository, logger *slog.Logger) *ReferenceHandler {
	return &ReferenceHandler{refs: refs, logger: logger}
}

type clientItem struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
}

type projectItem struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	ClientID    string `json:"client_id"`
	BillingType string `json:"billing_type"`
	PackageTier string `json:"package_tier,omitempty"`
	// NominalRate is the rate a project starts at; package projects may be
	// billed lower once lifetime hours accrue.
	NominalRate float64 `json:"nominal_rate"`
}

func (h *ReferenceHandler) Clients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	clients, err := h.refs.ListClients(r.Context())
	if err != nil {
		http.Error(w, "failed to list clients", http.StatusInternalServerError)
		return
	}
	items := make([]clientItem, 0, len(clients))
	for _, c := range clients {
		items = append(items, clientItem{ClientID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReferenceHandler) Projects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	projects, err := h.refs.ListProjects(r.Context())
	if err != nil {
		http.Error(w, "failed to list projects", http.StatusInternalServerError)
		return
	}
	items := make([]projectItem, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectItem{
			ProjectID:   p.ID,
			Name:        p.Name,
			ClientID:    p.ClientID,
			BillingType: p.BillingType,
			PackageTier: p.PackageTier,
			NominalRate: nominalRate(p),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func nominalRate(p model.Project) float64 {
	if p.BillingType == model.BillingCustom {
		return p.CustomRate
	}
	return billing.TierRate(p.PackageTier)
}
