package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/planbar-app/planbar/internal/billing"
	"github.com/planbar-app/planbar/internal/invoicing"
	"github.com/planbar-app/planbar/internal/storage"
)

// ReportHandler exposes the billing rollups: lifetime project cost, monthly
// per-client metrics, and the Stripe draft-invoice push.
type ReportHandler struct {
	bookings *storage.BookingRepository
	refs     *storage.ReferenceRepository
	rates    billing.RateTable
	invoicer *invoicing.Service
	logger   *slog.Logger
}

func NewReportHandler(bookings *storage.BookingRepository, refs *storage.ReferenceRepository, rates billing.RateTable, invoicer *invoicing.Service, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		bookings: bookings,
		refs:     refs,
		rates:    rates,
		invoicer: invoicer,
		logger:   logger,
	}
}

type projectCostResponse struct {
	ProjectID    string  `json:"project_id"`
	ProjectName  string  `json:"project_name"`
	TotalHours   float64 `json:"total_hours"`
	PricePerHour float64 `json:"price_per_hour"`
	TotalAmount  float64 `json:"total_amount"`
}

type clientMetricItem struct {
	TotalHours   float64 `json:"total_hours"`
	PricePerHour float64 `json:"price_per_hour"`
	TotalAmount  float64 `json:"total_amount"`
}

type monthlyReportResponse struct {
	Month   string                      `json:"month"`
	Clients map[string]clientMetricItem `json:"clients"`
}

func (h *ReportHandler) ProjectCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
	if projectID == "" {
		http.Error(w, "project_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	project, err := h.refs.GetProject(ctx, projectID)
	if err != nil {
		if storage.IsNotFound(err) {
			h.logger.Warn("project cost requested for unknown project", "project_id", projectID)
			http.Error(w, "project not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load project", http.StatusInternalServerError)
		return
	}

	all, err := h.bookings.ListByProject(ctx, projectID)
	if err != nil {
		http.Error(w, "failed to load bookings", http.StatusInternalServerError)
		return
	}

	cost, err := h.rates.ProjectCost(all, &project)
	if err != nil {
		http.Error(w, "failed to compute project cost", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, projectCostResponse{
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		TotalHours:   cost.TotalHours,
		PricePerHour: cost.PricePerHour,
		TotalAmount:  cost.TotalAmount,
	})
}

func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		http.Error(w, "invalid month (want YYYY-MM)", http.StatusBadRequest)
		return
	}

	metrics, err := h.computeMonthly(r, month)
	if err != nil {
		http.Error(w, "failed to compute monthly report", http.StatusInternalServerError)
		return
	}

	items := make(map[string]clientMetricItem, len(metrics))
	for name, m := range metrics {
		items[name] = clientMetricItem{
			TotalHours:   m.TotalHours,
			PricePerHour: m.PricePerHour,
			TotalAmount:  m.TotalAmount,
		}
	}
	writeJSON(w, http.StatusOK, monthlyReportResponse{
		Month:   month.Format("2006-01"),
		Clients: items,
	})
}

func (h *ReportHandler) PushInvoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.invoicer == nil || !h.invoicer.Enabled() {
		http.Error(w, "stripe invoicing not configured", http.StatusServiceUnavailable)
		return
	}

	month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		http.Error(w, "invalid month (want YYYY-MM)", http.StatusBadRequest)
		return
	}

	metrics, err := h.computeMonthly(r, month)
	if err != nil {
		http.Error(w, "failed to compute monthly report", http.StatusInternalServerError)
		return
	}
	clients, err := h.refs.ListClients(r.Context())
	if err != nil {
		http.Error(w, "failed to load clients", http.StatusInternalServerError)
		return
	}

	results, err := h.invoicer.PushMonth(month, metrics, clients)
	if err != nil {
		h.logger.Error("invoice push failed", "err", err, "month", month.Format("2006-01"))
		http.Error(w, "invoice push failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":    month.Format("2006-01"),
		"invoices": results,
	})
}

func (h *ReportHandler) computeMonthly(r *http.Request, month time.Time) (map[string]billing.ClientMetric, error) {
	ctx := r.Context()
	// Lifetime history, not just the target month: package rates depend on
	// cumulative hours across all months.
	bookings, err := h.bookings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := h.refs.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := h.refs.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return h.rates.MonthlyClientMetrics(bookings, projects, clients, month), nil
}

func parseMonth(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.ParseInLocation("2006-01", raw, time.UTC)
}
