package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/planbar-app/planbar/internal/model"
	"github.com/planbar-app/planbar/internal/schedule"
	"github.com/planbar-app/planbar/internal/storage"
)

// CalendarHandler renders the week view: six days, hour slots classified as
// booked, buffer, or free, plus the enriched bookings of the week.
type CalendarHandler struct {
	bookings  *storage.BookingRepository
	refs      *storage.ReferenceRepository
	logger    *slog.Logger
	startHour int
	endHour   int
	buffer    time.Duration
}

func NewCalendarHandler(bookings *storage.BookingRepository, refs *storage.ReferenceRepository, logger *slog.Logger, startHour, endHour int, buffer time.Duration) *CalendarHandler {
	return &CalendarHandler{
		bookings:  bookings,
		refs:      refs,
		logger:    logger,
		startHour: startHour,
		endHour:   endHour,
		buffer:    buffer,
	}
}

type slotItem struct {
	StartTime string `json:"start_time"`
	Booked    bool   `json:"booked"`
	Buffer    bool   `json:"buffer"`
	BookingID string `json:"booking_id,omitempty"`
}

type dayItem struct {
	Date  string     `json:"date"`
	Slots []slotItem `json:"slots"`
}

type weekBookingItem struct {
	BookingID   string `json:"booking_id"`
	Title       string `json:"title"`
	ClientName  string `json:"client_name"`
	ProjectName string `json:"project_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type weekResponse struct {
	Days     []dayItem         `json:"days"`
	Bookings []weekBookingItem `json:"bookings"`
}

func (h *CalendarHandler) Week(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ref := time.Now().UTC()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			http.Error(w, "invalid date (want YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		ref = parsed
	}

	week := schedule.WeekDates(ref)
	windowStart := week[0]
	windowEnd := week[len(week)-1].AddDate(0, 0, 1)

	ctx := r.Context()
	records, err := h.bookings.ListBetween(ctx, windowStart, windowEnd)
	if err != nil {
		http.Error(w, "failed to load bookings", http.StatusInternalServerError)
		return
	}
	clients, err := h.refs.ListClients(ctx)
	if err != nil {
		http.Error(w, "failed to load clients", http.StatusInternalServerError)
		return
	}
	projects, err := h.refs.ListProjects(ctx)
	if err != nil {
		http.Error(w, "failed to load projects", http.StatusInternalServerError)
		return
	}

	enriched := schedule.BookingsForWeek(week, records, clients, projects)

	days := make([]dayItem, 0, len(week))
	for _, day := range week {
		slots := schedule.DaySlots(day, h.startHour, h.endHour)
		items := make([]slotItem, 0, len(slots))
		for _, s := range slots {
			status := schedule.ClassifySlot(s, h.buffer, enriched)
			item := slotItem{
				StartTime: s.UTC().Format(time.RFC3339),
				Booked:    status.Booked,
				Buffer:    status.Buffer,
			}
			if status.Booking != nil {
				item.BookingID = status.Booking.ID
			}
			items = append(items, item)
		}
		days = append(days, dayItem{Date: day.Format("2006-01-02"), Slots: items})
	}

	writeJSON(w, http.StatusOK, weekResponse{
		Days:     days,
		Bookings: weekBookingItems(enriched),
	})
}

func weekBookingItems(bookings []model.Booking) []weekBookingItem {
	items := make([]weekBookingItem, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, weekBookingItem{
			BookingID:   b.ID,
			Title:       b.Title,
			ClientName:  b.ClientName,
			ProjectName: b.ProjectName,
			StartTime:   b.Start.UTC().Format(time.RFC3339),
			EndTime:     b.End.UTC().Format(time.RFC3339),
		})
	}
	return items
}
