package schedule

import (
	"testing"
	"time"

	"github.com/planbar-app/planbar/internal/model"
)

func TestWeekDates_MidweekReference(t *testing.T) {
	// Wednesday 2026-02-04.
	ref := time.Date(2026, 2, 4, 15, 30, 0, 0, time.UTC)
	dates := WeekDates(ref)

	if len(dates) != 6 {
		t.Fatalf("expected 6 dates, got %d", len(dates))
	}
	if !dates[0].Equal(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Monday 2026-02-02, got %s", dates[0].Format(time.RFC3339))
	}
	if !dates[5].Equal(time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Saturday 2026-02-07, got %s", dates[5].Format(time.RFC3339))
	}
	for _, d := range dates {
		if d.Weekday() == time.Sunday {
			t.Fatalf("week dates must not contain a Sunday, got %s", d.Format(time.RFC3339))
		}
	}
}

func TestWeekDates_SundayBelongsToPreviousWeek(t *testing.T) {
	// Sunday 2026-02-08 is in the ISO week starting Monday 2026-02-02.
	ref := time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC)
	dates := WeekDates(ref)
	if !dates[0].Equal(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Monday 2026-02-02, got %s", dates[0].Format(time.RFC3339))
	}
}

func TestDaySlots_Defaults(t *testing.T) {
	day := time.Date(2026, 2, 2, 11, 47, 13, 0, time.UTC)
	slots := DaySlots(day, DefaultStartHour, DefaultEndHour)

	if len(slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(slots))
	}
	if !slots[0].Equal(time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected first slot 09:00, got %s", slots[0].Format(time.RFC3339))
	}
	if !slots[9].Equal(time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected last slot 18:00, got %s", slots[9].Format(time.RFC3339))
	}
	for _, s := range slots {
		if s.Minute() != 0 || s.Second() != 0 {
			t.Fatalf("slot not hour-aligned: %s", s.Format(time.RFC3339))
		}
	}
}

func TestDaySlots_InvertedBounds(t *testing.T) {
	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	if slots := DaySlots(day, 18, 9); slots != nil {
		t.Fatalf("expected no slots for inverted bounds, got %d", len(slots))
	}
}

func TestClassifySlot_BookedBufferFree(t *testing.T) {
	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	bookings := []model.Booking{
		{ID: "b1", Start: day.Add(14 * time.Hour), End: day.Add(16 * time.Hour)},
	}

	cases := []struct {
		hour   int
		booked bool
		buffer bool
	}{
		{12, false, false},
		{13, false, true},
		{14, true, false},
		{15, true, false},
		{16, false, true},
		{17, false, false},
	}
	for _, tc := range cases {
		slot := ClassifySlot(day.Add(time.Duration(tc.hour)*time.Hour), DefaultBuffer, bookings)
		if slot.Booked != tc.booked || slot.Buffer != tc.buffer {
			t.Fatalf("slot %02d:00: got booked=%v buffer=%v, want booked=%v buffer=%v",
				tc.hour, slot.Booked, slot.Buffer, tc.booked, tc.buffer)
		}
		if (tc.booked || tc.buffer) && slot.Booking == nil {
			t.Fatalf("slot %02d:00: expected booking attached", tc.hour)
		}
		if !tc.booked && !tc.buffer && slot.Booking != nil {
			t.Fatalf("slot %02d:00: expected no booking attached", tc.hour)
		}
	}
}

func TestClassifySlot_NoBookings(t *testing.T) {
	slot := ClassifySlot(time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC), DefaultBuffer, nil)
	if slot.Booked || slot.Buffer || slot.Booking != nil {
		t.Fatalf("expected free slot, got %+v", slot)
	}
}

func TestClassifySlot_ContainedBooking(t *testing.T) {
	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	bookings := []model.Booking{
		{ID: "b1", Start: day.Add(10*time.Hour + 15*time.Minute), End: day.Add(10*time.Hour + 45*time.Minute)},
	}
	slot := ClassifySlot(day.Add(10*time.Hour), DefaultBuffer, bookings)
	if !slot.Booked {
		t.Fatalf("expected slot containing a short booking to be booked")
	}
}

func TestClassifySlot_EarliestBookingWinsOverlappingBuffers(t *testing.T) {
	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	// Both bookings put a buffer zone on the 12:00 slot. Listed out of
	// order on purpose: classification must not depend on input order.
	bookings := []model.Booking{
		{ID: "later", Start: day.Add(13 * time.Hour), End: day.Add(14 * time.Hour)},
		{ID: "earlier", Start: day.Add(10 * time.Hour), End: day.Add(12 * time.Hour)},
	}
	slot := ClassifySlot(day.Add(12*time.Hour), DefaultBuffer, bookings)
	if !slot.Buffer {
		t.Fatalf("expected buffer slot")
	}
	if slot.Booking == nil || slot.Booking.ID != "earlier" {
		t.Fatalf("expected earliest-starting booking reported, got %+v", slot.Booking)
	}
}

func TestClassifySlot_AdjacentBookingNotBooked(t *testing.T) {
	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	// Booking ends exactly where the slot starts: buffer, not booked.
	bookings := []model.Booking{
		{ID: "b1", Start: day.Add(9 * time.Hour), End: day.Add(11 * time.Hour)},
	}
	slot := ClassifySlot(day.Add(11*time.Hour), DefaultBuffer, bookings)
	if slot.Booked {
		t.Fatalf("booking ending at slot start must not mark the slot booked")
	}
	if !slot.Buffer {
		t.Fatalf("expected buffer immediately after booking end")
	}
}

func TestBookingsForWeek_FiltersAndEnriches(t *testing.T) {
	week := WeekDates(time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC))
	clients := []model.Client{{ID: "c1", Name: "Acme"}}
	projects := []model.Project{{ID: "p1", Name: "Brand refresh", ClientID: "c1"}}

	records := []model.Booking{
		{ID: "in", ClientID: "c1", ProjectID: "p1", Start: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC), End: time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)},
		{ID: "saturday", ClientID: "c1", ProjectID: "p1", Start: time.Date(2026, 2, 7, 16, 0, 0, 0, time.UTC), End: time.Date(2026, 2, 7, 17, 0, 0, 0, time.UTC)},
		{ID: "dangling", ClientID: "ghost", ProjectID: "none", Start: time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC), End: time.Date(2026, 2, 5, 11, 0, 0, 0, time.UTC)},
		{ID: "out", ClientID: "c1", ProjectID: "p1", Start: time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC), End: time.Date(2026, 2, 9, 11, 0, 0, 0, time.UTC)},
	}

	got := BookingsForWeek(week, records, clients, projects)
	if len(got) != 3 {
		t.Fatalf("expected 3 bookings in week, got %d", len(got))
	}
	if got[0].ID != "in" || got[1].ID != "dangling" || got[2].ID != "saturday" {
		t.Fatalf("expected start-time order, got %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].ClientName != "Acme" || got[0].ProjectName != "Brand refresh" {
		t.Fatalf("expected enriched names, got %q / %q", got[0].ClientName, got[0].ProjectName)
	}
	if got[0].Title != "Brand refresh / Acme" {
		t.Fatalf("expected synthesized title, got %q", got[0].Title)
	}
	if got[1].ClientName != "Unknown client" || got[1].ProjectName != "Unknown project" {
		t.Fatalf("expected placeholder names for dangling refs, got %q / %q", got[1].ClientName, got[1].ProjectName)
	}
}
