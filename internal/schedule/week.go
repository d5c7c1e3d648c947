package schedule

import (
	"sort"
	"time"

	"github.com/planbar-app/planbar/internal/model"
)

// Defaults for the bookable day. The studio takes no bookings before 09:00
// or starting after 18:00, and Sundays are closed entirely.
const (
	DefaultStartHour = 9
	DefaultEndHour   = 19
	DefaultBuffer    = time.Hour
)

// WeekDates returns Monday through Saturday of the ISO week containing ref,
// truncated to midnight in ref's location. Sunday is excluded: the studio
// does not take Sunday bookings.
func WeekDates(ref time.Time) []time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	// time.Weekday counts Sunday as 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)

	dates := make([]time.Time, 0, 6)
	for i := 0; i < 6; i++ {
		dates = append(dates, monday.AddDate(0, 0, i))
	}
	return dates
}

// DaySlots returns the hour-aligned slot start times of a day, one per whole
// hour in [startHour, endHour). With the defaults that is 09:00 through
// 18:00, ten slots. Minutes and seconds are truncated.
func DaySlots(day time.Time, startHour, endHour int) []time.Time {
	if endHour <= startHour {
		return nil
	}
	var slots []time.Time
	for h := startHour; h < endHour; h++ {
		slots = append(slots, time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, day.Location()))
	}
	return slots
}

// ClassifySlot reports whether the hour slot starting at slotStart is booked,
// inside a buffer zone, or free, given the bookings of that day.
//
// Bookings are scanned in start-time order so that when several bookings
// could claim the same slot the earliest-starting one is always reported.
// A direct overlap wins over a buffer hit; buffer zones extend bufferWidth
// before a booking's start and after its end.
func ClassifySlot(slotStart time.Time, bufferWidth time.Duration, bookings []model.Booking) model.TimeSlot {
	slot := model.TimeSlot{Start: slotStart}
	slotEnd := slotStart.Add(time.Hour)

	ordered := make([]model.Booking, len(bookings))
	copy(ordered, bookings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})

	for i := range ordered {
		if overlaps(slotStart, slotEnd, ordered[i]) {
			slot.Booked = true
			slot.Booking = &ordered[i]
			return slot
		}
	}

	if bufferWidth <= 0 {
		return slot
	}
	for i := range ordered {
		b := ordered[i]
		if overlaps(slotStart, slotEnd, b) {
			continue
		}
		before := inWindow(slotStart, b.Start.Add(-bufferWidth), b.Start)
		after := inWindow(slotStart, b.End, b.End.Add(bufferWidth))
		if before || after {
			slot.Buffer = true
			slot.Booking = &ordered[i]
			return slot
		}
	}
	return slot
}

// overlaps tests the hour slot [slotStart, slotEnd) against the booking
// interval: slot start inside the booking, slot end inside the booking, or
// the booking fully contained in the slot. Boundaries are half-open, so a
// booking ending exactly at slotStart does not claim the slot.
func overlaps(slotStart, slotEnd time.Time, b model.Booking) bool {
	if inWindow(slotStart, b.Start, b.End) {
		return true
	}
	if slotEnd.After(b.Start) && !slotEnd.After(b.End) {
		return true
	}
	return !b.Start.Before(slotStart) && !b.End.After(slotEnd)
}

// inWindow reports t in [start, end).
func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
