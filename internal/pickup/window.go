package pickup

import (
	"fmt"
	"time"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

// Grace is the tolerance applied on both ends of a window when checking a
// confirmed pickup time.
const Grace = time.Minute

type BusinessHours struct {
	OpenHour      int
	OpenMinute    int
	CloseHour     int
	CloseMinute   int
	PrepMinutes   int
	WindowMinutes int
	Location      *time.Location
}

func (b BusinessHours) Validate() error {
	if b.OpenHour < 0 || b.OpenHour > 23 || b.CloseHour < 0 || b.CloseHour > 23 {
		return fmt.Errorf("business hours must be within 0-23, got open=%d close=%d", b.OpenHour, b.CloseHour)
	}
	if b.OpenMinute < 0 || b.OpenMinute > 59 || b.CloseMinute < 0 || b.CloseMinute > 59 {
		return fmt.Errorf("business minutes must be within 0-59, got open=%d close=%d", b.OpenMinute, b.CloseMinute)
	}
	if b.CloseHour*60+b.CloseMinute <= b.OpenHour*60+b.OpenMinute {
		return fmt.Errorf("closing time %02d:%02d must be after opening time %02d:%02d",
			b.CloseHour, b.CloseMinute, b.OpenHour, b.OpenMinute)
	}
	if b.PrepMinutes < 0 {
		return fmt.Errorf("preparation minutes must not be negative, got %d", b.PrepMinutes)
	}
	if b.WindowMinutes <= 0 {
		return fmt.Errorf("pickup window minutes must be positive, got %d", b.WindowMinutes)
	}
	return nil
}

func (b BusinessHours) location() *time.Location {
	if b.Location == nil {
		return time.UTC
	}
	return b.Location
}

type Calculator struct {
	hours BusinessHours
}

func NewCalculator(hours BusinessHours) *Calculator {
	return &Calculator{hours: hours}
}

func (c *Calculator) Location() *time.Location {
	return c.hours.location()
}

// Compute returns the pickup window for an order received at now. Preparation
// that would finish after closing, or a request at or after closing, moves the
// window to the next day's opening.
func (c *Calculator) Compute(now time.Time) domain.PickupWindow {
	local := now.In(c.hours.location())
	openingToday := atClock(local, c.hours.OpenHour, c.hours.OpenMinute)
	closingToday := atClock(local, c.hours.CloseHour, c.hours.CloseMinute)

	start := local.Add(time.Duration(c.hours.PrepMinutes) * time.Minute)

	if !local.Before(closingToday) || start.After(closingToday) {
		start = openingToday.AddDate(0, 0, 1)
	} else if local.Before(openingToday) && start.Before(openingToday) {
		start = openingToday
	}

	return domain.PickupWindow{
		Start: start,
		End:   start.Add(time.Duration(c.hours.WindowMinutes) * time.Minute),
	}
}

// ConfirmationTime places hour:minute on the calendar date of the window start.
func (c *Calculator) ConfirmationTime(w domain.PickupWindow, hour, minute int) (time.Time, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	return atClock(w.Start.In(c.hours.location()), hour, minute), true
}

// IsWithinWindow reports whether t lies in [Start-Grace, End+Grace].
func IsWithinWindow(t time.Time, w domain.PickupWindow) bool {
	return !t.Before(w.Start.Add(-Grace)) && !t.After(w.End.Add(Grace))
}

func atClock(t time.Time, hour, minute int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}
