package pickup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

var shopZone = time.FixedZone("ART", -3*60*60)

func defaultHours() BusinessHours {
	return BusinessHours{
		OpenHour:      8,
		CloseHour:     18,
		PrepMinutes:   120,
		WindowMinutes: 120,
		Location:      shopZone,
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, shopZone)
}

func TestCalculator_Compute(t *testing.T) {
	calc := NewCalculator(defaultHours())

	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantDay   string
	}{
		{name: "morning order fits today", now: at(10, 9, 0), wantStart: at(10, 11, 0), wantDay: domain.DayLabelToday},
		{name: "preparation ends exactly at closing", now: at(10, 16, 0), wantStart: at(10, 18, 0), wantDay: domain.DayLabelToday},
		{name: "preparation ends after closing", now: at(10, 16, 1), wantStart: at(11, 8, 0), wantDay: domain.DayLabelTomorrow},
		{name: "late afternoon rolls over", now: at(10, 17, 30), wantStart: at(11, 8, 0), wantDay: domain.DayLabelTomorrow},
		{name: "at closing rolls over", now: at(10, 18, 0), wantStart: at(11, 8, 0), wantDay: domain.DayLabelTomorrow},
		{name: "late night rolls over", now: at(10, 23, 30), wantStart: at(11, 8, 0), wantDay: domain.DayLabelTomorrow},
		{name: "before opening clamps to opening", now: at(10, 5, 0), wantStart: at(10, 8, 0), wantDay: domain.DayLabelToday},
		{name: "after midnight clamps to same day opening", now: at(10, 0, 30), wantStart: at(10, 8, 0), wantDay: domain.DayLabelToday},
		{name: "before opening but ready after opening", now: at(10, 7, 0), wantStart: at(10, 9, 0), wantDay: domain.DayLabelToday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := calc.Compute(tt.now)

			assert.True(t, window.Start.Equal(tt.wantStart), "start = %s, want %s", window.Start, tt.wantStart)
			assert.Equal(t, 2*time.Hour, window.End.Sub(window.Start))
			assert.Equal(t, tt.wantDay, window.DayLabel(tt.now, shopZone))
		})
	}
}

func TestCalculator_Compute_ConvertsToShopLocation(t *testing.T) {
	calc := NewCalculator(defaultHours())

	// 12:00 UTC is 09:00 in the shop.
	window := calc.Compute(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, "11:00", window.StartLabel(shopZone))
	assert.Equal(t, "13:00", window.EndLabel(shopZone))
}

func TestCalculator_Compute_Deterministic(t *testing.T) {
	calc := NewCalculator(defaultHours())
	now := at(10, 14, 12)

	first := calc.Compute(now)
	second := calc.Compute(now)

	assert.Equal(t, first, second)
}

func TestCalculator_ConfirmationTime(t *testing.T) {
	calc := NewCalculator(defaultHours())

	t.Run("uses the window start date", func(t *testing.T) {
		window := calc.Compute(at(10, 17, 30))

		got, ok := calc.ConfirmationTime(window, 9, 15)
		require.True(t, ok)
		assert.True(t, got.Equal(at(11, 9, 15)))
	})

	t.Run("rejects invalid clock values", func(t *testing.T) {
		window := calc.Compute(at(10, 9, 0))

		for _, hm := range [][2]int{{24, 0}, {12, 60}, {-1, 0}, {25, 70}} {
			_, ok := calc.ConfirmationTime(window, hm[0], hm[1])
			assert.False(t, ok, "%02d:%02d", hm[0], hm[1])
		}
	})
}

func TestIsWithinWindow(t *testing.T) {
	window := domain.PickupWindow{Start: at(10, 11, 0), End: at(10, 13, 0)}

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{name: "inside", t: at(10, 12, 30), want: true},
		{name: "exactly start", t: at(10, 11, 0), want: true},
		{name: "one minute early", t: at(10, 10, 59), want: true},
		{name: "two minutes early", t: at(10, 10, 58), want: false},
		{name: "exactly end", t: at(10, 13, 0), want: true},
		{name: "one minute late", t: at(10, 13, 1), want: true},
		{name: "two minutes late", t: at(10, 13, 2), want: false},
		{name: "well before", t: at(10, 10, 50), want: false},
		{name: "same clock next day", t: at(11, 12, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithinWindow(tt.t, window))
		})
	}
}

func TestBusinessHours_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BusinessHours)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*BusinessHours) {}},
		{name: "hour out of range", mutate: func(b *BusinessHours) { b.CloseHour = 24 }, wantErr: true},
		{name: "minute out of range", mutate: func(b *BusinessHours) { b.OpenMinute = 60 }, wantErr: true},
		{name: "close before open", mutate: func(b *BusinessHours) { b.OpenHour, b.CloseHour = 18, 8 }, wantErr: true},
		{name: "close equals open", mutate: func(b *BusinessHours) { b.CloseHour = 8 }, wantErr: true},
		{name: "negative preparation", mutate: func(b *BusinessHours) { b.PrepMinutes = -1 }, wantErr: true},
		{name: "empty window", mutate: func(b *BusinessHours) { b.WindowMinutes = 0 }, wantErr: true},
		{name: "no preparation", mutate: func(b *BusinessHours) { b.PrepMinutes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours := defaultHours()
			tt.mutate(&hours)

			err := hours.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
