package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "09:00", want: 9 * 3600},
		{in: "09:30:15", want: 9*3600 + 30*60 + 15},
		{in: "23:59:59", want: 86399},
		{in: "24:00", wantErr: true},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestValidateWindowTime(t *testing.T) {
	w := &domain.AvailabilityWindow{Weekday: 1, StartTime: "09:00", EndTime: "17:00"}
	require.NoError(t, ValidateWindowTime(w))
	assert.Equal(t, "09:00:00", w.StartTime)
	assert.Equal(t, "17:00:00", w.EndTime)

	assert.Error(t, ValidateWindowTime(&domain.AvailabilityWindow{Weekday: 7, StartTime: "09:00", EndTime: "17:00"}))
	assert.Error(t, ValidateWindowTime(&domain.AvailabilityWindow{Weekday: 1, StartTime: "17:00", EndTime: "09:00"}))
	assert.Error(t, ValidateWindowTime(&domain.AvailabilityWindow{Weekday: 1, StartTime: "09:00", EndTime: "09:00"}))
}

func TestValidateEntryQuantity(t *testing.T) {
	entry := &domain.ApprovableEntry{Kind: domain.EntryKindExpense}
	assert.Error(t, ValidateEntryQuantity(entry))

	entry.SetQuantity(decimal.RequireFromString("12.50"))
	assert.NoError(t, ValidateEntryQuantity(entry))

	trip := &domain.ApprovableEntry{Kind: domain.EntryKindTrip}
	trip.SetQuantity(decimal.Zero)
	assert.Error(t, ValidateEntryQuantity(trip))
}
