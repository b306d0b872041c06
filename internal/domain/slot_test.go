package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SlotBooking/pkg/ptr"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

func TestSlotAvailability(t *testing.T) {
	tests := []struct {
		name      string
		kind      SlotKind
		seatLimit int
		confirmed int
		wantFull  bool
		wantSeats int
		wantRate  float64
	}{
		{name: "empty oral", kind: KindOral, seatLimit: 4, confirmed: 0, wantSeats: 4, wantRate: 0},
		{name: "half full", kind: KindOral, seatLimit: 4, confirmed: 2, wantSeats: 2, wantRate: 50},
		{name: "full", kind: KindOther, seatLimit: 2, confirmed: 2, wantFull: true, wantSeats: 0, wantRate: 100},
		{name: "limit lowered below count", kind: KindOral, seatLimit: 1, confirmed: 3, wantFull: true, wantSeats: 0, wantRate: 100},
		{name: "written exam never full", kind: KindWrittenExam, seatLimit: UnlimitedSeatLimit, confirmed: 150, wantSeats: UnlimitedSeats, wantRate: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := SlotAvailability{Slot: &Slot{Kind: tt.kind, SeatLimit: tt.seatLimit}, ConfirmedCount: tt.confirmed}
			assert.Equal(t, tt.wantFull, a.IsFull())
			assert.Equal(t, tt.wantSeats, a.AvailableSeats())
			assert.InDelta(t, tt.wantRate, a.OccupancyRate(), 0.001)
		})
	}
}

func TestSlotPatch_Apply(t *testing.T) {
	end := types.TimeString("10:00")
	orig := &Slot{
		ID:        7,
		Subject:   "History",
		Kind:      KindOral,
		Date:      time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   &end,
		SeatLimit: 3,
		Notes:     ptr.Ptr("chapter 4"),
	}

	newDate := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	patch := SlotPatch{
		Subject:      ptr.Ptr("Geography"),
		Date:         &newDate,
		ClearEndTime: true,
		SeatLimit:    ptr.Ptr(5),
	}
	assert.False(t, patch.IsEmpty())

	merged := patch.Apply(orig)

	assert.Equal(t, "Geography", merged.Subject)
	assert.Equal(t, newDate, merged.Date)
	assert.Nil(t, merged.EndTime)
	assert.Equal(t, 5, merged.SeatLimit)
	assert.Equal(t, "chapter 4", *merged.Notes)
	assert.Equal(t, KindOral, merged.Kind)

	// исходный слот не меняется
	assert.Equal(t, "History", orig.Subject)
	assert.NotNil(t, orig.EndTime)
	assert.Equal(t, 3, orig.SeatLimit)

	assert.True(t, SlotPatch{}.IsEmpty())
}

func TestSlotKind(t *testing.T) {
	assert.True(t, KindOral.IsValid())
	assert.True(t, KindWrittenExam.IsUnlimited())
	assert.False(t, KindOther.IsUnlimited())
	assert.False(t, SlotKind("verifica").IsValid())
}
