package book_slot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	bookSlot "github.com/m04kA/SMC-SlotBooking/internal/usecase/book_slot"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
)

type stubUseCase struct {
	resp *bookSlot.Response
	err  error
	got  *bookSlot.Request
}

func (s *stubUseCase) Execute(_ context.Context, req *bookSlot.Request) (*bookSlot.Response, error) {
	s.got = req
	return s.resp, s.err
}

func newRequest(slotID string, studentID uuid.UUID) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/slots/"+slotID+"/bookings", nil)
	r = mux.SetURLVars(r, map[string]string{"slotId": slotID})
	return r.WithContext(middleware.WithUser(r.Context(), studentID, middleware.RoleStudent))
}

func TestHandler_Handle(t *testing.T) {
	studentID := uuid.New()

	tests := []struct {
		name       string
		slotID     string
		err        error
		wantStatus int
	}{
		{name: "booked", slotID: "7", wantStatus: http.StatusCreated},
		{name: "slot full", slotID: "7", err: bookSlot.ErrSlotFull, wantStatus: http.StatusConflict},
		{name: "already booked", slotID: "7", err: bookSlot.ErrAlreadyBooked, wantStatus: http.StatusConflict},
		{name: "missing slot", slotID: "7", err: bookSlot.ErrSlotNotFound, wantStatus: http.StatusNotFound},
		{name: "internal", slotID: "7", err: fmt.Errorf("%w: boom", bookSlot.ErrInternal), wantStatus: http.StatusInternalServerError},
		{name: "bad slot id", slotID: "abc", wantStatus: http.StatusBadRequest},
		{name: "zero slot id", slotID: "0", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{err: tt.err}
			if tt.err == nil {
				uc.resp = &bookSlot.Response{
					ID: 1, SlotID: 7, StudentID: studentID, Status: "confirmed",
					ConfirmedCount: 1, CreatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
				}
			}
			h := NewHandler(uc, logger.NewNop())
			w := httptest.NewRecorder()

			h.Handle(w, newRequest(tt.slotID, studentID))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusCreated {
				return
			}
			require.NotNil(t, uc.got)
			assert.Equal(t, studentID, uc.got.StudentID)
			assert.Equal(t, int64(7), uc.got.SlotID)

			var body BookingResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "confirmed", body.Status)
			assert.Equal(t, "2025-03-10T09:00:00Z", body.CreatedAt)
			assert.Nil(t, body.SeatLimit)
		})
	}
}

func TestHandler_MissingUser(t *testing.T) {
	h := NewHandler(&stubUseCase{}, logger.NewNop())
	r := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{"slotId": "1"})
	w := httptest.NewRecorder()

	h.Handle(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
