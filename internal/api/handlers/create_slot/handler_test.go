package create_slot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotBooking/internal/integrations/notifier"
	"github.com/m04kA/SMC-SlotBooking/internal/service/slots"
	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
	"github.com/m04kA/SMC-SlotBooking/pkg/logger"
	"github.com/m04kA/SMC-SlotBooking/pkg/metrics"
)

func newHandler() *Handler {
	store := memory.NewStore()
	log := logger.NewNop()
	var m *metrics.Metrics

	svc := slots.NewService(store.Slots(), store.Bookings(), store, notifier.NewLogNotifier(log), m, log)
	return NewHandler(svc, log)
}

func newRequest(body string, teacherID uuid.UUID) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/slots", strings.NewReader(body))
	return r.WithContext(middleware.WithUser(r.Context(), teacherID, middleware.RoleTeacher))
}

func TestHandler_Handle(t *testing.T) {
	classID := uuid.New().String()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "oral slot",
			body:       `{"classId":"` + classID + `","subject":"Storia","kind":"oral","date":"2025-03-11","startTime":"09:00","seatLimit":3}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "written exam ignores negative seat limit",
			body:       `{"classId":"` + classID + `","subject":"Latino","kind":"written_exam","date":"2025-03-11","startTime":"08:00","seatLimit":-1}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "large seat limit",
			body:       `{"classId":"` + classID + `","subject":"Storia","kind":"other","date":"2025-03-11","startTime":"09:00","seatLimit":120}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "sunday with malformed time reports the date",
			body:       `{"classId":"` + classID + `","subject":"Storia","kind":"oral","date":"2025-03-16","startTime":"9:00","seatLimit":3}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgNotTeachingDay,
		},
		{
			name:       "malformed time on a teaching day",
			body:       `{"classId":"` + classID + `","subject":"Storia","kind":"oral","date":"2025-03-11","startTime":"9:00","seatLimit":3}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgInvalidSlot,
		},
		{
			name:       "negative seat limit for oral slot",
			body:       `{"classId":"` + classID + `","subject":"Storia","kind":"oral","date":"2025-03-11","startTime":"09:00","seatLimit":-1}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgInvalidSlot,
		},
		{
			name:       "unknown kind",
			body:       `{"classId":"` + classID + `","subject":"Storia","kind":"quiz","date":"2025-03-11","startTime":"09:00"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "kind",
		},
		{
			name:       "unknown field",
			body:       `{"classId":"` + classID + `","room":"12"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgInvalidRequestBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newHandler().Handle(w, newRequest(tt.body, uuid.New()))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusCreated {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Contains(t, body["error"], tt.wantError)
				return
			}

			var created models.SlotResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
			assert.NotZero(t, created.ID)
			assert.Equal(t, classID, created.ClassID.String())
		})
	}
}

func TestHandler_WrittenExamStoredAsUnlimited(t *testing.T) {
	w := httptest.NewRecorder()
	body := `{"classId":"` + uuid.New().String() + `","subject":"Latino","kind":"written_exam","date":"2025-03-11","startTime":"08:00","seatLimit":-1}`

	newHandler().Handle(w, newRequest(body, uuid.New()))

	require.Equal(t, http.StatusCreated, w.Code)
	var created models.SlotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Unlimited)
	assert.Nil(t, created.SeatLimit)
}

func TestHandler_MissingUser(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/slots", strings.NewReader(`{}`))

	newHandler().Handle(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
