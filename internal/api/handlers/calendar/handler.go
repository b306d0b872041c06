package calendar

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	schoolCalendar "github.com/m04kA/SMC-SlotBooking/internal/calendar"
	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

const (
	msgInvalidYear = "некорректный год"
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
)

// Handler публичные маршруты календаря учебных дней
type Handler struct {
	logger Logger
	now    func() time.Time
}

func NewHandler(logger Logger) *Handler {
	return &Handler{
		logger: logger,
		now:    time.Now,
	}
}

// Holidays GET /api/v1/calendar/holidays?year=2025
func (h *Handler) Holidays(w http.ResponseWriter, r *http.Request) {
	year := h.now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 9999 {
			h.logger.Warn("GET /calendar/holidays - Invalid year: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidYear)
			return
		}
		year = parsed
	}

	resp := HolidayListResponse{Year: year}
	for _, holiday := range schoolCalendar.Holidays() {
		date := time.Date(year, holiday.Month, holiday.Day, 0, 0, 0, 0, time.UTC)
		resp.Holidays = append(resp.Holidays, HolidayResponse{
			Date: date.Format(domain.DateFormat),
			Name: holiday.Name,
		})
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

// TeachingDay GET /api/v1/calendar/teaching-days/{date}
func (h *Handler) TeachingDay(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["date"]
	date, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		h.logger.Warn("GET /calendar/teaching-days/{date} - Invalid date: %q", raw)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, TeachingDayResponse{
		Date:            date.Format(domain.DateFormat),
		TeachingDay:     schoolCalendar.IsTeachingDay(date),
		Sunday:          date.Weekday() == time.Sunday,
		Holiday:         schoolCalendar.IsHoliday(date),
		NextTeachingDay: schoolCalendar.NextTeachingDay(date).Format(domain.DateFormat),
	})
}
