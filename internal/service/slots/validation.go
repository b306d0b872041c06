package slots

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-SlotBooking/internal/calendar"
	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/service/slots/models"
	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// parseDate парсит дату "YYYY-MM-DD" в полночь UTC
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(domain.DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, s)
	}
	return d, nil
}

// slotFromCreateRequest собирает слот из запроса; проверки выполняет validateSlot
func slotFromCreateRequest(req *models.CreateSlotRequest) (*domain.Slot, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	slot := &domain.Slot{
		TeacherID: req.TeacherID,
		ClassID:   req.ClassID,
		Subject:   strings.TrimSpace(req.Subject),
		Kind:      domain.SlotKind(req.Kind),
		Date:      date,
		StartTime: types.TimeString(strings.TrimSpace(req.StartTime)),
		Notes:     normalizeNotes(req.Notes),
	}
	if req.EndTime != nil {
		end := types.TimeString(strings.TrimSpace(*req.EndTime))
		slot.EndTime = &end
	}
	if req.SeatLimit != nil {
		slot.SeatLimit = *req.SeatLimit
	}

	return slot, nil
}

// patchFromUpdateRequest конвертирует запрос в SlotPatch
func patchFromUpdateRequest(req *models.UpdateSlotRequest) (domain.SlotPatch, error) {
	patch := domain.SlotPatch{
		Subject:      req.Subject,
		SeatLimit:    req.SeatLimit,
		ClearEndTime: req.ClearEndTime,
		ClearNotes:   req.ClearNotes,
	}

	if req.Subject != nil {
		subject := strings.TrimSpace(*req.Subject)
		patch.Subject = &subject
	}
	if req.Kind != nil {
		kind := domain.SlotKind(*req.Kind)
		patch.Kind = &kind
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	// формат времени проверяет validateSlot после проверки даты
	if req.StartTime != nil {
		start := types.TimeString(strings.TrimSpace(*req.StartTime))
		patch.StartTime = &start
	}
	if req.EndTime != nil && !req.ClearEndTime {
		end := types.TimeString(strings.TrimSpace(*req.EndTime))
		patch.EndTime = &end
	}
	if req.Notes != nil && !req.ClearNotes {
		patch.Notes = normalizeNotes(req.Notes)
		if patch.Notes == nil {
			patch.ClearNotes = true
		}
	}

	return patch, nil
}

// validateSlot проверяет итоговое состояние слота при создании и при изменении.
// Для written_exam лимит мест принудительно выставляется в UnlimitedSeatLimit.
func validateSlot(slot *domain.Slot) error {
	if !calendar.IsTeachingDay(slot.Date) {
		return fmt.Errorf("%w: %s", ErrInvalidDate, slot.Date.Format(domain.DateFormat))
	}

	if slot.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if utf8.RuneCountInString(slot.Subject) > domain.MaxSubjectLength {
		return fmt.Errorf("%w: subject must be at most %d characters", ErrValidation, domain.MaxSubjectLength)
	}

	if !slot.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, slot.Kind)
	}

	if err := slot.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: startTime must be HH:MM, got %q", ErrValidation, slot.StartTime)
	}
	if slot.EndTime != nil {
		if err := slot.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: endTime must be HH:MM, got %q", ErrValidation, *slot.EndTime)
		}
		if !slot.EndTime.IsAfter(slot.StartTime) {
			return fmt.Errorf("%w: endTime must be after startTime", ErrValidation)
		}
	}

	if slot.Notes != nil && utf8.RuneCountInString(*slot.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrValidation, domain.MaxNotesLength)
	}

	if slot.IsUnlimited() {
		slot.SeatLimit = domain.UnlimitedSeatLimit
		return nil
	}
	if slot.SeatLimit < domain.MinSeatLimit {
		return fmt.Errorf("%w: seatLimit of at least %d is required for kind %s",
			ErrValidation, domain.MinSeatLimit, slot.Kind)
	}

	return nil
}

// parseRange разбирает период списка, по умолчанию две недели начиная с today
func parseRange(from, to string, today time.Time) (time.Time, time.Time, error) {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if from != "" {
		d, err := parseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = d
	}

	end := start.AddDate(0, 0, 14)
	if to != "" {
		d, err := parseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = d
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from must not be after to", ErrValidation)
	}
	if end.Sub(start) > domain.MaxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range must not exceed %d days", ErrValidation, domain.MaxRangeDays)
	}

	return start, end, nil
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
