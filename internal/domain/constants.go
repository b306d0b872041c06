package domain

// Capacity constants
const (
	// UnlimitedSeatLimit значение seat_limit, которое хранится у written_exam
	UnlimitedSeatLimit = 99
	// UnlimitedSeats возвращается AvailableSeats для слотов без лимита
	UnlimitedSeats = -1

	MinSeatLimit = 1
)

// Business validation constants
const (
	MaxSubjectLength = 100
	MaxNotesLength   = 500
	MaxRangeDays     = 62 // максимальный период для списков слотов и бронирований
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
