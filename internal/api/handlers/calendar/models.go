package calendar

// HolidayResponse праздник в конкретном году
type HolidayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// HolidayListResponse праздники года
type HolidayListResponse struct {
	Year     int               `json:"year"`
	Holidays []HolidayResponse `json:"holidays"`
}

// TeachingDayResponse результат проверки даты
type TeachingDayResponse struct {
	Date            string `json:"date"`
	TeachingDay     bool   `json:"teachingDay"`
	Sunday          bool   `json:"sunday"`
	Holiday         bool   `json:"holiday"`
	NextTeachingDay string `json:"nextTeachingDay"`
}
