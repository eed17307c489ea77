package update_day_schedule

// UpdateDayScheduleRequest HTTP request model.
// BusinessID и Weekday приходят из URL, а не из тела.
type UpdateDayScheduleRequest struct {
	IsOpen              bool   `json:"isOpen"`
	OpenTime            string `json:"openTime,omitempty"`  // "09:00"
	CloseTime           string `json:"closeTime,omitempty"` // "19:00"
	SlotDurationMinutes int    `json:"slotDurationMinutes,omitempty"`
}
