package domain

import (
	"fmt"
	"time"
)

// Weekday день недели в соглашении 0=воскресенье ... 6=суббота.
// Единственное место в сервисе, где определено это соответствие:
// генерация слотов, проверка конфликтов и публичный API импортируют его отсюда.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeekdayOf возвращает Weekday для календарной даты.
// time.Weekday использует то же соглашение 0=Sunday, поэтому конвертация прямая.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

// Valid returns true for values in the 0..6 range.
func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

// String возвращает английское название дня недели
func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return time.Weekday(w).String()
}
