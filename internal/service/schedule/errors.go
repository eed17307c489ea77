package schedule

import "errors"

var (
	// ErrInvalidWeekday возвращается при дне недели вне диапазона 0-6
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidTimeWindow возвращается при некорректном рабочем окне
	ErrInvalidTimeWindow = errors.New("invalid working time window")

	// ErrInvalidSlotDuration возвращается при недопустимой длительности слота
	ErrInvalidSlotDuration = errors.New("invalid slot duration")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
