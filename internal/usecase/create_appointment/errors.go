package create_appointment

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrPastDate возвращается при попытке записи на прошедшую дату
	ErrPastDate = errors.New("create_appointment: date is in the past")

	// ErrBusinessClosed возвращается, когда бизнес закрыт в указанный день
	ErrBusinessClosed = errors.New("create_appointment: business is closed on this date")

	// ErrOutsideBusinessHours возвращается, когда интервал выходит за рабочие часы
	ErrOutsideBusinessHours = errors.New("create_appointment: interval is outside business hours")

	// ErrSlotConflict возвращается, когда интервал уже занят другой активной записью.
	// Ошибка окончательная: повторять запрос без повторной проверки доступности бессмысленно.
	ErrSlotConflict = errors.New("create_appointment: slot is already taken")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
