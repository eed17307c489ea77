package analytics

import "errors"

var (
	// ErrSuggestionNotFound возвращается, когда рекомендация не найдена
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
