package suggestion

import "errors"

var (
	// ErrSuggestionNotFound возвращается, когда рекомендация не найдена
	ErrSuggestionNotFound = errors.New("suggestion.repository: suggestion not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("suggestion.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("suggestion.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("suggestion.repository: failed to scan row")
)
