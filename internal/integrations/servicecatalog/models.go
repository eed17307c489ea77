package servicecatalog

// Service модель услуги из каталога услуг
type Service struct {
	ID              int64    `json:"id"`
	BusinessID      int64    `json:"business_id"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"duration_minutes"`
	Price           *float64 `json:"price,omitempty"`
	IsActive        bool     `json:"is_active"`
}

// ErrorResponse модель ошибки от каталога услуг
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
