package get_available_slots

import (
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
)

// Request модель запроса на получение слотов дня
type Request struct {
	BusinessID int64     // ID бизнеса
	Date       time.Time // Дата, на которую запрашиваются слоты (без времени)
	ResourceID *int64    // Мастер; nil = общий календарь бизнеса
}

// Response модель ответа со слотами дня
type Response struct {
	BusinessID int64         // ID бизнеса
	Date       time.Time     // Дата, на которую запрашивались слоты
	ResourceID *int64        // Мастер (если был указан в запросе)
	IsOpen     bool          // Открыт ли бизнес в этот день
	Slots      []domain.Slot // Слоты дня с флагом доступности
}
