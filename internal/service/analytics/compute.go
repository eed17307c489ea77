package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
)

// Чистые функции эвристик. Работают на срезах записей без обращения к БД,
// что позволяет тестировать их на синтетической истории.

// hourLoad загруженность одного часа
type hourLoad struct {
	Hour  int
	Count int
}

// demandAppointments отбирает записи, отражающие реальный спрос.
// Отклонённые и отменённые записи спрос не формируют.
func demandAppointments(appointments []*domain.Appointment) []*domain.Appointment {
	result := make([]*domain.Appointment, 0, len(appointments))
	for _, appt := range appointments {
		if appt.Status == domain.StatusApproved || appt.Status == domain.StatusCompleted {
			result = append(result, appt)
		}
	}
	return result
}

// hourCounts считает количество записей по часу начала
func hourCounts(appointments []*domain.Appointment) map[int]int {
	counts := make(map[int]int)
	for _, appt := range appointments {
		counts[appt.StartTime.Hour()]++
	}
	return counts
}

// meanCount среднее количество записей по часам, в которых была хотя бы одна запись
func meanCount(counts map[int]int) float64 {
	if len(counts) == 0 {
		return 0
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return float64(total) / float64(len(counts))
}

// busyHours возвращает часы, где записей больше чем factor * среднее.
// Один час с записями - это не пик, а вся история, поэтому при менее чем
// двух различных часах эвристика молчит.
func busyHours(counts map[int]int, factor float64) []hourLoad {
	if len(counts) < 2 {
		return nil
	}

	threshold := factor * meanCount(counts)

	var result []hourLoad
	for hour, count := range counts {
		if float64(count) > threshold {
			result = append(result, hourLoad{Hour: hour, Count: count})
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Hour < result[j].Hour })
	return result
}

// optimalSlots возвращает часы внутри дефолтного рабочего дня, вокруг которых
// (с буфером в час) нет ни одной записи. Такие часы - кандидаты на продвижение.
func optimalSlots(counts map[int]int) []int {
	// Без истории любое "свободное" место бессмысленно
	if len(counts) == 0 {
		return nil
	}

	var result []int
	for hour := domain.DefaultOpenHour; hour < domain.DefaultCloseHour; hour++ {
		free := true
		for h := hour - domain.OptimalSlotBufferHours; h <= hour+domain.OptimalSlotBufferHours; h++ {
			if counts[h] > 0 {
				free = false
				break
			}
		}
		if free {
			result = append(result, hour)
		}
	}
	return result
}

// pricingHours возвращает пиковые часы для ценовых рекомендаций.
// Порог ниже, чем у busyHours: премиальные цены имеют смысл раньше,
// чем час становится узким местом.
func pricingHours(counts map[int]int, factor float64) []hourLoad {
	return busyHours(counts, factor)
}

// rebookingPrediction прогнозирует интервал повторной записи клиента
// по датам завершённых визитов. Возвращает ok=false, если истории
// недостаточно для осмысленного прогноза.
func rebookingPrediction(visits []time.Time) (domain.RebookingInsightData, int, bool) {
	if len(visits) < domain.MinRebookingHistory {
		return domain.RebookingInsightData{}, 0, false
	}

	sorted := make([]time.Time, len(visits))
	copy(sorted, visits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	// Интервалы между последовательными визитами в днях
	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		days := sorted[i].Sub(sorted[i-1]).Hours() / 24
		gaps = append(gaps, days)
	}

	mean := 0.0
	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))

	// Клиент с визитами в один день интервала не имеет
	if mean <= 0 {
		return domain.RebookingInsightData{}, 0, false
	}

	variance := 0.0
	for _, g := range gaps {
		variance += (g - mean) * (g - mean)
	}
	variance /= float64(len(gaps))
	stddev := math.Sqrt(variance)

	// Стабильность интервала: 1 - идеально регулярный клиент
	consistency := 1 - stddev/mean
	if consistency < 0 {
		consistency = 0
	}

	averageDays := int(math.Round(mean))
	lastVisit := sorted[len(sorted)-1]

	confidence := int(consistency * domain.ConfidenceScale)
	if confidence < 1 {
		confidence = 1
	}
	if confidence > domain.ConfidenceScale {
		confidence = domain.ConfidenceScale
	}

	data := domain.RebookingInsightData{
		AverageDays:  averageDays,
		Consistency:  consistency,
		VisitCount:   len(sorted),
		LastVisit:    lastVisit,
		NextExpected: lastVisit.AddDate(0, 0, averageDays),
	}

	return data, confidence, true
}
