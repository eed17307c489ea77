package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

func demandAppt(status domain.AppointmentStatus, start types.TimeString) *domain.Appointment {
	return &domain.Appointment{
		BusinessID: 1,
		StartTime:  start,
		Status:     status,
	}
}

func TestDemandAppointments(t *testing.T) {
	history := []*domain.Appointment{
		demandAppt(domain.StatusApproved, "10:00"),
		demandAppt(domain.StatusCompleted, "11:00"),
		demandAppt(domain.StatusPending, "12:00"),
		demandAppt(domain.StatusDeclined, "13:00"),
		demandAppt(domain.StatusCancelled, "14:00"),
	}

	demand := demandAppointments(history)
	require.Len(t, demand, 2)
	assert.Equal(t, domain.StatusApproved, demand[0].Status)
	assert.Equal(t, domain.StatusCompleted, demand[1].Status)
}

func TestHourCounts(t *testing.T) {
	counts := hourCounts([]*domain.Appointment{
		demandAppt(domain.StatusApproved, "10:00"),
		demandAppt(domain.StatusApproved, "10:30"),
		demandAppt(domain.StatusApproved, "14:15"),
	})

	assert.Equal(t, map[int]int{10: 2, 14: 1}, counts)
}

func TestBusyHours(t *testing.T) {
	t.Run("spike above threshold is reported", func(t *testing.T) {
		// Среднее 4 записи/час, порог 1.5*4=6: выделяется только час 10
		counts := map[int]int{10: 10, 11: 2, 12: 2, 13: 2}

		busy := busyHours(counts, domain.BusyHourThresholdFactor)
		require.Len(t, busy, 1)
		assert.Equal(t, 10, busy[0].Hour)
		assert.Equal(t, 10, busy[0].Count)
	})

	t.Run("uniform load has no busy hours", func(t *testing.T) {
		counts := map[int]int{10: 3, 11: 3, 12: 3}
		assert.Empty(t, busyHours(counts, domain.BusyHourThresholdFactor))
	})

	t.Run("single hour of history is silent", func(t *testing.T) {
		// Одна точка - это вся история, а не пик
		counts := map[int]int{10: 50}
		assert.Empty(t, busyHours(counts, domain.BusyHourThresholdFactor))
	})

	t.Run("empty history is silent", func(t *testing.T) {
		assert.Empty(t, busyHours(map[int]int{}, domain.BusyHourThresholdFactor))
	})

	t.Run("result sorted by hour", func(t *testing.T) {
		counts := map[int]int{17: 9, 9: 9, 12: 1, 13: 1, 14: 1}

		busy := busyHours(counts, domain.BusyHourThresholdFactor)
		require.Len(t, busy, 2)
		assert.Equal(t, 9, busy[0].Hour)
		assert.Equal(t, 17, busy[1].Hour)
	})
}

func TestOptimalSlots(t *testing.T) {
	t.Run("hours with empty buffer are offered", func(t *testing.T) {
		// Запись в 10:00 закрывает часы 9, 10 и 11 буфером в час
		counts := map[int]int{10: 1}

		free := optimalSlots(counts)
		assert.Equal(t, []int{12, 13, 14, 15, 16, 17, 18}, free)
	})

	t.Run("no history means no offers", func(t *testing.T) {
		assert.Empty(t, optimalSlots(map[int]int{}))
	})

	t.Run("dense day has no free hours", func(t *testing.T) {
		counts := make(map[int]int)
		for h := domain.DefaultOpenHour; h < domain.DefaultCloseHour; h++ {
			counts[h] = 1
		}
		assert.Empty(t, optimalSlots(counts))
	})
}

func TestRebookingPrediction(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	t.Run("regular client", func(t *testing.T) {
		// Интервалы 30 и 32 дня: среднее 31, разброс небольшой
		data, confidence, ok := rebookingPrediction([]time.Time{day(0), day(30), day(62)})
		require.True(t, ok)

		assert.Equal(t, 31, data.AverageDays)
		assert.Equal(t, 3, data.VisitCount)
		assert.Equal(t, day(62), data.LastVisit)
		assert.Equal(t, day(93), data.NextExpected)
		assert.InDelta(t, 0.968, data.Consistency, 0.001)
		assert.Equal(t, 4, confidence)
	})

	t.Run("perfectly regular client gets max confidence", func(t *testing.T) {
		data, confidence, ok := rebookingPrediction([]time.Time{day(0), day(14), day(28), day(42)})
		require.True(t, ok)

		assert.Equal(t, 14, data.AverageDays)
		assert.Equal(t, 1.0, data.Consistency)
		assert.Equal(t, domain.ConfidenceScale, confidence)
	})

	t.Run("erratic client gets min confidence", func(t *testing.T) {
		// Интервалы 1, 1 и 100 дней: разброс больше среднего, consistency = 0
		data, confidence, ok := rebookingPrediction([]time.Time{day(0), day(1), day(2), day(102)})
		require.True(t, ok)

		assert.Equal(t, 0.0, data.Consistency)
		assert.Equal(t, 1, confidence)
	})

	t.Run("unsorted input is handled", func(t *testing.T) {
		data, _, ok := rebookingPrediction([]time.Time{day(62), day(0), day(30)})
		require.True(t, ok)
		assert.Equal(t, day(62), data.LastVisit)
	})

	t.Run("too few visits", func(t *testing.T) {
		_, _, ok := rebookingPrediction([]time.Time{day(0)})
		assert.False(t, ok)

		_, _, ok = rebookingPrediction(nil)
		assert.False(t, ok)
	})

	t.Run("same-day visits have no interval", func(t *testing.T) {
		_, _, ok := rebookingPrediction([]time.Time{day(5), day(5)})
		assert.False(t, ok)
	})
}
