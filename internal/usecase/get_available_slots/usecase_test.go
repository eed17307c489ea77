package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	availabilityRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/availability"
	"github.com/avdk/BMS-SchedulingService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeAvailabilityRepo struct {
	template *domain.WeekdayTemplate
	err      error
}

func (r *fakeAvailabilityRepo) GetByBusinessAndWeekday(ctx context.Context, businessID int64, weekday domain.Weekday) (*domain.WeekdayTemplate, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.template, nil
}

type fakeAppointmentRepo struct {
	appointments []*domain.Appointment
}

func (r *fakeAppointmentRepo) GetByBusinessWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	return r.appointments, nil
}

func openTemplate(open, close types.TimeString, duration int) *domain.WeekdayTemplate {
	return &domain.WeekdayTemplate{
		BusinessID:          1,
		Weekday:             domain.Monday,
		IsOpen:              true,
		OpenTime:            open,
		CloseTime:           close,
		SlotDurationMinutes: duration,
	}
}

func activeAppointment(start, end types.TimeString, resourceID *int64) *domain.Appointment {
	return &domain.Appointment{
		BusinessID: 1,
		ResourceID: resourceID,
		StartTime:  start,
		EndTime:    end,
		Status:     domain.StatusApproved,
	}
}

// monday - произвольный понедельник для запросов в тестах
var monday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func TestGenerateSlots(t *testing.T) {
	t.Run("full day with dividing duration", func(t *testing.T) {
		slots, err := generateSlots(openTemplate("09:00", "17:00", 30))
		require.NoError(t, err)
		require.Len(t, slots, 16)

		assert.Equal(t, types.TimeString("09:00"), slots[0].StartTime)
		assert.Equal(t, types.TimeString("09:30"), slots[0].EndTime)
		assert.Equal(t, types.TimeString("16:30"), slots[15].StartTime)
		assert.Equal(t, types.TimeString("17:00"), slots[15].EndTime)
		for _, slot := range slots {
			assert.True(t, slot.Available)
			assert.Equal(t, 30, slot.DurationMinutes)
		}
	})

	t.Run("non-dividing duration drops trailing partial slot", func(t *testing.T) {
		// 09:00-17:00 это 480 минут; по 45 минут помещается 10 слотов,
		// остаток 30 минут отбрасывается
		slots, err := generateSlots(openTemplate("09:00", "17:00", 45))
		require.NoError(t, err)
		require.Len(t, slots, 10)
		assert.Equal(t, types.TimeString("16:30"), slots[9].EndTime)
	})

	t.Run("zero duration falls back to default", func(t *testing.T) {
		slots, err := generateSlots(openTemplate("10:00", "12:00", 0))
		require.NoError(t, err)
		require.Len(t, slots, 4)
		assert.Equal(t, domain.DefaultSlotDurationMinutes, slots[0].DurationMinutes)
	})

	t.Run("closed day yields no slots", func(t *testing.T) {
		slots, err := generateSlots(domain.ClosedTemplate(1, domain.Sunday))
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("deterministic", func(t *testing.T) {
		tpl := openTemplate("09:00", "19:00", 30)
		first, err := generateSlots(tpl)
		require.NoError(t, err)
		second, err := generateSlots(tpl)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestMarkAvailability(t *testing.T) {
	resourceA := int64(10)
	resourceB := int64(20)

	slots, err := generateSlots(openTemplate("09:00", "11:00", 30))
	require.NoError(t, err)
	require.Len(t, slots, 4)

	t.Run("overlapping appointment blocks slot", func(t *testing.T) {
		appts := []*domain.Appointment{
			activeAppointment("09:30", "10:00", nil),
		}
		marked := markAvailability(slots, appts, nil)

		assert.True(t, marked[0].Available)  // 09:00-09:30
		assert.False(t, marked[1].Available) // 09:30-10:00
		assert.True(t, marked[2].Available)  // 10:00-10:30
	})

	t.Run("bordering appointment does not block", func(t *testing.T) {
		// Запись 09:30-10:00 лишь граничит со слотами 09:00-09:30 и 10:00-10:30
		appts := []*domain.Appointment{
			activeAppointment("09:30", "10:00", nil),
		}
		marked := markAvailability(slots, appts, nil)

		assert.True(t, marked[0].Available)
		assert.True(t, marked[2].Available)
	})

	t.Run("partial overlap blocks both slots", func(t *testing.T) {
		appts := []*domain.Appointment{
			activeAppointment("09:15", "09:45", nil),
		}
		marked := markAvailability(slots, appts, nil)

		assert.False(t, marked[0].Available)
		assert.False(t, marked[1].Available)
		assert.True(t, marked[2].Available)
	})

	t.Run("terminal appointments do not block", func(t *testing.T) {
		appt := activeAppointment("09:00", "11:00", nil)
		appt.Status = domain.StatusCancelled
		marked := markAvailability(slots, []*domain.Appointment{appt}, nil)

		for _, slot := range marked {
			assert.True(t, slot.Available)
		}
	})

	t.Run("appointment without resource blocks every resource", func(t *testing.T) {
		appts := []*domain.Appointment{
			activeAppointment("09:00", "09:30", nil),
		}
		marked := markAvailability(slots, appts, &resourceA)
		assert.False(t, marked[0].Available)
	})

	t.Run("other resource does not block", func(t *testing.T) {
		appts := []*domain.Appointment{
			activeAppointment("09:00", "09:30", &resourceB),
		}
		marked := markAvailability(slots, appts, &resourceA)
		assert.True(t, marked[0].Available)
	})

	t.Run("general calendar sees every resource", func(t *testing.T) {
		appts := []*domain.Appointment{
			activeAppointment("09:00", "09:30", &resourceB),
		}
		marked := markAvailability(slots, appts, nil)
		assert.False(t, marked[0].Available)
	})
}

func TestUseCase_Execute(t *testing.T) {
	t.Run("open day with booked slot", func(t *testing.T) {
		uc := NewUseCase(
			&fakeAppointmentRepo{appointments: []*domain.Appointment{
				activeAppointment("10:00", "10:30", nil),
			}},
			&fakeAvailabilityRepo{template: openTemplate("09:00", "12:00", 30)},
			nopLogger{},
		)

		resp, err := uc.Execute(context.Background(), &Request{BusinessID: 1, Date: monday})
		require.NoError(t, err)

		assert.True(t, resp.IsOpen)
		require.Len(t, resp.Slots, 6)

		booked := 0
		for _, slot := range resp.Slots {
			if !slot.Available {
				booked++
				assert.Equal(t, types.TimeString("10:00"), slot.StartTime)
			}
		}
		assert.Equal(t, 1, booked)
	})

	t.Run("missing template means closed day", func(t *testing.T) {
		uc := NewUseCase(
			&fakeAppointmentRepo{},
			&fakeAvailabilityRepo{err: availabilityRepo.ErrTemplateNotFound},
			nopLogger{},
		)

		resp, err := uc.Execute(context.Background(), &Request{BusinessID: 1, Date: monday})
		require.NoError(t, err)

		assert.False(t, resp.IsOpen)
		assert.Empty(t, resp.Slots)
	})

	t.Run("validation errors", func(t *testing.T) {
		uc := NewUseCase(&fakeAppointmentRepo{}, &fakeAvailabilityRepo{}, nopLogger{})

		badResource := int64(-1)
		tests := []struct {
			name string
			req  *Request
		}{
			{name: "non-positive business", req: &Request{BusinessID: 0, Date: monday}},
			{name: "zero date", req: &Request{BusinessID: 1}},
			{name: "non-positive resource", req: &Request{BusinessID: 1, Date: monday, ResourceID: &badResource}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := uc.Execute(context.Background(), tt.req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}
