package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdk/BMS-SchedulingService/internal/domain"
	appointmentRepo "github.com/avdk/BMS-SchedulingService/internal/infra/storage/appointment"
	"github.com/avdk/BMS-SchedulingService/internal/integrations/notifier"
	"github.com/avdk/BMS-SchedulingService/internal/service/appointments/models"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// memRepo in-memory репозиторий с той же семантикой статусных условий,
// что и у SQL-репозитория: переход применяется только из ожидаемого статуса
type memRepo struct {
	appointments map[int64]*domain.Appointment
}

func newMemRepo(appts ...*domain.Appointment) *memRepo {
	r := &memRepo{appointments: make(map[int64]*domain.Appointment)}
	for _, a := range appts {
		r.appointments[a.ID] = a
	}
	return r
}

func (r *memRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := r.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

func (r *memRepo) GetByBusinessWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	result := make([]*domain.Appointment, 0)
	for _, appt := range r.appointments {
		if appt.BusinessID != filter.BusinessID {
			continue
		}
		if filter.Status != nil && appt.Status != *filter.Status {
			continue
		}
		if !filter.IncludeInactive && !appt.HoldsSlot() {
			continue
		}
		result = append(result, appt)
	}
	return result, nil
}

func (r *memRepo) Approve(ctx context.Context, id int64, staffNotes *string) error {
	appt, ok := r.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if appt.Status != domain.StatusPending {
		return appointmentRepo.ErrStatusConflict
	}
	now := time.Now()
	appt.Status = domain.StatusApproved
	appt.ApprovedAt = &now
	if staffNotes != nil {
		appt.StaffNotes = staffNotes
	}
	return nil
}

func (r *memRepo) Decline(ctx context.Context, id int64, reason string) error {
	appt, ok := r.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if appt.Status != domain.StatusPending {
		return appointmentRepo.ErrStatusConflict
	}
	now := time.Now()
	appt.Status = domain.StatusDeclined
	appt.DeclinedAt = &now
	appt.DeclineReason = &reason
	return nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	appt, ok := r.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if appt.Status != from {
		return appointmentRepo.ErrStatusConflict
	}
	appt.Status = to
	return nil
}

type fakeNotifier struct {
	sent []notifier.Notification
	err  error
}

func (n *fakeNotifier) Send(ctx context.Context, notification notifier.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func appointment(id int64, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{
		ID:          id,
		BusinessID:  1,
		ServiceID:   5,
		Date:        time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		EndTime:     "10:30",
		Status:      status,
		ClientName:  "Иван Петров",
		ClientEmail: "ivan@example.com",
		ServiceName: "Стрижка",
	}
}

func newService(repo *memRepo) (*Service, *fakeNotifier) {
	sent := &fakeNotifier{}
	return NewService(repo, sent, nopLogger{}), sent
}

func TestService_GetByID(t *testing.T) {
	svc, _ := newService(newMemRepo(appointment(1, domain.StatusPending)))

	resp, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2026-09-07", resp.Date)

	_, err = svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestService_Approve(t *testing.T) {
	t.Run("pending appointment is approved", func(t *testing.T) {
		svc, sent := newService(newMemRepo(appointment(1, domain.StatusPending)))

		notes := "подтверждено по телефону"
		resp, err := svc.Approve(context.Background(), 1, &models.ApproveAppointmentRequest{StaffNotes: &notes})
		require.NoError(t, err)

		assert.Equal(t, "approved", resp.Status)
		require.NotNil(t, resp.StaffNotes)
		assert.Equal(t, notes, *resp.StaffNotes)
		assert.NotNil(t, resp.ApprovedAt)

		require.Len(t, sent.sent, 1)
		assert.Equal(t, notifier.EventAppointmentApproved, sent.sent[0].Event)
	})

	t.Run("declined appointment cannot be approved", func(t *testing.T) {
		svc, _ := newService(newMemRepo(appointment(1, domain.StatusDeclined)))

		_, err := svc.Approve(context.Background(), 1, &models.ApproveAppointmentRequest{})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("missing appointment", func(t *testing.T) {
		svc, _ := newService(newMemRepo())

		_, err := svc.Approve(context.Background(), 1, &models.ApproveAppointmentRequest{})
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("staff notes too long", func(t *testing.T) {
		svc, _ := newService(newMemRepo(appointment(1, domain.StatusPending)))

		long := make([]byte, domain.MaxStaffNotesLength+1)
		for i := range long {
			long[i] = 'a'
		}
		notes := string(long)

		_, err := svc.Approve(context.Background(), 1, &models.ApproveAppointmentRequest{StaffNotes: &notes})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("concurrent status change maps to invalid transition", func(t *testing.T) {
		// Статус меняется между предварительной проверкой и обновлением
		svc, _ := newService(nil)
		svc.appointmentRepo = &racingRepo{memRepo: newMemRepo(appointment(1, domain.StatusPending))}

		_, err := svc.Approve(context.Background(), 1, &models.ApproveAppointmentRequest{})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("notification failure does not fail approval", func(t *testing.T) {
		svc, sent := newService(newMemRepo(appointment(1, domain.StatusPending)))
		sent.err = context.DeadlineExceeded

		resp, err := svc.Approve(context.Background(), 1, &models.ApproveAppointmentRequest{})
		require.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
	})
}

// racingRepo имитирует гонку: параллельный запрос успевает сменить статус
// между предварительной проверкой и обновлением
type racingRepo struct {
	*memRepo
}

func (r *racingRepo) Approve(ctx context.Context, id int64, staffNotes *string) error {
	return appointmentRepo.ErrStatusConflict
}

func TestService_Decline(t *testing.T) {
	t.Run("pending appointment is declined with reason", func(t *testing.T) {
		svc, sent := newService(newMemRepo(appointment(1, domain.StatusPending)))

		resp, err := svc.Decline(context.Background(), 1, &models.DeclineAppointmentRequest{Reason: "мастер в отпуске"})
		require.NoError(t, err)

		assert.Equal(t, "declined", resp.Status)
		require.NotNil(t, resp.DeclineReason)
		assert.Equal(t, "мастер в отпуске", *resp.DeclineReason)
		assert.NotNil(t, resp.DeclinedAt)

		require.Len(t, sent.sent, 1)
		assert.Equal(t, notifier.EventAppointmentDeclined, sent.sent[0].Event)
		require.NotNil(t, sent.sent[0].Reason)
		assert.Equal(t, "мастер в отпуске", *sent.sent[0].Reason)
	})

	t.Run("reason is required", func(t *testing.T) {
		svc, _ := newService(newMemRepo(appointment(1, domain.StatusPending)))

		_, err := svc.Decline(context.Background(), 1, &models.DeclineAppointmentRequest{Reason: "   "})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("approved appointment cannot be declined", func(t *testing.T) {
		svc, _ := newService(newMemRepo(appointment(1, domain.StatusApproved)))

		_, err := svc.Decline(context.Background(), 1, &models.DeclineAppointmentRequest{Reason: "причина"})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestService_Complete(t *testing.T) {
	t.Run("approved appointment is completed", func(t *testing.T) {
		svc, _ := newService(newMemRepo(appointment(1, domain.StatusApproved)))

		resp, err := svc.Complete(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
	})

	t.Run("pending appointment cannot be completed", func(t *testing.T) {
		svc, _ := newService(newMemRepo(appointment(1, domain.StatusPending)))

		_, err := svc.Complete(context.Background(), 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("completed appointment is terminal", func(t *testing.T) {
		svc, _ := newService(newMemRepo(appointment(1, domain.StatusCompleted)))

		_, err := svc.Complete(context.Background(), 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("approved appointment is cancelled", func(t *testing.T) {
		svc, _ := newService(newMemRepo(appointment(1, domain.StatusApproved)))

		resp, err := svc.Cancel(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
	})

	t.Run("cancelled appointment stays cancelled", func(t *testing.T) {
		svc, _ := newService(newMemRepo(appointment(1, domain.StatusCancelled)))

		_, err := svc.Cancel(context.Background(), 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestService_GetBusinessAppointments(t *testing.T) {
	repo := newMemRepo(
		appointment(1, domain.StatusPending),
		appointment(2, domain.StatusApproved),
		appointment(3, domain.StatusCompleted),
	)
	svc, _ := newService(repo)

	t.Run("active only by default", func(t *testing.T) {
		resp, err := svc.GetBusinessAppointments(context.Background(), &models.GetBusinessAppointmentsRequest{BusinessID: 1})
		require.NoError(t, err)
		assert.Len(t, resp.Appointments, 2)
	})

	t.Run("include inactive", func(t *testing.T) {
		resp, err := svc.GetBusinessAppointments(context.Background(), &models.GetBusinessAppointmentsRequest{
			BusinessID:      1,
			IncludeInactive: true,
		})
		require.NoError(t, err)
		assert.Len(t, resp.Appointments, 3)
	})

	t.Run("status filter", func(t *testing.T) {
		status := "approved"
		resp, err := svc.GetBusinessAppointments(context.Background(), &models.GetBusinessAppointmentsRequest{
			BusinessID: 1,
			Status:     &status,
		})
		require.NoError(t, err)
		require.Len(t, resp.Appointments, 1)
		assert.Equal(t, int64(2), resp.Appointments[0].ID)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		status := "archived"
		_, err := svc.GetBusinessAppointments(context.Background(), &models.GetBusinessAppointmentsRequest{
			BusinessID: 1,
			Status:     &status,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
