package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/anudeep227/personal-health-manager/gen/ent"
	v1 "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/repository"
)

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	created   *repository.Appointment
	updated   *repository.AppointmentUpdate
	missing   bool
	listFrom  *time.Time
	listTo    *time.Time
	listAppts []*entity.Appointment
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *repository.Appointment) (*entity.Appointment, error) {
	f.created = a
	return &entity.Appointment{
		ID:              uuid.New(),
		UserID:          a.UserID,
		Title:           a.Title,
		AppointmentDate: a.AppointmentDate,
		Status:          "scheduled",
	}, nil
}

func (f *fakeAppointmentRepo) ListByUser(_ context.Context, _ uuid.UUID, from, to *time.Time) ([]*entity.Appointment, error) {
	f.listFrom, f.listTo = from, to
	return f.listAppts, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, id uuid.UUID, upd *repository.AppointmentUpdate) (*entity.Appointment, error) {
	if f.missing {
		return nil, &ent.NotFoundError{}
	}
	f.updated = upd
	status := "scheduled"
	if upd.Status != nil {
		status = *upd.Status
	}
	return &entity.Appointment{ID: id, Title: "Cardiology checkup", Status: status}, nil
}

func TestScheduleAppointment(t *testing.T) {
	user := &entity.User{ID: uuid.New()}
	appts := &fakeAppointmentRepo{}
	srv := NewAppointmentsServer(appts, newFakeUserRepo(user), discardLogger())

	resp, err := srv.ScheduleAppointment(context.Background(), &v1.ScheduleAppointmentRequest{
		UserId:          user.ID.String(),
		Title:           "Cardiology checkup",
		DoctorName:      "Dr. Chen",
		AppointmentDate: "2026-09-01T10:30:00Z",
		DurationMinutes: 45,
	})

	require.NoError(t, err)
	assert.Equal(t, "Cardiology checkup", resp.GetAppointment().GetTitle())
	assert.Equal(t, "scheduled", resp.GetAppointment().GetStatus())
	require.NotNil(t, appts.created)
	require.NotNil(t, appts.created.DurationMinutes)
	assert.Equal(t, 45, *appts.created.DurationMinutes)
	assert.Equal(t, 2026, appts.created.AppointmentDate.Year())
}

func TestScheduleAppointmentRejectsBadDate(t *testing.T) {
	user := &entity.User{ID: uuid.New()}
	srv := NewAppointmentsServer(&fakeAppointmentRepo{}, newFakeUserRepo(user), discardLogger())

	_, err := srv.ScheduleAppointment(context.Background(), &v1.ScheduleAppointmentRequest{
		UserId:          user.ID.String(),
		Title:           "Checkup",
		AppointmentDate: "tomorrow at noon",
	})

	requireCode(t, err, codes.InvalidArgument)
}

func TestListAppointmentsWindow(t *testing.T) {
	appts := &fakeAppointmentRepo{}
	srv := NewAppointmentsServer(appts, newFakeUserRepo(), discardLogger())

	_, err := srv.ListAppointments(context.Background(), &v1.ListAppointmentsRequest{
		UserId:   uuid.NewString(),
		FromDate: "2026-09-01",
	})

	require.NoError(t, err)
	require.NotNil(t, appts.listFrom)
	assert.Nil(t, appts.listTo)
}

func TestCancelAppointment(t *testing.T) {
	appts := &fakeAppointmentRepo{}
	srv := NewAppointmentsServer(appts, newFakeUserRepo(), discardLogger())

	resp, err := srv.CancelAppointment(context.Background(), &v1.CancelAppointmentRequest{
		AppointmentId: uuid.NewString(),
	})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.GetAppointment().GetStatus())
	require.NotNil(t, appts.updated)
	require.NotNil(t, appts.updated.Status)
	assert.Equal(t, "cancelled", *appts.updated.Status)
}

func TestCancelAppointmentNotFound(t *testing.T) {
	srv := NewAppointmentsServer(&fakeAppointmentRepo{missing: true}, newFakeUserRepo(), discardLogger())

	_, err := srv.CancelAppointment(context.Background(), &v1.CancelAppointmentRequest{
		AppointmentId: uuid.NewString(),
	})

	requireCode(t, err, codes.NotFound)
}
