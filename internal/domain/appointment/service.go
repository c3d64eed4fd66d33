package appointment

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/events"
	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

// Service provides the appointment record operations.
type Service struct {
	appointments *records.Table[Appointment]
}

func NewService(client records.Client, logger zerolog.Logger, pub events.Publisher) *Service {
	return &Service{
		appointments: records.NewTable(client, records.TableConfig[Appointment]{
			Name:   Table,
			Entity: "appointment",
			Fields: Mapping.Columns(),
			Decode: Decode,
		}, logger, pub),
	}
}

func (s *Service) List(ctx context.Context) ([]*Appointment, error) {
	return s.appointments.List(ctx)
}

// ListByPatient filters on the backend by patient foreign key.
func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]*Appointment, error) {
	return s.appointments.List(ctx, records.EqualTo("patient_id_c", patientID))
}

func (s *Service) Get(ctx context.Context, id int) (*Appointment, error) {
	return s.appointments.Get(ctx, id)
}

// Create validates input before any backend call. Name, status and duration
// fall back to their defaults when absent.
func (s *Service) Create(ctx context.Context, input map[string]any) (*Appointment, error) {
	rec, err := Mapping.Write(input, reconcile.Create)
	if err != nil {
		return nil, err
	}
	return s.appointments.Create(ctx, rec)
}

func (s *Service) Update(ctx context.Context, id int, input map[string]any) (*Appointment, error) {
	rec, err := Mapping.Write(input, reconcile.Update)
	if err != nil {
		return nil, err
	}
	return s.appointments.Update(ctx, id, rec)
}

func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	return s.appointments.Delete(ctx, id)
}
