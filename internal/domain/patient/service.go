package patient

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/events"
	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

// Service provides the patient record operations.
type Service struct {
	patients *records.Table[Patient]
}

// NewService creates a patient service on top of the record backend.
func NewService(client records.Client, logger zerolog.Logger, pub events.Publisher) *Service {
	return &Service{
		patients: records.NewTable(client, records.TableConfig[Patient]{
			Name:   Table,
			Entity: "patient",
			Fields: Mapping.Columns(),
			Decode: Decode,
		}, logger, pub),
	}
}

func (s *Service) List(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

// Get returns nil without error when the patient does not exist.
func (s *Service) Get(ctx context.Context, id int) (*Patient, error) {
	return s.patients.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input map[string]any) (*Patient, error) {
	rec, err := Mapping.Write(input, reconcile.Create)
	if err != nil {
		return nil, err
	}
	return s.patients.Create(ctx, rec)
}

func (s *Service) Update(ctx context.Context, id int, input map[string]any) (*Patient, error) {
	rec, err := Mapping.Write(input, reconcile.Update)
	if err != nil {
		return nil, err
	}
	return s.patients.Update(ctx, id, rec)
}

func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	return s.patients.Delete(ctx, id)
}
