package doctor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/events"
	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

// Service provides the doctor record operations.
type Service struct {
	doctors *records.Table[Doctor]
}

func NewService(client records.Client, logger zerolog.Logger, pub events.Publisher) *Service {
	return &Service{
		doctors: records.NewTable(client, records.TableConfig[Doctor]{
			Name:   Table,
			Entity: "doctor",
			Fields: Mapping.Columns(),
			Decode: Decode,
		}, logger, pub),
	}
}

func (s *Service) List(ctx context.Context) ([]*Doctor, error) {
	return s.doctors.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (*Doctor, error) {
	return s.doctors.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input map[string]any) (*Doctor, error) {
	rec, err := Mapping.Write(input, reconcile.Create)
	if err != nil {
		return nil, err
	}
	return s.doctors.Create(ctx, rec)
}

func (s *Service) Update(ctx context.Context, id int, input map[string]any) (*Doctor, error) {
	rec, err := Mapping.Write(input, reconcile.Update)
	if err != nil {
		return nil, err
	}
	return s.doctors.Update(ctx, id, rec)
}

func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	return s.doctors.Delete(ctx, id)
}
