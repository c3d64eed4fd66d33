// Package chart assembles the patient detail view: the patient, their
// appointments and their medical records, fetched concurrently.
package chart

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/medicalrecord"
	"github.com/clinic/clinic/internal/domain/patient"
)

// ErrPatientNotFound is returned when the chart's patient does not exist.
var ErrPatientNotFound = errors.New("patient not found")

type PatientReader interface {
	Get(ctx context.Context, id int) (*patient.Patient, error)
}

type AppointmentLister interface {
	List(ctx context.Context) ([]*appointment.Appointment, error)
}

type MedicalRecordStore interface {
	List(ctx context.Context) ([]*medicalrecord.MedicalRecord, error)
	CreatePrescription(ctx context.Context, patientID int, req medicalrecord.PrescriptionRequest) (*medicalrecord.MedicalRecord, error)
}

// Chart is the aggregated patient view. Allergies and CurrentMedications are
// left out of the JSON when empty; the two record lists are always present.
type Chart struct {
	Patient            *patient.Patient               `json:"patient"`
	Appointments       []*appointment.Appointment     `json:"appointments"`
	MedicalRecords     []*medicalrecord.MedicalRecord `json:"medicalRecords"`
	Allergies          []string                       `json:"allergies,omitempty"`
	CurrentMedications []string                       `json:"currentMedications,omitempty"`
}

type Service struct {
	patients       PatientReader
	appointments   AppointmentLister
	medicalRecords MedicalRecordStore
	logger         zerolog.Logger
}

func NewService(patients PatientReader, appointments AppointmentLister, medicalRecords MedicalRecordStore, logger zerolog.Logger) *Service {
	return &Service{
		patients:       patients,
		appointments:   appointments,
		medicalRecords: medicalRecords,
		logger:         logger.With().Str("component", "chart").Logger(),
	}
}

// Load fetches the three sources in parallel. The first failure cancels the
// other fetches and no partial chart is returned.
func (s *Service) Load(ctx context.Context, patientID int) (*Chart, error) {
	var (
		p     *patient.Patient
		appts []*appointment.Appointment
		recs  []*medicalrecord.MedicalRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.patients.Get(gctx, patientID)
		if err != nil {
			return err
		}
		if found == nil {
			return ErrPatientNotFound
		}
		p = found
		return nil
	})
	g.Go(func() error {
		var err error
		appts, err = s.appointments.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recs, err = s.medicalRecords.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Debug().Err(err).Int("patient_id", patientID).Msg("chart load aborted")
		return nil, err
	}

	c := &Chart{
		Patient: p,
		Appointments: lo.Filter(appts, func(a *appointment.Appointment, _ int) bool {
			return a.PatientID == patientID
		}),
		MedicalRecords: lo.Filter(recs, func(m *medicalrecord.MedicalRecord, _ int) bool {
			return m.PatientID == patientID
		}),
		Allergies:          lo.Compact(p.Allergies),
		CurrentMedications: lo.Compact(p.CurrentMedications),
	}
	s.logger.Debug().
		Int("patient_id", patientID).
		Int("appointments", len(c.Appointments)).
		Int("medical_records", len(c.MedicalRecords)).
		Msg("chart loaded")
	return c, nil
}

// AddPrescription records a visit for the patient and returns the reloaded
// chart. Nothing is written for an unknown patient.
func (s *Service) AddPrescription(ctx context.Context, patientID int, req medicalrecord.PrescriptionRequest) (*Chart, error) {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPatientNotFound
	}
	if _, err := s.medicalRecords.CreatePrescription(ctx, patientID, req); err != nil {
		return nil, err
	}
	return s.Load(ctx, patientID)
}
