package medicalrecord

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/events"
	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

// PrescriptionRequest is the payload of the prescription form. DoctorID
// accepts a number or a numeric string, like every other foreign key.
type PrescriptionRequest struct {
	VisitDate     string         `json:"visitDate"`
	Diagnosis     string         `json:"diagnosis"`
	Treatment     string         `json:"treatment"`
	DoctorID      any            `json:"doctorId,omitempty"`
	Prescriptions []Prescription `json:"prescriptions"`
}

// Service provides the medical record operations.
type Service struct {
	medicalRecords *records.Table[MedicalRecord]
	now            func() time.Time
}

func NewService(client records.Client, logger zerolog.Logger, pub events.Publisher) *Service {
	return &Service{
		medicalRecords: records.NewTable(client, records.TableConfig[MedicalRecord]{
			Name:   Table,
			Entity: "medical_record",
			Fields: Mapping.Columns(),
			Decode: Decode,
		}, logger, pub),
		now: time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]*MedicalRecord, error) {
	return s.medicalRecords.List(ctx)
}

// ListByPatient asks the backend for the records of one patient only.
func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]*MedicalRecord, error) {
	return s.medicalRecords.List(ctx, records.EqualTo("patient_id_c", patientID))
}

func (s *Service) Get(ctx context.Context, id int) (*MedicalRecord, error) {
	return s.medicalRecords.Get(ctx, id)
}

// Create accepts either the three medication columns or an embedded
// prescriptions list. doctorId falls back to 1 when absent or not numeric.
func (s *Service) Create(ctx context.Context, input map[string]any) (*MedicalRecord, error) {
	rec, err := Mapping.Write(withPrescriptions(input), reconcile.Create)
	if err != nil {
		return nil, err
	}
	return s.medicalRecords.Create(ctx, rec)
}

func (s *Service) Update(ctx context.Context, id int, input map[string]any) (*MedicalRecord, error) {
	rec, err := Mapping.Write(withPrescriptions(input), reconcile.Update)
	if err != nil {
		return nil, err
	}
	return s.medicalRecords.Update(ctx, id, rec)
}

func (s *Service) Delete(ctx context.Context, id int) (bool, error) {
	return s.medicalRecords.Delete(ctx, id)
}

// CreatePrescription records a visit for patientID from the prescription
// form. The visit date defaults to today.
func (s *Service) CreatePrescription(ctx context.Context, patientID int, req PrescriptionRequest) (*MedicalRecord, error) {
	visitDate := req.VisitDate
	if visitDate == "" {
		visitDate = s.now().Format("2006-01-02")
	}
	var doctorID any = DefaultDoctorID
	if req.DoctorID != nil && req.DoctorID != "" {
		doctorID = req.DoctorID
	}
	return s.Create(ctx, map[string]any{
		"patientId":     patientID,
		"doctorId":      doctorID,
		"visitDate":     visitDate,
		"diagnosis":     req.Diagnosis,
		"treatment":     req.Treatment,
		"prescriptions": req.Prescriptions,
	})
}
