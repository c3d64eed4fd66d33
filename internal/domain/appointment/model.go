package appointment

import (
	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

const (
	// Table is the backend table holding appointments.
	Table = "appointment_c"

	DefaultName     = "Appointment"
	DefaultStatus   = "scheduled"
	DefaultDuration = 30
)

// Appointment is the reconciled view of an appointment_c row. Status is
// free-form; the UI drives its values.
type Appointment struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Tags      string  `json:"tags,omitempty"`
	PatientID int     `json:"patientId"`
	DoctorID  int     `json:"doctorId"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Duration  int     `json:"duration"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes,omitempty"`
}

var Mapping = reconcile.Mapping{
	{Logical: "id", Column: reconcile.IDColumn, Kind: reconcile.Int},
	{Logical: "name", Column: "Name", Default: DefaultName},
	{Logical: "tags", Column: "Tags"},
	{Logical: "date", Column: "date_c", Kind: reconcile.Date},
	{Logical: "time", Column: "time_c"},
	{Logical: "duration", Column: "duration_c", Kind: reconcile.Int, Default: DefaultDuration, Lenient: true},
	{Logical: "type", Column: "type_c"},
	{Logical: "status", Column: "status_c", Default: DefaultStatus},
	{Logical: "notes", Column: "notes_c"},
	{Logical: "patientId", Column: "patient_id_c", Legacy: []string{"patient_id"}, Kind: reconcile.Ref, Required: true},
	{Logical: "doctorId", Column: "doctor_id_c", Legacy: []string{"doctor_id"}, Kind: reconcile.Ref, Required: true},
}

// Decode builds an Appointment from a backend row. Foreign keys come back as
// plain integers whatever shape the backend used.
func Decode(rec records.Record) *Appointment {
	v := Mapping.Read(rec)
	return &Appointment{
		ID:        v.Int("id"),
		Name:      v.String("name"),
		Tags:      v.String("tags"),
		PatientID: v.Int("patientId"),
		DoctorID:  v.Int("doctorId"),
		Date:      v.String("date"),
		Time:      v.String("time"),
		Duration:  v.Int("duration"),
		Type:      v.String("type"),
		Status:    v.String("status"),
		Notes:     v.OptString("notes"),
	}
}
