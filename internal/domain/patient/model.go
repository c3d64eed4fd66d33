package patient

import (
	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

// Table is the backend table holding patients.
const Table = "patient_c"

// Patient is the reconciled view of a patient_c row.
type Patient struct {
	ID                 int               `json:"id"`
	Name               string            `json:"name"`
	Tags               string            `json:"tags,omitempty"`
	DateOfBirth        string            `json:"dateOfBirth"`
	Gender             string            `json:"gender"`
	Phone              string            `json:"phone"`
	Email              *string           `json:"email,omitempty"`
	Address            *string           `json:"address,omitempty"`
	MedicalID          string            `json:"medicalId"`
	Allergies          []string          `json:"allergies"`
	CurrentMedications []string          `json:"currentMedications"`
	EmergencyContact   *EmergencyContact `json:"emergencyContact,omitempty"`
}

type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

// Mapping translates between API field names and patient_c columns. The
// emergency contact is flattened into three columns; the nested form posted
// by older clients is read through dotted legacy keys.
var Mapping = reconcile.Mapping{
	{Logical: "id", Column: reconcile.IDColumn, Kind: reconcile.Int},
	{Logical: "name", Column: "Name", Required: true},
	{Logical: "tags", Column: "Tags"},
	{Logical: "dateOfBirth", Column: "date_of_birth_c", Kind: reconcile.Date},
	{Logical: "gender", Column: "gender_c"},
	{Logical: "phone", Column: "phone_c"},
	{Logical: "email", Column: "email_c"},
	{Logical: "address", Column: "address_c"},
	{Logical: "medicalId", Column: "medical_id_c"},
	{Logical: "allergies", Column: "allergies_c", Kind: reconcile.List},
	{Logical: "currentMedications", Column: "current_medications_c", Kind: reconcile.List},
	{Logical: "emergencyContactName", Column: "emergency_contact_name_c", Legacy: []string{"emergencyContact.name"}},
	{Logical: "emergencyContactPhone", Column: "emergency_contact_phone_c", Legacy: []string{"emergencyContact.phone"}},
	{Logical: "emergencyContactRelation", Column: "emergency_contact_relation_c", Legacy: []string{"emergencyContact.relation"}},
}

// Decode builds a Patient from a backend row in either naming convention.
func Decode(rec records.Record) *Patient {
	v := Mapping.Read(rec)
	p := &Patient{
		ID:                 v.Int("id"),
		Name:               v.String("name"),
		Tags:               v.String("tags"),
		DateOfBirth:        v.String("dateOfBirth"),
		Gender:             v.String("gender"),
		Phone:              v.String("phone"),
		Email:              v.OptString("email"),
		Address:            v.OptString("address"),
		MedicalID:          v.String("medicalId"),
		Allergies:          v.List("allergies"),
		CurrentMedications: v.List("currentMedications"),
	}
	contact := EmergencyContact{
		Name:     v.String("emergencyContactName"),
		Phone:    v.String("emergencyContactPhone"),
		Relation: v.String("emergencyContactRelation"),
	}
	if contact != (EmergencyContact{}) {
		p.EmergencyContact = &contact
	}
	return p
}
