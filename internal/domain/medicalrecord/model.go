package medicalrecord

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

const (
	// Table is the backend table holding visit records.
	Table = "medical_record_c"

	DefaultName     = "Medical Record"
	DefaultDoctorID = 1

	// prescriptionSeparator joins prescription items into the three
	// medication columns.
	prescriptionSeparator = ", "
)

// MedicalRecord is the reconciled view of a medical_record_c row.
type MedicalRecord struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Tags          string         `json:"tags,omitempty"`
	PatientID     int            `json:"patientId"`
	DoctorID      int            `json:"doctorId"`
	VisitDate     string         `json:"visitDate"`
	Diagnosis     string         `json:"diagnosis"`
	Treatment     string         `json:"treatment"`
	Medication    string         `json:"medication"`
	Dosage        string         `json:"dosage"`
	Duration      string         `json:"duration"`
	Prescriptions []Prescription `json:"prescriptions"`
}

// Prescription is one medication line of a visit.
type Prescription struct {
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
	Duration   string `json:"duration"`
}

var Mapping = reconcile.Mapping{
	{Logical: "id", Column: reconcile.IDColumn, Kind: reconcile.Int},
	{Logical: "name", Column: "Name", Default: DefaultName},
	{Logical: "tags", Column: "Tags"},
	{Logical: "patientId", Column: "patient_id_c", Legacy: []string{"patient_id"}, Kind: reconcile.Ref, Required: true},
	{Logical: "visitDate", Column: "visit_date_c", Kind: reconcile.Date},
	{Logical: "diagnosis", Column: "diagnosis_c"},
	{Logical: "treatment", Column: "treatment_c"},
	{Logical: "doctorId", Column: "doctor_id_c", Legacy: []string{"doctor_id"}, Kind: reconcile.Ref, Default: DefaultDoctorID, Lenient: true},
	{Logical: "medication", Column: "medication_c"},
	{Logical: "dosage", Column: "dosage_c"},
	{Logical: "duration", Column: "duration_c"},
}

func Decode(rec records.Record) *MedicalRecord {
	v := Mapping.Read(rec)
	m := &MedicalRecord{
		ID:         v.Int("id"),
		Name:       v.String("name"),
		Tags:       v.String("tags"),
		PatientID:  v.Int("patientId"),
		DoctorID:   v.Int("doctorId"),
		VisitDate:  v.String("visitDate"),
		Diagnosis:  v.String("diagnosis"),
		Treatment:  v.String("treatment"),
		Medication: v.String("medication"),
		Dosage:     v.String("dosage"),
		Duration:   v.String("duration"),
	}
	m.Prescriptions = zipPrescriptions(m.Medication, m.Dosage, m.Duration)
	return m
}

// zipPrescriptions rebuilds prescription lines from the three joined columns
// by position. Dosage and duration may have fewer items than medication.
func zipPrescriptions(medication, dosage, duration string) []Prescription {
	meds := splitPositional(medication)
	doses := splitPositional(dosage)
	durations := splitPositional(duration)

	out := make([]Prescription, 0, len(meds))
	for i, med := range meds {
		if med == "" {
			continue
		}
		p := Prescription{Medication: med}
		if i < len(doses) {
			p.Dosage = doses[i]
		}
		if i < len(durations) {
			p.Duration = durations[i]
		}
		out = append(out, p)
	}
	return out
}

func splitPositional(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return lo.Map(strings.Split(s, reconcile.ListSeparator), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
}

// withPrescriptions derives medication, dosage and duration from an embedded
// prescriptions list. Values the caller set explicitly win.
func withPrescriptions(input map[string]any) map[string]any {
	items := toPrescriptions(input["prescriptions"])
	if len(items) == 0 {
		return input
	}
	out := make(map[string]any, len(input)+3)
	for k, v := range input {
		out[k] = v
	}
	derived := map[string]string{
		"medication": strings.Join(lo.Map(items, func(p Prescription, _ int) string { return p.Medication }), prescriptionSeparator),
		"dosage":     strings.Join(lo.Map(items, func(p Prescription, _ int) string { return p.Dosage }), prescriptionSeparator),
		"duration":   strings.Join(lo.Map(items, func(p Prescription, _ int) string { return p.Duration }), prescriptionSeparator),
	}
	for logical, val := range derived {
		rule, _ := Mapping.Rule(logical)
		if _, set := reconcile.Lookup(input, rule.Column, rule.Logical); set {
			continue
		}
		out[logical] = val
	}
	delete(out, "prescriptions")
	return out
}

func toPrescriptions(v any) []Prescription {
	switch t := v.(type) {
	case []Prescription:
		return t
	case []any:
		return lo.FilterMap(t, func(item any, _ int) (Prescription, bool) {
			m, ok := item.(map[string]any)
			if !ok {
				return Prescription{}, false
			}
			return Prescription{
				Medication: reconcile.ToString(m["medication"]),
				Dosage:     reconcile.ToString(m["dosage"]),
				Duration:   reconcile.ToString(m["duration"]),
			}, true
		})
	}
	return nil
}

var commonMedications = []string{
	"Lisinopril", "Amlodipine", "Metformin", "Atorvastatin", "Omeprazole",
	"Levothyroxine", "Albuterol inhaler", "Prednisone", "Ibuprofen",
	"Acetaminophen", "Amoxicillin", "Azithromycin", "Hydrochlorothiazide",
	"Losartan", "Gabapentin", "Sertraline", "Escitalopram", "Pantoprazole",
	"Vitamin D3", "Prenatal vitamins", "Aspirin", "Clopidogrel", "Warfarin",
	"Insulin", "Glipizide", "Furosemide", "Carvedilol", "Simvastatin",
}

// CommonMedications returns the sorted catalogue offered by the prescription form.
func CommonMedications() []string {
	out := append([]string(nil), commonMedications...)
	sort.Strings(out)
	return out
}
