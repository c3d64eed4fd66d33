package doctor

import (
	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

// Table is the backend table holding doctors.
const Table = "doctor_c"

// Doctor is the reconciled view of a doctor_c row. Availability is opaque:
// it is stored as a JSON string and handed back structured when it parses.
type Doctor struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Tags           string `json:"tags,omitempty"`
	Specialization string `json:"specialization"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Availability   any    `json:"availability,omitempty"`
}

var Mapping = reconcile.Mapping{
	{Logical: "id", Column: reconcile.IDColumn, Kind: reconcile.Int},
	{Logical: "name", Column: "Name", Required: true},
	{Logical: "tags", Column: "Tags"},
	{Logical: "specialization", Column: "specialization_c", Legacy: []string{"specialty"}},
	{Logical: "email", Column: "email_c"},
	{Logical: "phone", Column: "phone_c"},
	{Logical: "availability", Column: "availability_c", Kind: reconcile.JSON},
}

func Decode(rec records.Record) *Doctor {
	v := Mapping.Read(rec)
	return &Doctor{
		ID:             v.Int("id"),
		Name:           v.String("name"),
		Tags:           v.String("tags"),
		Specialization: v.String("specialization"),
		Email:          v.String("email"),
		Phone:          v.String("phone"),
		Availability:   v.Any("availability"),
	}
}
