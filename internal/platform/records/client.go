// Package records defines the contract of the hosted record-table backend and a
// generic table store built on top of it. Every entity service talks to the
// backend exclusively through the Client interface defined here.
package records

import (
	"context"
	"encoding/json"
)

// Record is a single row as exchanged with the backend: column name to value.
type Record map[string]any

// FieldRef names one requested column. It serializes as {"field":{"Name":"x"}}.
type FieldRef struct {
	Field struct {
		Name string `json:"Name"`
	} `json:"field"`
}

// Condition is a server-side filter on one column.
type Condition struct {
	FieldName string `json:"FieldName"`
	Operator  string `json:"Operator"`
	Values    []any  `json:"Values"`
	Include   bool   `json:"Include"`
}

// OpEqualTo is the only operator the services issue.
const OpEqualTo = "EqualTo"

// EqualTo builds a condition matching rows whose column equals value.
func EqualTo(column string, value any) Condition {
	return Condition{FieldName: column, Operator: OpEqualTo, Values: []any{value}, Include: true}
}

// Query selects the columns to return and optionally filters rows. The backend
// returns no data for columns that are not listed.
type Query struct {
	Fields []string    `json:"-"`
	Where  []Condition `json:"where,omitempty"`
}

// MarshalJSON renders the query in the backend's {fields:[{field:{Name}}]} shape.
func (q Query) MarshalJSON() ([]byte, error) {
	refs := make([]FieldRef, len(q.Fields))
	for i, name := range q.Fields {
		refs[i].Field.Name = name
	}
	type wire struct {
		Fields []FieldRef   `json:"fields"`
		Where  []Condition `json:"where,omitempty"`
	}
	return json.Marshal(wire{Fields: refs, Where: q.Where})
}

// UnmarshalJSON accepts the backend's {fields:[{field:{Name}}]} shape.
func (q *Query) UnmarshalJSON(b []byte) error {
	var w struct {
		Fields []FieldRef   `json:"fields"`
		Where  []Condition `json:"where"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	q.Fields = make([]string, len(w.Fields))
	for i, f := range w.Fields {
		q.Fields[i] = f.Field.Name
	}
	q.Where = w.Where
	return nil
}

// FetchResponse is returned by FetchRecords.
type FetchResponse struct {
	Success bool     `json:"success"`
	Data    []Record `json:"data"`
	Message string   `json:"message,omitempty"`
}

// GetResponse is returned by GetRecordByID. Data is nil when the row does not exist.
type GetResponse struct {
	Data Record `json:"data"`
}

// Result is the per-record outcome inside a mutation response.
type Result struct {
	Success bool   `json:"success"`
	Data    Record `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// MutationResponse is returned by create, update and delete calls.
type MutationResponse struct {
	Success bool     `json:"success"`
	Results []Result `json:"results,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Failed returns the per-record results that did not succeed.
func (r *MutationResponse) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	return failed
}

// Client is the backend collaborator. Implementations return *TransportError
// when the backend cannot be reached; backend-reported failures are carried in
// the response bodies and interpreted by Table.
type Client interface {
	FetchRecords(ctx context.Context, table string, q Query) (*FetchResponse, error)
	GetRecordByID(ctx context.Context, table string, id int, q Query) (*GetResponse, error)
	CreateRecord(ctx context.Context, table string, recs []Record) (*MutationResponse, error)
	UpdateRecord(ctx context.Context, table string, recs []Record) (*MutationResponse, error)
	DeleteRecord(ctx context.Context, table string, ids []int) (*MutationResponse, error)
}
