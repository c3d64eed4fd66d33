// Package recordstest provides an in-memory records.Client for tests. It
// behaves like the hosted backend: server-assigned integer ids, projection to
// the requested field list, and EqualTo filtering.
package recordstest

import (
	"context"
	"sync"

	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

// Fake is a thread-safe in-memory backend. Set Err to make every call fail
// with a transport error, or one of the *Response fields to return a canned
// response for that operation.
type Fake struct {
	mu     sync.Mutex
	rows   map[string]map[int]records.Record
	order  map[string][]int
	nextID int

	Calls map[string]int

	Err            error
	FetchResponse  *records.FetchResponse
	CreateResponse *records.MutationResponse
	UpdateResponse *records.MutationResponse
	DeleteResponse *records.MutationResponse

	// Writes holds every record submitted through create or update.
	Writes []records.Record
}

// New returns an empty fake backend.
func New() *Fake {
	return &Fake{
		rows:  make(map[string]map[int]records.Record),
		order: make(map[string][]int),
		Calls: make(map[string]int),
	}
}

var _ records.Client = (*Fake)(nil)

// Seed stores rec in table without counting a call and returns its id.
func (f *Fake) Seed(table string, rec records.Record) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(table, rec)
}

// TotalCalls returns the number of client calls made so far.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

// Row returns the stored row, unprojected.
func (f *Fake) Row(table string, id int) records.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[table][id]
}

func (f *Fake) insert(table string, rec records.Record) int {
	if f.rows[table] == nil {
		f.rows[table] = make(map[int]records.Record)
	}
	f.nextID++
	id := f.nextID
	row := make(records.Record, len(rec)+1)
	for k, v := range rec {
		row[k] = v
	}
	row[records.IDColumn] = id
	f.rows[table][id] = row
	f.order[table] = append(f.order[table], id)
	return id
}

func (f *Fake) call(op string) error {
	f.Calls[op]++
	if f.Err != nil {
		return &records.TransportError{Op: op, Err: f.Err}
	}
	return nil
}

func (f *Fake) FetchRecords(_ context.Context, table string, q records.Query) (*records.FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("fetch"); err != nil {
		return nil, err
	}
	if f.FetchResponse != nil {
		return f.FetchResponse, nil
	}
	resp := &records.FetchResponse{Success: true}
	for _, id := range f.order[table] {
		row, ok := f.rows[table][id]
		if !ok || !matches(row, q.Where) {
			continue
		}
		resp.Data = append(resp.Data, project(row, q.Fields))
	}
	return resp, nil
}

func (f *Fake) GetRecordByID(_ context.Context, table string, id int, q records.Query) (*records.GetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("get"); err != nil {
		return nil, err
	}
	row, ok := f.rows[table][id]
	if !ok {
		return &records.GetResponse{}, nil
	}
	return &records.GetResponse{Data: project(row, q.Fields)}, nil
}

func (f *Fake) CreateRecord(_ context.Context, table string, recs []records.Record) (*records.MutationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create"); err != nil {
		return nil, err
	}
	f.Writes = append(f.Writes, recs...)
	if f.CreateResponse != nil {
		return f.CreateResponse, nil
	}
	resp := &records.MutationResponse{Success: true}
	for _, rec := range recs {
		id := f.insert(table, rec)
		resp.Results = append(resp.Results, records.Result{Success: true, Data: f.rows[table][id]})
	}
	return resp, nil
}

func (f *Fake) UpdateRecord(_ context.Context, table string, recs []records.Record) (*records.MutationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("update"); err != nil {
		return nil, err
	}
	f.Writes = append(f.Writes, recs...)
	if f.UpdateResponse != nil {
		return f.UpdateResponse, nil
	}
	resp := &records.MutationResponse{Success: true}
	for _, rec := range recs {
		id, _ := reconcile.ToInt(rec[records.IDColumn])
		row, ok := f.rows[table][id]
		if !ok {
			resp.Results = append(resp.Results, records.Result{Success: false, Message: "record not found"})
			continue
		}
		for k, v := range rec {
			row[k] = v
		}
		resp.Results = append(resp.Results, records.Result{Success: true, Data: row})
	}
	return resp, nil
}

func (f *Fake) DeleteRecord(_ context.Context, table string, ids []int) (*records.MutationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete"); err != nil {
		return nil, err
	}
	if f.DeleteResponse != nil {
		return f.DeleteResponse, nil
	}
	resp := &records.MutationResponse{Success: true}
	for _, id := range ids {
		if _, ok := f.rows[table][id]; !ok {
			resp.Results = append(resp.Results, records.Result{Success: false, Message: "record not found"})
			continue
		}
		delete(f.rows[table], id)
		resp.Results = append(resp.Results, records.Result{Success: true})
	}
	return resp, nil
}

func project(row records.Record, fields []string) records.Record {
	out := records.Record{records.IDColumn: row[records.IDColumn]}
	for _, name := range fields {
		if v, ok := row[name]; ok {
			out[name] = v
		}
	}
	return out
}

func matches(row records.Record, where []records.Condition) bool {
	for _, c := range where {
		if c.Operator != records.OpEqualTo || len(c.Values) == 0 {
			continue
		}
		got, ok := row[c.FieldName]
		if !ok {
			return false
		}
		if gotID, okGot := reconcile.ResolveRef(got); okGot {
			if wantID, okWant := reconcile.ResolveRef(c.Values[0]); okWant {
				if gotID != wantID {
					return false
				}
				continue
			}
		}
		if reconcile.ToString(got) != reconcile.ToString(c.Values[0]) {
			return false
		}
	}
	return true
}
