package pgstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinic/clinic/internal/platform/records"
)

type fakeRow struct {
	id   int64
	data map[string]any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.id
	*dest[1].(*map[string]any) = r.data
	return nil
}

type fakeRows struct {
	rows []fakeRow
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return r.rows[r.pos-1].Scan(dest...)
}

type fakeDB struct {
	sql      []string
	args     [][]any
	rows     []fakeRow
	row      fakeRow
	affected string
	err      error
}

func (f *fakeDB) record(sql string, args []any) {
	f.sql = append(f.sql, sql)
	f.args = append(f.args, args)
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.record(sql, args)
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag(f.affected), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	f.record(sql, args)
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	f.record(sql, args)
	return f.row
}

var testSchema = Schema{"patient_c": {"gender_c", "patient_id_c"}}

func TestFetchRecords_ProjectsAndFilters(t *testing.T) {
	db := &fakeDB{rows: []fakeRow{
		{id: 1, data: map[string]any{"Name": "Ada", "gender_c": "female", "secret": "x"}},
	}}
	s := New(db, testSchema)

	resp, err := s.FetchRecords(context.Background(), "patient_c", records.Query{
		Fields: []string{"Name", "gender_c", "secret"},
		Where:  []records.Condition{records.EqualTo("patient_id_c", 7)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || len(resp.Data) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	got := resp.Data[0]
	if got["Id"] != 1 || got["Name"] != "Ada" || got["gender_c"] != "female" {
		t.Errorf("unexpected record %+v", got)
	}
	if _, ok := got["secret"]; ok {
		t.Error("undeclared column must not be returned")
	}
	if !strings.Contains(db.sql[0], "data->>$2 = $3") {
		t.Errorf("expected where clause in %q", db.sql[0])
	}
	if db.args[0][2] != "7" {
		t.Errorf("expected text comparison value, got %v", db.args[0][2])
	}
}

func TestFetchRecords_EmptyIsNotNil(t *testing.T) {
	resp, err := New(&fakeDB{}, testSchema).FetchRecords(context.Background(), "patient_c", records.Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data == nil {
		t.Error("expected non-nil data")
	}
}

func TestFetchRecords_UnknownTableAndField(t *testing.T) {
	db := &fakeDB{}
	s := New(db, testSchema)

	resp, err := s.FetchRecords(context.Background(), "nope_c", records.Query{})
	if err != nil || resp.Success {
		t.Errorf("expected failed envelope, got %+v, %v", resp, err)
	}
	resp, err = s.FetchRecords(context.Background(), "patient_c", records.Query{
		Where: []records.Condition{records.EqualTo("bogus_c", 1)},
	})
	if err != nil || resp.Success || !strings.Contains(resp.Message, "bogus_c") {
		t.Errorf("expected invalid field failure, got %+v, %v", resp, err)
	}
	if len(db.sql) != 0 {
		t.Error("no query should be issued")
	}
}

func TestFetchRecords_DatabaseErrorIsTransport(t *testing.T) {
	_, err := New(&fakeDB{err: errors.New("conn refused")}, testSchema).
		FetchRecords(context.Background(), "patient_c", records.Query{})
	if !records.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestGetRecordByID_NoRows(t *testing.T) {
	s := New(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}}, testSchema)
	resp, err := s.GetRecordByID(context.Background(), "patient_c", 3, records.Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data != nil {
		t.Errorf("expected no data, got %+v", resp.Data)
	}
}

func TestCreateRecord(t *testing.T) {
	db := &fakeDB{row: fakeRow{id: 9, data: map[string]any{"Name": "Ada"}}}
	s := New(db, testSchema)

	resp, err := s.CreateRecord(context.Background(), "patient_c", []records.Record{{"Name": "Ada"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 || !resp.Results[0].Success || resp.Results[0].Data["Id"] != 9 {
		t.Errorf("unexpected response %+v", resp)
	}
	if !strings.HasPrefix(db.sql[0], "INSERT INTO record_rows") {
		t.Errorf("unexpected sql %q", db.sql[0])
	}
}

func TestCreateRecord_UnknownColumnFailsRecord(t *testing.T) {
	db := &fakeDB{}
	resp, err := New(db, testSchema).CreateRecord(context.Background(), "patient_c", []records.Record{{"shoe_size_c": 9}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || len(resp.Failed()) != 1 {
		t.Errorf("expected per-record failure, got %+v", resp)
	}
	if len(db.sql) != 0 {
		t.Error("no statement should be issued")
	}
}

func TestUpdateRecord_NotFound(t *testing.T) {
	s := New(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}}, testSchema)
	resp, err := s.UpdateRecord(context.Background(), "patient_c", []records.Record{{"Id": 4, "Name": "x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failed := resp.Failed()
	if len(failed) != 1 || failed[0].Message != "record not found" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestDeleteRecord(t *testing.T) {
	s := New(&fakeDB{affected: "DELETE 1"}, testSchema)
	resp, err := s.DeleteRecord(context.Background(), "patient_c", []int{4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 || !resp.Results[0].Success {
		t.Errorf("unexpected response %+v", resp)
	}

	s = New(&fakeDB{affected: "DELETE 0"}, testSchema)
	resp, _ = s.DeleteRecord(context.Background(), "patient_c", []int{4})
	if len(resp.Failed()) != 1 {
		t.Errorf("expected not found failure, got %+v", resp)
	}
}
