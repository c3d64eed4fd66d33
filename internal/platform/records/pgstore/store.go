// Package pgstore implements records.Client on PostgreSQL. Every backend table
// lives in one record_rows table as a JSONB document keyed by table name, so
// the service can run against a local database with the same semantics as
// the hosted backend.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinic/clinic/internal/platform/reconcile"
	"github.com/clinic/clinic/internal/platform/records"
)

// Schema lists the writable columns of each table. Name and Tags are implied.
type Schema map[string][]string

var systemColumns = []string{"Name", "Tags"}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store is a records.Client backed by a pgx pool or connection.
type Store struct {
	db      querier
	columns map[string]map[string]bool
}

var _ records.Client = (*Store)(nil)

// New returns a store for the tables declared in schema.
func New(db querier, schema Schema) *Store {
	cols := make(map[string]map[string]bool, len(schema))
	for table, names := range schema {
		set := make(map[string]bool, len(names)+len(systemColumns))
		for _, n := range systemColumns {
			set[n] = true
		}
		for _, n := range names {
			set[n] = true
		}
		cols[table] = set
	}
	return &Store{db: db, columns: cols}
}

// Tables returns the declared table names.
func (s *Store) Tables() []string {
	out := make([]string, 0, len(s.columns))
	for t := range s.columns {
		out = append(out, t)
	}
	return out
}

const rowCols = `id, data`

func (s *Store) FetchRecords(ctx context.Context, table string, q records.Query) (*records.FetchResponse, error) {
	cols, ok := s.columns[table]
	if !ok {
		return &records.FetchResponse{Message: unknownTable(table)}, nil
	}
	sql, args, err := selectSQL(table, cols, q.Where)
	if err != nil {
		return &records.FetchResponse{Message: err.Error()}, nil
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, &records.TransportError{Op: "fetch", Err: err}
	}
	defer rows.Close()

	resp := &records.FetchResponse{Success: true, Data: []records.Record{}}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &records.TransportError{Op: "fetch", Err: err}
		}
		resp.Data = append(resp.Data, project(rec, q.Fields, cols))
	}
	if err := rows.Err(); err != nil {
		return nil, &records.TransportError{Op: "fetch", Err: err}
	}
	return resp, nil
}

func (s *Store) GetRecordByID(ctx context.Context, table string, id int, q records.Query) (*records.GetResponse, error) {
	cols, ok := s.columns[table]
	if !ok {
		return &records.GetResponse{}, nil
	}
	rec, err := scanRecord(s.db.QueryRow(ctx,
		`SELECT `+rowCols+` FROM record_rows WHERE table_name = $1 AND id = $2`, table, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return &records.GetResponse{}, nil
	}
	if err != nil {
		return nil, &records.TransportError{Op: "get", Err: err}
	}
	return &records.GetResponse{Data: project(rec, q.Fields, cols)}, nil
}

func (s *Store) CreateRecord(ctx context.Context, table string, recs []records.Record) (*records.MutationResponse, error) {
	cols, ok := s.columns[table]
	if !ok {
		return &records.MutationResponse{Message: unknownTable(table)}, nil
	}
	resp := &records.MutationResponse{Success: true}
	for _, rec := range recs {
		data, err := writable(rec, cols)
		if err != nil {
			resp.Results = append(resp.Results, records.Result{Message: err.Error()})
			continue
		}
		row, err := scanRecord(s.db.QueryRow(ctx,
			`INSERT INTO record_rows (table_name, data) VALUES ($1, $2) RETURNING `+rowCols, table, data))
		if err != nil {
			return nil, &records.TransportError{Op: "create", Err: err}
		}
		resp.Results = append(resp.Results, records.Result{Success: true, Data: row})
	}
	return resp, nil
}

func (s *Store) UpdateRecord(ctx context.Context, table string, recs []records.Record) (*records.MutationResponse, error) {
	cols, ok := s.columns[table]
	if !ok {
		return &records.MutationResponse{Message: unknownTable(table)}, nil
	}
	resp := &records.MutationResponse{Success: true}
	for _, rec := range recs {
		id, err := reconcile.ToInt(rec[records.IDColumn])
		if err != nil {
			resp.Results = append(resp.Results, records.Result{Message: "record id is required"})
			continue
		}
		data, err := writable(rec, cols)
		if err != nil {
			resp.Results = append(resp.Results, records.Result{Message: err.Error()})
			continue
		}
		row, err := scanRecord(s.db.QueryRow(ctx,
			`UPDATE record_rows SET data = data || $3, updated_at = NOW()
			 WHERE table_name = $1 AND id = $2 RETURNING `+rowCols, table, id, data))
		if errors.Is(err, pgx.ErrNoRows) {
			resp.Results = append(resp.Results, records.Result{Message: "record not found"})
			continue
		}
		if err != nil {
			return nil, &records.TransportError{Op: "update", Err: err}
		}
		resp.Results = append(resp.Results, records.Result{Success: true, Data: row})
	}
	return resp, nil
}

func (s *Store) DeleteRecord(ctx context.Context, table string, ids []int) (*records.MutationResponse, error) {
	if _, ok := s.columns[table]; !ok {
		return &records.MutationResponse{Message: unknownTable(table)}, nil
	}
	resp := &records.MutationResponse{Success: true}
	for _, id := range ids {
		tag, err := s.db.Exec(ctx, `DELETE FROM record_rows WHERE table_name = $1 AND id = $2`, table, id)
		if err != nil {
			return nil, &records.TransportError{Op: "delete", Err: err}
		}
		if tag.RowsAffected() == 0 {
			resp.Results = append(resp.Results, records.Result{Message: "record not found"})
			continue
		}
		resp.Results = append(resp.Results, records.Result{Success: true})
	}
	return resp, nil
}

func unknownTable(table string) string {
	return fmt.Sprintf("table %q does not exist", table)
}

// selectSQL builds the list query. Only EqualTo conditions on declared
// columns are supported; values are compared as text.
func selectSQL(table string, cols map[string]bool, where []records.Condition) (string, []any, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + rowCols + ` FROM record_rows WHERE table_name = $1`)
	args := []any{table}
	for _, c := range where {
		if c.Operator != records.OpEqualTo {
			return "", nil, fmt.Errorf("unsupported operator %q", c.Operator)
		}
		if !cols[c.FieldName] {
			return "", nil, fmt.Errorf("invalid field name %q", c.FieldName)
		}
		if len(c.Values) == 0 {
			continue
		}
		args = append(args, c.FieldName, reconcile.ToString(c.Values[0]))
		fmt.Fprintf(&b, ` AND data->>$%d = $%d`, len(args)-1, len(args))
	}
	b.WriteString(` ORDER BY id`)
	return b.String(), args, nil
}

func writable(rec records.Record, cols map[string]bool) (map[string]any, error) {
	data := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == records.IDColumn {
			continue
		}
		if !cols[k] {
			return nil, fmt.Errorf("invalid field name %q", k)
		}
		data[k] = v
	}
	return data, nil
}

func scanRecord(row pgx.Row) (records.Record, error) {
	var (
		id   int64
		data map[string]any
	)
	if err := row.Scan(&id, &data); err != nil {
		return nil, err
	}
	rec := make(records.Record, len(data)+1)
	for k, v := range data {
		rec[k] = v
	}
	rec[records.IDColumn] = int(id)
	return rec, nil
}

func project(rec records.Record, fields []string, cols map[string]bool) records.Record {
	out := records.Record{records.IDColumn: rec[records.IDColumn]}
	for _, f := range fields {
		if !cols[f] {
			continue
		}
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}
