package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/events"
)

// IDColumn is the primary key column of every backend table.
const IDColumn = "Id"

// TableConfig describes one backend table.
type TableConfig[T any] struct {
	Name   string   // backend table, e.g. "patient_c"
	Entity string   // singular label used in logs, messages and event types
	Fields []string // columns requested on every read
	Decode func(Record) *T
}

// Table is the generic record service: it issues single-record calls against
// one backend table, interprets backend success flags, and decodes rows.
// Failures are logged once and returned; nothing is retried.
type Table[T any] struct {
	client Client
	cfg    TableConfig[T]
	logger zerolog.Logger
	pub    events.Publisher
}

// NewTable creates a table store. pub may be nil.
func NewTable[T any](client Client, cfg TableConfig[T], logger zerolog.Logger, pub events.Publisher) *Table[T] {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Table[T]{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("table", cfg.Name).Logger(),
		pub:    pub,
	}
}

func (t *Table[T]) query(where []Condition) Query {
	return Query{Fields: t.cfg.Fields, Where: where}
}

// List fetches every row matching where. It never returns a nil slice on success.
func (t *Table[T]) List(ctx context.Context, where ...Condition) ([]*T, error) {
	resp, err := t.client.FetchRecords(ctx, t.cfg.Name, t.query(where))
	if err != nil {
		return nil, t.transportFailure("fetch", err)
	}
	if !resp.Success {
		return nil, t.storageFailure("fetch", resp.Message)
	}
	out := make([]*T, 0, len(resp.Data))
	for _, rec := range resp.Data {
		out = append(out, t.cfg.Decode(rec))
	}
	return out, nil
}

// Get returns the row with the given id, or nil when the backend has none.
func (t *Table[T]) Get(ctx context.Context, id int) (*T, error) {
	resp, err := t.client.GetRecordByID(ctx, t.cfg.Name, id, t.query(nil))
	if err != nil {
		return nil, t.transportFailure("get", err, id)
	}
	if resp == nil || resp.Data == nil {
		return nil, nil
	}
	return t.cfg.Decode(resp.Data), nil
}

// Create submits rec as a batch of one.
func (t *Table[T]) Create(ctx context.Context, rec Record) (*T, error) {
	resp, err := t.client.CreateRecord(ctx, t.cfg.Name, []Record{rec})
	data, err := t.mutation("create", resp, err)
	if err != nil {
		return nil, err
	}
	if data == nil || recordID(data) == 0 {
		return nil, t.storageFailure("create", fmt.Sprintf("no record returned to create %s record", t.cfg.Entity))
	}
	t.publish(ctx, "created", recordID(data), data)
	return t.cfg.Decode(data), nil
}

// Update submits rec for the row id. Columns absent from rec are left untouched.
func (t *Table[T]) Update(ctx context.Context, id int, rec Record) (*T, error) {
	payload := make(Record, len(rec)+1)
	for k, v := range rec {
		payload[k] = v
	}
	payload[IDColumn] = id

	resp, err := t.client.UpdateRecord(ctx, t.cfg.Name, []Record{payload})
	data, err := t.mutation("update", resp, err)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = payload
	}
	t.publish(ctx, "updated", id, data)
	return t.cfg.Decode(data), nil
}

// Delete removes the row id. It reports true only when the backend confirms it.
func (t *Table[T]) Delete(ctx context.Context, id int) (bool, error) {
	resp, err := t.client.DeleteRecord(ctx, t.cfg.Name, []int{id})
	if err != nil {
		return false, t.transportFailure("delete", err, id)
	}
	if !resp.Success {
		return false, t.storageFailure("delete", resp.Message)
	}
	if failed := resp.Failed(); len(failed) > 0 {
		return false, t.recordFailures("delete", failed)
	}
	if len(resp.Results) == 0 {
		return false, nil
	}
	t.publish(ctx, "deleted", id, nil)
	return true, nil
}

func (t *Table[T]) mutation(op string, resp *MutationResponse, err error) (Record, error) {
	if err != nil {
		return nil, t.transportFailure(op, err)
	}
	if !resp.Success {
		return nil, t.storageFailure(op, resp.Message)
	}
	if failed := resp.Failed(); len(failed) > 0 {
		return nil, t.recordFailures(op, failed)
	}
	if len(resp.Results) == 0 {
		return nil, t.storageFailure(op, fmt.Sprintf("no result returned to %s %s record", op, t.cfg.Entity))
	}
	return resp.Results[0].Data, nil
}

func (t *Table[T]) transportFailure(op string, err error, id ...int) error {
	evt := t.logger.Error().Err(err).Str("op", op)
	if len(id) > 0 {
		evt = evt.Int("id", id[0])
	}
	evt.Msgf("error during %s of %s", op, t.cfg.Entity)
	return err
}

func (t *Table[T]) storageFailure(op, message string) error {
	if message == "" {
		message = fmt.Sprintf("failed to %s %s record", op, t.cfg.Entity)
	}
	t.logger.Error().Str("op", op).Str("backend_message", message).Msgf("%s of %s rejected", op, t.cfg.Entity)
	return &StorageError{Table: t.cfg.Name, Op: op, Message: message}
}

func (t *Table[T]) recordFailures(op string, failed []Result) error {
	detail, _ := json.Marshal(failed)
	t.logger.Error().
		Str("op", op).
		Int("failed", len(failed)).
		RawJSON("results", detail).
		Msgf("failed to %s %s records", op, t.cfg.Entity)

	message := failed[0].Message
	if message == "" {
		message = fmt.Sprintf("failed to %s %s record", op, t.cfg.Entity)
	}
	return &StorageError{Table: t.cfg.Name, Op: op, Message: message}
}

func (t *Table[T]) publish(ctx context.Context, action string, id int, data Record) {
	var payload any
	if data != nil {
		payload = data
	}
	evt := events.New(t.cfg.Entity, action, t.cfg.Name, id, payload)
	if err := t.pub.Publish(ctx, evt); err != nil {
		t.logger.Warn().Err(err).Str("event", evt.Type).Int("id", id).Msg("publish change event failed")
	}
}

func recordID(rec Record) int {
	switch v := rec[IDColumn].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}
