package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNew(t *testing.T) {
	evt := New("patient", "created", "patient_c", 12, map[string]any{"Name": "Ada"})
	if evt.ID == "" {
		t.Error("expected generated id")
	}
	if evt.Type != "patient.created" {
		t.Errorf("expected patient.created, got %s", evt.Type)
	}
	if evt.RecordID != 12 || evt.Table != "patient_c" {
		t.Errorf("unexpected event: %+v", evt)
	}
	if string(evt.Payload) != `{"Name":"Ada"}` {
		t.Errorf("unexpected payload %s", evt.Payload)
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	evt := New("doctor", "deleted", "doctor_c", 3, nil)
	if err := p.Publish(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "doctor_c:3" {
		t.Errorf("unexpected key %s", msg.Key)
	}
	var got Event
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "doctor.deleted" {
		t.Errorf("expected doctor.deleted, got %s", got.Type)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "doctor.deleted" {
		t.Errorf("unexpected headers %+v", msg.Headers)
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{w: w}
	if err := p.Publish(context.Background(), New("patient", "updated", "patient_c", 1, nil)); err == nil {
		t.Fatal("expected error")
	}
	p.Close()
	if !w.closed {
		t.Error("expected writer to be closed")
	}
}
