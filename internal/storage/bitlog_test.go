package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestBitLogAppendRead(t *testing.T) {
	log := NewBitLog(filepath.Join(t.TempDir(), "logs", "bit_log.jsonl"))

	empty, err := log.Read()
	if err != nil || len(empty) != 0 {
		t.Fatalf("Read() on missing file = %v, %v", empty, err)
	}

	first, err := log.Append(BitEvent{
		InputComplexity: 2048,
		Probs:           []float64{0, 0, 1e-15, 0},
		Bit:             0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(first.EventID); err != nil {
		t.Errorf("event id %q is not a uuid: %v", first.EventID, err)
	}
	if first.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}

	_, err = log.Append(BitEvent{
		EventID:        "fixed",
		Probs:          []float64{0.5},
		Bit:            1,
		PayloadSummary: map[string]string{"note": "tiny amplitude"},
	})
	if err != nil {
		t.Fatal(err)
	}

	events, err := log.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].EventID != first.EventID || events[0].InputComplexity != 2048 {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].EventID != "fixed" || events[1].Bit != 1 || events[1].PayloadSummary["note"] != "tiny amplitude" {
		t.Errorf("second event = %+v", events[1])
	}
}

func TestBitLogCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bit_log.jsonl")
	if err := os.WriteFile(path, []byte("{\"zander_bit\":1}\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	events, err := NewBitLog(path).Read()
	if err == nil {
		t.Fatal("expected error for a corrupt line")
	}
	if len(events) != 1 || events[0].Bit != 1 {
		t.Errorf("events before the corrupt line = %+v", events)
	}
}
