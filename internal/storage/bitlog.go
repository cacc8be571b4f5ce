package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultBitThreshold is the amplitude above which an event counts as a 1.
const DefaultBitThreshold = 1e-12

// BitEvent is one line of the bit log.
type BitEvent struct {
	Timestamp       time.Time         `json:"timestamp"`
	EventID         string            `json:"event_id"`
	InputComplexity int               `json:"input_complexity"`
	Probs           []float64         `json:"probs"`
	Bit             int               `json:"zander_bit"`
	PayloadSummary  map[string]string `json:"payload_summary"`
}

// BitLog appends events as JSON lines to a single file.
type BitLog struct {
	path string
}

func NewBitLog(path string) *BitLog {
	return &BitLog{path: path}
}

func (b *BitLog) Path() string { return b.path }

// Append stamps ev with a fresh event ID and the current time when they are
// unset, and writes it as one line.
func (b *BitLog) Append(ev BitEvent) (BitEvent, error) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return ev, err
	}
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return ev, err
	}
	defer f.Close()

	line, err := json.Marshal(ev)
	if err != nil {
		return ev, err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return ev, err
	}
	return ev, nil
}

// Read returns every event in file order. A missing file is an empty log.
func (b *BitLog) Read() ([]BitEvent, error) {
	f, err := os.Open(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []BitEvent
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var ev BitEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return out, fmt.Errorf("storage: bit log line %d: %w", line, err)
		}
		out = append(out, ev)
	}
	return out, sc.Err()
}
