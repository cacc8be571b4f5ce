// Package storage keeps finished runs on disk. Each run is a directory
// holding metadata.json and a states.csv whose header names the columns.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

var ErrColumnMismatch = errors.New("storage: row width does not match columns")

var nan = math.NaN()

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name,omitempty"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed,omitempty"`
	Dt         float64            `json:"dt,omitempty"`
	Duration   float64            `json:"duration,omitempty"`
	Integrator string             `json:"integrator,omitempty"`
	Drive      string             `json:"drive,omitempty"`
	Columns    []string           `json:"columns"`
	Rows       int                `json:"rows"`
	Params     map[string]float64 `json:"params,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Table is a run in column form. The first column is conventionally "t".
type Table struct {
	Columns []string
	Rows    [][]float64
}

// NewTable builds a table from equally long columns.
func NewTable(names []string, cols ...[]float64) (Table, error) {
	if len(names) != len(cols) {
		return Table{}, fmt.Errorf("%w: %d names for %d columns", ErrColumnMismatch, len(names), len(cols))
	}
	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}
	t := Table{Columns: names, Rows: make([][]float64, n)}
	for i := range t.Rows {
		row := make([]float64, len(cols))
		for j, c := range cols {
			if len(c) != n {
				return Table{}, fmt.Errorf("%w: column %q has %d rows, want %d", ErrColumnMismatch, names[j], len(c), n)
			}
			row[j] = c[i]
		}
		t.Rows[i] = row
	}
	return t, nil
}

// ResultTable lays out t, the labelled states and the controls of a run.
// Missing labels fall back to x0, x1, ...
func ResultTable(result *dynamo.Result, labels []string) Table {
	t := Table{Columns: []string{"t"}}
	if len(result.States) == 0 {
		return t
	}
	dim := len(result.States[0])
	for i := 0; i < dim; i++ {
		if i < len(labels) {
			t.Columns = append(t.Columns, labels[i])
		} else {
			t.Columns = append(t.Columns, fmt.Sprintf("x%d", i))
		}
	}

	numControls := 0
	if len(result.Controls) > 0 {
		numControls = len(result.Controls[0])
	}
	for i := 0; i < numControls; i++ {
		t.Columns = append(t.Columns, fmt.Sprintf("u%d", i))
	}

	t.Rows = make([][]float64, len(result.States))
	for i, x := range result.States {
		row := make([]float64, 0, len(t.Columns))
		row = append(row, result.Times[i])
		row = append(row, x...)
		if i < len(result.Controls) && len(result.Controls[i]) == numControls {
			row = append(row, result.Controls[i]...)
		} else {
			row = append(row, make([]float64, numControls)...)
		}
		t.Rows[i] = row
	}
	return t
}

// Column returns the named column, or nil.
func (t Table) Column(name string) []float64 {
	for j, c := range t.Columns {
		if c != name {
			continue
		}
		out := make([]float64, len(t.Rows))
		for i, row := range t.Rows {
			if j < len(row) {
				out[i] = row[j]
			}
		}
		return out
	}
	return nil
}

// Save writes meta and table under a new run directory and returns its ID.
// ID, Timestamp, Columns and Rows in meta are filled in.
func (s *Store) Save(meta RunMetadata, table Table) (string, error) {
	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			return "", fmt.Errorf("%w: row %d has %d values for %d columns", ErrColumnMismatch, i, len(row), len(table.Columns))
		}
	}

	meta.ID = fmt.Sprintf("%s_%s", meta.Model, uuid.NewString())
	meta.Timestamp = time.Now().UTC()
	meta.Columns = table.Columns
	meta.Rows = len(table.Rows)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, "states.csv"), table); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, table Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return err
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadTable reads states.csv back. Unparseable cells read as NaN so the
// columns stay aligned.
func (s *Store) LoadTable(runID string) (Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return Table{}, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("storage: %s states: %w", runID, err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	t := Table{Columns: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		row := make([]float64, len(t.Columns))
		for j := range row {
			row[j] = nan
			if j < len(record) {
				if v, err := strconv.ParseFloat(record[j], 64); err == nil {
					row[j] = v
				}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// LoadStates returns the non-time columns per row and the time column.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	t, err := s.LoadTable(runID)
	if err != nil {
		return nil, nil, err
	}
	states := make([][]float64, len(t.Rows))
	times := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		times[i] = row[0]
		states[i] = row[1:]
	}
	return states, times, nil
}

type ExportData struct {
	RunMetadata
	Data map[string][]float64 `json:"data"`
}

// ExportJSON writes a stored run as one JSON document with every column
// keyed by name.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	t, err := s.LoadTable(runID)
	if err != nil {
		return err
	}

	data := ExportData{RunMetadata: *meta, Data: make(map[string][]float64, len(t.Columns))}
	for _, c := range t.Columns {
		data.Data[c] = t.Column(c)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
