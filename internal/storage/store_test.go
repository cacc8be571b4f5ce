package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{1.0, 0.0},
			{0.9, -0.1},
		},
		Controls: []dynamo.Control{
			{0.5},
		},
		Times: []float64{0.0, 0.01},
		Metrics: map[string]float64{
			"mass_negative": 0,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res := sampleResult()
	table := ResultTable(res, []string{"a", "H"})
	runID, err := st.Save(RunMetadata{Model: "cosmology", Seed: 42, Integrator: "rk4", Metrics: res.Metrics}, table)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "cosmology_") {
		t.Errorf("run id %q should start with the model", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != "cosmology" || meta.Seed != 42 || meta.Rows != 2 {
		t.Errorf("metadata = %+v", meta)
	}
	if diff := cmp.Diff([]string{"t", "a", "H", "u0"}, meta.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	got, err := st.LoadTable(runID)
	if err != nil {
		t.Fatalf("load table failed: %v", err)
	}
	want := [][]float64{{0, 1, 0, 0.5}, {0.01, 0.9, -0.1, 0}}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 2 || len(times) != 2 || times[1] != 0.01 {
		t.Errorf("states=%v times=%v", states, times)
	}
}

func TestStoreKeepsFullPrecision(t *testing.T) {
	st := New(t.TempDir())
	tiny := 1.616255e-35
	table, err := NewTable([]string{"t", "l_p"}, []float64{0, 1.0 / 3}, []float64{tiny, 2 * tiny})
	if err != nil {
		t.Fatal(err)
	}
	id, err := st.Save(RunMetadata{Model: "constants"}, table)
	if err != nil {
		t.Fatal(err)
	}
	got, err := st.LoadTable(id)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(table.Rows, got.Rows); diff != "" {
		t.Errorf("precision lost (-want +got):\n%s", diff)
	}
}

func TestNewTableMismatch(t *testing.T) {
	if _, err := NewTable([]string{"t"}, []float64{1}, []float64{2}); !errors.Is(err, ErrColumnMismatch) {
		t.Errorf("err = %v, want ErrColumnMismatch", err)
	}
	if _, err := NewTable([]string{"t", "m"}, []float64{1, 2}, []float64{2}); !errors.Is(err, ErrColumnMismatch) {
		t.Errorf("err = %v, want ErrColumnMismatch", err)
	}
}

func TestSaveRejectsRaggedRows(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Save(RunMetadata{Model: "x"}, Table{Columns: []string{"t", "m"}, Rows: [][]float64{{1}}})
	if !errors.Is(err, ErrColumnMismatch) {
		t.Errorf("err = %v, want ErrColumnMismatch", err)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for _, m := range []string{"evaporation", "spinbrake"} {
		if _, err := st.Save(RunMetadata{Model: m}, ResultTable(sampleResult(), nil)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "broken"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("runs should be newest first")
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List() = %v, %v", runs, err)
	}
}

func TestLoadTableUnparseable(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runDir := filepath.Join(dir, "manual")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "states.csv"), []byte("t,m\n0,oops\n1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := st.LoadTable("manual")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rows) != 2 || !math.IsNaN(got.Rows[0][1]) || !math.IsNaN(got.Rows[1][1]) {
		t.Errorf("rows = %v", got.Rows)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	id, err := st.Save(RunMetadata{Model: "kinematic", Drive: "constant"}, ResultTable(sampleResult(), []string{"core", "omega"}))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(id, &buf); err != nil {
		t.Fatal(err)
	}
	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != id || got.Drive != "constant" {
		t.Errorf("metadata = %+v", got.RunMetadata)
	}
	if diff := cmp.Diff([]float64{1, 0.9}, got.Data["core"]); diff != "" {
		t.Errorf("core column mismatch (-want +got):\n%s", diff)
	}

	if err := st.ExportJSON("missing", &buf); err == nil {
		t.Error("expected error for a missing run")
	}
}

func TestTableColumn(t *testing.T) {
	tbl := Table{Columns: []string{"t", "m"}, Rows: [][]float64{{0, 5}, {1, 6}}}
	if diff := cmp.Diff([]float64{5, 6}, tbl.Column("m")); diff != "" {
		t.Errorf("column mismatch (-want +got):\n%s", diff)
	}
	if tbl.Column("nope") != nil {
		t.Error("unknown column should be nil")
	}
}
