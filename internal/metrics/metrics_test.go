package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.Units("go", 3)
	r.Units("go", 2)
	r.Method("go", "Serializer")
	r.Method("go", "Serializer")
	r.Failure("csharp")
	r.Duration("go", 250*time.Millisecond)

	if got := testutil.ToFloat64(r.units.WithLabelValues("go")); got != 5 {
		t.Errorf("units = %v, want 5", got)
	}
	if got := testutil.ToFloat64(r.methods.WithLabelValues("go", "Serializer")); got != 2 {
		t.Errorf("methods = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.failures.WithLabelValues("csharp")); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(r.duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.Units("go", 1)
	r.Method("go", "Getter")
	r.Failure("go")
	r.Duration("go", time.Second)
	if err := r.WriteToTextfile(filepath.Join(t.TempDir(), "m.prom")); err != nil {
		t.Fatal(err)
	}
	if r.Registry() != nil {
		t.Error("nil recorder has a registry")
	}
}

func TestWriteToTextfile(t *testing.T) {
	r := New()
	r.Units("typescript", 7)
	path := filepath.Join(t.TempDir(), "apigen.prom")
	if err := r.WriteToTextfile(path); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `apigen_units_total{language="typescript"} 7`) {
		t.Errorf("textfile missing units sample:\n%s", b)
	}
}
