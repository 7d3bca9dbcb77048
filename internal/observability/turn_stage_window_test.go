package observability

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTurnStageWindowSnapshot(t *testing.T) {
	w := newTurnStageWindow(8)
	w.Observe(StageBrain, 500)
	w.Observe(StageBrain, 700)
	w.Observe(StageBrain, 900)
	w.ObserveIndicator("fallback_reply")
	w.ObserveIndicator("fallback_reply")

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Stage != StageBrain {
		t.Fatalf("Stage = %q, want %q", s.Stage, StageBrain)
	}
	if s.Samples != 3 {
		t.Fatalf("Samples = %d, want 3", s.Samples)
	}
	if s.LastMS != 900 {
		t.Fatalf("LastMS = %.2f, want 900", s.LastMS)
	}
	if s.P50MS != 700 {
		t.Fatalf("P50MS = %.2f, want 700", s.P50MS)
	}
	if s.P95MS != 900 {
		t.Fatalf("P95MS = %.2f, want 900", s.P95MS)
	}
	if s.OverTarget {
		t.Fatalf("OverTarget = true, want false under the brain budget")
	}
	if s.TargetP95MS != 4000 {
		t.Fatalf("TargetP95MS = %.2f, want 4000", s.TargetP95MS)
	}
	if len(snap.Indicators) != 1 || snap.Indicators[0].Count != 2 {
		t.Fatalf("Indicators = %+v, want fallback_reply x2", snap.Indicators)
	}
}

func TestTurnStageWindowWrapsAtCapacity(t *testing.T) {
	w := newTurnStageWindow(2)
	for _, v := range []float64{10, 20, 30} {
		w.Observe(StageFormat, v)
	}
	s := w.Snapshot().Stages[0]
	if s.Samples != 2 || s.AvgMS != 25 || s.LastMS != 30 {
		t.Fatalf("stats = %+v, want 2 samples averaging 25, last 30", s)
	}
	if !s.OverTarget {
		t.Fatalf("OverTarget = false, want true for format above 5ms")
	}
}

func TestTurnStageWindowPipelineOrder(t *testing.T) {
	w := newTurnStageWindow(4)
	w.Observe("custom", 1)
	w.Observe(StageTurnTotal, 1)
	w.Observe(StageSessionWait, 1)
	w.Observe(StageBrain, 1)

	var got []string
	for _, s := range w.Snapshot().Stages {
		got = append(got, s.Stage)
	}
	want := []string{StageSessionWait, StageBrain, StageTurnTotal, "custom"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stage order mismatch (-want +got):\n%s", diff)
	}
}

func TestMetricsRecordAndNilSafe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("fitbot_test", reg)

	m.ObserveTurn("ask")
	m.ObserveTurn("ask")
	m.AddLinks(3)
	m.ObserveBrain("openai", 120*time.Millisecond, nil)
	m.ObserveBrain("openai", 80*time.Millisecond, errTest)
	m.ObserveVehicleReset()
	m.ObserveTurnStage(StageTurnTotal, 1500*time.Microsecond)

	if got := testutil.ToFloat64(m.Turns.WithLabelValues("ask")); got != 2 {
		t.Fatalf("turns{ask} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.LinksInjected); got != 3 {
		t.Fatalf("links = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.BrainErrors.WithLabelValues("openai")); got != 1 {
		t.Fatalf("brain errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.VehicleResets); got != 1 {
		t.Fatalf("vehicle resets = %v, want 1", got)
	}
	if s := m.SnapshotTurnStages().Stages; len(s) != 1 || s[0].LastMS != 1.5 {
		t.Fatalf("stages = %+v, want turn_total at 1.5ms", s)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveTurn("ask")
	nilMetrics.AddLinks(1)
	nilMetrics.ObserveBrain("mock", time.Second, errTest)
	nilMetrics.ObserveTurnStage(StageBrain, time.Second)
	if snap := nilMetrics.SnapshotTurnStages(); len(snap.Stages) != 0 {
		t.Fatalf("nil snapshot stages = %+v, want empty", snap.Stages)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")
