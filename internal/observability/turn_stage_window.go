package observability

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// Pipeline stages timed per turn, in execution order.
const (
	StageSessionWait = "session_wait"
	StageGate        = "extract_to_gate"
	StageBrain       = "brain_call"
	StageLinks       = "link_inject"
	StageFormat      = "format"
	StageTurnTotal   = "turn_total"
)

var pipelineOrder = []string{StageSessionWait, StageGate, StageBrain, StageLinks, StageFormat, StageTurnTotal}

// p95 budgets in milliseconds.
var stageTargetsMS = map[string]float64{
	StageSessionWait: 50,
	StageGate:        5,
	StageBrain:       4000,
	StageLinks:       10,
	StageFormat:      5,
	StageTurnTotal:   4500,
}

type TurnStageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	P99MS       float64 `json:"p99_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
	OverTarget  bool    `json:"over_target,omitempty"`
}

type TurnIndicator struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type TurnStageSnapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	WindowSize  int              `json:"window_size"`
	Stages      []TurnStageStats `json:"stages"`
	Indicators  []TurnIndicator  `json:"indicators,omitempty"`
}

// turnStageWindow keeps the most recent samples per stage plus event counters.
type turnStageWindow struct {
	mu         sync.Mutex
	size       int
	rings      map[string]*stageRing
	indicators map[string]int
}

type stageRing struct {
	buf  []float64
	head int
	full bool
}

func (r *stageRing) push(v float64) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.head == 0 {
		r.full = true
	}
}

func (r *stageRing) last() float64 {
	return r.buf[(r.head-1+len(r.buf))%len(r.buf)]
}

// sorted returns a sorted copy of the retained samples.
func (r *stageRing) sorted() []float64 {
	n := r.head
	if r.full {
		n = len(r.buf)
	}
	out := append([]float64(nil), r.buf[:n]...)
	sort.Float64s(out)
	return out
}

func newTurnStageWindow(size int) *turnStageWindow {
	if size <= 0 {
		size = 256
	}
	return &turnStageWindow{
		size:       size,
		rings:      make(map[string]*stageRing),
		indicators: make(map[string]int),
	}
}

func (w *turnStageWindow) Observe(stage string, ms float64) {
	if stage == "" || ms < 0 || math.IsNaN(ms) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.rings[stage]
	if !ok {
		r = &stageRing{buf: make([]float64, w.size)}
		w.rings[stage] = r
	}
	r.push(ms)
}

func (w *turnStageWindow) ObserveIndicator(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.indicators[name]++
}

func (w *turnStageWindow) Snapshot() TurnStageSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := TurnStageSnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Stages:      make([]TurnStageStats, 0, len(w.rings)),
	}
	for _, stage := range w.stageNames() {
		r := w.rings[stage]
		samples := r.sorted()
		if len(samples) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range samples {
			sum += v
		}
		st := TurnStageStats{
			Stage:       stage,
			Samples:     len(samples),
			LastMS:      round2(r.last()),
			AvgMS:       round2(sum / float64(len(samples))),
			P50MS:       round2(nearestRank(samples, 0.50)),
			P95MS:       round2(nearestRank(samples, 0.95)),
			P99MS:       round2(nearestRank(samples, 0.99)),
			TargetP95MS: stageTargetsMS[stage],
		}
		st.OverTarget = st.TargetP95MS > 0 && st.P95MS > st.TargetP95MS
		snap.Stages = append(snap.Stages, st)
	}

	names := make([]string, 0, len(w.indicators))
	for name := range w.indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		snap.Indicators = append(snap.Indicators, TurnIndicator{Name: name, Count: w.indicators[name]})
	}
	return snap
}

// stageNames lists known pipeline stages first, then any others alphabetically.
func (w *turnStageWindow) stageNames() []string {
	names := make([]string, 0, len(w.rings))
	for _, stage := range pipelineOrder {
		if _, ok := w.rings[stage]; ok {
			names = append(names, stage)
		}
	}
	var extra []string
	for stage := range w.rings {
		if _, known := stageTargetsMS[stage]; !known {
			extra = append(extra, stage)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func nearestRank(sorted []float64, q float64) float64 {
	rank := int(math.Ceil(q*float64(len(sorted)))) - 1
	rank = min(max(rank, 0), len(sorted)-1)
	return sorted[rank]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
