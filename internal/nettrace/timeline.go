// Package nettrace records the network phases of a single HTTP round trip.
package nettrace

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

type PhaseKind string

const (
	PhaseDNS      PhaseKind = "dns"
	PhaseConnect  PhaseKind = "connect"
	PhaseTLS      PhaseKind = "tls"
	PhaseRequest  PhaseKind = "request"
	PhaseTTFB     PhaseKind = "ttfb"
	PhaseTransfer PhaseKind = "transfer"
)

// phaseOrder is the display order of a summary.
var phaseOrder = []PhaseKind{
	PhaseDNS,
	PhaseConnect,
	PhaseTLS,
	PhaseRequest,
	PhaseTTFB,
	PhaseTransfer,
}

type Phase struct {
	Kind     PhaseKind
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Err      string
	Addr     string
	Reused   bool
}

type Timeline struct {
	Started   time.Time
	Completed time.Time
	Duration  time.Duration
	Err       string
	Phases    []Phase
}

// Total sums every phase of kind. Redirects may repeat a phase.
func (tl *Timeline) Total(kind PhaseKind) time.Duration {
	if tl == nil {
		return 0
	}
	var sum time.Duration
	for _, p := range tl.Phases {
		if p.Kind == kind {
			sum += p.Duration
		}
	}
	return sum
}

func (tl *Timeline) Has(kind PhaseKind) bool {
	if tl == nil {
		return false
	}
	for _, p := range tl.Phases {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// Summary renders one "kind 12ms" item per recorded phase, e.g.
// "dns 1ms  connect 2ms  ttfb 30ms  transfer 0ms".
func (tl *Timeline) Summary() string {
	if tl == nil || len(tl.Phases) == 0 {
		return ""
	}
	parts := make([]string, 0, len(phaseOrder))
	for _, kind := range phaseOrder {
		if !tl.Has(kind) {
			continue
		}
		item := string(kind) + " " + formatMillis(tl.Total(kind))
		if kind == PhaseConnect && tl.reused() {
			item += " (reused)"
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, "  ")
}

func (tl *Timeline) reused() bool {
	for _, p := range tl.Phases {
		if p.Kind == PhaseConnect && p.Reused {
			return true
		}
	}
	return false
}

func formatMillis(d time.Duration) string {
	if d > 0 && d < time.Millisecond {
		return "<1ms"
	}
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}

func normalizePhases(phases []Phase) []Phase {
	if len(phases) <= 1 {
		return phases
	}

	sorted := make([]Phase, len(phases))
	copy(sorted, phases)
	sort.SliceStable(sorted, func(i, j int) bool {
		si := sorted[i]
		sj := sorted[j]
		if si.Start.Equal(sj.Start) {
			return si.End.Before(sj.End)
		}
		return si.Start.Before(sj.Start)
	})
	return sorted
}
