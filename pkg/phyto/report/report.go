// Package report assembles the diagnosis handed to the text generator.
package report

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/verdantlab/phyto/pkg/phyto/rank"
	"github.com/verdantlab/phyto/pkg/phyto/solutions"
)

// Builder creates reports with monotonic ULID ids.
type Builder struct {
	entropy *ulid.MonotonicEntropy
}

// New creates a report builder.
func New() *Builder {
	return &Builder{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Report captures one committed diagnosis.
type Report struct {
	ID        string
	Disease   rank.Candidate
	Confirmed []string
	RuledOut  []string
	Solutions []solutions.Solution
	Framing   string
	CreatedAt time.Time
}

// Build assembles a report for the diagnosed disease. Framing annotates
// how the diagnosis was reached ("immediate diagnosis", "analysis
// complete", and so on) and flows into the generator context.
func (b *Builder) Build(disease rank.Candidate, confirmed, ruledOut []string, sols []solutions.Solution, framing string) Report {
	now := time.Now()
	return Report{
		ID:        ulid.MustNew(ulid.Timestamp(now), b.entropy).String(),
		Disease:   disease,
		Confirmed: confirmed,
		RuledOut:  ruledOut,
		Solutions: sols,
		Framing:   framing,
		CreatedAt: now,
	}
}

// Context renders the report as the context string for the external
// text generator: evidence, verdict, and any treatments found.
func (r Report) Context() string {
	parts := []string{
		fmt.Sprintf("CONFIRMED symptoms: %s", joinOrNone(r.Confirmed)),
		fmt.Sprintf("RULED OUT symptoms: %s", joinOrNone(r.RuledOut)),
		fmt.Sprintf("DIAGNOSED disease: %s (%.1f%% match)", r.Disease.Name, r.Disease.MatchPercentage*100),
		fmt.Sprintf("MATCHED symptoms: %s", joinOrNone(r.Disease.MatchedSymptoms)),
	}
	if r.Framing != "" {
		parts = append(parts, r.Framing)
	}

	if len(r.Solutions) == 0 {
		parts = append(parts, "NO SPECIFIC SOLUTIONS FOUND IN GRAPH")
	} else {
		names := make([]string, len(r.Solutions))
		for i, s := range r.Solutions {
			names[i] = s.Name
		}
		parts = append(parts, fmt.Sprintf("AVAILABLE SOLUTIONS: %s", strings.Join(names, ", ")))
		for _, s := range r.Solutions {
			if s.Description != "" {
				parts = append(parts, fmt.Sprintf("SOLUTION - %s: %s", s.Name, s.Description))
			}
			if s.Treatment != "" {
				parts = append(parts, fmt.Sprintf("TREATMENT - %s: %s", s.Name, s.Treatment))
			}
		}
	}

	return strings.Join(parts, " | ")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
