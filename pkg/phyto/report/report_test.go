package report

import (
	"strings"
	"testing"

	"github.com/verdantlab/phyto/pkg/phyto/rank"
	"github.com/verdantlab/phyto/pkg/phyto/solutions"
)

func TestBuildContext(t *testing.T) {
	b := New()
	rep := b.Build(
		rank.Candidate{
			Name:            "Iron Chlorosis",
			MatchedSymptoms: []string{"yellowing leaves", "stunted growth"},
			MatchCount:      2,
			TotalSymptoms:   2,
			MatchPercentage: 1.0,
		},
		[]string{"yellowing leaves", "stunted growth"},
		[]string{"brown spots"},
		[]solutions.Solution{{
			Name:        "Iron Supplement",
			Description: "Iron chelate fertilizer",
			Treatment:   "Apply iron chelate to soil",
		}},
		"DIAGNOSIS after 2 symptoms confirmed",
	)

	if rep.ID == "" {
		t.Error("report must carry an id")
	}

	ctx := rep.Context()
	for _, want := range []string{
		"CONFIRMED symptoms: yellowing leaves, stunted growth",
		"RULED OUT symptoms: brown spots",
		"DIAGNOSED disease: Iron Chlorosis (100.0% match)",
		"MATCHED symptoms: yellowing leaves, stunted growth",
		"DIAGNOSIS after 2 symptoms confirmed",
		"AVAILABLE SOLUTIONS: Iron Supplement",
		"SOLUTION - Iron Supplement: Iron chelate fertilizer",
		"TREATMENT - Iron Supplement: Apply iron chelate to soil",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q\ncontext: %s", want, ctx)
		}
	}
}

func TestBuildContextNoSolutions(t *testing.T) {
	b := New()
	rep := b.Build(rank.Candidate{Name: "Mystery Blight", MatchPercentage: 0.5}, nil, nil, nil, "")

	ctx := rep.Context()
	if !strings.Contains(ctx, "NO SPECIFIC SOLUTIONS FOUND IN GRAPH") {
		t.Errorf("context should note missing solutions: %s", ctx)
	}
	if !strings.Contains(ctx, "CONFIRMED symptoms: none") {
		t.Errorf("empty lists render as none: %s", ctx)
	}
}

func TestBuildIDsUnique(t *testing.T) {
	b := New()
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		rep := b.Build(rank.Candidate{Name: "X"}, nil, nil, nil, "")
		if _, dup := seen[rep.ID]; dup {
			t.Fatalf("duplicate report id %s", rep.ID)
		}
		seen[rep.ID] = struct{}{}
	}
}
