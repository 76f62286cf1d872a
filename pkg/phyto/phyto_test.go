package phyto

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/verdantlab/phyto/pkg/phyto/graph"
)

// fakeGenerator records what it was asked to narrate.
type fakeGenerator struct {
	text     string
	err      error
	symptoms []string
	diagCtx  string
	calls    int
}

func (f *fakeGenerator) Generate(ctx context.Context, symptoms []string, diagCtx string) (string, error) {
	f.calls++
	f.symptoms = symptoms
	f.diagCtx = diagCtx
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// sampleStore builds the canonical 3-disease plant graph.
func sampleStore(t *testing.T) *graph.Store {
	t.Helper()
	store, err := graph.Load(
		[]graph.Node{
			{ID: "disease_1", Kind: graph.KindDisease, Name: "Bacterial Leaf Spot",
				Description: "A bacterial infection causing dark spots on leaves"},
			{ID: "disease_2", Kind: graph.KindDisease, Name: "Iron Chlorosis",
				Description: "Nutrient deficiency causing yellowing of leaves"},
			{ID: "disease_3", Kind: graph.KindDisease, Name: "Powdery Mildew",
				Description: "Fungal infection causing white powdery coating"},
			{ID: "symptom_1", Kind: graph.KindSymptom, Name: "brown spots"},
			{ID: "symptom_2", Kind: graph.KindSymptom, Name: "yellowing leaves"},
			{ID: "symptom_3", Kind: graph.KindSymptom, Name: "white powdery coating"},
			{ID: "symptom_4", Kind: graph.KindSymptom, Name: "leaf drop"},
			{ID: "symptom_5", Kind: graph.KindSymptom, Name: "stunted growth"},
			{ID: "solution_2", Kind: graph.KindSolution, Name: "Iron Supplement",
				Extra: map[string]string{"treatment": "Apply iron chelate to soil"}},
		},
		[]graph.Relationship{
			{Source: "disease_1", Target: "symptom_1", Kind: "HAS_SYMPTOM"},
			{Source: "disease_1", Target: "symptom_4", Kind: "HAS_SYMPTOM"},
			{Source: "disease_2", Target: "symptom_2", Kind: "HAS_SYMPTOM"},
			{Source: "disease_2", Target: "symptom_5", Kind: "HAS_SYMPTOM"},
			{Source: "disease_3", Target: "symptom_3", Kind: "HAS_SYMPTOM"},
			{Source: "disease_3", Target: "symptom_2", Kind: "HAS_SYMPTOM"},
			{Source: "disease_2", Target: "solution_2", Kind: "HAS_SOLUTION"},
		},
	)
	if err != nil {
		t.Fatalf("build sample store: %v", err)
	}
	return store
}

func TestFirstTurnSingleCandidateDiagnoses(t *testing.T) {
	gen := &fakeGenerator{text: "Treat for bacterial leaf spot."}
	engine := New(Options{Store: sampleStore(t), Generator: gen})

	out := engine.ProcessTurn(context.Background(), "brown spots")
	if out != "Treat for bacterial leaf spot." {
		t.Errorf("expected diagnosis text, got %q", out)
	}

	state := engine.CurrentState()
	if state.Phase != PhaseDiagnosed {
		t.Errorf("phase = %v, want diagnosed", state.Phase)
	}
	if !strings.Contains(gen.diagCtx, "Bacterial Leaf Spot") {
		t.Errorf("context should name the disease: %s", gen.diagCtx)
	}
	// Only "leaf drop" was left to ask, and it cannot split a lone
	// candidate, so the diagnosis is forced rather than questioned.
	if !strings.Contains(gen.diagCtx, "NO MORE QUESTIONS") {
		t.Errorf("context framing = %s", gen.diagCtx)
	}
}

func TestAmbiguousSymptomAsksQuestion(t *testing.T) {
	engine := New(Options{Store: sampleStore(t), Generator: &fakeGenerator{text: "diagnosis"}})

	out := engine.ProcessTurn(context.Background(), "yellowing leaves")
	if out != "Do you observe stunted growth on the plant?" {
		t.Errorf("expected the tie-broken differentiating question, got %q", out)
	}

	state := engine.CurrentState()
	if state.Phase != PhaseCollecting {
		t.Errorf("phase = %v, want collecting", state.Phase)
	}
	if len(state.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(state.Candidates))
	}
	if state.LastAsked != "stunted growth" {
		t.Errorf("lastAsked = %q", state.LastAsked)
	}
}

func TestConfirmationResolvesDiagnosis(t *testing.T) {
	gen := &fakeGenerator{text: "It is iron chlorosis."}
	engine := New(Options{Store: sampleStore(t), Generator: gen})
	ctx := context.Background()

	engine.ProcessTurn(ctx, "yellowing leaves")
	out := engine.ProcessTurn(ctx, "yes")

	if out != "It is iron chlorosis." {
		t.Errorf("expected diagnosis, got %q", out)
	}
	if !strings.Contains(gen.diagCtx, "DIAGNOSED disease: Iron Chlorosis") {
		t.Errorf("context: %s", gen.diagCtx)
	}
	if !strings.Contains(gen.diagCtx, "TREATMENT - Iron Supplement") {
		t.Errorf("solutions missing from context: %s", gen.diagCtx)
	}
	if got := engine.CurrentState().Confirmed; len(got) != 2 {
		t.Errorf("confirmed = %v", got)
	}
}

func TestDenialRulesOutAndContinues(t *testing.T) {
	gen := &fakeGenerator{text: "diagnosis"}
	engine := New(Options{Store: sampleStore(t), Generator: gen})
	ctx := context.Background()

	engine.ProcessTurn(ctx, "yellowing leaves")
	out := engine.ProcessTurn(ctx, "no")

	if out != "Do you observe white powdery coating on the plant?" {
		t.Errorf("expected next question, got %q", out)
	}
	state := engine.CurrentState()
	if len(state.RuledOut) != 1 || state.RuledOut[0] != "stunted growth" {
		t.Errorf("ruled out = %v", state.RuledOut)
	}
	if state.Phase != PhaseCollecting {
		t.Errorf("phase = %v", state.Phase)
	}
}

// forceStore builds two diseases with large, mostly shared symptom
// sets so no confidence rule fires before four symptoms are confirmed.
func forceStore(t *testing.T) *graph.Store {
	t.Helper()
	var nodes []graph.Node
	var rels []graph.Relationship

	nodes = append(nodes,
		graph.Node{ID: "d1", Kind: graph.KindDisease, Name: "Alder Blight"},
		graph.Node{ID: "d2", Kind: graph.KindDisease, Name: "Birch Blight"},
	)
	for i := 0; i < 16; i++ {
		id := fmt.Sprintf("shared_%02d", i)
		nodes = append(nodes, graph.Node{ID: id, Kind: graph.KindSymptom,
			Name: fmt.Sprintf("shared mark %02d", i)})
		rels = append(rels,
			graph.Relationship{Source: "d1", Target: id, Kind: "HAS_SYMPTOM"},
			graph.Relationship{Source: "d2", Target: id, Kind: "HAS_SYMPTOM"},
		)
	}
	singles := map[string]string{
		"q alpha": "d1", "q bravo": "d1", "q delta": "d2", "q echo": "d2",
	}
	i := 0
	for name, disease := range singles {
		id := fmt.Sprintf("single_%d", i)
		i++
		nodes = append(nodes, graph.Node{ID: id, Kind: graph.KindSymptom, Name: name})
		rels = append(rels, graph.Relationship{Source: disease, Target: id, Kind: "HAS_SYMPTOM"})
	}

	store, err := graph.Load(nodes, rels)
	if err != nil {
		t.Fatalf("build force store: %v", err)
	}
	return store
}

func TestForcedDiagnosisAfterFourConfirmed(t *testing.T) {
	gen := &fakeGenerator{text: "forced diagnosis"}
	engine := New(Options{Store: forceStore(t), Generator: gen})
	ctx := context.Background()

	if out := engine.ProcessTurn(ctx, "shared mark 00"); !strings.Contains(out, "q alpha") {
		t.Fatalf("turn 1 should ask about a single-disease symptom, got %q", out)
	}
	if out := engine.ProcessTurn(ctx, "yes"); !strings.Contains(out, "q bravo") {
		t.Fatalf("turn 2 question = %q", out)
	}
	if out := engine.ProcessTurn(ctx, "yes"); !strings.Contains(out, "q delta") {
		t.Fatalf("turn 3 question = %q", out)
	}

	out := engine.ProcessTurn(ctx, "yes")
	if out != "forced diagnosis" {
		t.Fatalf("turn 4 should force a diagnosis, got %q", out)
	}
	if !strings.Contains(gen.diagCtx, "ANALYSIS COMPLETE") {
		t.Errorf("context framing = %s", gen.diagCtx)
	}
	if !strings.Contains(gen.diagCtx, "Alder Blight") {
		t.Errorf("expected the top candidate in context: %s", gen.diagCtx)
	}
	if len(engine.CurrentState().Confirmed) != 4 {
		t.Errorf("confirmed = %v", engine.CurrentState().Confirmed)
	}
}

func TestGeneratorFailureDegradesToText(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	engine := New(Options{Store: sampleStore(t), Generator: gen})

	out := engine.ProcessTurn(context.Background(), "brown spots")
	if !strings.Contains(out, "diagnosis text unavailable: connection refused") {
		t.Errorf("expected degraded text, got %q", out)
	}
	if !strings.Contains(out, "Bacterial Leaf Spot") {
		t.Errorf("degraded text still names the disease: %q", out)
	}
	if engine.CurrentState().Phase != PhaseDiagnosed {
		t.Error("state transition must complete despite generator failure")
	}
}

func TestNoGeneratorFallsBackToContext(t *testing.T) {
	engine := New(Options{Store: sampleStore(t)})

	out := engine.ProcessTurn(context.Background(), "brown spots")
	if !strings.Contains(out, "Diagnosis: Bacterial Leaf Spot") {
		t.Errorf("expected context fallback, got %q", out)
	}
}

func TestDiagnosedIsTerminalUntilReset(t *testing.T) {
	engine := New(Options{Store: sampleStore(t), Generator: &fakeGenerator{text: "done"}})
	ctx := context.Background()

	engine.ProcessTurn(ctx, "brown spots")
	out := engine.ProcessTurn(ctx, "wilting")
	if !strings.Contains(out, "Reset the session") {
		t.Errorf("diagnosed state must be terminal, got %q", out)
	}

	engine.Reset()
	state := engine.CurrentState()
	if state.Phase != PhaseCollecting || state.Turn != 0 {
		t.Errorf("reset state = %+v", state)
	}
	if len(state.Confirmed) != 0 || len(state.RuledOut) != 0 || len(state.Asked) != 0 {
		t.Errorf("reset must clear all sets: %+v", state)
	}

	if out := engine.ProcessTurn(ctx, "yellowing leaves"); !strings.Contains(out, "stunted growth") {
		t.Errorf("engine unusable after reset, got %q", out)
	}
}

func TestUnknownSymptomsPromptForMore(t *testing.T) {
	engine := New(Options{Store: sampleStore(t), Generator: &fakeGenerator{text: "diagnosis"}})

	out := engine.ProcessTurn(context.Background(), "sparkle dust")
	if out != "Please describe any other symptoms you observe." {
		t.Errorf("no candidates should prompt for more symptoms, got %q", out)
	}
	if engine.CurrentState().Phase != PhaseCollecting {
		t.Error("state must remain collecting")
	}
}

func TestEmptyInputIsANoOp(t *testing.T) {
	engine := New(Options{Store: sampleStore(t), Generator: &fakeGenerator{text: "diagnosis"}})

	out := engine.ProcessTurn(context.Background(), "   ")
	if out != "Please describe any other symptoms you observe." {
		t.Errorf("got %q", out)
	}
	if engine.CurrentState().Turn != 0 {
		t.Error("blank input must not consume a turn")
	}
}

func TestSummaryDoesNotChangeState(t *testing.T) {
	gen := &fakeGenerator{text: "summary text"}
	engine := New(Options{Store: sampleStore(t), Generator: gen})
	ctx := context.Background()

	if out := engine.Summary(ctx); !strings.Contains(out, "No symptoms confirmed yet") {
		t.Errorf("empty-session summary = %q", out)
	}

	engine.ProcessTurn(ctx, "yellowing leaves")
	before := engine.CurrentState()

	out := engine.Summary(ctx)
	if out != "summary text" {
		t.Errorf("summary = %q", out)
	}
	if !strings.Contains(gen.diagCtx, "SUMMARY ANALYSIS") {
		t.Errorf("summary framing missing: %s", gen.diagCtx)
	}

	after := engine.CurrentState()
	if after.Phase != before.Phase || after.Turn != before.Turn {
		t.Error("summary must not advance the session")
	}
	if len(after.Confirmed) != len(before.Confirmed) || len(after.Asked) != len(before.Asked) {
		t.Error("summary must not touch the evidence sets")
	}
}

func TestEmptyGraphSession(t *testing.T) {
	store, err := graph.Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	engine := New(Options{Store: store, Generator: &fakeGenerator{text: "diagnosis"}})
	ctx := context.Background()

	out := engine.ProcessTurn(ctx, "yellowing leaves")
	if out != "Please describe any other symptoms you observe." {
		t.Errorf("empty graph should degrade to a prompt, got %q", out)
	}
	if out := engine.Summary(ctx); !strings.Contains(out, "No matching diseases") {
		t.Errorf("summary = %q", out)
	}
}
