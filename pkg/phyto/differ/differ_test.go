package differ

import (
	"testing"

	"github.com/verdantlab/phyto/pkg/phyto/graph"
	"github.com/verdantlab/phyto/pkg/phyto/match"
)

func sampleStore(t *testing.T) *graph.Store {
	t.Helper()
	store, err := graph.Load(
		[]graph.Node{
			{ID: "disease_1", Kind: graph.KindDisease, Name: "Bacterial Leaf Spot"},
			{ID: "disease_2", Kind: graph.KindDisease, Name: "Iron Chlorosis"},
			{ID: "disease_3", Kind: graph.KindDisease, Name: "Powdery Mildew"},
			{ID: "symptom_1", Kind: graph.KindSymptom, Name: "brown spots"},
			{ID: "symptom_2", Kind: graph.KindSymptom, Name: "yellowing leaves"},
			{ID: "symptom_3", Kind: graph.KindSymptom, Name: "white powdery coating"},
			{ID: "symptom_4", Kind: graph.KindSymptom, Name: "leaf drop"},
			{ID: "symptom_5", Kind: graph.KindSymptom, Name: "stunted growth"},
		},
		[]graph.Relationship{
			{Source: "disease_1", Target: "symptom_1", Kind: "HAS_SYMPTOM"},
			{Source: "disease_1", Target: "symptom_4", Kind: "HAS_SYMPTOM"},
			{Source: "disease_2", Target: "symptom_2", Kind: "HAS_SYMPTOM"},
			{Source: "disease_2", Target: "symptom_5", Kind: "HAS_SYMPTOM"},
			{Source: "disease_3", Target: "symptom_3", Kind: "HAS_SYMPTOM"},
			{Source: "disease_3", Target: "symptom_2", Kind: "HAS_SYMPTOM"},
		},
	)
	if err != nil {
		t.Fatalf("build sample store: %v", err)
	}
	return store
}

func TestSelectTieBreaksToSmallerSymptom(t *testing.T) {
	store := sampleStore(t)
	// After confirming "yellowing leaves", the remaining candidates
	// "stunted growth" and "white powdery coating" both score 1.1.
	symptom, ok := Select(store, match.New(),
		[]string{"Iron Chlorosis", "Powdery Mildew"},
		[]string{"yellowing leaves"})

	if !ok {
		t.Fatal("expected a differentiating symptom")
	}
	if symptom != "stunted growth" {
		t.Errorf("tie should resolve to the smaller symptom, got %q", symptom)
	}
}

func TestSelectNeverReturnsExcluded(t *testing.T) {
	store := sampleStore(t)
	excluded := []string{"yellowing leaves", "stunted growth", "white powdery coating"}

	if symptom, ok := Select(store, match.New(),
		[]string{"Iron Chlorosis", "Powdery Mildew"}, excluded); ok {
		t.Errorf("all symptoms excluded, yet Select returned %q", symptom)
	}
}

func TestSelectFuzzyExclusion(t *testing.T) {
	store := sampleStore(t)
	// "stunting" excludes "stunted growth" via the synonym table even
	// though the strings differ.
	symptom, ok := Select(store, match.New(),
		[]string{"Iron Chlorosis", "Powdery Mildew"},
		[]string{"yellowing leaves", "stunting"})

	if !ok {
		t.Fatal("expected a differentiating symptom")
	}
	if symptom != "white powdery coating" {
		t.Errorf("got %q, want the one non-excluded symptom", symptom)
	}
}

func TestSelectSharedSymptomScoresZero(t *testing.T) {
	store := sampleStore(t)
	// With both diseases still in play, their shared symptom
	// "yellowing leaves" splits nothing; the singles still score.
	symptom, ok := Select(store, match.New(),
		[]string{"Iron Chlorosis", "Powdery Mildew"}, nil)

	if !ok {
		t.Fatal("expected a differentiating symptom")
	}
	if symptom == "yellowing leaves" {
		t.Error("a symptom shared by every candidate cannot discriminate")
	}
}

func TestSelectSingleDisease(t *testing.T) {
	store := sampleStore(t)
	// Every symptom of a lone candidate has without == 0.
	if symptom, ok := Select(store, match.New(),
		[]string{"Bacterial Leaf Spot"}, []string{"brown spots"}); ok {
		t.Errorf("single disease cannot be split, got %q", symptom)
	}
}

func TestSelectEmptyInputs(t *testing.T) {
	empty, err := graph.Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := Select(empty, match.New(), []string{"Anything"}, nil); ok {
		t.Error("empty graph should select nothing")
	}

	store := sampleStore(t)
	if _, ok := Select(store, match.New(), nil, nil); ok {
		t.Error("no candidate diseases should select nothing")
	}
}

func TestGatherOrderAndMapping(t *testing.T) {
	store := sampleStore(t)
	candidates := Gather(store, match.New(),
		[]string{"Iron Chlorosis", "Powdery Mildew"}, nil)

	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidate symptoms, got %d", len(candidates))
	}
	// Shared symptom first (2 diseases), then singles ascending.
	if candidates[0].Symptom != "yellowing leaves" || len(candidates[0].Diseases) != 2 {
		t.Errorf("expected shared symptom first, got %+v", candidates[0])
	}
	if candidates[1].Symptom != "stunted growth" || candidates[2].Symptom != "white powdery coating" {
		t.Errorf("singles not in ascending order: %q, %q",
			candidates[1].Symptom, candidates[2].Symptom)
	}
}
