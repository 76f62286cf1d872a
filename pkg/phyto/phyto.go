// Package phyto drives an interactive differential-diagnosis session
// over an immutable knowledge graph of diseases, symptoms and
// solutions. The engine narrows a candidate set from free-text symptom
// reports, asks the most discriminating follow-up question each turn,
// and commits to a diagnosis once the evidence clears a stop condition.
package phyto

import (
	"context"
	"fmt"
	"strings"

	"github.com/verdantlab/phyto/pkg/phyto/dialog"
	"github.com/verdantlab/phyto/pkg/phyto/differ"
	"github.com/verdantlab/phyto/pkg/phyto/graph"
	"github.com/verdantlab/phyto/pkg/phyto/match"
	"github.com/verdantlab/phyto/pkg/phyto/rank"
	"github.com/verdantlab/phyto/pkg/phyto/report"
	"github.com/verdantlab/phyto/pkg/phyto/solutions"
)

// Generator is the external text-generation collaborator. It produces
// the final diagnosis narrative; failures surface as error values and
// the engine degrades them to turn text, never past its boundary.
type Generator interface {
	Generate(ctx context.Context, symptoms []string, diagCtx string) (string, error)
}

// Thresholds are the stop-condition and candidate-window parameters.
type Thresholds struct {
	MinConfirmed     int     // confirmed symptoms required before stop rules apply
	DefinitiveGap    float64 // top-vs-second gap that alone decides
	HighMatch        float64 // top percentage enabling the smaller gap
	HighMatchGap     float64 // gap required alongside HighMatch
	ConfidentCount   int     // matched symptoms for the confidence rule
	ConfidentPercent float64 // match percentage for the confidence rule
	ForceAfter       int     // confirmed symptoms that force a diagnosis
	KeepCandidates   int     // candidates retained on the session
	DifferentiateTop int     // top candidates the selector considers
}

// DefaultThresholds returns the stock stop-condition parameters.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinConfirmed:     2,
		DefinitiveGap:    0.20,
		HighMatch:        0.70,
		HighMatchGap:     0.10,
		ConfidentCount:   3,
		ConfidentPercent: 0.60,
		ForceAfter:       4,
		KeepCandidates:   8,
		DifferentiateTop: 5,
	}
}

// Phase is the conversation state.
type Phase int

const (
	// PhaseCollecting means the engine is still gathering evidence.
	PhaseCollecting Phase = iota
	// PhaseDiagnosed is terminal; only Reset leaves it.
	PhaseDiagnosed
)

func (p Phase) String() string {
	if p == PhaseDiagnosed {
		return "diagnosed"
	}
	return "collecting"
}

// State is a snapshot of the session for callers.
type State struct {
	Phase      Phase
	Turn       int
	Confirmed  []string
	RuledOut   []string
	Asked      []string
	LastAsked  string
	Candidates []rank.Candidate
}

// Options configures an Engine.
type Options struct {
	Store      *graph.Store
	Matcher    *match.Matcher // defaults to match.New()
	Generator  Generator      // optional; without one, diagnosis text degrades
	Thresholds Thresholds     // zero value means DefaultThresholds()
}

// Engine holds one conversation over a shared, read-only graph. An
// Engine is exclusively owned by its session and is not safe for
// concurrent use; the Store behind it may back any number of engines.
type Engine struct {
	store   *graph.Store
	matcher *match.Matcher
	gen     Generator
	reports *report.Builder
	th      Thresholds

	phase      Phase
	turn       int
	confirmed  *stringSet
	ruledOut   *stringSet
	asked      *stringSet
	lastAsked  string
	candidates []rank.Candidate
}

// New creates an Engine with the given dependencies.
func New(opts Options) *Engine {
	matcher := opts.Matcher
	if matcher == nil {
		matcher = match.New()
	}
	th := opts.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	return &Engine{
		store:     opts.Store,
		matcher:   matcher,
		gen:       opts.Generator,
		reports:   report.New(),
		th:        th,
		confirmed: newStringSet(),
		ruledOut:  newStringSet(),
		asked:     newStringSet(),
	}
}

// ProcessTurn advances the conversation by one user input and returns
// the text to present: a diagnosis, a follow-up question, or a prompt
// for more symptoms. It never returns an error; every failure degrades
// to an explanation embedded in the response.
func (e *Engine) ProcessTurn(ctx context.Context, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return dialog.OpenPrompt
	}
	if e.phase == PhaseDiagnosed {
		return "A diagnosis has already been delivered. Reset the session to start over."
	}

	e.turn++
	if e.turn == 1 {
		e.confirmed.add(match.Normalize(input))
		e.rerank()
		if top, ok := e.shouldDiagnose(); ok {
			return e.diagnose(ctx, top, "IMMEDIATE DIAGNOSIS")
		}
	} else {
		switch dialog.Classify(input) {
		case dialog.ReplyConfirmed:
			if e.lastAsked != "" {
				e.confirmed.add(e.lastAsked)
			}
		case dialog.ReplyDenied:
			if e.lastAsked != "" {
				e.ruledOut.add(e.lastAsked)
			}
		default:
			e.confirmed.add(match.Normalize(input))
		}

		e.rerank()
		if top, ok := e.shouldDiagnose(); ok {
			framing := fmt.Sprintf("DIAGNOSIS after %d symptoms confirmed", e.confirmed.len())
			return e.diagnose(ctx, top, framing)
		}
		if e.confirmed.len() >= e.th.ForceAfter && len(e.candidates) > 0 {
			return e.diagnose(ctx, e.candidates[0], "ANALYSIS COMPLETE - sufficient symptoms collected")
		}
	}

	return e.askNext(ctx)
}

// askNext picks the next differentiating symptom, or forces a final
// diagnosis when no question can split the candidates further.
func (e *Engine) askNext(ctx context.Context) string {
	names := make([]string, 0, e.th.DifferentiateTop)
	for i, c := range e.candidates {
		if i >= e.th.DifferentiateTop {
			break
		}
		names = append(names, c.Name)
	}

	excluded := append(append(e.confirmed.items(), e.ruledOut.items()...), e.asked.items()...)
	if symptom, ok := differ.Select(e.store, e.matcher, names, excluded); ok {
		e.lastAsked = symptom
		e.asked.add(symptom)
		return dialog.FormatQuestion(symptom)
	}

	if len(e.candidates) > 0 {
		return e.diagnose(ctx, e.candidates[0], "NO MORE QUESTIONS - final diagnosis")
	}
	return dialog.OpenPrompt
}

// shouldDiagnose evaluates the confidence-based stop rules: a gate on
// minimum evidence, then single candidate, percentage gap, and the
// count-plus-percentage rule. The force-at-N rule lives in ProcessTurn
// because it applies regardless of confidence.
func (e *Engine) shouldDiagnose() (rank.Candidate, bool) {
	if e.confirmed.len() < e.th.MinConfirmed || len(e.candidates) == 0 {
		return rank.Candidate{}, false
	}

	top := e.candidates[0]
	if len(e.candidates) == 1 {
		return top, true
	}

	second := e.candidates[1]
	gap := top.MatchPercentage - second.MatchPercentage
	if gap > e.th.DefinitiveGap || (top.MatchPercentage > e.th.HighMatch && gap > e.th.HighMatchGap) {
		return top, true
	}
	if top.MatchCount >= e.th.ConfidentCount && top.MatchPercentage >= e.th.ConfidentPercent {
		return top, true
	}
	return rank.Candidate{}, false
}

// diagnose commits the session to the given disease and delegates the
// narrative to the generator. Generator failures become part of the
// returned text; the state transition happens either way.
func (e *Engine) diagnose(ctx context.Context, disease rank.Candidate, framing string) string {
	sols := solutions.ForDisease(e.store, disease.Name)
	rep := e.reports.Build(disease, e.confirmed.items(), e.ruledOut.items(), sols, framing)
	e.phase = PhaseDiagnosed
	return e.generate(ctx, rep)
}

func (e *Engine) generate(ctx context.Context, rep report.Report) string {
	if e.gen == nil {
		return fmt.Sprintf("Diagnosis: %s\n%s", rep.Disease.Name, rep.Context())
	}
	text, err := e.gen.Generate(ctx, rep.Confirmed, rep.Context())
	if err != nil {
		return fmt.Sprintf("Diagnosis: %s\ndiagnosis text unavailable: %v", rep.Disease.Name, err)
	}
	return text
}

// Summary re-derives the top candidate from the current confirmed
// symptoms and produces a one-shot diagnosis-style narrative without
// changing any session state.
func (e *Engine) Summary(ctx context.Context) string {
	if e.confirmed.len() == 0 {
		return "No symptoms confirmed yet. Please describe what you observe on the plant."
	}

	candidates := rank.Rank(e.store, e.matcher, e.confirmed.items())
	if len(candidates) == 0 {
		return "No matching diseases found for the confirmed symptoms."
	}

	top := candidates[0]
	sols := solutions.ForDisease(e.store, top.Name)
	rep := e.reports.Build(top, e.confirmed.items(), e.ruledOut.items(), sols, "SUMMARY ANALYSIS")
	return e.generate(ctx, rep)
}

// CurrentState returns a copy of the session state.
func (e *Engine) CurrentState() State {
	candidates := make([]rank.Candidate, len(e.candidates))
	copy(candidates, e.candidates)
	return State{
		Phase:      e.phase,
		Turn:       e.turn,
		Confirmed:  e.confirmed.items(),
		RuledOut:   e.ruledOut.items(),
		Asked:      e.asked.items(),
		LastAsked:  e.lastAsked,
		Candidates: candidates,
	}
}

// Reset clears the session back to a fresh collecting state. The graph
// is untouched.
func (e *Engine) Reset() {
	e.phase = PhaseCollecting
	e.turn = 0
	e.confirmed = newStringSet()
	e.ruledOut = newStringSet()
	e.asked = newStringSet()
	e.lastAsked = ""
	e.candidates = nil
}

func (e *Engine) rerank() {
	candidates := rank.Rank(e.store, e.matcher, e.confirmed.items())
	if len(candidates) > e.th.KeepCandidates {
		candidates = candidates[:e.th.KeepCandidates]
	}
	e.candidates = candidates
}

// stringSet is an insertion-ordered set, so state listings and
// exclusion passes stay deterministic across turns.
type stringSet struct {
	seen  map[string]struct{}
	order []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]struct{})}
}

func (s *stringSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
}

func (s *stringSet) len() int { return len(s.order) }

func (s *stringSet) items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
