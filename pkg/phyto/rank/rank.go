// Package rank scores candidate diseases against the confirmed-symptom
// evidence collected so far.
package rank

import (
	"sort"

	"github.com/verdantlab/phyto/pkg/phyto/graph"
	"github.com/verdantlab/phyto/pkg/phyto/match"
)

// maxCandidates caps how many diseases a single ranking returns.
const maxCandidates = 10

// Candidate is a disease scored against the confirmed symptoms. It is
// recomputed from scratch whenever the evidence changes, never mutated.
type Candidate struct {
	Name            string
	Description     string
	AllSymptoms     []string
	MatchedSymptoms []string
	MatchCount      int
	TotalSymptoms   int
	MatchPercentage float64
}

// Rank scores every disease node against the confirmed symptoms and
// returns the candidates sorted by (match percentage desc, match count
// desc, name asc). The name tie-break keeps the ordering deterministic.
// Diseases with no matched symptom are omitted; at most 10 candidates
// are returned.
func Rank(store *graph.Store, matcher *match.Matcher, confirmed []string) []Candidate {
	if store == nil || len(confirmed) == 0 {
		return nil
	}

	userSymptoms := make([]string, 0, len(confirmed))
	for _, s := range confirmed {
		if norm := match.Normalize(s); norm != "" {
			userSymptoms = append(userSymptoms, norm)
		}
	}
	if len(userSymptoms) == 0 {
		return nil
	}

	var results []Candidate
	for _, disease := range store.NodesByKind(graph.KindDisease) {
		all := DiseaseSymptoms(store, disease.ID)

		// First fuzzy hit per user symptom; no double counting.
		var matched []string
		for _, us := range userSymptoms {
			for _, ds := range all {
				if matcher.Matches(us, ds) {
					matched = append(matched, ds)
					break
				}
			}
		}
		if len(matched) == 0 {
			continue
		}

		total := len(all)
		if total < 1 {
			total = 1
		}
		results = append(results, Candidate{
			Name:            disease.Name,
			Description:     disease.Description,
			AllSymptoms:     all,
			MatchedSymptoms: matched,
			MatchCount:      len(matched),
			TotalSymptoms:   total,
			MatchPercentage: float64(len(matched)) / float64(total),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].MatchPercentage != results[j].MatchPercentage {
			return results[i].MatchPercentage > results[j].MatchPercentage
		}
		if results[i].MatchCount != results[j].MatchCount {
			return results[i].MatchCount > results[j].MatchCount
		}
		return results[i].Name < results[j].Name
	})

	if len(results) > maxCandidates {
		results = results[:maxCandidates]
	}
	return results
}

// DiseaseSymptoms collects the normalized, deduplicated symptom names
// reachable from a disease node via a recognized symptom relationship.
// The result is sorted so traversal order never leaks into scoring.
func DiseaseSymptoms(store *graph.Store, diseaseID string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rel := range store.RelationshipsFrom(diseaseID) {
		if !graph.IsSymptomRelationship(rel.Kind) {
			continue
		}
		target, ok := store.NodeByID(rel.Target)
		if !ok || target.Kind != graph.KindSymptom {
			continue
		}
		name := match.Normalize(target.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
