// Package differ picks the next symptom to ask about: the one whose
// presence or absence best splits the current candidate diseases.
package differ

import (
	"sort"

	"github.com/verdantlab/phyto/pkg/phyto/graph"
	"github.com/verdantlab/phyto/pkg/phyto/match"
	"github.com/verdantlab/phyto/pkg/phyto/rank"
)

// maxGathered caps how many candidate symptoms are scored per turn.
const maxGathered = 20

// Candidate is a symptom under consideration as the next question.
type Candidate struct {
	Symptom  string
	Diseases []string
	Score    float64
}

// Gather collects, for the named diseases, every reachable symptom that
// does not fuzzily match anything in excluded, mapped to the diseases
// exhibiting it. Results are sorted by disease count descending then
// symptom ascending and capped at 20, which fixes the tie order for
// Select.
func Gather(store *graph.Store, matcher *match.Matcher, diseaseNames []string, excluded []string) []Candidate {
	if store == nil || len(diseaseNames) == 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(diseaseNames))
	for _, name := range diseaseNames {
		wanted[name] = struct{}{}
	}

	exclusions := make([]string, 0, len(excluded))
	for _, e := range excluded {
		if norm := match.Normalize(e); norm != "" {
			exclusions = append(exclusions, norm)
		}
	}

	bySymptom := make(map[string]map[string]struct{})
	for _, disease := range store.NodesByKind(graph.KindDisease) {
		if _, ok := wanted[disease.Name]; !ok {
			continue
		}
		for _, symptom := range rank.DiseaseSymptoms(store, disease.ID) {
			if isExcluded(matcher, symptom, exclusions) {
				continue
			}
			if bySymptom[symptom] == nil {
				bySymptom[symptom] = make(map[string]struct{})
			}
			bySymptom[symptom][disease.Name] = struct{}{}
		}
	}

	results := make([]Candidate, 0, len(bySymptom))
	for symptom, diseases := range bySymptom {
		names := make([]string, 0, len(diseases))
		for name := range diseases {
			names = append(names, name)
		}
		sort.Strings(names)
		results = append(results, Candidate{Symptom: symptom, Diseases: names})
	}

	sort.Slice(results, func(i, j int) bool {
		if len(results[i].Diseases) != len(results[j].Diseases) {
			return len(results[i].Diseases) > len(results[j].Diseases)
		}
		return results[i].Symptom < results[j].Symptom
	})
	if len(results) > maxGathered {
		results = results[:maxGathered]
	}
	return results
}

// Select returns the symptom that best discriminates among the given
// diseases, or false when no symptom scores above zero. A symptom
// exhibited by w of the n diseases scores min(w, n-w) + 0.1*w — zero
// when it cannot split the set — so balanced splits win, with a bonus
// for broadly shared symptoms. Only a strictly greater score replaces
// the running best; since Gather pre-sorts candidates, ties resolve to
// the symptom shared by more diseases, then the lexicographically
// smaller one.
func Select(store *graph.Store, matcher *match.Matcher, diseaseNames []string, excluded []string) (string, bool) {
	candidates := Gather(store, matcher, diseaseNames, excluded)
	if len(candidates) == 0 {
		return "", false
	}

	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		with := len(c.Diseases)
		without := len(diseaseNames) - with

		var score float64
		if with == 0 || without == 0 {
			score = 0
		} else {
			score = float64(min(with, without)) + 0.1*float64(with)
		}

		if score > bestScore {
			bestScore = score
			best = c.Symptom
		}
	}

	if best == "" {
		return "", false
	}
	return best, true
}

func isExcluded(matcher *match.Matcher, symptom string, exclusions []string) bool {
	for _, e := range exclusions {
		if matcher.Matches(symptom, e) {
			return true
		}
	}
	return false
}
