// Package solutions looks up treatments attached to a diagnosed disease.
package solutions

import (
	"strings"

	"github.com/verdantlab/phyto/pkg/phyto/graph"
)

// Solution is a treatment option reachable from a disease node.
type Solution struct {
	Name        string
	Description string
	Treatment   string
}

// ForDisease returns the solutions linked to the named disease. The
// disease name is matched exactly, not fuzzily. Treatment text falls
// back through the extra fields treatment, content and instructions,
// and finally the solution name itself. An unknown disease or one with
// no recognized solution relationship yields an empty list.
func ForDisease(store *graph.Store, diseaseName string) []Solution {
	if store == nil {
		return nil
	}

	var disease graph.Node
	found := false
	for _, node := range store.NodesByKind(graph.KindDisease) {
		if node.Name == diseaseName {
			disease = node
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	var out []Solution
	for _, rel := range store.RelationshipsFrom(disease.ID) {
		if !isSolutionRelationship(rel.Kind) {
			continue
		}
		target, ok := store.NodeByID(rel.Target)
		if !ok || target.Kind != graph.KindSolution || target.Name == "" {
			continue
		}
		out = append(out, Solution{
			Name:        target.Name,
			Description: target.Description,
			Treatment:   treatmentText(target),
		})
	}
	return out
}

// isSolutionRelationship recognizes any kind whose lowercase form
// contains "solution" or "treatment", plus has_solution and treated_by.
func isSolutionRelationship(kind string) bool {
	lower := strings.ToLower(kind)
	return strings.Contains(lower, "solution") ||
		strings.Contains(lower, "treatment") ||
		lower == "has_solution" ||
		lower == "treated_by"
}

func treatmentText(node graph.Node) string {
	for _, field := range []string{"treatment", "content", "instructions"} {
		if v := node.Extra[field]; v != "" {
			return v
		}
	}
	return node.Name
}
