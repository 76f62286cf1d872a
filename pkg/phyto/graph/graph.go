package graph

import (
	"fmt"
	"sort"
)

// Kind classifies a node in the knowledge graph.
type Kind string

const (
	KindDisease  Kind = "Disease"
	KindSymptom  Kind = "Symptom"
	KindSolution Kind = "Solution"
	KindOther    Kind = "Other"
)

// KindOf maps a raw node type string to a Kind. Unrecognized types
// are preserved verbatim so schema reporting still sees them.
func KindOf(raw string) Kind {
	switch raw {
	case "Disease", "PlantDisease":
		return KindDisease
	case "Symptom":
		return KindSymptom
	case "Solution":
		return KindSolution
	case "":
		return KindOther
	default:
		return Kind(raw)
	}
}

// Node is a typed entity in the knowledge graph.
type Node struct {
	ID          string
	Kind        Kind
	Name        string
	Description string
	Extra       map[string]string
}

// Relationship is a directed, typed edge between two nodes.
// Endpoints may dangle; such edges are kept but never traversable.
type Relationship struct {
	Source string
	Target string
	Kind   string
}

// LoadError reports structurally invalid graph input.
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("graph load: %s", e.Reason)
}

// Store holds an immutable graph snapshot with lookup indices. It is
// built once by Load and never mutated, so a single Store can back any
// number of concurrent sessions without locking.
type Store struct {
	nodes     []Node
	byID      map[string]int
	byKind    map[Kind][]int
	bySource  map[string][]Relationship
	relations []Relationship
	relKinds  map[string]struct{}
}

// Load builds a Store from raw nodes and relationships. A node with an
// empty id is structurally invalid; everything else, including dangling
// or empty relationship endpoints, degrades rather than fails. Duplicate
// node ids resolve to the later record, matching the last-write
// semantics of the snapshot format.
func Load(nodes []Node, relationships []Relationship) (*Store, error) {
	s := &Store{
		nodes:     make([]Node, 0, len(nodes)),
		byID:      make(map[string]int, len(nodes)),
		byKind:    make(map[Kind][]int),
		bySource:  make(map[string][]Relationship),
		relations: make([]Relationship, 0, len(relationships)),
		relKinds:  make(map[string]struct{}),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, &LoadError{Reason: "node without id"}
		}
		if prev, ok := s.byID[n.ID]; ok {
			s.nodes[prev] = n
			continue
		}
		s.byID[n.ID] = len(s.nodes)
		s.nodes = append(s.nodes, n)
	}

	for i, n := range s.nodes {
		s.byKind[n.Kind] = append(s.byKind[n.Kind], i)
	}

	for _, r := range relationships {
		s.relations = append(s.relations, r)
		if r.Source != "" {
			s.bySource[r.Source] = append(s.bySource[r.Source], r)
		}
		if r.Kind != "" {
			s.relKinds[r.Kind] = struct{}{}
		}
	}

	return s, nil
}

// NodesByKind returns all nodes of the given kind.
func (s *Store) NodesByKind(kind Kind) []Node {
	idxs := s.byKind[kind]
	out := make([]Node, len(idxs))
	for i, idx := range idxs {
		out[i] = s.nodes[idx]
	}
	return out
}

// NodeByID returns the node with the given id, if present.
func (s *Store) NodeByID(id string) (Node, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Node{}, false
	}
	return s.nodes[idx], true
}

// RelationshipsFrom returns the outgoing relationships of a node.
func (s *Store) RelationshipsFrom(nodeID string) []Relationship {
	return s.bySource[nodeID]
}

// KindCount pairs a node kind with how many nodes carry it.
type KindCount struct {
	Kind  Kind
	Count int
}

// Schema summarizes the kinds present in the snapshot.
type Schema struct {
	NodeKinds         []Kind
	RelationshipKinds []string
	Counts            []KindCount
}

// Schema reports node kinds, relationship kinds, and per-kind node
// counts sorted descending (ties by kind name, for stable output).
func (s *Store) Schema() Schema {
	var sch Schema
	for kind, idxs := range s.byKind {
		sch.NodeKinds = append(sch.NodeKinds, kind)
		sch.Counts = append(sch.Counts, KindCount{Kind: kind, Count: len(idxs)})
	}
	sort.Slice(sch.NodeKinds, func(i, j int) bool { return sch.NodeKinds[i] < sch.NodeKinds[j] })
	sort.Slice(sch.Counts, func(i, j int) bool {
		if sch.Counts[i].Count != sch.Counts[j].Count {
			return sch.Counts[i].Count > sch.Counts[j].Count
		}
		return sch.Counts[i].Kind < sch.Counts[j].Kind
	})
	for kind := range s.relKinds {
		sch.RelationshipKinds = append(sch.RelationshipKinds, kind)
	}
	sort.Strings(sch.RelationshipKinds)
	return sch
}

// NodeCount returns the number of nodes in the snapshot.
func (s *Store) NodeCount() int { return len(s.nodes) }

// RelationshipCount returns the number of relationships in the snapshot.
func (s *Store) RelationshipCount() int { return len(s.relations) }

// Relationships returns every relationship in the snapshot. The
// returned slice is a copy; the snapshot stays immutable.
func (s *Store) Relationships() []Relationship {
	out := make([]Relationship, len(s.relations))
	copy(out, s.relations)
	return out
}

// Nodes returns every node in the snapshot as a copy.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// symptom-linking relationship kinds recognized for traversal
var symptomRelKinds = map[string]struct{}{
	"HAS_SYMPTOM":  {},
	"MANIFESTS_AS": {},
	"SHOWS":        {},
	"EXHIBITS":     {},
}

// IsSymptomRelationship reports whether a relationship kind links a
// disease to one of its symptoms.
func IsSymptomRelationship(kind string) bool {
	_, ok := symptomRelKinds[kind]
	return ok
}
