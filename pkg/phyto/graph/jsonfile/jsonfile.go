// Package jsonfile reads and writes graph snapshots in the JSON wire
// format: a mapping with "nodes" and "relationships" sequences.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/verdantlab/phyto/pkg/phyto/graph"
)

// Snapshot is the on-disk form of a graph.
type Snapshot struct {
	Nodes         []NodeRecord         `json:"nodes"`
	Relationships []RelationshipRecord `json:"relationships"`
}

// NodeRecord carries the fixed node fields; anything else in the JSON
// object lands in Extra.
type NodeRecord struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Extra       map[string]string `json:"-"`
}

// RelationshipRecord is a directed, typed edge record.
type RelationshipRecord struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// fixed node fields that do not belong in Extra
var reservedNodeFields = map[string]struct{}{
	"id": {}, "type": {}, "name": {}, "description": {},
}

// UnmarshalJSON keeps unknown string fields (treatment, content,
// instructions, ...) as extra fields instead of dropping them.
func (n *NodeRecord) UnmarshalJSON(data []byte) error {
	type plain NodeRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		if _, reserved := reservedNodeFields[key]; reserved {
			continue
		}
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			continue // non-string extras are not part of the data model
		}
		if p.Extra == nil {
			p.Extra = make(map[string]string)
		}
		p.Extra[key] = s
	}

	*n = NodeRecord(p)
	return nil
}

// MarshalJSON writes the fixed fields and the extras as one flat object.
func (n NodeRecord) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(n.Extra)+4)
	for k, v := range n.Extra {
		flat[k] = v
	}
	flat["id"] = n.ID
	flat["type"] = n.Type
	flat["name"] = n.Name
	if n.Description != "" {
		flat["description"] = n.Description
	}
	return json.Marshal(flat)
}

// Load reads a snapshot file and builds a graph store. A missing file
// is not an error: it yields an empty graph, and downstream components
// degrade to "no candidates". Malformed JSON is a graph.LoadError.
func Load(path string) (*graph.Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return graph.Load(nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(data)
}

// Decode builds a graph store from raw snapshot JSON.
func Decode(data []byte) (*graph.Store, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &graph.LoadError{Reason: err.Error()}
	}

	nodes := make([]graph.Node, len(snap.Nodes))
	for i, rec := range snap.Nodes {
		nodes[i] = graph.Node{
			ID:          rec.ID,
			Kind:        graph.KindOf(rec.Type),
			Name:        rec.Name,
			Description: rec.Description,
			Extra:       rec.Extra,
		}
	}

	rels := make([]graph.Relationship, len(snap.Relationships))
	for i, rec := range snap.Relationships {
		rels[i] = graph.Relationship{
			Source: rec.Source,
			Target: rec.Target,
			Kind:   rec.Type,
		}
	}

	return graph.Load(nodes, rels)
}

// Save writes a snapshot to disk.
func Save(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
