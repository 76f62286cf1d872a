// Command seed-graph writes the sample plant-disease snapshot, either
// as a JSON file or into a SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/verdantlab/phyto/pkg/phyto/graph"
	"github.com/verdantlab/phyto/pkg/phyto/graph/jsonfile"
	"github.com/verdantlab/phyto/pkg/phyto/graph/sqlite"
)

func main() {
	var (
		out    = flag.String("out", "plant_disease_graph.json", "Output path")
		driver = flag.String("driver", "json", "Output driver: json or sqlite")
	)
	flag.Parse()

	snap := sampleSnapshot()

	switch *driver {
	case "json":
		if err := jsonfile.Save(*out, snap); err != nil {
			log.Fatalf("write snapshot: %v", err)
		}
	case "sqlite":
		if err := writeSQLite(*out, snap); err != nil {
			log.Fatalf("write snapshot: %v", err)
		}
	default:
		log.Fatalf("unknown driver %q", *driver)
	}

	fmt.Printf("Sample plant disease graph saved to %s (%d nodes, %d relationships)\n",
		*out, len(snap.Nodes), len(snap.Relationships))
}

func writeSQLite(path string, snap jsonfile.Snapshot) error {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

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
		rels[i] = graph.Relationship{Source: rec.Source, Target: rec.Target, Kind: rec.Type}
	}

	return db.SaveSnapshot(ctx, nodes, rels)
}

func sampleSnapshot() jsonfile.Snapshot {
	return jsonfile.Snapshot{
		Nodes: []jsonfile.NodeRecord{
			{ID: "disease_1", Type: "Disease", Name: "Bacterial Leaf Spot",
				Description: "A bacterial infection causing dark spots on leaves"},
			{ID: "disease_2", Type: "Disease", Name: "Iron Chlorosis",
				Description: "Nutrient deficiency causing yellowing of leaves"},
			{ID: "disease_3", Type: "Disease", Name: "Powdery Mildew",
				Description: "Fungal infection causing white powdery coating"},

			{ID: "symptom_1", Type: "Symptom", Name: "brown spots",
				Description: "Dark brown or black spots on leaf surface"},
			{ID: "symptom_2", Type: "Symptom", Name: "yellowing leaves",
				Description: "Leaves turning yellow, often starting from edges"},
			{ID: "symptom_3", Type: "Symptom", Name: "white powdery coating",
				Description: "White dusty substance on leaf surfaces"},
			{ID: "symptom_4", Type: "Symptom", Name: "leaf drop",
				Description: "Premature falling of leaves"},
			{ID: "symptom_5", Type: "Symptom", Name: "stunted growth",
				Description: "Reduced plant growth and development"},

			{ID: "solution_1", Type: "Solution", Name: "Copper Fungicide",
				Description: "Copper-based spray for bacterial control",
				Extra:       map[string]string{"treatment": "Apply copper fungicide every 7-10 days until symptoms improve"}},
			{ID: "solution_2", Type: "Solution", Name: "Iron Supplement",
				Description: "Iron chelate fertilizer for chlorosis",
				Extra:       map[string]string{"treatment": "Apply iron chelate to soil according to package directions"}},
			{ID: "solution_3", Type: "Solution", Name: "Fungicide Spray",
				Description: "Anti-fungal treatment for mildew",
				Extra:       map[string]string{"treatment": "Spray affected areas with fungicide weekly"}},
		},
		Relationships: []jsonfile.RelationshipRecord{
			{Source: "disease_1", Target: "symptom_1", Type: "HAS_SYMPTOM"},
			{Source: "disease_1", Target: "symptom_4", Type: "HAS_SYMPTOM"},
			{Source: "disease_2", Target: "symptom_2", Type: "HAS_SYMPTOM"},
			{Source: "disease_2", Target: "symptom_5", Type: "HAS_SYMPTOM"},
			{Source: "disease_3", Target: "symptom_3", Type: "HAS_SYMPTOM"},
			{Source: "disease_3", Target: "symptom_2", Type: "HAS_SYMPTOM"},

			{Source: "disease_1", Target: "solution_1", Type: "HAS_SOLUTION"},
			{Source: "disease_2", Target: "solution_2", Type: "HAS_SOLUTION"},
			{Source: "disease_3", Target: "solution_3", Type: "HAS_SOLUTION"},
		},
	}
}
