// Command import-html converts an HTML disease reference page into a
// graph snapshot. It expects tables with three columns per row:
// disease name, comma-separated symptoms, and a treatment description.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/verdantlab/phyto/pkg/phyto/graph/jsonfile"
)

type diseaseRow struct {
	Name      string
	Symptoms  []string
	Treatment string
}

func main() {
	var (
		in  = flag.String("in", "", "HTML source file (required)")
		out = flag.String("out", "plant_disease_graph.json", "Snapshot output path")
	)
	flag.Parse()

	if *in == "" {
		log.Fatal("--in required")
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open source: %v", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		log.Fatalf("parse html: %v", err)
	}

	rows := extractRows(doc)
	if len(rows) == 0 {
		log.Fatal("no disease rows found in source")
	}

	snap := buildSnapshot(rows)
	if err := jsonfile.Save(*out, snap); err != nil {
		log.Fatalf("write snapshot: %v", err)
	}

	fmt.Printf("Imported %d diseases into %s (%d nodes, %d relationships)\n",
		len(rows), *out, len(snap.Nodes), len(snap.Relationships))
}

// extractRows walks the document and collects every table row with at
// least three cells as a disease record.
func extractRows(doc *html.Node) []diseaseRow {
	var rows []diseaseRow

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			cells := cellTexts(n)
			if len(cells) >= 3 && cells[0] != "" && !isHeaderRow(n) {
				rows = append(rows, diseaseRow{
					Name:      cells[0],
					Symptoms:  splitSymptoms(cells[1]),
					Treatment: cells[2],
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return rows
}

func cellTexts(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, strings.TrimSpace(nodeText(c)))
		}
	}
	return cells
}

func isHeaderRow(tr *html.Node) bool {
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "th" {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func splitSymptoms(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// buildSnapshot turns the rows into disease, symptom and solution
// nodes. Symptoms shared between diseases collapse into one node.
func buildSnapshot(rows []diseaseRow) jsonfile.Snapshot {
	var snap jsonfile.Snapshot
	symptomIDs := make(map[string]string)

	for i, row := range rows {
		diseaseID := fmt.Sprintf("disease_%d", i+1)
		snap.Nodes = append(snap.Nodes, jsonfile.NodeRecord{
			ID:   diseaseID,
			Type: "Disease",
			Name: row.Name,
		})

		for _, symptom := range row.Symptoms {
			key := strings.ToLower(symptom)
			id, ok := symptomIDs[key]
			if !ok {
				id = fmt.Sprintf("symptom_%d", len(symptomIDs)+1)
				symptomIDs[key] = id
				snap.Nodes = append(snap.Nodes, jsonfile.NodeRecord{
					ID:   id,
					Type: "Symptom",
					Name: key,
				})
			}
			snap.Relationships = append(snap.Relationships, jsonfile.RelationshipRecord{
				Source: diseaseID, Target: id, Type: "HAS_SYMPTOM",
			})
		}

		if row.Treatment != "" {
			solutionID := fmt.Sprintf("solution_%d", i+1)
			snap.Nodes = append(snap.Nodes, jsonfile.NodeRecord{
				ID:    solutionID,
				Type:  "Solution",
				Name:  row.Name + " Treatment",
				Extra: map[string]string{"treatment": row.Treatment},
			})
			snap.Relationships = append(snap.Relationships, jsonfile.RelationshipRecord{
				Source: diseaseID, Target: solutionID, Type: "HAS_SOLUTION",
			})
		}
	}

	return snap
}
