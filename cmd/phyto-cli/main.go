package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/verdantlab/phyto/internal/llm"
	"github.com/verdantlab/phyto/pkg/phyto"
	"github.com/verdantlab/phyto/pkg/phyto/config"
	"github.com/verdantlab/phyto/pkg/phyto/graph"
	"github.com/verdantlab/phyto/pkg/phyto/graph/jsonfile"
	"github.com/verdantlab/phyto/pkg/phyto/graph/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config YAML (required)")
		input      = flag.String("input", "", "One-shot symptom report (non-interactive mode)")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config required")
	}

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	store, cleanup, err := openStore(ctx, conf.Graph)
	if err != nil {
		log.Fatalf("open graph: %v", err)
	}
	defer cleanup()

	opts := phyto.Options{
		Store:      store,
		Matcher:    conf.Matcher.BuildMatcher(),
		Thresholds: conf.Thresholds.BuildThresholds(),
	}

	if conf.LLM.BaseURL != "" && conf.LLM.Model != "" {
		client := &llm.Client{BaseURL: conf.LLM.BaseURL, Model: conf.LLM.Model}
		ok, message := client.HealthCheck(ctx)
		fmt.Println("Generator status:", message)
		if ok {
			opts.Generator = client
		}
	}

	engine := phyto.New(opts)

	schema := store.Schema()
	fmt.Printf("Graph loaded: %d node kinds, %d relationship kinds\n",
		len(schema.NodeKinds), len(schema.RelationshipKinds))
	for i, kc := range schema.Counts {
		if i >= 3 {
			break
		}
		fmt.Printf("   - %s: %d nodes\n", kc.Kind, kc.Count)
	}

	// One-shot mode
	if *input != "" {
		fmt.Println(engine.ProcessTurn(ctx, *input))
		return
	}

	fmt.Println("===========================================")
	fmt.Println("  Plant Disease Diagnostic Assistant")
	fmt.Println("  The knowledge graph drives the questions")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Describe a symptom. Commands: summary, state, reset, quit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit":
			fmt.Println("Goodbye!")
			return
		case "summary":
			fmt.Println()
			fmt.Println(engine.Summary(ctx))
		case "state":
			printState(engine.CurrentState())
		case "reset":
			engine.Reset()
			fmt.Println("Conversation reset.")
		default:
			fmt.Println()
			fmt.Println(engine.ProcessTurn(ctx, line))
		}
		fmt.Println()
	}
}

func openStore(ctx context.Context, conf config.GraphConfig) (*graph.Store, func(), error) {
	switch conf.Driver {
	case "", "json":
		store, err := jsonfile.Load(conf.Path)
		return store, func() {}, err
	case "sqlite":
		db, err := sqlite.Open(ctx, conf.Path)
		if err != nil {
			return nil, nil, err
		}
		store, err := db.LoadStore(ctx)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown graph driver %q", conf.Driver)
	}
}

func printState(state phyto.State) {
	fmt.Println("\nCurrent diagnostic state:")
	fmt.Printf("  Phase:     %s (turn %d)\n", state.Phase, state.Turn)
	fmt.Printf("  Confirmed: %s\n", listOrNone(state.Confirmed))
	fmt.Printf("  Ruled out: %s\n", listOrNone(state.RuledOut))
	fmt.Printf("  Asked:     %s\n", listOrNone(state.Asked))
	fmt.Printf("  Diseases:  %d possible\n", len(state.Candidates))
	for i, c := range state.Candidates {
		if i >= 3 {
			break
		}
		fmt.Printf("    - %s (%.1f%% match)\n", c.Name, c.MatchPercentage*100)
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
