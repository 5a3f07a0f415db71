package main

import (
	"flag"
	"fmt"
	"os"

	"sprint-health/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", engine.ScenarioSteady, "Scenario to generate: steady, crunch, churn")
	outDir := flag.String("out", "./data", "Output directory for the CSV exports")
	sprints := flag.Int("sprints", 4, "Number of sprints to generate")
	tasks := flag.Int("tasks", 30, "Number of tasks per sprint")
	seed := flag.Int64("seed", 42, "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:       *scenario,
		Sprints:        *sprints,
		TasksPerSprint: *tasks,
		Seed:           *seed,
	}

	fmt.Printf("Generating scenario '%s' (Sprints: %d, Tasks per sprint: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Sprints, cfg.TasksPerSprint, cfg.Seed, *outDir)

	ds := engine.Generate(cfg)
	if err := engine.Save(*outDir, ds, ';'); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
