// Command analyze prints quick, human-readable heuristics about the world
// configurations in a configs directory. For each world it samples the
// square region around the start cell and reports how many caches spawn,
// how many coins they hold, and whether the start neighborhood has anything
// to collect.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/geocoin-game/game/config"
	"github.com/wricardo/geocoin-game/game/engine"
)

// Report summarizes one world over a sampled region
type Report struct {
	ConfigID   string
	Name       string
	Start      engine.GridCell
	Radius     int
	Configured float64 // configured spawn probability

	Cells       int
	Caches      int
	EmptyCaches int
	Coins       int
	MaxCoins    int

	// within NeighborhoodSize of the start cell
	StartCaches int
	StartCoins  int
}

// SpawnRate is the observed fraction of cells holding a cache
func (r Report) SpawnRate() float64 {
	if r.Cells == 0 {
		return 0
	}
	return float64(r.Caches) / float64(r.Cells)
}

// MeanCoins is the average coin count per cache
func (r Report) MeanCoins() float64 {
	if r.Caches == 0 {
		return 0
	}
	return float64(r.Coins) / float64(r.Caches)
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Report cache density and coin totals per world configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing world configurations"},
			&cli.IntFlag{Name: "radius", Value: 50, Usage: "Cells sampled around the start cell in each direction"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(os.Stdout, cmd.String("config-dir"), cmd.Int("radius"), cmd.Args().Slice())
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// run analyzes the named worlds, or every world in dir when none are named
func run(w io.Writer, dir string, radius int, names []string) error {
	if radius < 0 {
		return fmt.Errorf("invalid radius %d", radius)
	}

	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			names = append(names, info.ConfigID)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no world configurations in %s", dir)
	}

	for _, name := range names {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", name)
		cfg, err := manager.LoadConfig(name)
		if err != nil {
			fmt.Fprintf(w, "Error loading config: %v\n", err)
			continue
		}
		printReport(w, analyzeConfig(name, cfg, radius))
	}
	return nil
}

// analyzeConfig samples the square of the given radius around cfg's start cell
func analyzeConfig(configID string, cfg *engine.GameConfig, radius int) Report {
	grid := engine.NewGrid(cfg.TileDegrees)
	luck := engine.NewLuckFromConfig(cfg)
	start := grid.ToCell(cfg.Start.Lat, cfg.Start.Lng)

	r := Report{
		ConfigID:   configID,
		Name:       cfg.Name,
		Start:      start,
		Radius:     radius,
		Configured: luck.SpawnProbability(),
	}

	for _, cell := range grid.Neighborhood(start, radius) {
		r.Cells++
		if !luck.SpawnDecision(cell.I, cell.J) {
			continue
		}
		coins := luck.InitialCoinCount(cell.I, cell.J)
		r.Caches++
		r.Coins += coins
		if coins == 0 {
			r.EmptyCaches++
		}
		if coins > r.MaxCoins {
			r.MaxCoins = coins
		}
		if engine.ChebyshevDistance(cell, start) <= cfg.NeighborhoodSize {
			r.StartCaches++
			r.StartCoins += coins
		}
	}
	return r
}

func printReport(w io.Writer, r Report) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Start Cell: %s\n", r.Start.Key())
	fmt.Fprintf(w, "Sampled Cells: %d (radius %d)\n", r.Cells, r.Radius)
	fmt.Fprintf(w, "Caches: %d (spawn rate %.3f, configured %.3f)\n", r.Caches, r.SpawnRate(), r.Configured)
	fmt.Fprintf(w, "Coins: %d (mean %.2f per cache, max %d, %d empty caches)\n", r.Coins, r.MeanCoins(), r.MaxCoins, r.EmptyCaches)
	fmt.Fprintf(w, "Start Neighborhood: %d caches, %d coins\n", r.StartCaches, r.StartCoins)

	if r.StartCoins == 0 {
		fmt.Fprintf(w, "⚠️  WARNING: nothing to collect within reach of the start cell\n")
	} else {
		fmt.Fprintf(w, "✅ Coins available within reach of the start cell\n")
	}
}
