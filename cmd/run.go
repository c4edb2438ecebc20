package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/beka-birhanu/vinom-evolve/config"
	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/beka-birhanu/vinom-evolve/grid"
	logger "github.com/beka-birhanu/vinom-evolve/infrastruture/log"
	"github.com/beka-birhanu/vinom-evolve/report"
	"github.com/beka-birhanu/vinom-evolve/service"
	"github.com/spf13/cobra"
)

const (
	cellPixels    = 10
	ticksPerFrame = 100
)

var (
	runRows        int
	runCols        int
	runPopulation  int
	runMutation    float64
	runGenerations int
	runMaxTicks    int
	runSeed        int64
	runPlot        string
	runShowMaze    bool
	runStopOnSolve bool
	runQuiet       bool
)

// runCmd evolves a population without any server or renderer.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evolve a population headlessly and print a summary",
	Long: `Run a simulation in the terminal until the requested number of generations
has been scored, the tick budget is spent, or (with --stop-on-solve) the maze
is solved. Optionally draws the fitness history to a PNG file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHeadless(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runRows, "rows", "r", 21, "maze rows")
	runCmd.Flags().IntVarP(&runCols, "cols", "c", 31, "maze columns")
	runCmd.Flags().IntVarP(&runPopulation, "population", "p", 100, "agents per generation")
	runCmd.Flags().Float64VarP(&runMutation, "mutation", "m", grid.DefaultMutationRate, "per-gene mutation probability")
	runCmd.Flags().IntVarP(&runGenerations, "generations", "g", 20, "scored generations to run")
	runCmd.Flags().IntVar(&runMaxTicks, "max-ticks", service.DefaultSkipTickCap, "tick budget")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed, 0 for a time based seed")
	runCmd.Flags().StringVar(&runPlot, "plot", "", "write the fitness history to this PNG file")
	runCmd.Flags().BoolVar(&runShowMaze, "show-maze", false, "print the maze before running")
	runCmd.Flags().BoolVar(&runStopOnSolve, "stop-on-solve", false, "stop as soon as an agent reaches the exit")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not log every generation")
}

func runHeadless(out io.Writer) error {
	logOut := io.Writer(os.Stderr)
	if runQuiet {
		logOut = io.Discard
	}
	simLogger, err := logger.New("RUN", config.ColorCyan, logOut)
	if err != nil {
		return err
	}

	sim, err := service.NewSimulation(service.SimulationConfig{
		Rows:         runRows,
		Cols:         runCols,
		Width:        float64(runCols * cellPixels),
		Height:       float64(runRows * cellPixels),
		Population:   runPopulation,
		MutationRate: runMutation,
		Speed:        ticksPerFrame,
		Seed:         runSeed,
	}, &service.Options{Logger: simLogger})
	if err != nil {
		return err
	}

	if runShowMaze {
		fmt.Fprint(out, sim.MazeText())
	}

	history, ticks := evolve(sim)
	printSummary(out, sim, history, ticks)

	if runPlot != "" {
		if err := report.SavePNG(history, fmt.Sprintf("%dx%d maze", runRows, runCols), runPlot); err != nil {
			if errors.Is(err, report.ErrNoHistory) {
				return fmt.Errorf("nothing to plot: no generation finished within %d ticks", ticks)
			}
			return err
		}
		fmt.Fprintf(out, "fitness plot written to %s\n", runPlot)
	}
	return nil
}

// evolve advances sim frame by frame until one of the stop conditions holds.
func evolve(sim *service.Simulation) ([]evolution.GenerationStats, int) {
	ticks := 0
	history := sim.History()
	for ticks < runMaxTicks && len(history) < runGenerations {
		if runStopOnSolve && sim.Solved() {
			break
		}
		sim.Frame()
		ticks += ticksPerFrame
		history = sim.History()
	}
	return history, ticks
}

func printSummary(out io.Writer, sim *service.Simulation, history []evolution.GenerationStats, ticks int) {
	frame := sim.Snapshot()
	fmt.Fprintf(out, "%s%-12s%s %s\n", config.ColorBlue, "simulation", config.ColorReset, sim.ID())
	fmt.Fprintf(out, "%s%-12s%s %d\n", config.ColorBlue, "ticks", config.ColorReset, ticks)
	fmt.Fprintf(out, "%s%-12s%s %d\n", config.ColorBlue, "generations", config.ColorReset, len(history))
	if frame.SolvedAt > 0 {
		fmt.Fprintf(out, "%s%-12s%s generation %d\n", config.ColorGreen, "solved", config.ColorReset, frame.SolvedAt)
	} else {
		fmt.Fprintf(out, "%s%-12s%s no\n", config.ColorMagenta, "solved", config.ColorReset)
	}

	if len(history) == 0 {
		return
	}
	best := history[0]
	for _, s := range history[1:] {
		if s.BestDistance < best.BestDistance {
			best = s
		}
	}
	last := history[len(history)-1]
	fmt.Fprintf(out, "%s%-12s%s %.3f (generation %d)\n", config.ColorBlue, "closest", config.ColorReset, best.BestDistance, best.Generation)
	fmt.Fprintf(out, "%s%-12s%s avg fitness %.4f, arrived %d/%d\n", config.ColorBlue, "last", config.ColorReset, last.AverageFitness, last.Arrived, last.Size)
}
