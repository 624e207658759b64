package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/switchlight/internal/light"
	"github.com/smazurov/switchlight/internal/logging"
	"github.com/smazurov/switchlight/internal/script"
)

// simulation summarizes a simulated run.
type simulation struct {
	Ticks       uint64
	GreenEdges  int
	OrangeEdges int
	Dropped     int
	Final       light.State
	GreenLevel  bool
	OrangeLevel bool
}

// CreateSimulateCmd creates the simulate command.
func CreateSimulateCmd() *cobra.Command {
	var periodMs int
	var capacity int
	var passes int
	var tailMs uint32
	var verbose bool

	cmd := &cobra.Command{
		Use:   "simulate [script]",
		Short: "Run a light script against in-memory lines",
		Long: `Plays a light script on a controller with in-memory output lines, stepping the ` +
			`logical clock instead of sleeping, and prints every line edge and state change.`,
		Args: cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.Initialize(logging.Config{Level: level, Format: "text", Output: c.ErrOrStderr()})
			logger := logging.GetLogger("script")

			s, err := script.Load(args[0])
			if err != nil {
				logger.Error("Failed to load script", "error", err)
				os.Exit(1)
			}

			cfg := light.DefaultConfig()
			cfg.Period = time.Duration(periodMs) * time.Millisecond
			cfg.InboxCapacity = capacity
			cfg.PrintDebug = verbose

			result, err := simulate(c.OutOrStdout(), s, cfg, passes, tailMs)
			if err != nil {
				logger.Error("Simulation failed", "error", err)
				os.Exit(1)
			}
			elapsed := light.NewClock(cfg.Period).Elapsed(light.Tick(result.Ticks))
			fmt.Fprintf(c.OutOrStdout(), "%d cycles (%s), green edges %d, orange edges %d, dropped %d, final state %s\n",
				result.Ticks, elapsed, result.GreenEdges, result.OrangeEdges, result.Dropped, result.Final)
		},
	}

	cmd.Flags().IntVar(&periodMs, "period-ms", 10, "Execution cycle period in milliseconds")
	cmd.Flags().IntVar(&capacity, "inbox-capacity", 10, "Inbox capacity")
	cmd.Flags().IntVar(&passes, "passes", 1, "Passes to run for looping scripts")
	cmd.Flags().Uint32Var(&tailMs, "tail-ms", 0, "Extra time to simulate after the script ends")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log controller diagnostics to stderr")
	return cmd
}

// simulate steps a controller through the script on the logical clock. A cue
// is submitted before the cycle that contains its offset.
func simulate(w io.Writer, s script.Script, cfg light.Config, passes int, tailMs uint32) (simulation, error) {
	cues, err := s.Cues()
	if err != nil {
		return simulation{}, err
	}
	if passes < 1 || s.LoopMs == 0 {
		passes = 1
	}

	cfg.TaskEnabled = false
	out, green, orange := light.NewMemoryOutputs()
	ctrl, err := light.New(cfg, out, &light.Options{Logger: logging.GetLogger("light")})
	if err != nil {
		return simulation{}, err
	}

	periodMs := uint64(cfg.Period.Milliseconds())
	passTicks := uint64(s.LengthMs()) / periodMs
	if s.LoopMs != 0 {
		passTicks = uint64(s.LoopMs) / periodMs
	}
	total := passTicks*uint64(passes) + uint64(tailMs)/periodMs + 1

	type scheduled struct {
		tick uint64
		cmd  light.Command
	}
	var schedule []scheduled
	for p := 0; p < passes; p++ {
		for _, cue := range cues {
			schedule = append(schedule, scheduled{
				tick: uint64(p)*passTicks + uint64(cue.AtMs)/periodMs,
				cmd:  cue.Command,
			})
		}
	}

	var result simulation
	next := 0
	prevGreen, prevOrange := green.Level(), orange.Level()
	prevState := ctrl.Display().Current

	for tick := uint64(0); tick < total; tick++ {
		for next < len(schedule) && schedule[next].tick <= tick {
			cmd := schedule[next].cmd
			if !ctrl.SubmitCommand(cmd) {
				result.Dropped++
				fmt.Fprintf(w, "%8dms  dropped  %s\n", tick*periodMs, cmd.Kind)
			}
			next++
		}

		ctrl.Step()

		at := tick * periodMs
		if d := ctrl.Display(); d.Current != prevState {
			fmt.Fprintf(w, "%8dms  state    %s -> %s\n", at, prevState, d.Current)
			prevState = d.Current
		}
		if level := green.Level(); level != prevGreen {
			fmt.Fprintf(w, "%8dms  green    %s\n", at, levelName(level))
			prevGreen = level
		}
		if level := orange.Level(); level != prevOrange {
			fmt.Fprintf(w, "%8dms  orange   %s\n", at, levelName(level))
			prevOrange = level
		}
	}

	result.Ticks = uint64(ctrl.Now())
	result.GreenEdges = green.Edges()
	result.OrangeEdges = orange.Edges()
	result.Final = ctrl.Display().Current
	result.GreenLevel = green.Level()
	result.OrangeLevel = orange.Level()
	return result, nil
}

func levelName(level bool) string {
	if level {
		return "high"
	}
	return "low"
}
