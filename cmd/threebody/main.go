package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/threebody/internal/analysis"
	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/experiment"
	"github.com/san-kum/threebody/internal/export"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/render"
	"github.com/san-kum/threebody/internal/storage"
	"github.com/san-kum/threebody/internal/trajectory"
	"github.com/san-kum/threebody/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string
	steps      int
	dt         float64
	stride     int
	integrator string
	output     string
	fps        int
	maxFrames  int
	noRender   bool
	save       bool
	pipeline   bool
	buffer     int

	replayFPS    int
	plotWidth    int
	plotHeight   int
	svgWidth     int
	svgHeight    int
	benchPreset  string
	benchSteps   int
	perturbation float64
)

// main registers the commands and flags and executes the root command.
// It exits with status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "threebody",
		Short:         "gravitational three-body simulator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".threebody", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate and render the trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&output, "output", config.DefaultOutput, "output gif path")
	runCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	runCmd.Flags().IntVar(&maxFrames, "max-frames", config.DefaultMaxFrames, "frame cap (0 = one frame per retained step)")
	runCmd.Flags().BoolVar(&noRender, "no-render", false, "skip gif rendering")
	runCmd.Flags().BoolVar(&save, "save", false, "save the trajectory to the data directory")
	runCmd.Flags().BoolVar(&pipeline, "pipeline", false, "render while simulating (no --save)")
	runCmd.Flags().IntVar(&buffer, "buffer", 256, "pipeline buffer in steps")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body positions and energy of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "chart width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "chart height")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "play a saved run back in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().IntVar(&replayFPS, "fps", 30, "playback frame rate")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run steps to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and steps to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export body paths of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")

	chaosCmd := &cobra.Command{
		Use:   "chaos",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.NoArgs,
		RunE:  estimateChaos,
	}
	addSimFlags(chaosCmd)
	chaosCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-9, "initial displacement of body 0")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the integrators",
		Args:  cobra.NoArgs,
		RunE:  benchIntegrators,
	}
	benchCmd.Flags().StringVar(&benchPreset, "preset", config.DefaultPreset, "preset to benchmark")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 100_000, "steps per run")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same configuration",
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, replayCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd, compareCmd, chaosCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.ErrorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&steps, "steps", dynamo.DefaultSteps, "integration steps")
	cmd.Flags().Float64Var(&dt, "dt", dynamo.DefaultDt, "timestep in seconds")
	cmd.Flags().IntVar(&stride, "stride", config.DefaultStride, "keep every n-th step")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (symplectic, euler, verlet, leapfrog, rk4)")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig applies, in order: preset, config file, explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("stride") {
		cfg.Stride = stride
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		cfg.Render.Output = output
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.Render.FPS = fps
	}
	if flags.Lookup("max-frames") != nil && flags.Changed("max-frames") {
		cfg.Render.MaxFrames = maxFrames
	}

	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	if pipeline && save {
		return fmt.Errorf("--pipeline streams steps to the renderer and cannot be combined with --save")
	}
	if pipeline && noRender {
		return fmt.Errorf("--pipeline needs rendering enabled")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	exp, err := experiment.New(cfg, experiment.NewRegistry(), newLogger())
	if err != nil {
		return err
	}

	var gifRenderer *render.GIF
	if !noRender {
		opts, err := exp.RenderOptions()
		if err != nil {
			return err
		}
		if gifRenderer, err = render.NewGIF(opts); err != nil {
			return err
		}
	}

	fmt.Printf("running %s: %d bodies, %d steps of %gs...\n", cfg.Preset, len(cfg.Bodies), cfg.Steps, cfg.Dt)
	start := time.Now()

	var (
		result *dynamo.Result
		traj   *trajectory.Store
		runID  string
	)

	if pipeline {
		result, err = exp.RunPipelined(ctx, gifRenderer, buffer)
		if err != nil {
			return err
		}
	} else {
		result, traj, err = exp.Run(ctx)
		if err != nil {
			return err
		}
		if gifRenderer != nil {
			if err := gifRenderer.Render(ctx, traj.All()); err != nil {
				return err
			}
		}
		if save {
			st := storage.New(dataDir)
			if err := st.Init(); err != nil {
				return err
			}
			runID, err = st.Save(storage.RunMetadata{
				Preset:     cfg.Preset,
				Dt:         cfg.Dt,
				Steps:      uint32(cfg.Steps),
				StepsTaken: result.StepsTaken,
				Stride:     cfg.Stride,
				G:          cfg.G,
				Integrator: cfg.Integrator,
				Masses:     cfg.Masses(),
				Metrics:    result.Metrics,
			}, traj)
			if err != nil {
				return err
			}
		}
	}

	rows := []string{
		viz.Row("elapsed", time.Since(start).Round(time.Millisecond)),
		viz.Row("steps", result.StepsTaken),
		viz.Row("simulated time", fmt.Sprintf("%gs", result.Final.Time)),
		viz.Row("energy drift", fmt.Sprintf("%.3e", result.EnergyDrift)),
	}
	if traj != nil {
		rows = append(rows, viz.Row("retained", traj.Len()))
	}
	if gifRenderer != nil {
		rows = append(rows, viz.Row("output", cfg.Render.Output))
	}
	if runID != "" {
		rows = append(rows, viz.Row("run id", runID))
	}
	for _, name := range sortedKeys(result.Metrics) {
		rows = append(rows, viz.Row(name, fmt.Sprintf("%.6g", result.Metrics[name])))
	}
	fmt.Println(viz.Summary("run complete", rows))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSTEPS\tDT\tSTRIDE\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%gs\t%d\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.StepsTaken,
			run.Dt,
			run.Stride,
			run.Integrator,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *trajectory.Store, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if traj.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no steps", runID)
	}
	return meta, traj, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d (stride %d)\n\n", traj.Len(), meta.Stride)

	fmt.Println(viz.PlotBodies(traj, 0, plotWidth, plotHeight))
	fmt.Println()
	fmt.Println(viz.PlotBodies(traj, 1, plotWidth, plotHeight))
	fmt.Println()
	if chart := viz.PlotEnergy(traj, physics.NewGravity(meta.G), plotWidth, plotHeight); chart != "" {
		fmt.Println(chart)
	}
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	energies := viz.Energies(traj, physics.NewGravity(meta.G))
	m := viz.NewReplay(meta.Preset, traj, energies, replayFPS)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, traj)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, traj)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return export.TrajectorySVG(os.Stdout, traj, nil, svgWidth, svgHeight)
}

func estimateChaos(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	bodies, err := cfg.InitialBodies()
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	if _, err := registry.GetIntegrator(cfg.Integrator); err != nil {
		return err
	}
	newInteg := func() dynamo.Integrator {
		integ, _ := registry.GetIntegrator(cfg.Integrator)
		return integ
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	lambda, err := analysis.LyapunovExponent(ctx, cfg.Gravity(), newInteg, bodies, cfg.SimConfig(), perturbation)
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary("lyapunov estimate", []string{
		viz.Row("preset", cfg.Preset),
		viz.Row("integrator", cfg.Integrator),
		viz.Row("steps", cfg.Steps),
		viz.Row("exponent", fmt.Sprintf("%.6g /s", lambda)),
		viz.Row("elapsed", time.Since(start).Round(time.Millisecond)),
	}))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODIES\tSTEPS\tDT\tG")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%g\n", name, len(cfg.Bodies), cfg.Steps, cfg.Dt, cfg.G)
	}
	return w.Flush()
}

func benchIntegrators(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(benchPreset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", benchPreset, config.ListPresets())
	}
	cfg.Steps = benchSteps

	registry := experiment.NewRegistry()
	bodies, err := cfg.InitialBodies()
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s (%d bodies)\n\n", cfg.Preset, len(bodies))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tTIME\tSTEPS/SEC")

	for _, name := range registry.Integrators() {
		integ, err := registry.GetIntegrator(name)
		if err != nil {
			return err
		}
		sim := dynamo.New(cfg.Gravity(), integ)

		start := time.Now()
		result, err := sim.Run(context.Background(), bodies, cfg.SimConfig(), nil)
		if err != nil && !errors.Is(err, dynamo.ErrDegenerateConfiguration) {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\n", name, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
	}

	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = registry.Integrators()
	}

	ctx, stop := signalContext()
	defer stop()

	results, err := experiment.Compare(ctx, cfg, registry, names)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (dt=%g, steps=%d)\n\n", cfg.Preset, cfg.Dt, cfg.Steps)
	fmt.Printf("%-12s  %-12s  %-14s  %-10s  %-12s\n", "integrator", "energy_drift", "momentum_drift", "steps", "time_ms")
	fmt.Println(strings.Repeat("-", 68))

	for _, c := range results {
		if c.Err != nil {
			fmt.Printf("%-12s  error: %v\n", c.Integrator, c.Err)
			continue
		}
		fmt.Printf("%-12s  %12.3e  %14.3e  %10d  %12.2f\n", c.Integrator, c.EnergyDrift, c.MomentumDrift, c.StepsTaken, float64(c.Elapsed.Microseconds())/1000)
	}

	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
