package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/nkale/blockpi/internal/config"
	"github.com/nkale/blockpi/internal/engine"
	"github.com/nkale/blockpi/internal/exact"
	"github.com/nkale/blockpi/internal/metrics"
	"github.com/nkale/blockpi/internal/report"
	"github.com/nkale/blockpi/internal/storage"
	"github.com/nkale/blockpi/internal/viz"
)

var (
	dataDir string

	m1, m2     float64
	x1, x2     float64
	v1, v2     float64
	l1, l2     float64
	wallPos    float64
	maxEvents  int
	tolerance  float64
	exactMode  bool
	configFile string
	preset     string

	digits    int
	frameRate int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "blockpi",
		Short: "elastic collision lab: two blocks, one wall, digits of pi",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".blockpi", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save the event sequence",
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "count collisions at mass ratio 100^n with exact arithmetic",
		RunE:  countCollisions,
	}
	countCmd.Flags().IntVar(&digits, "n", 2, "mass ratio exponent (m2/m1 = 100^n)")
	countCmd.Flags().IntVar(&maxEvents, "max-events", 0, "event safety bound (0 = derived from n)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot velocities over the event sequence",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's events to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation and replay it in the terminal",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-8s m2/m1=%g\n", name, cfg.Block2.Mass/cfg.Block1.Mass)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, countCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&m1, "m1", config.DefaultMass1, "mass of block 1 (kg)")
	cmd.Flags().Float64Var(&m2, "m2", config.DefaultMass2, "mass of block 2 (kg)")
	cmd.Flags().Float64Var(&x1, "x1", config.DefaultPos1, "initial position of block 1 (m)")
	cmd.Flags().Float64Var(&x2, "x2", config.DefaultPos2, "initial position of block 2 (m)")
	cmd.Flags().Float64Var(&v1, "v1", config.DefaultVel1, "initial velocity of block 1 (m/s)")
	cmd.Flags().Float64Var(&v2, "v2", config.DefaultVel2, "initial velocity of block 2 (m/s)")
	cmd.Flags().Float64Var(&l1, "l1", config.DefaultLength, "length of block 1 (m)")
	cmd.Flags().Float64Var(&l2, "l2", config.DefaultLength, "length of block 2 (m)")
	cmd.Flags().Float64Var(&wallPos, "wall", config.DefaultWall, "wall position (m)")
	cmd.Flags().IntVar(&maxEvents, "max-events", config.DefaultMaxEvents, "event safety bound")
	cmd.Flags().Float64Var(&tolerance, "tolerance", config.DefaultTolerance, "geometric tolerance")
	cmd.Flags().BoolVar(&exactMode, "exact", false, "use arbitrary-precision arithmetic")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
}

// buildConfig resolves precedence: preset, then config file, then any flag
// the user set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("m1") {
		cfg.Block1.Mass = m1
	}
	if flags.Changed("m2") {
		cfg.Block2.Mass = m2
	}
	if flags.Changed("x1") {
		cfg.Block1.Pos = x1
	}
	if flags.Changed("x2") {
		cfg.Block2.Pos = x2
	}
	if flags.Changed("v1") {
		cfg.Block1.Vel = v1
	}
	if flags.Changed("v2") {
		cfg.Block2.Vel = v2
	}
	if flags.Changed("l1") {
		cfg.Block1.Length = l1
	}
	if flags.Changed("l2") {
		cfg.Block2.Length = l2
	}
	if flags.Changed("wall") {
		cfg.Wall = wallPos
	}
	if flags.Changed("max-events") {
		cfg.MaxEvents = maxEvents
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("exact") {
		cfg.Exact = exactMode
	}

	return cfg, nil
}

// runScenario executes the configured scenario on whichever arithmetic the
// config selects. The returned result may be partial when err is non-nil.
func runScenario(ctx context.Context, cfg *config.Config) (*engine.Result, error) {
	b1, b2, wall := cfg.Bodies()

	if cfg.Exact {
		sys, err := exact.New(b1, b2, wall, cfg.MaxEvents)
		if err != nil {
			return nil, err
		}
		return sys.Run(ctx)
	}

	e, err := engine.New(b1, b2, wall, cfg.EngineConfig())
	if err != nil {
		return nil, err
	}
	e.AddMetric(metrics.NewKineticEnergyDrift(b1, b2))
	e.AddMetric(metrics.NewMomentumDrift(b1, b2))
	e.AddMetric(metrics.NewMinInterval())
	return e.Run(ctx)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s scenario...\n", cfg.Scenario)
	start := time.Now()
	res, runErr := runScenario(cmd.Context(), cfg)
	elapsed := time.Since(start)

	if runErr != nil && res == nil {
		return runErr
	}

	b1, b2, _ := cfg.Bodies()
	runID, err := st.Save(cfg.Scenario, b1, b2, cfg.MaxEvents, cfg.Exact, res)
	if err != nil {
		return err
	}

	if runErr != nil {
		// The partial sequence is already on disk for diagnostics.
		fmt.Printf("partial run saved as %s (%d events)\n", runID, len(res.Events))
		return runErr
	}

	fmt.Printf("run id: %s\n\n", runID)
	fmt.Print(report.Render(res, elapsed))

	if len(res.Metrics) > 0 {
		fmt.Println("\nMetrics:")
		names := make([]string, 0, len(res.Metrics))
		for name := range res.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  - %-15s: %s\n", name, report.FormatScientific(res.Metrics[name], true))
		}
	}

	return nil
}

func countCollisions(cmd *cobra.Command, args []string) error {
	if digits < 0 {
		return fmt.Errorf("n must be non-negative, got %d", digits)
	}

	bound := maxEvents
	if bound <= 0 {
		// pi*10^n events, rounded up with headroom.
		bound = int(4 * math.Pow(10, float64(digits)))
	}

	b1 := engine.Block{Mass: 1, Pos: 2, Vel: 0}
	b2 := engine.Block{Mass: math.Pow(100, float64(digits)), Pos: 3, Vel: -1}

	sys, err := exact.New(b1, b2, engine.Wall{Pos: 0}, bound)
	if err != nil {
		return err
	}

	fmt.Printf("counting collisions at mass ratio 100^%d...\n", digits)
	start := time.Now()
	n, err := sys.RunCount(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("collisions: %s (%v)\n", report.GroupInt(n), time.Since(start))
	s := strconv.Itoa(n)
	fmt.Printf("pi is approximately %s.%s\n", s[:1], s[1:])
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tRATIO\tCOLLISIONS\tEXACT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%v\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Block2.Mass/run.Block1.Mass,
			run.Collisions,
			run.Exact,
		)
	}

	return w.Flush()
}

// downsample thins a series to at most max points so deep runs still fit a
// terminal-width plot.
func downsample(data []float64, max int) []float64 {
	if len(data) <= max {
		return data
	}
	out := make([]float64, 0, max)
	step := float64(len(data)) / float64(max)
	for i := 0; i < max; i++ {
		out = append(out, data[int(float64(i)*step)])
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no events to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("events: %d\n\n", len(events))

	series := []struct {
		caption string
		pick    func(ev engine.Event) float64
	}{
		{"v1 (block 1 velocity, per event)", func(ev engine.Event) float64 { return ev.V1 }},
		{"v2 (block 2 velocity, per event)", func(ev engine.Event) float64 { return ev.V2 }},
		{"x1 (block 1 position, per event)", func(ev engine.Event) float64 { return ev.X1 }},
	}

	for _, s := range series {
		data := make([]float64, len(events))
		for i, ev := range events {
			data[i] = s.pick(ev)
		}

		graph := asciigraph.Plot(downsample(data, 160),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, events)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no events to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"index", "time", "kind", "x1", "v1", "x2", "v2"}); err != nil {
		return err
	}
	for _, ev := range events {
		row := []string{
			strconv.Itoa(ev.Index),
			strconv.FormatFloat(ev.Time, 'f', 9, 64),
			ev.Kind.String(),
			strconv.FormatFloat(ev.X1, 'f', 9, 64),
			strconv.FormatFloat(ev.V1, 'f', 9, 64),
			strconv.FormatFloat(ev.X2, 'f', 9, 64),
			strconv.FormatFloat(ev.V2, 'f', 9, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	res, err := runScenario(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	b1, b2, wall := cfg.Bodies()
	return viz.Run(b1, b2, wall, res, frameRate)
}
