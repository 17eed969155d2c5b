package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/plasmalab/dhyb/internal/catalog"
	"github.com/plasmalab/dhyb/internal/config"
	"github.com/plasmalab/dhyb/internal/container"
	"github.com/plasmalab/dhyb/internal/dataset"
	"github.com/plasmalab/dhyb/internal/export"
	"github.com/plasmalab/dhyb/internal/inputdeck"
	"github.com/plasmalab/dhyb/internal/viz"
)

var (
	inputFile   string
	outputPath  string
	lazy        bool
	includeZero bool
	workers     int
	configFile  string
	// Plot options
	origin     string
	species    string
	sliceAxis  string
	sliceIndex int
	plotWidth  int
	plotHeight int
	// Steps options
	allSteps bool
	// Export options
	exportFormat string
	exportPath   string
)

// main is the entry point for the dhyb CLI; it registers commands and flags
// and executes the root command. It exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "dhyb",
		Short: "dHybridR output browser",
		Long:  "dhyb indexes a dHybridR output tree and resolves fields, phase-space histograms, and raw particle dumps by timestep, origin, and species.",
	}

	rootCmd.PersistentFlags().StringVar(&inputFile, "input", config.DefaultInputFile, "simulation input deck")
	rootCmd.PersistentFlags().StringVar(&outputPath, "output", config.DefaultOutputPath, "output directory root")
	rootCmd.PersistentFlags().BoolVar(&lazy, "lazy", false, "defer dataset loads until forced")
	rootCmd.PersistentFlags().BoolVar(&includeZero, "include-zero", false, "include timestep 0 in enumerations")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", config.DefaultWorkers, "traversal worker count")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml, default .dhyb.yaml)")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "catalog summary",
		RunE:  runInfo,
	}

	stepsCmd := &cobra.Command{
		Use:   "steps",
		Short: "list timesteps",
		RunE:  runSteps,
	}
	stepsCmd.Flags().BoolVar(&allSteps, "all", false, "include timestep 0")

	lsCmd := &cobra.Command{
		Use:   "ls [timestep]",
		Short: "list datasets at a timestep",
		Args:  cobra.ExactArgs(1),
		RunE:  runLs,
	}

	inputsCmd := &cobra.Command{
		Use:   "inputs [section]",
		Short: "show the parsed input deck",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInputs,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [timestep] [name]",
		Short: "plot a 1-D cut of a dataset",
		Args:  cobra.ExactArgs(2),
		RunE:  runPlot,
	}
	plotCmd.Flags().StringVar(&origin, "origin", "", "field origin (Total, External, Self)")
	plotCmd.Flags().StringVar(&species, "species", "", "phase species index or Total")
	plotCmd.Flags().StringVar(&sliceAxis, "slice-axis", config.DefaultSliceAxis, "axis the cut runs along (x, y, z)")
	plotCmd.Flags().IntVar(&sliceIndex, "slice-index", 0, "index fixed on the other axes")
	plotCmd.Flags().IntVar(&plotWidth, "width", config.DefaultPlotWidth, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", config.DefaultPlotHeight, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [timestep] [name]",
		Short: "export a dataset as JSON or CSV",
		Args:  cobra.ExactArgs(2),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&origin, "origin", "", "field origin (Total, External, Self)")
	exportCmd.Flags().StringVar(&species, "species", "", "phase species index or Total")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json, csv)")
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&sliceAxis, "slice-axis", config.DefaultSliceAxis, "axis a csv cut runs along (x, y, z)")
	exportCmd.Flags().IntVar(&sliceIndex, "slice-index", 0, "index fixed on the other axes for csv cuts")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "interactive catalog browser",
		RunE:  runBrowse,
	}

	diagCmd := &cobra.Command{
		Use:   "diag",
		Short: "show traversal diagnostics",
		RunE:  runDiag,
	}

	rootCmd.AddCommand(infoCmd, stepsCmd, lsCmd, inputsCmd, plotCmd, exportCmd, browseCmd, diagCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openCatalog merges config file and flags, then builds the catalog. Flags
// set on the command line override file values.
func openCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	cfg := config.DefaultConfig()
	path := configFile
	if path == "" {
		if _, err := os.Stat(".dhyb.yaml"); err == nil {
			path = ".dhyb.yaml"
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Root().PersistentFlags()
	if flags.Changed("input") || cfg.InputFile == "" {
		cfg.InputFile = inputFile
	}
	if flags.Changed("output") || cfg.OutputPath == "" {
		cfg.OutputPath = outputPath
	}
	if flags.Changed("lazy") {
		cfg.Lazy = lazy
	}
	if flags.Changed("include-zero") {
		cfg.IncludeZero = includeZero
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}

	return catalog.Open(catalog.Config{
		InputFile:   cfg.InputFile,
		OutputPath:  cfg.OutputPath,
		Lazy:        cfg.Lazy,
		IncludeZero: cfg.IncludeZero,
		Workers:     cfg.Workers,
	})
}

func runInfo(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}

	fields, phases, raws := cat.Counts()
	steps := cat.Timesteps()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "timesteps\t%d\n", len(steps))
	if len(steps) > 0 {
		fmt.Fprintf(w, "range\t%d .. %d\n", steps[0], steps[len(steps)-1])
	}
	fmt.Fprintf(w, "fields\t%d\n", fields)
	fmt.Fprintf(w, "phases\t%d\n", phases)
	fmt.Fprintf(w, "raw files\t%d\n", raws)
	fmt.Fprintf(w, "warnings\t%d\n", len(cat.Diagnostics().Warnings()))
	return w.Flush()
}

func runSteps(cmd *cobra.Command, args []string) error {
	if allSteps {
		includeZero = true
		cmd.Root().PersistentFlags().Set("include-zero", "true")
	}
	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	for _, step := range cat.Timesteps() {
		fmt.Println(step)
	}
	return nil
}

func runLs(cmd *cobra.Command, args []string) error {
	step, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("timestep must be an integer: %w", err)
	}
	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	ts, err := cat.Timestep(step)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tQUALIFIER\tNAMES")
	for _, c := range []*container.Container{ts.Fields, ts.Phases, ts.RawFiles} {
		for _, q := range c.Qualifiers() {
			names := c.Names(q)
			if len(names) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t", c.Kind(), q)
			for i, name := range names {
				if i > 0 {
					fmt.Fprint(w, " ")
				}
				fmt.Fprint(w, name)
			}
			fmt.Fprintln(w)
		}
	}
	return w.Flush()
}

func runInputs(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	deck := cat.Inputs()

	if len(args) == 1 {
		sec, ok := deck.Section(args[0])
		if !ok {
			return fmt.Errorf("no section %q in input deck (have %v)", args[0], deck.Sections())
		}
		out, err := yaml.Marshal(map[string]any{args[0]: sectionMap(sec)})
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}
	out, err := yaml.Marshal(deck.Map())
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func sectionMap(sec inputdeck.Section) map[string]any {
	m := make(map[string]any, len(sec))
	for k, vals := range sec {
		if len(vals) == 1 {
			m[k] = vals[0]
		} else {
			m[k] = vals
		}
	}
	return m
}

func runPlot(cmd *cobra.Command, args []string) error {
	step, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("timestep must be an integer: %w", err)
	}
	name := args[1]

	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	ts, err := cat.Timestep(step)
	if err != nil {
		return err
	}

	h, err := lookupHandle(ts, name)
	if err != nil {
		return err
	}
	cut, err := viz.LineCut(h, sliceAxis, sliceIndex)
	if err != nil {
		return err
	}
	fmt.Println(viz.Render(cut, plotWidth, plotHeight))
	return nil
}

// lookupHandle resolves name against the timestep's containers, honoring the
// --origin and --species flags. With neither flag, fields are tried first
// under the default origin, then phases under the default species.
func lookupHandle(ts *container.Timestep, name string) (*dataset.Handle, error) {
	if origin != "" {
		return ts.Fields.Get(name, container.Origin(origin))
	}
	if species != "" {
		if name == "raw" {
			return ts.RawFiles.Get(name, container.SpeciesToken(species))
		}
		return ts.Phases.Get(name, container.SpeciesToken(species))
	}
	h, err := ts.Fields.Get(name)
	if err == nil {
		return h, nil
	}
	h, perr := ts.Phases.Get(name)
	if perr == nil {
		return h, nil
	}
	return nil, err
}

func runExport(cmd *cobra.Command, args []string) error {
	step, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("timestep must be an integer: %w", err)
	}
	name := args[1]

	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	ts, err := cat.Timestep(step)
	if err != nil {
		return err
	}
	h, err := lookupHandle(ts, name)
	if err != nil {
		return err
	}

	out := os.Stdout
	if exportPath != "" {
		f, err := os.Create(exportPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "json":
		return export.JSON(out, h)
	case "csv":
		if h.Kind() == dataset.RawKind {
			return export.CSVColumns(out, h)
		}
		cut, err := viz.LineCut(h, sliceAxis, sliceIndex)
		if err != nil {
			return err
		}
		return export.CSVCut(out, cut, h.Name())
	}
	return fmt.Errorf("format must be json or csv, got %q", exportFormat)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	return viz.Browse(cat)
}

func runDiag(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	events := cat.Diagnostics().Events()
	if len(events) == 0 {
		fmt.Println("no diagnostics recorded")
		return nil
	}
	for _, e := range events {
		fmt.Println(e)
	}
	return nil
}
