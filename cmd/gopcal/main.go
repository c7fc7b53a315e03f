// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package main

import (
	"fmt"
	"io"
	"os"

	m "github.com/mkhts/gopcal"
	"github.com/spf13/cobra"
)

// Structure to hold command line argument information
type cmdOpt struct {
	alistFn  string
	cfgFile  string
	dataDir  string
	outFiles []string
	ccMode   bool
	graph    bool
	noFix    bool
	snrMin   float64
	ref      string
	nchan    int
	spacing  float64
	verbose  int
}

var args cmdOpt

var rootCmd = &cobra.Command{
	Use:   "gopcal [flags] alist_file",
	Short: "Estimate phase-cal phases and delay offsets against ALMA",
	Long: `gopcal reads a HOPS fringe alist and the fringe files it refers to, averages
the per-channel residual phases of the ALMA baselines, and writes per-channel
phase-cal phases and delay offsets as tables or fourfit control codes.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, a []string) error {
		args.alistFn = a[0]
		if err := validateOutputs(args.outFiles, args.ccMode); err != nil {
			_ = cmd.Usage()
			return err
		}
		m.SetDebug(args.verbose)
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		return runApplication(args, cfg)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&args.cfgFile, "config", "", "YAML config file (default: gopcal.yaml in . or ~/.gopcal)")
	f.StringVar(&args.dataDir, "datadir", "", "Root directory of fringe files (default: $DATADIR)")
	f.StringSliceVarP(&args.outFiles, "outfile", "o", nil, "Output files (1 to 5), given as -o a -o b or -o a,b. Several files get RR, LL, combined phases, delays, slopes in this order. Default: stdout")
	f.BoolVar(&args.ccMode, "controlcodes", false, "Write fourfit control codes instead of tables (needs exactly one --outfile)")
	f.BoolVar(&args.graph, "graph", false, "Also render diagnostic plots")
	f.BoolVar(&args.noFix, "no-fix", false, "Do not apply known-issue corrections to the alist")
	f.Float64Var(&args.snrMin, "snr", m.SnrMin, "Minimum SNR of rows to use")
	f.StringVar(&args.ref, "ref", m.RefStation, "Reference station code")
	f.IntVar(&args.nchan, "nchan", 0, "Number of channels. 0: longest channel data found")
	f.Float64Var(&args.spacing, "spacing", m.DNu, "Frequency separation between adjacent channels [Hz]")
	f.CountVarP(&args.verbose, "verbose", "v", "Debug output. Repeat for more detail")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		m.PrintE(err)
		os.Exit(1)
	}
}

// Check the number of output destinations
func validateOutputs(outFiles []string, ccMode bool) error {
	if len(outFiles) > m.MaxOutputs {
		return fmt.Errorf("too many output files: %d (max %d)", len(outFiles), m.MaxOutputs)
	}
	if ccMode && len(outFiles) != 1 {
		return fmt.Errorf("--controlcodes needs exactly one --outfile (got %d)", len(outFiles))
	}
	return nil
}

// Load configuration and override it with the flags given on the command line
func loadConfig(cmd *cobra.Command, a cmdOpt) (*m.Config, error) {
	cfg, err := m.LoadConfig(a.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	f := cmd.Flags()
	if f.Changed("datadir") {
		cfg.DataDir = a.dataDir
	}
	if f.Changed("snr") {
		cfg.SnrMin = a.snrMin
	}
	if f.Changed("ref") {
		cfg.Ref = a.ref
	}
	if f.Changed("nchan") {
		cfg.NChan = a.nchan
	}
	if f.Changed("spacing") {
		cfg.SpacingHz = a.spacing
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Main application processing
func runApplication(a cmdOpt, cfg *m.Config) error {

	// Read alist
	alist, err := readAlist(a.alistFn)
	if err != nil {
		return fmt.Errorf("failed to read alist: %w", err)
	}
	rows := alist.Rows
	m.PrintD(1, "--- alist (%s) ---\n%s", a.alistFn, alist)

	// Known-issue corrections
	if !a.noFix && cfg.FixFile != "" {
		rules, err := m.LoadFixRules(cfg.FixFile)
		if err != nil {
			return fmt.Errorf("failed to load fix rules: %w", err)
		}
		rows = rules.Apply(rows)
	}

	// Channel data
	if cfg.DataDir == "" {
		cfg.DataDir = "."
		m.PrintD(1, "no data directory given, using the working directory")
	}
	src := &m.FringeDir{Root: cfg.DataDir}
	recs, err := m.Load(rows, src, cfg.LoadOpt())
	if err != nil {
		return fmt.Errorf("failed to load channel data: %w", err)
	}

	// Phase-cal
	rslt, err := m.Process(recs, cfg.Opt())
	if err != nil {
		return fmt.Errorf("failed to process phases: %w", err)
	}

	// Output
	if err := writeOutputs(a, cfg, rslt); err != nil {
		return err
	}

	if a.graph {
		if err := m.PlotResult(rslt, cfg.PlotFiles); err != nil {
			return fmt.Errorf("failed to plot: %w", err)
		}
	}
	return nil
}

// Read alist file
func readAlist(fn string) (*m.Alist, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return m.ReadAlist(f)
}

func writeOutputs(a cmdOpt, cfg *m.Config, rslt *m.Result) error {

	// Use stdout if no output file is specified
	targets := []m.Target{m.StreamTarget(os.Stdout)}
	if len(a.outFiles) > 0 {
		targets = targets[:0]
		for _, fn := range a.outFiles {
			targets = append(targets, m.PathTarget(fn))
		}
	}

	if a.ccMode {
		err := targets[0].Write(func(w io.Writer) error {
			return m.WriteControlCodes(w, rslt, cfg.CCOpt())
		})
		if err != nil {
			return fmt.Errorf("failed to write control codes to %s: %w", targets[0], err)
		}
		return nil
	}

	for i, t := range m.Tables(rslt, len(targets)) {
		err := targets[i].Write(func(w io.Writer) error {
			return m.WriteTable(w, t)
		})
		if err != nil {
			return fmt.Errorf("failed to write table to %s: %w", targets[i], err)
		}
	}
	return nil
}
