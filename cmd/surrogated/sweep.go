package main

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"surrogated/internal/catalog"
	"surrogated/pkg/types"
)

// defaultSweepBase is a representative price point; the swept field is
// overwritten for every step.
const defaultSweepBase = "0.014082924,0.056681595,0.0327314,0.079053497,0.03539978,0.05,0.053672485,0.097509193,0.095846367"

var (
	sweepConfiguration string
	sweepField         string
	sweepLo, sweepHi   float64
	sweepSteps         int
	sweepBase          string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate one configuration while one input moves over a range",
	Long: `Evaluate one configuration while one input moves linearly from --lo to --hi
and print value,cost rows as CSV. The other inputs come from --base.`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	f := sweepCmd.Flags()
	f.StringVarP(&sweepConfiguration, "configuration", "c", "Coal_CC_MEA", "Configuration to evaluate")
	f.StringVarP(&sweepField, "field", "f", "cCoal", "Input to vary")
	f.Float64Var(&sweepLo, "lo", 0.01, "First value")
	f.Float64Var(&sweepHi, "hi", 0.09, "Last value")
	f.IntVar(&sweepSteps, "steps", 1000, "Number of points, ends included")
	f.StringVar(&sweepBase, "base", defaultSweepBase, "Comma-separated values for all nine inputs in feature order")
}

func runSweep(cmd *cobra.Command, args []string) error {
	inputs, err := parseBase(sweepBase)
	if err != nil {
		return err
	}
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	resp, err := a.mgr.Sweep(cmd.Context(), types.SweepRequest{
		Configuration: sweepConfiguration,
		Field:         sweepField,
		Lo:            sweepLo,
		Hi:            sweepHi,
		Steps:         sweepSteps,
		Inputs:        inputs,
	})
	if err != nil {
		return err
	}
	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{resp.Field, "cost", "error"}); err != nil {
		return err
	}
	for _, p := range resp.Points {
		cost := ""
		if p.Cost != nil {
			cost = strconv.FormatFloat(*p.Cost, 'g', -1, 64)
		}
		if err := w.Write([]string{strconv.FormatFloat(p.Value, 'g', -1, 64), cost, p.Error}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func parseBase(s string) (map[string]any, error) {
	parts := splitCSV(s)
	if len(parts) != catalog.NumFeatures {
		return nil, fmt.Errorf("--base needs %d values, got %d", catalog.NumFeatures, len(parts))
	}
	m := make(map[string]any, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("--base %s: %w", catalog.Fields[i], err)
		}
		m[catalog.Fields[i]] = v
	}
	return m, nil
}
