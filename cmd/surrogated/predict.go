package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"surrogated/internal/catalog"
)

var (
	predictInput    string
	predictScenario string
)

var predictCmd = &cobra.Command{
	Use:   "predict [cEE cH2 cNG cbioCH4 cbiomass cCoal cMSW cCO2 cCO2TnS]",
	Short: "Predict every configuration for one input point",
	Long: `Predict every configuration for one input point and print the results as JSON.

The point is given either as nine positional numbers in feature order or as a
JSON object read from --input ("-" for stdin), shaped like a /predict body.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != catalog.NumFeatures {
			return fmt.Errorf("expected %d values, got %d", catalog.NumFeatures, len(args))
		}
		return nil
	},
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&predictInput, "input", "i", "-", "JSON body file, - for stdin (ignored with positional values)")
	predictCmd.Flags().StringVar(&predictScenario, "scenario", "", "Emission scenario: fossil, RE1 or RE2")
}

func runPredict(cmd *cobra.Command, args []string) error {
	payload, err := predictPayload(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if predictScenario != "" {
		payload["emission_scenario"] = predictScenario
	}
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	resp, err := a.mgr.Predict(cmd.Context(), payload)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func predictPayload(stdin io.Reader, args []string) (map[string]any, error) {
	payload := map[string]any{}
	if len(args) == catalog.NumFeatures {
		for i, s := range args {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", catalog.Fields[i], err)
			}
			payload[catalog.Fields[i]] = v
		}
		return payload, nil
	}
	r := stdin
	if predictInput != "-" {
		f, err := os.Open(predictInput)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	return payload, nil
}
