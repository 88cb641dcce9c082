package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"surrogated/internal/manager"
	"surrogated/pkg/types"
)

var (
	checkJSON   bool
	checkStrict bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load every artifact and the emissions table and report what is usable",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Exit non-zero unless every artifact loaded and the emissions table is readable")
}

type checkReport struct {
	Configurations []types.ConfigurationStatus `json:"configurations"`
	Sanity         manager.SanityReport        `json:"sanity"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}
	rep := checkReport{
		Configurations: a.mgr.ListConfigurations(),
		Sanity:         a.mgr.SanityCheck(),
	}
	out := cmd.OutOrStdout()
	if checkJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CONFIGURATION\tSTATUS\tKIND\tREPAIRED\tDETAIL")
		for _, c := range rep.Configurations {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", c.Name, c.Status, c.Kind, c.BuffersRepaired, c.Error)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		s := rep.Sanity
		fmt.Fprintf(out, "\nloaded %d/%d, missing %d, corrupt %d\n", s.Loaded, len(rep.Configurations), len(s.Missing), len(s.Corrupt))
		if s.EmissionsOK {
			fmt.Fprintf(out, "emissions: ok (%s)\n", a.meta.Path())
		} else {
			fmt.Fprintf(out, "emissions: %s\n", s.Error)
		}
		if len(s.WithoutMetadata) > 0 {
			fmt.Fprintf(out, "no emissions row (reported as 0): %v\n", s.WithoutMetadata)
		}
	}
	if checkStrict && !rep.Sanity.OK() {
		return errors.New("check failed")
	}
	return nil
}
