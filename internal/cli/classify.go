package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"safereturn/internal/risk"
)

type classifyOptions struct {
	housing string
	job     string
	mental  string
	family  string
	matrix  bool
	json    bool
}

// ClassifyOutput is the JSON form of a single classification.
type ClassifyOutput struct {
	Tier            string        `json:"risk_tier"`
	Rule            string        `json:"rule"`
	Factors         []risk.Factor `json:"factors"`
	Recommendations []string      `json:"recommendations"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one assessment, or print the full rule matrix",
		Long: `Run the risk rules offline.

  safereturn classify --housing homeless --job employed --mental good --family supportive
  safereturn classify --matrix`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.matrix {
				return writeMatrix(cmd.OutOrStdout())
			}
			return runClassify(opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.housing, "housing", "", "housing status ("+joinValues(risk.HousingStatuses)+")")
	f.StringVar(&opts.job, "job", "", "job status ("+joinValues(risk.JobStatuses)+")")
	f.StringVar(&opts.mental, "mental", "", "mental state ("+joinValues(risk.MentalStates)+")")
	f.StringVar(&opts.family, "family", "", "family status ("+joinValues(risk.FamilyStatuses)+")")
	f.BoolVar(&opts.matrix, "matrix", false, "print the tier for every status combination")
	f.BoolVar(&opts.json, "json", false, "write JSON output")
	return cmd
}

func runClassify(opts *classifyOptions, w io.Writer) error {
	a, err := risk.ParseAssessment(opts.housing, opts.job, opts.mental, opts.family)
	if err != nil {
		return err
	}
	tier, rule := risk.Explain(a)
	factors := risk.Factors(a)
	if factors == nil {
		factors = []risk.Factor{}
	}
	out := ClassifyOutput{
		Tier:            string(tier),
		Rule:            rule,
		Factors:         factors,
		Recommendations: risk.Recommendations(factors),
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if _, err := fmt.Fprintf(w, "%s (%s)\n", out.Tier, out.Rule); err != nil {
		return err
	}
	for _, f := range out.Factors {
		if _, err := fmt.Fprintf(w, "  - %s: %s\n", f.Description, f.Recommendation); err != nil {
			return err
		}
	}
	return nil
}

func writeMatrix(w io.Writer) error {
	for _, a := range risk.AllAssessments() {
		tier, rule := risk.Explain(a)
		if _, err := fmt.Fprintf(w, "%s %s %s %s -> %s (%s)\n", a.Housing, a.Job, a.Mental, a.Family, tier, rule); err != nil {
			return err
		}
	}
	return nil
}

func joinValues[T ~string](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, "|")
}
