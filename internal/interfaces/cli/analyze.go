package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemRxn-Engine/internal/codec/smiles"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/reaction"
)

// analyzeResult is the command's JSON output shape.
type analyzeResult struct {
	SMILES   string            `json:"smiles"`
	Analysis reaction.Analysis `json:"analysis"`
}

func newAnalyzeCmd(opts *RootOptions) *cobra.Command {
	mol := &moleculeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a molecule's valence, functional groups, and rings",
		Long: "Analyze computes per-atom valence properties and hybridization, detects\n" +
			"functional groups, and reports rings and chiral centers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := mol.resolve(cmd.InOrStdin())
			if err != nil {
				return err
			}

			analysis, err := newEngine(opts).Analyze(g)
			if err != nil {
				return err
			}

			result := analyzeResult{SMILES: smiles.Write(g), Analysis: analysis}
			return printResult(cmd, opts, result, func(w io.Writer) {
				printAnalysisText(w, result)
			})
		},
	}
	mol.register(cmd)
	return cmd
}

func printAnalysisText(w io.Writer, r analyzeResult) {
	fmt.Fprintf(w, "Molecule: %s\n", r.SMILES)
	fmt.Fprintf(w, "Atoms:    %d   Net charge: %+d\n", len(r.Analysis.Annotations), r.Analysis.TotalCharge)

	if len(r.Analysis.Groups) > 0 {
		names := make([]string, len(r.Analysis.Groups))
		for i, m := range r.Analysis.Groups {
			names[i] = string(m.Tag)
		}
		fmt.Fprintf(w, "Groups:   %s\n", strings.Join(names, ", "))
	}
	if n := len(r.Analysis.Rings); n > 0 {
		fmt.Fprintf(w, "Rings:    %d (%d aromatic)\n", n, len(r.Analysis.AromaticRings))
	}
	if len(r.Analysis.ChiralCenters) > 0 {
		fmt.Fprintf(w, "Chiral centers: %v\n", r.Analysis.ChiralCenters)
	}

	fmt.Fprintln(w, "Atom detail:")
	for _, ann := range r.Analysis.Annotations {
		status := "ok"
		if !ann.ValenceOK {
			status = "valence exceeded"
		}
		if ann.Radical {
			status += ", radical"
		}
		fmt.Fprintf(w, "  %3d  H=%d  charge=%+.1f  lone pairs=%d  %s  %s\n",
			ann.AtomID, ann.ImplicitH, ann.FormalCharge, ann.LonePairs,
			ann.Hybridization, status)
	}
}
