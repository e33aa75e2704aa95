package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemRxn-Engine/internal/codec/sdf"
	"github.com/turtacn/ChemRxn-Engine/internal/codec/smiles"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

func newClassifyCmd(opts *RootOptions) *cobra.Command {
	rxn := &reactionFlags{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Resolve the reaction category for a reagent/condition set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(rxn.reagents) == 0 {
				return errors.New(errors.ErrCodeReactionNoReagents, "supply at least one reagent with --reagents")
			}

			category := newEngine(opts).Classify(chem.ReactionRequest{
				Reagents:   rxn.reagents,
				Conditions: rxn.conditions,
			})
			return printResult(cmd, opts, map[string]string{"category": category}, func(w io.Writer) {
				fmt.Fprintln(w, category)
			})
		},
	}
	cmd.Flags().StringSliceVar(&rxn.reagents, "reagents", nil, "reagents (comma-separated or repeated)")
	cmd.Flags().StringSliceVar(&rxn.conditions, "conditions", nil, "reaction conditions (comma-separated or repeated)")
	return cmd
}

func newValidateCmd(opts *RootOptions) *cobra.Command {
	mol := &moleculeFlags{}
	rxn := &reactionFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a reaction against the substrate and rule tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := mol.resolve(cmd.InOrStdin())
			if err != nil {
				return err
			}

			verdict := newEngine(opts).Validate(cmd.Context(), g, chem.ReactionRequest{
				Reagents:   rxn.reagents,
				Conditions: rxn.conditions,
				Category:   rxn.category,
			})
			return printResult(cmd, opts, verdict, func(w io.Writer) {
				printVerdictText(w, verdict)
			})
		},
	}
	mol.register(cmd)
	rxn.register(cmd)
	return cmd
}

func newTransformCmd(opts *RootOptions) *cobra.Command {
	mol := &moleculeFlags{}
	rxn := &reactionFlags{}
	var to string

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Apply a validated reaction and print the product",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := mol.resolve(cmd.InOrStdin())
			if err != nil {
				return err
			}

			product, verdict, err := newEngine(opts).Transform(cmd.Context(), g, chem.ReactionRequest{
				Reagents:   rxn.reagents,
				Conditions: rxn.conditions,
				Category:   rxn.category,
			})
			if err != nil {
				printVerdictText(cmd.ErrOrStderr(), verdict)
				return err
			}

			var out string
			switch to {
			case "smiles":
				out = smiles.Write(product) + "\n"
			case "sdf":
				out = sdf.Write(product, "")
			default:
				return errors.Newf(errors.ErrCodeFormatUnsupported, "unknown product format %q", to)
			}

			result := map[string]interface{}{
				"verdict": verdict,
				"product": out,
			}
			return printResult(cmd, opts, result, func(w io.Writer) {
				printVerdictText(w, verdict)
				fmt.Fprint(w, out)
			})
		},
	}
	mol.register(cmd)
	rxn.register(cmd)
	cmd.Flags().StringVar(&to, "to", "smiles", "product output format (smiles, sdf)")
	return cmd
}

func printVerdictText(w io.Writer, verdict chem.ReactionVerdict) {
	status := "INVALID"
	if verdict.Valid {
		status = "VALID"
	}
	fmt.Fprintf(w, "%s  category=%s  score=%d\n", status, verdict.Category, verdict.Score)
	for _, e := range verdict.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	for _, warn := range verdict.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	for _, s := range verdict.Suggestions {
		fmt.Fprintf(w, "  hint: %s\n", s)
	}
}
