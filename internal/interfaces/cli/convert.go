package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemRxn-Engine/internal/codec/sdf"
	"github.com/turtacn/ChemRxn-Engine/internal/codec/smiles"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
)

func newConvertCmd(opts *RootOptions) *cobra.Command {
	mol := &moleculeFlags{}
	var (
		to      string
		name    string
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a molecule between SMILES and SDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := mol.resolve(cmd.InOrStdin())
			if err != nil {
				return err
			}

			var out string
			switch to {
			case "smiles":
				out = smiles.Write(g) + "\n"
			case "sdf":
				out = sdf.Write(g, name)
			default:
				return errors.Newf(errors.ErrCodeFormatUnsupported, "unknown target format %q", to)
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, []byte(out), 0o644); err != nil {
					return errors.Wrap(err, errors.ErrCodeInternal, "writing output file failed")
				}
				newCLILogger(opts).Debug("conversion written", logging.String("path", outFile))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	mol.register(cmd)
	cmd.Flags().StringVar(&to, "to", "smiles", "target format (smiles, sdf)")
	cmd.Flags().StringVar(&name, "name", "", "molecule name for the SDF header")
	cmd.Flags().StringVar(&outFile, "out", "", "write output to a file instead of stdout")
	return cmd
}
