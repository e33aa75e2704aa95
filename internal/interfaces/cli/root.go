// Package cli implements the chemrxn command-line interface: molecule
// analysis, format conversion, and reaction classification, validation, and
// transformation against local rule tables.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemRxn-Engine/internal/codec/sdf"
	"github.com/turtacn/ChemRxn-Engine/internal/codec/smiles"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	LogLevel string
	Output   string
	Verbose  bool
}

// NewRootCommand creates the root command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "chemrxn",
		Short:   "ChemRxn-Engine CLI for molecule analysis and reaction validation",
		Long: "chemrxn analyzes molecular structures, converts between SMILES and SDF,\n" +
			"and classifies, validates, and applies organic reactions against the\n" +
			"built-in rule tables.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.Output, "output", "o", "text", "output format (text, json)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newConvertCmd(opts),
		newClassifyCmd(opts),
		newValidateCmd(opts),
		newTransformCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// Execute runs the CLI and reports failures on stderr.
func Execute() error {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// newCLILogger builds a stderr console logger from the global flags.
func newCLILogger(opts *RootOptions) logging.Logger {
	level := opts.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	log, err := logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNopLogger()
	}
	return log
}

// moleculeFlags is the shared molecule-input flag set.  Exactly one of
// --smiles and --file must be supplied; the file format follows the
// extension, with "-" reading SMILES from stdin.
type moleculeFlags struct {
	smiles string
	file   string
}

func (f *moleculeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.smiles, "smiles", "", "molecule as a SMILES string")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "molecule file (.sdf/.mol as SDF, otherwise SMILES; - for stdin)")
}

// resolve reads the molecule from whichever source the flags name.
func (f *moleculeFlags) resolve(stdin io.Reader) (*graph.Graph, error) {
	switch {
	case f.smiles != "" && f.file != "":
		return nil, errors.New(errors.ErrCodeBadRequest, "--smiles and --file are mutually exclusive")
	case f.smiles != "":
		return smiles.Parse(f.smiles)
	case f.file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "reading stdin failed")
		}
		return smiles.Parse(strings.TrimSpace(string(data)))
	case f.file != "":
		data, err := os.ReadFile(f.file)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "reading molecule file failed")
		}
		switch strings.ToLower(filepath.Ext(f.file)) {
		case ".sdf", ".mol":
			molecules, err := sdf.Parse(string(data))
			if err != nil {
				return nil, err
			}
			if len(molecules) == 0 {
				return nil, errors.New(errors.ErrCodeFormatInvalidSDF, "file contains no molecule")
			}
			return molecules[0], nil
		default:
			return smiles.Parse(strings.TrimSpace(string(data)))
		}
	default:
		return nil, errors.New(errors.ErrCodeBadRequest, "supply a molecule with --smiles or --file")
	}
}

// reactionFlags is the shared reagent/condition flag set.
type reactionFlags struct {
	reagents   []string
	conditions []string
	category   string
}

func (f *reactionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.reagents, "reagents", nil, "reagents (comma-separated or repeated)")
	cmd.Flags().StringSliceVar(&f.conditions, "conditions", nil, "reaction conditions (comma-separated or repeated)")
	cmd.Flags().StringVar(&f.category, "category", "", "pre-resolved reaction category (skips classification)")
}

// printResult renders data as indented JSON or hands it to the text renderer.
func printResult(cmd *cobra.Command, opts *RootOptions, data interface{}, text func(w io.Writer)) error {
	if strings.EqualFold(opts.Output, "json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	text(cmd.OutOrStdout())
	return nil
}

// newEngine builds a local service instance for command execution.
func newEngine(opts *RootOptions) *reaction.Service {
	return reaction.NewService(nil, newCLILogger(opts))
}
