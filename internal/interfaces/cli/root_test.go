package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// execute runs the root command with the given args and captures its output.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "", "analyze", "--smiles", "CCO", "-o", "json")
	require.NoError(t, err)

	var result analyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Analysis.Annotations, 3)
	require.Len(t, result.Analysis.Groups, 1)
	assert.Equal(t, chem.GroupAlcohol, result.Analysis.Groups[0].Tag)
}

func TestAnalyzeCommand_Text(t *testing.T) {
	out, _, err := execute(t, "", "analyze", "--smiles", "c1ccccc1")
	require.NoError(t, err)
	assert.Contains(t, out, "Rings:    1 (1 aromatic)")
}

func TestAnalyzeCommand_NoInput(t *testing.T) {
	_, _, err := execute(t, "", "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--smiles or --file")
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	out, _, err := execute(t, "CCO\n", "analyze", "--file", "-", "-o", "json")
	require.NoError(t, err)

	var result analyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Analysis.Annotations, 3)
}

func TestConvertCommand_ToSDF(t *testing.T) {
	out, _, err := execute(t, "", "convert", "--smiles", "CCO", "--to", "sdf", "--name", "ethanol")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ethanol"))
	assert.Contains(t, out, "M  END")
}

func TestConvertCommand_SDFFileToSMILES(t *testing.T) {
	sdfOut, _, err := execute(t, "", "convert", "--smiles", "CCO", "--to", "sdf")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mol.sdf")
	require.NoError(t, os.WriteFile(path, []byte(sdfOut), 0o644))

	out, _, err := execute(t, "", "convert", "--file", path, "--to", "smiles")
	require.NoError(t, err)
	assert.Equal(t, "CCO\n", out)
}

func TestConvertCommand_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "", "convert", "--smiles", "CCO", "--to", "pdb")
	require.Error(t, err)
}

func TestClassifyCommand(t *testing.T) {
	out, _, err := execute(t, "", "classify", "--reagents", "KMnO4")
	require.NoError(t, err)
	assert.Equal(t, "oxidation\n", out)
}

func TestClassifyCommand_NoReagents(t *testing.T) {
	_, _, err := execute(t, "", "classify")
	require.Error(t, err)
}

func TestValidateCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "", "validate", "--smiles", "CCO", "--reagents", "KMnO4", "-o", "json")
	require.NoError(t, err)

	var verdict chem.ReactionVerdict
	require.NoError(t, json.Unmarshal([]byte(out), &verdict))
	assert.True(t, verdict.Valid)
	assert.Equal(t, "oxidation", verdict.Category)
	assert.Equal(t, 90, verdict.Score)
}

func TestValidateCommand_TextRejection(t *testing.T) {
	out, _, err := execute(t, "", "validate", "--smiles", "CCO", "--reagents", "mystery")
	require.NoError(t, err, "an invalid reaction is still a successful command")
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "error:")
}

func TestTransformCommand(t *testing.T) {
	out, _, err := execute(t, "", "transform", "--smiles", "CCO", "--reagents", "KMnO4")
	require.NoError(t, err)
	assert.Contains(t, out, "VALID")
	assert.Contains(t, out, "=O")
}

func TestTransformCommand_Rejected(t *testing.T) {
	_, errOut, err := execute(t, "", "transform",
		"--smiles", "CC(=O)C",
		"--reagents", "LiAlH4",
		"--conditions", "H2O")
	require.Error(t, err)
	assert.Contains(t, errOut, "INVALID")
}
