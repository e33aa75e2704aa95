package sdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/structure"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

const ethanolBlock = `ethanol
ChemRxn Engine

  3  2  0  0  0  0  0  0  0  0  0  0
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0
    1.0000    0.0000    0.0000 C   0  0  0  0  0  0
    2.0000    0.0000    0.0000 O   0  0  0  0  0  0
  1  2  1  0  0  0  0
  2  3  1  0  0  0  0
M  END
$$$$
`

func TestParse_Ethanol(t *testing.T) {
	molecules, err := Parse(ethanolBlock)
	require.NoError(t, err)
	require.Len(t, molecules, 1)

	g := molecules[0]
	assert.Equal(t, 3, g.AtomCount())
	assert.Equal(t, 2, g.BondCount())
	assert.Equal(t, "O", g.Atoms()[2].Element)
	assert.Equal(t, 1.0, g.Atoms()[1].X)
}

func TestParse_ChargeCodes(t *testing.T) {
	block := `hydroxide
ChemRxn Engine

  2  1  0  0  0  0  0  0  0  0  0  0
    0.0000    0.0000    0.0000 O   0  5  0  0  0  0
    1.0000    0.0000    0.0000 H   0  0  0  0  0  0
  1  2  1  0  0  0  0
M  END
$$$$
`
	molecules, err := Parse(block)
	require.NoError(t, err)
	require.Len(t, molecules, 1)

	assert.Equal(t, -1, molecules[0].Atoms()[0].Charge)
	assert.Equal(t, -1, molecules[0].TotalCharge())
}

func TestParse_AromaticBondCodeIsKekulized(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("benzene\nChemRxn Engine\n\n")
	sb.WriteString("  6  6  0  0  0  0  0  0  0  0  0  0\n")
	coords := [][2]string{
		{"    0.0000", "    1.0000"}, {"    0.8660", "    0.5000"},
		{"    0.8660", "   -0.5000"}, {"    0.0000", "   -1.0000"},
		{"   -0.8660", "   -0.5000"}, {"   -0.8660", "    0.5000"},
	}
	for _, c := range coords {
		sb.WriteString(c[0] + c[1] + "    0.0000 C   0  0  0  0  0  0\n")
	}
	sb.WriteString("  1  2  4  0  0  0  0\n")
	sb.WriteString("  2  3  4  0  0  0  0\n")
	sb.WriteString("  3  4  4  0  0  0  0\n")
	sb.WriteString("  4  5  4  0  0  0  0\n")
	sb.WriteString("  5  6  4  0  0  0  0\n")
	sb.WriteString("  1  6  4  0  0  0  0\n")
	sb.WriteString("M  END\n$$$$\n")

	molecules, err := Parse(sb.String())
	require.NoError(t, err)
	require.Len(t, molecules, 1)
	g := molecules[0]

	doubles := 0
	for _, b := range g.Bonds() {
		if b.Order == 2 {
			doubles++
		}
	}
	assert.Equal(t, 3, doubles, "alternating bond assignment")

	an := structure.NewAnalyzer(nil)
	rings := an.FindRings(g)
	require.Len(t, rings, 1)
	assert.True(t, an.IsAromatic(g, rings[0]))
}

func TestParse_MultipleMolecules(t *testing.T) {
	molecules, err := Parse(ethanolBlock + ethanolBlock)
	require.NoError(t, err)
	assert.Len(t, molecules, 2)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{"too_short", "name\nprogram\n"},
		{"bad_counts", "name\nprogram\n\n  x  0  0\nM  END"},
		{"truncated_atom_block", "name\nprogram\n\n  2  0  0  0  0  0  0  0  0  0  0  0\n    0.0000    0.0000    0.0000 C   0  0  0  0  0  0\nM  END"},
		{
			"bond_index_out_of_range",
			"name\nprogram\n\n  1  1  0  0  0  0  0  0  0  0  0  0\n    0.0000    0.0000    0.0000 C   0  0  0  0  0  0\n  1  9  1  0  0  0  0\nM  END",
		},
		{
			"bad_order_code",
			"name\nprogram\n\n  2  1  0  0  0  0  0  0  0  0  0  0\n    0.0000    0.0000    0.0000 C   0  0  0  0  0  0\n    1.0000    0.0000    0.0000 C   0  0  0  0  0  0\n  1  2  9  0  0  0  0\nM  END",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.block)
			assert.True(t, errors.IsCode(err, errors.ErrCodeFormatInvalidSDF))
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	molecules, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, molecules)
}

func TestWrite_RoundTrip(t *testing.T) {
	g := graph.New()
	c1 := g.AddAtom("C", 0, 0)
	c2 := g.AddAtom("C", 1.5, 0)
	o := g.AddAtom("O", 3, 0.5, graph.WithCharge(-1))
	g.AddBond(c1, c2, 1)
	g.AddBond(c2, o, 2)

	out := Write(g, "test")
	assert.True(t, strings.HasPrefix(out, "test\n"))
	assert.Contains(t, out, "M  END")
	assert.True(t, strings.HasSuffix(out, "$$$$\n"))

	// The -1 charge code must land in the parser's field, columns 36-38.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, " O  ") {
			require.Equal(t, "  5", line[36:39])
		}
	}

	back, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, back, 1)
	p := back[0]

	assert.Equal(t, 3, p.AtomCount())
	assert.Equal(t, 2, p.BondCount())
	assert.Equal(t, "O", p.Atoms()[2].Element)
	assert.Equal(t, -1, p.Atoms()[2].Charge)
	assert.Equal(t, 1.5, p.Atoms()[1].X)
	assert.Equal(t, 2, p.Bonds()[1].Order)
}

func TestWrite_AromaticRingUsesCode4(t *testing.T) {
	g := graph.New()
	ids := make([]chem.AtomID, 6)
	for i := range ids {
		ids[i] = g.AddAtom("C", float64(i), 0)
	}
	for i := range ids {
		order := 1
		if i%2 == 0 {
			order = 2
		}
		g.AddBond(ids[i], ids[(i+1)%6], order)
	}

	out := Write(g, "benzene")
	assert.Contains(t, out, "  4  0  0  0  0\n")

	back, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, back, 1)

	an := structure.NewAnalyzer(nil)
	rings := an.FindRings(back[0])
	require.Len(t, rings, 1)
	assert.True(t, an.IsAromatic(back[0], rings[0]))
}

func TestWriteAll(t *testing.T) {
	g := graph.New()
	g.AddAtom("C", 0, 0)

	out := WriteAll([]*graph.Graph{g, g}, []string{"first"})
	assert.Equal(t, 2, strings.Count(out, "$$$$"))
	assert.True(t, strings.HasPrefix(out, "first\n"))
	assert.Contains(t, out, "Molecule\n")
}
