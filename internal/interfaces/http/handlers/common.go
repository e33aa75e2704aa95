// Package handlers implements the HTTP endpoint handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemRxn-Engine/internal/codec/sdf"
	"github.com/turtacn/ChemRxn-Engine/internal/codec/smiles"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an application error to its HTTP status via the error
// code table.  Server-side codes are masked to avoid leaking internals.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = errors.DefaultMessageForCode(code)
	}
	c.JSON(status, ErrorResponse{Code: code.String(), Message: message})
}

// httpStatusFor resolves the status an error maps to without writing it.
func httpStatusFor(err error) int {
	return errors.HTTPStatusForCode(errors.GetCode(err))
}

// respondBadRequest wraps a binding failure in the standard body.
func respondBadRequest(c *gin.Context, err error) {
	respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "malformed request body"))
}

// parsePagination reads limit/offset query parameters with bounds.
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// MoleculeInput carries a molecule in one of the accepted encodings.  Exactly
// one of Molecule, SMILES, or SDF must be set.
type MoleculeInput struct {
	Molecule *chem.MoleculeDocument `json:"molecule,omitempty"`
	SMILES   string                 `json:"smiles,omitempty"`
	SDF      string                 `json:"sdf,omitempty"`
}

// format names the encoding the input carries, for metric labels.
func (in MoleculeInput) format() string {
	switch {
	case in.Molecule != nil:
		return "document"
	case in.SMILES != "":
		return "smiles"
	case in.SDF != "":
		return "sdf"
	default:
		return "none"
	}
}

// resolveGraph decodes whichever encoding the input carries.
func resolveGraph(in MoleculeInput) (*graph.Graph, error) {
	switch {
	case in.Molecule != nil:
		return graph.FromDocument(*in.Molecule)
	case in.SMILES != "":
		return smiles.Parse(in.SMILES)
	case in.SDF != "":
		molecules, err := sdf.Parse(in.SDF)
		if err != nil {
			return nil, err
		}
		if len(molecules) == 0 {
			return nil, errors.New(errors.ErrCodeFormatInvalidSDF, "SDF input contains no molecule")
		}
		return molecules[0], nil
	default:
		return nil, errors.New(errors.ErrCodeBadRequest, "one of molecule, smiles, or sdf is required")
	}
}
