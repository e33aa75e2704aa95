package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeGraphAtomNotFound, "atom missing")
	assert.Equal(t, "[GRAPH_001] atom missing", e.Error())

	withDetail := e.WithDetail("id=42")
	assert.Equal(t, "[GRAPH_001] atom missing: id=42", withDetail.Error())
	// Original is unchanged.
	assert.Empty(t, e.Detail)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))

	base := New(ErrCodeReactionIncompatible, "hydride meets water")
	wrapped := Wrap(base, CodeDatabaseError, "while persisting verdict")
	assert.Equal(t, CodeDatabaseError, wrapped.Code)
	assert.True(t, errors.Is(wrapped, wrapped))
	assert.True(t, IsCode(wrapped, ErrCodeReactionIncompatible))

	// CodeUnknown preserves the inner classification.
	preserved := Wrap(base, CodeUnknown, "context only")
	assert.Equal(t, ErrCodeReactionIncompatible, preserved.Code)
}

func TestIsCode_TraversesChain(t *testing.T) {
	inner := New(ErrCodeValenceExceeded, "too many bonds")
	mid := fmt.Errorf("analysis failed: %w", inner)
	outer := Wrap(mid, CodeInternal, "request failed")

	assert.True(t, IsCode(outer, ErrCodeValenceExceeded))
	assert.False(t, IsCode(outer, ErrCodeChargeImbalance))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsNotFound(New(ErrCodeGraphBondNotFound, "bond gone")))
	assert.False(t, IsNotFound(New(ErrCodeReactionNoReagents, "empty")))
	assert.False(t, IsNotFound(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(errors.New("plain")))
	assert.Equal(t, ErrCodeFormatInvalidSMILES, GetCode(New(ErrCodeFormatInvalidSMILES, "bad")))
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatusForCode(ErrCodeReactionNoMolecule))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusForCode(ErrCodeReactionIncompatible))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("BOGUS_999")))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "RXN", ModuleForCode(ErrCodeReactionGroupMissing))
	assert.Equal(t, "GRAPH", ModuleForCode(ErrCodeGraphSelfBond))
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
}

func TestClientServerClassification(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeGraphInvalidDocument))
	assert.False(t, IsServerError(ErrCodeGraphInvalidDocument))
	assert.True(t, IsServerError(ErrCodeReactionRewriteFailed))
}
