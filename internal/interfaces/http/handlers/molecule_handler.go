package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemRxn-Engine/internal/codec/sdf"
	"github.com/turtacn/ChemRxn-Engine/internal/codec/smiles"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// MoleculeStore is the persistence surface the handler needs; satisfied by
// postgres.MoleculeRepository.
type MoleculeStore interface {
	Save(ctx context.Context, rec *postgres.MoleculeRecord) error
	Get(ctx context.Context, id string) (*postgres.MoleculeRecord, error)
	List(ctx context.Context, limit, offset int) ([]*postgres.MoleculeRecord, error)
	Delete(ctx context.Context, id string) error
}

// AnalysisCache caches structural reports keyed by molecule content;
// satisfied by redis.AnalysisCache.
type AnalysisCache interface {
	Key(doc chem.MoleculeDocument) string
	Get(ctx context.Context, key string) (reaction.Analysis, error)
	Set(ctx context.Context, key string, analysis reaction.Analysis) error
}

// MoleculeHandler serves molecule analysis, format conversion, and storage.
type MoleculeHandler struct {
	service *reaction.Service
	store   MoleculeStore
	cache   AnalysisCache
	metrics *prometheus.AppMetrics
	log     logging.Logger
}

// NewMoleculeHandler constructs a MoleculeHandler.  store may be nil, which
// disables the persistence endpoints with 501 responses; cache and metrics
// may be nil.
func NewMoleculeHandler(service *reaction.Service, store MoleculeStore, cache AnalysisCache, metrics *prometheus.AppMetrics, log logging.Logger) *MoleculeHandler {
	if service == nil {
		service = reaction.NewService(nil, nil)
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MoleculeHandler{service: service, store: store, cache: cache, metrics: metrics, log: log}
}

// resolveGraphObserved decodes the input and counts the parse by format.
func (h *MoleculeHandler) resolveGraphObserved(in MoleculeInput) (*graph.Graph, error) {
	g, err := resolveGraph(in)
	if h.metrics != nil {
		prometheus.RecordCodecParse(h.metrics, in.format(), err)
	}
	return g, err
}

// AnalyzeResponse carries the full structural report for one molecule.
type AnalyzeResponse struct {
	Analysis reaction.Analysis `json:"analysis"`
	SMILES   string            `json:"smiles"`
}

// Analyze handles POST /api/v1/molecules/analyze.
func (h *MoleculeHandler) Analyze(c *gin.Context) {
	var in MoleculeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	g, err := h.resolveGraphObserved(in)
	if err != nil {
		respondError(c, err)
		return
	}

	var cacheKey string
	if h.cache != nil {
		cacheKey = h.cache.Key(g.ToDocument())
		if analysis, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
			if h.metrics != nil {
				prometheus.RecordCacheAccess(h.metrics, "analysis", true)
			}
			c.JSON(http.StatusOK, AnalyzeResponse{Analysis: analysis, SMILES: smiles.Write(g)})
			return
		}
		if h.metrics != nil {
			prometheus.RecordCacheAccess(h.metrics, "analysis", false)
		}
	}

	start := time.Now()
	analysis, err := h.service.Analyze(g)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.AnalysisDuration.WithLabelValues().Observe(time.Since(start).Seconds())
		h.metrics.MoleculeAtomCount.WithLabelValues().Observe(float64(g.AtomCount()))
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), cacheKey, analysis); err != nil {
			h.log.Warn("analysis cache write failed", logging.Err(err))
		}
	}

	c.JSON(http.StatusOK, AnalyzeResponse{Analysis: analysis, SMILES: smiles.Write(g)})
}

// ConvertRequest asks for a molecule re-encoded in another format.
type ConvertRequest struct {
	MoleculeInput
	To   string `json:"to" binding:"required"`
	Name string `json:"name,omitempty"`
}

// Convert handles POST /api/v1/molecules/convert.
func (h *MoleculeHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	g, err := h.resolveGraphObserved(req.MoleculeInput)
	if err != nil {
		respondError(c, err)
		return
	}

	switch req.To {
	case "smiles":
		c.JSON(http.StatusOK, gin.H{"format": "smiles", "data": smiles.Write(g)})
	case "sdf":
		c.JSON(http.StatusOK, gin.H{"format": "sdf", "data": sdf.Write(g, req.Name)})
	case "document":
		c.JSON(http.StatusOK, gin.H{"format": "document", "data": g.ToDocument()})
	default:
		respondError(c, errors.Newf(errors.ErrCodeFormatUnsupported, "unknown target format %q", req.To))
	}
}

// CreateRequest stores a molecule.
type CreateRequest struct {
	MoleculeInput
	Name string `json:"name,omitempty"`
}

// Create handles POST /api/v1/molecules.
func (h *MoleculeHandler) Create(c *gin.Context) {
	if h.store == nil {
		respondError(c, errors.New(errors.ErrCodeNotImplemented, "molecule storage is not configured"))
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	g, err := h.resolveGraphObserved(req.MoleculeInput)
	if err != nil {
		respondError(c, err)
		return
	}

	rec := &postgres.MoleculeRecord{
		ID:          g.ID(),
		Name:        req.Name,
		SMILES:      smiles.Write(g),
		Document:    g.ToDocument(),
		AtomCount:   g.AtomCount(),
		BondCount:   g.BondCount(),
		TotalCharge: g.TotalCharge(),
	}
	if err := h.store.Save(c.Request.Context(), rec); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("molecule stored", logging.String("id", rec.ID), logging.Int("atoms", rec.AtomCount))
	c.JSON(http.StatusCreated, gin.H{"id": rec.ID})
}

// Get handles GET /api/v1/molecules/:id.
func (h *MoleculeHandler) Get(c *gin.Context) {
	if h.store == nil {
		respondError(c, errors.New(errors.ErrCodeNotImplemented, "molecule storage is not configured"))
		return
	}

	rec, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// List handles GET /api/v1/molecules.
func (h *MoleculeHandler) List(c *gin.Context) {
	if h.store == nil {
		respondError(c, errors.New(errors.ErrCodeNotImplemented, "molecule storage is not configured"))
		return
	}

	limit, offset := parsePagination(c)
	records, err := h.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"molecules": records, "count": len(records)})
}

// Delete handles DELETE /api/v1/molecules/:id.
func (h *MoleculeHandler) Delete(c *gin.Context) {
	if h.store == nil {
		respondError(c, errors.New(errors.ErrCodeNotImplemented, "molecule storage is not configured"))
		return
	}

	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
