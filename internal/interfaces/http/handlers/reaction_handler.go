package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemRxn-Engine/internal/codec/smiles"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// VerdictCache caches validation verdicts keyed by molecule and request
// content; satisfied by redis.VerdictCache.
type VerdictCache interface {
	Key(doc chem.MoleculeDocument, req chem.ReactionRequest) string
	Get(ctx context.Context, key string) (chem.ReactionVerdict, error)
	Set(ctx context.Context, key string, verdict chem.ReactionVerdict) error
}

// ReactionHandler serves classification, validation, and transformation.
type ReactionHandler struct {
	service *reaction.Service
	cache   VerdictCache
	metrics *prometheus.AppMetrics
	log     logging.Logger
}

// NewReactionHandler constructs a ReactionHandler.  cache and metrics may be
// nil; a nil cache recomputes every verdict.
func NewReactionHandler(service *reaction.Service, cache VerdictCache, metrics *prometheus.AppMetrics, log logging.Logger) *ReactionHandler {
	if service == nil {
		service = reaction.NewService(nil, nil)
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReactionHandler{service: service, cache: cache, metrics: metrics, log: log}
}

// ReactionBody is the shared request shape for reaction endpoints.
type ReactionBody struct {
	MoleculeInput
	Reagents   []string `json:"reagents"`
	Conditions []string `json:"conditions,omitempty"`
	Category   string   `json:"category,omitempty"`
}

func (b ReactionBody) request() chem.ReactionRequest {
	return chem.ReactionRequest{
		Reagents:   b.Reagents,
		Conditions: b.Conditions,
		Category:   b.Category,
	}
}

// Classify handles POST /api/v1/reactions/classify.  Classification needs
// only the reagents and conditions, never the molecule.
func (h *ReactionHandler) Classify(c *gin.Context) {
	var body ReactionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	category := h.service.Classify(body.request())
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Validate handles POST /api/v1/reactions/validate.
func (h *ReactionHandler) Validate(c *gin.Context) {
	var body ReactionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	g, err := resolveGraph(body.MoleculeInput)
	if err != nil {
		respondError(c, err)
		return
	}
	req := body.request()

	var cacheKey string
	if h.cache != nil {
		cacheKey = h.cache.Key(g.ToDocument(), req)
		if verdict, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
			if h.metrics != nil {
				prometheus.RecordCacheAccess(h.metrics, "verdict", true)
			}
			c.JSON(http.StatusOK, verdict)
			return
		}
		if h.metrics != nil {
			prometheus.RecordCacheAccess(h.metrics, "verdict", false)
		}
	}

	verdict := h.service.Validate(c.Request.Context(), g, req)
	if h.metrics != nil {
		prometheus.RecordValidation(h.metrics, verdict.Category, verdict.Valid, verdict.Score)
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), cacheKey, verdict); err != nil {
			h.log.Warn("verdict cache write failed", logging.Err(err))
		}
	}
	c.JSON(http.StatusOK, verdict)
}

// TransformResponse carries the rewritten molecule with its verdict.
type TransformResponse struct {
	Verdict chem.ReactionVerdict  `json:"verdict"`
	Product chem.MoleculeDocument `json:"product"`
	SMILES  string                `json:"smiles"`
}

// Transform handles POST /api/v1/reactions/transform.
func (h *ReactionHandler) Transform(c *gin.Context) {
	var body ReactionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	g, err := resolveGraph(body.MoleculeInput)
	if err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	product, verdict, err := h.service.Transform(c.Request.Context(), g, body.request())
	if h.metrics != nil {
		prometheus.RecordTransform(h.metrics, verdict.Category, time.Since(start), err)
	}
	if err != nil {
		// A failed validation still carries the verdict detail; surface it
		// alongside the error status.
		status := httpStatusFor(err)
		c.JSON(status, gin.H{"error": err.Error(), "verdict": verdict})
		return
	}

	c.JSON(http.StatusOK, TransformResponse{
		Verdict: verdict,
		Product: product.ToDocument(),
		SMILES:  smiles.Write(product),
	})
}
