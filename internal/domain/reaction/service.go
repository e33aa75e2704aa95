package reaction

import (
	"context"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/groups"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/structure"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/valence"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// Publisher ships domain events to the outside world.  The kafka producer
// implements it; a nil publisher drops events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Analysis is the full per-molecule result handed to rendering layers.
type Analysis struct {
	Annotations   []chem.AtomAnnotation       `json:"annotations"`
	Groups        []chem.FunctionalGroupMatch `json:"groups"`
	Rings         [][]chem.AtomID             `json:"rings,omitempty"`
	AromaticRings [][]chem.AtomID             `json:"aromatic_rings,omitempty"`
	ChiralCenters []chem.AtomID               `json:"chiral_centers,omitempty"`
	TotalCharge   int                         `json:"total_charge"`
}

// Service orchestrates the engine components behind a single application
// facade: analysis, validation, and transformation.  All chemistry stays in
// the component packages; the service only sequences them and emits events.
type Service struct {
	calculator  *valence.Calculator
	analyzer    *structure.Analyzer
	detector    *groups.Detector
	classifier  *Classifier
	validator   *Validator
	transformer *Transformer
	publisher   Publisher
	log         logging.Logger
}

// NewService constructs a Service with default components.  publisher may be
// nil; events are then dropped.
func NewService(publisher Publisher, log logging.Logger) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	calculator := valence.NewDefaultCalculator(log)
	analyzer := structure.NewAnalyzer(log)
	detector := groups.NewDetector(log)
	classifier := NewClassifier(nil, log)
	return &Service{
		calculator:  calculator,
		analyzer:    analyzer,
		detector:    detector,
		classifier:  classifier,
		validator:   NewValidator(classifier, detector, analyzer, calculator, nil, Scoring{}, log),
		transformer: NewTransformer(detector, analyzer, log),
		publisher:   publisher,
		log:         log.Named("reaction"),
	}
}

// NewServiceWith constructs a Service from explicit components, for callers
// that tune rule tables or scoring.
func NewServiceWith(
	calculator *valence.Calculator,
	analyzer *structure.Analyzer,
	detector *groups.Detector,
	validator *Validator,
	transformer *Transformer,
	publisher Publisher,
	log logging.Logger,
) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	classifier := NewClassifier(nil, log)
	if validator != nil && validator.classifier != nil {
		classifier = validator.classifier
	}
	return &Service{
		calculator:  calculator,
		analyzer:    analyzer,
		detector:    detector,
		classifier:  classifier,
		validator:   validator,
		transformer: transformer,
		publisher:   publisher,
		log:         log.Named("reaction"),
	}
}

// Analyze derives the per-atom annotations (valence properties plus
// hybridization), functional groups, rings, and chiral centers of a graph.
func (s *Service) Analyze(g *graph.Graph) (Analysis, error) {
	if g == nil || g.AtomCount() == 0 {
		return Analysis{}, errors.New(errors.ErrCodeGraphEmptyMolecule, "nothing to analyze")
	}

	annotations := s.calculator.Annotate(g)
	for i := range annotations {
		annotations[i].Hybridization = s.analyzer.Hybridization(g, annotations[i].AtomID)
	}

	analysis := Analysis{
		Annotations:   annotations,
		Groups:        s.detector.DetectAll(g),
		ChiralCenters: s.analyzer.ChiralCenters(g),
		TotalCharge:   g.TotalCharge(),
	}
	for _, r := range s.analyzer.FindRings(g) {
		analysis.Rings = append(analysis.Rings, []chem.AtomID(r))
		if s.analyzer.IsAromatic(g, r) {
			analysis.AromaticRings = append(analysis.AromaticRings, []chem.AtomID(r))
		}
	}
	return analysis, nil
}

// Classify resolves the reaction category implied by the reagents and
// conditions.  Unknown combinations yield the fallback category name.
func (s *Service) Classify(req chem.ReactionRequest) string {
	return s.classifier.Classify(req.Reagents, req.Conditions)
}

// Validate runs the validation state machine and emits a reaction.validated
// event.
func (s *Service) Validate(ctx context.Context, g *graph.Graph, req chem.ReactionRequest) chem.ReactionVerdict {
	verdict := s.validator.Validate(g, req)
	s.publish(ctx, newEvent(EventReactionValidated, graphID(g), map[string]interface{}{
		"category": verdict.Category,
		"valid":    verdict.Valid,
		"score":    verdict.Score,
	}))
	return verdict
}

// Transform validates and, when valid, applies the category rewrite to a
// clone of the graph.  An invalid reaction returns the verdict alongside a
// not-validated error; the transformation never runs.
func (s *Service) Transform(ctx context.Context, g *graph.Graph, req chem.ReactionRequest) (*graph.Graph, chem.ReactionVerdict, error) {
	verdict := s.Validate(ctx, g, req)
	if !verdict.Valid {
		return nil, verdict, errors.Newf(errors.ErrCodeReactionNotValidated,
			"reaction rejected: %s", firstOr(verdict.Errors, "validation failed"))
	}

	product, err := s.transformer.Apply(g, verdict.Category, req)
	if err != nil {
		return nil, verdict, err
	}

	s.publish(ctx, newEvent(EventMoleculeTransformed, graphID(g), map[string]interface{}{
		"category":      verdict.Category,
		"product_id":    product.ID(),
		"product_atoms": product.AtomCount(),
	}))
	return product, verdict, nil
}

func (s *Service) publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// Event delivery is best-effort; chemistry results never depend on it.
		s.log.Warn("event publish failed",
			logging.String("type", string(event.Type)),
			logging.Err(err))
	}
}

func graphID(g *graph.Graph) string {
	if g == nil {
		return ""
	}
	return g.ID()
}

func firstOr(list []string, fallback string) string {
	if len(list) > 0 {
		return list[0]
	}
	return fallback
}
