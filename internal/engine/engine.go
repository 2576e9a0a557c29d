// Package engine orchestrates duplicate detection: it fans structural
// comparisons out over the catalog, folds in semantic similarity from the
// vector index when available, and merges both signals into a ranked
// DuplicateReport.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gregcmartin/doppel/internal/comparator"
	"github.com/gregcmartin/doppel/internal/models"
	"github.com/gregcmartin/doppel/internal/semantic"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// Combined score weights when both signals are present
	structuralWeight = 0.6
	semanticWeight   = 0.4

	// DefaultThreshold is the combined score above which an existing
	// API is reported as a duplicate candidate
	DefaultThreshold = 0.70

	// prefilterMinScore bounds the comparison set in combined mode: the
	// vector index only returns neighbors at least this similar
	prefilterMinScore = 0.30

	// neighborQueryLimit caps the pre-filter neighbor query
	neighborQueryLimit = 100

	// maxParallelCompares bounds the comparison fan-out
	maxParallelCompares = 8

	// semanticCallTimeout bounds each embedding and index call
	semanticCallTimeout = 15 * time.Second
)

// Engine runs duplicate detection. The embedder and index are optional:
// when either is nil the engine runs structural-only regardless of the
// semanticEnabled flag.
type Engine struct {
	logger   *logrus.Logger
	embedder semantic.Embedder
	index    semantic.VectorIndex
}

// New creates a new detection engine. Pass nil for embedder and index to
// disable semantic mode entirely.
func New(logger *logrus.Logger, embedder semantic.Embedder, index semantic.VectorIndex) *Engine {
	return &Engine{
		logger:   logger,
		embedder: embedder,
		index:    index,
	}
}

// Detect compares a candidate API against the catalog and produces a
// ranked DuplicateReport. Per-entry failures are skipped; semantic
// collaborator failures downgrade the run to structural-only; only
// cancellation aborts the run without a report.
func (e *Engine) Detect(ctx context.Context, candidate *models.ApiModel, catalog []*models.ApiModel, threshold float64, semanticEnabled bool) (*models.DuplicateReport, error) {
	report := &models.DuplicateReport{
		TriggeringApi: candidate.Identity,
		Candidates:    []models.SimilarityResult{},
		Threshold:     threshold,
		Mode:          models.ModeStructural,
		Timestamp:     time.Now(),
	}

	compareSet := excludeCandidate(catalog, candidate.Identity)

	semanticActive := semanticEnabled && e.embedder != nil && e.index != nil
	if semanticEnabled && !semanticActive {
		e.logger.Debug("Semantic mode requested but no embedding provider or vector index is configured")
	}

	var candidateVector []float32
	neighborScores := map[string]float64{}

	if semanticActive {
		vector, neighbors, err := e.semanticPrefilter(ctx, candidate)
		switch {
		case err != nil:
			// Degraded mode: the report stays valid, built from the
			// structural signal alone.
			e.logger.WithError(err).Warn("Semantic collaborator unavailable, continuing in structural-only mode")
			semanticActive = false
		case len(neighbors) == 0:
			e.logger.Debug("Vector index returned no neighbors, comparing full catalog structurally")
			candidateVector = vector
		default:
			candidateVector = vector
			for _, n := range neighbors {
				neighborScores[n.Identity] = n.Score
			}
			compareSet = restrictToNeighbors(compareSet, neighborScores)
		}
	}
	if semanticActive {
		report.Mode = models.ModeCombined
	}

	results := make([]*models.SimilarityResult, len(compareSet))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCompares)
	for i, other := range compareSet {
		i, other := i, other
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return fmt.Errorf("%w: %v", models.ErrComparisonCanceled, gctx.Err())
			default:
			}

			structural, matchedEndpoints, matchedSchemas := comparator.CompareStructural(candidate, other)
			result := &models.SimilarityResult{
				CandidateApi:     candidate.Identity,
				ComparedApi:      other.Identity,
				StructuralScore:  structural,
				SemanticScore:    models.SemanticNotComputed,
				MatchedEndpoints: matchedEndpoints,
				MatchedSchemas:   matchedSchemas,
			}

			if semanticActive {
				result.SemanticScore = e.semanticScoreFor(gctx, other.Identity, candidateVector, neighborScores)
			}
			result.CombinedScore = combineScores(result.StructuralScore, result.SemanticScore)

			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrComparisonCanceled, err)
	}

	for _, result := range results {
		if result == nil {
			continue
		}
		report.TotalCompared++
		if result.CombinedScore >= threshold {
			report.Candidates = append(report.Candidates, *result)
		}
	}

	// Ties are preserved and ordered deterministically by identity.
	sort.Slice(report.Candidates, func(i, j int) bool {
		if report.Candidates[i].CombinedScore != report.Candidates[j].CombinedScore {
			return report.Candidates[i].CombinedScore > report.Candidates[j].CombinedScore
		}
		return report.Candidates[i].ComparedApi.String() < report.Candidates[j].ComparedApi.String()
	})

	// Index maintenance is independent of detection outcome: the
	// candidate's embedding is stored even when no duplicates were found,
	// and a failure here never invalidates the report.
	e.upsertCandidate(report, candidate, candidateVector)

	return report, nil
}

// semanticPrefilter embeds the candidate and queries the vector index for
// nearby APIs. Both calls run under an explicit timeout.
func (e *Engine) semanticPrefilter(ctx context.Context, candidate *models.ApiModel) ([]float32, []semantic.Neighbor, error) {
	callCtx, cancel := context.WithTimeout(ctx, semanticCallTimeout)
	defer cancel()

	vector, err := e.embedder.Embed(callCtx, SummaryText(candidate))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed candidate: %w", err)
	}

	neighbors, err := e.index.QueryNearest(callCtx, vector, neighborQueryLimit, prefilterMinScore)
	if err != nil {
		return nil, nil, fmt.Errorf("neighbor query failed: %w", err)
	}
	return vector, neighbors, nil
}

// semanticScoreFor resolves the semantic score for one catalog entry: the
// pre-filter query result when present, otherwise a local cosine over the
// stored vector. Pairs without a stored vector keep the not-computed
// sentinel and score on the structural signal alone.
func (e *Engine) semanticScoreFor(ctx context.Context, other models.Identity, candidateVector []float32, neighborScores map[string]float64) float64 {
	if score, ok := neighborScores[other.String()]; ok {
		return score
	}
	stored, ok, err := e.index.Vector(ctx, other.String())
	if err != nil {
		e.logger.WithError(err).Debugf("Could not fetch stored vector for %s", other)
		return models.SemanticNotComputed
	}
	if !ok {
		return models.SemanticNotComputed
	}
	return semantic.Cosine(candidateVector, stored)
}

// upsertCandidate stores the candidate's embedding for future detections,
// recording failure as a report warning
func (e *Engine) upsertCandidate(report *models.DuplicateReport, candidate *models.ApiModel, vector []float32) {
	if e.index == nil || vector == nil {
		return
	}

	// The report is already complete; a canceled parent context must not
	// block index maintenance, so the upsert gets its own deadline.
	upsertCtx, cancel := context.WithTimeout(context.Background(), semanticCallTimeout)
	defer cancel()

	if err := e.index.Upsert(upsertCtx, candidate.Identity.String(), vector); err != nil {
		warning := fmt.Errorf("%w for %s: %v", models.ErrUpsertFailed, candidate.Identity, err)
		e.logger.WithError(err).Warnf("Failed to store embedding for %s", candidate.Identity)
		report.Warnings = append(report.Warnings, warning.Error())
	}
}

// combineScores merges the structural and semantic signals. When the
// semantic score is absent for a pair the structural score stands alone;
// a candidate is never discarded for missing one signal.
func combineScores(structural, semanticScore float64) float64 {
	if semanticScore == models.SemanticNotComputed {
		return structural
	}
	return structuralWeight*structural + semanticWeight*semanticScore
}

// excludeCandidate filters the candidate itself out of the catalog
func excludeCandidate(catalog []*models.ApiModel, identity models.Identity) []*models.ApiModel {
	filtered := make([]*models.ApiModel, 0, len(catalog))
	for _, api := range catalog {
		if api == nil || api.Identity == identity {
			continue
		}
		filtered = append(filtered, api)
	}
	return filtered
}

// restrictToNeighbors keeps only catalog entries the pre-filter returned
func restrictToNeighbors(catalog []*models.ApiModel, neighborScores map[string]float64) []*models.ApiModel {
	restricted := make([]*models.ApiModel, 0, len(neighborScores))
	for _, api := range catalog {
		if _, ok := neighborScores[api.Identity.String()]; ok {
			restricted = append(restricted, api)
		}
	}
	return restricted
}
