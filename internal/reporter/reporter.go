package reporter

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gregcmartin/doppel/internal/models"
	"github.com/sirupsen/logrus"
)

// Reporter handles duplicate report output
type Reporter struct {
	logger *logrus.Logger
}

// New creates a new reporter instance
func New(logger *logrus.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// WriteReport writes a DuplicateReport as JSON and logs its summary
func (r *Reporter) WriteReport(report *models.DuplicateReport, outputPath string) error {
	// Clean up the output path
	outputPath = filepath.Clean(outputPath)
	if filepath.Ext(outputPath) == "" {
		outputPath += ".json"
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return err
	}

	r.LogSummary(report)
	r.logger.Info("Report saved to: ", outputPath)
	return nil
}

// LogSummary logs the outcome of a detection run
func (r *Reporter) LogSummary(report *models.DuplicateReport) {
	r.logger.WithFields(logrus.Fields{
		"api":        report.TriggeringApi.String(),
		"mode":       report.Mode,
		"compared":   report.TotalCompared,
		"threshold":  report.Threshold,
		"candidates": len(report.Candidates),
	}).Info("Duplicate detection completed")

	if len(report.Candidates) == 0 {
		r.logger.Info("No duplicate candidates found")
	}
	for _, candidate := range report.Candidates {
		fields := logrus.Fields{
			"structural": candidate.StructuralScore,
			"combined":   candidate.CombinedScore,
		}
		if candidate.HasSemantic() {
			fields["semantic"] = candidate.SemanticScore
		}
		if len(candidate.MatchedEndpoints) > 0 {
			fields["matched_endpoints"] = candidate.MatchedEndpoints
		}
		if len(candidate.MatchedSchemas) > 0 {
			fields["matched_schemas"] = candidate.MatchedSchemas
		}
		r.logger.WithFields(fields).Warnf("Possible duplicate of %s", candidate.ComparedApi)
	}

	for _, warning := range report.Warnings {
		r.logger.Warn(warning)
	}
}
