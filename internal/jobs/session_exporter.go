package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"mockmate/interviewer/internal/history"
	"mockmate/interviewer/internal/models"
)

// SessionExporterJob periodically exports completed sessions as JSONL
// training pairs for later fine-tuning of the question/evaluation models.
type SessionExporterJob struct {
	store  *history.Store
	config *ExporterConfig
	logger *zap.Logger
	cron   *cron.Cron
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir     string // Directory to store exported files
	ExportEnabled bool   // Whether to run exports
	MinScore      int    // Only sessions scoring at least this are exported as examples
}

func NewSessionExporterJob(store *history.Store, config *ExporterConfig, logger *zap.Logger) *SessionExporterJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionExporterJob{
		store:  store,
		config: config,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start begins the scheduled export job
func (j *SessionExporterJob) Start() error {
	if !j.config.ExportEnabled {
		j.logger.Info("session export is disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		if err := j.RunExport(); err != nil {
			j.logger.Error("session export job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("session exporter started", zap.String("schedule", j.config.Schedule))
	return nil
}

// Stop stops the scheduled export job
func (j *SessionExporterJob) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

// RunExport performs a single export run
func (j *SessionExporterJob) RunExport() error {
	records, err := j.store.GetUnexported(0) // no limit
	if err != nil {
		return fmt.Errorf("failed to get unexported sessions: %w", err)
	}

	if len(records) == 0 {
		j.logger.Info("no unexported sessions found")
		return nil
	}

	jsonlData, exampleCount, err := j.buildJSONL(records)
	if err != nil {
		return err
	}

	recordIDs := make([]uint, len(records))
	for i, record := range records {
		recordIDs[i] = record.ID
	}

	if exampleCount == 0 {
		j.logger.Info("no qualifying answers to export, marking sessions as processed",
			zap.Int("sessions", len(records)))
		return j.store.MarkExported(recordIDs)
	}

	if err := os.MkdirAll(j.config.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("session_export_%s.jsonl", timestamp)
	path := filepath.Join(j.config.ExportDir, filename)

	if err := os.WriteFile(path, jsonlData, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	j.logger.Info("exported session training examples",
		zap.Int("examples", exampleCount),
		zap.Int("sessions", len(records)),
		zap.String("path", path))

	if err := j.store.MarkExported(recordIDs); err != nil {
		return fmt.Errorf("failed to mark sessions as exported: %w", err)
	}
	return nil
}

// buildJSONL converts session transcripts into question/answer training
// pairs. Timeout placeholders and fallback evaluations are skipped, as are
// sessions scoring below the configured minimum.
func (j *SessionExporterJob) buildJSONL(records []models.SessionRecord) ([]byte, int, error) {
	var lines []byte
	count := 0

	for _, record := range records {
		if record.OverallScore < j.config.MinScore {
			continue
		}

		transcript, err := record.DecodeTranscript()
		if err != nil {
			j.logger.Warn("skipping session with bad transcript",
				zap.Error(err), zap.String("session_id", record.SessionID))
			continue
		}

		for _, q := range transcript.Questions {
			if q.Answer == nil || *q.Answer == models.TimeoutAnswer {
				continue
			}
			if q.Evaluation == nil || q.Evaluation.UsedFallback {
				continue
			}

			dataPoint := models.TrainingDataPoint{
				Contents: []models.TrainingContent{
					{
						Role:  "user",
						Parts: []models.TrainingPart{{Text: q.Text}},
					},
					{
						Role:  "model",
						Parts: []models.TrainingPart{{Text: *q.Answer}},
					},
				},
			}

			jsonBytes, err := json.Marshal(dataPoint)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to marshal training data: %w", err)
			}

			if count > 0 {
				lines = append(lines, '\n')
			}
			lines = append(lines, jsonBytes...)
			count++
		}
	}

	return lines, count, nil
}

// RunManual runs an export manually (for testing or on-demand exports)
func (j *SessionExporterJob) RunManual() error {
	return j.RunExport()
}
