package history

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mockmate/interviewer/internal/models"
)

// Store is the append-only session history. Completed sessions are written
// once and never updated or deleted by this service.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Append persists a completed session. Appending the same session id twice
// is a no-op, which keeps EndInterview safe to call repeatedly.
func (s *Store) Append(record *models.SessionRecord) error {
	var existing models.SessionRecord
	err := s.db.Where("session_id = ?", record.SessionID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing session record: %w", err)
	}

	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to store session record: %w", err)
	}
	return nil
}

// GetRecent returns the most recently completed sessions.
func (s *Store) GetRecent(limit int) ([]models.SessionRecord, error) {
	records := []models.SessionRecord{}

	query := s.db.Order("ended_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent sessions: %w", err)
	}
	return records, nil
}

// GetBySessionID returns one persisted session.
func (s *Store) GetBySessionID(sessionID string) (*models.SessionRecord, error) {
	var record models.SessionRecord
	if err := s.db.Where("session_id = ?", sessionID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetUnexported retrieves sessions that have not been exported yet, oldest
// first.
func (s *Store) GetUnexported(limit int) ([]models.SessionRecord, error) {
	records := []models.SessionRecord{}

	query := s.db.Where("exported = ?", false).Order("ended_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported sessions: %w", err)
	}
	return records, nil
}

// MarkExported marks session records as exported.
func (s *Store) MarkExported(recordIDs []uint) error {
	now := time.Now()
	result := s.db.Model(&models.SessionRecord{}).
		Where("id IN ?", recordIDs).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark sessions as exported: %w", result.Error)
	}
	return nil
}

// Stats returns aggregate statistics about stored sessions.
func (s *Store) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalCount int64
	if err := s.db.Model(&models.SessionRecord{}).Count(&totalCount).Error; err != nil {
		return nil, err
	}
	stats["total_sessions"] = totalCount

	var unexportedCount int64
	if err := s.db.Model(&models.SessionRecord{}).Where("exported = ?", false).Count(&unexportedCount).Error; err != nil {
		return nil, err
	}
	stats["unexported_sessions"] = unexportedCount

	var avgScore float64
	if totalCount > 0 {
		if err := s.db.Model(&models.SessionRecord{}).Select("AVG(overall_score)").Scan(&avgScore).Error; err != nil {
			return nil, err
		}
	}
	stats["average_overall_score"] = avgScore

	return stats, nil
}
