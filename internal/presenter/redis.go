package presenter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mockmate/interviewer/internal/models"
)

const publishTimeout = 2 * time.Second

// RedisPresenter publishes presentation events to a Redis channel so other
// services (voice, notifications) can react to interview progress.
type RedisPresenter struct {
	rdb     *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisPresenter(rdb *redis.Client, channel string, logger *zap.Logger) *RedisPresenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPresenter{
		rdb:     rdb,
		channel: channel,
		logger:  logger,
	}
}

func (p *RedisPresenter) DisplayQuestion(sessionID string, question *models.Question) {
	p.publish(models.Event{
		Type:      models.EventDisplayQuestion,
		SessionID: sessionID,
		Question:  question,
	})
}

func (p *RedisPresenter) DisplayEvaluation(sessionID string, question *models.Question, evaluation *models.Evaluation) {
	p.publish(models.Event{
		Type:       models.EventDisplayEvaluation,
		SessionID:  sessionID,
		Question:   question,
		Evaluation: evaluation,
	})
}

func (p *RedisPresenter) DisplayFinalEvaluation(sessionID string, final *models.FinalEvaluation, session *models.Session) {
	p.publish(models.Event{
		Type:            models.EventDisplayFinalEvaluation,
		SessionID:       sessionID,
		FinalEvaluation: final,
		Session:         session,
	})
}

func (p *RedisPresenter) Announce(sessionID string, message string) {
	p.publish(models.Event{
		Type:      models.EventAnnouncement,
		SessionID: sessionID,
		Message:   message,
	})
}

func (p *RedisPresenter) publish(event models.Event) {
	event.Timestamp = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal presentation event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		// fire-and-forget: a lost event must never stall the interview
		p.logger.Warn("failed to publish presentation event",
			zap.Error(err),
			zap.String("type", event.Type),
			zap.String("session_id", event.SessionID))
	}
}
