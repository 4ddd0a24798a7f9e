// internal/digest/digest.go
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"property-report-bot/internal/bot"
	"property-report-bot/internal/common/config"
	"property-report-bot/internal/common/errors"
	"property-report-bot/internal/common/logger"
	"property-report-bot/internal/ranking"
	"property-report-bot/internal/report"
)

const runTimeout = 60 * time.Second

// EmailSender delivers the digest body over email.
type EmailSender interface {
	SendPlainEmail(ctx context.Context, from string, to []string, subject, body string) error
}

// TopicPublisher delivers the digest body to an SNS topic.
type TopicPublisher interface {
	PublishToTopic(ctx context.Context, topicARN, subject, message string) error
}

// Scheduler runs the fetch, rank and format pipeline on a cron schedule and
// pushes the resulting top-rated report to the configured channels. A failed
// run is logged and the next tick fires normally.
type Scheduler struct {
	cfg     config.DigestConfig
	fetcher bot.Fetcher
	email   EmailSender
	sms     TopicPublisher
	logger  logger.Logger
	cron    *cron.Cron
}

func NewScheduler(cfg config.DigestConfig, fetcher bot.Fetcher, email EmailSender, sms TopicPublisher, log logger.Logger) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		fetcher: fetcher,
		email:   email,
		sms:     sms,
		logger:  log.WithFields(map[string]interface{}{"component": "digest"}),
		cron:    cron.New(),
	}
}

// Start registers the cron entry and begins ticking. It is a no-op when the
// digest is disabled.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("digest disabled", nil)
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		s.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", s.cfg.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info("digest scheduled", map[string]interface{}{
		"schedule":  s.cfg.Schedule,
		"top_count": s.cfg.TopCount,
	})
	return nil
}

// Stop halts the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Run executes one digest cycle. Each channel failure is logged separately so
// one broken channel never blocks the other.
func (s *Scheduler) Run(ctx context.Context) {
	digestID := uuid.New().String()
	log := s.logger.WithFields(map[string]interface{}{"digest_id": digestID})

	props, err := s.fetcher.FetchAllProperties(ctx)
	if err != nil {
		std := errors.Normalize(err)
		log.Error("digest fetch failed", map[string]interface{}{
			"code":  string(std.Code),
			"error": std.Error(),
		})
		return
	}

	ranked := ranking.TopRated(props, s.cfg.TopCount)
	if len(ranked) == 0 {
		log.Warn("digest skipped, no rated properties", nil)
		return
	}

	subject := fmt.Sprintf("Property ratings digest - top %d", len(ranked))
	body := report.TopReport(ranked)

	if s.cfg.Email.Enabled && s.email != nil {
		if err := s.email.SendPlainEmail(ctx, s.cfg.Email.FromEmail, s.cfg.Email.Recipients, subject, body); err != nil {
			std := errors.NewDigestSendFailedError("email", err)
			log.Error("digest email failed", map[string]interface{}{
				"code":  string(std.Code),
				"error": std.Error(),
			})
		} else {
			log.Info("digest email sent", map[string]interface{}{
				"recipients": len(s.cfg.Email.Recipients),
			})
		}
	}

	if s.cfg.SMS.Enabled && s.sms != nil {
		if err := s.sms.PublishToTopic(ctx, s.cfg.SMS.TopicARN, subject, body); err != nil {
			std := errors.NewDigestSendFailedError("sns", err)
			log.Error("digest topic publish failed", map[string]interface{}{
				"code":  string(std.Code),
				"error": std.Error(),
			})
		} else {
			log.Info("digest published to topic", map[string]interface{}{
				"topic_arn": s.cfg.SMS.TopicARN,
			})
		}
	}
}
