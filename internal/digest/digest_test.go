// internal/digest/digest_test.go
package digest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-report-bot/internal/common/config"
	"property-report-bot/internal/common/errors"
	"property-report-bot/internal/common/logger"
	"property-report-bot/internal/models"
)

type stubFetcher struct {
	properties []models.Record
	err        error
}

func (s *stubFetcher) FetchAllProperties(context.Context) ([]models.Record, error) {
	return s.properties, s.err
}

func (s *stubFetcher) FetchPropertiesList(context.Context) ([]models.Record, error) {
	return s.properties, s.err
}

func (s *stubFetcher) FetchPropertyByID(context.Context, string) (models.Record, error) {
	return nil, errors.NewPropertyNotFoundError("n/a")
}

func (s *stubFetcher) FetchComplaints(context.Context, string) ([]models.Record, error) {
	return nil, nil
}

type stubEmail struct {
	subjects []string
	bodies   []string
	to       [][]string
	err      error
}

func (s *stubEmail) SendPlainEmail(_ context.Context, _ string, to []string, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.subjects = append(s.subjects, subject)
	s.bodies = append(s.bodies, body)
	return nil
}

type stubTopic struct {
	published int
	err       error
}

func (s *stubTopic) PublishToTopic(context.Context, string, string, string) error {
	if s.err != nil {
		return s.err
	}
	s.published++
	return nil
}

func digestConfig(emailOn, smsOn bool) config.DigestConfig {
	cfg := config.DigestConfig{
		Enabled:  true,
		Schedule: "0 8 * * *",
		TopCount: 5,
	}
	cfg.Email.Enabled = emailOn
	cfg.Email.FromEmail = "reports@example.com"
	cfg.Email.Recipients = []string{"ops@example.com"}
	cfg.SMS.Enabled = smsOn
	cfg.SMS.TopicARN = "arn:aws:sns:us-east-1:123:digests"
	return cfg
}

func TestRun_SendsToBothChannels(t *testing.T) {
	fetcher := &stubFetcher{properties: []models.Record{
		{"id": "1", "name": "Villa", "airbnb_rating": 4.5, "booking_rating": 5.0},
		{"id": "2", "name": "Cabin", "airbnb": 3.0},
	}}
	email := &stubEmail{}
	topic := &stubTopic{}

	s := NewScheduler(digestConfig(true, true), fetcher, email, topic, logger.NewTestLogger(t))
	s.Run(context.Background())

	require.Len(t, email.subjects, 1)
	assert.Equal(t, "Property ratings digest - top 2", email.subjects[0])
	assert.Contains(t, email.bodies[0], "🏆 Top 2 Best Rated Properties")
	assert.Contains(t, email.bodies[0], "🥇 Villa")
	assert.Equal(t, [][]string{{"ops@example.com"}}, email.to)
	assert.Equal(t, 1, topic.published)
}

func TestRun_OneFailedChannelDoesNotBlockTheOther(t *testing.T) {
	fetcher := &stubFetcher{properties: []models.Record{
		{"id": "1", "name": "Villa", "airbnb_rating": 4.0},
	}}
	email := &stubEmail{err: fmt.Errorf("ses throttled")}
	topic := &stubTopic{}

	s := NewScheduler(digestConfig(true, true), fetcher, email, topic, logger.NewTestLogger(t))
	s.Run(context.Background())

	assert.Equal(t, 1, topic.published)
}

func TestRun_FetchFailureSendsNothing(t *testing.T) {
	fetcher := &stubFetcher{err: errors.NewFetchTransportFailedError("http://x", fmt.Errorf("refused"))}
	email := &stubEmail{}
	topic := &stubTopic{}

	s := NewScheduler(digestConfig(true, true), fetcher, email, topic, logger.NewTestLogger(t))
	s.Run(context.Background())

	assert.Empty(t, email.subjects)
	assert.Zero(t, topic.published)
}

func TestRun_NoRatedPropertiesSendsNothing(t *testing.T) {
	fetcher := &stubFetcher{}
	email := &stubEmail{}

	cfg := digestConfig(true, false)
	s := NewScheduler(cfg, fetcher, email, nil, logger.NewTestLogger(t))
	s.Run(context.Background())

	assert.Empty(t, email.subjects)
}

func TestStart_DisabledIsNoOp(t *testing.T) {
	cfg := digestConfig(true, false)
	cfg.Enabled = false

	s := NewScheduler(cfg, &stubFetcher{}, &stubEmail{}, nil, logger.NewTestLogger(t))
	require.NoError(t, s.Start())
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	cfg := digestConfig(true, false)
	cfg.Schedule = "not a cron spec"

	s := NewScheduler(cfg, &stubFetcher{}, &stubEmail{}, nil, logger.NewTestLogger(t))
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid digest schedule")
}
