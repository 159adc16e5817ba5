// Package contact handles contact form submissions: validation, spam
// screening, per-client throttling and storage.
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/ratelimit"
)

// Outcome is the result of a submission.
type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeSpam        Outcome = "spam"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeError       Outcome = "error"
)

var linkPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)`)

// Submission is the payload posted by the contact form. Website is a
// honeypot field hidden from humans; StartedAt is the unix time in
// milliseconds at which the form was rendered.
type Submission struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Website   string `json:"website"`
	StartedAt int64  `json:"started_at"`
}

// Validate checks the fields a visitor must fill in.
func (s Submission) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&s.Email, validation.Required, is.EmailFormat),
		validation.Field(&s.Subject, validation.Length(0, 200)),
		validation.Field(&s.Message, validation.Required, validation.Length(10, 5000)),
	)
}

// Config tunes spam screening and throttling.
type Config struct {
	MinFillTime time.Duration `yaml:"min_fill_time"`
	MaxAge      time.Duration `yaml:"max_age"`
	MaxLinks    int           `yaml:"max_links"`
	PerMinute   float64       `yaml:"per_minute"`
	Burst       int           `yaml:"burst"`
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		MinFillTime: 3 * time.Second,
		MaxAge:      2 * time.Hour,
		MaxLinks:    2,
		PerMinute:   3,
		Burst:       3,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MinFillTime, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxAge, validation.Required),
		validation.Field(&c.MaxLinks, validation.Min(0)),
		validation.Field(&c.PerMinute, validation.Required, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Required, validation.Min(1)),
	)
}

// Check screens sub for spam at now. It returns the reason when sub looks
// automated, or "".
func Check(sub Submission, now time.Time, cfg Config) string {
	if strings.TrimSpace(sub.Website) != "" {
		return "honeypot"
	}
	if sub.StartedAt <= 0 {
		return "missing_timestamp"
	}
	elapsed := now.Sub(time.UnixMilli(sub.StartedAt))
	switch {
	case elapsed < 0:
		return "future_timestamp"
	case elapsed < cfg.MinFillTime:
		return "too_fast"
	case elapsed > cfg.MaxAge:
		return "stale_form"
	}
	if n := len(linkPattern.FindAllStringIndex(sub.Message, -1)); n > cfg.MaxLinks {
		return "too_many_links"
	}
	return ""
}

// Saver stores accepted messages.
type Saver interface {
	SaveContactMessage(ctx context.Context, m *models.ContactMessage) error
}

// Service processes submissions.
type Service struct {
	cfg     Config
	store   Saver
	limiter *ratelimit.KeyedRateLimiter
	now     func() time.Time
	observe func(Outcome)
}

// Option configures a Service.
type Option func(*Service)

// WithObserver registers a hook called with the outcome of each submission.
func WithObserver(fn func(Outcome)) Option {
	return func(s *Service) { s.observe = fn }
}

// NewService creates a Service. Close releases its limiter.
func NewService(cfg Config, store Saver, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		store:   store,
		limiter: ratelimit.New(cfg.PerMinute, cfg.Burst),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops the limiter's background cleanup.
func (s *Service) Close() { s.limiter.Stop() }

// Submit handles a submission from ip. Spam is reported as OutcomeSpam with
// a nil error so callers can answer it exactly like a success.
func (s *Service) Submit(ctx context.Context, sub Submission, ip string) (Outcome, error) {
	outcome, err := s.submit(ctx, sub, ip)
	if s.observe != nil {
		s.observe(outcome)
	}
	return outcome, err
}

func (s *Service) submit(ctx context.Context, sub Submission, ip string) (Outcome, error) {
	if !s.limiter.Allow(ip) {
		return OutcomeRateLimited, apperr.ErrRateLimited
	}
	if reason := Check(sub, s.now(), s.cfg); reason != "" {
		slog.Info("contact submission dropped as spam",
			slog.String("reason", reason), slog.String("ip", ip))
		return OutcomeSpam, nil
	}
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Subject = strings.TrimSpace(sub.Subject)
	sub.Message = strings.TrimSpace(sub.Message)
	if err := sub.Validate(); err != nil {
		return OutcomeInvalid, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}

	msg := &models.ContactMessage{
		Name:    sub.Name,
		Email:   sub.Email,
		Subject: sub.Subject,
		Message: sub.Message,
		IP:      ip,
	}
	if err := s.store.SaveContactMessage(ctx, msg); err != nil {
		return OutcomeError, err
	}
	slog.Info("contact message received", slog.String("id", msg.ID))
	return OutcomeAccepted, nil
}
