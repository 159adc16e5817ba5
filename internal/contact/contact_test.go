package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/models"
)

type memSaver struct {
	saved []models.ContactMessage
	err   error
}

func (m *memSaver) SaveContactMessage(_ context.Context, msg *models.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	msg.ID = "msg-1"
	m.saved = append(m.saved, *msg)
	return nil
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func valid() Submission {
	return Submission{
		Name:      "Awa",
		Email:     "awa@example.com",
		Subject:   "Devis",
		Message:   "Bonjour, je voudrais un devis pour un site.",
		StartedAt: now.Add(-time.Minute).UnixMilli(),
	}
}

func TestCheck(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name   string
		modify func(s *Submission)
		want   string
	}{
		{"legitimate", func(*Submission) {}, ""},
		{"honeypot", func(s *Submission) { s.Website = "http://spam" }, "honeypot"},
		{"no timestamp", func(s *Submission) { s.StartedAt = 0 }, "missing_timestamp"},
		{"too fast", func(s *Submission) { s.StartedAt = now.Add(-time.Second).UnixMilli() }, "too_fast"},
		{"future", func(s *Submission) { s.StartedAt = now.Add(time.Minute).UnixMilli() }, "future_timestamp"},
		{"stale", func(s *Submission) { s.StartedAt = now.Add(-3 * time.Hour).UnixMilli() }, "stale_form"},
		{"two links ok", func(s *Submission) { s.Message = "voir https://a.com et www.b.com" }, ""},
		{"three links", func(s *Submission) { s.Message = "http://a.com http://b.com www.c.com" }, "too_many_links"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.modify(&s)
			assert.Equal(t, tt.want, Check(s, now, cfg))
		})
	}
}

func newService(t *testing.T, saver Saver, observed *[]Outcome) *Service {
	t.Helper()
	s := NewService(DefaultConfig(), saver, WithObserver(func(o Outcome) { *observed = append(*observed, o) }))
	s.now = func() time.Time { return now }
	t.Cleanup(s.Close)
	return s
}

func TestSubmit_Accepted(t *testing.T) {
	saver := &memSaver{}
	var observed []Outcome
	s := newService(t, saver, &observed)

	out, err := s.Submit(context.Background(), valid(), "203.0.113.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, out)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "203.0.113.1", saver.saved[0].IP)
	assert.Equal(t, []Outcome{OutcomeAccepted}, observed)
}

func TestSubmit_SpamIsSilentlyDropped(t *testing.T) {
	saver := &memSaver{}
	var observed []Outcome
	s := newService(t, saver, &observed)

	sub := valid()
	sub.Website = "bot"
	out, err := s.Submit(context.Background(), sub, "203.0.113.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSpam, out)
	assert.Empty(t, saver.saved)
}

func TestSubmit_Invalid(t *testing.T) {
	var observed []Outcome
	s := newService(t, &memSaver{}, &observed)

	sub := valid()
	sub.Email = "pas-un-email"
	sub.Message = "court"
	out, err := s.Submit(context.Background(), sub, "203.0.113.1")
	assert.Equal(t, OutcomeInvalid, out)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "email")
	assert.Contains(t, verrs, "message")
}

func TestSubmit_RateLimited(t *testing.T) {
	var observed []Outcome
	s := newService(t, &memSaver{}, &observed)
	ctx := context.Background()

	for i := 0; i < DefaultConfig().Burst; i++ {
		_, err := s.Submit(ctx, valid(), "198.51.100.9")
		require.NoError(t, err)
	}
	out, err := s.Submit(ctx, valid(), "198.51.100.9")
	assert.Equal(t, OutcomeRateLimited, out)
	assert.ErrorIs(t, err, apperr.ErrRateLimited)

	out, err = s.Submit(ctx, valid(), "198.51.100.10")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, out)
}

func TestSubmit_StoreFailure(t *testing.T) {
	var observed []Outcome
	s := newService(t, &memSaver{err: errors.New("db down")}, &observed)
	out, err := s.Submit(context.Background(), valid(), "203.0.113.1")
	assert.Equal(t, OutcomeError, out)
	assert.EqualError(t, err, "db down")
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	cfg.Burst = 0
	assert.Error(t, cfg.Validate())
}
