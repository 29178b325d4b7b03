package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ServiceConfig tunes the composite summarizer.
type ServiceConfig struct {
	RequestTimeout time.Duration // per-call budget for the remote model, default 45s
}

// Service picks between the remote model and the rule-based fallback. Callers
// depend only on the Summarizer interface; which path ran is visible on
// SummaryResult.Source. A circuit breaker keeps a flapping API from stalling
// every document, and the fallback guarantees Summarize never fails.
type Service struct {
	cfg      ServiceConfig
	remote   Summarizer
	fallback *RuleBased
	breaker  *gobreaker.CircuitBreaker[SummaryResult]
	logger   *slog.Logger
}

// NewService wires the composite. remote may be nil when no API credential is
// configured; every request then takes the rule-based path.
func NewService(cfg ServiceConfig, remote Summarizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 45 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[SummaryResult](gobreaker.Settings{
		Name:        "summarizer",
		MaxRequests: 1,
		Interval:    2 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("summarizer circuit state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Service{
		cfg:      cfg,
		remote:   remote,
		fallback: NewRuleBased(logger),
		breaker:  breaker,
		logger:   logger,
	}
}

// Summarize never returns an error: when the remote path is absent, open or
// failing, the rule-based fallback answers instead and the reason is recorded
// as a warning on the result. The category disclaimer is appended exactly
// once on every path.
func (s *Service) Summarize(ctx context.Context, req SummaryRequest) (SummaryResult, error) {
	if s.remote != nil {
		res, err := s.breaker.Execute(func() (SummaryResult, error) {
			cctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
			defer cancel()
			return s.remote.Summarize(cctx, req)
		})
		if err == nil {
			res.Summary = AppendDisclaimer(res.Summary, req.Category)
			return res, nil
		}

		s.logger.Warn("remote summary failed, falling back to rule-based",
			"category", req.Category,
			"circuit_open", IsCircuitOpen(err),
			"error", err)
		fb, _ := s.fallback.Summarize(ctx, req)
		fb.Warnings = append(fb.Warnings, fmt.Sprintf("ai summary unavailable: %v", err))
		fb.Summary = AppendDisclaimer(fb.Summary, req.Category)
		return fb, nil
	}

	res, _ := s.fallback.Summarize(ctx, req)
	res.Summary = AppendDisclaimer(res.Summary, req.Category)
	return res, nil
}

// IsCircuitOpen reports whether err came from the breaker rejecting the call
// rather than from the call itself.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
