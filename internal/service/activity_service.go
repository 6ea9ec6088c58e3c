package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"filehost/internal/logger"
	"filehost/internal/models"
	"filehost/internal/repository"
)

type ActivityService struct {
	activityRepo repository.ActivityRepo
}

func NewActivityService(activityRepo repository.ActivityRepo) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	return from, to, normalizeEventType(f.Type), nil
}

// IsInvalidFilter reports whether err came from filter validation.
func IsInvalidFilter(err error) bool {
	return errors.Is(err, errInvalidTimeRange)
}

func (s *ActivityService) List(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.activityRepo.List(ctx, from, to, typ)
}

// recorder appends audit events. Failures are logged and never reach the caller.
type recorder struct {
	repo repository.ActivityRepo
	log  *logger.Logger
}

func newRecorder(repo repository.ActivityRepo, log *logger.Logger) *recorder {
	return &recorder{repo: repo, log: log}
}

func (r *recorder) record(ctx context.Context, typ, actor, subject, description string, meta any) {
	if r == nil || r.repo == nil {
		return
	}
	err := r.repo.Append(ctx, models.ActivityEvent{
		Type:        typ,
		Actor:       actor,
		Subject:     subject,
		Description: description,
		Metadata:    meta,
	})
	if err != nil && r.log != nil {
		r.log.Warnw("activity_append_failed", "type", typ, "actor", actor, "subject", subject, "err", err)
	}
}
