// Package happy sends the accountability emails: scheduled nudges (morning,
// midday, evening, friday, sunday, hourly checks) and the event-triggered
// celebration when a user clears their Today list.
//
// Each email type goes out at most once per user per local calendar day.
package happy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/store"
)

// ErrNotTriggerable is returned when a client asks for a scheduled-only job
var ErrNotTriggerable = errors.New("only celebration can be triggered")

// Store is everything a run reads and writes
type Store interface {
	Reader
	store.Happy
}

// Report counts the outcome of a run
type Report struct {
	Users   int
	Sent    int
	Skipped int
	Failed  int
}

// Runner executes jobs
type Runner struct {
	store    Store
	composer Composer
	mailer   Mailer
	log      *zap.Logger
	now      func() time.Time
}

func NewRunner(s Store, composer Composer, mailer Mailer, log *zap.Logger) *Runner {
	return &Runner{
		store:    s,
		composer: composer,
		mailer:   mailer,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run executes a scheduled job for every opted-in user. Failures for one user
// are logged and counted; the rest of the batch still runs.
func (r *Runner) Run(ctx context.Context, job string) (*Report, error) {
	if err := ValidJob(job); err != nil {
		return nil, err
	}

	users, err := r.store.ListHappyUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list happy users: %w", err)
	}

	report := &Report{Users: len(users)}
	for i := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r.runUser(ctx, job, &users[i], report)
	}

	r.log.Info("happy job finished",
		zap.String("job", job),
		zap.Int("users", report.Users),
		zap.Int("sent", report.Sent),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// Trigger runs an event job for one user. Users who have not opted in are
// skipped silently.
func (r *Runner) Trigger(ctx context.Context, userID, job string) (*Report, error) {
	if job != JobCelebration {
		return nil, ErrNotTriggerable
	}

	hs, err := r.store.GetHappySettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &Report{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get happy settings: %w", err)
	}
	if !hs.Enabled {
		return &Report{}, nil
	}

	report := &Report{Users: 1}
	r.runUser(ctx, job, hs, report)
	return report, nil
}

func (r *Runner) runUser(ctx context.Context, job string, hs *models.HappySettings, report *Report) {
	log := r.log.With(zap.String("user_id", hs.UserID), zap.String("job", job))

	now := r.now()
	uc, err := BuildContext(ctx, r.store, hs, now)
	if err != nil {
		report.Failed++
		log.Error("failed to build user context", zap.Error(err))
		return
	}

	local := now.In(hs.Location())
	for _, d := range plan(job, local, uc) {
		sent, err := r.process(ctx, hs, d, uc, localMidnight(local).UTC())
		switch {
		case err != nil:
			report.Failed++
			log.Error("failed to send email", zap.String("type", d.jobType), zap.Error(err))
		case sent:
			report.Sent++
		default:
			report.Skipped++
		}
	}
}

func (r *Runner) process(ctx context.Context, hs *models.HappySettings, d dispatch, uc *UserContext, since time.Time) (bool, error) {
	already, err := r.store.EmailSentSince(ctx, hs.UserID, d.jobType, since)
	if err != nil {
		return false, err
	}
	if already {
		r.log.Debug("already sent today", zap.String("user_id", hs.UserID), zap.String("type", d.jobType))
		return false, nil
	}

	email, err := r.composer.Compose(ctx, d.jobType, d.prompt, uc)
	if err != nil {
		return false, fmt.Errorf("compose: %w", err)
	}
	if err := r.mailer.Send(ctx, hs.Email, email); err != nil {
		return false, err
	}

	entry := &models.EmailLog{
		ID:      uuid.NewString(),
		UserID:  hs.UserID,
		JobType: d.jobType,
		Subject: email.Subject,
		SentAt:  r.now(),
	}
	if err := r.store.LogEmail(ctx, entry); err != nil {
		// delivered but unrecorded; the next run may send it again
		r.log.Warn("sent email was not logged",
			zap.String("user_id", hs.UserID),
			zap.String("type", d.jobType),
			zap.Error(err),
		)
	}
	return true, nil
}
