// Package funnel turns verified identity webhooks into waitlist entries.
package funnel

import (
	"context"
	"net/http"
	"time"

	"github.com/sofi-fitness/studio-landing/internal/clerk"
	"github.com/sofi-fitness/studio-landing/internal/convertkit"
	"github.com/sofi-fitness/studio-landing/internal/datastore"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/notification"
	"github.com/sofi-fitness/studio-landing/internal/observability/metrics"
	"github.com/sofi-fitness/studio-landing/internal/waitlist"
)

// Messages returned to the webhook sender.
const (
	MsgDatabaseUnavailable = "Database unavailable."
	MsgNoPrimaryEmail      = "User has no primary email."
	MsgInvalidPayload      = "Invalid webhook payload."
)

// WaitlistClerkIDPrefix marks entries created from waitlist signups rather
// than user accounts.
const WaitlistClerkIDPrefix = "waitlist:"

// maxInsertAttempts bounds retries after a referral code collision.
const maxInsertAttempts = 3

// Subscriber adds a member to the email sequence.
type Subscriber interface {
	Subscribe(ctx context.Context, email, firstName string) convertkit.Result
}

// Notifier sends operator notifications.
type Notifier interface {
	Notify(ctx context.Context, msg notification.Message) error
}

// CodeGenerator returns a fresh referral code.
type CodeGenerator func() (string, error)

// Ingestor applies webhook events to the waitlist store.
type Ingestor struct {
	store      datastore.Interface
	subscriber Subscriber
	notifier   Notifier
	stats      *waitlist.Service
	metrics    *metrics.FunnelMetrics
	newCode    CodeGenerator
	siteName   string
	log        logger.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithSubscriber sets the email-marketing client.
func WithSubscriber(s Subscriber) Option {
	return func(i *Ingestor) { i.subscriber = s }
}

// WithNotifier sets the operator notifier.
func WithNotifier(n Notifier) Option {
	return func(i *Ingestor) { i.notifier = n }
}

// WithStats sets the stats service whose cached count is dropped after inserts.
func WithStats(s *waitlist.Service) Option {
	return func(i *Ingestor) { i.stats = s }
}

// WithMetrics sets the funnel metrics.
func WithMetrics(m *metrics.FunnelMetrics) Option {
	return func(i *Ingestor) { i.metrics = m }
}

// WithCodeGenerator replaces the referral code generator.
func WithCodeGenerator(gen CodeGenerator) Option {
	return func(i *Ingestor) {
		if gen != nil {
			i.newCode = gen
		}
	}
}

// WithSiteName sets the site name used in notifications.
func WithSiteName(name string) Option {
	return func(i *Ingestor) { i.siteName = name }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(i *Ingestor) {
		if log != nil {
			i.log = log
		}
	}
}

// NewIngestor creates an ingestor. store may be nil, in which case every
// event fails with MsgDatabaseUnavailable.
func NewIngestor(store datastore.Interface, opts ...Option) *Ingestor {
	i := &Ingestor{
		store:   store,
		newCode: waitlist.GenerateReferralCode,
		log:     logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.log = i.log.Module("funnel")
	return i
}

// Ready reports whether a store is configured.
func (i *Ingestor) Ready() bool {
	return i.store != nil
}

// stored is the result of a committed transaction.
type stored struct {
	outcome    Outcome
	entry      *datastore.WaitlistEntry // nil for idempotent replays
	count      int64                    // waitlist size after insert
	subscribe  bool
	email      string
	firstName  string
	notifyKind string
}

// Handle applies ev and returns the response for the sender.
func (i *Ingestor) Handle(ctx context.Context, ev clerk.Event) Outcome {
	start := time.Now()
	outcome := i.handle(ctx, ev)
	i.metrics.RecordWebhook(ev.Type, outcome.Label(), time.Since(start).Seconds())
	i.log.WithContext(ctx).Info("webhook handled",
		logger.String("event_type", ev.Type),
		logger.String("outcome", outcome.Label()),
		logger.Int("status", outcome.Status),
		logger.Duration("elapsed", time.Since(start)))
	return outcome
}

func (i *Ingestor) handle(ctx context.Context, ev clerk.Event) Outcome {
	if i.store == nil {
		return Failure(http.StatusInternalServerError, MsgDatabaseUnavailable)
	}

	switch {
	case ev.Type == clerk.EventUserCreated:
		user, err := ev.User()
		if err != nil {
			return Failure(http.StatusBadRequest, MsgInvalidPayload)
		}
		signup := clerk.ExtractWaitlistUser(user)
		if signup.Email == "" {
			return Failure(http.StatusBadRequest, MsgNoPrimaryEmail)
		}
		return i.commit(ctx, func(tx datastore.Interface) (stored, error) {
			return i.storeUser(ctx, tx, signup)
		})

	case ev.IsWaitlistEntryCreated():
		entry, ok := ev.WaitlistEntry()
		if !ok {
			return ignored()
		}
		return i.commit(ctx, func(tx datastore.Interface) (stored, error) {
			return i.storeWaitlistEntry(ctx, tx, entry)
		})

	default:
		return ignored()
	}
}

// commit runs apply in a transaction and performs the side effects once it
// has committed. A unique-constraint conflict means a concurrent delivery
// stored the same person first and is reported as an idempotent replay, unless
// only the referral code collided, which is retried with a new code.
func (i *Ingestor) commit(ctx context.Context, apply func(tx datastore.Interface) (stored, error)) Outcome {
	var res stored
	var err error
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		err = i.store.Transaction(ctx, func(tx datastore.Interface) error {
			var applyErr error
			res, applyErr = apply(tx)
			return applyErr
		})
		if err == nil || !errors.IsConflict(err) {
			break
		}
		// The retry re-reads inside a new transaction; a replay now resolves
		// to idempotent through the existence checks.
		i.log.WithContext(ctx).Debug("waitlist write conflicted, retrying",
			logger.Int("attempt", attempt),
			logger.Error(err))
	}
	if err != nil {
		if errors.IsConflict(err) {
			return idempotent()
		}
		i.log.WithContext(ctx).Error("waitlist write failed", logger.Error(err))
		return Failure(http.StatusInternalServerError, errors.ScrubMessage(err.Error()))
	}

	i.afterCommit(ctx, res)
	return res.outcome
}

// storeUser handles user.created: idempotent by clerk id, merge by email,
// otherwise insert at the next position.
func (i *Ingestor) storeUser(ctx context.Context, tx datastore.Interface, u clerk.WaitlistUser) (stored, error) {
	if _, err := tx.GetWaitlistEntryByClerkID(ctx, u.ClerkUserID); err == nil {
		return stored{outcome: idempotent()}, nil
	} else if !errors.IsNotFound(err) {
		return stored{}, err
	}

	existing, err := tx.GetWaitlistEntryByEmail(ctx, u.Email)
	switch {
	case err == nil:
		return i.mergeUser(ctx, tx, existing, u)
	case !errors.IsNotFound(err):
		return stored{}, err
	}

	count, err := tx.CountWaitlistEntries(ctx)
	if err != nil {
		return stored{}, err
	}
	code, err := i.newCode()
	if err != nil {
		return stored{}, err
	}

	entry := &datastore.WaitlistEntry{
		ClerkUserID:      u.ClerkUserID,
		Email:            u.Email,
		FullName:         u.FullName,
		ReferralCode:     code,
		ReferredBy:       u.ReferredBy,
		UTMSource:        u.UTMSource,
		UTMMedium:        u.UTMMedium,
		UTMCampaign:      u.UTMCampaign,
		WaitlistPosition: int(count) + 1,
	}
	if err := tx.CreateWaitlistEntry(ctx, entry); err != nil {
		return stored{}, err
	}
	if ref := value(u.ReferredBy); ref != "" {
		if err := tx.IncrementReferralCount(ctx, ref); err != nil {
			return stored{}, err
		}
	}

	return stored{
		outcome:    created(),
		entry:      entry,
		count:      count + 1,
		subscribe:  true,
		email:      u.Email,
		firstName:  u.FirstName,
		notifyKind: notification.KindNewMember,
	}, nil
}

// mergeUser links an account to an entry that was created from the same
// email. An existing referral is kept; the referrer is credited only when the
// referral is new. The update only applies while the row still has the clerk
// id that was read, so a concurrent delivery that linked it first turns this
// one into a conflict and the retry resolves it as a replay.
func (i *Ingestor) mergeUser(ctx context.Context, tx datastore.Interface, existing *datastore.WaitlistEntry, u clerk.WaitlistUser) (stored, error) {
	referredBy := existing.ReferredBy
	if referredBy == nil {
		referredBy = u.ReferredBy
	}

	err := tx.MergeWaitlistEntry(ctx, existing.ID, datastore.MergeFields{
		ClerkUserID: u.ClerkUserID,
		FullName:    u.FullName,
		ReferredBy:  referredBy,
		UTMSource:   u.UTMSource,
		UTMMedium:   u.UTMMedium,
		UTMCampaign: u.UTMCampaign,

		PreviousClerkUserID: existing.ClerkUserID,
	})
	if err != nil {
		return stored{}, err
	}

	if ref := value(u.ReferredBy); ref != "" && value(existing.ReferredBy) == "" {
		if err := tx.IncrementReferralCount(ctx, ref); err != nil {
			return stored{}, err
		}
	}

	updated := *existing
	updated.ClerkUserID = u.ClerkUserID
	updated.ReferredBy = referredBy
	return stored{
		outcome:    merged(),
		entry:      &updated,
		subscribe:  true,
		email:      u.Email,
		firstName:  u.FirstName,
		notifyKind: notification.KindMergedMember,
	}, nil
}

// storeWaitlistEntry handles waitlistEntry.created: idempotent by the derived
// clerk id or by email, otherwise insert without attribution.
func (i *Ingestor) storeWaitlistEntry(ctx context.Context, tx datastore.Interface, e clerk.WaitlistEntry) (stored, error) {
	clerkID := WaitlistClerkIDPrefix + e.ID

	if _, err := tx.GetWaitlistEntryByClerkID(ctx, clerkID); err == nil {
		return stored{outcome: idempotent()}, nil
	} else if !errors.IsNotFound(err) {
		return stored{}, err
	}
	if _, err := tx.GetWaitlistEntryByEmail(ctx, e.EmailAddress); err == nil {
		return stored{outcome: idempotent()}, nil
	} else if !errors.IsNotFound(err) {
		return stored{}, err
	}

	count, err := tx.CountWaitlistEntries(ctx)
	if err != nil {
		return stored{}, err
	}
	code, err := i.newCode()
	if err != nil {
		return stored{}, err
	}

	entry := &datastore.WaitlistEntry{
		ClerkUserID:      clerkID,
		Email:            e.EmailAddress,
		ReferralCode:     code,
		WaitlistPosition: int(count) + 1,
	}
	if err := tx.CreateWaitlistEntry(ctx, entry); err != nil {
		return stored{}, err
	}

	return stored{
		outcome:    entryCreated(),
		entry:      entry,
		count:      count + 1,
		subscribe:  true,
		email:      e.EmailAddress,
		notifyKind: notification.KindWaitlistEntry,
	}, nil
}

// afterCommit runs the best-effort side effects. Failures are logged and
// never change the outcome.
func (i *Ingestor) afterCommit(ctx context.Context, res stored) {
	if res.entry == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	log := i.log.WithContext(ctx)

	if res.count > 0 && i.stats != nil {
		i.stats.Invalidate()
	}

	if res.subscribe && i.subscriber != nil {
		result := i.subscriber.Subscribe(ctx, res.email, res.firstName)
		if result.OK {
			i.metrics.RecordSubscription("ok")
		} else {
			i.metrics.RecordSubscription(string(result.Reason))
			fields := []logger.Field{
				logger.String("reason", string(result.Reason)),
				logger.String("email", res.email),
			}
			if result.Err != nil {
				fields = append(fields, logger.Error(result.Err))
			}
			log.Warn("email subscription failed", fields...)
		}
	}

	if i.notifier == nil {
		return
	}
	signup := notification.Signup{
		Kind:         res.notifyKind,
		Email:        res.email,
		Position:     res.entry.WaitlistPosition,
		ReferralCode: res.entry.ReferralCode,
		ReferredBy:   value(res.entry.ReferredBy),
		Source:       value(res.entry.UTMSource),
	}
	if i.stats != nil && res.count > 0 {
		signup.Count = int(res.count)
		signup.Capacity = i.stats.Capacity()
	}
	if err := i.notifier.Notify(ctx, notification.SignupMessage(i.siteName, signup)); err != nil {
		i.metrics.RecordNotification(metrics.StatusError)
		log.Warn("operator notification failed", logger.Error(err))
		return
	}
	i.metrics.RecordNotification(metrics.StatusSuccess)
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
