// interfaces.go: the waitlist store interface and its gorm implementation
package datastore

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// Interface abstracts the database backend used by the waitlist funnel.
type Interface interface {
	Open() error
	Close() error
	Ping(ctx context.Context) error

	CountWaitlistEntries(ctx context.Context) (int64, error)
	GetWaitlistEntryByClerkID(ctx context.Context, clerkUserID string) (*WaitlistEntry, error)
	GetWaitlistEntryByEmail(ctx context.Context, email string) (*WaitlistEntry, error)
	GetWaitlistEntryByReferralCode(ctx context.Context, code string) (*WaitlistEntry, error)
	CreateWaitlistEntry(ctx context.Context, entry *WaitlistEntry) error
	MergeWaitlistEntry(ctx context.Context, id string, fields MergeFields) error
	IncrementReferralCount(ctx context.Context, code string) error

	SaveAnalyticsEvent(ctx context.Context, event *AnalyticsEvent) error
	CountAnalyticsEvents(ctx context.Context, filter AnalyticsFilter) ([]EventCount, error)

	// Transaction runs fn against a store bound to one database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Interface) error) error
}

// DataStore implements Interface on a gorm database.
type DataStore struct {
	DB     *gorm.DB
	Logger logger.Logger
}

// New returns the store selected by settings, or nil when no backend is enabled.
// PostgreSQL wins over MySQL, which wins over SQLite.
func New(settings *conf.Settings, log logger.Logger) Interface {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.Module("datastore")
	base := DataStore{Logger: log}

	switch {
	case settings.Database.Postgres.Enabled:
		return &PostgresStore{DataStore: base, Settings: settings}
	case settings.Database.MySQL.Enabled:
		return &MySQLStore{DataStore: base, Settings: settings}
	case settings.Database.SQLite.Enabled:
		return &SQLiteStore{DataStore: base, Settings: settings}
	default:
		return nil
	}
}

// Open is implemented by the backend stores.
func (ds *DataStore) Open() error {
	return dbError(stderrors.New("no database backend configured"), "open", errors.PriorityHigh)
}

// Close closes the underlying connection pool.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close", errors.PriorityLow)
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close", errors.PriorityLow)
	}
	return nil
}

// Ping checks the database connection.
func (ds *DataStore) Ping(ctx context.Context) error {
	if ds.DB == nil {
		return dbError(stderrors.New("database connection is not initialized"), "ping", errors.PriorityHigh)
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "ping", errors.PriorityHigh)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dbError(err, "ping", errors.PriorityHigh)
	}
	return nil
}

// CountWaitlistEntries returns the number of waitlist rows.
func (ds *DataStore) CountWaitlistEntries(ctx context.Context) (int64, error) {
	var count int64
	if err := ds.DB.WithContext(ctx).Model(&WaitlistEntry{}).Count(&count).Error; err != nil {
		return 0, dbError(err, "count_waitlist_entries", errors.PriorityMedium)
	}
	return count, nil
}

// GetWaitlistEntryByClerkID looks an entry up by identity-provider user id.
func (ds *DataStore) GetWaitlistEntryByClerkID(ctx context.Context, clerkUserID string) (*WaitlistEntry, error) {
	return ds.findEntry(ctx, "clerk_user_id", clerkUserID)
}

// GetWaitlistEntryByEmail looks an entry up by email address.
func (ds *DataStore) GetWaitlistEntryByEmail(ctx context.Context, email string) (*WaitlistEntry, error) {
	return ds.findEntry(ctx, "email", email)
}

// GetWaitlistEntryByReferralCode looks an entry up by its referral code.
func (ds *DataStore) GetWaitlistEntryByReferralCode(ctx context.Context, code string) (*WaitlistEntry, error) {
	return ds.findEntry(ctx, "referral_code", code)
}

func (ds *DataStore) findEntry(ctx context.Context, column, value string) (*WaitlistEntry, error) {
	var entry WaitlistEntry
	err := ds.DB.WithContext(ctx).Where(column+" = ?", value).Take(&entry).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("datastore", "no waitlist entry with %s %q", column, value)
		}
		return nil, dbError(err, "find_waitlist_entry", errors.PriorityMedium, "column", column)
	}
	return &entry, nil
}

// CreateWaitlistEntry inserts a new entry. A duplicate clerk id, email or
// referral code yields a conflict error.
func (ds *DataStore) CreateWaitlistEntry(ctx context.Context, entry *WaitlistEntry) error {
	if entry == nil {
		return validationError("waitlist entry is nil", "entry", nil)
	}
	entry.Email = strings.TrimSpace(entry.Email)
	if entry.Email == "" || entry.ClerkUserID == "" || entry.ReferralCode == "" {
		return validationError("waitlist entry requires clerk user id, email and referral code", "entry", entry.ClerkUserID)
	}
	if err := ds.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return classifyWriteError(err, "create_waitlist_entry", "clerk_user_id", entry.ClerkUserID)
	}
	return nil
}

// MergeWaitlistEntry updates an existing entry with signup data. Nil pointer
// fields are written as NULL, matching an upsert of the full signup record.
func (ds *DataStore) MergeWaitlistEntry(ctx context.Context, id string, fields MergeFields) error {
	updates := map[string]any{
		"clerk_user_id": fields.ClerkUserID,
		"full_name":     fields.FullName,
		"referred_by":   fields.ReferredBy,
		"utm_source":    fields.UTMSource,
		"utm_medium":    fields.UTMMedium,
		"utm_campaign":  fields.UTMCampaign,
	}
	query := ds.DB.WithContext(ctx).Model(&WaitlistEntry{}).Where("id = ?", id)
	if fields.PreviousClerkUserID != "" {
		query = query.Where("clerk_user_id = ?", fields.PreviousClerkUserID)
	}
	result := query.Updates(updates)
	if result.Error != nil {
		return classifyWriteError(result.Error, "merge_waitlist_entry", "id", id)
	}
	if result.RowsAffected == 0 {
		if fields.PreviousClerkUserID != "" {
			// Another transaction linked the row after it was read.
			return conflictError(errors.NewStd("waitlist entry was linked concurrently"),
				"merge_waitlist_entry", "id", id)
		}
		return errors.NotFound("datastore", "no waitlist entry with id %q", id)
	}
	return nil
}

// IncrementReferralCount adds one to the referral count of the entry owning
// code. Unknown codes are not an error; the referrer may have been removed.
func (ds *DataStore) IncrementReferralCount(ctx context.Context, code string) error {
	result := ds.DB.WithContext(ctx).Model(&WaitlistEntry{}).
		Where("referral_code = ?", code).
		UpdateColumn("referral_count", gorm.Expr("referral_count + ?", 1))
	if result.Error != nil {
		return dbError(result.Error, "increment_referral_count", errors.PriorityMedium, "referral_code", code)
	}
	if result.RowsAffected == 0 {
		ds.Logger.Debug("referral code not found, count unchanged", logger.String("referral_code", code))
	}
	return nil
}

// SaveAnalyticsEvent inserts a client event.
func (ds *DataStore) SaveAnalyticsEvent(ctx context.Context, event *AnalyticsEvent) error {
	if event == nil || strings.TrimSpace(event.Event) == "" {
		return validationError("analytics event name is required", "event", nil)
	}
	if err := ds.DB.WithContext(ctx).Create(event).Error; err != nil {
		return dbError(err, "save_analytics_event", errors.PriorityLow, "event", event.Event)
	}
	return nil
}

// CountAnalyticsEvents aggregates events by name, section and locale.
func (ds *DataStore) CountAnalyticsEvents(ctx context.Context, filter AnalyticsFilter) ([]EventCount, error) {
	query := ds.DB.WithContext(ctx).Model(&AnalyticsEvent{}).
		Select("event, COALESCE(section, '') AS section, locale, COUNT(*) AS event_count").
		Group("event, section, locale").
		Order("event_count DESC, event, section, locale")
	if filter.Event != "" {
		query = query.Where("event = ?", filter.Event)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since.UTC())
	}

	var rows []EventCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, dbError(err, "count_analytics_events", errors.PriorityLow)
	}
	return rows, nil
}

// Transaction runs fn inside a database transaction.
func (ds *DataStore) Transaction(ctx context.Context, fn func(tx Interface) error) error {
	start := time.Now()
	err := ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{DataStore: DataStore{DB: tx, Logger: ds.Logger}})
	})
	if err != nil {
		ds.Logger.Debug("transaction rolled back",
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return err
	}
	return nil
}

// txStore is the view of a store inside a transaction. Nested transactions
// use savepoints; connection management is owned by the parent store.
type txStore struct {
	DataStore
}

func (t *txStore) Open() error  { return nil }
func (t *txStore) Close() error { return nil }

// gormConfig is shared by every backend.
func (ds *DataStore) gormConfig(settings *conf.Settings) *gorm.Config {
	threshold := settings.Database.SlowQueryThreshold
	if threshold <= 0 {
		threshold = DefaultSlowQueryThreshold
	}
	return &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(ds.Logger, threshold),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// DefaultSlowQueryThreshold is the duration after which a statement is logged as slow.
const DefaultSlowQueryThreshold = 500 * time.Millisecond

func (ds *DataStore) String() string {
	if ds.DB == nil {
		return "datastore(closed)"
	}
	return fmt.Sprintf("datastore(%s)", ds.DB.Name())
}
