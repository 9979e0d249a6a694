// model.go: gorm models of the waitlist tables
package datastore

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// WaitlistEntry is one person on the founding-member waitlist.
type WaitlistEntry struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	ClerkUserID      string    `gorm:"uniqueIndex;size:191;not null" json:"clerk_user_id"`
	Email            string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FullName         *string   `gorm:"size:255" json:"full_name"`
	ReferralCode     string    `gorm:"uniqueIndex;size:32;not null" json:"referral_code"`
	ReferredBy       *string   `gorm:"index;size:32" json:"referred_by"`
	ReferralCount    int       `gorm:"not null;default:0" json:"referral_count"`
	UTMSource        *string   `gorm:"column:utm_source;size:255" json:"utm_source"`
	UTMMedium        *string   `gorm:"column:utm_medium;size:255" json:"utm_medium"`
	UTMCampaign      *string   `gorm:"column:utm_campaign;size:255" json:"utm_campaign"`
	JoinedAt         time.Time `gorm:"not null;index" json:"joined_at"`
	WaitlistPosition int       `gorm:"not null" json:"waitlist_position"`
}

// TableName keeps the table name stable across naming strategies.
func (WaitlistEntry) TableName() string { return "waitlist_entries" }

// BeforeCreate assigns the id and join time.
func (e *WaitlistEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.JoinedAt.IsZero() {
		e.JoinedAt = time.Now().UTC()
	}
	return nil
}

// AnalyticsEvent is a client-side event such as a section view.
type AnalyticsEvent struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Event     string    `gorm:"size:128;not null;index" json:"event"`
	Section   *string   `gorm:"size:128" json:"section"`
	Locale    string    `gorm:"size:8;not null;default:en" json:"locale"`
	Metadata  JSONMap   `json:"metadata"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName keeps the table name stable across naming strategies.
func (AnalyticsEvent) TableName() string { return "analytics_events" }

// BeforeCreate assigns the id and default locale.
func (e *AnalyticsEvent) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Locale == "" {
		e.Locale = "en"
	}
	return nil
}

// MergeFields are the columns a signup webhook may update on an existing entry.
type MergeFields struct {
	ClerkUserID string
	FullName    *string
	ReferredBy  *string
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	// PreviousClerkUserID, when set, makes the update conditional on the row
	// still carrying this clerk id.
	PreviousClerkUserID string
}

// EventCount is an aggregated analytics row.
type EventCount struct {
	Event   string `json:"event"`
	Section string `json:"section"`
	Locale  string `json:"locale"`
	Count   int64  `gorm:"column:event_count" json:"count"`
}

// AnalyticsFilter narrows CountAnalyticsEvents.
type AnalyticsFilter struct {
	Event string    // empty for all events
	Since time.Time // zero for no lower bound
}

// JSONMap is a JSON object column, nullable when the map is nil.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	*m = out
	return nil
}

// GormDataType implements schema.GormDataTypeInterface.
func (JSONMap) GormDataType() string { return "json" }

// GormDBDataType picks the native JSON column type of each dialect.
func (JSONMap) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Name() {
	case "postgres":
		return "JSONB"
	case "mysql":
		return "JSON"
	default:
		return "TEXT"
	}
}
