// Package analytics records page views for the public products pages.
package analytics

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PageView is one recorded visit.
type PageView struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	OrgID     int64     `gorm:"column:org_id;not null;index:idx_page_views_org_created,priority:1" json:"org_id,string"`
	Path      string    `gorm:"type:text;not null" json:"path"`
	Referrer  string    `gorm:"type:text;not null;default:''" json:"referrer"`
	UserAgent string    `gorm:"column:user_agent;type:text;not null;default:''" json:"user_agent"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_page_views_org_created,priority:2" json:"created_at"`
}

// TableName sets the database table name.
func (PageView) TableName() string { return "page_views" }

type Recorder struct {
	log   *zap.Logger
	db    *gorm.DB
	genID *snowflake.Node
}

func NewRecorder(log *zap.Logger, db *gorm.DB, genID *snowflake.Node) *Recorder {
	return &Recorder{
		log:   log.Named("analytics"),
		db:    db,
		genID: genID,
	}
}

// Record stores a page view asynchronously. Failures are logged, never
// surfaced; a lost view must not affect the request.
func (r *Recorder) Record(orgID int64, path, referrer, userAgent string) {
	if orgID == 0 || path == "" {
		return
	}
	view := PageView{
		ID:        r.genID.Generate().Int64(),
		OrgID:     orgID,
		Path:      path,
		Referrer:  referrer,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.db.WithContext(ctx).Create(&view).Error; err != nil {
			r.log.Warn("failed to record page view", zap.Error(err))
		}
	}()
}

// Count returns page views for an organization within an optional range.
func (r *Recorder) Count(ctx context.Context, orgID int64, since, until *time.Time) (int64, error) {
	stmt := r.db.WithContext(ctx).Model(&PageView{}).Where("org_id = ?", orgID)
	if since != nil {
		stmt = stmt.Where("created_at >= ?", *since)
	}
	if until != nil {
		stmt = stmt.Where("created_at <= ?", *until)
	}
	var count int64
	err := stmt.Count(&count).Error
	return count, err
}
