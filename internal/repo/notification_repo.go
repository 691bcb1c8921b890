package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// RecordNotification inserts n. A blank ID gets a fresh UUID and a zero
// CreatedAt is set to now (UTC).
func RecordNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(n).Error
}

// NotificationFilter narrows journal queries. Zero values match everything.
type NotificationFilter struct {
	Level     string
	RequestID string
}

func (f NotificationFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}
	if f.RequestID != "" {
		q = q.Where("request_id = ?", f.RequestID)
	}
	return q
}

// CountNotifications returns the number of journaled notifications matching f.
func CountNotifications(ctx context.Context, db *gorm.DB, f NotificationFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Notification{})).
		Count(&total).Error
	return total, err
}

// ListNotificationsPage returns notifications matching f, newest first.
// The caller computes offset and limit (e.g., (page-1)*pageSize).
func ListNotificationsPage(ctx context.Context, db *gorm.DB, f NotificationFilter, offset, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := f.apply(db.WithContext(ctx)).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetNotification fetches one notification by ID, or ErrNotFound.
func GetNotification(ctx context.Context, db *gorm.DB, id string) (*domain.Notification, error) {
	var n domain.Notification
	if err := db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// PruneNotifications deletes notifications created before cutoff and returns
// how many were removed.
func PruneNotifications(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}

// Journal adapts the package functions to a bound *gorm.DB.
type Journal struct {
	DB *gorm.DB
}

// Record implements notify.Journal.
func (j Journal) Record(ctx context.Context, n *domain.Notification) error {
	return RecordNotification(ctx, j.DB, n)
}

// Page returns one page of notifications and the total matching f.
func (j Journal) Page(ctx context.Context, f NotificationFilter, offset, limit int) ([]domain.Notification, int64, error) {
	total, err := CountNotifications(ctx, j.DB, f)
	if err != nil {
		return nil, 0, err
	}
	items, err := ListNotificationsPage(ctx, j.DB, f, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns one notification by ID, or ErrNotFound.
func (j Journal) Get(ctx context.Context, id string) (*domain.Notification, error) {
	return GetNotification(ctx, j.DB, id)
}
