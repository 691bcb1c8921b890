package domain

import "time"

// Notification is a journaled user-facing notice, persisted when the gateway
// surfaces a warning or error through the notification sink.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Level: info|success|warning|error.
//   - Message: the user-facing text that was shown.
//   - Status / Code: the normalized failure status and code, when any.
//   - RequestID: correlation id of the inbound request, when any (indexed).
//   - CreatedAt: indexed for newest-first listing.
type Notification struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Level     string    `json:"level"      gorm:"type:varchar(16);not null;index:idx_notifications_level;check:level IN ('info','success','warning','error')"`
	Message   string    `json:"message"    gorm:"type:text;not null"`
	Status    int       `json:"status"`
	Code      string    `json:"code,omitempty"       gorm:"type:varchar(64)"`
	RequestID string    `json:"request_id,omitempty" gorm:"type:varchar(64);index:idx_notifications_request"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_notifications_created"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }
