package models

import (
	"database/sql"
	"time"
)

// User represents a registered user. Listing defaults are stored in the same
// short forms accepted from requests: sort option names ("activity") and
// periods ("72h", "3d", "all").
type User struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement;column:user_id"`
	Username           string         `gorm:"type:varchar(20);not null;uniqueIndex:users_username_ux1;column:username"`
	CreatedTime        time.Time      `gorm:"not null;column:created_time"`
	TrackCommentVisits bool           `gorm:"not null;default:false;column:track_comment_visits"`
	HomeDefaultOrder   sql.NullString `gorm:"type:varchar(16);column:home_default_order"`
	HomeDefaultPeriod  sql.NullString `gorm:"type:varchar(16);column:home_default_period"`

	// Loaded from user_filtered_tags
	FilteredTopicTags []string `gorm:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// UserFilteredTag is a tag a user wants hidden from unfiltered listings
type UserFilteredTag struct {
	UserID int64  `gorm:"primaryKey;column:user_id"`
	Tag    string `gorm:"type:varchar(64);primaryKey;column:tag"`
}

// TableName specifies the table name for UserFilteredTag
func (UserFilteredTag) TableName() string {
	return "user_filtered_tags"
}

// UserGroupSettings holds a user's per-group overrides of their listing
// defaults
type UserGroupSettings struct {
	UserID        int64          `gorm:"primaryKey;column:user_id"`
	GroupID       int64          `gorm:"primaryKey;column:group_id"`
	DefaultOrder  sql.NullString `gorm:"type:varchar(16);column:default_order"`
	DefaultPeriod sql.NullString `gorm:"type:varchar(16);column:default_period"`
}

// TableName specifies the table name for UserGroupSettings
func (UserGroupSettings) TableName() string {
	return "user_group_settings"
}
