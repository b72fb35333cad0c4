package models

import (
	"time"
)

// Group represents a group topics are posted in. Groups nest through their
// dot separated path: "hobbies.music" is a subgroup of "hobbies".
type Group struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:group_id"`
	Path        string    `gorm:"type:varchar(255);not null;uniqueIndex:topic_groups_path_ux1;column:path"`
	Description string    `gorm:"type:varchar(200);not null;default:'';column:description"`
	CreatedTime time.Time `gorm:"not null;column:created_time"`
}

// TableName specifies the table name for Group
func (Group) TableName() string {
	return "topic_groups"
}

// GroupSubscription represents a user's subscription to a group
type GroupSubscription struct {
	UserID      int64     `gorm:"primaryKey;column:user_id"`
	GroupID     int64     `gorm:"primaryKey;column:group_id"`
	CreatedTime time.Time `gorm:"not null;column:created_time"`

	// Relationships
	Group *Group `gorm:"foreignKey:GroupID;references:ID"`
}

// TableName specifies the table name for GroupSubscription
func (GroupSubscription) TableName() string {
	return "group_subscriptions"
}
