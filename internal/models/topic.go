package models

import (
	"time"
)

// Topic represents a topic posted in a group
type Topic struct {
	ID               int64     `gorm:"primaryKey;autoIncrement;column:topic_id"`
	GroupID          int64     `gorm:"not null;index;column:group_id"`
	UserID           int64     `gorm:"not null;index;column:user_id"`
	Title            string    `gorm:"type:varchar(200);not null;column:title"`
	Link             string    `gorm:"type:text;not null;default:'';column:link"`
	CreatedTime      time.Time `gorm:"not null;index;column:created_time"`
	LastActivityTime time.Time `gorm:"not null;index;column:last_activity_time"`
	NumVotes         int       `gorm:"not null;default:0;index;column:num_votes"`
	NumComments      int       `gorm:"not null;default:0;index;column:num_comments"`
	IsPinned         bool      `gorm:"not null;default:false;column:is_pinned"`
	IsLocked         bool      `gorm:"not null;default:false;column:is_locked"`
	IsDeleted        bool      `gorm:"not null;default:false;index;column:is_deleted"`
	IsRemoved        bool      `gorm:"not null;default:false;index;column:is_removed"`

	// Tags are stored in topic_tags and loaded alongside a page of topics
	Tags []string `gorm:"-"`
}

// TableName specifies the table name for Topic
func (Topic) TableName() string {
	return "topics"
}

// TopicTag represents a topic-to-tag mapping. Tags are dot separated paths,
// "a.b" being a descendant of "a".
type TopicTag struct {
	TopicID int64  `gorm:"primaryKey;column:topic_id"`
	Tag     string `gorm:"type:varchar(64);primaryKey;column:tag"`
}

// TableName specifies the table name for TopicTag
func (TopicTag) TableName() string {
	return "topic_tags"
}
