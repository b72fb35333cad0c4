package models

import (
	"time"
)

// TopicVote records that a user voted on a topic
type TopicVote struct {
	TopicID     int64     `gorm:"primaryKey;column:topic_id"`
	UserID      int64     `gorm:"primaryKey;index;column:user_id"`
	CreatedTime time.Time `gorm:"not null;column:created_time"`
}

// TableName specifies the table name for TopicVote
func (TopicVote) TableName() string {
	return "topic_votes"
}

// TopicVisit is a user's last visit to a topic. NumComments is the topic's
// comment count at the time of that visit.
type TopicVisit struct {
	UserID      int64     `gorm:"primaryKey;column:user_id"`
	TopicID     int64     `gorm:"primaryKey;index;column:topic_id"`
	VisitTime   time.Time `gorm:"not null;index;column:visit_time"`
	NumComments int       `gorm:"not null;column:num_comments"`
}

// TableName specifies the table name for TopicVisit
func (TopicVisit) TableName() string {
	return "topic_visits"
}

// AllModels lists every model managed by AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&Group{},
		&GroupSubscription{},
		&User{},
		&UserFilteredTag{},
		&UserGroupSettings{},
		&Topic{},
		&TopicTag{},
		&TopicVote{},
		&TopicVisit{},
	}
}
