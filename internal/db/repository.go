package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/steemit/topics/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID, with their filtered tags
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadFilteredTags(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username, with their filtered tags
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadFilteredTags(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user along with their filtered tags
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		for _, tag := range user.FilteredTopicTags {
			filtered := models.UserFilteredTag{UserID: user.ID, Tag: tag}
			if err := tx.Create(&filtered).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) loadFilteredTags(ctx context.Context, user *models.User) error {
	var tags []string
	if err := r.db.WithContext(ctx).
		Model(&models.UserFilteredTag{}).
		Where("user_id = ?", user.ID).
		Order("tag").
		Pluck("tag", &tags).Error; err != nil {
		return fmt.Errorf("failed to load filtered tags: %w", err)
	}
	user.FilteredTopicTags = tags
	return nil
}

// GroupRepository provides group-related database operations
type GroupRepository struct {
	*Repository
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(repo *Repository) *GroupRepository {
	return &GroupRepository{Repository: repo}
}

// GetByPath retrieves a group by its path
func (r *GroupRepository) GetByPath(ctx context.Context, path string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("path = ?", path).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// Subscribe subscribes a user to a group; subscribing twice is a no-op
func (r *GroupRepository) Subscribe(ctx context.Context, userID, groupID int64) error {
	sub := models.GroupSubscription{
		UserID:      userID,
		GroupID:     groupID,
		CreatedTime: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sub).Error
}

// SubscribedGroups returns the groups a user is subscribed to, ordered by path
func (r *GroupRepository) SubscribedGroups(ctx context.Context, userID int64) ([]models.Group, error) {
	var subs []models.GroupSubscription
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Where("user_id = ?", userID).
		Find(&subs).Error; err != nil {
		return nil, err
	}

	groups := make([]models.Group, 0, len(subs))
	for _, sub := range subs {
		if sub.Group != nil {
			groups = append(groups, *sub.Group)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Path < groups[j].Path })
	return groups, nil
}

// SettingsRepository provides access to per-group user settings
type SettingsRepository struct {
	*Repository
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(repo *Repository) *SettingsRepository {
	return &SettingsRepository{Repository: repo}
}

// GroupSettings returns a user's settings for a group, or nil if they have
// none
func (r *SettingsRepository) GroupSettings(ctx context.Context, userID, groupID int64) (*models.UserGroupSettings, error) {
	var settings models.UserGroupSettings
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

// Save creates or replaces a user's settings for a group
func (r *SettingsRepository) Save(ctx context.Context, settings *models.UserGroupSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(settings).Error
}

// TopicRepository provides topic-related database operations
type TopicRepository struct {
	*Repository
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(repo *Repository) *TopicRepository {
	return &TopicRepository{Repository: repo}
}

// GetByID retrieves a topic by ID
func (r *TopicRepository) GetByID(ctx context.Context, id int64) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &topic, nil
}

// Create creates a new topic along with its tags
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(topic).Error; err != nil {
			return err
		}
		for _, tag := range topic.Tags {
			topicTag := models.TopicTag{TopicID: topic.ID, Tag: tag}
			if err := tx.Create(&topicTag).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// VisitRepository provides topic visit operations
type VisitRepository struct {
	*Repository
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(repo *Repository) *VisitRepository {
	return &VisitRepository{Repository: repo}
}

// RecordVisit stores a user's visit to a topic, replacing any earlier one.
// The topic's current comment count is snapshotted with the visit.
func (r *VisitRepository) RecordVisit(ctx context.Context, userID int64, topic *models.Topic, visitTime time.Time) error {
	visit := models.TopicVisit{
		UserID:      userID,
		TopicID:     topic.ID,
		VisitTime:   visitTime.UTC(),
		NumComments: topic.NumComments,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "topic_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"visit_time", "num_comments"}),
		}).
		Create(&visit).Error
}

// GetVisit retrieves a user's last visit to a topic
func (r *VisitRepository) GetVisit(ctx context.Context, userID, topicID int64) (*models.TopicVisit, error) {
	var visit models.TopicVisit
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		First(&visit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

// DeleteOlderThan removes visits made before cutoff and returns how many
// were deleted
func (r *VisitRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("visit_time < ?", cutoff.UTC()).
		Delete(&models.TopicVisit{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
