package topics

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/steemit/topics/internal/api/objects"
	"github.com/steemit/topics/internal/cache"
	"github.com/steemit/topics/internal/db"
	"github.com/steemit/topics/internal/listing"
	"github.com/steemit/topics/internal/models"
	"github.com/steemit/topics/pkg/config"
	"github.com/steemit/topics/pkg/logging"
)

// API provides the topics.* JSON-RPC methods
type API struct {
	service *listing.Service
	users   *db.UserRepository
	groups  *db.GroupRepository
	topics  *db.TopicRepository
	visits  *db.VisitRepository
	cache   *cache.Cache
	cfg     config.ListingConfig
	now     func() time.Time
}

// NewAPI creates a new topics API. redisCache may be nil.
func NewAPI(repo *db.Repository, service *listing.Service, redisCache *cache.Cache, cfg config.ListingConfig) *API {
	return &API{
		service: service,
		users:   db.NewUserRepository(repo),
		groups:  db.NewGroupRepository(repo),
		topics:  db.NewTopicRepository(repo),
		visits:  db.NewVisitRepository(repo),
		cache:   redisCache,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetGroupTopics handles topics.get_group_topics
func (a *API) GetGroupTopics(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p listingParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Group == "" {
		return nil, invalidParams("missing required parameter: group")
	}

	group, err := a.groups.GetByPath(ctx.Request.Context(), p.Group)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, notFound("group %s", p.Group)
	}

	return a.listTopics(ctx, "get_group_topics", p, group)
}

// GetHomeTopics handles topics.get_home_topics, the listing of the
// observer's subscribed groups
func (a *API) GetHomeTopics(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p listingParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Observer == "" {
		return nil, invalidParams("missing required parameter: observer")
	}

	return a.listTopics(ctx, "get_home_topics", p, nil)
}

func (a *API) listTopics(ctx *gin.Context, method string, p listingParams, group *models.Group) (interface{}, error) {
	logger := logging.WithRequestID(ctx.GetString(logging.RequestIDKey))

	req, err := p.request(a.cfg)
	if err != nil {
		return nil, err
	}
	req.Group = group

	viewer, err := a.observer(ctx, p.Observer)
	if err != nil {
		return nil, err
	}
	req.Viewer = viewer

	// only anonymous listings are the same for everyone
	cacheable := viewer == nil && a.cfg.CacheAnonymous && a.cache != nil
	var cacheKey string
	if cacheable {
		cacheKey = cache.HashKey(p.cacheKey(method, req)...)
		var cached map[string]interface{}
		err := a.cache.GetJSON(ctx.Request.Context(), cacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("Failed to read listing cache", zap.Error(err))
		}
	}

	result, err := a.service.ListTopics(ctx.Request.Context(), req)
	if err != nil {
		return nil, err
	}
	obj := objects.ListingObject(result)

	if cacheable {
		if err := a.cache.SetJSON(ctx.Request.Context(), cacheKey, obj, listingCacheTTL(result.Order)); err != nil {
			logger.Warn("Failed to cache listing", zap.Error(err))
		}
	}

	return obj, nil
}

// listingCacheTTL is shortest for the orders that change fastest
func listingCacheTTL(order listing.TopicSortOption) time.Duration {
	switch order {
	case listing.SortNew:
		return 10 * time.Second
	case listing.SortActivity:
		return 30 * time.Second
	case listing.SortVotes, listing.SortComments:
		return 60 * time.Second
	default:
		return 10 * time.Second
	}
}

// RecordVisit handles topics.record_visit. Visits are only kept for
// observers tracking their comment visits.
func (a *API) RecordVisit(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p visitParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Observer == "" {
		return nil, invalidParams("missing required parameter: observer")
	}
	topicID, err := listing.ParseID36(p.TopicID36)
	if err != nil || topicID == 0 {
		return nil, invalidParams("invalid topic_id36 %q", p.TopicID36)
	}

	viewer, err := a.observer(ctx, p.Observer)
	if err != nil {
		return nil, err
	}

	topic, err := a.topics.GetByID(ctx.Request.Context(), topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil || topic.IsDeleted || topic.IsRemoved {
		return nil, notFound("topic %s", p.TopicID36)
	}

	if !viewer.TrackCommentVisits {
		return gin.H{"recorded": false}, nil
	}

	visitTime := a.now()
	if err := a.visits.RecordVisit(ctx.Request.Context(), viewer.ID, topic, visitTime); err != nil {
		return nil, err
	}

	return gin.H{
		"recorded":     true,
		"topic_id36":   listing.ID36(topic.ID),
		"visit_time":   visitTime.UTC().Format(time.RFC3339),
		"num_comments": topic.NumComments,
	}, nil
}

// GetDefaultSettings handles topics.get_default_settings
func (a *API) GetDefaultSettings(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p settingsParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	var req listing.Request
	if p.Order != "" {
		order, err := listing.ParseTopicSortOption(p.Order)
		if err != nil {
			return nil, err
		}
		req.Order = &order
	}

	if p.Group != "" {
		group, err := a.groups.GetByPath(ctx.Request.Context(), p.Group)
		if err != nil {
			return nil, err
		}
		if group == nil {
			return nil, notFound("group %s", p.Group)
		}
		req.Group = group
	}

	viewer, err := a.observer(ctx, p.Observer)
	if err != nil {
		return nil, err
	}
	req.Viewer = viewer

	defaults, err := a.service.Defaults(ctx.Request.Context(), req)
	if err != nil {
		return nil, err
	}
	return objects.DefaultsObject(defaults), nil
}

// observer loads the named user; an empty name is an anonymous viewer
func (a *API) observer(ctx *gin.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, nil
	}
	user, err := a.users.GetByUsername(ctx.Request.Context(), username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("observer %s", username)
	}
	return user, nil
}
