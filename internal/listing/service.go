package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/steemit/topics/internal/models"
	"github.com/steemit/topics/pkg/logging"
	"github.com/steemit/topics/pkg/telemetry"
)

// ErrViewerRequired is returned for home listings without a viewer
var ErrViewerRequired = errors.New("a viewer is required for the home listing")

// GroupStore looks up the groups a viewer is subscribed to
type GroupStore interface {
	SubscribedGroups(ctx context.Context, userID int64) ([]models.Group, error)
}

// Request describes a listing as asked for by the caller. Order and Period
// fall back to the viewer's defaults when unset; PeriodSet distinguishes an
// explicit "all time" (nil Period) from no period at all.
type Request struct {
	Viewer     *models.User
	Group      *models.Group
	Order      *TopicSortOption
	Period     *Period
	PeriodSet  bool
	After      int64
	Before     int64
	PerPage    int
	Tag        string
	Unfiltered bool
}

// Result is a listing page with the settings it was built from
type Result struct {
	Topics          []AnnotatedTopic
	Page            *Page
	Order           TopicSortOption
	Period          *Period
	PeriodOptions   []Period
	IsDefaultPeriod bool
	IsDefaultView   bool
	Tag             string
	Unfiltered      bool
}

// Service builds topic listings for viewers
type Service struct {
	resolver *DefaultResolver
	pager    *Pager
	groups   GroupStore
	now      func() time.Time
	listings metric.Int64Counter
	logger   *zap.Logger
}

// NewService creates a new listing service. now may be nil to use the
// system clock.
func NewService(resolver *DefaultResolver, pager *Pager, groups GroupStore, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	listings, err := telemetry.Meter().Int64Counter(
		"topic_listings",
		metric.WithDescription("Number of topic listing pages built"),
	)
	if err != nil {
		logging.GetLogger().Warn("Failed to create listing counter", zap.Error(err))
	}

	return &Service{
		resolver: resolver,
		pager:    pager,
		groups:   groups,
		now:      now,
		listings: listings,
		logger:   logging.WithComponent("listing"),
	}
}

// Defaults resolves the viewer's default order and period for the request
func (s *Service) Defaults(ctx context.Context, req Request) (Defaults, error) {
	return s.resolver.Resolve(ctx, req.Viewer, Scope{Group: req.Group}, req.Order)
}

// ListTopics builds one page of a topic listing
func (s *Service) ListTopics(ctx context.Context, req Request) (*Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "listing.list_topics")
	defer span.End()

	groups, err := s.listingGroups(ctx, req)
	if err != nil {
		return nil, err
	}

	defaults, err := s.Defaults(ctx, req)
	if err != nil {
		return nil, err
	}

	order := defaults.Order
	if req.Order != nil {
		order = *req.Order
	}
	period := defaults.Period
	if req.PeriodSet {
		period = req.Period
	}

	result := &Result{
		Order:           order,
		Period:          period,
		PeriodOptions:   PeriodOptions(period),
		IsDefaultPeriod: SamePeriod(period, defaults.Period),
		IsDefaultView:   SamePeriod(period, defaults.Period) && order == defaults.Order,
		Tag:             req.Tag,
		Unfiltered:      req.Unfiltered,
	}

	if len(groups) == 0 {
		result.Page = &Page{PerPage: req.PerPage}
		result.Topics = []AnnotatedTopic{}
		return result, nil
	}

	query := NewTopicQuery(Context{Viewer: req.Viewer, Now: s.now}).
		InsideGroups(groups...).
		InsideTimePeriod(period).
		HasTag(req.Tag).
		ApplySortOption(order, true).
		After(req.After).
		Before(req.Before).
		AttachExtraData()

	// viewers' tag filters don't apply when looking at a single tag
	if req.Viewer != nil && req.Tag == "" && !req.Unfiltered {
		query = query.ExcludeTags(req.Viewer.FilteredTopicTags)
	}

	page, err := s.pager.GetPage(ctx, query, req.PerPage)
	if err != nil {
		return nil, err
	}

	result.Page = page
	result.Topics = AnnotateAll(page.Rows)

	if s.listings != nil {
		s.listings.Add(ctx, 1, metric.WithAttributes(
			attribute.String("order", order.String()),
			attribute.Bool("home", req.Group == nil),
			attribute.Bool("anonymous", req.Viewer == nil),
		))
	}

	s.logger.Debug("Built topic listing",
		zap.String("order", order.String()),
		zap.String("period", FormatPeriod(period)),
		zap.Int("topics", len(result.Topics)),
	)

	return result, nil
}

func (s *Service) listingGroups(ctx context.Context, req Request) ([]models.Group, error) {
	if req.Group != nil {
		return []models.Group{*req.Group}, nil
	}
	if req.Viewer == nil {
		return nil, ErrViewerRequired
	}

	groups, err := s.groups.SubscribedGroups(ctx, req.Viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscribed groups: %w", err)
	}
	return groups, nil
}
