package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/steemit/topics/internal/models"
)

// Fallback periods used when neither group nor viewer settings pick one
var (
	ActivityDefaultPeriod = Hours(72)
	OtherDefaultPeriod    = Hours(24)
)

// ErrInvalidSettings is returned when a stored default can't be decoded
var ErrInvalidSettings = errors.New("invalid stored listing settings")

// SettingsStore looks up a viewer's settings for a single group. It returns
// nil, nil when the viewer has none.
type SettingsStore interface {
	GroupSettings(ctx context.Context, userID, groupID int64) (*models.UserGroupSettings, error)
}

// Scope is the set of groups a listing covers. A nil Group means the
// viewer's subscribed groups (the home page).
type Scope struct {
	Group *models.Group
}

// Defaults is the order and period a listing shows when the request
// doesn't specify them. A nil Period means all time.
type Defaults struct {
	Order  TopicSortOption
	Period *Period
}

// DefaultResolver works out a viewer's default listing settings
type DefaultResolver struct {
	store SettingsStore
}

// NewDefaultResolver creates a new resolver
func NewDefaultResolver(store SettingsStore) *DefaultResolver {
	return &DefaultResolver{store: store}
}

// settingsLayer is one tier of stored settings, most specific first
type settingsLayer struct {
	order  sql.NullString
	period sql.NullString
}

// firstSet returns the value of field from the first layer that has it set
func firstSet(layers []settingsLayer, field func(settingsLayer) sql.NullString) (string, bool) {
	for _, layer := range layers {
		if value := field(layer); value.Valid && value.String != "" {
			return value.String, true
		}
	}
	return "", false
}

// Resolve returns the default order and period for the viewer. explicit is
// the order requested by the caller, if any: the default period depends on
// the order that will actually be shown.
func (r *DefaultResolver) Resolve(ctx context.Context, viewer *models.User, scope Scope, explicit *TopicSortOption) (Defaults, error) {
	layers, err := r.layers(ctx, viewer, scope)
	if err != nil {
		return Defaults{}, err
	}

	defaults := Defaults{Order: DefaultSortOption}
	if raw, ok := firstSet(layers, func(l settingsLayer) sql.NullString { return l.order }); ok {
		order, err := ParseTopicSortOption(raw)
		if err != nil {
			return Defaults{}, fmt.Errorf("%w: default order: %w", ErrInvalidSettings, err)
		}
		defaults.Order = order
	}

	order := defaults.Order
	if explicit != nil {
		order = *explicit
	}

	if raw, ok := firstSet(layers, func(l settingsLayer) sql.NullString { return l.period }); ok {
		period, err := ParsePeriod(raw)
		if err != nil {
			return Defaults{}, fmt.Errorf("%w: default period: %w", ErrInvalidSettings, err)
		}
		defaults.Period = period
		return defaults, nil
	}

	period, err := fallbackPeriod(order)
	if err != nil {
		return Defaults{}, err
	}
	defaults.Period = period

	return defaults, nil
}

func (r *DefaultResolver) layers(ctx context.Context, viewer *models.User, scope Scope) ([]settingsLayer, error) {
	if viewer == nil {
		return nil, nil
	}

	var layers []settingsLayer
	if scope.Group != nil && r.store != nil {
		settings, err := r.store.GroupSettings(ctx, viewer.ID, scope.Group.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load group settings: %w", err)
		}
		if settings != nil {
			layers = append(layers, settingsLayer{order: settings.DefaultOrder, period: settings.DefaultPeriod})
		}
	}

	return append(layers, settingsLayer{order: viewer.HomeDefaultOrder, period: viewer.HomeDefaultPeriod}), nil
}

// fallbackPeriod is all time when sorting by new, 3 days for activity and a
// day for everything else
func fallbackPeriod(order TopicSortOption) (*Period, error) {
	switch order {
	case SortNew:
		return nil, nil
	case SortActivity:
		p := ActivityDefaultPeriod
		return &p, nil
	case SortVotes, SortComments:
		p := OtherDefaultPeriod
		return &p, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSortOption, int(order))
	}
}
