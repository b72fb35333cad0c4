package listing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/steemit/topics/internal/models"
	"github.com/steemit/topics/pkg/logging"
	"github.com/steemit/topics/pkg/telemetry"
)

// Page is one page of results from a TopicQuery, in display order
type Page struct {
	Rows        []Row
	PerPage     int
	HasNextPage bool
	HasPrevPage bool
}

// NextAfter returns the anchor for the following page
func (p *Page) NextAfter() string {
	if !p.HasNextPage || len(p.Rows) == 0 {
		return ""
	}
	return ID36(p.Rows[len(p.Rows)-1].Topic.ID)
}

// PrevBefore returns the anchor for the preceding page
func (p *Page) PrevBefore() string {
	if !p.HasPrevPage || len(p.Rows) == 0 {
		return ""
	}
	return ID36(p.Rows[0].Topic.ID)
}

// Pager executes topic queries one page at a time using keyset pagination
// on the sort column and topic id
type Pager struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPager creates a new pager
func NewPager(database *gorm.DB) *Pager {
	return &Pager{
		db:     database,
		logger: logging.WithComponent("pager"),
	}
}

// GetPage fetches a page worth of results from the query
func (p *Pager) GetPage(ctx context.Context, q *TopicQuery, perPage int) (*Page, error) {
	ctx, span := telemetry.StartSpan(ctx, "listing.get_page")
	defer span.End()

	if err := q.Err(); err != nil {
		return nil, err
	}
	if perPage <= 0 {
		return nil, fmt.Errorf("per page must be positive, got %d", perPage)
	}

	column, err := q.SortOption().column()
	if err != nil {
		return nil, err
	}

	// a reversed query sorts in the opposite direction
	desc := q.SortDescending() != q.IsReversed()
	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	tx := q.Scope(p.db.WithContext(ctx)).
		Order(column + " " + direction).
		Order(TieBreakColumn + " " + direction)

	tx, found, err := p.applyAnchor(ctx, tx, q, column)
	if err != nil {
		return nil, err
	}

	page := &Page{
		PerPage:     perPage,
		HasNextPage: q.BeforeID() != 0,
		HasPrevPage: q.AfterID() != 0,
	}
	if !found {
		page.HasNextPage = false
		page.HasPrevPage = false
		return page, nil
	}

	// one extra result tells us whether there's another page
	rows, err := p.fetchRows(tx.Limit(perPage+1), q.HasExtraData())
	if err != nil {
		return nil, err
	}

	if len(rows) > perPage {
		rows = rows[:perPage]
		if q.IsReversed() {
			page.HasPrevPage = true
		} else {
			page.HasNextPage = true
		}
	}

	if q.IsReversed() {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	if len(rows) == 0 {
		page.HasNextPage = false
		page.HasPrevPage = false
	}

	if err := p.loadTags(ctx, rows); err != nil {
		return nil, err
	}
	page.Rows = rows

	p.logger.Debug("Fetched topic page",
		zap.String("sort", q.SortOption().String()),
		zap.Int("rows", len(rows)),
		zap.Bool("has_next", page.HasNextPage),
		zap.Bool("has_prev", page.HasPrevPage),
	)

	return page, nil
}

// applyAnchor restricts tx to the topics on the right side of the query's
// anchor. found is false when the anchor topic doesn't exist.
func (p *Pager) applyAnchor(ctx context.Context, tx *gorm.DB, q *TopicQuery, column string) (*gorm.DB, bool, error) {
	var anchorID int64
	var isUpperBound bool

	switch {
	case q.AfterID() != 0:
		anchorID = q.AfterID()
		// after the anchor is further down a descending sort
		isUpperBound = q.SortDescending()
	case q.BeforeID() != 0:
		anchorID = q.BeforeID()
		isUpperBound = !q.SortDescending()
	default:
		return tx, true, nil
	}

	var anchor models.Topic
	if err := p.db.WithContext(ctx).Where("topic_id = ?", anchorID).First(&anchor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx, false, nil
		}
		return nil, false, fmt.Errorf("failed to load anchor topic: %w", err)
	}

	value, err := q.SortOption().valueOf(&anchor)
	if err != nil {
		return nil, false, err
	}

	op := ">"
	if isUpperBound {
		op = "<"
	}
	cond := fmt.Sprintf("(%s %s ? OR (%s = ? AND %s %s ?))", column, op, column, TieBreakColumn, op)

	return tx.Where(cond, value, value, anchor.ID), true, nil
}

type extraRow struct {
	models.Topic
	ExtraColumns
}

func (p *Pager) fetchRows(tx *gorm.DB, withExtra bool) ([]Row, error) {
	if !withExtra {
		var topics []models.Topic
		if err := tx.Find(&topics).Error; err != nil {
			return nil, fmt.Errorf("failed to load topics: %w", err)
		}
		rows := make([]Row, len(topics))
		for i := range topics {
			rows[i] = Row{Topic: topics[i]}
		}
		return rows, nil
	}

	var results []extraRow
	if err := tx.Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}
	rows := make([]Row, len(results))
	for i := range results {
		extra := results[i].ExtraColumns
		rows[i] = Row{Topic: results[i].Topic, Extra: &extra}
	}
	return rows, nil
}

func (p *Pager) loadTags(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.Topic.ID
	}

	var tags []models.TopicTag
	if err := p.db.WithContext(ctx).
		Where("topic_id IN ?", ids).
		Order("tag").
		Find(&tags).Error; err != nil {
		return fmt.Errorf("failed to load topic tags: %w", err)
	}

	byTopic := make(map[int64][]string)
	for _, tag := range tags {
		byTopic[tag.TopicID] = append(byTopic[tag.TopicID], tag.Tag)
	}
	for i := range rows {
		rows[i].Topic.Tags = byTopic[rows[i].Topic.ID]
	}
	return nil
}
