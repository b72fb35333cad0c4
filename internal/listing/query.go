package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/steemit/topics/internal/models"
)

var (
	// ErrNoGroups is returned when a query is restricted to an empty set of groups
	ErrNoGroups = errors.New("at least one group is required")
	// ErrBothAnchors is returned when a query has both before and after anchors
	ErrBothAnchors = errors.New("can't set both before and after restrictions")
)

// TieBreakColumn is the final sorting column, making keyset pagination
// deterministic between topics with equal sort values
const TieBreakColumn = "topics.topic_id"

// Context carries the request-scoped state a listing is built for. A nil
// Viewer means anonymous access.
type Context struct {
	Viewer *models.User
	Now    func() time.Time
}

func (c Context) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now()
}

type predicate struct {
	name  string
	query string
	args  []interface{}
}

// TopicQuery accumulates the filters and sorting of a topic listing. Every
// method returns a new query and leaves the receiver untouched, so a base
// query can be shared and extended in different directions. Predicates are
// only turned into SQL by Scope.
type TopicQuery struct {
	ctx            Context
	predicates     []predicate
	sort           TopicSortOption
	sortDesc       bool
	afterID        int64
	beforeID       int64
	includeDeleted bool
	extraData      bool
	err            error
}

// NewTopicQuery creates a query over all topics, sorted by activity
func NewTopicQuery(ctx Context) *TopicQuery {
	return &TopicQuery{
		ctx:      ctx,
		sort:     DefaultSortOption,
		sortDesc: true,
	}
}

func (q *TopicQuery) clone() *TopicQuery {
	c := *q
	c.predicates = make([]predicate, len(q.predicates))
	copy(c.predicates, q.predicates)
	return &c
}

func (q *TopicQuery) where(name, query string, args ...interface{}) *TopicQuery {
	c := q.clone()
	c.predicates = append(c.predicates, predicate{name: name, query: "(" + query + ")", args: args})
	return c
}

func (q *TopicQuery) withError(err error) *TopicQuery {
	c := q.clone()
	if c.err == nil {
		c.err = err
	}
	return c
}

// InsideGroups restricts the topics to the groups and any of their subgroups
func (q *TopicQuery) InsideGroups(groups ...models.Group) *TopicQuery {
	if len(groups) == 0 {
		return q.withError(ErrNoGroups)
	}

	paths := make([]string, len(groups))
	for i, group := range groups {
		paths[i] = group.Path
	}
	cond, args := descendantOf("g.path", paths)

	return q.where("inside_groups",
		"topics.group_id IN (SELECT g.group_id FROM topic_groups g WHERE "+cond+")", args...)
}

// InsideTimePeriod restricts the topics to ones created inside the period.
// A nil period means all time and leaves the query unrestricted.
func (q *TopicQuery) InsideTimePeriod(period *Period) *TopicQuery {
	if period == nil {
		return q
	}
	since := q.ctx.now().Add(-period.Duration())
	return q.where("inside_time_period", "topics.created_time > ?", since)
}

// HasTag restricts the topics to ones tagged with tag or one of its
// descendants. An empty tag leaves the query unrestricted.
func (q *TopicQuery) HasTag(tag string) *TopicQuery {
	if tag == "" {
		return q
	}
	cond, args := descendantOf("tt.tag", []string{tag})
	return q.where("has_tag",
		"EXISTS (SELECT 1 FROM topic_tags tt WHERE tt.topic_id = topics.topic_id AND ("+cond+"))", args...)
}

// ExcludeTags removes topics carrying any of the tags
func (q *TopicQuery) ExcludeTags(tags []string) *TopicQuery {
	if len(tags) == 0 {
		return q
	}
	return q.where("exclude_tags",
		"NOT EXISTS (SELECT 1 FROM topic_tags ft WHERE ft.topic_id = topics.topic_id AND ft.tag IN ?)", tags)
}

// IsPinned restricts the topics to pinned or unpinned ones
func (q *TopicQuery) IsPinned(pinned bool) *TopicQuery {
	return q.where("is_pinned", "topics.is_pinned = ?", pinned)
}

// IncludeDeleted stops deleted and removed topics being filtered out
func (q *TopicQuery) IncludeDeleted() *TopicQuery {
	c := q.clone()
	c.includeDeleted = true
	return c
}

// ApplySortOption replaces the query's sort. Unknown options are recorded
// as an error on the returned query and will stop it from executing.
func (q *TopicQuery) ApplySortOption(option TopicSortOption, desc bool) *TopicQuery {
	if !option.Valid() {
		return q.withError(fmt.Errorf("%w: %d", ErrUnknownSortOption, int(option)))
	}
	c := q.clone()
	c.sort = option
	c.sortDesc = desc
	return c
}

// After restricts the query to topics after the anchor topic
func (q *TopicQuery) After(topicID int64) *TopicQuery {
	if topicID == 0 {
		return q
	}
	if q.beforeID != 0 {
		return q.withError(ErrBothAnchors)
	}
	c := q.clone()
	c.afterID = topicID
	return c
}

// Before restricts the query to topics before the anchor topic
func (q *TopicQuery) Before(topicID int64) *TopicQuery {
	if topicID == 0 {
		return q
	}
	if q.afterID != 0 {
		return q.withError(ErrBothAnchors)
	}
	c := q.clone()
	c.beforeID = topicID
	return c
}

// AttachExtraData adds the viewer's vote and last visit to every result.
// Without a viewer it does nothing.
func (q *TopicQuery) AttachExtraData() *TopicQuery {
	if q.ctx.Viewer == nil || q.extraData {
		return q
	}
	c := q.clone()
	c.extraData = true
	return c
}

// Err returns the first error recorded while building the query
func (q *TopicQuery) Err() error {
	return q.err
}

// SortOption returns the active sort option
func (q *TopicQuery) SortOption() TopicSortOption {
	return q.sort
}

// SortDescending reports whether the sort is descending
func (q *TopicQuery) SortDescending() bool {
	return q.sortDesc
}

// AfterID returns the "after" anchor, or 0
func (q *TopicQuery) AfterID() int64 {
	return q.afterID
}

// BeforeID returns the "before" anchor, or 0
func (q *TopicQuery) BeforeID() int64 {
	return q.beforeID
}

// IsReversed reports whether the query runs opposite to display order.
// Paging backwards from an anchor fetches the closest items first, so the
// results have to be reversed before they are shown.
func (q *TopicQuery) IsReversed() bool {
	return q.beforeID != 0
}

// HasExtraData reports whether results carry the viewer's extra columns
func (q *TopicQuery) HasExtraData() bool {
	return q.extraData && q.ctx.Viewer != nil
}

// Viewer returns the query's viewer, nil when anonymous
func (q *TopicQuery) Viewer() *models.User {
	return q.ctx.Viewer
}

// Scope applies the accumulated predicates, and the viewer's extra columns
// if attached, to tx. Ordering and anchors are left to the Pager.
func (q *TopicQuery) Scope(tx *gorm.DB) *gorm.DB {
	tx = tx.Model(&models.Topic{})

	if !q.includeDeleted {
		tx = tx.Where("topics.is_deleted = ? AND topics.is_removed = ?", false, false)
	}

	for _, p := range q.predicates {
		tx = tx.Where(p.query, p.args...)
	}

	if q.HasExtraData() {
		tx = q.attachVoteAndVisitData(tx)
	}

	return tx
}

func (q *TopicQuery) attachVoteAndVisitData(tx *gorm.DB) *gorm.DB {
	viewer := q.ctx.Viewer
	const voted = "EXISTS (SELECT 1 FROM topic_votes tv WHERE tv.topic_id = topics.topic_id AND tv.user_id = ?) AS user_voted"

	if !viewer.TrackCommentVisits {
		// literal NULLs keep the row shape without paying for the join
		return tx.Select("topics.*, "+voted+", NULL AS visit_time, NULL AS visit_num_comments", viewer.ID)
	}

	return tx.
		Select("topics.*, "+voted+", topic_visits.visit_time AS visit_time, topic_visits.num_comments AS visit_num_comments", viewer.ID).
		Joins("LEFT JOIN topic_visits ON topic_visits.topic_id = topics.topic_id AND topic_visits.user_id = ?", viewer.ID)
}

// descendantOf builds a condition matching column values equal to, or
// descendants of, any of the dot separated paths
func descendantOf(column string, paths []string) (string, []interface{}) {
	conds := make([]string, 0, len(paths))
	args := make([]interface{}, 0, len(paths)*2)
	for _, path := range paths {
		conds = append(conds, fmt.Sprintf("%s = ? OR %s LIKE ? ESCAPE '\\'", column, column))
		args = append(args, path, escapeLike(path)+".%")
	}
	return strings.Join(conds, " OR "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
