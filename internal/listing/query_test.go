package listing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) ids(t *testing.T, q *TopicQuery) []int64 {
	t.Helper()
	page, err := NewPager(f.db).GetPage(context.Background(), q, 50)
	require.NoError(t, err)
	return topicIDs(page.Rows)
}

func TestTopicQuerySorting(t *testing.T) {
	f := newFixture(t)
	music := f.query(nil).InsideGroups(f.group("music"))

	tests := []struct {
		option TopicSortOption
		desc   bool
		want   []int64
	}{
		{SortActivity, true, []int64{1, 2, 7, 5}},
		{SortVotes, true, []int64{2, 5, 1, 7}},
		{SortComments, true, []int64{5, 1, 7, 2}},
		{SortNew, true, []int64{1, 7, 2, 5}},
		{SortNew, false, []int64{5, 2, 7, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.option.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, f.ids(t, music.ApplySortOption(tt.option, tt.desc)))
		})
	}
}

func TestTopicQueryDefaultSort(t *testing.T) {
	f := newFixture(t)
	q := f.query(nil)

	assert.Equal(t, SortActivity, q.SortOption())
	assert.True(t, q.SortDescending())

	music := q.InsideGroups(f.group("music"))
	assert.Equal(t, f.ids(t, music.ApplySortOption(SortActivity, true)), f.ids(t, music))
}

func TestTopicQuerySortIsReplaced(t *testing.T) {
	f := newFixture(t)
	music := f.query(nil).InsideGroups(f.group("music"))

	once := music.ApplySortOption(SortVotes, true)
	twice := music.ApplySortOption(SortComments, false).ApplySortOption(SortVotes, true)
	assert.Equal(t, f.ids(t, once), f.ids(t, twice))
	assert.Equal(t, f.ids(t, once), f.ids(t, once.ApplySortOption(SortVotes, true)))
}

func TestTopicQueryUnknownSortOption(t *testing.T) {
	f := newFixture(t)
	q := f.query(nil).InsideGroups(f.group("music")).ApplySortOption(TopicSortOption(42), true)

	assert.ErrorIs(t, q.Err(), ErrUnknownSortOption)
	// the error survives later builder calls
	q = q.ApplySortOption(SortVotes, true).HasTag("rock")
	assert.ErrorIs(t, q.Err(), ErrUnknownSortOption)

	_, err := NewPager(f.db).GetPage(context.Background(), q, 10)
	assert.ErrorIs(t, err, ErrUnknownSortOption)
}

func TestTopicQueryIsImmutable(t *testing.T) {
	f := newFixture(t)
	base := f.query(nil).InsideGroups(f.group("music"))

	_ = base.HasTag("rock").IsPinned(true).ApplySortOption(SortVotes, false).After(2)

	assert.Equal(t, SortActivity, base.SortOption())
	assert.Zero(t, base.AfterID())
	assert.Equal(t, []int64{1, 2, 7, 5}, f.ids(t, base))
}

func TestTopicQueryInsideGroups(t *testing.T) {
	f := newFixture(t)

	// descendants are included, but not groups sharing a name prefix
	assert.ElementsMatch(t, []int64{1, 2, 5, 7}, f.ids(t, f.query(nil).InsideGroups(f.group("music"))))
	assert.ElementsMatch(t, []int64{2}, f.ids(t, f.query(nil).InsideGroups(f.group("music.jazz"))))
	assert.ElementsMatch(t, []int64{3, 4}, f.ids(t, f.query(nil).InsideGroups(f.group("sports"), f.group("musicals"))))

	q := f.query(nil).InsideGroups()
	assert.ErrorIs(t, q.Err(), ErrNoGroups)
}

func TestTopicQueryInsideTimePeriod(t *testing.T) {
	f := newFixture(t)
	music := f.query(nil).InsideGroups(f.group("music"))

	assert.Equal(t, f.ids(t, music), f.ids(t, music.InsideTimePeriod(nil)))
	assert.Equal(t, []int64{1, 7}, f.ids(t, music.InsideTimePeriod(periodPtr(24))))
	assert.Equal(t, []int64{1, 2, 7}, f.ids(t, music.InsideTimePeriod(periodPtr(72))))
	assert.Empty(t, f.ids(t, music.InsideTimePeriod(periodPtr(1))))
}

func TestTopicQueryHasTag(t *testing.T) {
	f := newFixture(t)
	all := f.query(nil).InsideGroups(f.group("music"), f.group("sports"), f.group("musicals"))

	assert.ElementsMatch(t, []int64{2, 5}, f.ids(t, all.HasTag("jazz")))
	assert.ElementsMatch(t, []int64{2}, f.ids(t, all.HasTag("jazz.bebop")))
	assert.ElementsMatch(t, []int64{1, 4}, f.ids(t, all.HasTag("rock")))
	assert.Equal(t, f.ids(t, all), f.ids(t, all.HasTag("")))
	assert.Empty(t, f.ids(t, all.HasTag("jaz")))
}

func TestTopicQueryFiltersCommute(t *testing.T) {
	f := newFixture(t)
	base := f.query(nil)

	a := base.InsideGroups(f.group("music")).HasTag("rock").InsideTimePeriod(periodPtr(24))
	b := base.InsideTimePeriod(periodPtr(24)).HasTag("rock").InsideGroups(f.group("music"))

	assert.Equal(t, []int64{1}, f.ids(t, a))
	assert.Equal(t, f.ids(t, a), f.ids(t, b))
}

func TestTopicQueryIsPinned(t *testing.T) {
	f := newFixture(t)
	music := f.query(nil).InsideGroups(f.group("music"))

	assert.Equal(t, []int64{2}, f.ids(t, music.IsPinned(true)))
	assert.Equal(t, []int64{1, 7, 5}, f.ids(t, music.IsPinned(false)))
}

func TestTopicQueryExcludeTags(t *testing.T) {
	f := newFixture(t)
	music := f.query(nil).InsideGroups(f.group("music"))

	assert.Equal(t, []int64{1, 2, 5}, f.ids(t, music.ExcludeTags([]string{"spoilers"})))
	assert.Equal(t, []int64{2, 7, 5}, f.ids(t, music.ExcludeTags([]string{"rock", "nothing"})))
	assert.Equal(t, f.ids(t, music), f.ids(t, music.ExcludeTags(nil)))
}

func TestTopicQueryIncludeDeleted(t *testing.T) {
	f := newFixture(t)
	music := f.query(nil).InsideGroups(f.group("music"))

	assert.NotContains(t, f.ids(t, music), int64(6))
	assert.Equal(t, []int64{6, 1, 2, 7, 5}, f.ids(t, music.IncludeDeleted()))
}

func TestTopicQueryAnchors(t *testing.T) {
	f := newFixture(t)
	q := f.query(nil)

	assert.ErrorIs(t, q.After(1).Before(2).Err(), ErrBothAnchors)
	assert.ErrorIs(t, q.Before(2).After(1).Err(), ErrBothAnchors)

	assert.False(t, q.After(3).IsReversed())
	assert.True(t, q.Before(3).IsReversed())
	assert.Equal(t, int64(3), q.After(3).AfterID())
	assert.Equal(t, q, q.After(0))
}

func TestTopicQueryExtraData(t *testing.T) {
	f := newFixture(t)

	t.Run("tracking viewer", func(t *testing.T) {
		q := f.query(f.alice).InsideGroups(f.group("music")).AttachExtraData()
		require.True(t, q.HasExtraData())

		page, err := NewPager(f.db).GetPage(context.Background(), q, 10)
		require.NoError(t, err)
		require.Equal(t, []int64{1, 2, 7, 5}, topicIDs(page.Rows))

		byID := map[int64]AnnotatedTopic{}
		for _, topic := range AnnotateAll(page.Rows) {
			byID[topic.ID] = topic
		}

		assert.True(t, byID[1].UserVoted)
		require.NotNil(t, byID[1].LastVisitTime)
		assert.True(t, byID[1].LastVisitTime.Equal(ago(90*time.Minute)))
		require.NotNil(t, byID[1].CommentsSinceLastVisit)
		assert.Equal(t, 6, *byID[1].CommentsSinceLastVisit)

		assert.True(t, byID[5].UserVoted)
		require.NotNil(t, byID[5].CommentsSinceLastVisit)
		assert.Equal(t, 0, *byID[5].CommentsSinceLastVisit)

		assert.False(t, byID[2].UserVoted)
		assert.Nil(t, byID[2].LastVisitTime)
		assert.Nil(t, byID[2].CommentsSinceLastVisit)
	})

	t.Run("viewer not tracking visits", func(t *testing.T) {
		q := f.query(f.bob).InsideGroups(f.group("music")).AttachExtraData()

		page, err := NewPager(f.db).GetPage(context.Background(), q, 10)
		require.NoError(t, err)

		for _, row := range page.Rows {
			require.NotNil(t, row.Extra)
			assert.Equal(t, row.Topic.ID == 2, row.Extra.UserVoted)
			assert.Nil(t, row.Extra.VisitTime)
			assert.Nil(t, row.Extra.VisitNumComments)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		q := f.query(nil).InsideGroups(f.group("music")).AttachExtraData()
		assert.False(t, q.HasExtraData())

		page, err := NewPager(f.db).GetPage(context.Background(), q, 10)
		require.NoError(t, err)
		for _, row := range page.Rows {
			assert.Nil(t, row.Extra)
		}
	})
}
