package listing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagerPages(t *testing.T) {
	f := newFixture(t)
	pager := NewPager(f.db)
	ctx := context.Background()
	music := f.query(nil).InsideGroups(f.group("music"))

	first, err := pager.GetPage(ctx, music, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, topicIDs(first.Rows))
	assert.True(t, first.HasNextPage)
	assert.False(t, first.HasPrevPage)
	assert.Equal(t, ID36(2), first.NextAfter())
	assert.Empty(t, first.PrevBefore())

	afterID, err := ParseID36(first.NextAfter())
	require.NoError(t, err)
	second, err := pager.GetPage(ctx, music.After(afterID), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 5}, topicIDs(second.Rows))
	assert.False(t, second.HasNextPage)
	assert.True(t, second.HasPrevPage)
	assert.Equal(t, ID36(7), second.PrevBefore())

	// paging back from the second page returns the first, in display order
	back, err := pager.GetPage(ctx, music.Before(7), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, topicIDs(back.Rows))
	assert.True(t, back.HasNextPage)
	assert.False(t, back.HasPrevPage)
}

func TestPagerBeforeWithMore(t *testing.T) {
	f := newFixture(t)
	music := f.query(nil).InsideGroups(f.group("music"))

	page, err := NewPager(f.db).GetPage(context.Background(), music.Before(5), 2)
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 7}, topicIDs(page.Rows))
	assert.True(t, page.HasNextPage)
	assert.True(t, page.HasPrevPage)
}

func TestPagerAscendingAfter(t *testing.T) {
	f := newFixture(t)
	music := f.query(nil).InsideGroups(f.group("music")).ApplySortOption(SortVotes, false)

	page, err := NewPager(f.db).GetPage(context.Background(), music.After(7), 2)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 5}, topicIDs(page.Rows))
	assert.True(t, page.HasNextPage)
	assert.True(t, page.HasPrevPage)
}

func TestPagerTieBreak(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Exec("UPDATE topics SET num_votes = 3").Error)
	music := f.query(nil).InsideGroups(f.group("music")).ApplySortOption(SortVotes, true)

	pager := NewPager(f.db)
	first, err := pager.GetPage(context.Background(), music, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 5}, topicIDs(first.Rows))

	second, err := pager.GetPage(context.Background(), music.After(5), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, topicIDs(second.Rows))
	assert.False(t, second.HasNextPage)
}

func TestPagerMissingAnchor(t *testing.T) {
	f := newFixture(t)
	music := f.query(nil).InsideGroups(f.group("music"))

	page, err := NewPager(f.db).GetPage(context.Background(), music.After(999), 2)
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.False(t, page.HasNextPage)
	assert.False(t, page.HasPrevPage)
}

func TestPagerErrors(t *testing.T) {
	f := newFixture(t)
	pager := NewPager(f.db)
	music := f.query(nil).InsideGroups(f.group("music"))

	_, err := pager.GetPage(context.Background(), music.After(1).Before(2), 2)
	assert.ErrorIs(t, err, ErrBothAnchors)

	_, err = pager.GetPage(context.Background(), music, 0)
	assert.Error(t, err)
}

func TestPagerLoadsTags(t *testing.T) {
	f := newFixture(t)
	sports := f.query(nil).InsideGroups(f.group("sports"))

	page, err := NewPager(f.db).GetPage(context.Background(), sports, 10)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, []string{"football", "jazzfunk"}, page.Rows[0].Topic.Tags)
}
