package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/steemit/topics/internal/models"
	"github.com/steemit/topics/internal/testutil"
)

var fixtureNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixtureClock() time.Time { return fixtureNow }

type fixture struct {
	db     *gorm.DB
	groups map[string]models.Group
	alice  *models.User // tracks comment visits
	bob    *models.User
}

func ago(d time.Duration) time.Time {
	return fixtureNow.Add(-d)
}

// newFixture seeds a small forum:
//
//	id group       created  activity votes comments tags
//	1  music       2h       1h       5     10       rock
//	2  music.jazz  30h      3h       10    2        jazz.bebop (pinned)
//	3  sports      5h       2h       1     0        football, jazzfunk
//	4  musicals    10h      4h       3     7        rock
//	5  music       100h     50h      8     20       jazz
//	6  music       1h       30m      0     1        (deleted)
//	7  music       6h       5h       2     4        spoilers
func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewDB(t)

	f := &fixture{db: database, groups: map[string]models.Group{}}

	for i, path := range []string{"music", "music.jazz", "sports", "musicals"} {
		group := models.Group{ID: int64(i + 1), Path: path, CreatedTime: ago(1000 * time.Hour)}
		require.NoError(t, database.Create(&group).Error)
		f.groups[path] = group
	}

	f.alice = &models.User{ID: 1, Username: "alice", CreatedTime: ago(2000 * time.Hour), TrackCommentVisits: true}
	f.bob = &models.User{ID: 2, Username: "bob", CreatedTime: ago(2000 * time.Hour)}
	require.NoError(t, database.Create(f.alice).Error)
	require.NoError(t, database.Create(f.bob).Error)

	type seed struct {
		group    string
		created  time.Duration
		activity time.Duration
		votes    int
		comments int
		tags     []string
		pinned   bool
		deleted  bool
	}
	seeds := []seed{
		{"music", 2 * time.Hour, 1 * time.Hour, 5, 10, []string{"rock"}, false, false},
		{"music.jazz", 30 * time.Hour, 3 * time.Hour, 10, 2, []string{"jazz.bebop"}, true, false},
		{"sports", 5 * time.Hour, 2 * time.Hour, 1, 0, []string{"football", "jazzfunk"}, false, false},
		{"musicals", 10 * time.Hour, 4 * time.Hour, 3, 7, []string{"rock"}, false, false},
		{"music", 100 * time.Hour, 50 * time.Hour, 8, 20, []string{"jazz"}, false, false},
		{"music", 1 * time.Hour, 30 * time.Minute, 0, 1, nil, false, true},
		{"music", 6 * time.Hour, 5 * time.Hour, 2, 4, []string{"spoilers"}, false, false},
	}
	for i, s := range seeds {
		topic := models.Topic{
			ID:               int64(i + 1),
			GroupID:          f.groups[s.group].ID,
			UserID:           f.bob.ID,
			Title:            "topic",
			CreatedTime:      ago(s.created),
			LastActivityTime: ago(s.activity),
			NumVotes:         s.votes,
			NumComments:      s.comments,
			IsPinned:         s.pinned,
			IsDeleted:        s.deleted,
		}
		require.NoError(t, database.Create(&topic).Error)
		for _, tag := range s.tags {
			require.NoError(t, database.Create(&models.TopicTag{TopicID: topic.ID, Tag: tag}).Error)
		}
	}

	votes := []models.TopicVote{
		{TopicID: 1, UserID: f.alice.ID, CreatedTime: ago(time.Hour)},
		{TopicID: 5, UserID: f.alice.ID, CreatedTime: ago(time.Hour)},
		{TopicID: 2, UserID: f.bob.ID, CreatedTime: ago(time.Hour)},
	}
	require.NoError(t, database.Create(&votes).Error)

	visits := []models.TopicVisit{
		{UserID: f.alice.ID, TopicID: 1, VisitTime: ago(90 * time.Minute), NumComments: 4},
		{UserID: f.alice.ID, TopicID: 5, VisitTime: ago(60 * time.Hour), NumComments: 25},
		{UserID: f.bob.ID, TopicID: 1, VisitTime: ago(90 * time.Minute), NumComments: 1},
	}
	require.NoError(t, database.Create(&visits).Error)

	return f
}

func (f *fixture) group(path string) models.Group {
	return f.groups[path]
}

func (f *fixture) query(viewer *models.User) *TopicQuery {
	return NewTopicQuery(Context{Viewer: viewer, Now: fixtureClock})
}

func topicIDs(rows []Row) []int64 {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.Topic.ID
	}
	return ids
}
