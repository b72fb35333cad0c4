package listing

import (
	"time"

	"github.com/steemit/topics/internal/models"
)

// ExtraColumns are the viewer-specific columns added by AttachExtraData
type ExtraColumns struct {
	UserVoted        bool       `gorm:"column:user_voted"`
	VisitTime        *time.Time `gorm:"column:visit_time"`
	VisitNumComments *int       `gorm:"column:visit_num_comments"`
}

// Row is a single raw result of a topic query. Extra is nil when the query
// ran without a viewer.
type Row struct {
	Topic models.Topic
	Extra *ExtraColumns
}

// AnnotatedTopic is a topic with the viewer's context merged onto it
type AnnotatedTopic struct {
	models.Topic

	UserVoted              bool
	LastVisitTime          *time.Time
	CommentsSinceLastVisit *int
}

// Annotate merges a row's extra columns onto its topic
func Annotate(row Row) AnnotatedTopic {
	annotated := AnnotatedTopic{Topic: row.Topic}
	if row.Extra == nil {
		return annotated
	}

	annotated.UserVoted = row.Extra.UserVoted
	if row.Extra.VisitTime != nil {
		visitTime := *row.Extra.VisitTime
		annotated.LastVisitTime = &visitTime
	}

	if row.Extra.VisitNumComments != nil {
		newComments := row.Topic.NumComments - *row.Extra.VisitNumComments
		// deletions can drop the count below the snapshot
		if newComments < 0 {
			newComments = 0
		}
		annotated.CommentsSinceLastVisit = &newComments
	}

	return annotated
}

// AnnotateAll annotates every row of a page, keeping their order
func AnnotateAll(rows []Row) []AnnotatedTopic {
	annotated := make([]AnnotatedTopic, len(rows))
	for i, row := range rows {
		annotated[i] = Annotate(row)
	}
	return annotated
}
