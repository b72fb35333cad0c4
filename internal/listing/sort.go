package listing

import (
	"errors"
	"fmt"

	"github.com/steemit/topics/internal/models"
)

// TopicSortOption is one of the ways a topic listing can be ordered
type TopicSortOption int

// Sort options. The zero value is deliberately not a valid option.
const (
	SortVotes TopicSortOption = iota + 1
	SortComments
	SortNew
	SortActivity
)

// DefaultSortOption is used when neither the request nor the viewer's
// settings pick an order
const DefaultSortOption = SortActivity

// ErrUnknownSortOption is returned for sort options outside the enum
var ErrUnknownSortOption = errors.New("unknown topic sort option")

// AllSortOptions returns every sort option in display order
func AllSortOptions() []TopicSortOption {
	return []TopicSortOption{SortVotes, SortComments, SortNew, SortActivity}
}

// ParseTopicSortOption parses the name of a sort option as returned by
// String. Names are matched exactly.
func ParseTopicSortOption(name string) (TopicSortOption, error) {
	switch name {
	case "votes":
		return SortVotes, nil
	case "comments":
		return SortComments, nil
	case "new":
		return SortNew, nil
	case "activity":
		return SortActivity, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSortOption, name)
	}
}

// String returns the lowercase name used in requests and settings
func (o TopicSortOption) String() string {
	switch o {
	case SortVotes:
		return "votes"
	case SortComments:
		return "comments"
	case SortNew:
		return "new"
	case SortActivity:
		return "activity"
	default:
		return fmt.Sprintf("TopicSortOption(%d)", int(o))
	}
}

// Valid reports whether o is one of the defined options
func (o TopicSortOption) Valid() bool {
	_, err := o.column()
	return err == nil
}

// DescendingDescription describes the option when sorting descending,
// e.g. "most votes" lists the topics with the most votes first.
func (o TopicSortOption) DescendingDescription() string {
	switch o {
	case SortNew:
		return "newest"
	case SortActivity:
		return "activity"
	default:
		return "most " + o.String()
	}
}

// column returns the topics column the option sorts by
func (o TopicSortOption) column() (string, error) {
	switch o {
	case SortVotes:
		return "topics.num_votes", nil
	case SortComments:
		return "topics.num_comments", nil
	case SortNew:
		return "topics.created_time", nil
	case SortActivity:
		return "topics.last_activity_time", nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownSortOption, int(o))
	}
}

// valueOf returns the topic's value for the option's sort column
func (o TopicSortOption) valueOf(t *models.Topic) (interface{}, error) {
	switch o {
	case SortVotes:
		return t.NumVotes, nil
	case SortComments:
		return t.NumComments, nil
	case SortNew:
		return t.CreatedTime, nil
	case SortActivity:
		return t.LastActivityTime, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSortOption, int(o))
	}
}
