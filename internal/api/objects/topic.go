package objects

import (
	"time"

	"github.com/steemit/topics/internal/listing"
)

// TopicObject builds the API object for an annotated topic
func TopicObject(topic listing.AnnotatedTopic) map[string]interface{} {
	tags := topic.Tags
	if tags == nil {
		tags = []string{}
	}

	obj := map[string]interface{}{
		"topic_id":           topic.ID,
		"topic_id36":         listing.ID36(topic.ID),
		"group_id":           topic.GroupID,
		"user_id":            topic.UserID,
		"title":              topic.Title,
		"link":               topic.Link,
		"created_time":       topic.CreatedTime.UTC().Format(time.RFC3339),
		"last_activity_time": topic.LastActivityTime.UTC().Format(time.RFC3339),
		"num_votes":          topic.NumVotes,
		"num_comments":       topic.NumComments,
		"is_pinned":          topic.IsPinned,
		"is_locked":          topic.IsLocked,
		"tags":               tags,
		"user_voted":         topic.UserVoted,
		"last_visit_time":    nil,
	}

	if topic.LastVisitTime != nil {
		obj["last_visit_time"] = topic.LastVisitTime.UTC().Format(time.RFC3339)
	}
	if topic.CommentsSinceLastVisit != nil {
		obj["comments_since_last_visit"] = *topic.CommentsSinceLastVisit
	} else {
		obj["comments_since_last_visit"] = nil
	}

	return obj
}

// ListingObject builds the API object for a page of a topic listing
func ListingObject(result *listing.Result) map[string]interface{} {
	topics := make([]map[string]interface{}, len(result.Topics))
	for i, topic := range result.Topics {
		topics[i] = TopicObject(topic)
	}

	obj := map[string]interface{}{
		"topics":            topics,
		"order":             result.Order.String(),
		"order_description": result.Order.DescendingDescription(),
		"period":            listing.FormatPeriod(result.Period),
		"period_options":    PeriodOptions(result.PeriodOptions),
		"is_default_period": result.IsDefaultPeriod,
		"is_default_view":   result.IsDefaultView,
		"tag":               result.Tag,
		"unfiltered":        result.Unfiltered,
		"has_next_page":     false,
		"has_prev_page":     false,
		"next_after":        "",
		"prev_before":       "",
	}

	if page := result.Page; page != nil {
		obj["per_page"] = page.PerPage
		obj["has_next_page"] = page.HasNextPage
		obj["has_prev_page"] = page.HasPrevPage
		obj["next_after"] = page.NextAfter()
		obj["prev_before"] = page.PrevBefore()
	}

	return obj
}

// DefaultsObject builds the API object for a viewer's listing defaults
func DefaultsObject(defaults listing.Defaults) map[string]interface{} {
	return map[string]interface{}{
		"order":          defaults.Order.String(),
		"period":         listing.FormatPeriod(defaults.Period),
		"period_options": PeriodOptions(listing.PeriodOptions(defaults.Period)),
	}
}

// PeriodOptions renders periods in their short form
func PeriodOptions(periods []listing.Period) []string {
	options := make([]string, len(periods))
	for i, period := range periods {
		options[i] = period.String()
	}
	return options
}
