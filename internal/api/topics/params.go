package topics

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/steemit/topics/internal/listing"
	"github.com/steemit/topics/pkg/config"
)

var (
	// ErrInvalidParams is returned for malformed or missing parameters
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrNotFound is returned when a named group, user or topic doesn't exist
	ErrNotFound = errors.New("not found")
)

func invalidParams(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// listingParams are the parameters shared by the listing methods
type listingParams struct {
	Group      string `json:"group"`
	Observer   string `json:"observer"`
	Order      string `json:"order"`
	Period     string `json:"period"`
	After      string `json:"after"`
	Before     string `json:"before"`
	PerPage    int    `json:"per_page"`
	Tag        string `json:"tag"`
	Unfiltered bool   `json:"unfiltered"`
}

func decodeParams(params json.RawMessage, dest interface{}) error {
	if len(params) == 0 {
		return invalidParams("params are required")
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return invalidParams("invalid parameters format")
	}
	return nil
}

// request converts the parameters into a listing request, without the
// viewer and group which have to be looked up
func (p listingParams) request(cfg config.ListingConfig) (listing.Request, error) {
	req := listing.Request{
		Tag:        p.Tag,
		Unfiltered: p.Unfiltered,
		PerPage:    cfg.DefaultPerPage,
	}

	if p.Order != "" {
		order, err := listing.ParseTopicSortOption(p.Order)
		if err != nil {
			return req, err
		}
		req.Order = &order
	}

	if p.Period != "" {
		period, err := listing.ParsePeriod(p.Period)
		if err != nil {
			return req, err
		}
		req.Period = period
		req.PeriodSet = true
	}

	after, err := listing.ParseID36(p.After)
	if err != nil {
		return req, invalidParams("after: %v", err)
	}
	before, err := listing.ParseID36(p.Before)
	if err != nil {
		return req, invalidParams("before: %v", err)
	}
	if after != 0 && before != 0 {
		return req, listing.ErrBothAnchors
	}
	req.After = after
	req.Before = before

	switch {
	case p.PerPage < 0:
		return req, invalidParams("per_page must be positive")
	case p.PerPage > cfg.MaxPerPage:
		req.PerPage = cfg.MaxPerPage
	case p.PerPage > 0:
		req.PerPage = p.PerPage
	}

	return req, nil
}

// cacheKey identifies an anonymous listing page
func (p listingParams) cacheKey(method string, req listing.Request) []string {
	order := ""
	if req.Order != nil {
		order = req.Order.String()
	}
	period := ""
	if req.PeriodSet {
		period = listing.FormatPeriod(req.Period)
	}
	return []string{
		method,
		p.Group,
		order,
		period,
		listing.ID36(req.After),
		listing.ID36(req.Before),
		fmt.Sprintf("%d", req.PerPage),
		p.Tag,
		fmt.Sprintf("%t", p.Unfiltered),
	}
}

type visitParams struct {
	Observer  string `json:"observer"`
	TopicID36 string `json:"topic_id36"`
}

type settingsParams struct {
	Observer string `json:"observer"`
	Group    string `json:"group"`
	Order    string `json:"order"`
}
