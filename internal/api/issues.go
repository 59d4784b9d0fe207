package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// State is the lifecycle state of an issue.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Issue is the issue representation used for output and analysis.
// Values are read-only once fetched.
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	State     State      `json:"state"`
	Labels    []Label    `json:"labels"`
	Assignees []string   `json:"assignees,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	Comments  int        `json:"comments"`
	IsPR      bool       `json:"is_pr,omitempty"`
}

// LabelNames returns the issue's label names in order.
func (i Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

type userDTO struct {
	Login string `json:"login"`
}

type issueDTO struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        *string         `json:"body"`
	State       string          `json:"state"`
	Labels      []labelDTO      `json:"labels"`
	Assignees   []userDTO       `json:"assignees"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ClosedAt    *time.Time      `json:"closed_at"`
	Comments    int             `json:"comments"`
	PullRequest json.RawMessage `json:"pull_request,omitempty"`
}

func (d issueDTO) toIssue() Issue {
	iss := Issue{
		Number:    d.Number,
		Title:     d.Title,
		State:     State(strings.ToLower(d.State)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		ClosedAt:  d.ClosedAt,
		Comments:  d.Comments,
		IsPR:      len(d.PullRequest) > 0 && string(d.PullRequest) != "null",
	}
	if d.Body != nil {
		iss.Body = *d.Body
	}
	for _, l := range d.Labels {
		iss.Labels = append(iss.Labels, l.toLabel())
	}
	for _, a := range d.Assignees {
		if a.Login != "" {
			iss.Assignees = append(iss.Assignees, a.Login)
		}
	}
	return iss
}

// ListOptions controls ListIssues.
type ListOptions struct {
	// State is "open", "closed" or "all" (default).
	State string
	// Labels are sent to the API as an all-of filter.
	Labels []string
	// Limit caps the number of issues returned (default 100).
	Limit      int
	IncludePRs bool
}

// ListIssues lists issues for the given repo (owner/repo) up to opts.Limit,
// following pages of the REST list endpoint, most recently updated first.
func ListIssues(ctx context.Context, client RESTClient, repo string, opts ListOptions) ([]Issue, error) {
	var result []Issue
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	state := opts.State
	if state == "" {
		state = "all"
	}

	perPage := 100
	if limit < perPage {
		perPage = limit
	}
	page := 1

	for len(result) < limit {
		qs := url.Values{}
		qs.Set("state", state)
		qs.Set("sort", "updated")
		qs.Set("direction", "desc")
		qs.Set("per_page", strconv.Itoa(perPage))
		qs.Set("page", strconv.Itoa(page))
		if len(opts.Labels) > 0 {
			qs.Set("labels", strings.Join(opts.Labels, ","))
		}
		path := fmt.Sprintf("repos/%s/issues?%s", repo, qs.Encode())

		var items []issueDTO
		if err := client.DoWithContext(ctx, http.MethodGet, path, nil, &items); err != nil {
			return nil, wrapError("list issues", err)
		}
		if len(items) == 0 {
			break
		}

		for _, it := range items {
			if len(result) >= limit {
				break
			}
			iss := it.toIssue()
			// the issues endpoint also returns pull requests
			if iss.IsPR && !opts.IncludePRs {
				continue
			}
			result = append(result, iss)
		}

		if len(items) < perPage {
			break
		}
		page++
	}

	return result, nil
}
