package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type searchResponse struct {
	TotalCount int        `json:"total_count"`
	Items      []issueDTO `json:"items"`
}

// SearchIssues runs an issue search scoped to repo and returns up to limit items.
func SearchIssues(ctx context.Context, client RESTClient, repo string, query string, limit int) ([]Issue, error) {
	if limit <= 0 {
		limit = 100
	}
	perPage := 100
	if limit < perPage {
		perPage = limit
	}
	q := strings.TrimSpace(query + " repo:" + repo)

	var out []Issue
	for page := 1; len(out) < limit; page++ {
		qs := url.Values{}
		qs.Set("q", q)
		qs.Set("sort", "updated")
		qs.Set("order", "desc")
		qs.Set("per_page", strconv.Itoa(perPage))
		qs.Set("page", strconv.Itoa(page))

		var resp searchResponse
		if err := client.DoWithContext(ctx, http.MethodGet, "search/issues?"+qs.Encode(), nil, &resp); err != nil {
			return nil, wrapError("search issues", err)
		}
		for _, it := range resp.Items {
			if len(out) >= limit {
				break
			}
			out = append(out, it.toIssue())
		}
		if len(resp.Items) < perPage || len(out) >= resp.TotalCount {
			break
		}
	}
	return out, nil
}

// searchDate is the calendar day of t in its own location.
func searchDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// IssuesCreatedBetween searches issues created between start and end (whole
// calendar days, inclusive). state is "open", "closed" or "all".
func IssuesCreatedBetween(ctx context.Context, client RESTClient, repo string, start, end time.Time, state string, limit int) ([]Issue, error) {
	parts := []string{
		fmt.Sprintf("created:%s..%s", searchDate(start), searchDate(end)),
		"is:issue",
	}
	if state != "" && state != "all" {
		parts = append(parts, "state:"+state)
	}
	return SearchIssues(ctx, client, repo, strings.Join(parts, " "), limit)
}

// IssuesClosedBetween searches issues closed between start and end (whole
// calendar days, inclusive).
func IssuesClosedBetween(ctx context.Context, client RESTClient, repo string, start, end time.Time, limit int) ([]Issue, error) {
	q := fmt.Sprintf("closed:%s..%s is:issue", searchDate(start), searchDate(end))
	return SearchIssues(ctx, client, repo, q, limit)
}
