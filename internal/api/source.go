package api

import (
	"context"
	"time"
)

// Source fetches the issues and labels of one repository.
type Source struct {
	Client  RESTClient
	Repo    string
	Options ListOptions
}

// NewSource returns a Source for repo.
func NewSource(client RESTClient, repo string, opts ListOptions) *Source {
	return &Source{Client: client, Repo: repo, Options: opts}
}

// FetchIssues performs the bulk issue fetch.
func (s *Source) FetchIssues(ctx context.Context) ([]Issue, error) {
	return ListIssues(ctx, s.Client, s.Repo, s.Options)
}

// FetchLabels lists the repository labels.
func (s *Source) FetchLabels(ctx context.Context) ([]Label, error) {
	return ListRepoLabels(ctx, s.Client, s.Repo)
}

// CreatedBetween searches issues created in [start, end] with the given state.
func (s *Source) CreatedBetween(ctx context.Context, start, end time.Time, state string) ([]Issue, error) {
	return IssuesCreatedBetween(ctx, s.Client, s.Repo, start, end, state, s.Options.Limit)
}

// ClosedBetween searches issues closed in [start, end].
func (s *Source) ClosedBetween(ctx context.Context, start, end time.Time) ([]Issue, error) {
	return IssuesClosedBetween(ctx, s.Client, s.Repo, start, end, s.Options.Limit)
}

// Repository returns the owner/repo this source reads from.
func (s *Source) Repository() string {
	return s.Repo
}
