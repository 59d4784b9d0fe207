package api

import (
	"context"
	"fmt"
	"net/http"
)

// Label is a repository label. Name identifies it case-insensitively.
type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

type labelDTO struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
}

func (d labelDTO) toLabel() Label {
	l := Label{Name: d.Name, Color: d.Color}
	if d.Description != nil {
		l.Description = *d.Description
	}
	return l
}

// ListRepoLabels returns the labels configured on the repository.
func ListRepoLabels(ctx context.Context, client RESTClient, repo string) ([]Label, error) {
	var out []Label
	page := 1
	perPage := 100
	for {
		path := fmt.Sprintf("repos/%s/labels?per_page=%d&page=%d", repo, perPage, page)
		var items []labelDTO
		if err := client.DoWithContext(ctx, http.MethodGet, path, nil, &items); err != nil {
			return nil, wrapError("list labels", err)
		}
		if len(items) == 0 {
			break
		}
		for _, it := range items {
			out = append(out, it.toLabel())
		}
		if len(items) < perPage {
			break
		}
		page++
	}
	return out, nil
}
