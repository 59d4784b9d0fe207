package util

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
)

// ErrNoRepo is returned when no repository could be determined.
var ErrNoRepo = errors.New("could not detect repository: set --repo, GITHUB_OWNER/GITHUB_REPO or GH_REPO, or run inside a git repo with an origin remote")

// DetectRepo returns repository in owner/repo form. Preference order:
// 1. flagRepo (owner/repo or a GitHub URL)
// 2. configRepo, already merged from file and environment
// 3. GH_REPO env var
// 4. the origin remote of the git repository containing dir
func DetectRepo(flagRepo, configRepo, dir string) (string, error) {
	for _, candidate := range []string{flagRepo, configRepo, os.Getenv("GH_REPO")} {
		if candidate == "" {
			continue
		}
		return ParseRepo(candidate)
	}

	url, err := originURL(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRepo, err)
	}
	repo := parseRemoteURL(url)
	if repo == "" {
		return "", fmt.Errorf("could not parse remote URL %q to owner/repo; specify --repo", url)
	}
	return repo, nil
}

func originURL(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	remote, err := r.Remote("origin")
	if err != nil {
		return "", err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", errors.New("origin remote has no URL")
	}
	return urls[0], nil
}

var reSSH = regexp.MustCompile(`^git@[^:]+:([^/]+)/(.+?)(?:\.git)?$`)
var reHTTPS = regexp.MustCompile(`^https?://[^/]+/([^/]+)/(.+?)(?:\.git)?$`)

func parseRemoteURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := reSSH.FindStringSubmatch(s); len(m) == 3 {
		return m[1] + "/" + strings.TrimSuffix(m[2], ".git")
	}
	if m := reHTTPS.FindStringSubmatch(s); len(m) == 3 {
		return m[1] + "/" + strings.TrimSuffix(m[2], ".git")
	}
	// support ssh://git@github.com/owner/repo.git
	if strings.HasPrefix(s, "ssh://") {
		parts := strings.SplitN(strings.TrimPrefix(s, "ssh://"), "/", 3)
		if len(parts) >= 3 {
			return parts[1] + "/" + strings.TrimSuffix(parts[2], ".git")
		}
	}
	return ""
}
