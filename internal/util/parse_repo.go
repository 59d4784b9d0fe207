package util

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var repoNameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// ParseRepo normalizes a repository argument to owner/repo. It accepts
// owner/repo, remote URLs and GitHub web URLs such as
// https://github.com/owner/repo/issues?q=is%3Aopen.
func ParseRepo(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty repository")
	}
	if repoNameRe.MatchString(s) {
		return strings.TrimSuffix(s, ".git"), nil
	}
	if r := parseRemoteURL(s); r != "" && !strings.HasPrefix(s, "http") {
		return r, nil
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid repository %q: want owner/repo or a repository URL", s)
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) < 2 || segs[0] == "" || segs[1] == "" {
		return "", fmt.Errorf("invalid repository URL %q: missing owner or name", s)
	}
	return segs[0] + "/" + strings.TrimSuffix(segs[1], ".git"), nil
}
