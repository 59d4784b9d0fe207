package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// fakeRESTClient implements RESTClient for tests by returning canned responses.
// Keys are matched against the path without its query string, or against the
// full path when a key contains '?'.
type fakeRESTClient struct {
	responses map[string]interface{}
	errs      map[string]error
	paths     []string
}

func (f *fakeRESTClient) DoWithContext(ctx context.Context, method string, path string, body io.Reader, v interface{}) error {
	f.paths = append(f.paths, path)
	for k, err := range f.errs {
		if strings.Contains(path, k) {
			return err
		}
	}
	resp, ok := f.responses[path]
	if !ok {
		p := path
		if i := strings.Index(p, "?"); i >= 0 {
			p = p[:i]
		}
		for k, val := range f.responses {
			if strings.Contains(k, "?") {
				if strings.HasPrefix(path, strings.SplitN(k, "?", 2)[0]) && strings.Contains(path, strings.SplitN(k, "?", 2)[1]) {
					resp, ok = val, true
					break
				}
				continue
			}
			if p == k {
				resp, ok = val, true
				break
			}
		}
	}
	if !ok {
		return fmt.Errorf("no fake response for %s", path)
	}
	// marshal then unmarshal into v to mimic behavior of real client
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
