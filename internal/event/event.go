// Package event reads the pull-request event payload that GitHub
// Actions writes to the path named by GITHUB_EVENT_PATH.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// PullRequest carries the fields of the event payload the reviewer
// needs: the PR number, its API URL, and the head commit to anchor
// inline comments to.
type PullRequest struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
	Head   Head   `json:"head"`
}

// Head identifies the tip commit of the pull request branch.
type Head struct {
	SHA string `json:"sha"`
}

type payload struct {
	PullRequest *PullRequest `json:"pull_request"`
}

// Load reads and validates the event payload at path. It returns an
// error when the file is unreadable, is not a pull-request event, or
// is missing any field required to post a review.
func Load(path string) (*PullRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event payload: %w", err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}

	if p.PullRequest == nil {
		return nil, errors.New("event payload has no pull_request data")
	}
	pr := p.PullRequest
	if pr.Number == 0 {
		return nil, errors.New("event payload is missing the pull request number")
	}
	if pr.URL == "" {
		return nil, errors.New("event payload is missing the pull request URL")
	}
	if pr.Head.SHA == "" {
		return nil, errors.New("event payload is missing the head commit SHA")
	}
	return pr, nil
}
