// Package gateway wraps the GitHub API calls the reviewer makes:
// listing a pull request's changed files and publishing review
// feedback back to it.
package gateway

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// ChangedFile is one entry of a pull request's file list. Patch is
// empty for binary files and content-free renames; such files carry
// nothing to review.
type ChangedFile struct {
	Filename string
	Patch    string
}

// pullRequestsService is the subset of the go-github pull-requests
// service the gateway uses, split out so tests can stub it.
type pullRequestsService interface {
	ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.PullRequestComment) (*github.PullRequestComment, *github.Response, error)
}

// issuesService is the subset of the go-github issues service the
// gateway uses.
type issuesService interface {
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

// Client talks to the GitHub API on behalf of one run.
type Client struct {
	pulls  pullRequestsService
	issues issuesService
}

// New creates a gateway authenticated with the given access token.
func New(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	gh := github.NewClient(tc)

	return &Client{
		pulls:  gh.PullRequests,
		issues: gh.Issues,
	}
}

// ChangedFiles lists the files modified by the pull request, with
// their per-file patch text.
func (c *Client) ChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error) {
	files, _, err := c.pulls.ListFiles(ctx, owner, repo, number, nil)
	if err != nil {
		return nil, fmt.Errorf("list pull request files: %w", err)
	}

	out := make([]ChangedFile, 0, len(files))
	for _, f := range files {
		out = append(out, ChangedFile{
			Filename: f.GetFilename(),
			Patch:    f.GetPatch(),
		})
	}
	return out, nil
}

// PostSummaryComment publishes one top-level comment on the pull
// request conversation.
func (c *Client) PostSummaryComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	if _, _, err := c.issues.CreateComment(ctx, owner, repo, number, comment); err != nil {
		return fmt.Errorf("post summary comment: %w", err)
	}
	return nil
}

// PostInlineComment publishes a review comment anchored to a line on
// the new-file side of the diff.
func (c *Client) PostInlineComment(ctx context.Context, owner, repo string, number int, body, commitSHA, path string, line int) error {
	comment := &github.PullRequestComment{
		Body:     github.String(body),
		CommitID: github.String(commitSHA),
		Path:     github.String(path),
		Line:     github.Int(line),
		Side:     github.String("RIGHT"),
	}
	if _, _, err := c.pulls.CreateComment(ctx, owner, repo, number, comment); err != nil {
		return fmt.Errorf("post review comment on %s: %w", path, err)
	}
	return nil
}
