package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPulls struct {
	listFilesFunc func(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
	lastComment   *github.PullRequestComment
	commentErr    error
}

func (s *stubPulls) ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
	if s.listFilesFunc != nil {
		return s.listFilesFunc(ctx, owner, repo, number, opts)
	}
	return nil, nil, nil
}

func (s *stubPulls) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.PullRequestComment) (*github.PullRequestComment, *github.Response, error) {
	s.lastComment = comment
	return comment, nil, s.commentErr
}

type stubIssues struct {
	lastComment *github.IssueComment
	commentErr  error
}

func (s *stubIssues) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	s.lastComment = comment
	return comment, nil, s.commentErr
}

func TestChangedFiles(t *testing.T) {
	pulls := &stubPulls{
		listFilesFunc: func(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
			assert.Equal(t, "octo", owner)
			assert.Equal(t, "widgets", repo)
			assert.Equal(t, 42, number)
			return []*github.CommitFile{
				{Filename: github.String("main.go"), Patch: github.String("@@ -1 +1 @@\n+x\n")},
				{Filename: github.String("logo.png")},
			}, nil, nil
		},
	}
	client := &Client{pulls: pulls, issues: &stubIssues{}}

	files, err := client.ChangedFiles(context.Background(), "octo", "widgets", 42)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "main.go", files[0].Filename)
	assert.Equal(t, "@@ -1 +1 @@\n+x\n", files[0].Patch)
	assert.Empty(t, files[1].Patch)
}

func TestChangedFilesError(t *testing.T) {
	pulls := &stubPulls{
		listFilesFunc: func(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
			return nil, nil, errors.New("boom")
		},
	}
	client := &Client{pulls: pulls, issues: &stubIssues{}}

	_, err := client.ChangedFiles(context.Background(), "octo", "widgets", 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list pull request files")
}

func TestPostSummaryComment(t *testing.T) {
	issues := &stubIssues{}
	client := &Client{pulls: &stubPulls{}, issues: issues}

	require.NoError(t, client.PostSummaryComment(context.Background(), "octo", "widgets", 42, "review text"))
	require.NotNil(t, issues.lastComment)
	assert.Equal(t, "review text", issues.lastComment.GetBody())
}

func TestPostInlineComment(t *testing.T) {
	pulls := &stubPulls{}
	client := &Client{pulls: pulls, issues: &stubIssues{}}

	err := client.PostInlineComment(context.Background(), "octo", "widgets", 42, "nit", "abc123", "main.go", 7)
	require.NoError(t, err)

	c := pulls.lastComment
	require.NotNil(t, c)
	assert.Equal(t, "nit", c.GetBody())
	assert.Equal(t, "abc123", c.GetCommitID())
	assert.Equal(t, "main.go", c.GetPath())
	assert.Equal(t, 7, c.GetLine())
	assert.Equal(t, "RIGHT", c.GetSide())
}

func TestPostInlineCommentError(t *testing.T) {
	pulls := &stubPulls{commentErr: errors.New("422 unprocessable")}
	client := &Client{pulls: pulls, issues: &stubIssues{}}

	err := client.PostInlineComment(context.Background(), "octo", "widgets", 42, "nit", "abc123", "main.go", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.go")
}
