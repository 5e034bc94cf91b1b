// Package bot drives one review run: load the triggering event, fetch
// the pull request's changed files, generate review feedback, and
// publish it back to the pull request.
package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/galelabs/gale/internal/config"
	"github.com/galelabs/gale/internal/diff"
	"github.com/galelabs/gale/internal/event"
	"github.com/galelabs/gale/internal/gateway"
)

// Gateway is the pull-request side of the run: listing changed files
// and publishing comments.
type Gateway interface {
	ChangedFiles(ctx context.Context, owner, repo string, number int) ([]gateway.ChangedFile, error)
	PostSummaryComment(ctx context.Context, owner, repo string, number int, body string) error
	PostInlineComment(ctx context.Context, owner, repo string, number int, body, commitSHA, path string, line int) error
}

// Reviewer turns diff text into review prose. Implementations never
// fail; they degrade to a fallback body instead.
type Reviewer interface {
	Review(ctx context.Context, diffText string) string
}

// Bot orchestrates a single run. Every failure is reported on the
// console and absorbed; a run never signals failure through its exit
// status.
type Bot struct {
	cfg      *config.Config
	gw       Gateway
	reviewer Reviewer
	log      zerolog.Logger
}

// New wires a bot from its collaborators.
func New(cfg *config.Config, gw Gateway, reviewer Reviewer, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:      cfg,
		gw:       gw,
		reviewer: reviewer,
		log:      log,
	}
}

// Run executes one review pass over the pull request described by the
// configured event payload.
func (b *Bot) Run(ctx context.Context) {
	owner, repo, err := b.cfg.SplitRepository()
	if err != nil {
		b.log.Error().Err(err).Msg("invalid repository identifier")
		return
	}

	pr, err := event.Load(b.cfg.EventPath)
	if err != nil {
		b.log.Error().Err(err).Str("path", b.cfg.EventPath).Msg("cannot load event payload")
		return
	}

	log := b.log.With().Int("pr", pr.Number).Str("repo", b.cfg.Repository).Logger()
	log.Info().Str("mode", string(b.cfg.Mode)).Msg("starting review")

	files, err := b.gw.ChangedFiles(ctx, owner, repo, pr.Number)
	if err != nil {
		// A failed listing means there is nothing to review, not a
		// fatal condition.
		log.Error().Err(err).Msg("fetching changed files failed")
		return
	}
	if len(files) == 0 {
		log.Info().Msg("no changed files detected")
		return
	}

	if b.cfg.Mode == config.ModeInline {
		b.reviewEachFile(ctx, log, owner, repo, pr, files)
		return
	}
	b.reviewAggregate(ctx, log, owner, repo, pr, files)
}

// reviewAggregate concatenates every reviewable patch, generates one
// review for the whole set, and posts it as a single top-level
// comment.
func (b *Bot) reviewAggregate(ctx context.Context, log zerolog.Logger, owner, repo string, pr *event.PullRequest, files []gateway.ChangedFile) {
	var diffText strings.Builder
	for _, f := range files {
		if f.Patch == "" {
			log.Warn().Str("file", f.Filename).Msg("skipping file with no patch")
			continue
		}
		log.Info().Str("file", f.Filename).Msg("collecting diff")
		fmt.Fprintf(&diffText, "\n--- %s ---\n%s\n", f.Filename, f.Patch)
	}

	if strings.TrimSpace(diffText.String()) == "" {
		log.Info().Msg("no patch content available to review")
		return
	}

	body := b.reviewer.Review(ctx, diffText.String())
	if err := b.gw.PostSummaryComment(ctx, owner, repo, pr.Number, body); err != nil {
		log.Error().Err(err).Msg("posting summary comment failed")
		return
	}
	log.Info().Msg("posted top-level review comment")
}

// reviewEachFile generates a review per file and posts it as an inline
// comment anchored to the file's first added line. Files without an
// added line, and files whose comment cannot be posted, are skipped
// without affecting the rest.
func (b *Bot) reviewEachFile(ctx context.Context, log zerolog.Logger, owner, repo string, pr *event.PullRequest, files []gateway.ChangedFile) {
	for _, f := range files {
		flog := log.With().Str("file", f.Filename).Logger()

		if f.Patch == "" {
			flog.Warn().Msg("skipping file with no patch")
			continue
		}

		flog.Info().Msg("reviewing file")
		body := b.reviewer.Review(ctx, f.Patch)

		line, ok := diff.FirstAddedLine(f.Patch)
		if !ok {
			flog.Warn().Msg("no added line to anchor a comment on, skipping")
			continue
		}

		if err := b.gw.PostInlineComment(ctx, owner, repo, pr.Number, body, pr.Head.SHA, f.Filename, line); err != nil {
			flog.Error().Err(err).Msg("posting review comment failed")
			continue
		}
		flog.Info().Int("line", line).Msg("posted review comment")
	}
}
