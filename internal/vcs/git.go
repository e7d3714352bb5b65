// Package vcs implements the version control sink the orchestrator
// hands commit requests to.
package vcs

import (
	"context"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/felixgeelhaar/taskflow/internal/commit"
	"github.com/felixgeelhaar/taskflow/internal/errors"
)

// Git commits against a local repository via go-git. Status-only
// transitions legitimately produce commits whose tree already matches
// the index, so empty commits are allowed.
type Git struct {
	path        string
	authorName  string
	authorEmail string
}

// NewGit creates a sink committing to the repository at path.
func NewGit(path, authorName, authorEmail string) *Git {
	return &Git{path: path, authorName: authorName, authorEmail: authorEmail}
}

// Commit stages everything and records one commit with the canonical
// message.
func (g *Git) Commit(ctx context.Context, rec commit.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := git.PlainOpen(g.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCommitFailed, fmt.Sprintf("cannot open repository at %s", g.path), err).
			WithSuggestion("Initialize a git repository or point git.path at one in the config")
	}

	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrap(errors.ErrCodeCommitFailed, "cannot open worktree", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return errors.Wrap(errors.ErrCodeCommitFailed, "cannot stage changes", err)
	}

	_, err = wt.Commit(rec.Message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  g.authorName,
			Email: g.authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeCommitFailed, fmt.Sprintf("cannot commit %q", rec.Message), err)
	}

	return nil
}
