package contextsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/elee1766/naochat/src/config"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/afero"
)

// ReposDir is the folder under the context root holding cloned repositories.
const ReposDir = "repos"

// Fetcher brings a repository checkout at dir up to date, cloning it when dir
// holds no repository yet.
type Fetcher interface {
	Fetch(ctx context.Context, dir string, repo config.RepoConfig) error
}

// GitFetcher fetches shallow single-branch checkouts with go-git.
type GitFetcher struct{}

func (GitFetcher) Fetch(ctx context.Context, dir string, repo config.RepoConfig) error {
	var ref plumbing.ReferenceName
	if repo.Branch != "" {
		ref = plumbing.NewBranchReferenceName(repo.Branch)
	}

	r, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:           repo.URL,
			ReferenceName: ref,
			SingleBranch:  true,
			Depth:         1,
		})
		if err != nil {
			return fmt.Errorf("failed to clone %s: %w", repo.URL, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return err
	}
	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    "origin",
		ReferenceName: ref,
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull %s: %w", repo.URL, err)
	}
	return nil
}

// RepoSyncer mirrors configured repositories under repos/.
type RepoSyncer struct {
	fs      afero.Fs
	root    string
	fetcher Fetcher
	logger  *slog.Logger
}

func NewRepos(fs afero.Fs, root string, fetcher Fetcher, logger *slog.Logger) *RepoSyncer {
	return &RepoSyncer{
		fs:      fs,
		root:    filepath.Join(root, ReposDir),
		fetcher: fetcher,
		logger:  logger.With("component", "contextsync"),
	}
}

// RepoStats counts what a repository sync did.
type RepoStats struct {
	Synced  int
	Removed []string
	Failed  []string
}

// Sync fetches every repository, then removes checkouts that are no longer
// configured. A repository that fails is recorded and does not stop the others.
func (r *RepoSyncer) Sync(ctx context.Context, repos []config.RepoConfig) (RepoStats, error) {
	var stats RepoStats
	if err := r.fs.MkdirAll(r.root, 0755); err != nil {
		return stats, fmt.Errorf("failed to create %s: %w", r.root, err)
	}
	for _, repo := range repos {
		if err := r.fetcher.Fetch(ctx, filepath.Join(r.root, repo.Name), repo); err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			r.logger.Error("failed to sync repository", "repository", repo.Name, "error", err)
			stats.Failed = append(stats.Failed, repo.Name)
			continue
		}
		r.logger.Info("repository synced", "repository", repo.Name)
		stats.Synced++
	}

	removed, err := r.RemoveUnusedRepos(repos)
	stats.Removed = removed
	return stats, err
}

// RemoveUnusedRepos deletes folders under repos/ that no configured
// repository maps to, returning their names.
func (r *RepoSyncer) RemoveUnusedRepos(repos []config.RepoConfig) ([]string, error) {
	keep := make(map[string]bool, len(repos))
	for _, repo := range repos {
		keep[repo.Name] = true
	}

	entries, err := afero.ReadDir(r.fs, r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var removed []string
	for _, e := range entries {
		if !e.IsDir() || keep[e.Name()] {
			continue
		}
		path := filepath.Join(r.root, e.Name())
		if err := r.fs.RemoveAll(path); err != nil {
			return removed, err
		}
		r.logger.Info("removed unused repository", "path", path)
		removed = append(removed, e.Name())
	}
	return removed, nil
}
