// Package vcs moves and removes example files, going through the git index
// when the file is tracked so history follows the rename.
package vcs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
)

// FileOps moves and removes files.
type FileOps interface {
	Move(oldPath, newPath string) error
	Remove(path string) error
}

// OS performs plain filesystem operations.
type OS struct{}

// Move renames oldPath to newPath.
func (OS) Move(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "rename failed").
			AtPath(oldPath).
			WithContext("target", newPath).
			Build()
	}
	return nil
}

// Remove deletes path.
func (OS) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "remove failed").
			AtPath(path).
			Build()
	}
	return nil
}

// Repo stages moves and removals of tracked files in a git worktree and falls
// back to OS for untracked ones.
type Repo struct {
	repo *git.Repository
	root string
}

// Open finds the repository containing dir.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to open git repository").
			AtPath(dir).
			Build()
	}
	w, err := repo.Worktree()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to get git worktree").Build()
	}
	root, err := filepath.EvalSymlinks(w.Filesystem.Root())
	if err != nil {
		root = w.Filesystem.Root()
	}
	return &Repo{repo: repo, root: root}, nil
}

// rel returns path relative to the worktree root with forward slashes.
func (r *Repo) rel(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(resolved, filepath.Base(abs))
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Tracked reports whether path is in the git index.
func (r *Repo) Tracked(path string) bool {
	rel, ok := r.rel(path)
	if !ok {
		return false
	}
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return false
	}
	_, err = idx.Entry(rel)
	return err == nil
}

// Move renames a file, staging the rename when the source is tracked.
func (r *Repo) Move(oldPath, newPath string) error {
	if !r.Tracked(oldPath) {
		return OS{}.Move(oldPath, newPath)
	}
	relOld, _ := r.rel(oldPath)
	relNew, ok := r.rel(newPath)
	if !ok {
		return errors.GitError("move target is outside the repository").
			AtPath(newPath).
			Build()
	}

	w, err := r.repo.Worktree()
	if err != nil {
		return errors.WrapError(err, errors.CategoryGit, "failed to get git worktree").Build()
	}
	if _, err := w.Move(relOld, relNew); err != nil {
		return errors.WrapError(err, errors.CategoryGit, "failed to move file in git").
			AtPath(relOld).
			WithContext("target", relNew).
			Build()
	}
	return nil
}

// Remove deletes a file, staging the removal when it is tracked.
func (r *Repo) Remove(path string) error {
	if !r.Tracked(path) {
		return OS{}.Remove(path)
	}
	rel, _ := r.rel(path)

	w, err := r.repo.Worktree()
	if err != nil {
		return errors.WrapError(err, errors.CategoryGit, "failed to get git worktree").Build()
	}
	if _, err := w.Remove(rel); err != nil {
		return errors.WrapError(err, errors.CategoryGit, "failed to remove file in git").
			AtPath(rel).
			Build()
	}
	return nil
}
