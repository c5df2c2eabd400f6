// Package gitcli implements the ResultPublisher port by committing and
// pushing the collection root with the git CLI.
package gitcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// commandRunner abstracts process execution so tests can substitute canned
// output for the git binary.
type commandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Publisher stages one path, commits, and pushes. It never creates branches
// or sets upstreams; the working tree is expected to be a clone that is
// already set up to push.
type Publisher struct {
	runner  commandRunner
	gitPath string
	workDir string
	addPath string
}

// NewPublisher creates a Publisher that runs gitPath inside workDir and stages
// addPath on every publish.
func NewPublisher(gitPath, workDir, addPath string) *Publisher {
	return &Publisher{
		runner:  execRunner{},
		gitPath: gitPath,
		workDir: workDir,
		addPath: addPath,
	}
}

// NewPublisherWithRunner creates a Publisher with a custom command runner.
// Used by tests to avoid spawning real processes.
func NewPublisherWithRunner(runner commandRunner, workDir, addPath string) *Publisher {
	return &Publisher{
		runner:  runner,
		gitPath: "git",
		workDir: workDir,
		addPath: addPath,
	}
}

// Publish stages the collection root and, if anything changed, commits with
// the given message and pushes. A clean tree is a valid outcome: committed is
// false and no push happens.
func (p *Publisher) Publish(ctx context.Context, message string) (bool, error) {
	if _, stderr, err := p.runner.Run(ctx, p.workDir, p.gitPath, "add", p.addPath); err != nil {
		return false, commandError("git add", err, stderr)
	}

	stdout, stderr, err := p.runner.Run(ctx, p.workDir, p.gitPath, "commit", "-m", message)
	if err != nil {
		// git exits non-zero when the tree is clean; that is a no-op, not a
		// failure. The notice lands on stdout or stderr depending on version.
		combined := string(stdout) + string(stderr)
		if strings.Contains(combined, "nothing to commit") || strings.Contains(combined, "nothing added to commit") {
			return false, nil
		}
		return false, commandError("git commit", err, stderr)
	}

	if _, stderr, err := p.runner.Run(ctx, p.workDir, p.gitPath, "push"); err != nil {
		return false, commandError("git push", err, stderr)
	}
	return true, nil
}

// commandError wraps a failed git invocation, folding in stderr since git
// writes its diagnostics there.
func commandError(op string, err error, stderr []byte) error {
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}
