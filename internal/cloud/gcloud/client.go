package gcloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/cloud"
)

// BinaryName is the executable searched for in SearchPaths.
const BinaryName = "gcloud"

// SearchPaths lists the standard installation directories of the Cloud SDK.
var SearchPaths = []string{
	"/usr/bin",
	"/usr/local/bin",
	"/snap/bin",
	"/usr/lib/google-cloud-sdk/bin",
}

// ErrBinaryNotFound is returned by NewClient when no gcloud executable exists in the search paths.
var ErrBinaryNotFound = errors.New("gcloud executable not found")

// Client drives the gcloud CLI. Every call blocks until the subprocess exits.
type Client struct {
	// Binary is the absolute path of the gcloud executable.
	Binary string
}

// NewClient locates the gcloud binary in the given directories (SearchPaths when empty).
func NewClient(dirs ...string) (*Client, error) {
	if len(dirs) == 0 {
		dirs = SearchPaths
	}

	bin, err := lookupBinary(BinaryName, dirs)
	if err != nil {
		return nil, err
	}

	slog.Debug("Located gcloud executable", "path", bin)
	return &Client{Binary: bin}, nil
}

// Name returns the identifier for this provider.
func (c *Client) Name() string {
	return "gcloud"
}

// run executes gcloud with args and returns its stdout.
// A non-zero exit or a failure to start yields a *cloud.CommandError carrying stderr verbatim.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Invoking gcloud", "args", args)
	if err := cmd.Run(); err != nil {
		cmdErr := &cloud.CommandError{
			Provider: "GCloud",
			Args:     args,
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}

		// Name the deadline or cancellation rather than the kill signal.
		if ctxErr := ctx.Err(); ctxErr != nil {
			cmdErr.Err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return "", cmdErr
	}

	return stdout.String(), nil
}

func lookupBinary(name string, dirs []string) (string, error) {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode().Perm()&0o111 == 0 {
			continue
		}
		return candidate, nil
	}
	return "", fmt.Errorf("%w in %v", ErrBinaryNotFound, dirs)
}
