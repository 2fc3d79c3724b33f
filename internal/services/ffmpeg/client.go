package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"carousel/internal/services"
)

// Transcoder defines the conversion behaviour the pipeline depends on.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath string) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stderr string, err error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps ffmpeg CLI interactions. The external encoder is assumed to be
// resource-intensive, so a single process-wide lock serializes all transcodes
// regardless of how many pipelines are active.
type Client struct {
	binary string
	exec   Executor

	mu sync.Mutex
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// OutputPath returns the deterministic derived path for a transcoded input.
func OutputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(filepath.Dir(inputPath), stem+"-ig.mp4")
}

// Transcode normalizes inputPath into an H.264/AAC MP4 with a
// streaming-friendly layout and returns the output path. Calls queue behind
// the process-wide transcode lock.
func (c *Client) Transcode(ctx context.Context, inputPath string) (string, error) {
	if strings.TrimSpace(inputPath) == "" {
		return "", services.Wrap(services.ErrTranscode, "ffmpeg", "transcode", "input path required", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	outputPath := OutputPath(inputPath)
	args := []string{
		"-y",
		"-i", inputPath,
		"-c:v", "libx264",
		"-profile:v", "high",
		"-level", "4.0",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		outputPath,
	}

	stderr, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		detail := fmt.Sprintf("convert %s", filepath.Base(inputPath))
		if trimmed := tail(stderr, 2000); trimmed != "" {
			detail += "; stderr: " + trimmed
		}
		return "", services.Wrap(services.ErrTranscode, "ffmpeg", "transcode", detail, err)
	}
	return outputPath, nil
}

func tail(value string, max int) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) <= max {
		return trimmed
	}
	return "..." + trimmed[len(trimmed)-max:]
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

var _ Transcoder = (*Client)(nil)
