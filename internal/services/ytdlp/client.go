package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"carousel/internal/services"
)

// Download describes a completed acquisition: the media file and the private
// directory it lives in. Callers remove Dir when they are done.
type Download struct {
	Path string
	Dir  string
}

// AuthOptions carries optional auth material injected into the download.
type AuthOptions struct {
	CookiesFile string
	UserAgent   string
	Referer     string
}

// Fetcher defines the acquisition behaviour the pipeline depends on.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string, opts AuthOptions) (Download, error)
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

// WithAuthDefaults sets fallback auth material applied when a call provides none.
func WithAuthDefaults(defaults AuthOptions) Option {
	return func(c *Client) {
		c.defaults = defaults
	}
}

// WithRetryPolicy sets the tool-level retry count and backoff.
func WithRetryPolicy(retries, sleepSeconds int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
		if sleepSeconds > 0 {
			c.retrySleep = sleepSeconds
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary       string
	downloadRoot string
	defaults     AuthOptions
	retries      int
	retrySleep   int
	exec         Executor
}

// New constructs a yt-dlp client downloading under downloadRoot.
func New(binary, downloadRoot string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	if strings.TrimSpace(downloadRoot) == "" {
		return nil, errors.New("download root required")
	}
	client := &Client{
		binary:       binary,
		downloadRoot: downloadRoot,
		retries:      3,
		retrySleep:   5,
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Fetch downloads sourceURL into a freshly created private subdirectory and
// returns the newest file the tool wrote there.
func (c *Client) Fetch(ctx context.Context, sourceURL string, opts AuthOptions) (Download, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return Download{}, services.Wrap(services.ErrAcquisition, "ytdlp", "fetch", "source url required", nil)
	}

	dir := filepath.Join(c.downloadRoot, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Download{}, services.Wrap(services.ErrAcquisition, "ytdlp", "fetch", "create download directory", err)
	}

	args := c.buildArgs(dir, sourceURL, opts)
	stderr, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return Download{}, services.Wrap(services.ErrAcquisition, "ytdlp", "fetch", failureDetail(sourceURL, args, stderr), err)
	}

	path, err := newestFile(dir)
	if err != nil {
		return Download{}, services.Wrap(services.ErrAcquisition, "ytdlp", "fetch", "no output file found", err)
	}
	return Download{Path: path, Dir: dir}, nil
}

func (c *Client) buildArgs(dir, sourceURL string, opts AuthOptions) []string {
	args := []string{
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--retries", strconv.Itoa(c.retries),
		"--retry-sleep", strconv.Itoa(c.retrySleep),
	}
	if cookies := firstNonEmpty(opts.CookiesFile, c.defaults.CookiesFile); cookies != "" {
		args = append(args, "--cookies", cookies)
	}
	if agent := firstNonEmpty(opts.UserAgent, c.defaults.UserAgent); agent != "" {
		args = append(args, "--user-agent", agent)
	}
	if referer := firstNonEmpty(opts.Referer, c.defaults.Referer); referer != "" {
		args = append(args, "--referer", referer)
	}
	return append(args, sourceURL)
}

// hosts that commonly refuse anonymous downloads.
var authGatedHosts = []string{"instagram.com", "facebook.com", "youtube.com", "twitter.com", "x.com"}

func failureDetail(sourceURL string, args []string, stderr string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "args %q", strings.Join(args, " "))
	if trimmed := tail(stderr, 2000); trimmed != "" {
		fmt.Fprintf(&b, "; stderr: %s", trimmed)
	}
	if host := hostOf(sourceURL); host != "" {
		for _, gated := range authGatedHosts {
			if host == gated || strings.HasSuffix(host, "."+gated) {
				fmt.Fprintf(&b, "; %s often requires login cookies, set acquisition.cookies_file", gated)
				break
			}
		}
	}
	return b.String()
}

func hostOf(sourceURL string) string {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
}

func tail(value string, max int) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) <= max {
		return trimmed
	}
	return "..." + trimmed[len(trimmed)-max:]
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// intermediate suffixes yt-dlp writes while a download is in flight.
var intermediateSuffixes = []string{".part", ".ytdl", ".tmp"}

func newestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var (
		newestPath string
		newestMod  time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isIntermediate(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newestPath == "" || info.ModTime().After(newestMod) {
			newestPath = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	if newestPath == "" {
		return "", errors.New("download directory is empty")
	}
	return newestPath, nil
}

func isIntermediate(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range intermediateSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

var _ Fetcher = (*Client)(nil)
