package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StagedFile describes a file made publicly fetchable.
type StagedFile struct {
	Path string
	Name string
	URL  string
}

// Publisher stages local files into a publicly served uploads directory and
// builds the URLs the remote platform fetches them from.
type Publisher struct {
	uploadsDir string
	baseURL    string
}

// NewPublisher constructs a publisher serving uploadsDir under baseURL.
func NewPublisher(uploadsDir, baseURL string) (*Publisher, error) {
	if strings.TrimSpace(uploadsDir) == "" {
		return nil, errors.New("uploads directory required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("public base url required")
	}
	return &Publisher{uploadsDir: uploadsDir, baseURL: baseURL}, nil
}

// Publish copies localPath into the uploads directory under a fresh unique
// name and returns the staged file. The source is copied, never moved, so the
// caller keeps ownership of the original.
func (p *Publisher) Publish(localPath string) (StagedFile, error) {
	if strings.TrimSpace(localPath) == "" {
		return StagedFile{}, errors.New("local path required")
	}
	if err := os.MkdirAll(p.uploadsDir, 0o755); err != nil {
		return StagedFile{}, fmt.Errorf("create uploads directory: %w", err)
	}

	name := stagedName(filepath.Base(localPath))
	destination := filepath.Join(p.uploadsDir, name)
	if err := copyFile(localPath, destination); err != nil {
		return StagedFile{}, fmt.Errorf("stage %s: %w", filepath.Base(localPath), err)
	}

	return StagedFile{
		Path: destination,
		Name: name,
		URL:  fmt.Sprintf("%s/public/uploads/%s", p.baseURL, url.PathEscape(name)),
	}, nil
}

// Retract removes a staged file. Retracting a file that is already gone is
// not an error, so cleanup paths can run unconditionally.
func (p *Publisher) Retract(stagedPath string) error {
	if strings.TrimSpace(stagedPath) == "" {
		return nil
	}
	if err := os.Remove(stagedPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// stagedName prefixes the original name with a timestamp and a short random
// token so repeated publishes of the same source never collide.
func stagedName(original string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), token, sanitize(original))
}

func sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if cleaned == "" || strings.Trim(cleaned, "._") == "" {
		return "media"
	}
	return cleaned
}

func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(destination)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(destination)
		return err
	}
	return nil
}
