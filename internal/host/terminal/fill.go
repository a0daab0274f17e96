package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Togather-Foundation/mapgen/internal/host"
	"github.com/schollz/progressbar/v3"
)

// ErrNotImage is returned when the map service answers with something
// other than an image, typically an error document.
var ErrNotImage = errors.New("response is not an image")

// FillLayerWithImage downloads imageURL into <layer name>.<ext> in the
// output directory. In dry-run mode it only prints the URL.
func (t *Terminal) FillLayerWithImage(ctx context.Context, imageURL string, layer host.Layer) error {
	if t.cfg.DryRun {
		t.printf("%s\n", imageURL)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := t.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch map image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fetch map image: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("%w: content type %q", ErrNotImage, resp.Header.Get("Content-Type"))
	}

	path := filepath.Join(t.cfg.OutputDir, fileName(layer.Name)+imageExt(mediaType))
	if err := t.save(resp, path); err != nil {
		return err
	}

	t.logger.Info().
		Str("layer", layer.Name).
		Str("path", path).
		Msg("map image saved")
	t.printf("%s\n", path)
	return nil
}

func (t *Terminal) save(resp *http.Response, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".mapgen-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	var dst io.Writer = tmp
	if t.cfg.Progress {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(t.cfg.Out),
			progressbar.OptionSetDescription("downloading map"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		defer func() { _ = bar.Finish() }()
		dst = io.MultiWriter(tmp, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("download map image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save map image: %w", err)
	}
	return nil
}

func imageExt(mediaType string) string {
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}

// fileName turns a layer name into a safe file name.
func fileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == ".." {
		return "map"
	}
	return clean
}
