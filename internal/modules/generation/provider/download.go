package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
)

// DownloadImage fetches url into destPath, creating the directory and
// overwriting any existing file. data: URLs are decoded without a request.
func (c *Client) DownloadImage(ctx context.Context, url, destPath string) error {
	if strings.HasPrefix(url, "data:") {
		payload, err := decodeDataURL(url)
		if err != nil {
			return apperror.Wrap(apperror.ErrDownload, "decode inline image: %v", err)
		}
		return writeFile(destPath, bytes.NewReader(payload))
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperror.Wrap(apperror.ErrDownload, "invalid image url: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Wrap(apperror.ErrDownload, "fetch image: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperror.Wrap(apperror.ErrDownload, "fetch image: unexpected status %d", resp.StatusCode)
	}
	return writeFile(destPath, resp.Body)
}

func writeFile(destPath string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return apperror.Wrap(apperror.ErrDownload, "create image dir: %v", err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return apperror.Wrap(apperror.ErrDownload, "create image file: %v", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return apperror.Wrap(apperror.ErrDownload, "write image file: %v", err)
	}
	if err := out.Close(); err != nil {
		return apperror.Wrap(apperror.ErrDownload, "close image file: %v", err)
	}
	return nil
}

// decodeDataURL handles data:[<mediatype>][;base64],<data>.
func decodeDataURL(url string) ([]byte, error) {
	meta, data, ok := strings.Cut(strings.TrimPrefix(url, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(data)
	}
	return []byte(data), nil
}
