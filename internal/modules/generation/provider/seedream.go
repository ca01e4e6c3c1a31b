// Package provider talks to the Seedream image generation API on Volcengine Ark.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
)

const (
	DefaultAPIURL          = "https://ark.cn-beijing.volces.com/api/v3/images/generations"
	DefaultSize            = "2048x2048"
	DefaultModel           = "doubao-seedream-4.5"
	ResponseFormatURL      = "url"
	ResponseFormatB64JSON  = "b64_json"
	DefaultTimeout         = 120 * time.Second
	DefaultDownloadTimeout = 60 * time.Second

	userAgent = "NexusArtGallery/1.0 (generated image fetcher)"
)

type Config struct {
	APIKey          string
	EndpointID      string
	APIURL          string
	Timeout         time.Duration
	DownloadTimeout time.Duration
}

// Options tune one generation call. Zero values fall back to the defaults.
type Options struct {
	Size           string
	Model          string
	ResponseFormat string
	Watermark      bool
	// MaxImages above 1 asks the provider for a related image group.
	MaxImages int
}

// Client is safe for concurrent use; it holds no per-request state.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(cfg Config) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.EndpointID = strings.TrimSpace(cfg.EndpointID)
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		now:        time.Now,
	}
	if !c.IsEnabled() {
		log.Println("⚠️ Image generation disabled: set VOLC_API_KEY and VOLC_SEEDREAM_ENDPOINT to enable it")
	}
	return c
}

// IsEnabled reports whether both the API key and the inference endpoint are configured.
func (c *Client) IsEnabled() bool {
	return c.cfg.APIKey != "" && c.cfg.EndpointID != ""
}

func (c *Client) TextToImage(ctx context.Context, prompt string, opts Options) ([]entity.ImageDescriptor, error) {
	return c.generate(ctx, prompt, nil, opts)
}

// ImageToImage generates from a prompt plus one or more reference images (URLs or data URLs).
func (c *Client) ImageToImage(ctx context.Context, prompt string, references []string, opts Options) ([]entity.ImageDescriptor, error) {
	if len(references) == 0 {
		return nil, apperror.Wrap(apperror.ErrValidation, "at least one reference image is required")
	}
	return c.generate(ctx, prompt, references, opts)
}

func (c *Client) generate(ctx context.Context, prompt string, references []string, opts Options) ([]entity.ImageDescriptor, error) {
	if !c.IsEnabled() {
		return nil, apperror.Wrap(apperror.ErrServiceUnavailable, "image generation is not configured; set VOLC_API_KEY and VOLC_SEEDREAM_ENDPOINT")
	}
	opts = withDefaults(opts)

	reqBody := generationRequest{
		// Ark addresses models through the inference endpoint id.
		Model:          c.cfg.EndpointID,
		Prompt:         prompt,
		Image:          references,
		Size:           opts.Size,
		ResponseFormat: opts.ResponseFormat,
		Watermark:      opts.Watermark,
	}
	if opts.MaxImages > 1 {
		reqBody.SequentialImageGeneration = "auto"
		reqBody.SequentialOptions = &sequentialOptions{MaxImages: opts.MaxImages}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	log.Printf("🎨 Seedream request: model=%s endpoint=%s size=%s references=%d", opts.Model, reqBody.Model, reqBody.Size, len(references))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrProvider, "seedream request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrProvider, "read seedream response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperror.Wrap(apperror.ErrProvider, "seedream api error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return c.mapResponse(raw, opts)
}

func (c *Client) mapResponse(raw []byte, opts Options) ([]entity.ImageDescriptor, error) {
	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, apperror.Wrap(apperror.ErrFormat, "unexpected seedream response: %v", err)
	}
	if decoded.Error != nil {
		return nil, apperror.Wrap(apperror.ErrProvider, "generation failed: %s (code: %s)", decoded.Error.Message, decoded.Error.Code)
	}
	if decoded.Data == nil {
		return nil, apperror.Wrap(apperror.ErrFormat, "unexpected seedream response: no data")
	}

	// one timestamp per request; the index keeps ids apart
	stamp := c.now().UnixMilli()
	descriptors := make([]entity.ImageDescriptor, 0, len(*decoded.Data))
	for i, item := range *decoded.Data {
		d := entity.ImageDescriptor{ID: fmt.Sprintf("img_%d_%d", stamp, i)}
		switch {
		case item.Error != nil:
			d.Error = &entity.ProviderItemError{Code: item.Error.Code, Message: item.Error.Message}
		case opts.ResponseFormat == ResponseFormatB64JSON && item.B64JSON != "":
			d.URL = "data:image/jpeg;base64," + item.B64JSON
		case item.URL != "":
			d.URL = item.URL
		default:
			d.Error = &entity.ProviderItemError{Code: "empty_item", Message: "provider returned no image for this item"}
		}
		if d.Error == nil {
			d.Size = item.Size
			if d.Size == "" {
				d.Size = opts.Size
			}
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

func withDefaults(opts Options) Options {
	if opts.Size == "" {
		opts.Size = DefaultSize
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.ResponseFormat == "" {
		opts.ResponseFormat = ResponseFormatURL
	}
	return opts
}

type generationRequest struct {
	Model                     string             `json:"model"`
	Prompt                    string             `json:"prompt"`
	Image                     []string           `json:"image,omitempty"`
	Size                      string             `json:"size"`
	ResponseFormat            string             `json:"response_format"`
	Watermark                 bool               `json:"watermark"`
	Stream                    bool               `json:"stream"`
	SequentialImageGeneration string             `json:"sequential_image_generation,omitempty"`
	SequentialOptions         *sequentialOptions `json:"sequential_image_generation_options,omitempty"`
}

type sequentialOptions struct {
	MaxImages int `json:"max_images"`
}

type generationResponse struct {
	Data  *[]generationItem `json:"data"`
	Error *providerError    `json:"error"`
}

type generationItem struct {
	URL     string         `json:"url"`
	B64JSON string         `json:"b64_json"`
	Size    string         `json:"size"`
	Error   *providerError `json:"error"`
}

type providerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
