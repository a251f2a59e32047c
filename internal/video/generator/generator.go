package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kairahstudio/kairah/internal/config"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("video_backend_not_configured")

const requestTimeout = 120 * time.Second

type Client struct {
	log    *zap.Logger
	apiURL string
	apiKey string
	http   *http.Client
}

type ClientParam struct {
	fx.In

	Log *zap.Logger
	Cfg config.Config
}

func NewClient(p ClientParam) videodomain.Generator {
	return &Client{
		log:    p.Log.Named("video.generator"),
		apiURL: strings.TrimSpace(p.Cfg.VideoAPIURL),
		apiKey: strings.TrimSpace(p.Cfg.VideoAPIKey),
		http:   &http.Client{Timeout: requestTimeout},
	}
}

// Generate implements domain.Generator.
func (c *Client) Generate(ctx context.Context, job videodomain.GenerationJob) (string, error) {
	if c.apiURL == "" || c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(map[string]interface{}{
		"prompt":         job.Prompt,
		"length_seconds": job.LengthSeconds,
		"aspect_ratio":   job.AspectRatio,
		"template_id":    job.TemplateID,
		"music_id":       job.MusicID,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("video backend returned %d", resp.StatusCode)
	}

	var out struct {
		VideoURL string `json:"video_url"`
		URL      string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	url := strings.TrimSpace(out.VideoURL)
	if url == "" {
		url = strings.TrimSpace(out.URL)
	}
	if url == "" {
		return "", errors.New("video backend returned no url")
	}
	return url, nil
}
