package domain

import "context"

type GenerateRequest struct {
	Email       string `json:"email" binding:"required"`
	Prompt      string `json:"prompt" binding:"required"`
	AspectRatio string `json:"aspect_ratio"`
	Seconds     int    `json:"seconds"`
	FameBooster bool   `json:"fame_booster"`
	TemplateID  string `json:"template_id"`
	MusicID     string `json:"music_id"`
}

type GenerateResponse struct {
	Video           Video   `json:"video"`
	Message         string  `json:"message"`
	PaymentRequired bool    `json:"payment_required"`
	Price           float64 `json:"price,omitempty"`
}

type DownloadRequest struct {
	Email   string `json:"email" binding:"required"`
	VideoID string `json:"video_id" binding:"required"`
}

type DownloadResponse struct {
	URL string `json:"url"`
}

// GenerationJob is what the external backend needs to render a clip.
type GenerationJob struct {
	Prompt        string
	LengthSeconds int
	AspectRatio   string
	TemplateID    string
	MusicID       string
}

// Generator renders a clip and returns its URL. Implementations talk
// to the external video backend; failures are handled by the caller
// with a fallback URL.
type Generator interface {
	Generate(ctx context.Context, job GenerationJob) (string, error)
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Download(ctx context.Context, req DownloadRequest) (DownloadResponse, error)
	List(ctx context.Context) ([]Video, error)
	ListByEmail(ctx context.Context, email string) ([]Video, error)
}
