package provider

import (
	"context"
	"net/http"

	"github.com/shouni/go-studio-kit/pkg/domain"
)

// VideoConfig は動画ジョブの生成パラメータです。
type VideoConfig struct {
	AspectRatio     string // 例: "16:9"
	DurationSeconds int
}

// VideoAdapter は動画生成ジョブの投入とステータス照会を行います。
type VideoAdapter struct {
	client *Client
	model  string
}

// NewVideoAdapter は VideoAdapter を生成します。
func NewVideoAdapter(c *Client, model string) *VideoAdapter {
	return &VideoAdapter{client: c, model: model}
}

type videoJobRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	AspectRatio string   `json:"aspect_ratio"`
	Duration    int      `json:"duration"`
	ImageURLs   []string `json:"image_urls,omitempty"`
}

// Submit は動画生成ジョブを作成し、プロバイダが採番したジョブIDを返します。
func (a *VideoAdapter) Submit(ctx context.Context, prompt string, cfg VideoConfig, references []string) (string, error) {
	raw, err := a.client.Request(ctx, http.MethodPost, "/v1/videos/generations", videoJobRequest{
		Model:       a.model,
		Prompt:      prompt,
		AspectRatio: cfg.AspectRatio,
		Duration:    cfg.DurationSeconds,
		ImageURLs:   references,
	})
	if err != nil {
		return "", err
	}
	return parseTaskID(raw)
}

// Status は動画ジョブの現在状態を返します。
func (a *VideoAdapter) Status(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
	return statusByID(ctx, a.client, jobID)
}
