package provider

import (
	"context"
	"net/http"

	"github.com/shouni/go-studio-kit/pkg/domain"
)

// ImageConfig は画像ジョブの生成パラメータです。
type ImageConfig struct {
	SizeRatio  string // 例: "3:4"
	Resolution string // 例: "2k"
}

// ImageAdapter は画像生成ジョブの投入とステータス照会を行います。
type ImageAdapter struct {
	client *Client
	model  string
}

// NewImageAdapter は ImageAdapter を生成します。
func NewImageAdapter(c *Client, model string) *ImageAdapter {
	return &ImageAdapter{client: c, model: model}
}

// imageJobRequest はジョブ作成リクエストのワイヤ形状です。
// プロバイダ側のゲートウェイは size と aspect_ratio のどちらを尊重するかが
// 一貫していないため、冗長でも両方のキーに同じ値を入れて送ります。
type imageJobRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	Size        string   `json:"size"`
	AspectRatio string   `json:"aspect_ratio"`
	Resolution  string   `json:"resolution,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
}

// Submit は画像生成ジョブを作成し、プロバイダが採番したジョブIDを返します。
func (a *ImageAdapter) Submit(ctx context.Context, prompt string, cfg ImageConfig, references []string) (string, error) {
	raw, err := a.client.Request(ctx, http.MethodPost, "/v1/images/generations", imageJobRequest{
		Model:       a.model,
		Prompt:      prompt,
		Size:        cfg.SizeRatio,
		AspectRatio: cfg.SizeRatio,
		Resolution:  cfg.Resolution,
		ImageURLs:   references,
	})
	if err != nil {
		return "", err
	}
	return parseTaskID(raw)
}

// Status は画像ジョブの現在状態を返します。
func (a *ImageAdapter) Status(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
	return statusByID(ctx, a.client, jobID)
}
