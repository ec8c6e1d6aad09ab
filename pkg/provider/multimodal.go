package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// ImagePayload は、マルチモーダル解析に渡すインライン画像です。
// Data は base64 エンコード済みのペイロード文字列です。
type ImagePayload struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// AnalyzeAdapter は、参照画像と自由記述の指示をプロバイダのマルチモーダル
// エンドポイントに渡し、平文または構造化JSONを取り出すアダプタです。
type AnalyzeAdapter struct {
	client *Client
	model  string
}

// NewAnalyzeAdapter は AnalyzeAdapter を生成します。
func NewAnalyzeAdapter(c *Client, model string) *AnalyzeAdapter {
	return &AnalyzeAdapter{client: c, model: model}
}

type analyzeRequest struct {
	Model       string        `json:"model"`
	Instruction string        `json:"instruction"`
	Image       *ImagePayload `json:"image,omitempty"`
}

// Analyze は指示（と任意の画像）を解析に掛け、モデルの応答テキストを返します。
func (a *AnalyzeAdapter) Analyze(ctx context.Context, instruction string, image *ImagePayload) (string, error) {
	raw, err := a.client.Request(ctx, http.MethodPost, "/v1/multimodal/analyze", analyzeRequest{
		Model:       a.model,
		Instruction: instruction,
		Image:       image,
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", &ParseError{Msg: err.Error(), Raw: string(raw)}
	}
	if payload.Text == "" {
		return "", &ParseError{Msg: "text not found in response", Raw: string(raw)}
	}
	return payload.Text, nil
}

// AnalyzeJSON は解析結果をJSONドキュメントとして out にデコードします。
// モデルはコードフェンスや前置きを付けてJSONを返すことがあるため、
// 生テキストから最外郭の中括弧スパンをベストエフォートで抽出してから
// デコードを試み、それでも駄目なら ParseError を返します。
func (a *AnalyzeAdapter) AnalyzeJSON(ctx context.Context, instruction string, image *ImagePayload, out any) error {
	text, err := a.Analyze(ctx, instruction, image)
	if err != nil {
		return err
	}

	block, err := ExtractJSONBlock(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(block), out); err != nil {
		return &ParseError{Msg: err.Error(), Raw: text}
	}
	return nil
}

// ExtractJSONBlock は、自由テキストに埋め込まれたJSONオブジェクトを取り出します。
// Markdownのコードフェンスを剥がした後、最初の '{' から最後の '}' までを
// ひとつのドキュメントとして返します。見つからなければ ParseError です。
func ExtractJSONBlock(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", &ParseError{Msg: "json object not found in text", Raw: raw}
	}
	return cleaned[start : end+1], nil
}
