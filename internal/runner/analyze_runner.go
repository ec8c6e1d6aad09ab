package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shouni/go-studio-kit/internal/prompt"
	"github.com/shouni/go-studio-kit/pkg/asset"
	"github.com/shouni/go-studio-kit/pkg/provider"
)

// AnalyzeRunner は、参照画像をマルチモーダル解析にかけ、モードに応じた
// 記述テキストまたは構造化JSONを返すのだ。
type AnalyzeRunner struct {
	adapter  *provider.AnalyzeAdapter
	resolver *asset.Resolver
}

// NewAnalyzeRunner は AnalyzeRunner の新しいインスタンスを生成して返すのだ。
func NewAnalyzeRunner(adapter *provider.AnalyzeAdapter, resolver *asset.Resolver) *AnalyzeRunner {
	return &AnalyzeRunner{adapter: adapter, resolver: resolver}
}

// Run は、モードに対応する解析指示テンプレートで画像を解析するのだ。
// structure モードでは応答からJSONを抽出して整形し直して返すのだ。
func (ar *AnalyzeRunner) Run(ctx context.Context, mode, ref string) (string, error) {
	instruction, err := prompt.GetPromptByMode(mode)
	if err != nil {
		return "", err
	}

	var image *provider.ImagePayload
	if ref != "" {
		payload, err := ar.resolver.InlinePayload(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("解析対象の画像の解決に失敗したのだ: %w", err)
		}
		image = &provider.ImagePayload{MimeType: payload.MimeType, Data: payload.Data}
	}

	slog.Info("マルチモーダル解析を開始するのだ", "mode", mode, "has_image", image != nil)

	if mode == prompt.ModeStructure {
		var structured map[string]any
		if err := ar.adapter.AnalyzeJSON(ctx, instruction, image, &structured); err != nil {
			return "", fmt.Errorf("構造化解析に失敗したのだ: %w", err)
		}
		pretty, err := json.MarshalIndent(structured, "", "  ")
		if err != nil {
			return "", err
		}
		return string(pretty), nil
	}

	text, err := ar.adapter.Analyze(ctx, instruction, image)
	if err != nil {
		return "", fmt.Errorf("画像の記述解析に失敗したのだ: %w", err)
	}
	return text, nil
}
