package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-studio-kit/pkg/asset"
	"github.com/shouni/go-studio-kit/pkg/batch"
	"github.com/shouni/go-studio-kit/pkg/compose"
	"github.com/shouni/go-studio-kit/pkg/domain"
)

// BatchRunner は、マニフェストのアイテム列を合成・投入・追跡し、
// 成果物の保存と結果レポートまでを一括で実行するのだ。
type BatchRunner struct {
	controller   *batch.Controller
	resolver     *asset.Resolver
	outputDir    string
	baseFileName string // image.png / video.mp4
	noSave       bool
}

// NewBatchRunner は BatchRunner の新しいインスタンスを生成して返すのだ。
func NewBatchRunner(controller *batch.Controller, resolver *asset.Resolver, outputDir, baseFileName string, noSave bool) *BatchRunner {
	return &BatchRunner{
		controller:   controller,
		resolver:     resolver,
		outputDir:    outputDir,
		baseFileName: baseFileName,
		noSave:       noSave,
	}
}

// ItemResult は、バッチ1アイテム分の最終結果なのだ。
type ItemResult struct {
	LocalID       string        `json:"local_id"`
	Prompt        string        `json:"prompt"`
	JobID         string        `json:"job_id,omitempty"`
	Status        domain.Status `json:"status"`
	ResultRef     string        `json:"result_ref,omitempty"`
	SavedPath     string        `json:"saved_path,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
	Message       string        `json:"message,omitempty"`
}

// Run は、各アイテムのプロンプトを合成し、参照画像を解決してから
// バッチを投入し、全ジョブの終端まで待機して結果を返すのだ。
func (br *BatchRunner) Run(ctx context.Context, items []ManifestItem, defaults *ComposeSpec) ([]ItemResult, error) {
	reqs, err := br.buildRequests(ctx, items, defaults)
	if err != nil {
		return nil, err
	}

	slog.Info("バッチ投入を開始するのだ", "items", len(reqs))
	localIDs := br.controller.SubmitBatch(ctx, reqs)

	if err := br.controller.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ジョブの完了待機が打ち切られたのだ: %w", err)
	}

	results := br.collectResults(ctx, localIDs)
	if err := br.saveReport(results); err != nil {
		slog.Warn("結果レポートの保存に失敗したのだ", "error", err)
	}
	return results, nil
}

// buildRequests は、合成済みプロンプトと解決済み参照の投入要求を組み立てるのだ。
// アイテムが1件だけで参照画像が複数ある場合は、同じプロンプトを参照ごとに
// ブロードキャストするのだ。
func (br *BatchRunner) buildRequests(ctx context.Context, items []ManifestItem, defaults *ComposeSpec) ([]batch.Request, error) {
	var reqs []batch.Request
	for i, item := range items {
		spec := defaults
		if item.Params != nil {
			spec = item.Params
		}
		promptText := compose.Compose(item.Prompt, spec.ToParams())
		if promptText == "" {
			return nil, fmt.Errorf("%d 番目のアイテムのプロンプトが合成後に空になったのだ", i+1)
		}

		refs := make([]string, 0, len(item.References))
		for _, ref := range item.References {
			resolved, err := br.resolver.ResolveReference(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("参照画像の解決に失敗したのだ (%s): %w", ref, err)
			}
			refs = append(refs, resolved)
		}

		if len(items) == 1 && len(refs) > 1 {
			return batch.ExpandRequests([]string{promptText}, refs), nil
		}
		reqs = append(reqs, batch.Request{Prompt: promptText, References: refs})
	}
	return reqs, nil
}

// collectResults は、投入順を保ったまま各アイテムの最終状態を集めるのだ。
func (br *BatchRunner) collectResults(ctx context.Context, localIDs []string) []ItemResult {
	results := make([]ItemResult, 0, len(localIDs))
	savedIndex := 0
	for _, localID := range localIDs {
		item, ok := br.controller.Item(localID)
		if !ok {
			continue
		}

		result := ItemResult{LocalID: localID, Prompt: item.PromptText}
		if item.Job != nil {
			result.JobID = item.Job.ID
			result.Status = item.Job.Status
			result.ResultRef = item.Job.ResultRef
			result.FailureReason = item.Job.FailureReason
		}

		switch result.Status {
		case domain.StatusSucceeded:
			savedIndex++
			if path, err := br.saveArtifact(ctx, result.ResultRef, savedIndex); err != nil {
				slog.Warn("成果物の保存に失敗したのだ", "local_id", localID, "error", err)
			} else if path != "" {
				result.SavedPath = path
				slog.Info("成果物を保存したのだ", "local_id", localID, "path", path)
			}
		case domain.StatusFailed:
			result.Message = FailureMessage(result.FailureReason)
			slog.Warn("アイテムが失敗したのだ", "local_id", localID, "reason", result.FailureReason, "message", result.Message)
		}

		results = append(results, result)
	}
	return results
}

// saveArtifact は、リモートの成果物を連番付きパスへダウンロード保存するのだ。
func (br *BatchRunner) saveArtifact(ctx context.Context, resultRef string, index int) (string, error) {
	if br.noSave || resultRef == "" || !strings.HasPrefix(resultRef, "http") {
		return "", nil
	}

	basePath, err := asset.ResolveOutputPath(br.outputDir, br.baseFileName)
	if err != nil {
		return "", err
	}
	path, err := asset.GenerateIndexedPath(basePath, index)
	if err != nil {
		return "", err
	}

	data, err := br.resolver.Download(ctx, resultRef)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// saveReport は、バッチ全体の結果をJSONで書き出すのだ。
func (br *BatchRunner) saveReport(results []ItemResult) error {
	if br.noSave {
		return nil
	}
	path, err := asset.ResolveOutputPath(br.outputDir, asset.DefaultResultJSONName)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
