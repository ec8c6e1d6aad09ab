package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-studio-kit/internal/builder"
	"github.com/shouni/go-studio-kit/internal/config"
	"github.com/shouni/go-studio-kit/internal/runner"
	"github.com/shouni/go-studio-kit/pkg/asset"
	"github.com/shouni/go-studio-kit/pkg/compose"
	"github.com/shouni/go-studio-kit/pkg/domain"
)

// ExecuteGenerate は、マニフェストまたは単発プロンプトから画像バッチを
// 投入し、全ジョブの終端まで追跡して成果物を保存するのだ。
func ExecuteGenerate(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(cfg)
	if err != nil {
		return err
	}

	items, defaults, err := loadWorkload(cfg.Options)
	if err != nil {
		return err
	}

	batchRunner, err := builder.BuildImageBatchRunner(ctx, appCtx)
	if err != nil {
		return fmt.Errorf("BatchRunnerの構築に失敗したのだ: %w", err)
	}

	results, err := batchRunner.Run(ctx, items, defaults)
	if err != nil {
		return fmt.Errorf("画像バッチの実行に失敗したのだ: %w", err)
	}

	reportSummary(results)
	return nil
}

// ExecuteVideo は、動画生成ジョブのバッチを実行するのだ。
func ExecuteVideo(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(cfg)
	if err != nil {
		return err
	}

	items, defaults, err := loadWorkload(cfg.Options)
	if err != nil {
		return err
	}

	batchRunner, err := builder.BuildVideoBatchRunner(ctx, appCtx)
	if err != nil {
		return fmt.Errorf("BatchRunnerの構築に失敗したのだ: %w", err)
	}

	results, err := batchRunner.Run(ctx, items, defaults)
	if err != nil {
		return fmt.Errorf("動画バッチの実行に失敗したのだ: %w", err)
	}

	reportSummary(results)
	return nil
}

// ExecuteAnalyze は、参照画像のマルチモーダル解析を実行して結果を標準出力に出すのだ。
func ExecuteAnalyze(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(cfg)
	if err != nil {
		return err
	}

	if len(cfg.Options.References) != 1 {
		return fmt.Errorf("解析対象の参照画像を --ref でちょうど1枚指定してほしいのだ")
	}

	analyzeRunner, err := builder.BuildAnalyzeRunner(ctx, appCtx)
	if err != nil {
		return fmt.Errorf("AnalyzeRunnerの構築に失敗したのだ: %w", err)
	}

	text, err := analyzeRunner.Run(ctx, cfg.Options.AnalyzeMode, cfg.Options.References[0])
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}

// ExecuteCompose は、何も投入せずに合成済みプロンプトだけを表示するのだ。
// パラメータ調整の素振りに使うのだ。
func ExecuteCompose(ctx context.Context, cfg *config.Config) error {
	opts := cfg.Options
	if opts.Prompt == "" {
		return fmt.Errorf("--prompt でテンプレートを指定してほしいのだ")
	}

	var spec *runner.ComposeSpec
	if opts.ParamsFile != "" {
		loaded, err := runner.LoadComposeSpec(opts.ParamsFile)
		if err != nil {
			return err
		}
		spec = loaded
	}
	if opts.Consistency != "" {
		if spec == nil {
			spec = &runner.ComposeSpec{}
		}
		spec.Consistency = opts.Consistency
	}

	params := compose.Params{}
	if spec != nil {
		params = spec.ToParams()
	}

	fmt.Println(compose.Compose(opts.Prompt, params))
	return nil
}

// setupAppContext は、提供された設定と共有コンポーネントを使用して、
// アプリケーションコンテキストを初期化して返すのだ。
func setupAppContext(cfg *config.Config) (*builder.AppContext, error) {
	httpClient := builder.NewHTTPClient(cfg.Options.HTTPTimeout)

	providerClient, err := builder.InitializeProviderClient(cfg, httpClient)
	if err != nil {
		return nil, fmt.Errorf("プロバイダクライアントの初期化に失敗したのだ: %w", err)
	}

	resolver := asset.NewResolver(httpClient)

	appCtx := builder.NewAppContext(cfg, httpClient, providerClient, resolver)
	return &appCtx, nil
}

// loadWorkload は、マニフェスト指定と単発プロンプト指定のどちらかから
// 投入アイテム列と共通パラメータを組み立てるのだ。
func loadWorkload(opts config.GenerateOptions) ([]runner.ManifestItem, *runner.ComposeSpec, error) {
	var defaults *runner.ComposeSpec
	if opts.ParamsFile != "" {
		loaded, err := runner.LoadComposeSpec(opts.ParamsFile)
		if err != nil {
			return nil, nil, err
		}
		defaults = loaded
	}
	if opts.Consistency != "" {
		if defaults == nil {
			defaults = &runner.ComposeSpec{}
		}
		defaults.Consistency = opts.Consistency
	}

	if opts.ManifestFile != "" {
		manifest, err := runner.LoadManifest(opts.ManifestFile)
		if err != nil {
			return nil, nil, err
		}
		return manifest.Items, defaults, nil
	}

	if opts.Prompt == "" {
		return nil, nil, fmt.Errorf("ソース（--manifest または --prompt）を指定してほしいのだ")
	}
	return []runner.ManifestItem{{Prompt: opts.Prompt, References: opts.References}}, defaults, nil
}

// reportSummary は、バッチ全体の成否をログに集計するのだ。
func reportSummary(results []runner.ItemResult) {
	succeeded := 0
	failed := 0
	for _, r := range results {
		if r.Status == domain.StatusSucceeded {
			succeeded++
		} else {
			failed++
		}
	}
	slog.Info("バッチが完了したのだ", "total", len(results), "succeeded", succeeded, "failed", failed)
}
