package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-studio-kit/internal/config"
	"github.com/shouni/go-studio-kit/internal/runner"
	"github.com/shouni/go-studio-kit/pkg/asset"
	"github.com/shouni/go-studio-kit/pkg/batch"
	"github.com/shouni/go-studio-kit/pkg/domain"
	"github.com/shouni/go-studio-kit/pkg/poller"
	"github.com/shouni/go-studio-kit/pkg/provider"
)

// InitializeProviderClient は、資格情報を注入済みのプロバイダクライアントを初期化します。
// APIキーはここで束ねた関数経由でのみ参照され、各所が環境変数を直接読むことはありません。
func InitializeProviderClient(cfg *config.Config, httpClient *http.Client) (*provider.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("APIキーが設定されていないのだ。環境変数 STUDIO_API_KEY を設定してほしいのだ")
	}
	return provider.New(provider.Options{
		BaseURL:     cfg.ProviderBaseURL,
		Credentials: provider.StaticCredentials(cfg.APIKey),
		HTTPClient:  httpClient,
	}), nil
}

// BuildImageBatchRunner は画像バッチの投入と追跡を担当する Runner を構築します。
func BuildImageBatchRunner(ctx context.Context, appCtx *AppContext) (*runner.BatchRunner, error) {
	adapter := provider.NewImageAdapter(appCtx.providerClient, modelOrDefault(appCtx, appCtx.Config.ImageModel))
	imgCfg := provider.ImageConfig{
		SizeRatio:  appCtx.Options.SizeRatio,
		Resolution: appCtx.Options.Resolution,
	}
	submit := func(ctx context.Context, prompt string, references []string) (string, error) {
		return adapter.Submit(ctx, prompt, imgCfg, references)
	}

	controller := buildController(appCtx, domain.KindImage, submit, adapter.Status)
	return runner.NewBatchRunner(controller, appCtx.Resolver, appCtx.Options.OutputDir, asset.DefaultImageFileName, appCtx.Options.NoSave), nil
}

// BuildVideoBatchRunner は動画バッチの投入と追跡を担当する Runner を構築します。
func BuildVideoBatchRunner(ctx context.Context, appCtx *AppContext) (*runner.BatchRunner, error) {
	adapter := provider.NewVideoAdapter(appCtx.providerClient, modelOrDefault(appCtx, appCtx.Config.VideoModel))
	vidCfg := provider.VideoConfig{
		AspectRatio:     appCtx.Options.AspectRatio,
		DurationSeconds: appCtx.Options.Duration,
	}
	submit := func(ctx context.Context, prompt string, references []string) (string, error) {
		return adapter.Submit(ctx, prompt, vidCfg, references)
	}

	controller := buildController(appCtx, domain.KindVideo, submit, adapter.Status)
	return runner.NewBatchRunner(controller, appCtx.Resolver, appCtx.Options.OutputDir, asset.DefaultVideoFileName, appCtx.Options.NoSave), nil
}

// BuildAnalyzeRunner はマルチモーダル解析を担当する Runner を構築します。
func BuildAnalyzeRunner(ctx context.Context, appCtx *AppContext) (*runner.AnalyzeRunner, error) {
	adapter := provider.NewAnalyzeAdapter(appCtx.providerClient, modelOrDefault(appCtx, appCtx.Config.AnalyzeModel))
	return runner.NewAnalyzeRunner(adapter, appCtx.Resolver), nil
}

// buildController は、投入ペースの流量制限付きでバッチコントローラを組み立てます。
// Burst 2 により、開始直後に2件までは同時に投入を開始できるのだ。
func buildController(appCtx *AppContext, kind domain.JobKind, submit batch.SubmitFunc, status poller.StatusFunc) *batch.Controller {
	interval := appCtx.Options.PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}

	p := poller.New(status, poller.Config{
		Interval:             interval,
		MaxConsecutiveErrors: config.DefaultRetryBudget,
		MaxLifetime:          appCtx.Options.MaxLifetime,
	})

	return batch.NewController(submit, p, batch.Config{
		Kind:    kind,
		Limiter: rate.NewLimiter(rate.Every(config.DefaultSubmitInterval), config.DefaultSubmitBurst),
	})
}

// modelOrDefault は、CLIの --model 指定があれば既定モデルを上書きします。
func modelOrDefault(appCtx *AppContext, fallback string) string {
	if appCtx.Options.Model != "" {
		return appCtx.Options.Model
	}
	return fallback
}

// NewHTTPClient は、共通のタイムアウト設定を持つHTTPクライアントを生成します。
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}
