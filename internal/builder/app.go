package builder

import (
	"net/http"

	"github.com/shouni/go-studio-kit/internal/config"
	"github.com/shouni/go-studio-kit/pkg/asset"
	"github.com/shouni/go-studio-kit/pkg/provider"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config   *config.Config         // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、エンドポイントなど）。
	Options  config.GenerateOptions // Optionsは、コマンドラインから渡された実行時の設定です（プロンプト、モデル名など）。
	Resolver *asset.Resolver        // Resolverは、参照画像の取り込みと成果物のダウンロードに使います。

	providerClient *provider.Client // providerClient はプロバイダAPIとの通信に使う共通クライアント
	httpClient     *http.Client     // httpClient は成果物取得など素のHTTP通信に使う共通クライアント
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient *http.Client,
	providerClient *provider.Client,
	resolver *asset.Resolver,
) AppContext {
	return AppContext{
		Config:         cfg,
		Options:        cfg.Options,
		Resolver:       resolver,
		providerClient: providerClient,
		httpClient:     httpClient,
	}
}
