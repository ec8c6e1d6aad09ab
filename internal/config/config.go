package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultProviderBaseURL = "https://api.quelcanvas.ai"
	DefaultImageModel      = "nano-banana-pro"
	DefaultVideoModel      = "veo-3.1-fast"
	DefaultAnalyzeModel    = "gemini-3-flash-preview"
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultPollInterval    = 3 * time.Second
	DefaultRetryBudget     = 5
	DefaultSubmitInterval  = 2 * time.Second // ジョブ投入の流量制限の間隔なのだ
	DefaultSubmitBurst     = 2
	DefaultOutputDir       = "output/artifacts"
	DefaultSizeRatio       = "3:4"
	DefaultResolution      = "2k"
	DefaultVideoAspect     = "16:9"
	DefaultVideoDuration   = 8
)

// Config はアプリケーション全体の環境設定（APIキーやエンドポイント）を保持する構造体なのだ。
type Config struct {
	ProviderBaseURL string
	APIKey          string
	ImageModel      string
	VideoModel      string
	AnalyzeModel    string

	Options GenerateOptions
}

// LoadConfig は .env と環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	// .env は無ければ無いで構わないのだ
	_ = godotenv.Load()

	cfg := &Config{
		ProviderBaseURL: envutil.GetEnv("STUDIO_BASE_URL", DefaultProviderBaseURL),
		APIKey:          envutil.GetEnv("STUDIO_API_KEY", ""),
		ImageModel:      envutil.GetEnv("STUDIO_IMAGE_MODEL", DefaultImageModel),
		VideoModel:      envutil.GetEnv("STUDIO_VIDEO_MODEL", DefaultVideoModel),
		AnalyzeModel:    envutil.GetEnv("STUDIO_ANALYZE_MODEL", DefaultAnalyzeModel),
	}
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	Prompt       string   // --prompt: 単発プロンプト
	ManifestFile string   // --manifest: バッチ投入用のJSONマニフェスト
	References   []string // --ref: 参照画像（ローカルパス/URL/データURL）
	ParamsFile   string   // --params: 構造化パラメータのJSONファイル

	// 出力関連
	OutputDir string // --output-dir
	NoSave    bool   // --no-save: アーティファクトを保存しない

	// 生成パラメータ
	Model       string // --model: プロバイダ既定モデルの上書き
	SizeRatio   string // --size-ratio
	Resolution  string // --resolution
	AspectRatio string // --aspect-ratio（動画用）
	Duration    int    // --duration（動画の秒数）
	AnalyzeMode string // --mode: 解析指示テンプレートの選択
	Consistency string // --consistency: person / product

	// 実行制御
	HTTPTimeout  time.Duration // --http-timeout
	PollInterval time.Duration // --poll-interval
	MaxLifetime  time.Duration // --max-lifetime: 0なら無期限
}
