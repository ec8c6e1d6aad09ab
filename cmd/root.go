package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/go-studio-kit/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// opts は addAppFlags で各フラグに紐付けられる実行時パラメータなのだ。
var opts config.GenerateOptions

// rootCmd は、ap-studio-go のトップレベルコマンドなのだ。
var rootCmd = &cobra.Command{
	Use:   "ap-studio-go",
	Short: "生成AIプロバイダの画像・動画ジョブをバッチで投入・追跡するCLIなのだ。",
	Long: `プロンプト合成、参照画像の取り込み、ジョブ投入、ポーリング、
成果物の保存までをまとめて面倒みるスタジオ向けツールキットなのだ。`,
	PersistentPreRunE: preRunAppE,
	SilenceUsage:      true,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Prompt, "prompt", "p", "", "プロンプトのテンプレート文字列なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.ManifestFile, "manifest", "f", "", "バッチ投入用のJSONマニフェストのパスなのだ。")
	rootCmd.PersistentFlags().StringArrayVarP(&opts.References, "ref", "r", nil, "参照画像（ローカルパス/URL/データURL）なのだ。複数指定できるのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ParamsFile, "params", "", "構造化パラメータ（カメラ・ポーズ等）のJSONパスなのだ。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "成果物の保存先ディレクトリなのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.NoSave, "no-save", false, "成果物をダウンロード保存しないのだ。")

	// --- モデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.Model, "model", "", "プロバイダの既定モデルを上書きするのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.Consistency, "consistency", "", "一貫性アンカーのモード（person / product）なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "HTTPリクエストのタイムアウトなのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.PollInterval, "poll-interval", config.DefaultPollInterval, "ジョブ状態のポーリング間隔なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.MaxLifetime, "max-lifetime", 0, "ジョブの最大生存時間なのだ（0で無期限）。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// compose はローカル完結なのでAPIキー無しでも動かせるのだ
	if cmd.Name() == "compose" {
		return nil
	}
	// .env のキーもチェック対象に含めるため、先に読み込んでおくのだ
	_ = godotenv.Load()
	if os.Getenv("STUDIO_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 STUDIO_API_KEY が設定されていません。プロバイダAPIの利用には必須なのだ")
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(generateCmd, videoCmd, analyzeCmd, composeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
