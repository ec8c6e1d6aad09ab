package cmd

import (
	"fmt"

	"github.com/shouni/go-studio-kit/internal/config"
	"github.com/shouni/go-studio-kit/internal/pipeline"
	"github.com/shouni/go-studio-kit/internal/prompt"

	"github.com/spf13/cobra"
)

// analyzeCmd は、参照画像のマルチモーダル解析を実行するのだ。
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "参照画像をマルチモーダル解析して記述や構造化JSONを得るのだ。",
	Long: `参照画像をプロバイダのマルチモーダルエンドポイントに渡して、
describe モードならプロンプト片、structure モードなら構造化JSONを出力するのだ。`,
	RunE: analyzeCommand,
}

func init() {
	analyzeCmd.Flags().StringVarP(&opts.AnalyzeMode, "mode", "m", prompt.ModeDescribe, "解析モード（describe / structure）なのだ。")
}

func analyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(opts.References) == 0 {
		return fmt.Errorf("解析対象の画像を --ref で指定してほしいのだ")
	}

	cfg := config.LoadConfig()
	cfg.Options = opts

	if err := pipeline.ExecuteAnalyze(ctx, cfg); err != nil {
		return fmt.Errorf("解析中にエラーが発生したのだ: %w", err)
	}
	return nil
}
