package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-studio-kit/internal/config"
	"github.com/shouni/go-studio-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// generateCmd は、画像生成ジョブのバッチ投入と追跡を実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "画像生成ジョブをバッチで投入して終端まで追跡するのだ。",
	Long: `プロンプト（またはマニフェスト）と参照画像から画像ジョブを組み立てて投入し、
各ジョブを終端状態までポーリングして、成果物と結果レポートを保存するのだよ。`,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().StringVar(&opts.SizeRatio, "size-ratio", config.DefaultSizeRatio, "画像の縦横比なのだ。")
	generateCmd.Flags().StringVar(&opts.Resolution, "resolution", config.DefaultResolution, "画像の解像度クラスなのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 必須チェック
	if opts.Prompt == "" && opts.ManifestFile == "" {
		return fmt.Errorf("ソース（--prompt または --manifest）を指定してほしいのだ")
	}

	// 2. 環境変数等から基本設定をロードするのだ
	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("画像バッチパイプラインを起動するのだ！",
		"model", modelLabel(cfg.ImageModel),
		"size_ratio", opts.SizeRatio,
		"resolution", opts.Resolution,
		"output_dir", opts.OutputDir)

	if err := pipeline.ExecuteGenerate(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}

// modelLabel は、--model の上書きを考慮した表示用のモデル名を返すのだ。
func modelLabel(fallback string) string {
	if opts.Model != "" {
		return opts.Model
	}
	return fallback
}
