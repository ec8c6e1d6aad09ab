package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-studio-kit/internal/config"
	"github.com/shouni/go-studio-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// videoCmd は、動画生成ジョブのバッチ投入と追跡を実行するのだ。
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "動画生成ジョブをバッチで投入して終端まで追跡するのだ。",
	Long: `プロンプト（またはマニフェスト）から動画ジョブを投入し、終端状態まで
ポーリングして成果物を保存するのだ。動画は時間がかかるから気長に待つのだよ。`,
	RunE: videoCommand,
}

func init() {
	videoCmd.Flags().StringVar(&opts.AspectRatio, "aspect-ratio", config.DefaultVideoAspect, "動画の縦横比なのだ。")
	videoCmd.Flags().IntVar(&opts.Duration, "duration", config.DefaultVideoDuration, "動画の長さ（秒）なのだ。")
}

func videoCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.Prompt == "" && opts.ManifestFile == "" {
		return fmt.Errorf("ソース（--prompt または --manifest）を指定してほしいのだ")
	}

	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("動画バッチパイプラインを起動するのだ！",
		"model", modelLabel(cfg.VideoModel),
		"aspect_ratio", opts.AspectRatio,
		"duration_sec", opts.Duration,
		"output_dir", opts.OutputDir)

	if err := pipeline.ExecuteVideo(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
