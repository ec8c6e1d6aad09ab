package cmd

import (
	"fmt"

	"github.com/shouni/go-studio-kit/internal/config"
	"github.com/shouni/go-studio-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// composeCmd は、ジョブを投入せずに合成済みプロンプトだけを表示するのだ。
var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "構造化パラメータからプロンプトを合成してプレビューするのだ。",
	Long: `テンプレートとパラメータJSONから最終プロンプトを組み立てて表示するのだ。
同じ入力なら必ず同じ出力になるから、パラメータ調整の素振りに便利なのだよ。`,
	RunE: composeCommand,
}

func composeCommand(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfig()
	cfg.Options = opts

	if err := pipeline.ExecuteCompose(cmd.Context(), cfg); err != nil {
		return fmt.Errorf("プロンプト合成に失敗したのだ: %w", err)
	}
	return nil
}
