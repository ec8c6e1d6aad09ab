package runner

import "github.com/shouni/go-studio-kit/pkg/domain"

// FailureMessage は、理由コードをユーザー向けの説明文に変換するのだ。
// モデレーション起因の失敗は、入力側と出力側で案内をはっきり分けるのだ。
func FailureMessage(reason string) string {
	switch reason {
	case domain.ReasonInputModeration:
		return "プロンプトか参照画像がコンテンツポリシーに抵触したのだ。入力内容を見直してほしいのだ。"
	case domain.ReasonOutputModeration:
		return "生成された内容がコンテンツポリシーでブロックされたのだ。プロンプトの表現を変えて再試行してほしいのだ。"
	case domain.ReasonMissingResult:
		return "プロバイダは成功と報告したのに成果物が見つからなかったのだ。時間を置いて再試行してほしいのだ。"
	case domain.ReasonConnectionUnstable:
		return "ネットワークが不安定で状態確認を継続できなかったのだ。接続を確認して再試行してほしいのだ。"
	case domain.ReasonTimeout:
		return "ジョブが制限時間内に完了しなかったのだ。"
	case "auth_error":
		return "認証に失敗したのだ。STUDIO_API_KEY を確認してほしいのだ。"
	case "", domain.ReasonError:
		return "不明なエラーで失敗したのだ。"
	default:
		return "プロバイダがエラーを報告したのだ (" + reason + ")。"
	}
}
