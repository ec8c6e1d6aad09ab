package provider

import (
	"github.com/shouni/go-studio-kit/pkg/domain"
)

// NormalizeStatus は、ベンダーごとに揺れるステータス語彙を正規の4状態に写像します。
// 未知のトークンは running に倒します。語彙のドリフトで新しい中間状態が増えても、
// ジョブを早まって見捨てないための楽観的デフォルトです。
func NormalizeStatus(vendorStatus string) domain.Status {
	switch vendorStatus {
	case "completed", "succeeded":
		return domain.StatusSucceeded
	case "processing", "running":
		return domain.StatusRunning
	case "pending":
		return domain.StatusPending
	case "failed", "error":
		return domain.StatusFailed
	default:
		return domain.StatusRunning
	}
}

// taskPayload は、ステータス照会レスポンスのベンダー形状です。
// 成果物は直接URLの場合と result.images[0].url[0] / result.videos[0].url[0] の
// ようにネストされる場合があります。
type taskPayload struct {
	TaskID     string      `json:"task_id"`
	Status     string      `json:"status"`
	Progress   int         `json:"progress"`
	FailReason string      `json:"fail_reason"`
	ResultURL  string      `json:"result_url"`
	Result     *taskResult `json:"result"`
}

type taskResult struct {
	Images []mediaEntry `json:"images"`
	Videos []mediaEntry `json:"videos"`
}

type mediaEntry struct {
	URL []string `json:"url"`
}

// extractResultRef は、ペイロードから成果物参照を取り出します。見つからなければ空文字列です。
func extractResultRef(p taskPayload) string {
	if p.ResultURL != "" {
		return p.ResultURL
	}
	if p.Result == nil {
		return ""
	}
	if len(p.Result.Images) > 0 && len(p.Result.Images[0].URL) > 0 {
		return p.Result.Images[0].URL[0]
	}
	if len(p.Result.Videos) > 0 && len(p.Result.Videos[0].URL) > 0 {
		return p.Result.Videos[0].URL[0]
	}
	return ""
}

// snapshotFromPayload は、ベンダーのペイロードを正規化済みスナップショットへ変換します。
//
// 不変条件: succeeded は必ず空でない成果物参照を伴います。ベンダーが succeeded を
// 報告しながら成果物を返さなかった場合は、missing_result を理由とする failed に
// 再分類します。
func snapshotFromPayload(p taskPayload) domain.StatusSnapshot {
	snap := domain.StatusSnapshot{
		Status:   NormalizeStatus(p.Status),
		Progress: p.Progress,
	}

	switch snap.Status {
	case domain.StatusSucceeded:
		ref := extractResultRef(p)
		if ref == "" {
			snap.Status = domain.StatusFailed
			snap.FailureReason = domain.ReasonMissingResult
			return snap
		}
		snap.ResultRef = ref
		snap.Progress = 100
	case domain.StatusFailed:
		reason := p.FailReason
		if reason == "" {
			reason = domain.ReasonError
		}
		snap.FailureReason = reason
	}

	return snap
}
