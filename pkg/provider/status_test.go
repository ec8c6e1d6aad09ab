package provider

import (
	"testing"

	"github.com/shouni/go-studio-kit/pkg/domain"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		vendor string
		want   domain.Status
	}{
		{"completed", domain.StatusSucceeded},
		{"succeeded", domain.StatusSucceeded},
		{"processing", domain.StatusRunning},
		{"running", domain.StatusRunning},
		{"pending", domain.StatusPending},
		{"failed", domain.StatusFailed},
		{"error", domain.StatusFailed},
		// 未知のトークンは楽観的に running へ倒すこと。failed や succeeded にはしない
		{"queueing", domain.StatusRunning},
		{"half_done", domain.StatusRunning},
		{"", domain.StatusRunning},
	}

	for _, c := range cases {
		if got := NormalizeStatus(c.vendor); got != c.want {
			t.Errorf("normalize(%q) = %s, want %s", c.vendor, got, c.want)
		}
	}
}

func TestSnapshotFromPayload(t *testing.T) {
	t.Run("処理中は進捗付きのrunningになること", func(t *testing.T) {
		snap := snapshotFromPayload(taskPayload{Status: "processing", Progress: 42})
		if snap.Status != domain.StatusRunning || snap.Progress != 42 {
			t.Errorf("スナップショットが違うのだ: %+v", snap)
		}
		if snap.ResultRef != "" || snap.FailureReason != "" {
			t.Errorf("余計なフィールドが埋まっているのだ: %+v", snap)
		}
	})

	t.Run("成果物のない completed は missing_result の failed になること", func(t *testing.T) {
		snap := snapshotFromPayload(taskPayload{Status: "completed"})
		if snap.Status != domain.StatusFailed {
			t.Fatalf("failedに再分類されないのだ: %s", snap.Status)
		}
		if snap.FailureReason != domain.ReasonMissingResult {
			t.Errorf("理由コードが違うのだ: %q", snap.FailureReason)
		}
	})

	t.Run("直接URLの成果物を拾えること", func(t *testing.T) {
		snap := snapshotFromPayload(taskPayload{Status: "completed", ResultURL: "https://cdn.example.com/a.png"})
		if snap.Status != domain.StatusSucceeded || snap.ResultRef != "https://cdn.example.com/a.png" {
			t.Errorf("スナップショットが違うのだ: %+v", snap)
		}
	})

	t.Run("ネストされた result.images[0].url[0] を拾えること", func(t *testing.T) {
		snap := snapshotFromPayload(taskPayload{
			Status: "succeeded",
			Result: &taskResult{Images: []mediaEntry{{URL: []string{"https://cdn.example.com/img.png"}}}},
		})
		if snap.ResultRef != "https://cdn.example.com/img.png" {
			t.Errorf("成果物参照が違うのだ: %q", snap.ResultRef)
		}
		if snap.Progress != 100 {
			t.Errorf("成功時の進捗が100でないのだ: %d", snap.Progress)
		}
	})

	t.Run("ネストされた result.videos[0].url[0] を拾えること", func(t *testing.T) {
		snap := snapshotFromPayload(taskPayload{
			Status: "completed",
			Result: &taskResult{Videos: []mediaEntry{{URL: []string{"https://cdn.example.com/v.mp4"}}}},
		})
		if snap.Status != domain.StatusSucceeded || snap.ResultRef != "https://cdn.example.com/v.mp4" {
			t.Errorf("スナップショットが違うのだ: %+v", snap)
		}
	})

	t.Run("失敗理由コードが改変されずに残ること", func(t *testing.T) {
		snap := snapshotFromPayload(taskPayload{Status: "failed", FailReason: "output_moderation"})
		if snap.FailureReason != domain.ReasonOutputModeration {
			t.Errorf("理由コードが違うのだ: %q", snap.FailureReason)
		}
	})

	t.Run("理由なしの失敗は汎用コードに落ちること", func(t *testing.T) {
		snap := snapshotFromPayload(taskPayload{Status: "failed"})
		if snap.FailureReason != domain.ReasonError {
			t.Errorf("理由コードが違うのだ: %q", snap.FailureReason)
		}
	})
}
