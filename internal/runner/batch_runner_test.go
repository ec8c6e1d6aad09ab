package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-studio-kit/pkg/asset"
	"github.com/shouni/go-studio-kit/pkg/batch"
	"github.com/shouni/go-studio-kit/pkg/domain"
	"github.com/shouni/go-studio-kit/pkg/poller"
	"github.com/shouni/go-studio-kit/pkg/provider"
)

func TestBatchRunner_Run(t *testing.T) {
	// 成果物の配信サーバなのだ
	artifacts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\x89PNG fake artifact"))
	}))
	defer artifacts.Close()

	submit := func(ctx context.Context, prompt string, references []string) (string, error) {
		if strings.Contains(prompt, "blocked") {
			return "", &provider.ProviderError{HTTPStatus: 422, Code: domain.ReasonInputModeration, Message: "rejected"}
		}
		return "job-ok", nil
	}
	status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
		return domain.StatusSnapshot{
			Status:    domain.StatusSucceeded,
			Progress:  100,
			ResultRef: artifacts.URL + "/result.png",
		}, nil
	}

	p := poller.New(status, poller.Config{Interval: time.Millisecond, MaxConsecutiveErrors: 5})
	controller := batch.NewController(submit, p, batch.Config{Kind: domain.KindImage})
	defer controller.CancelAll()

	outputDir := t.TempDir()
	br := NewBatchRunner(controller, asset.NewResolver(artifacts.Client()), outputDir, asset.DefaultImageFileName, false)

	items := []ManifestItem{
		{Prompt: "[selected_pose], clean backdrop", Params: &ComposeSpec{Pose: "standing"}},
		{Prompt: "blocked prompt"},
	}
	results, err := br.Run(context.Background(), items, nil)
	if err != nil {
		t.Fatalf("実行に失敗したのだ: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("結果の数が違うのだ: %d", len(results))
	}

	ok, blocked := results[0], results[1]

	// 1件目: プロンプトが合成され、成果物が保存されること
	if ok.Status != domain.StatusSucceeded {
		t.Errorf("1件目の状態が違うのだ: %+v", ok)
	}
	if ok.Prompt != "standing upright, clean backdrop" {
		t.Errorf("プロンプトが合成されていないのだ: %q", ok.Prompt)
	}
	if ok.SavedPath == "" {
		t.Fatalf("保存パスが記録されていないのだ: %+v", ok)
	}
	if data, err := os.ReadFile(ok.SavedPath); err != nil || len(data) == 0 {
		t.Errorf("成果物が保存されていないのだ: %v", err)
	}

	// 2件目: 投入拒否が隔離され、理由コードと案内文が残ること
	if blocked.Status != domain.StatusFailed || blocked.FailureReason != domain.ReasonInputModeration {
		t.Errorf("2件目の失敗が記録されていないのだ: %+v", blocked)
	}
	if blocked.Message == "" {
		t.Errorf("ユーザー向けの案内がないのだ: %+v", blocked)
	}

	// 結果レポートが書き出されていること
	reportPath := filepath.Join(outputDir, asset.DefaultResultJSONName)
	raw, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("結果レポートが見つからないのだ: %v", err)
	}
	var report []ItemResult
	if err := json.Unmarshal(raw, &report); err != nil || len(report) != 2 {
		t.Errorf("レポートの中身が違うのだ: %v", err)
	}
}

func TestBatchRunner_BroadcastSingleItem(t *testing.T) {
	var mu sync.Mutex
	var submitted []string
	submit := func(ctx context.Context, prompt string, references []string) (string, error) {
		mu.Lock()
		submitted = append(submitted, references[0])
		mu.Unlock()
		return "job-" + references[0], nil
	}
	status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
		return domain.StatusSnapshot{Status: domain.StatusSucceeded, ResultRef: "ref"}, nil
	}

	p := poller.New(status, poller.Config{Interval: time.Millisecond, MaxConsecutiveErrors: 5})
	controller := batch.NewController(submit, p, batch.Config{Kind: domain.KindImage})
	defer controller.CancelAll()

	br := NewBatchRunner(controller, asset.NewResolver(nil), t.TempDir(), asset.DefaultImageFileName, true)

	// 1アイテム×3参照は3ジョブへブロードキャストされること
	items := []ManifestItem{{
		Prompt:     "same look",
		References: []string{"https://example.com/a.png", "https://example.com/b.png", "https://example.com/c.png"},
	}}
	results, err := br.Run(context.Background(), items, nil)
	if err != nil {
		t.Fatalf("実行に失敗したのだ: %v", err)
	}
	if len(results) != 3 || len(submitted) != 3 {
		t.Fatalf("ブロードキャストされていないのだ: results=%d submitted=%d", len(results), len(submitted))
	}
	for _, r := range results {
		if r.Prompt != "same look" {
			t.Errorf("プロンプトが共有されていないのだ: %q", r.Prompt)
		}
	}
}
