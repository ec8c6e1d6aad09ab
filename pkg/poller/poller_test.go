package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shouni/go-studio-kit/pkg/domain"
	"github.com/shouni/go-studio-kit/pkg/provider"
)

// fastConfig はテスト用にミリ秒単位へ詰めた設定なのだ。
func fastConfig() Config {
	return Config{
		Interval:             time.Millisecond,
		BackoffStep:          time.Millisecond,
		MaxConsecutiveErrors: 5,
	}
}

func waitDone(t *testing.T, h *Handle) domain.GenerationJob {
	t.Helper()
	select {
	case <-h.Done():
		return h.Job()
	case <-time.After(5 * time.Second):
		t.Fatal("ポーリングループが終わらないのだ")
		return domain.GenerationJob{}
	}
}

func TestPoller_RetryBudget(t *testing.T) {
	t.Run("連続5回の通信エラーで connection_unstable になり6回目は呼ばれないこと", func(t *testing.T) {
		var calls atomic.Int32
		status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
			calls.Add(1)
			return domain.StatusSnapshot{}, &provider.TransportError{Err: errors.New("connection reset")}
		}

		p := New(status, fastConfig())
		h := p.Start(context.Background(), domain.GenerationJob{ID: "j1", Status: domain.StatusPending}, Events{})

		job := waitDone(t, h)
		if job.Status != domain.StatusFailed || job.FailureReason != domain.ReasonConnectionUnstable {
			t.Errorf("終端状態が違うのだ: %+v", job)
		}

		// ループ停止後にポーリングが漏れ続けていないことを確認する
		time.Sleep(50 * time.Millisecond)
		if got := calls.Load(); got != 5 {
			t.Errorf("照会回数が違うのだ: got %d, want 5", got)
		}
	})

	t.Run("4回の通信エラー後に成功すれば failed にならないこと", func(t *testing.T) {
		var calls atomic.Int32
		status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
			if calls.Add(1) <= 4 {
				return domain.StatusSnapshot{}, &provider.TransportError{Err: errors.New("timeout")}
			}
			return domain.StatusSnapshot{Status: domain.StatusSucceeded, Progress: 100, ResultRef: "https://cdn.example.com/a.png"}, nil
		}

		p := New(status, fastConfig())
		h := p.Start(context.Background(), domain.GenerationJob{ID: "j2", Status: domain.StatusPending}, Events{})

		job := waitDone(t, h)
		if job.Status != domain.StatusSucceeded || job.ResultRef == "" {
			t.Errorf("成功になっていないのだ: %+v", job)
		}
	})

	t.Run("通信の瞬断中は外から見える状態が変わらないこと", func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
			n := calls.Add(1)
			if n == 1 {
				return domain.StatusSnapshot{Status: domain.StatusRunning, Progress: 10}, nil
			}
			select {
			case <-release:
				return domain.StatusSnapshot{Status: domain.StatusSucceeded, ResultRef: "ref"}, nil
			default:
				return domain.StatusSnapshot{}, &provider.TransportError{Err: errors.New("blip")}
			}
		}

		p := New(status, fastConfig())
		h := p.Start(context.Background(), domain.GenerationJob{ID: "j3", Status: domain.StatusPending}, Events{})

		// 瞬断が2〜3回起きるまで待ってから観測する
		for calls.Load() < 3 {
			time.Sleep(time.Millisecond)
		}
		if got := h.Job().Status; got != domain.StatusRunning {
			t.Errorf("瞬断中に状態が漏れているのだ: %s", got)
		}

		close(release)
		waitDone(t, h)
	})
}

func TestPoller_ProviderFailureIsTerminal(t *testing.T) {
	// プロバイダ報告の失敗は予算に関係なく即終端で、理由コードが残ること
	var calls atomic.Int32
	status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
		calls.Add(1)
		return domain.StatusSnapshot{}, &provider.ProviderError{HTTPStatus: 422, Code: "input_moderation", Message: "rejected"}
	}

	p := New(status, fastConfig())
	h := p.Start(context.Background(), domain.GenerationJob{ID: "j4", Status: domain.StatusPending}, Events{})

	job := waitDone(t, h)
	if job.Status != domain.StatusFailed || job.FailureReason != domain.ReasonInputModeration {
		t.Errorf("終端状態が違うのだ: %+v", job)
	}
	if calls.Load() != 1 {
		t.Errorf("リトライされてしまっているのだ: %d回", calls.Load())
	}
}

func TestPoller_CompletionCallbackExactlyOnce(t *testing.T) {
	status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
		return domain.StatusSnapshot{Status: domain.StatusSucceeded, ResultRef: "ref"}, nil
	}

	var doneCalls atomic.Int32
	p := New(status, fastConfig())
	h := p.Start(context.Background(), domain.GenerationJob{ID: "j5"}, Events{
		OnDone: func(job domain.GenerationJob) { doneCalls.Add(1) },
	})

	waitDone(t, h)
	time.Sleep(20 * time.Millisecond)
	if got := doneCalls.Load(); got != 1 {
		t.Errorf("完了コールバックの回数が違うのだ: %d", got)
	}
}

func TestPoller_NonTerminalDoesNotComplete(t *testing.T) {
	// {status:"processing", progress:42} 相当の観測では完了コールバックが発火しないこと
	var updates []domain.StatusSnapshot
	var mu sync.Mutex
	var calls atomic.Int32
	status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
		if calls.Add(1) < 3 {
			return domain.StatusSnapshot{Status: domain.StatusRunning, Progress: 42}, nil
		}
		return domain.StatusSnapshot{Status: domain.StatusSucceeded, ResultRef: "ref"}, nil
	}

	var doneCalls atomic.Int32
	p := New(status, fastConfig())
	h := p.Start(context.Background(), domain.GenerationJob{ID: "j6"}, Events{
		OnUpdate: func(snap domain.StatusSnapshot) {
			mu.Lock()
			updates = append(updates, snap)
			mu.Unlock()
			if doneCalls.Load() != 0 {
				t.Error("完了前にOnDoneが呼ばれているのだ")
			}
		},
		OnDone: func(job domain.GenerationJob) { doneCalls.Add(1) },
	})

	waitDone(t, h)
	mu.Lock()
	defer mu.Unlock()
	if len(updates) == 0 || updates[0].Status != domain.StatusRunning || updates[0].Progress != 42 {
		t.Errorf("非終端の観測が通知されていないのだ: %+v", updates)
	}
}

func TestHandle_Cancel(t *testing.T) {
	t.Run("キャンセル後はポーリングが確定的に止まること", func(t *testing.T) {
		var calls atomic.Int32
		status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
			calls.Add(1)
			return domain.StatusSnapshot{Status: domain.StatusRunning, Progress: 1}, nil
		}

		p := New(status, fastConfig())
		h := p.Start(context.Background(), domain.GenerationJob{ID: "j7"}, Events{
			OnDone: func(job domain.GenerationJob) {
				t.Error("キャンセル停止でOnDoneが呼ばれてはいけないのだ")
			},
		})

		for calls.Load() < 1 {
			time.Sleep(time.Millisecond)
		}
		h.Cancel()
		<-h.Done()

		// 止まった後に照会が漏れていないこと（タイマーリークの検出）
		settled := calls.Load()
		time.Sleep(50 * time.Millisecond)
		if calls.Load() != settled {
			t.Errorf("キャンセル後も照会が続いているのだ: %d -> %d", settled, calls.Load())
		}
	})

	t.Run("二重キャンセルしても安全なこと", func(t *testing.T) {
		status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
			return domain.StatusSnapshot{Status: domain.StatusRunning}, nil
		}
		p := New(status, fastConfig())
		h := p.Start(context.Background(), domain.GenerationJob{ID: "j8"}, Events{})
		h.Cancel()
		h.Cancel()
		<-h.Done()
	})
}

func TestPoller_MaxLifetime(t *testing.T) {
	status := func(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
		// ベンダーが未知の語彙を返し続け、永遠に running に見えるケースの再現
		return domain.StatusSnapshot{Status: domain.StatusRunning}, nil
	}

	cfg := fastConfig()
	cfg.MaxLifetime = 20 * time.Millisecond
	p := New(status, cfg)
	h := p.Start(context.Background(), domain.GenerationJob{ID: "j9"}, Events{})

	job := waitDone(t, h)
	if job.Status != domain.StatusFailed || job.FailureReason != domain.ReasonTimeout {
		t.Errorf("タイムアウト遷移していないのだ: %+v", job)
	}
}
