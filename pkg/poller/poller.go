// Package poller は、投入済みの生成ジョブを終端状態までポーリングで追跡します。
//
// ジョブ1件ごとの状態機械は
// Created → Submitted → {Polling ⇄ TransientError} → {Succeeded | Failed}
// で、ポーリング中の通信エラーだけが有限の予算内でリトライされます。
// プロバイダが報告した失敗と投入時のエラーは、ここではリトライしません。
package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shouni/go-studio-kit/pkg/domain"
	"github.com/shouni/go-studio-kit/pkg/provider"
)

// 既定値。観測された利用では 2〜4 秒間隔・連続エラー5回が上限でした。
const (
	DefaultInterval             = 3 * time.Second
	DefaultMaxConsecutiveErrors = 5
)

// StatusFunc は、ジョブIDの現在状態を照会する関数です。
// provider パッケージの各アダプタの Status メソッドがこの形に適合します。
type StatusFunc func(ctx context.Context, jobID string) (domain.StatusSnapshot, error)

// Config はポーラーの動作パラメータです。ゼロ値のフィールドには既定値が入ります。
type Config struct {
	// Interval はポーリング間隔です。
	Interval time.Duration
	// BackoffStep は、連続エラー n 回目のリトライ前に n * BackoffStep 待つ係数です。
	// 未設定なら Interval と同じ値を使います。
	BackoffStep time.Duration
	// MaxConsecutiveErrors は通信エラーの連続許容回数です。超えた時点で
	// connection_unstable を理由にジョブを failed へ遷移させます。
	MaxConsecutiveErrors int
	// MaxLifetime が正の場合、開始からこの時間を超えたジョブは timeout を理由に
	// failed へ遷移します。未知の終端語彙で永遠に running に見えるジョブへの保険です。
	MaxLifetime time.Duration
	Logger      *slog.Logger
}

// Events は、ポーリングループからの通知先です。
type Events struct {
	// OnUpdate は非終端の観測ごとに呼ばれます。
	OnUpdate func(snap domain.StatusSnapshot)
	// OnDone は終端状態への到達時にちょうど1回だけ呼ばれます。
	// キャンセルで停止した場合は呼ばれません。
	OnDone func(job domain.GenerationJob)
}

// Poller は StatusFunc と設定を束ねたポーリングループの生成器です。
type Poller struct {
	status StatusFunc
	cfg    Config
}

// New は Poller を生成します。
func New(status StatusFunc, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.BackoffStep <= 0 {
		cfg.BackoffStep = cfg.Interval
	}
	if cfg.MaxConsecutiveErrors <= 0 {
		cfg.MaxConsecutiveErrors = DefaultMaxConsecutiveErrors
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{status: status, cfg: cfg}
}

// Handle は、1本のポーリングループに対する第一級のキャンセル可能ハンドルです。
// タイマーIDの側聞き管理ではなく、このハンドルの Cancel がループ停止の唯一の窓口です。
// 呼び出し側は、画面遷移などでジョブへの関心を失ったら必ず Cancel する責務を負います。
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	job domain.GenerationJob
}

// Cancel は以後のポーリングのスケジュールを確定的に停止します。何度呼んでも安全です。
func (h *Handle) Cancel() {
	h.cancel()
}

// Done は、ループが停止（終端到達またはキャンセル）したときに閉じられるチャネルを返します。
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Job は最後に観測されたジョブ状態のコピーを返します。
func (h *Handle) Job() domain.GenerationJob {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.job
}

func (h *Handle) setJob(job domain.GenerationJob) {
	h.mu.Lock()
	h.job = job
	h.mu.Unlock()
}

// Start は、投入済みジョブのポーリングループを開始しハンドルを返します。
// 最初のステータス照会は1インターバル後に行われます。
func (p *Poller) Start(ctx context.Context, job domain.GenerationJob, ev Events) *Handle {
	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
		job:    job,
	}
	go p.run(loopCtx, h, job, ev)
	return h
}

func (p *Poller) run(ctx context.Context, h *Handle, job domain.GenerationJob, ev Events) {
	defer close(h.done)
	defer h.cancel()

	logger := p.cfg.Logger.With("job_id", job.ID, "kind", job.Kind)

	var lifetime <-chan time.Time
	if p.cfg.MaxLifetime > 0 {
		timer := time.NewTimer(p.cfg.MaxLifetime)
		defer timer.Stop()
		lifetime = timer.C
	}

	finish := func(reason string) {
		job.Status = domain.StatusFailed
		job.FailureReason = reason
		h.setJob(job)
		if ev.OnDone != nil {
			ev.OnDone(job)
		}
	}

	consecutive := 0
	delay := p.cfg.Interval
	for {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-lifetime:
			timer.Stop()
			logger.Warn("ジョブが最大生存時間を超えたのでタイムアウト扱いにします")
			finish(domain.ReasonTimeout)
			return
		case <-timer.C:
		}

		snap, err := p.status(ctx, job.ID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !provider.IsTransport(err) {
				logger.Warn("プロバイダが失敗を報告したためポーリングを終了します", "error", err)
				finish(provider.FailureReason(err))
				return
			}

			// 通信の瞬断はリトライ予算内では外から見える状態を変えません。
			// UIは引き続き「処理中」を表示し続けます。
			consecutive++
			if consecutive >= p.cfg.MaxConsecutiveErrors {
				logger.Warn("連続通信エラーが予算を超えました", "consecutive", consecutive)
				finish(domain.ReasonConnectionUnstable)
				return
			}
			delay = time.Duration(consecutive) * p.cfg.BackoffStep
			logger.Info("通信エラーをリトライします", "consecutive", consecutive, "backoff", delay)
			continue
		}

		consecutive = 0
		delay = p.cfg.Interval
		job = job.Apply(snap)
		h.setJob(job)

		if job.Status.IsTerminal() {
			logger.Info("ジョブが終端状態に到達しました", "status", job.Status, "reason", job.FailureReason)
			if ev.OnDone != nil {
				ev.OnDone(job)
			}
			return
		}
		if ev.OnUpdate != nil {
			ev.OnUpdate(snap)
		}
	}
}
