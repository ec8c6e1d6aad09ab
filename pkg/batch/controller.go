// Package batch は、複数の (プロンプト, 参照画像) アイテムを独立した生成ジョブ
// としてファンアウトし、アイテムごとの状態をひとつの順序付きコレクションに
// 集約します。
package batch

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/go-studio-kit/pkg/domain"
	"github.com/shouni/go-studio-kit/pkg/poller"
	"github.com/shouni/go-studio-kit/pkg/provider"
)

// SubmitFunc は、1アイテムをプロバイダに投入してジョブIDを返す関数です。
// provider パッケージの各アダプタの Submit を設定込みで束ねて渡します。
type SubmitFunc func(ctx context.Context, prompt string, references []string) (string, error)

// Request は投入要求1件分です。
type Request struct {
	Prompt     string
	References []string
}

// ExpandRequests は、プロンプト列と参照画像列からアイテム列を組み立てます。
//
// プロンプトがちょうど1件で参照画像が複数ある場合は、同じプロンプトを
// 参照画像の数だけブロードキャストし、位置で1対1に対応付けます。
// それ以外では各プロンプトが1アイテムになり、参照画像は位置（件数が合わない
// ときはインデックスの剰余）で割り当てられます。これはエラーではなく、
// 意図された 1対N の便宜です。
func ExpandRequests(prompts []string, references []string) []Request {
	if len(prompts) == 1 && len(references) > 1 {
		reqs := make([]Request, len(references))
		for i, ref := range references {
			reqs[i] = Request{Prompt: prompts[0], References: []string{ref}}
		}
		return reqs
	}

	reqs := make([]Request, len(prompts))
	for i, prompt := range prompts {
		reqs[i] = Request{Prompt: prompt}
		if len(references) > 0 {
			reqs[i].References = []string{references[i%len(references)]}
		}
	}
	return reqs
}

// Config は Controller の構築パラメータです。
type Config struct {
	Kind domain.JobKind
	// Limiter は投入ペースの流量制限です。nil なら制限なしで投入します。
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Controller は、バッチ内の各アイテムを自前のポーリングループ付きで追跡します。
//
// コレクションの更新はすべて「IDが一致するレコードをマージ済みコピーで
// 差し替える」形で行い、in-place の書き換えはしません。複数のポーリング
// ループからの更新が交錯しても、取得側は常に新しい参照を観測できます。
type Controller struct {
	submit  SubmitFunc
	poller  *poller.Poller
	kind    domain.JobKind
	limiter *rate.Limiter
	logger  *slog.Logger

	mu      sync.Mutex
	items   []domain.BatchItem // 新しいものが先頭
	handles map[string]*poller.Handle
}

// NewController は Controller を生成します。
func NewController(submit SubmitFunc, p *poller.Poller, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		submit:  submit,
		poller:  p,
		kind:    cfg.Kind,
		limiter: cfg.Limiter,
		logger:  logger,
		handles: make(map[string]*poller.Handle),
	}
}

// SubmitBatch は、各要求を独立したジョブとして投入し、採番した localID の列を
// 入力順で返します。投入フェーズの完了までブロックしますが、ポーリングは
// バックグラウンドで続きます。1アイテムの失敗が兄弟アイテムを止めることは
// ありません。
func (c *Controller) SubmitBatch(ctx context.Context, reqs []Request) []string {
	newItems := make([]domain.BatchItem, len(reqs))
	localIDs := make([]string, len(reqs))
	for i, req := range reqs {
		newItems[i] = domain.BatchItem{
			LocalID:         uuid.NewString(),
			PromptText:      req.Prompt,
			ReferenceImages: req.References,
		}
		localIDs[i] = newItems[i].LocalID
	}

	// 新規アイテムはバッチ内の順序を保ったまま先頭にまとめて足します
	c.mu.Lock()
	c.items = append(newItems, c.items...)
	c.mu.Unlock()

	// 部分失敗は正常系。1アイテムの失敗で兄弟を道連れにしない
	var eg errgroup.Group
	for _, item := range newItems {
		item := item
		eg.Go(func() error {
			c.submitOne(ctx, item)
			return nil
		})
	}
	_ = eg.Wait()

	return localIDs
}

// submitOne は1アイテムを投入し、成功したらポーリングループを開始します。
// 投入時のエラーは（通信エラーであっても）リトライせず、アイテムの失敗として
// 記録します。
func (c *Controller) submitOne(ctx context.Context, item domain.BatchItem) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.failItem(item.LocalID, provider.FailureReason(err))
			return
		}
	}

	jobID, err := c.submit(ctx, item.PromptText, item.ReferenceImages)
	if err != nil {
		c.logger.Warn("アイテムの投入に失敗しました", "local_id", item.LocalID, "error", err)
		c.failItem(item.LocalID, provider.FailureReason(err))
		return
	}

	job := domain.GenerationJob{ID: jobID, Kind: c.kind, Status: domain.StatusPending}
	c.replaceJob(item.LocalID, job)
	c.startPolling(ctx, item.LocalID, job)
	c.logger.Info("ジョブを投入しました", "local_id", item.LocalID, "job_id", jobID)
}

// startPolling は localID のポーリングループを開始します。同じ localID で
// 既にループが動いていれば先にキャンセルします。同一ジョブが二重にポーリング
// されることはありません。
func (c *Controller) startPolling(ctx context.Context, localID string, job domain.GenerationJob) {
	handle := c.poller.Start(ctx, job, poller.Events{
		OnUpdate: func(snap domain.StatusSnapshot) {
			c.applySnapshot(localID, snap)
		},
		OnDone: func(final domain.GenerationJob) {
			c.replaceJob(localID, final)
		},
	})

	c.mu.Lock()
	prev := c.handles[localID]
	c.handles[localID] = handle
	c.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}

// Retry は、指定アイテムを新しいジョブとして再投入します。既存のポーリング
// ループは先に停止し、ジョブは丸ごと差し替えます。
func (c *Controller) Retry(ctx context.Context, localID string) error {
	c.mu.Lock()
	var target *domain.BatchItem
	for i := range c.items {
		if c.items[i].LocalID == localID {
			item := c.items[i].Clone()
			target = &item
			break
		}
	}
	prev := c.handles[localID]
	c.mu.Unlock()

	if target == nil {
		return &NotFoundError{LocalID: localID}
	}
	if prev != nil {
		prev.Cancel()
		<-prev.Done()
	}

	// 未投入状態に戻してから投入し直す
	target.Job = nil
	c.replaceItem(*target)
	c.submitOne(ctx, *target)
	return nil
}

// Snapshot は、現在のコレクション全体の防御的コピーを返します（新しいもの順）。
func (c *Controller) Snapshot() []domain.BatchItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make([]domain.BatchItem, len(c.items))
	for i, item := range c.items {
		copied[i] = item.Clone()
	}
	return copied
}

// Item は localID のアイテムのコピーを返します。
func (c *Controller) Item(localID string) (domain.BatchItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.LocalID == localID {
			return item.Clone(), true
		}
	}
	return domain.BatchItem{}, false
}

// Wait は、動作中の全ポーリングループが終端に達するかキャンセルされるまで
// 待機します。ctx が先に打ち切られた場合はその理由を返します。
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		var pending *poller.Handle
		for _, h := range c.handles {
			select {
			case <-h.Done():
			default:
				pending = h
			}
			if pending != nil {
				break
			}
		}
		c.mu.Unlock()

		if pending == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pending.Done():
		}
	}
}

// CancelAll は全アイテムのポーリングを停止します。コンポーネントの破棄時に
// 呼ばないと、タイマーが残ってネットワーク照会が漏れ続けます。
func (c *Controller) CancelAll() {
	c.mu.Lock()
	handles := make([]*poller.Handle, 0, len(c.handles))
	for _, h := range c.handles {
		handles = append(handles, h)
	}
	c.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
		<-h.Done()
	}
}

// applySnapshot は、常にその時点のレコードを引き直してからマージ済みコピーで
// 差し替えます。古い参照を掴んだままの read-modify-write はしません。
func (c *Controller) applySnapshot(localID string, snap domain.StatusSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].LocalID != localID || c.items[i].Job == nil {
			continue
		}
		replaced := c.items[i].Clone()
		job := replaced.Job.Apply(snap)
		replaced.Job = &job
		c.items[i] = replaced
		return
	}
}

// replaceJob は、アイテムのジョブを新しい値で丸ごと差し替えます。
func (c *Controller) replaceJob(localID string, job domain.GenerationJob) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].LocalID != localID {
			continue
		}
		replaced := c.items[i].Clone()
		replaced.Job = &job
		c.items[i] = replaced
		return
	}
}

// replaceItem はアイテム全体を差し替えます。
func (c *Controller) replaceItem(item domain.BatchItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].LocalID == item.LocalID {
			c.items[i] = item.Clone()
			return
		}
	}
}

// failItem は、アイテムを理由コード付きの失敗状態に差し替えます。
func (c *Controller) failItem(localID string, reason string) {
	c.replaceJob(localID, domain.GenerationJob{
		Kind:          c.kind,
		Status:        domain.StatusFailed,
		FailureReason: reason,
	})
}

// NotFoundError は、指定された localID のアイテムが存在しないことを表します。
type NotFoundError struct {
	LocalID string
}

func (e *NotFoundError) Error() string {
	return "バッチアイテムが見つかりません: " + e.LocalID
}
