package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shouni/go-studio-kit/pkg/domain"
)

// TaskAdapter は、ジョブ種別に依存しない汎用のステータス照会アダプタです。
// 投入の呼び出し箇所とポーリングの呼び出し箇所を分離するために存在します。
type TaskAdapter struct {
	client *Client
}

// NewTaskAdapter は TaskAdapter を生成します。
func NewTaskAdapter(c *Client) *TaskAdapter {
	return &TaskAdapter{client: c}
}

// Status は、ジョブIDの現在状態を正規化済みスナップショットとして返します。
func (a *TaskAdapter) Status(ctx context.Context, jobID string) (domain.StatusSnapshot, error) {
	return statusByID(ctx, a.client, jobID)
}

// statusByID は全アダプタが共有するステータス照会の実体です。
func statusByID(ctx context.Context, c *Client, jobID string) (domain.StatusSnapshot, error) {
	raw, err := c.Request(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(jobID), nil)
	if err != nil {
		return domain.StatusSnapshot{}, err
	}

	var payload taskPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.StatusSnapshot{}, &ParseError{Msg: err.Error(), Raw: string(raw)}
	}
	return snapshotFromPayload(payload), nil
}

// parseTaskID は、ジョブ作成レスポンスからジョブIDを取り出します。
// エンベロープ展開後でも {task_id} 単体と [{task_id}] 配列の両方があり得ます。
func parseTaskID(raw json.RawMessage) (string, error) {
	var single struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(raw, &single); err == nil && single.TaskID != "" {
		return single.TaskID, nil
	}

	var list []struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 && list[0].TaskID != "" {
		return list[0].TaskID, nil
	}

	return "", &ParseError{Msg: "task_id not found in response", Raw: string(raw)}
}
