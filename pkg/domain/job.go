package domain

// Status は、ベンダー語彙の揺れを吸収した正規化済みのジョブ状態です。
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// IsTerminal は、このステータスが終端状態（これ以上ポーリング不要）かどうかを返します。
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// JobKind は、リモートジョブの種別です。
type JobKind string

const (
	KindImage    JobKind = "image"
	KindVideo    JobKind = "video"
	KindAnalysis JobKind = "analysis"
)

// 失敗理由の機械可読コード。ユーザー向けメッセージの選択とテストの両方で使います。
const (
	ReasonInputModeration    = "input_moderation"
	ReasonOutputModeration   = "output_moderation"
	ReasonMissingResult      = "missing_result"
	ReasonConnectionUnstable = "connection_unstable"
	ReasonTimeout            = "timeout"
	ReasonError              = "error"
)

// GenerationJob は、プロバイダに投入された生成ジョブ1件の追跡情報です。
// ID はプロバイダが採番した不透明な文字列で、割り当て後は不変です。
type GenerationJob struct {
	ID            string  `json:"id"`
	Kind          JobKind `json:"kind"`
	Status        Status  `json:"status"`
	Progress      int     `json:"progress"`
	ResultRef     string  `json:"result_ref,omitempty"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// StatusSnapshot は、1回のステータス照会で観測されたジョブの状態です。
// ResultRef は Status が succeeded のときだけ、FailureReason は failed のときだけ
// 意味を持ちます。
type StatusSnapshot struct {
	Status        Status
	Progress      int
	ResultRef     string
	FailureReason string
}

// Apply は、スナップショットをジョブに反映した新しいコピーを返します。
// Progress はプロバイダ側で逆行することがあるため、既知の最大値でクランプします。
func (j GenerationJob) Apply(snap StatusSnapshot) GenerationJob {
	j.Status = snap.Status
	if snap.Progress > j.Progress {
		j.Progress = snap.Progress
	}
	j.ResultRef = snap.ResultRef
	j.FailureReason = snap.FailureReason
	return j
}
