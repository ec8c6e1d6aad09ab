package domain

// BatchItem は、ファンアウト投入の中で独立に追跡される (プロンプト, 参照画像) の組です。
// LocalID はクライアント側で採番され、アイテムの生存期間を通じて安定しています。
type BatchItem struct {
	LocalID    string `json:"local_id"`
	PromptText string `json:"prompt_text"`

	// ReferenceImages は不透明な画像ペイロード参照の順序付きリスト（0〜5件）です。
	// ベンダーAPIは位置で解釈することがあるため、順序に意味があります。
	ReferenceImages []string `json:"reference_images,omitempty"`

	// Job は投入後に割り当てられます。nil のアイテムは一度も投入されていません。
	// リトライ時は in-place 更新ではなく丸ごと差し替えます。
	Job *GenerationJob `json:"job,omitempty"`
}

// Clone はアイテムの防御的コピーを返します。スライスと Job も新しく割り当てます。
func (it BatchItem) Clone() BatchItem {
	copied := it
	if it.ReferenceImages != nil {
		copied.ReferenceImages = make([]string, len(it.ReferenceImages))
		copy(copied.ReferenceImages, it.ReferenceImages)
	}
	if it.Job != nil {
		job := *it.Job
		copied.Job = &job
	}
	return copied
}

// Submitted は、このアイテムが一度でもプロバイダに投入されたかどうかを返します。
func (it BatchItem) Submitted() bool {
	return it.Job != nil
}
