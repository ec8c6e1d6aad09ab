// Package compose は、スタジオUIの構造化パラメータ（カメラ、ポーズ、体型、
// 表情、ライティング、一貫性要件）を重み付きの自然言語フレーズへ決定論的に
// 変換し、ユーザーが記述したテンプレートへ置換するプロンプト合成エンジンです。
//
// すべての記述子は純粋関数で、同じ入力には常に同じフレーズ列を返します。
// フレーズの連結は順序保存で、並べ替えは一切行いません。
package compose

import (
	"regexp"
	"strconv"
	"strings"
)

// テンプレート内で認識するプレースホルダトークン。
// ここに無いブラケット表記は未知トークンとして原文のまま残します。
const (
	TokenPose       = "[selected_pose]"
	TokenCamera     = "[camera_angle]"
	TokenBody       = "[body_shape]"
	TokenExpression = "[expression]"
	TokenLighting   = "[lighting]"
)

// Phrase は、省略可能な強調重みを持つプロンプト片です。
type Phrase struct {
	Text   string
	Weight float64
}

// String は、重み付きフレーズを "(text:weight)" 形式で描画します。
// 重みが未設定（0）または 1 のフレーズは素のテキストのまま返します。
func (p Phrase) String() string {
	if p.Weight == 0 || p.Weight == 1 {
		return p.Text
	}
	return "(" + p.Text + ":" + strconv.FormatFloat(p.Weight, 'g', -1, 64) + ")"
}

// JoinPhrases は、フレーズ列を順序を保ったままカンマ区切りで連結します。
func JoinPhrases(phrases []Phrase) string {
	parts := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p.Text == "" {
			continue
		}
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ", ")
}

// Params は、1回の合成に使う構造化パラメータの集合です。
// nil のフィールドに対応するトークンは空文字列に置換され、
// 後段のサニタイズで区切り文字ごと畳まれます。
type Params struct {
	PoseName    string
	Camera      *CameraParams
	Body        *BodyParams
	Expression  *ExpressionParams
	Lighting    *LightingParams
	Consistency ConsistencyMode
}

// Compose は、テンプレート内の認識済みトークンを対応する記述子の出力で
// 1回の走査で置換し、一貫性アンカーの付与とサニタイズを経た最終プロンプトを
// 返します。
//
// 置換結果のテキストが再走査されることはありません。テンプレートに存在しない
// トークンが強制挿入されることもありません。一貫性モードが有効な場合は、
// アンカーフレーズが必ず本文（自由記述）より前に並び、本文は弱い重みで
// 包まれます。
func Compose(template string, p Params) string {
	replacer := strings.NewReplacer(
		TokenPose, PoseDescriptor(p.PoseName),
		TokenCamera, JoinPhrases(CameraPhrases(p.Camera)),
		TokenBody, JoinPhrases(BodyPhrases(p.Body)),
		TokenExpression, JoinPhrases(ExpressionPhrases(p.Expression)),
		TokenLighting, JoinPhrases(LightingPhrases(p.Lighting)),
	)
	body := replacer.Replace(template)

	anchors := AnchorPhrases(p.Consistency)
	if len(anchors) > 0 {
		body = Sanitize(body)
		parts := make([]Phrase, 0, len(anchors)+1)
		parts = append(parts, anchors...)
		if body != "" {
			parts = append(parts, Phrase{Text: body, Weight: DescriptionWeight})
		}
		return Sanitize(JoinPhrases(parts))
	}

	return Sanitize(body)
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	separatorRun  = regexp.MustCompile(`(\s*,)+\s*`)
)

// Sanitize は、空白の連続を1つに畳み、カンマの連続を ", " に正規化し、
// 先頭と末尾の区切り文字を取り除きます。合成パイプラインの最後に1回だけ
// 適用します。
func Sanitize(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = separatorRun.ReplaceAllString(s, ", ")
	return strings.Trim(s, " ,")
}
