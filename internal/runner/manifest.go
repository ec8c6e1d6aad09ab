package runner

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shouni/go-studio-kit/pkg/compose"
)

// Manifest は、バッチ投入用のJSONマニフェストの形なのだ。
type Manifest struct {
	Items []ManifestItem `json:"items"`
}

// ManifestItem は投入1件分の指定なのだ。Params を省略したアイテムには
// 実行時の共通パラメータが適用されるのだ。
type ManifestItem struct {
	Prompt     string       `json:"prompt"`
	References []string     `json:"references,omitempty"`
	Params     *ComposeSpec `json:"params,omitempty"`
}

// ComposeSpec は、プロンプト合成パラメータのJSON表現なのだ。
type ComposeSpec struct {
	Pose        string          `json:"pose,omitempty"`
	Consistency string          `json:"consistency,omitempty"`
	Camera      *CameraSpec     `json:"camera,omitempty"`
	Body        *BodySpec       `json:"body,omitempty"`
	Expression  *ExpressionSpec `json:"expression,omitempty"`
	Lighting    *LightingSpec   `json:"lighting,omitempty"`
}

type CameraSpec struct {
	Vertical   float64 `json:"vertical"`
	Horizontal float64 `json:"horizontal"`
	Distance   float64 `json:"distance"`
}

type BodySpec struct {
	Fullness    float64 `json:"fullness"`
	Muscularity float64 `json:"muscularity"`
	Height      float64 `json:"height"`
}

type ExpressionSpec struct {
	Smile      float64 `json:"smile"`
	EyesClosed float64 `json:"eyes_closed"`
}

type LightingSpec struct {
	Intensity float64 `json:"intensity"`
	Warmth    float64 `json:"warmth"`
	Contrast  float64 `json:"contrast"`
}

// ToParams は、JSON表現を合成エンジンのパラメータに変換するのだ。
func (s *ComposeSpec) ToParams() compose.Params {
	if s == nil {
		return compose.Params{}
	}
	p := compose.Params{
		PoseName:    s.Pose,
		Consistency: compose.ConsistencyMode(s.Consistency),
	}
	if s.Camera != nil {
		p.Camera = &compose.CameraParams{
			VerticalAngle:   s.Camera.Vertical,
			HorizontalAngle: s.Camera.Horizontal,
			Distance:        s.Camera.Distance,
		}
	}
	if s.Body != nil {
		p.Body = &compose.BodyParams{
			Fullness:    s.Body.Fullness,
			Muscularity: s.Body.Muscularity,
			Height:      s.Body.Height,
		}
	}
	if s.Expression != nil {
		p.Expression = &compose.ExpressionParams{
			Smile:      s.Expression.Smile,
			EyesClosed: s.Expression.EyesClosed,
		}
	}
	if s.Lighting != nil {
		p.Lighting = &compose.LightingParams{
			Intensity: s.Lighting.Intensity,
			Warmth:    s.Lighting.Warmth,
			Contrast:  s.Lighting.Contrast,
		}
	}
	return p
}

// LoadManifest は、マニフェストJSONを読み込んで検証するのだ。
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("マニフェスト '%s' の読み込みに失敗しました: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("マニフェスト '%s' のデコードに失敗しました: %w", path, err)
	}
	if len(m.Items) == 0 {
		return nil, fmt.Errorf("マニフェスト '%s' にアイテムがひとつもないのだ", path)
	}
	for i, item := range m.Items {
		if item.Prompt == "" {
			return nil, fmt.Errorf("マニフェストの %d 番目のアイテムに prompt がないのだ", i+1)
		}
	}
	return &m, nil
}

// LoadComposeSpec は、合成パラメータ単体のJSONファイルを読み込むのだ。
func LoadComposeSpec(path string) (*ComposeSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("パラメータファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	var spec ComposeSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("パラメータファイル '%s' のデコードに失敗しました: %w", path, err)
	}
	return &spec, nil
}
