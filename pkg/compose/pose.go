package compose

import "strings"

// poseCatalog は、ポーズ名から記述フレーズへの固定カタログです。
var poseCatalog = map[string]string{
	"standing":        "standing upright",
	"sitting":         "sitting down",
	"walking":         "walking forward",
	"running":         "running",
	"jumping":         "jumping in mid-air",
	"leaning_forward": "leaning forward",
	"arms_crossed":    "arms crossed",
	"hands_on_hips":   "hands on hips",
	"looking_back":    "looking back over the shoulder",
	"lying_down":      "lying down",
	"waving":          "waving at the camera",
	"crouching":       "crouching low",
}

// PoseDescriptor は、ポーズ名を記述フレーズへ変換します。カタログに無い名前は
// アンダースコアを空白に直してそのまま使います。空文字列は空のまま返します。
func PoseDescriptor(name string) string {
	if name == "" {
		return ""
	}
	if phrase, ok := poseCatalog[name]; ok {
		return phrase
	}
	return strings.ReplaceAll(name, "_", " ")
}
