package prompt

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	ModeDescribe  = "describe"
	ModeStructure = "structure"
)

//go:embed describe.md
var DescribePrompt string

//go:embed structure.md
var StructurePrompt string

// modeTemplates はモードと解析指示テンプレートを紐づけるマップなのだ。
var modeTemplates = map[string]string{
	ModeDescribe:  DescribePrompt,
	ModeStructure: StructurePrompt,
}

// GetPromptByMode は、指定されたモードに対応する解析指示を返すのだ。
func GetPromptByMode(mode string) (string, error) {
	content, ok := modeTemplates[mode]
	if !ok {
		supported := slices.Collect(maps.Keys(modeTemplates))
		slices.Sort(supported)

		return "", fmt.Errorf("サポートされていないモード: '%s'。サポートされているモードは [%s] です",
			mode, strings.Join(supported, ", "))
	}

	if content == "" {
		return "", fmt.Errorf("モード '%s' に対応する解析指示テンプレートが空なのだ。embed設定を確認してほしいのだ", mode)
	}

	return content, nil
}
