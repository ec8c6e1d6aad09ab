package prompt

import (
	"strings"
	"testing"
)

func TestGetPromptByMode(t *testing.T) {
	t.Run("既知のモードは空でないテンプレートを返すこと", func(t *testing.T) {
		for _, mode := range []string{ModeDescribe, ModeStructure} {
			content, err := GetPromptByMode(mode)
			if err != nil {
				t.Errorf("モード %s の取得に失敗したのだ: %v", mode, err)
			}
			if content == "" {
				t.Errorf("モード %s のテンプレートが空なのだ", mode)
			}
		}
	})

	t.Run("未知のモードはサポート一覧つきのエラーになること", func(t *testing.T) {
		_, err := GetPromptByMode("haiku")
		if err == nil {
			t.Fatal("エラーが返らないのだ")
		}
		if !strings.Contains(err.Error(), ModeDescribe) || !strings.Contains(err.Error(), ModeStructure) {
			t.Errorf("サポート一覧が含まれていないのだ: %v", err)
		}
	})
}
