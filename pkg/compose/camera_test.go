package compose

import "testing"

func TestVerticalAngleLabel_Boundaries(t *testing.T) {
	cases := []struct {
		name string
		deg  float64
		want string
	}{
		{"真上の限界", 90, "overhead flat lay shot"},
		{"82ちょうどは鳥瞰に落ちること", 82, "bird's-eye view"},
		{"82を超えたら俯瞰", 82.5, "overhead flat lay shot"},
		{"水平", 0, "eye-level shot"},
		{"15ちょうどは水平に落ちること", 15, "eye-level shot"},
		{"-85ちょうどは虫の目になること", -85, "worm's-eye view"},
		{"-85の直前は劇的な煽り", -84.9, "dramatic low angle"},
		{"真下の限界", -90, "worm's-eye view"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := verticalAngleLabel(c.deg); got != c.want {
				t.Errorf("%.1f度: got %q, want %q", c.deg, got, c.want)
			}
		})
	}
}

func TestVerticalAngleLabel_Exhaustive(t *testing.T) {
	// [-90, 90] の全域が隙間なく9区間のいずれかに写ること。
	// ラベルの切り替わりは単調で、9区間すべてが出現すること。
	seen := make(map[string]bool)
	prev := ""
	changes := 0
	for deg := -90.0; deg <= 90.0; deg += 0.25 {
		label := verticalAngleLabel(deg)
		if label == "" {
			t.Fatalf("%.2f度でラベルが空なのだ", deg)
		}
		seen[label] = true
		if label != prev {
			if prev != "" {
				changes++
			}
			prev = label
		}
	}
	if len(seen) != 9 {
		t.Errorf("区間の数が違うのだ: %d (%v)", len(seen), seen)
	}
	if changes != 8 {
		t.Errorf("区間が連続していないのだ: 切り替わり%d回", changes)
	}
}

func TestHorizontalAngleLabel(t *testing.T) {
	cases := []struct {
		name string
		deg  float64
		want string
	}{
		{"正面", 0, "front view"},
		{"22.5ちょうどは正面に落ちること", 22.5, "front view"},
		{"右斜め", 45, "three-quarter view from the right"},
		{"左斜め", -45, "three-quarter view from the left"},
		{"右真横", 90, "side profile from the right"},
		{"左斜め後ろ", -135, "three-quarter back view from the left"},
		{"背面", 180, "view from behind"},
		{"背面（負側）", -180, "view from behind"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := horizontalAngleLabel(c.deg); got != c.want {
				t.Errorf("%.1f度: got %q, want %q", c.deg, got, c.want)
			}
		})
	}
}

func TestDistanceLabel_Exhaustive(t *testing.T) {
	seen := make(map[string]bool)
	for d := 0.0; d <= 100.0; d += 0.5 {
		label := distanceLabel(d)
		if label == "" {
			t.Fatalf("距離%.1fでラベルが空なのだ", d)
		}
		seen[label] = true
	}
	if len(seen) != 8 {
		t.Errorf("区間の数が違うのだ: %d (%v)", len(seen), seen)
	}

	t.Run("境界値", func(t *testing.T) {
		if got := distanceLabel(0); got != "extreme close-up" {
			t.Errorf("最接近: %q", got)
		}
		if got := distanceLabel(100); got != "extreme wide shot" {
			t.Errorf("最遠: %q", got)
		}
	})
}

func TestCameraPhrases_Order(t *testing.T) {
	got := JoinPhrases(CameraPhrases(&CameraParams{VerticalAngle: 70, HorizontalAngle: 90, Distance: 60}))
	want := "bird's-eye view, side profile from the right, full body shot"
	if got != want {
		t.Errorf("3軸の出力順が違うのだ: got %q, want %q", got, want)
	}
}
