package compose

// BodyParams は体型スライダーの集合です。各軸は独立した閾値ラダーを通り、
// 中立域では何も出力しません。
type BodyParams struct {
	// Fullness は [-1, 1]。負が細身、正がふくよか。
	Fullness float64
	// Muscularity は [0, 1]。
	Muscularity float64
	// Height は [-1, 1]。負が低身長、正が高身長。
	Height float64
}

// BodyPhrases は体型スライダーをフレーズ列へ写像します。
// 出力順は常に 体格 → 筋肉 → 身長 で、ゼロ件のこともあります。
func BodyPhrases(p *BodyParams) []Phrase {
	if p == nil {
		return nil
	}
	var phrases []Phrase

	switch {
	case p.Fullness <= -0.66:
		phrases = append(phrases, Phrase{Text: "very slim figure"})
	case p.Fullness <= -0.25:
		phrases = append(phrases, Phrase{Text: "slim figure"})
	case p.Fullness >= 0.66:
		phrases = append(phrases, Phrase{Text: "plus-size figure"})
	case p.Fullness >= 0.25:
		phrases = append(phrases, Phrase{Text: "curvy figure"})
	}

	switch {
	case p.Muscularity >= 0.75:
		phrases = append(phrases, Phrase{Text: "very muscular build"})
	case p.Muscularity >= 0.4:
		phrases = append(phrases, Phrase{Text: "toned athletic build"})
	case p.Muscularity >= 0.15:
		phrases = append(phrases, Phrase{Text: "slightly toned body"})
	}

	switch {
	case p.Height <= -0.5:
		phrases = append(phrases, Phrase{Text: "petite stature"})
	case p.Height >= 0.5:
		phrases = append(phrases, Phrase{Text: "tall stature"})
	}

	return phrases
}

// ExpressionParams は表情スライダーの集合です。
type ExpressionParams struct {
	// Smile は [-1, 1]。負が真顔から険しい表情、正が笑顔。
	Smile float64
	// EyesClosed は [0, 1]。
	EyesClosed float64
}

// ExpressionPhrases は表情スライダーをフレーズ列へ写像します。
// 出力順は常に 口元 → 目元 です。
func ExpressionPhrases(p *ExpressionParams) []Phrase {
	if p == nil {
		return nil
	}
	var phrases []Phrase

	switch {
	case p.Smile > 0.8:
		phrases = append(phrases, Phrase{Text: "beaming smile"})
	case p.Smile > 0.4:
		phrases = append(phrases, Phrase{Text: "warm smile"})
	case p.Smile > 0.1:
		phrases = append(phrases, Phrase{Text: "soft smile"})
	case p.Smile <= -0.6:
		phrases = append(phrases, Phrase{Text: "stern frown"})
	case p.Smile <= -0.1:
		phrases = append(phrases, Phrase{Text: "serious expression"})
	}

	switch {
	case p.EyesClosed >= 0.9:
		phrases = append(phrases, Phrase{Text: "eyes closed"})
	case p.EyesClosed >= 0.5:
		phrases = append(phrases, Phrase{Text: "half-closed eyes"})
	}

	return phrases
}

// LightingParams はライティングスライダーの集合です。
type LightingParams struct {
	// Intensity は [0, 1]。
	Intensity float64
	// Warmth は [-1, 1]。負が寒色、正が暖色。
	Warmth float64
	// Contrast は [0, 1]。
	Contrast float64
}

// LightingPhrases はライティングスライダーをフレーズ列へ写像します。
// 出力順は常に 光量 → 色温度 → コントラスト です。
func LightingPhrases(p *LightingParams) []Phrase {
	if p == nil {
		return nil
	}
	var phrases []Phrase

	switch {
	case p.Intensity > 0.8:
		phrases = append(phrases, Phrase{Text: "bright studio lighting"})
	case p.Intensity > 0.5:
		phrases = append(phrases, Phrase{Text: "soft diffused lighting"})
	case p.Intensity > 0.2:
		phrases = append(phrases, Phrase{Text: "dim ambient lighting"})
	default:
		phrases = append(phrases, Phrase{Text: "dark moody lighting"})
	}

	switch {
	case p.Warmth > 0.33:
		phrases = append(phrases, Phrase{Text: "warm golden light"})
	case p.Warmth < -0.33:
		phrases = append(phrases, Phrase{Text: "cool blue light"})
	}

	switch {
	case p.Contrast > 0.7:
		phrases = append(phrases, Phrase{Text: "dramatic high-contrast shadows"})
	case p.Contrast > 0.4:
		phrases = append(phrases, Phrase{Text: "defined shadows"})
	}

	return phrases
}
