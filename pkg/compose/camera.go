package compose

// CameraParams は、独立した3軸のカメラ指定です。
// VerticalAngle は度数 [-90, 90]（正が見下ろし）、HorizontalAngle は度数
// [-180, 180]（正が被写体の右側へ回り込み）、Distance は [0, 100]
// （大きいほど引きの構図）です。
type CameraParams struct {
	VerticalAngle   float64
	HorizontalAngle float64
	Distance        float64
}

// CameraPhrases は、カメラ3軸をそれぞれの区間ラベルへ写像します。
// 出力順は常に 垂直角 → 水平角 → 距離 です。
func CameraPhrases(p *CameraParams) []Phrase {
	if p == nil {
		return nil
	}
	return []Phrase{
		{Text: verticalAngleLabel(p.VerticalAngle)},
		{Text: horizontalAngleLabel(p.HorizontalAngle)},
		{Text: distanceLabel(p.Distance)},
	}
}

// verticalAngleLabel は垂直角を9区間に分類します。区間は [-90, 90] を
// 隙間も重なりもなく覆います。境界値はひとつ下の区間へ落ちます
// （82ちょうどは俯瞰ではなく鳥瞰、-85ちょうどは煽りではなく虫の目）。
func verticalAngleLabel(deg float64) string {
	switch {
	case deg > 82:
		return "overhead flat lay shot"
	case deg > 60:
		return "bird's-eye view"
	case deg > 35:
		return "high angle shot"
	case deg > 15:
		return "slightly high angle"
	case deg > -15:
		return "eye-level shot"
	case deg > -40:
		return "slightly low angle"
	case deg > -65:
		return "low angle shot"
	case deg > -85:
		return "dramatic low angle"
	default:
		return "worm's-eye view"
	}
}

// horizontalAngleLabel は水平回転を8区間に分類します。左右は符号で
// 区別し、±22.5度以内を正面、±157.5度超を背面とします。
func horizontalAngleLabel(deg float64) string {
	abs := deg
	if abs < 0 {
		abs = -abs
	}
	side := "right"
	if deg < 0 {
		side = "left"
	}
	switch {
	case abs > 157.5:
		return "view from behind"
	case abs > 112.5:
		return "three-quarter back view from the " + side
	case abs > 67.5:
		return "side profile from the " + side
	case abs > 22.5:
		return "three-quarter view from the " + side
	default:
		return "front view"
	}
}

// distanceLabel は距離を8区間に分類します。値が大きいほど引きです。
func distanceLabel(d float64) string {
	switch {
	case d > 85:
		return "extreme wide shot"
	case d > 70:
		return "wide shot"
	case d > 55:
		return "full body shot"
	case d > 40:
		return "medium full shot"
	case d > 25:
		return "medium shot"
	case d > 15:
		return "medium close-up"
	case d > 5:
		return "close-up shot"
	default:
		return "extreme close-up"
	}
}
