package compose

// ConsistencyMode は、複数参照画像の再現忠実性をどう担保するかの指定です。
type ConsistencyMode string

const (
	ConsistencyNone    ConsistencyMode = ""
	ConsistencyPerson  ConsistencyMode = "person"
	ConsistencyProduct ConsistencyMode = "product"
)

// アンカーと自由記述の強調重み。アンカーを強く、記述を弱くすることで、
// 生成バックエンドをテキストよりも参照画像のピクセルへ寄せます。
const (
	AnchorWeight      = 1.9
	DescriptionWeight = 0.5
)

// AnchorPhrases は、一貫性モードに応じた高強調の固定フレーズ列を返します。
// アンカーは合成結果の中で必ず自由記述より前に並びます。
func AnchorPhrases(mode ConsistencyMode) []Phrase {
	switch mode {
	case ConsistencyPerson:
		return []Phrase{
			{Text: "exact same person as in the reference images", Weight: AnchorWeight},
			{Text: "preserve facial identity and hairstyle", Weight: AnchorWeight},
		}
	case ConsistencyProduct:
		return []Phrase{
			{Text: "exact same product as in the reference images", Weight: AnchorWeight},
			{Text: "preserve product shape, color and markings", Weight: AnchorWeight},
		}
	default:
		return nil
	}
}
