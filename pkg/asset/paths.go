package asset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultArtifactDir は生成されたアーティファクトを格納するデフォルトのディレクトリ名です。
	DefaultArtifactDir = "artifacts"
	// DefaultImageFileName は画像アーティファクトの共通のベースファイル名です。
	DefaultImageFileName = "image.png"
	// DefaultVideoFileName は動画アーティファクトの共通のベースファイル名です。
	DefaultVideoFileName = "video.mp4"
	// DefaultResultJSONName はバッチ実行結果のデフォルト JSON ファイル名です。
	DefaultResultJSONName = "batch_result.json"
)

var (
	// ImageFileRegex は連番付き画像ファイル (image_1.png 等) に一致します
	ImageFileRegex = createIndexedRegex(DefaultImageFileName)
	// VideoFileRegex は連番付き動画ファイル (video_1.mp4 等) に一致します
	VideoFileRegex = createIndexedRegex(DefaultVideoFileName)
)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolvePath(baseDir, fileName)
}

// ResolveBaseURL は、入力パス（URLまたはローカルパス）から
// 親ディレクトリのパスを解決し、末尾がセパレータで終わるように正規化します。
func ResolveBaseURL(rawPath string) string {
	return urlpath.ResolveBaseDir(rawPath)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/image.png", 1 -> "path/to/image_1.png"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}

// createIndexedRegex は、ファイル名に基づきインデックス付きファイル用の正規表現を生成します。
// 例: "image.png" -> ^image_\d+\.png$
func createIndexedRegex(fileName string) *regexp.Regexp {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)

	// baseName と ext の両方を QuoteMeta でエスケープすることで
	// ドットや特殊文字が含まれていても正しくリテラルとしてマッチします。
	pattern := fmt.Sprintf(`^%s_\d+%s$`, regexp.QuoteMeta(baseName), regexp.QuoteMeta(ext))
	return regexp.MustCompile(pattern)
}
