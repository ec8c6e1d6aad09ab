// Package asset は、参照画像の取り込みと生成アーティファクトの保存先解決を
// 担当します。ローカルファイル・リモートURL・データURLの3形態を受け付け、
// プロバイダへ渡せる形へ正規化します。
package asset

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheExpiration = 30 * time.Minute
	cacheCleanupInterval   = 1 * time.Hour
)

// Payload は、インライン化された参照画像1枚分です。
type Payload struct {
	MimeType string
	Data     string // base64
}

// Resolver は参照画像の取り込み器です。同じ参照の読み込みはキャッシュで
// 省略し、同時要求は singleflight で1回に集約します。
type Resolver struct {
	httpClient *http.Client
	cache      *cache.Cache
	group      singleflight.Group
}

// NewResolver は Resolver を生成します。httpClient が nil の場合は
// http.DefaultClient を使います。
func NewResolver(httpClient *http.Client) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Resolver{
		httpClient: httpClient,
		cache:      cache.New(defaultCacheExpiration, cacheCleanupInterval),
	}
}

// ResolveReference は、参照指定をジョブ投入に使えるURL形式へ正規化します。
// データURLとリモートURLはそのまま通し、ローカルファイルパスは読み込んで
// base64 データURLへ変換します。
func (r *Resolver) ResolveReference(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, "data:") || isRemoteURL(ref) {
		return ref, nil
	}
	payload, err := r.InlinePayload(ctx, ref)
	if err != nil {
		return "", err
	}
	return "data:" + payload.MimeType + ";base64," + payload.Data, nil
}

// InlinePayload は、参照指定を MIME タイプ付きの base64 ペイロードへ解決します。
// リモートURLはダウンロードし、ローカルパスはファイルを読み、データURLは
// その場で分解します。結果は参照文字列をキーにキャッシュされます。
func (r *Resolver) InlinePayload(ctx context.Context, ref string) (Payload, error) {
	if strings.HasPrefix(ref, "data:") {
		return parseDataURL(ref)
	}

	if cached, ok := r.cache.Get(ref); ok {
		return cached.(Payload), nil
	}

	val, err, _ := r.group.Do(ref, func() (interface{}, error) {
		// singleflight 待機中に先行ゴルーチンが格納済みの可能性があるため再確認
		if cached, ok := r.cache.Get(ref); ok {
			return cached, nil
		}

		raw, err := r.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		payload := Payload{
			MimeType: http.DetectContentType(raw),
			Data:     base64.StdEncoding.EncodeToString(raw),
		}
		r.cache.Set(ref, payload, cache.DefaultExpiration)
		return payload, nil
	})
	if err != nil {
		return Payload{}, err
	}

	payload, ok := val.(Payload)
	if !ok {
		return Payload{}, fmt.Errorf("singleflight から予期しない型が返されました: %T", val)
	}
	return payload, nil
}

// Download は、アーティファクトURLの中身を取得します。2xx 以外は失敗です。
func (r *Resolver) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ダウンロード要求の作成に失敗しました: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("アーティファクトのダウンロードに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("アーティファクトの取得に失敗しました (status=%d, url=%s)", resp.StatusCode, rawURL)
	}
	return io.ReadAll(resp.Body)
}

func (r *Resolver) fetch(ctx context.Context, ref string) ([]byte, error) {
	if isRemoteURL(ref) {
		return r.Download(ctx, ref)
	}
	raw, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("参照画像の読み込みに失敗しました (%s): %w", ref, err)
	}
	return raw, nil
}

func isRemoteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// parseDataURL は "data:<mime>;base64,<data>" 形式を分解します。
func parseDataURL(ref string) (Payload, error) {
	rest := strings.TrimPrefix(ref, "data:")
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return Payload{}, fmt.Errorf("データURLの形式が不正です: %.40s", ref)
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "text/plain"
	}
	return Payload{MimeType: mime, Data: data}, nil
}
