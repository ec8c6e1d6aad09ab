package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultHTTPTimeout は、ゲートウェイが使う http.Client の既定タイムアウトです。
const DefaultHTTPTimeout = 30 * time.Second

// CredentialsFunc は、呼び出しごとにベアラートークンを解決する関数です。
// ゲートウェイはプロセス全体の設定ストアを直接読まず、必ずこの注入された
// 関数を経由します。テストではフィクスチャに差し替えられます。
type CredentialsFunc func() (string, error)

// StaticCredentials は、固定文字列を返す CredentialsFunc を生成します。
func StaticCredentials(token string) CredentialsFunc {
	return func() (string, error) { return token, nil }
}

// Options は Client の構築パラメータです。
type Options struct {
	BaseURL     string
	Credentials CredentialsFunc
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Client は、全リモート呼び出しが共有する単一のHTTPトランスポートです。
// 資格情報の注入、不揃いなレスポンスエンベロープの展開、型付きエラーへの
// 変換をここで一元的に行います。ステートレスであり、呼び出しごとに生成しても
// 安全です。
type Client struct {
	baseURL    string
	creds      CredentialsFunc
	httpClient *http.Client
	logger     *slog.Logger
}

// New は Client を生成します。HTTPClient と Logger は省略可能です。
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		creds:      opts.Credentials,
		httpClient: httpClient,
		logger:     logger,
	}
}

// envelope は、プロバイダが返す2種類のレスポンス形状を受けるための内部構造体です。
// ペイロードがトップレベルに直接置かれる場合と、data キーの下に1段ネストされる
// 場合の両方があります。
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorBody      `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Request は、プロバイダAPIへの1回の呼び出しを実行し、エンベロープを展開した
// JSONペイロードを返します。呼び出し側がレスポンス形状で分岐する必要はありません。
//
// 失敗は次の型付きエラーに分類されます:
//   - *AuthError      資格情報が未設定（ネットワーク到達前に検出）
//   - *TransportError ネットワークレベルの失敗
//   - *ProviderError  非2xx応答、または埋め込みのエラーオブジェクト
//   - *ParseError     レスポンスボディがJSONとして解釈できない
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	token, err := c.resolveToken()
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("リクエストの構築に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("プロバイダが失敗を報告しました", "method", method, "path", path, "status", resp.StatusCode)
		return nil, providerErrorFromBody(resp.StatusCode, raw)
	}

	return unwrapEnvelope(resp.StatusCode, raw)
}

// resolveToken は注入された CredentialsFunc からトークンを取り出します。
// 空のトークンはハードな事前条件違反として扱います。
func (c *Client) resolveToken() (string, error) {
	if c.creds == nil {
		return "", &AuthError{Reason: "credentials resolver not configured"}
	}
	token, err := c.creds()
	if err != nil {
		return "", &AuthError{Reason: err.Error()}
	}
	if strings.TrimSpace(token) == "" {
		return "", &AuthError{Reason: "empty api key"}
	}
	return token, nil
}

// unwrapEnvelope は、トップレベル直置きと data キー配下の両形状を透過的に展開します。
// 埋め込みのエラーオブジェクトが見つかった場合は ProviderError に変換します。
func unwrapEnvelope(httpStatus int, raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &ParseError{Msg: "empty response body"}
	}

	// 配列などオブジェクト以外のトップレベルはそのまま返します
	if trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return nil, &ParseError{Msg: "invalid json", Raw: string(trimmed)}
		}
		return trimmed, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, &ParseError{Msg: err.Error(), Raw: string(trimmed)}
	}
	if env.Error != nil {
		code := env.Error.Code
		if code == "" {
			code = "error"
		}
		return nil, &ProviderError{HTTPStatus: httpStatus, Code: code, Message: env.Error.Message}
	}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return env.Data, nil
	}
	return trimmed, nil
}

// providerErrorFromBody は、非2xx応答のボディから失敗コードとメッセージを取り出します。
// ボディが解釈できなくても、HTTPステータスだけは必ず保持します。
func providerErrorFromBody(httpStatus int, raw []byte) *ProviderError {
	var body struct {
		Code    string     `json:"code"`
		Message string     `json:"message"`
		Error   *errorBody `json:"error"`
	}
	pe := &ProviderError{HTTPStatus: httpStatus, Code: "error"}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != nil {
			if body.Error.Code != "" {
				pe.Code = body.Error.Code
			}
			pe.Message = body.Error.Message
		} else {
			if body.Code != "" {
				pe.Code = body.Code
			}
			pe.Message = body.Message
		}
	}
	if pe.Message == "" {
		pe.Message = strings.TrimSpace(string(raw))
	}
	return pe
}
