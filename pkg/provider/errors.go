package provider

import (
	"errors"
	"fmt"

	"github.com/shouni/go-studio-kit/pkg/domain"
)

// AuthError は、資格情報が未設定のまま呼び出された場合の失敗です。
// ネットワーク呼び出しの前に検出され、リトライの対象にはなりません。
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("認証情報が設定されていません: %s", e.Reason)
}

// TransportError は、HTTP呼び出しがネットワークレベルで失敗したことを表します。
// ポーリング中に限り、ポーラーが予算内でリトライしてよい唯一のエラー種別です。
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("通信エラー: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError は、HTTP呼び出し自体は完了したものの、プロバイダが失敗を報告した
// 場合のエラーです。Code にはプロバイダの機械可読コードを改変せず保持します。
type ProviderError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("プロバイダエラー (HTTP %d, code=%s): %s", e.HTTPStatus, e.Code, e.Message)
}

// IsModeration は、このエラーがコンテンツモデレーションによる拒否かどうかを返します。
// モデレーション起因の失敗は、汎用の失敗メッセージとは別の説明を選択する必要があります。
func (e *ProviderError) IsModeration() bool {
	return e.Code == domain.ReasonInputModeration || e.Code == domain.ReasonOutputModeration
}

// ParseError は、構造化JSONを期待したレスポンスがその形をしていなかった場合の
// エラーです。「リクエストが失敗した」のではなく「モデルが違う形を返した」ことを
// 呼び出し元が区別できるようにします。
type ParseError struct {
	Msg string
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("レスポンスの解析に失敗しました: %s", e.Msg)
}

// IsTransport は、err が通信レベルの失敗かどうかを判定するヘルパーです。
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// FailureReason は、エラーからアイテム失敗時の機械可読コードを導出します。
// プロバイダ報告のコードは改変せずそのまま返します。
func FailureReason(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Code != "" {
		return pe.Code
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return "auth_error"
	}
	if IsTransport(err) {
		return "transport_error"
	}
	return domain.ReasonError
}
