package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shouni/go-studio-kit/pkg/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Options{
		BaseURL:     server.URL,
		Credentials: StaticCredentials("test-key"),
	})
	return client, server
}

func TestClient_AuthPrecondition(t *testing.T) {
	t.Run("資格情報が空ならネットワークに触れずAuthErrorを返すこと", func(t *testing.T) {
		hits := 0
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			hits++
		})
		client.creds = StaticCredentials("")

		_, err := client.Request(context.Background(), http.MethodGet, "/v1/tasks/x", nil)

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("AuthErrorが返らないのだ: %v", err)
		}
		if hits != 0 {
			t.Errorf("認証前にネットワーク呼び出しが発生しているのだ: %d回", hits)
		}
	})
}

func TestClient_EnvelopeUnwrap(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"トップレベル直置き", `{"task_id":"task-1"}`},
		{"dataキー配下", `{"code":200,"data":{"task_id":"task-1"}}`},
		{"dataキー配下の配列", `{"data":[{"task_id":"task-1"}]}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorizationヘッダが違うのだ: %s", got)
				}
				w.Write([]byte(c.body))
			})

			raw, err := client.Request(context.Background(), http.MethodPost, "/v1/images/generations", map[string]string{"prompt": "x"})
			if err != nil {
				t.Fatalf("展開に失敗したのだ: %v", err)
			}

			id, err := parseTaskID(raw)
			if err != nil || id != "task-1" {
				t.Errorf("task_idが取り出せないのだ: id=%q, err=%v", id, err)
			}
		})
	}
}

func TestClient_ProviderError(t *testing.T) {
	t.Run("非2xx応答はProviderErrorに変換されること", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"code":"input_moderation","message":"prompt rejected"}`))
		})

		_, err := client.Request(context.Background(), http.MethodPost, "/v1/images/generations", nil)

		var pe *ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("ProviderErrorが返らないのだ: %v", err)
		}
		if pe.HTTPStatus != http.StatusUnprocessableEntity {
			t.Errorf("HTTPステータスが保持されていないのだ: %d", pe.HTTPStatus)
		}
		// 失敗理由コードは改変せず保持されること
		if pe.Code != domain.ReasonInputModeration {
			t.Errorf("理由コードが欠落したのだ: %q", pe.Code)
		}
		if !pe.IsModeration() {
			t.Error("モデレーション失敗として判定されないのだ")
		}
	})

	t.Run("2xxでも埋め込みエラーオブジェクトはProviderErrorになること", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":{"code":"quota_exceeded","message":"out of credits"}}`))
		})

		_, err := client.Request(context.Background(), http.MethodGet, "/v1/tasks/x", nil)

		var pe *ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("ProviderErrorが返らないのだ: %v", err)
		}
		if pe.Code != "quota_exceeded" {
			t.Errorf("理由コードが違うのだ: %q", pe.Code)
		}
	})
}

func TestClient_TransportError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close() // 接続先を先に落としておく

	_, err := client.Request(context.Background(), http.MethodGet, "/v1/tasks/x", nil)

	if !IsTransport(err) {
		t.Fatalf("TransportErrorが返らないのだ: %v", err)
	}
}

func TestFailureReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"プロバイダコードは改変しない", &ProviderError{Code: "output_moderation"}, "output_moderation"},
		{"認証エラー", &AuthError{Reason: "empty"}, "auth_error"},
		{"通信エラー", &TransportError{Err: errors.New("refused")}, "transport_error"},
		{"その他", errors.New("boom"), domain.ReasonError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := FailureReason(c.err); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}
