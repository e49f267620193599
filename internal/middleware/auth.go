// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/meetplan/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// clientIDContextKey はリクエストコンテキストにAPIクライアントIDを格納するためのキー。
var clientIDContextKey = contextKey("client_id")

// TokenResolver はBearerトークンからAPIクライアントを特定するインターフェース。
// auth.Serviceが実装する。
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*model.APIClient, error)
}

// NewTokenAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 認証済みクライアントIDをリクエストコンテキストに注入する。
// トークンがない・無効な場合は401を返す。
func NewTokenAuthMiddleware(resolver TokenResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteAPIError(w, model.NewUnauthorizedError())
				return
			}

			client, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				var apiErr *model.APIError
				if errors.As(err, &apiErr) {
					WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
					return
				}
				slog.ErrorContext(r.Context(), "failed to resolve api token",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}

			markClientID(r.Context(), client.ID)
			next.ServeHTTP(w, r.WithContext(ContextWithClientID(r.Context(), client.ID)))
		})
	}
}

// bearerToken は "Authorization: Bearer <token>" からトークンを取り出す。
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ClientIDFromContext はリクエストコンテキストからAPIクライアントIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func ClientIDFromContext(ctx context.Context) (string, error) {
	clientID, ok := ctx.Value(clientIDContextKey).(string)
	if !ok || clientID == "" {
		return "", fmt.Errorf("client ID not found in context")
	}
	return clientID, nil
}

// ContextWithClientID はコンテキストにAPIクライアントIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey, clientID)
}
