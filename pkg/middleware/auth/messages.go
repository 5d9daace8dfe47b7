package auth

import "github.com/joeydtaylor/terakoya-core/pkg/apperr"

// User-facing details returned in the {"detail": ...} body.
const (
	msgMissingToken = "アクセストークンがCookieに設定されていません。サインインし直して下さい。"
	msgInvalidToken = "アクセストークンが無効です。サインインし直して下さい。"
)

// MissingTokenError is the 401 for a request that carries no access token.
func MissingTokenError() error {
	return apperr.New(apperr.KindAuthenticationRequired, msgMissingToken)
}
