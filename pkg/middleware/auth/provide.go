package auth

import (
	"go.uber.org/fx"

	"github.com/joeydtaylor/terakoya-core/pkg/config"
)

// ProvideKeyResolver caches the user pool's JWKS for the configured TTL.
func ProvideKeyResolver(cfg *config.Config, hc HTTPDoer) KeyResolver {
	return NewRemoteKeySet(cfg.JWKSURL(), hc, cfg.Auth.JWKSCacheTTL)
}

func ProvideVerifier(cfg *config.Config, keys KeyResolver) *Verifier {
	issuer := ""
	if cfg.Auth.VerifyIssuer {
		issuer = cfg.Issuer()
	}
	return NewVerifier(keys, cfg.Auth.Leeway, issuer)
}

// ProvideAuthentication wires the verifier into the request middleware.
func ProvideAuthentication(v *Verifier) *Middleware {
	return NewMiddleware(v)
}

var Module = fx.Options(
	fx.Provide(ProvideHTTPClient),
	fx.Provide(ProvideKeyResolver),
	fx.Provide(ProvideVerifier),
	fx.Provide(ProvideAuthentication),
)
