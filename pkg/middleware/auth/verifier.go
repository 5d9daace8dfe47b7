package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	hmetrics "github.com/joeydtaylor/terakoya-core/pkg/middleware/metrics"
)

var registeredClaims = map[string]struct{}{
	"sub": {}, "iss": {}, "aud": {}, "exp": {}, "iat": {}, "nbf": {},
	"token_use": {}, "username": {}, "client_id": {},
}

// Verifier checks token signatures against a KeyResolver.
type Verifier struct {
	keys   KeyResolver
	leeway time.Duration
	issuer string
}

func NewVerifier(keys KeyResolver, leeway time.Duration, issuer string) *Verifier {
	return &Verifier{keys: keys, leeway: leeway, issuer: issuer}
}

// Verify parses the header, resolves the signing key by kid and checks the
// signature restricted to the header's algorithm.
func (v *Verifier) Verify(ctx context.Context, raw string) (Claims, error) {
	claims, err := v.verify(ctx, raw)
	if err != nil {
		if k, ok := apperr.KindOf(err); ok {
			hmetrics.ObserveTokenVerification(string(k))
		} else {
			hmetrics.ObserveTokenVerification("error")
		}
		return Claims{}, err
	}
	hmetrics.ObserveTokenVerification("ok")
	return claims, nil
}

func (v *Verifier) verify(ctx context.Context, raw string) (Claims, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return Claims{}, apperr.Wrap(apperr.KindInvalidToken, msgInvalidToken, err)
	}
	kid, _ := unverified.Header["kid"].(string)
	alg, _ := unverified.Header["alg"].(string)
	if kid == "" || alg == "" {
		return Claims{}, apperr.New(apperr.KindInvalidToken, msgInvalidToken)
	}

	set, err := v.keys.Resolve(ctx)
	if err != nil {
		return Claims{}, err
	}
	key, ok := set[kid]
	if !ok {
		if r, canRefresh := v.keys.(Refresher); canRefresh {
			if set, err = r.Refresh(ctx); err != nil {
				return Claims{}, err
			}
			key, ok = set[kid]
		}
	}
	if !ok {
		return Claims{}, apperr.New(apperr.KindUnknownSigningKey, msgInvalidToken)
	}
	if key.Algorithm != "" && key.Algorithm != alg {
		return Claims{}, apperr.New(apperr.KindInvalidToken, msgInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	mc := jwt.MapClaims{}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(raw, mc, func(*jwt.Token) (any, error) {
		return key.Key, nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("token not valid")
		}
		return Claims{}, apperr.Wrap(apperr.KindInvalidToken, msgInvalidToken, err)
	}
	return claimsFromMap(mc), nil
}

func claimsFromMap(mc jwt.MapClaims) Claims {
	c := Claims{Extra: map[string]any{}}
	c.Subject, _ = mc.GetSubject()
	c.Issuer, _ = mc.GetIssuer()
	if aud, err := mc.GetAudience(); err == nil {
		c.Audience = []string(aud)
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	c.TokenUse, _ = mc["token_use"].(string)
	c.Username, _ = mc["username"].(string)
	if c.Username == "" {
		c.Username, _ = mc["cognito:username"].(string)
	}
	c.ClientID, _ = mc["client_id"].(string)

	for k, val := range mc {
		if _, ok := registeredClaims[k]; ok {
			continue
		}
		c.Extra[k] = val
	}
	return c
}
