package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"golang.org/x/sync/singleflight"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	hmetrics "github.com/joeydtaylor/terakoya-core/pkg/middleware/metrics"
)

// minRefetchInterval bounds how often an unknown kid may force a refetch,
// and is the floor for a Cache-Control max-age override.
const minRefetchInterval = 5 * time.Second

// SigningKey describes one verification key of the remote key set.
type SigningKey struct {
	KeyID     string
	Algorithm string
	KeyType   string
	Use       string
	Key       any
}

// KeySet maps kid to its signing key.
type KeySet map[string]SigningKey

// KeyResolver yields the current signing-key set.
type KeyResolver interface {
	Resolve(ctx context.Context) (KeySet, error)
}

// Refresher is implemented by resolvers that cache; Refresh bypasses the
// cache so a rotated key can be picked up.
type Refresher interface {
	Refresh(ctx context.Context) (KeySet, error)
}

// RemoteKeySet fetches a JWKS document over HTTP and keeps it for cacheTTL.
// A zero TTL fetches on every Resolve. Concurrent fetches collapse into one
// request and mu is only held to read or commit the cached state.
type RemoteKeySet struct {
	url        string
	httpClient HTTPDoer
	now        func() time.Time
	group      singleflight.Group

	// guarded by mu
	mu        sync.Mutex
	set       KeySet
	etag      string
	cacheTTL  time.Duration
	expires   time.Time
	lastFetch time.Time
}

func NewRemoteKeySet(url string, client HTTPDoer, ttl time.Duration) *RemoteKeySet {
	return &RemoteKeySet{
		url:        url,
		httpClient: client,
		now:        time.Now,
		cacheTTL:   ttl,
	}
}

func (k *RemoteKeySet) Resolve(ctx context.Context) (KeySet, error) {
	k.mu.Lock()
	if k.cacheTTL > 0 && k.set != nil && k.now().Before(k.expires) {
		set := k.set
		k.mu.Unlock()
		return set, nil
	}
	k.mu.Unlock()
	return k.fetch(ctx)
}

func (k *RemoteKeySet) Refresh(ctx context.Context) (KeySet, error) {
	k.mu.Lock()
	if k.set != nil && k.now().Sub(k.lastFetch) < minRefetchInterval {
		set := k.set
		k.mu.Unlock()
		return set, nil
	}
	k.mu.Unlock()
	return k.fetch(ctx)
}

// fetch joins the in-flight request, if any. A caller whose ctx ends first
// gives up without cancelling the shared request.
func (k *RemoteKeySet) fetch(ctx context.Context) (KeySet, error) {
	ch := k.group.DoChan(k.url, func() (any, error) {
		return k.fetchOnce(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(KeySet), nil
	case <-ctx.Done():
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "key set fetch", ctx.Err())
	}
}

func (k *RemoteKeySet) fetchOnce(ctx context.Context) (KeySet, error) {
	k.mu.Lock()
	prev, etag := k.set, k.etag
	k.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "key set request", err)
	}
	req.Header.Set("Accept", "application/json")
	if etag != "" && prev != nil {
		req.Header.Set("If-None-Match", etag)
	}

	res, err := k.httpClient.Do(req)
	if err != nil {
		hmetrics.ObserveKeyFetch("error")
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "key set fetch", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotModified && prev != nil {
		hmetrics.ObserveKeyFetch("not_modified")
		k.commit(prev, res)
		return prev, nil
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		hmetrics.ObserveKeyFetch("error")
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "key set fetch",
			fmt.Errorf("%s: %s", k.url, res.Status))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		hmetrics.ObserveKeyFetch("error")
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "key set read", err)
	}
	set, err := ParseKeySet(body)
	if err != nil {
		hmetrics.ObserveKeyFetch("malformed")
		return nil, err
	}
	hmetrics.ObserveKeyFetch("ok")
	k.commit(set, res)
	return set, nil
}

func (k *RemoteKeySet) commit(set KeySet, res *http.Response) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.set = set
	if et := res.Header.Get("ETag"); et != "" {
		k.etag = et
	}
	now := k.now()
	k.lastFetch = now
	ttl := k.cacheTTL
	if ttl > 0 {
		if s, ok := maxAge(res.Header.Get("Cache-Control")); ok {
			ttl = s
		}
	}
	k.expires = now.Add(ttl)
}

func maxAge(cc string) (time.Duration, bool) {
	if cc == "" {
		return 0, false
	}
	for _, p := range strings.Split(cc, ",") {
		p = strings.TrimSpace(strings.ToLower(p))
		if strings.HasPrefix(p, "max-age=") {
			s, err := strconv.Atoi(strings.TrimPrefix(p, "max-age="))
			if err == nil && time.Duration(s)*time.Second >= minRefetchInterval {
				return time.Duration(s) * time.Second, true
			}
		}
	}
	return 0, false
}

// ParseKeySet decodes a JWKS document into a KeySet. Encryption keys are
// skipped; entries without a kid or with unusable key material fail the
// whole document.
func ParseKeySet(body []byte) (KeySet, error) {
	var doc struct {
		Keys json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperr.Wrap(apperr.KindMalformedKeySet, "key set is not JSON", err)
	}
	if len(doc.Keys) == 0 || string(doc.Keys) == "null" {
		return nil, apperr.New(apperr.KindMalformedKeySet, "key set has no keys member")
	}

	parsed, err := jwk.Parse(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindMalformedKeySet, "key set parse", err)
	}

	out := make(KeySet, parsed.Len())
	for i := 0; i < parsed.Len(); i++ {
		key, ok := parsed.Key(i)
		if !ok {
			continue
		}
		kid, ok := key.KeyID()
		if !ok || kid == "" {
			return nil, apperr.New(apperr.KindMalformedKeySet, "key without kid")
		}
		use, _ := key.KeyUsage()
		if use == "enc" {
			continue
		}
		var alg string
		if a, ok := key.Algorithm(); ok {
			alg = a.String()
		}
		var raw any
		if err := jwk.Export(key, &raw); err != nil {
			return nil, apperr.Wrap(apperr.KindMalformedKeySet, "key "+kid, err)
		}
		out[kid] = SigningKey{
			KeyID:     kid,
			Algorithm: alg,
			KeyType:   key.KeyType().String(),
			Use:       use,
			Key:       raw,
		}
	}
	return out, nil
}
