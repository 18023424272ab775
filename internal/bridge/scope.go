/*
Package bridge carries server-side captured entries across the process
boundary to the client.

On the server every request gets its own Store from a pool, cleared before use,
with a console interceptor tagged "server". The rendered page embeds the
request's entries in a script element. On the client the page is fetched, the
payload is extracted into a Slot that can be consumed once, and the decoded
entries are merged into the client store.
*/
package bridge

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/agbruneau/hookorder/internal/console"
	"github.com/agbruneau/hookorder/internal/logstore"
	"github.com/agbruneau/hookorder/pkg/models"
	"github.com/google/uuid"
)

// RequestIDHeader is set on every response served through Middleware.
const RequestIDHeader = "X-Request-Id"

type scopeKey struct{}

// Scopes hands out request-scoped server stores.
type Scopes struct {
	pool     sync.Pool
	original console.Console
	opts     []console.Option
}

// NewScopes returns a pool whose interceptors forward to original.
func NewScopes(original console.Console, opts ...console.Option) *Scopes {
	s := &Scopes{original: original, opts: opts}
	s.pool.New = func() any { return logstore.New() }
	return s
}

// Scope is the capture state of one request.
type Scope struct {
	RequestID string
	Store     *logstore.Store

	host  *console.Host
	owner *Scopes
	ended atomic.Bool
}

// Begin takes a store from the pool, clears it, and installs a server
// interceptor on a fresh host. The returned context carries the scope.
func (s *Scopes) Begin(ctx context.Context) (*Scope, context.Context) {
	store := s.pool.Get().(*logstore.Store)
	store.Clear()
	store.SetPaused(false)

	host := console.NewHost(s.original, s.opts...)
	host.Install(store, models.SourceServer)

	scope := &Scope{
		RequestID: uuid.NewString(),
		Store:     store,
		host:      host,
		owner:     s,
	}
	return scope, context.WithValue(ctx, scopeKey{}, scope)
}

// Console returns the intercepting console of this request.
func (sc *Scope) Console() console.Console {
	return sc.host
}

// End uninstalls interception and returns the store to the pool. The store
// must not be used afterwards. Calling End twice is a no-op.
func (sc *Scope) End() {
	if !sc.ended.CompareAndSwap(false, true) {
		return
	}
	sc.host.Uninstall()
	sc.owner.pool.Put(sc.Store)
}

// FromContext returns the scope stored by Begin.
func FromContext(ctx context.Context) (*Scope, bool) {
	sc, ok := ctx.Value(scopeKey{}).(*Scope)
	return sc, ok && sc != nil
}

// ConsoleFrom returns the request console, or orElse outside a request.
func ConsoleFrom(ctx context.Context, orElse console.Console) console.Console {
	if sc, ok := FromContext(ctx); ok {
		return sc.Console()
	}
	if orElse == nil {
		return console.Discard
	}
	return orElse
}

// Middleware wraps every request in Begin/End.
func Middleware(scopes *Scopes, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ctx := scopes.Begin(r.Context())
		defer scope.End()
		w.Header().Set(RequestIDHeader, scope.RequestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
