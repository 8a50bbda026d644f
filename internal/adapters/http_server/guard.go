package httpserver

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
)

// operatorGuard holds the bearer token issued to the caller that elevated the
// session through this API. Elevation is process wide; the token is what ties
// it to one caller.
type operatorGuard struct {
	mu    sync.RWMutex
	token string
}

func (g *operatorGuard) issue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	tok := hex.EncodeToString(b)
	g.mu.Lock()
	g.token = tok
	g.mu.Unlock()
	return tok, nil
}

func (g *operatorGuard) revoke() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()
}

// holds reports whether r carries the current operator token.
func (g *operatorGuard) holds(r *http.Request) bool {
	scheme, tok, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return false
	}
	g.mu.RLock()
	want := g.token
	g.mu.RUnlock()
	return want != "" && subtle.ConstantTimeCompare([]byte(tok), []byte(want)) == 1
}
