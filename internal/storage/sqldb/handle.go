package sqldb

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"hotel_rating/internal/domain"
)

// Handle is one checked-out connection plus the session state observed when it
// was acquired. It must not outlive the Acquire callback.
type Handle struct {
	Conn      *sqlx.Conn
	Dialect   Dialect
	Identity  string
	Namespace *domain.Namespace
	Gen       uint64
}

// Render expands {table} placeholders against the resolved namespace and
// rebinds "?" placeholders for the driver.
func (h *Handle) Render(tmpl string) (string, error) {
	if h.Namespace == nil {
		return "", domain.E(domain.KindSchemaNotFound, "render", domain.ErrSchemaNotFound)
	}
	return h.RenderIn(*h.Namespace, tmpl)
}

// RenderIn is Render with an explicit namespace.
func (h *Handle) RenderIn(ns domain.Namespace, tmpl string) (string, error) {
	pairs := make([]string, 0, 2*len(domain.SchemaTables))
	for _, t := range domain.SchemaTables {
		pairs = append(pairs, "{"+t.String()+"}", Qualify(h.Dialect, ns, t))
	}
	q := strings.NewReplacer(pairs...).Replace(tmpl)
	if i := strings.IndexByte(q, '{'); i >= 0 {
		if j := strings.IndexByte(q[i:], '}'); j > 0 {
			return "", fmt.Errorf("unknown placeholder %s", q[i:i+j+1])
		}
	}
	return h.Conn.Rebind(q), nil
}
