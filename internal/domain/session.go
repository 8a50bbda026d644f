package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ConnectionDescriptor identifies a database endpoint and the identity used to
// reach it. Values are copied, never mutated in place.
type ConnectionDescriptor struct {
	Host        string `json:"host"`
	Port        string `json:"port"`
	ServiceName string `json:"service_name"`
	User        string `json:"user"`
	Password    string `json:"password"`
}

func (d ConnectionDescriptor) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Host) == "" {
		missing = append(missing, "host")
	}
	if strings.TrimSpace(d.ServiceName) == "" {
		missing = append(missing, "service name")
	}
	if strings.TrimSpace(d.User) == "" {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		return fmt.Errorf("connection descriptor missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// WithCredentials returns a copy of d authenticating as user/password.
func (d ConnectionDescriptor) WithCredentials(user, password string) ConnectionDescriptor {
	d.User, d.Password = user, password
	return d
}

// Identity is the case-normalized user name.
func (d ConnectionDescriptor) Identity() string {
	return NormalizeIdentity(d.User)
}

func (d ConnectionDescriptor) String() string {
	return fmt.Sprintf("%s@%s:%s/%s", d.User, d.Host, d.Port, d.ServiceName)
}

func NormalizeIdentity(user string) string {
	return strings.ToUpper(strings.TrimSpace(user))
}

// SchemaCapability describes what the current identity can reach.
type SchemaCapability struct {
	HasExpectedTables   bool     `json:"has_expected_tables"`
	HasAnyTables        bool     `json:"has_any_tables"`
	ResolvedNamespace   string   `json:"resolved_namespace,omitempty"`
	DiagnosticMessage   string   `json:"diagnostic_message,omitempty"`
	AvailableNamespaces []string `json:"available_namespaces,omitempty"`
}

// SessionStatus is a read-only snapshot of the live session.
type SessionStatus struct {
	Connected bool   `json:"connected"`
	Identity  string `json:"identity,omitempty"`
	Elevated  bool   `json:"elevated"`
	Namespace string `json:"namespace,omitempty"`
	Dialect   string `json:"dialect"`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#]{0,127}$`)

// Ident is an SQL identifier that passed the allow-list check and may be
// interpolated into statement text after dialect quoting.
type Ident struct{ name string }

func ParseIdent(s string) (Ident, error) {
	if !identRe.MatchString(s) {
		return Ident{}, fmt.Errorf("invalid identifier %q", s)
	}
	return Ident{name: s}, nil
}

// MustIdent is for compile-time constant names.
func MustIdent(s string) Ident {
	id, err := ParseIdent(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (i Ident) String() string { return i.name }
func (i Ident) IsZero() bool   { return i.name == "" }

// EqualFold compares identifiers the way catalogs usually do.
func (i Ident) EqualFold(s string) bool { return strings.EqualFold(i.name, s) }

// Namespace is where the expected tables were found. Own marks the identity's
// default namespace, which dialects may render without a qualifier.
type Namespace struct {
	Name Ident
	Own  bool
}

func (n Namespace) String() string { return n.Name.String() }

type NamespaceTables struct {
	Namespace string   `json:"namespace"`
	Tables    []string `json:"tables"`
}

type TableData struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// OwnNamespace names the identity's default namespace. Own namespaces are never
// quoted into statements, so the identity need not pass the identifier check.
func OwnNamespace(identity string) Namespace {
	return Namespace{Name: Ident{name: identity}, Own: true}
}
