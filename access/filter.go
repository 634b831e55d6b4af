// api/access/filter.go
package access

import (
	"encoding/json"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	health_errors "github.com/chittoorhealth/api/errors"
	"github.com/chittoorhealth/api/model"
)

// ScopeKind discriminates the three shapes a data scope can take. Exactly one
// is produced per identity; there is no partial application.
type ScopeKind int

const (
	// ScopeAll matches every record (admin).
	ScopeAll ScopeKind = iota
	// ScopeMandal matches records in a single mandal (mandal officer).
	ScopeMandal
	// ScopePairs matches an explicit list of (mandal, secretariat) pairs
	// (field agent).
	ScopePairs
	// ScopeNone matches nothing. Produced when an officer has no mandal or an
	// agent's assignment list is malformed or empty.
	ScopeNone
)

// Scope is the data-scoping predicate applied to every bulk read of resident
// data. Build one with BuildScope; zero value is ScopeAll and must not be used
// for untrusted identities.
type Scope struct {
	Kind   ScopeKind
	Mandal string
	Pairs  []model.SecretariatAssignment
}

// BuildScope translates an identity into its scope. Every endpoint that reads
// resident-level data must run its query through the returned scope; there is
// no secondary authorization check downstream.
//
// Malformed or empty assignment lists fail closed: the returned scope matches
// nothing and the error is ErrMalformedAssignment so callers can surface it
// distinctly from an authorization failure.
func BuildScope(identity model.Identity) (Scope, error) {
	switch identity.Role {
	case model.RoleAdmin:
		return Scope{Kind: ScopeAll}, nil
	case model.RoleMandalOfficer:
		if identity.Mandal == "" {
			return Scope{Kind: ScopeNone}, nil
		}
		return Scope{Kind: ScopeMandal, Mandal: identity.Mandal}, nil
	case model.RoleFieldAgent:
		pairs, err := parseAssignments(identity.AssignedSecretariats)
		if err != nil {
			return Scope{Kind: ScopeNone}, err
		}
		return Scope{Kind: ScopePairs, Pairs: pairs}, nil
	default:
		return Scope{Kind: ScopeNone}, health_errors.ErrInvalidRole
	}
}

// parseAssignments validates and decodes the serialized assignment list. The
// historical "Mandal -> Secretariat" string encoding is not reinterpreted
// here; anything that is not well-formed JSON pairs is malformed.
func parseAssignments(raw string) ([]model.SecretariatAssignment, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, health_errors.ErrMalformedAssignment
	}
	var pairs []model.SecretariatAssignment
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, health_errors.ErrMalformedAssignment
	}
	if len(pairs) == 0 {
		return nil, health_errors.ErrMalformedAssignment
	}
	for _, p := range pairs {
		if p.Mandal == "" || p.Secretariat == "" {
			return nil, health_errors.ErrMalformedAssignment
		}
	}
	return pairs, nil
}

// Matches evaluates the scope against one record's partition in memory.
func (s Scope) Matches(mandal, secretariat string) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeMandal:
		return mandal == s.Mandal
	case ScopePairs:
		for _, p := range s.Pairs {
			if p.Mandal == mandal && p.Secretariat == secretariat {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ToSql renders the scope as a squirrel predicate over the given column
// names, so DAOs can attach it to any resident query with Where(scope).
func (s Scope) ToSql() (string, []interface{}, error) {
	return s.sqlizer().ToSql()
}

func (s Scope) sqlizer() sq.Sqlizer {
	switch s.Kind {
	case ScopeAll:
		// Neutral predicate so the scope composes with other conditions.
		return sq.Expr("1=1")
	case ScopeMandal:
		return sq.Eq{"mandal": s.Mandal}
	case ScopePairs:
		or := make(sq.Or, 0, len(s.Pairs))
		for _, p := range s.Pairs {
			or = append(or, sq.Eq{"mandal": p.Mandal, "secretariat": p.Secretariat})
		}
		return or
	default:
		return sq.Expr("1=0")
	}
}

// CacheKey renders the scope as a stable string for use as a cache key
// qualifier, so aggregates computed under different scopes never collide.
func (s Scope) CacheKey() string {
	switch s.Kind {
	case ScopeAll:
		return "all"
	case ScopeMandal:
		return "mandal=" + s.Mandal
	case ScopePairs:
		parts := make([]string, 0, len(s.Pairs))
		for _, p := range s.Pairs {
			parts = append(parts, p.Mandal+"/"+p.Secretariat)
		}
		sort.Strings(parts)
		return "pairs=" + strings.Join(parts, ",")
	default:
		return "none"
	}
}

// AccessibleSecretariats returns the secretariat names a field agent may see,
// deduplicated and in stable sorted order, optionally narrowed to one mandal.
// Admins and mandal officers get nil: their restriction is expressed by the
// scope, not an explicit list.
func AccessibleSecretariats(identity model.Identity, mandalFilter string) ([]string, error) {
	if identity.Role != model.RoleFieldAgent {
		return nil, nil
	}
	pairs, err := parseAssignments(identity.AssignedSecretariats)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(pairs))
	var names []string
	for _, p := range pairs {
		if mandalFilter != "" && p.Mandal != mandalFilter {
			continue
		}
		if _, ok := seen[p.Secretariat]; ok {
			continue
		}
		seen[p.Secretariat] = struct{}{}
		names = append(names, p.Secretariat)
	}
	sort.Strings(names)
	return names, nil
}
