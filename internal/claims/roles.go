// Package claims extracts authorization claims from compact signed tokens
// without verifying them.  The roles it returns are advisory and only drive
// route decisions on the terminal; the remote service re-authorizes every
// privileged call on its own.
package claims

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// roleClaim is the payload claim carrying the operator role.
const roleClaim = "rol"

// segmentParser only decodes segments.  It is never asked to verify a
// signature.
var segmentParser = jwt.NewParser()

// RoleSet is a set of role names.  The zero value is an empty set.
type RoleSet map[string]struct{}

// NewRoleSet builds a set from the given names, ignoring empty strings.
func NewRoleSet(roles ...string) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		if r != "" {
			s[r] = struct{}{}
		}
	}
	return s
}

// Has reports whether role is in the set.
func (s RoleSet) Has(role string) bool {
	_, ok := s[role]
	return ok
}

// Intersects reports whether s and other share at least one role.
func (s RoleSet) Intersects(other RoleSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for r := range small {
		if large.Has(r) {
			return true
		}
	}
	return false
}

// Sorted returns the roles in lexical order.
func (s RoleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Roles returns the role set carried by token.  A token that does not have
// exactly three dot separated segments, whose payload is not base64url JSON
// or that has no non-empty "rol" claim yields an empty set.  Roles never
// fails and never panics.
func Roles(token string) RoleSet {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return RoleSet{}
	}
	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return RoleSet{}
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return RoleSet{}
	}
	rol, ok := payload[roleClaim].(string)
	if !ok || rol == "" {
		return RoleSet{}
	}
	return RoleSet{rol: {}}
}
