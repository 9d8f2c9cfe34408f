// Package principal validates inbound authenticated-principal claims into a
// trusted AuthPrincipal. Nothing downstream of this package constructs a
// principal from raw input; the auth middleware calls Validate once per
// request and everything else reads the result from context.
package principal

import (
	"sort"

	"github.com/google/uuid"

	id "scouthub/pkg/domain"
	dErrors "scouthub/pkg/domain-errors"
)

// AuthPrincipal is the trusted representation of "who is making this
// request". Constructed only by Validate; immutable and request-scoped.
type AuthPrincipal struct {
	UserID   id.UserID
	Role     id.Role
	Email    string
	Username string
}

// IsStaff reports whether the principal may perform reviewer-only operations.
func (p *AuthPrincipal) IsStaff() bool {
	return p.Role.IsHigherThanUser()
}

// Claim keys the validator recognizes. Anything else in the payload is an
// unexpected top-level shape and is rejected.
const (
	claimSubject  = "sub"
	claimRole     = "role"
	claimEmail    = "email"
	claimUsername = "preferred_username"
)

var knownClaims = map[string]bool{
	claimSubject:  true,
	claimRole:     true,
	claimEmail:    true,
	claimUsername: true,
}

// Validate checks an untyped claim payload against the strict principal
// shape and returns an immutable AuthPrincipal.
//
// The failure is a single AUTH_PRINCIPAL_INVALID error whose field report
// enumerates every violation, not just the first. On success the role is
// guaranteed to be one of the closed role set, so rank comparisons never see
// an unknown role.
func Validate(raw map[string]any) (*AuthPrincipal, error) {
	report := make(map[string][]string)

	userID := validateSubject(raw, report)
	role := validateRole(raw, report)
	email := optionalString(raw, claimEmail, report)
	username := optionalString(raw, claimUsername, report)

	for _, key := range sortedKeys(raw) {
		if !knownClaims[key] {
			report[key] = append(report[key], "unexpected claim")
		}
	}

	if len(report) > 0 {
		return nil, dErrors.New(dErrors.CodeAuthPrincipalInvalid, "principal payload failed validation").
			WithFields(report)
	}

	return &AuthPrincipal{
		UserID:   userID,
		Role:     role,
		Email:    email,
		Username: username,
	}, nil
}

func validateSubject(raw map[string]any, report map[string][]string) id.UserID {
	value, ok := raw[claimSubject]
	if !ok {
		report[claimSubject] = append(report[claimSubject], "sub is required")
		return id.UserID{}
	}
	s, ok := value.(string)
	if !ok {
		report[claimSubject] = append(report[claimSubject], "sub must be a string")
		return id.UserID{}
	}
	parsed, err := uuid.Parse(s)
	if err != nil || parsed == uuid.Nil {
		report[claimSubject] = append(report[claimSubject], "sub must be a valid non-nil UUID")
		return id.UserID{}
	}
	return id.UserID(parsed)
}

func validateRole(raw map[string]any, report map[string][]string) id.Role {
	value, ok := raw[claimRole]
	if !ok {
		report[claimRole] = append(report[claimRole], "role is required")
		return ""
	}
	s, ok := value.(string)
	if !ok {
		report[claimRole] = append(report[claimRole], "role must be a string")
		return ""
	}
	role, err := id.ParseRole(s)
	if err != nil {
		report[claimRole] = append(report[claimRole], "role is not a recognized role")
		return ""
	}
	return role
}

func optionalString(raw map[string]any, key string, report map[string][]string) string {
	value, ok := raw[key]
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		report[key] = append(report[key], key+" must be a string")
		return ""
	}
	return s
}

// sortedKeys keeps unexpected-claim violations in a deterministic order so
// the same invalid payload always produces the same report.
func sortedKeys(raw map[string]any) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
