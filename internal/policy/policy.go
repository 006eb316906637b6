// Package policy decides who may touch which resource.
package policy

import (
	"slices"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/models"
)

// Principal is the authenticated caller.
type Principal struct {
	ID   string
	Name string
	Role string
}

// IsAdmin reports whether p holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// Role floors applied to routes by the Authorize middleware.
var (
	Publishers = []string{models.RolePublisher, models.RoleAdmin}
	Reviewers  = []string{models.RoleUser, models.RoleAdmin}
	Admins     = []string{models.RoleAdmin}
)

// Allows reports whether role is among roles.
func Allows(role string, roles ...string) bool {
	return slices.Contains(roles, role)
}

// CanModify returns a 403 unless caller owns the resource or is an admin.
// action and resource name the attempted operation in the error, for
// example "update" and "bootcamp".
func CanModify(owner string, caller Principal, action, resource, resourceID string) error {
	if owner == caller.ID || caller.IsAdmin() {
		return nil
	}
	return apperr.Forbidden("User %s is not authorized to %s %s %s", caller.ID, action, resource, resourceID)
}
