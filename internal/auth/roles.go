package auth

import (
	"github.com/shankarium/plm/internal/models"
)

// RoleSet is the set of roles allowed through a route gate
type RoleSet []models.UserRole

// Allows reports whether role is a member of the set
func (s RoleSet) Allows(role models.UserRole) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// Route policies. Admin is a member of every set.
var (
	Authors    = RoleSet{models.RolePM, models.RoleAdmin}
	Intake     = RoleSet{models.RoleNPD, models.RoleAdmin}
	Finalizers = RoleSet{models.RolePMFinal, models.RoleAdmin}
	Viewers    = RoleSet{models.RolePM, models.RoleNPD, models.RolePMFinal, models.RoleSales, models.RoleAdmin}
	AdminOnly  = RoleSet{models.RoleAdmin}
)
