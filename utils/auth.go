package utils

import "moddingway/model"

// Permission levels
const (
	ModPermission      = "mod"
	VerifiedPermission = "verified"
	GuestPermission    = "guest"
)

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// CheckPermission returns the highest permission level the given role ids grant.
func CheckPermission(userRoleIDs []string, roles model.RoleConfig) string {
	if roles.Mod != "" && contains(userRoleIDs, roles.Mod) {
		return ModPermission
	}
	if roles.Verified != "" && contains(userRoleIDs, roles.Verified) {
		return VerifiedPermission
	}
	return GuestPermission
}

// IsMod reports whether the member holds the moderator role.
func IsMod(member *model.Member, roles model.RoleConfig) bool {
	return member != nil && CheckPermission(member.RoleIDs, roles) == ModPermission
}
