package utils

import "community-bot/model"

// Permission levels
const (
	AdminPermission     = "admin"
	ModeratorPermission = "moderator"
	UserPermission      = "user"
)

// CheckPermission returns the highest permission level granted by roleIDs.
func CheckPermission(roleIDs []string, cfg *model.Config) string {
	if cfg.IsAdmin(roleIDs) {
		return AdminPermission
	}
	if cfg.IsModerator(roleIDs) {
		return ModeratorPermission
	}
	return UserPermission
}

// HasPermission reports whether roleIDs grant at least the required level.
func HasPermission(roleIDs []string, cfg *model.Config, required string) bool {
	return permissionRank(CheckPermission(roleIDs, cfg)) >= permissionRank(required)
}

func permissionRank(level string) int {
	switch level {
	case AdminPermission:
		return 2
	case ModeratorPermission:
		return 1
	default:
		return 0
	}
}
