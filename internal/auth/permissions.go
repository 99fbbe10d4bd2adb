package auth

// Permission represents a named capability.
type Permission string

// Permission constants.
const (
	PermTreeRead     Permission = "tree:read"
	PermJournalRead  Permission = "journal:read"
	PermDeviceManage Permission = "device:manage"
	PermMachineReset Permission = "machine:reset"
	PermEventsStream Permission = "events:stream"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermTreeRead,
		PermJournalRead,
		PermEventsStream,
	},
	RoleOperator: {
		PermTreeRead,
		PermJournalRead,
		PermEventsStream,
		PermDeviceManage,
	},
	RoleAdmin: {
		PermTreeRead,
		PermJournalRead,
		PermEventsStream,
		PermDeviceManage,
		PermMachineReset,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}
