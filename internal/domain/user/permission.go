package user

type Permission string

const (
	// Attendance
	PermissionAttendancePunch    Permission = "attendance.punch"
	PermissionAttendanceViewOwn  Permission = "attendance.view_own"
	PermissionAttendanceViewAll  Permission = "attendance.view_all"
	PermissionAttendanceJustify  Permission = "attendance.justify"
	PermissionAttendanceResolve  Permission = "attendance.resolve"
	PermissionAttendanceOverride Permission = "attendance.override"
	PermissionAttendanceCleanup  Permission = "attendance.cleanup"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// Locations
	PermissionLocationView Permission = "location.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionAttendancePunch,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceJustify,
		PermissionAttendanceResolve,
		PermissionAttendanceOverride,
		PermissionAttendanceCleanup,
		PermissionReportsView,
		PermissionLocationView,
	},
	RoleManager: {
		PermissionAttendancePunch,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceJustify,
		PermissionAttendanceResolve,
		PermissionAttendanceOverride,
		PermissionAttendanceCleanup,
		PermissionReportsView,
		PermissionLocationView,
	},
	RoleEmployee: {
		PermissionAttendancePunch,
		PermissionAttendanceViewOwn,
		PermissionAttendanceJustify,
		PermissionLocationView,
	},
	RolePending: {
		// Pending role has no permissions
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
