package user

type Permission string

const (
	// Payroll
	PermissionPayrollPrepare Permission = "payroll.prepare"
	PermissionPayrollApprove Permission = "payroll.approve"
	PermissionPayrollPay     Permission = "payroll.pay"
	PermissionPayrollViewAll Permission = "payroll.view_all"
	PermissionPayslipViewOwn Permission = "payroll.payslip_view_own"

	// Attendance
	PermissionAttendanceViewOwn  Permission = "attendance.view_own"
	PermissionAttendanceCreate   Permission = "attendance.create"
	PermissionAttendanceViewAll  Permission = "attendance.view_all"
	PermissionAttendanceCloseDay Permission = "attendance.close_day"

	// Leave
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"
)

var selfService = []Permission{
	PermissionPayslipViewOwn,
	PermissionAttendanceViewOwn,
	PermissionAttendanceCreate,
	PermissionLeaveViewOwn,
	PermissionLeaveCreate,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: append([]Permission{
		PermissionPayrollPrepare,
		PermissionPayrollApprove,
		PermissionPayrollPay,
		PermissionPayrollViewAll,
		PermissionAttendanceViewAll,
		PermissionAttendanceCloseDay,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
	}, selfService...),
	RoleManager: append([]Permission{
		PermissionPayrollPrepare,
		PermissionPayrollApprove,
		PermissionPayrollViewAll,
		PermissionAttendanceViewAll,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
	}, selfService...),
	RoleEmployee: selfService,
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
