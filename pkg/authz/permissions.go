// Package authz holds the static role capability table used by the API
// middleware. There are no dynamic grants and no per-resource scoping.
package authz

import "github.com/merchlane/merchportal-backend/pkg/enums"

type Permission string

const (
	PermManageUsers         Permission = "users:manage"
	PermViewAdminStats      Permission = "admin:stats"
	PermManageProducts      Permission = "products:manage"
	PermCreateGroupOrder    Permission = "orders:create"
	PermFinalizeGroupOrder  Permission = "orders:finalize"
	PermCancelGroupOrder    Permission = "orders:cancel"
	PermInviteParticipant   Permission = "orders:invite"
	PermViewAllOrders       Permission = "orders:view_all"
	PermViewAllDistribution Permission = "distributions:view_all"
	PermScheduleDelivery    Permission = "distributions:schedule"
	PermConfirmDelivery     Permission = "distributions:confirm"
	PermModerateReviews     Permission = "reviews:moderate"
)

// ADMIN is intentionally absent: HasPermission short-circuits for it.
var rolePermissions = map[enums.UserRole]map[Permission]struct{}{
	enums.UserRoleManager: permSet(
		PermViewAdminStats,
		PermManageProducts,
		PermViewAllOrders,
		PermViewAllDistribution,
		PermModerateReviews,
	),
	enums.UserRoleDeptHead: permSet(
		PermCreateGroupOrder,
		PermFinalizeGroupOrder,
		PermCancelGroupOrder,
		PermInviteParticipant,
	),
	enums.UserRoleDistributor: permSet(
		PermViewAllDistribution,
		PermScheduleDelivery,
		PermConfirmDelivery,
	),
	enums.UserRoleCustomer: {},
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether the role grants the permission.
func HasPermission(role enums.UserRole, perm Permission) bool {
	if role == enums.UserRoleAdmin {
		return true
	}
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, granted := set[perm]
	return granted
}

// HasAnyPermission reports whether the role grants at least one permission.
func HasAnyPermission(role enums.UserRole, perms ...Permission) bool {
	for _, perm := range perms {
		if HasPermission(role, perm) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role grants every permission.
func HasAllPermissions(role enums.UserRole, perms ...Permission) bool {
	for _, perm := range perms {
		if !HasPermission(role, perm) {
			return false
		}
	}
	return true
}
