package authz

import "strings"

// HighPriority is the only priority value guarded by role.
const HighPriority = "high"

// RequireAnyOf admits the caller when its role is in allowed.
func RequireAnyOf(id *Identity, allowed RoleSet) error {
	if id == nil || id.UserID == "" {
		return deny(Unauthenticated, MsgAuthRequired)
	}
	if !allowed.Contains(id.Role) {
		return deny(Forbidden, MsgInsufficient)
	}
	return nil
}

// OwnerOrRoleIn is the single ownership predicate: the caller owns the
// resource or holds one of the allowed roles.
func OwnerOrRoleIn(id Identity, ownerID string, allowed RoleSet) bool {
	return allowed.Contains(id.Role) || id.Is(ownerID)
}

// CanAssignPriority guards priority "high". A nil or other priority passes.
func CanAssignPriority(id *Identity, priority *string) error {
	if id == nil || id.UserID == "" {
		return deny(Unauthenticated, MsgAuthRequired)
	}
	if priority == nil || *priority != HighPriority {
		return nil
	}
	if !ManagerOrAbove.Contains(id.Role) {
		return deny(Forbidden, MsgHighPriority)
	}
	return nil
}

// TaskScope returns the assignee filter lists must apply for the caller, or
// nil when the caller sees every task.
func TaskScope(id Identity) *string {
	if ManagerOrAbove.Contains(id.Role) {
		return nil
	}
	uid := id.UserID
	return &uid
}

func CanViewTask(id Identity, assignedTo string) error {
	if !OwnerOrRoleIn(id, assignedTo, ManagerOrAbove) {
		return deny(Forbidden, MsgViewTask)
	}
	return nil
}

func CanUpdateTask(id Identity, assignedTo string) error {
	if !OwnerOrRoleIn(id, assignedTo, ManagerOrAbove) {
		return deny(Forbidden, MsgUpdateTask)
	}
	return nil
}

func CanViewUser(id Identity, userID string) error {
	if !OwnerOrRoleIn(id, userID, ManagerOrAbove) {
		return deny(Forbidden, MsgViewProfile)
	}
	return nil
}

func CanUpdateUser(id Identity, userID string) error {
	if !OwnerOrRoleIn(id, userID, ManagerOrAbove) {
		return deny(Forbidden, MsgUpdateProfile)
	}
	return nil
}

// CanChangeRole refuses any role change submitted by a caller below Manager.
func CanChangeRole(id Identity, roleID *string) error {
	if roleID == nil || *roleID == "" {
		return nil
	}
	if !ManagerOrAbove.Contains(id.Role) {
		return deny(Forbidden, MsgChangeRole)
	}
	return nil
}

// CanAssignRole refuses handing out a role that outranks the caller's own.
func CanAssignRole(id Identity, target Role) error {
	if !id.Role.Dominates(target) {
		return deny(Forbidden, MsgRoleAboveOwn)
	}
	return nil
}

// CanModifyUser refuses edits to another user whose current role outranks the
// caller. Unknown roles rank lowest.
func CanModifyUser(id Identity, targetID string, current Role) error {
	if id.Is(targetID) || !current.Valid() {
		return nil
	}
	if !id.Role.Dominates(current) {
		return deny(Forbidden, MsgTargetOutranks)
	}
	return nil
}

func CanDeleteUser(id Identity, userID string) error {
	if id.Is(userID) {
		return deny(Rejected, MsgSelfDelete)
	}
	return nil
}

// IsSelfRegistrationRole reports whether a role name may be chosen at sign-up.
func IsSelfRegistrationRole(name string) bool {
	return strings.EqualFold(name, string(Employee))
}
