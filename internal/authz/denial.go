package authz

import "errors"

type Kind int

const (
	Unauthenticated Kind = iota + 1
	Forbidden
	Rejected
)

// Denial is returned by every rule that refuses a request.
type Denial struct {
	Kind    Kind
	Message string
}

func (d *Denial) Error() string { return d.Message }

func deny(kind Kind, msg string) error {
	return &Denial{Kind: kind, Message: msg}
}

// AsDenial unwraps err into a Denial when it is one.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

const (
	MsgAuthRequired     = "Authentication required"
	MsgInsufficient     = "Insufficient permissions"
	MsgHighPriority     = "Only managers, admins, and super admins can assign high priority tasks"
	MsgViewTask         = "Access denied: You can only view tasks assigned to you"
	MsgUpdateTask       = "Access denied: You can only update tasks assigned to you"
	MsgViewProfile      = "Access denied: You can only view your own profile"
	MsgUpdateProfile    = "Access denied: You can only update your own profile"
	MsgChangeRole       = "Access denied: You cannot change your role"
	MsgRoleAboveOwn     = "Access denied: You cannot assign a role above your own"
	MsgTargetOutranks   = "Access denied: You cannot modify a user with a higher role"
	MsgSelfDelete       = "Cannot delete your own account"
	MsgSelfRegistration = "Self-registration is only allowed for employee role"
)
