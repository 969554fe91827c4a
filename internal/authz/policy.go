package authz

// Action names a guarded operation. Every permission check in the service
// layer goes through the single table below so the whole authorization
// surface is auditable in one place.
type Action string

const (
	ActionApproveRecipe   Action = "recipe.approve"
	ActionDeclineRecipe   Action = "recipe.decline"
	ActionUpdateRecipe    Action = "recipe.update"
	ActionDeleteRecipe    Action = "recipe.delete"
	ActionToggleSignature Action = "recipe.signature_toggle"
	ActionUpdatePhoto     Action = "recipe.photo_update"
	ActionListUsers       Action = "user.list"
	ActionUpdateUserRole  Action = "user.role_update"
	ActionManageUser      Action = "user.manage"
	ActionDeleteUser      Action = "user.delete"
	ActionEditHomepage    Action = "homepage.update"
)

// rule describes who may perform an action. minRole is the lowest role that
// may ever perform it. When ownership is true, callers below ownerExempt must
// also own the target resource.
type rule struct {
	minRole     Role
	ownership   bool
	ownerExempt Role
}

var policy = map[Action]rule{
	ActionApproveRecipe: {minRole: RoleAdmin},
	ActionDeclineRecipe: {minRole: RoleAdmin},

	// Authors manage their own recipes; admins may moderate anyone's.
	ActionUpdateRecipe: {minRole: RoleUser, ownership: true, ownerExempt: RoleAdmin},
	ActionDeleteRecipe: {minRole: RoleUser, ownership: true, ownerExempt: RoleAdmin},

	// Signature and photo stay with the author; only super admins override.
	ActionToggleSignature: {minRole: RoleUser, ownership: true, ownerExempt: RoleSuperAdmin},
	ActionUpdatePhoto:     {minRole: RoleUser, ownership: true, ownerExempt: RoleSuperAdmin},

	ActionListUsers:      {minRole: RoleSuperAdmin},
	ActionUpdateUserRole: {minRole: RoleSuperAdmin},
	ActionManageUser:     {minRole: RoleSuperAdmin},
	ActionDeleteUser:     {minRole: RoleSuperAdmin},
	ActionEditHomepage:   {minRole: RoleSuperAdmin},
}

// Allowed evaluates the policy table for an authenticated identity.
// isOwner is only consulted for ownership-guarded actions.
func Allowed(id *Identity, action Action, isOwner bool) bool {
	if id == nil {
		return false
	}
	r, ok := policy[action]
	if !ok {
		return false
	}
	if !id.Role.AtLeast(r.minRole) {
		return false
	}
	if r.ownership && !id.Role.AtLeast(r.ownerExempt) && !isOwner {
		return false
	}
	return true
}
