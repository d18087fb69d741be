package services

import (
	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/types"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Authenticated reports whether the actor identifies a user.
func (a Actor) Authenticated() bool {
	return a.ID != 0
}

// CanManage reports whether the actor may change a record owned by ownerID.
func (a Actor) CanManage(ownerID uint) bool {
	return a.IsAdmin() || (a.Authenticated() && a.ID == ownerID)
}

// OwnerOrAdmin admits the property's owner and administrators. action names
// the operation in the refusal, e.g. "update this property".
func OwnerOrAdmin(actor Actor, action string) repository.Guard {
	return func(p *models.Property) error {
		if actor.CanManage(p.UserID) {
			return nil
		}
		return types.Forbidden("You are not authorized to " + action)
	}
}

func requireUser(actor Actor) error {
	if !actor.Authenticated() {
		return types.Unauthorized("Authentication required")
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return types.Forbidden("Administrator access required")
	}
	return nil
}
