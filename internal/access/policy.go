// Package access decides whether a caller may read or modify a project.
package access

import (
	"projecthub/models"

	"github.com/google/uuid"
)

// Caller is the identity behind a request. The zero value is anonymous.
type Caller struct {
	UserID        uuid.UUID
	Authenticated bool
}

// Anonymous returns a caller with no session.
func Anonymous() Caller {
	return Caller{}
}

// User returns an authenticated caller.
func User(id uuid.UUID) Caller {
	return Caller{UserID: id, Authenticated: id != uuid.Nil}
}

// Owns reports whether the caller is the project's owner.
func (c Caller) Owns(p *models.Project) bool {
	return c.Authenticated && p != nil && c.UserID == p.OwnerID
}

// Effect is the outcome of a policy check.
type Effect int

const (
	Deny Effect = iota
	Allow
)

func (e Effect) String() string {
	if e == Allow {
		return "allow"
	}
	return "deny"
}

// Decision is a policy outcome with the rule that produced it.
type Decision struct {
	Effect Effect
	Reason string
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d.Effect == Allow
}

const (
	ReasonPublic        = "project is public"
	ReasonOwner         = "caller owns the project"
	ReasonAnonymous     = "private project requires a session"
	ReasonNotOwner      = "private project belongs to another user"
	ReasonNotWritable   = "only the owner may modify the project"
	ReasonMissing       = "project does not exist"
	ReasonBadVisibility = "project has unknown visibility"
)

// CanRead decides read access:
//
//	public  + anyone    -> allow
//	private + owner     -> allow
//	private + non-owner -> deny
//	private + anonymous -> deny
//
// Unknown visibilities are denied.
func CanRead(caller Caller, p *models.Project) Decision {
	if p == nil {
		return Decision{Effect: Deny, Reason: ReasonMissing}
	}

	switch p.Visibility {
	case models.VisibilityPublic:
		return Decision{Effect: Allow, Reason: ReasonPublic}
	case models.VisibilityPrivate:
		switch {
		case !caller.Authenticated:
			return Decision{Effect: Deny, Reason: ReasonAnonymous}
		case caller.Owns(p):
			return Decision{Effect: Allow, Reason: ReasonOwner}
		default:
			return Decision{Effect: Deny, Reason: ReasonNotOwner}
		}
	default:
		return Decision{Effect: Deny, Reason: ReasonBadVisibility}
	}
}

// CanWrite allows only the owner to modify or delete a project.
func CanWrite(caller Caller, p *models.Project) Decision {
	if p == nil {
		return Decision{Effect: Deny, Reason: ReasonMissing}
	}
	if caller.Owns(p) {
		return Decision{Effect: Allow, Reason: ReasonOwner}
	}
	return Decision{Effect: Deny, Reason: ReasonNotWritable}
}
