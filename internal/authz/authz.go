// Package authz decides what a project member may do.
//
// Every action has a rule with two role sets: roles allowed outright, and
// roles allowed only when the acting user owns the subject (created the
// ticket, wrote the comment, uploaded the file).
package authz

import "errors"

// ErrPermissionDenied is returned when a role may not perform an action.
var ErrPermissionDenied = errors.New("you do not have permission to perform this action")

// ErrLastOwner is returned when a change would leave a project without an Owner.
var ErrLastOwner = errors.New("a project must keep at least one owner")

// Action names an operation that is gated by project role.
type Action int

const (
	ViewProject Action = iota
	EditProject
	ArchiveProject
	DeleteProject
	CreateDeliverable
	EditDeliverable
	DeleteDeliverable
	ReorderDeliverables
	CreateTicket
	EditTicket
	DeleteTicket
	AssignTicket
	ChangeTicketStatus
	ReorderTickets
	AddComment
	EditComment
	DeleteComment
	UploadFile
	DeleteFile
	ViewReports
	AddUser
	RemoveUser
	ChangeUserRole

	actionCount
)

var actionNames = [actionCount]string{
	ViewProject:         "view_project",
	EditProject:         "edit_project",
	ArchiveProject:      "archive_project",
	DeleteProject:       "delete_project",
	CreateDeliverable:   "create_deliverable",
	EditDeliverable:     "edit_deliverable",
	DeleteDeliverable:   "delete_deliverable",
	ReorderDeliverables: "reorder_deliverables",
	CreateTicket:        "create_ticket",
	EditTicket:          "edit_ticket",
	DeleteTicket:        "delete_ticket",
	AssignTicket:        "assign_ticket",
	ChangeTicketStatus:  "change_ticket_status",
	ReorderTickets:      "reorder_tickets",
	AddComment:          "add_comment",
	EditComment:         "edit_comment",
	DeleteComment:       "delete_comment",
	UploadFile:          "upload_file",
	DeleteFile:          "delete_file",
	ViewReports:         "view_reports",
	AddUser:             "add_user",
	RemoveUser:          "remove_user",
	ChangeUserRole:      "change_user_role",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// Actions returns every defined action.
func Actions() []Action {
	out := make([]Action, 0, actionCount)
	for a := Action(0); a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

type rule struct {
	any roleSet
	own roleSet
}

// rules is indexed by Action; the array length ties it to the enum.
var rules = [actionCount]rule{
	ViewProject:         {any: everyone},
	EditProject:         {any: managers},
	ArchiveProject:      {any: setOf(RoleOwner)},
	DeleteProject:       {any: setOf(RoleOwner)},
	CreateDeliverable:   {any: managers},
	EditDeliverable:     {any: managers},
	DeleteDeliverable:   {any: managers},
	ReorderDeliverables: {any: managers},
	CreateTicket:        {any: contributors},
	EditTicket:          {any: builders, own: setOf(RoleTester)},
	DeleteTicket:        {any: managers, own: setOf(RoleTester)},
	AssignTicket:        {any: builders},
	ChangeTicketStatus:  {any: contributors},
	ReorderTickets:      {any: setOf(RoleOwner, RoleProjectManager, RoleDeveloper, RoleDesigner)},
	AddComment:          {any: contributors},
	EditComment:         {own: contributors},
	DeleteComment:       {any: managers, own: contributors},
	UploadFile:          {any: contributors},
	DeleteFile:          {any: managers, own: contributors},
	ViewReports:         {any: setOf(RoleOwner, RoleProjectManager, RoleReviewer)},
	AddUser:             {any: managers},
	RemoveUser:          {any: managers},
	ChangeUserRole:      {any: managers},
}

// Subject carries the ownership facts some rules depend on.
// OwnerID is the creator/author/uploader of the target; zero when the
// action has no owned target.
type Subject struct {
	ActorID int64
	OwnerID int64
}

// Owns reports whether the actor created the subject.
func (s Subject) Owns() bool {
	return s.OwnerID != 0 && s.OwnerID == s.ActorID
}

// CanPerform applies the static table only.
func CanPerform(action Action, role Role) bool {
	if action < 0 || action >= actionCount {
		return false
	}
	return rules[action].any.has(role)
}

// Allowed applies the table plus the ownership overrides.
func Allowed(action Action, role Role, subject Subject) bool {
	if action < 0 || action >= actionCount {
		return false
	}
	r := rules[action]
	if r.any.has(role) {
		return true
	}
	return r.own.has(role) && subject.Owns()
}

// Check is Allowed returning ErrPermissionDenied.
func Check(action Action, role Role, subject Subject) error {
	if !Allowed(action, role, subject) {
		return ErrPermissionDenied
	}
	return nil
}

// CheckRoleChange validates a grant or revoke of a role. Only an Owner may
// grant or revoke the Owner role, and the last Owner may not be demoted.
func CheckRoleChange(actorRole, from, to Role, owners int) error {
	if !CanPerform(ChangeUserRole, actorRole) {
		return ErrPermissionDenied
	}
	if (from == RoleOwner || to == RoleOwner) && actorRole != RoleOwner {
		return ErrPermissionDenied
	}
	if from == RoleOwner && to != RoleOwner && owners <= 1 {
		return ErrLastOwner
	}
	return nil
}

// CheckGrant validates adding a new member with the given role.
func CheckGrant(actorRole, role Role) error {
	if !CanPerform(AddUser, actorRole) {
		return ErrPermissionDenied
	}
	if role == RoleOwner && actorRole != RoleOwner {
		return ErrPermissionDenied
	}
	return nil
}

// CheckRemoval validates removing a member. Members may always remove
// themselves, except the sole remaining Owner.
func CheckRemoval(actorID int64, actorRole Role, targetID int64, targetRole Role, owners int) error {
	self := actorID == targetID
	if !self && !CanPerform(RemoveUser, actorRole) {
		return ErrPermissionDenied
	}
	if targetRole == RoleOwner {
		if !self && actorRole != RoleOwner {
			return ErrPermissionDenied
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}
	return nil
}
