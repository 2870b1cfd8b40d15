package models

import "encoding/json"

// NotificationKind identifies an event a member can opt out of.
type NotificationKind string

const (
	NotifyTicketCreated       NotificationKind = "ticket_created"
	NotifyTicketAssigned      NotificationKind = "ticket_assigned"
	NotifyTicketStatusChanged NotificationKind = "ticket_status_changed"
	NotifyTicketUpdated       NotificationKind = "ticket_updated"
	NotifyCommentAdded        NotificationKind = "comment_added"
	NotifyDeliverableCreated  NotificationKind = "deliverable_created"
	NotifyFileUploaded        NotificationKind = "file_uploaded"
	NotifyMemberAdded         NotificationKind = "member_added"
)

// NotificationPreferences are per member, per project. Keys absent from the
// stored JSON keep their default, which is to notify.
type NotificationPreferences struct {
	TicketCreated       bool `json:"ticket_created"`
	TicketAssigned      bool `json:"ticket_assigned"`
	TicketStatusChanged bool `json:"ticket_status_changed"`
	TicketUpdated       bool `json:"ticket_updated"`
	CommentAdded        bool `json:"comment_added"`
	DeliverableCreated  bool `json:"deliverable_created"`
	FileUploaded        bool `json:"file_uploaded"`
	MemberAdded         bool `json:"member_added"`
}

// DefaultNotificationPreferences notifies for everything.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		TicketCreated:       true,
		TicketAssigned:      true,
		TicketStatusChanged: true,
		TicketUpdated:       true,
		CommentAdded:        true,
		DeliverableCreated:  true,
		FileUploaded:        true,
		MemberAdded:         true,
	}
}

// DecodeNotificationPreferences reads the stored blob. Empty or malformed
// input yields the defaults.
func DecodeNotificationPreferences(raw []byte) NotificationPreferences {
	prefs := DefaultNotificationPreferences()
	if len(raw) == 0 {
		return prefs
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return DefaultNotificationPreferences()
	}
	return prefs
}

func (p NotificationPreferences) Encode() string {
	b, _ := json.Marshal(p)
	return string(b)
}

// Allows reports whether the member wants notifications of this kind.
func (p NotificationPreferences) Allows(kind NotificationKind) bool {
	switch kind {
	case NotifyTicketCreated:
		return p.TicketCreated
	case NotifyTicketAssigned:
		return p.TicketAssigned
	case NotifyTicketStatusChanged:
		return p.TicketStatusChanged
	case NotifyTicketUpdated:
		return p.TicketUpdated
	case NotifyCommentAdded:
		return p.CommentAdded
	case NotifyDeliverableCreated:
		return p.DeliverableCreated
	case NotifyFileUploaded:
		return p.FileUploaded
	case NotifyMemberAdded:
		return p.MemberAdded
	}
	return true
}
