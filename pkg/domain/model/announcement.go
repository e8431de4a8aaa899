package model

import (
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// AnnouncementKind categorizes an announcement
type AnnouncementKind string

const (
	AnnouncementMeeting  AnnouncementKind = "meeting"
	AnnouncementAlert    AnnouncementKind = "alert"
	AnnouncementUpdate   AnnouncementKind = "update"
	AnnouncementReminder AnnouncementKind = "reminder"
	AnnouncementGeneral  AnnouncementKind = "general"
)

// IsValid checks if the kind is known
func (k AnnouncementKind) IsValid() bool {
	switch k {
	case AnnouncementMeeting, AnnouncementAlert, AnnouncementUpdate, AnnouncementReminder, AnnouncementGeneral:
		return true
	default:
		return false
	}
}

// AnnouncementPriority is the urgency of an announcement
type AnnouncementPriority string

const (
	AnnouncementLow    AnnouncementPriority = "low"
	AnnouncementMedium AnnouncementPriority = "medium"
	AnnouncementHigh   AnnouncementPriority = "high"
	AnnouncementUrgent AnnouncementPriority = "urgent"
)

// IsValid checks if the priority is known
func (p AnnouncementPriority) IsValid() bool {
	switch p {
	case AnnouncementLow, AnnouncementMedium, AnnouncementHigh, AnnouncementUrgent:
		return true
	default:
		return false
	}
}

// Announcement is an operator notice shown to the principals of the target
// roles until it expires or is deactivated. An empty TargetRoles reaches
// every role.
type Announcement struct {
	ID          types.AnnouncementID `json:"id" firestore:"id"`
	Title       string               `json:"title" firestore:"title"`
	Content     string               `json:"content" firestore:"content"`
	Kind        AnnouncementKind     `json:"type" firestore:"kind"`
	Priority    AnnouncementPriority `json:"priority" firestore:"priority"`
	TargetRoles []types.Role         `json:"targetRoles" firestore:"target_roles"`
	Active      bool                 `json:"isActive" firestore:"active"`
	ExpiresAt   *time.Time           `json:"expiresAt,omitempty" firestore:"expires_at"`
	ReadBy      []types.PrincipalID  `json:"readBy" firestore:"read_by"`
	CreatedBy   types.PrincipalID    `json:"createdBy" firestore:"created_by"`
	CreatedAt   time.Time            `json:"createdAt" firestore:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" firestore:"updated_at"`
}

// Validate checks the fields of an announcement
func (a *Announcement) Validate() error {
	if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Content) == "" {
		return goerr.Wrap(ErrValidation, "announcement title and content are required", goerr.V(AnnouncementKey, a.ID))
	}
	if !a.Kind.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid announcement type", goerr.V(AnnouncementKey, a.ID), goerr.V("type", a.Kind))
	}
	if !a.Priority.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid announcement priority", goerr.V(AnnouncementKey, a.ID), goerr.V("priority", a.Priority))
	}
	for _, role := range a.TargetRoles {
		if !role.IsValid() {
			return goerr.Wrap(ErrValidation, "invalid target role", goerr.V(AnnouncementKey, a.ID), goerr.V(RoleKey, role))
		}
	}
	return nil
}

// Targets reports whether principals of role are addressed
func (a *Announcement) Targets(role types.Role) bool {
	return len(a.TargetRoles) == 0 || slices.Contains(a.TargetRoles, role)
}

// VisibleTo reports whether the announcement is shown to role at now
func (a *Announcement) VisibleTo(role types.Role, now time.Time) bool {
	if !a.Active {
		return false
	}
	if a.ExpiresAt != nil && !now.Before(*a.ExpiresAt) {
		return false
	}
	return a.Targets(role)
}

// IsReadBy reports whether the principal has read the announcement
func (a *Announcement) IsReadBy(id types.PrincipalID) bool {
	return slices.Contains(a.ReadBy, id)
}
