package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

func TestAnnouncement_VisibleTo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	testCases := map[string]struct {
		a       model.Announcement
		role    types.Role
		visible bool
	}{
		"everyone":        {a: model.Announcement{Active: true}, role: types.RoleAuditor, visible: true},
		"targeted role":   {a: model.Announcement{Active: true, TargetRoles: []types.Role{types.RoleAuditor}}, role: types.RoleAuditor, visible: true},
		"other role":      {a: model.Announcement{Active: true, TargetRoles: []types.Role{types.RoleAuditor}}, role: types.RoleInvestigator, visible: false},
		"inactive":        {a: model.Announcement{}, role: types.RoleAdmin, visible: false},
		"not expired yet": {a: model.Announcement{Active: true, ExpiresAt: &later}, role: types.RoleAdmin, visible: true},
		"expires now":     {a: model.Announcement{Active: true, ExpiresAt: &now}, role: types.RoleAdmin, visible: false},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Value(t, tc.a.VisibleTo(tc.role, now)).Equal(tc.visible)
		})
	}
}

func TestAnnouncement_Validate(t *testing.T) {
	valid := model.Announcement{
		Title:    "t",
		Content:  "c",
		Kind:     model.AnnouncementGeneral,
		Priority: model.AnnouncementLow,
	}
	gt.NoError(t, valid.Validate())

	blank := valid
	blank.Title = " "
	gt.Error(t, blank.Validate()).Is(model.ErrValidation)

	badRole := valid
	badRole.TargetRoles = []types.Role{"intern"}
	gt.Error(t, badRole.Validate()).Is(model.ErrValidation)
}
