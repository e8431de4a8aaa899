package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
)

func (req announcementRequest) input() usecase.AnnouncementInput {
	roles := lo.Map(req.TargetRoles, func(role string, _ int) types.Role {
		return types.Role(role)
	})
	return usecase.AnnouncementInput{
		Title:       req.Title,
		Content:     req.Content,
		Kind:        model.AnnouncementKind(req.Type),
		Priority:    model.AnnouncementPriority(req.Priority),
		TargetRoles: roles,
		ExpiresAt:   req.ExpiresAt,
		Active:      req.IsActive,
	}
}

func announcementIDParam(r *http.Request) types.AnnouncementID {
	return types.AnnouncementID(chi.URLParam(r, "id"))
}

// listAnnouncements returns the announcements addressed to the caller and
// marks them read
func (s *Server) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	list, err := s.uc.Announcement.ListForActor(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, list)
}

func (s *Server) listAllAnnouncements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	list, err := s.uc.Announcement.ListAll(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, list)
}

func (s *Server) createAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req announcementRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	a, err := s.uc.Announcement.Create(ctx, actor, req.input())
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, a)
}

func (s *Server) updateAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req announcementRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	a, err := s.uc.Announcement.Update(ctx, actor, announcementIDParam(r), req.input())
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, a)
}

func (s *Server) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	if err := s.uc.Announcement.Delete(ctx, actor, announcementIDParam(r)); err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) markAnnouncementRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	a, err := s.uc.Announcement.MarkRead(ctx, actor, announcementIDParam(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, a)
}
