package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
)

func caseIDParam(r *http.Request) types.CaseID {
	return types.CaseID(chi.URLParam(r, "id"))
}

func (s *Server) createCaseFromTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req createCaseFromTransactionRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	c, err := s.uc.Case.CreateFromTransaction(ctx, actor, types.TransactionID(req.TransactionID), usecase.CreateCaseInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    types.Priority(req.Priority),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, c)
}

func (s *Server) createCaseFromAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req createCaseFromAlertRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	c, err := s.uc.Case.CreateFromAlert(ctx, actor, types.AlertID(req.AlertID), usecase.CreateCaseInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    types.Priority(req.Priority),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, c)
}

func (s *Server) assignInvestigator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req assignRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	c, err := s.uc.Case.AssignInvestigator(ctx, actor, caseIDParam(r), types.PrincipalID(req.InvestigatorID),
		usecase.ExpectAssignee(types.PrincipalID(req.ExpectedAssignee)))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, c)
}

func (s *Server) assignToSelf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	c, err := s.uc.Case.AssignToSelf(ctx, actor, caseIDParam(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, c)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req updateStatusRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	c, err := s.uc.Case.UpdateStatus(ctx, actor, caseIDParam(r), types.CaseStatus(req.Status), req.Notes)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, c)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req commentRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	c, err := s.uc.Case.AddComment(ctx, actor, caseIDParam(r), req.Text)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, c)
}

func (s *Server) uploadEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req evidenceRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	c, err := s.uc.Case.UploadEvidence(ctx, actor, caseIDParam(r), usecase.EvidenceInput{
		Filename:    req.Filename,
		FileURL:     req.FileURL,
		Description: req.Description,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, c)
}

func (s *Server) closeCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req closeRequest
	if err := s.decodeOptional(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	c, err := s.uc.Case.CloseCase(ctx, actor, caseIDParam(r), req.Resolution)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, c)
}

func (s *Server) purgeCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	if err := s.uc.Case.PurgeCase(ctx, actor, caseIDParam(r)); err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) listCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	cases, err := s.uc.Case.ListCases(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, cases)
}

func (s *Server) listAvailableCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	cases, err := s.uc.Case.ListAvailable(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, cases)
}

func (s *Server) caseStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	stats, err := s.uc.Case.Stats(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, stats)
}

func (s *Server) getCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	c, err := s.uc.Case.GetCase(ctx, actor, caseIDParam(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, c)
}
