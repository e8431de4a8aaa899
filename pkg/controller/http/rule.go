package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
)

func (req ruleRequest) input() usecase.RuleInput {
	return usecase.RuleInput{
		Name:        req.Name,
		Condition:   req.Condition,
		Score:       req.Score,
		Description: req.Description,
		Enabled:     req.Enabled,
	}
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	rules, err := s.uc.Rule.List(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, rules)
}

func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req ruleRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	rule, err := s.uc.Rule.Create(ctx, actor, req.input())
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, rule)
}

func (s *Server) updateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req ruleRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	rule, err := s.uc.Rule.Update(ctx, actor, types.RuleID(chi.URLParam(r, "id")), req.input())
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, rule)
}

func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	if err := s.uc.Rule.Delete(ctx, actor, types.RuleID(chi.URLParam(r, "id"))); err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
}
