package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
)

const defaultTransactionLimit = 100

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req transactionRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	result, err := s.uc.Transaction.Create(ctx, actor, usecase.TransactionInput{
		AccountID: req.AccountID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Country:   req.Country,
		Merchant:  req.Merchant,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, result)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	limit := defaultTransactionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(ctx, w, goerr.Wrap(model.ErrValidation, "limit must be a positive integer", goerr.V("limit", v)))
			return
		}
		limit = n
	}

	txns, err := s.uc.Transaction.List(ctx, actor, limit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, txns)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	if err := s.uc.Transaction.Delete(ctx, actor, types.TransactionID(chi.URLParam(r, "id"))); err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	unresolved := r.URL.Query().Get("unresolved") == "true"
	alerts, err := s.uc.Alert.List(ctx, actor, unresolved)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, alerts)
}

func (s *Server) resolveAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	alert, err := s.uc.Alert.Resolve(ctx, actor, types.AlertID(chi.URLParam(r, "id")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, alert)
}

func (s *Server) sendSystemMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	var req systemMessageRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	err := s.uc.Message.Send(ctx, actor, usecase.MessageInput{
		Message:   req.Message,
		Room:      policy.Room(req.Room),
		Recipient: types.PrincipalID(req.Recipient),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusAccepted, successResponse{Success: true})
}
