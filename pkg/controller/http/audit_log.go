package http

import (
	"encoding/csv"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

const defaultLogLimit = 100

var auditLogCSVHeader = []string{"id", "created_at", "actor_id", "actor_role", "action", "target_type", "target_id", "details"}

// parseLogTime accepts RFC 3339 timestamps and plain dates
func parseLogTime(name, v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Time{}, goerr.Wrap(model.ErrValidation, name+" must be an RFC 3339 time or a date", goerr.V(name, v))
}

// logFilter reads ?user=&action=&from=&to=&limit= into a filter
func logFilter(q url.Values, limit int) (usecase.AuditLogFilter, error) {
	filter := usecase.AuditLogFilter{
		ActorID: types.PrincipalID(q.Get("user")),
		Action:  q.Get("action"),
		Limit:   limit,
	}

	if v := q.Get("from"); v != "" {
		t, err := parseLogTime("from", v)
		if err != nil {
			return filter, err
		}
		filter.Since = t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseLogTime("to", v)
		if err != nil {
			return filter, err
		}
		filter.Until = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return filter, goerr.Wrap(model.ErrValidation, "limit must be a positive integer", goerr.V("limit", v))
		}
		filter.Limit = n
	}
	return filter, nil
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	filter, err := logFilter(r.URL.Query(), defaultLogLimit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logs, err := s.uc.AuditLog.List(ctx, actor, filter)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, logs)
}

// exportLogs downloads the filtered audit log as ?format=csv (default) or
// json. Exports are not limited unless a limit is given.
func (s *Server) exportLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFrom(ctx)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		respondError(ctx, w, goerr.Wrap(model.ErrValidation, "format must be csv or json", goerr.V("format", format)))
		return
	}

	filter, err := logFilter(r.URL.Query(), 0)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logs, err := s.uc.AuditLog.List(ctx, actor, filter)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="audit-logs.`+format+`"`)
	if format == "json" {
		writeJSON(ctx, w, http.StatusOK, logs)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	if err := writeAuditLogCSV(w, logs); err != nil {
		logging.From(ctx).Warn("failed to write audit log export", "error", err)
	}
}

func writeAuditLogCSV(w http.ResponseWriter, logs []*model.AuditLog) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(auditLogCSVHeader); err != nil {
		return goerr.Wrap(err, "failed to write csv header")
	}
	for _, log := range logs {
		if err := writer.Write([]string{
			log.ID.String(),
			log.CreatedAt.UTC().Format(time.RFC3339),
			log.ActorID.String(),
			log.ActorRole.String(),
			log.Action,
			log.TargetType,
			log.TargetID,
			log.Details,
		}); err != nil {
			return goerr.Wrap(err, "failed to write csv row", goerr.V("audit_log_id", log.ID))
		}
	}
	writer.Flush()
	return writer.Error()
}
