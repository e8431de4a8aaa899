package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/service/realtime"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

// Handler upgrades HTTP requests to WebSocket sessions and translates frames
// to registry and router calls.
type Handler struct {
	registry       *realtime.Registry
	router         *realtime.Router
	auth           usecase.AuthUseCaseInterface
	originPatterns []string
}

type Option func(*Handler)

// WithAuth requires a token on authenticate frames unless authUC is in
// no-auth mode
func WithAuth(authUC usecase.AuthUseCaseInterface) Option {
	return func(h *Handler) {
		h.auth = authUC
	}
}

// WithOriginPatterns allows cross-origin upgrades from the given host patterns
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Handler) {
		h.originPatterns = append(h.originPatterns, patterns...)
	}
}

func New(registry *realtime.Registry, router *realtime.Router, opts ...Option) *Handler {
	h := &Handler{
		registry: registry,
		router:   router,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type sender struct {
	conn *websocket.Conn
}

func (s *sender) Send(ctx context.Context, frame model.Frame) error {
	return wsjson.Write(ctx, s.conn, frame)
}

func (s *sender) Close(reason string) error {
	return s.conn.Close(websocket.StatusNormalClosure, reason)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		logging.From(ctx).Warn("failed to accept websocket", "error", err, "remote", r.RemoteAddr)
		return
	}

	session, err := h.registry.Register(&sender{conn: conn})
	if err != nil {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.registry.Disconnect(session.ID())

	logger := logging.From(ctx).With(model.ConnectionIDKey, session.ID())
	ctx = logging.With(ctx, logger)
	logger.Debug("websocket connected", "remote", r.RemoteAddr)

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		if msgType != websocket.MessageText {
			h.replyError(ctx, session, "Binary messages are not supported", model.CodeValidation)
			continue
		}

		var frame model.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.replyError(ctx, session, "Invalid message format", model.CodeValidation)
			continue
		}

		h.dispatch(ctx, session, frame)
	}
}

func (h *Handler) dispatch(ctx context.Context, session *realtime.Connection, frame model.Frame) {
	switch frame.Type {
	case model.FrameAuthenticate:
		h.authenticate(ctx, session, frame)
	case model.FrameSubscribe:
		h.subscribe(ctx, session, frame)
	default:
		h.replyError(ctx, session, "Unknown message type: "+string(frame.Type), model.CodeValidation)
	}
}

func (h *Handler) authenticate(ctx context.Context, session *realtime.Connection, frame model.Frame) {
	var req model.AuthenticateRequest
	if err := frame.Decode(&req); err != nil {
		h.reply(ctx, session, model.FrameAuthError, model.ErrorResponse{Message: "Invalid authenticate request", Code: model.CodeValidation})
		return
	}

	principalID, role := req.PrincipalID, req.Role

	if h.auth != nil && !h.auth.IsNoAuthn() {
		actor, err := h.auth.Authenticate(ctx, req.Token)
		if err != nil {
			logging.From(ctx).Info("websocket authentication rejected", "error", err, model.PrincipalIDKey, req.PrincipalID)
			h.reply(ctx, session, model.FrameAuthError, model.ErrorResponse{Message: "Invalid credentials", Code: model.CodeAuthRejected})
			return
		}

		if (principalID != "" && principalID != actor.ID) || (role != "" && role != actor.Role) {
			h.reply(ctx, session, model.FrameAuthError, model.ErrorResponse{Message: "Credential does not match principal", Code: model.CodeAuthRejected})
			return
		}
		principalID, role = actor.ID, actor.Role
	}

	if err := h.registry.Authenticate(session.ID(), principalID, role); err != nil {
		h.reply(ctx, session, model.FrameAuthError, model.ErrorResponse{Message: "Invalid principal or role", Code: model.ErrorCode(err)})
		return
	}

	logging.From(ctx).Info("websocket authenticated", model.PrincipalIDKey, principalID, model.RoleKey, role)
	h.reply(ctx, session, model.FrameAuthenticated, model.AuthenticatedResponse{PrincipalID: principalID, Role: role})
}

func (h *Handler) subscribe(ctx context.Context, session *realtime.Connection, frame model.Frame) {
	var req model.SubscribeRequest
	if err := frame.Decode(&req); err != nil {
		h.replyError(ctx, session, "Invalid subscribe request", model.CodeValidation)
		return
	}

	if _, err := h.router.Subscribe(session.ID(), req.Stream); err != nil {
		h.replyError(ctx, session, subscribeErrorMessage(err, req), model.ErrorCode(err))
		return
	}

	h.reply(ctx, session, model.FrameSubscribed, model.SubscribedResponse{Stream: req.Stream})
}

func subscribeErrorMessage(err error, req model.SubscribeRequest) string {
	switch {
	case errors.Is(err, realtime.ErrNotAuthenticated):
		return "Not authenticated"
	case errors.Is(err, model.ErrForbidden):
		return "Insufficient permissions for " + req.Stream.String() + " stream"
	case errors.Is(err, model.ErrValidation):
		return "Unknown stream: " + req.Stream.String()
	default:
		return "Subscription failed"
	}
}

func (h *Handler) replyError(ctx context.Context, session *realtime.Connection, msg, code string) {
	h.reply(ctx, session, model.FrameError, model.ErrorResponse{Message: msg, Code: code})
}

func (h *Handler) reply(ctx context.Context, session *realtime.Connection, frameType model.FrameType, data any) {
	if err := session.Reply(frameType, data); err != nil {
		logging.From(ctx).Debug("failed to reply", "type", frameType, "error", err)
	}
}
