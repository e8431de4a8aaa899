package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// FrameType is the message name of a wire frame
type FrameType string

// Client to server
const (
	FrameAuthenticate FrameType = "authenticate"
	FrameSubscribe    FrameType = "subscribe"
)

// Server to client control frames. Domain pushes use EventType names.
const (
	FrameAuthenticated FrameType = "authenticated"
	FrameAuthError     FrameType = "auth-error"
	FrameSubscribed    FrameType = "subscribed"
	FrameError         FrameType = "error"
)

// Frame is the envelope of every message on the push channel
type Frame struct {
	Type FrameType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// AuthenticateRequest is sent by a client right after connecting
type AuthenticateRequest struct {
	PrincipalID types.PrincipalID `json:"principalId"`
	Role        types.Role        `json:"role"`
	Token       string            `json:"token,omitempty" masq:"secret"`
}

// SubscribeRequest asks to join a stream room
type SubscribeRequest struct {
	Stream types.Stream `json:"stream"`
}

// AuthenticatedResponse acknowledges a successful handshake
type AuthenticatedResponse struct {
	PrincipalID types.PrincipalID `json:"principalId"`
	Role        types.Role        `json:"role"`
}

// SubscribedResponse acknowledges a stream subscription
type SubscribedResponse struct {
	Stream types.Stream `json:"stream"`
}

// ErrorResponse is the body of auth-error and error frames
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewFrame marshals data into a frame of the given type
func NewFrame(frameType FrameType, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, goerr.Wrap(err, "failed to marshal frame data", goerr.V("type", frameType))
	}
	return Frame{Type: frameType, Data: raw}, nil
}

// Frame renders the event as a domain push frame
func (e *Event) Frame() (Frame, error) {
	return NewFrame(FrameType(e.Type), e)
}

// Decode unmarshals the frame body into v
func (f Frame) Decode(v any) error {
	if len(f.Data) == 0 {
		return goerr.Wrap(ErrValidation, "frame has no data", goerr.V("type", f.Type))
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		return goerr.Wrap(ErrValidation, "malformed frame data", goerr.V("type", f.Type), goerr.V("error", err.Error()))
	}
	return nil
}
