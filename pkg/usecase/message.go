package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// MessageUseCase sends operator messages to live connections
type MessageUseCase struct {
	*env
}

// MessageInput addresses a system message. An empty input goes to the
// general room; a recipient takes precedence over a room.
type MessageInput struct {
	Message   string
	Room      policy.Room
	Recipient types.PrincipalID
}

// Send publishes a system message
func (uc *MessageUseCase) Send(ctx context.Context, actor model.Actor, in MessageInput) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if err := policy.Require(actor.Role, policy.OpSendSystemMessage); err != nil {
		return err
	}
	if strings.TrimSpace(in.Message) == "" {
		return goerr.Wrap(model.ErrValidation, "message is required")
	}

	target := policy.ToRoom(policy.RoomGeneral)
	switch {
	case in.Recipient != "":
		target = policy.ToPrincipal(in.Recipient)
	case in.Room != "":
		target = policy.ToRoom(in.Room)
	}

	uc.publish(ctx, model.NewSystemMessageEvent(in.Message, actor.ID), target)
	uc.audit(ctx, actor, model.AuditActionSystemMessageSent, model.AuditTargetSystemMessage, "", in.Message)
	return nil
}
