package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

// Sender writes frames to the transport session of a connection. It is
// implemented by the wire adapter.
type Sender interface {
	Send(ctx context.Context, frame model.Frame) error
	Close(reason string) error
}

var (
	// ErrQueueFull is returned when a slow connection cannot take more frames
	ErrQueueFull = goerr.New("outbound queue is full")
	// ErrConnectionClosed is returned for frames sent to a removed connection
	ErrConnectionClosed = goerr.New("connection is closed")
)

// Connection is one live transport session. Frames are queued and written by
// a dedicated goroutine so that a slow receiver never blocks a publisher.
type Connection struct {
	id          types.ConnectionID
	sender      Sender
	sendTimeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan model.Frame
	done   chan struct{}
}

func newConnection(sender Sender, queueSize int, sendTimeout time.Duration) *Connection {
	return &Connection{
		id:          types.NewConnectionID(),
		sender:      sender,
		sendTimeout: sendTimeout,
		queue:       make(chan model.Frame, queueSize),
		done:        make(chan struct{}),
	}
}

// ID returns the opaque session ID
func (c *Connection) ID() types.ConnectionID {
	return c.id
}

// Done is closed when the connection has been removed from the registry
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Reply queues a control frame for this connection only
func (c *Connection) Reply(frameType model.FrameType, data any) error {
	frame, err := model.NewFrame(frameType, data)
	if err != nil {
		return err
	}
	return c.deliver(frame)
}

func (c *Connection) deliver(frame model.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return goerr.Wrap(ErrConnectionClosed, "frame not delivered", goerr.V(model.ConnectionIDKey, c.id))
	}

	select {
	case c.queue <- frame:
		return nil
	default:
		return goerr.Wrap(ErrQueueFull, "frame dropped", goerr.V(model.ConnectionIDKey, c.id), goerr.V("type", frame.Type))
	}
}

// close stops delivery at once. Frames still queued are discarded.
func (c *Connection) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.closed = true
	close(c.done)
	return true
}

// run drains the queue into the sender until the connection is closed or a
// send fails. onFailure is called with the connection ID on send failure.
func (c *Connection) run(ctx context.Context, onFailure func(types.ConnectionID)) {
	logger := logging.From(ctx).With(model.ConnectionIDKey, c.id)
	defer func() {
		if err := c.sender.Close("connection closed"); err != nil {
			logger.Debug("failed to close transport", "error", err)
		}
	}()

	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case frame := <-c.queue:
			select {
			case <-c.done:
				return
			default:
			}

			sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
			err := c.sender.Send(sendCtx, frame)
			cancel()

			if err != nil {
				logger.Warn("failed to send frame, disconnecting", "type", frame.Type, "error", err)
				onFailure(c.id)
				return
			}
		}
	}
}
