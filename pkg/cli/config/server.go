package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/argus/pkg/controller/http"
	"github.com/secmon-lab/argus/pkg/service/realtime"
	"github.com/urfave/cli/v3"
)

// Server holds the listener, rate limit and live connection settings
type Server struct {
	addr           string
	rateLimit      int
	queueSize      int
	sendTimeout    time.Duration
	storeTimeout   time.Duration
	originPatterns []string
}

func (x *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ARGUS_ADDR"),
			Destination: &x.addr,
		},
		&cli.IntFlag{
			Name:        "rate-limit",
			Usage:       "Mutating API calls allowed per principal per minute (0 disables)",
			Value:       httpctrl.DefaultRateLimit,
			Sources:     cli.EnvVars("ARGUS_RATE_LIMIT"),
			Destination: &x.rateLimit,
		},
		&cli.IntFlag{
			Name:        "ws-queue-size",
			Usage:       "Outbound frames buffered per live connection",
			Category:    "WebSocket",
			Value:       realtime.DefaultQueueSize,
			Sources:     cli.EnvVars("ARGUS_WS_QUEUE_SIZE"),
			Destination: &x.queueSize,
		},
		&cli.DurationFlag{
			Name:        "ws-send-timeout",
			Usage:       "Time allowed to write one frame before the connection is dropped",
			Category:    "WebSocket",
			Value:       realtime.DefaultSendTimeout,
			Sources:     cli.EnvVars("ARGUS_WS_SEND_TIMEOUT"),
			Destination: &x.sendTimeout,
		},
		&cli.StringSliceFlag{
			Name:        "ws-origin",
			Usage:       "Allowed WebSocket origin host pattern (repeatable)",
			Category:    "WebSocket",
			Sources:     cli.EnvVars("ARGUS_WS_ORIGINS"),
			Destination: &x.originPatterns,
		},
		&cli.DurationFlag{
			Name:        "store-timeout",
			Usage:       "Timeout of each record store call",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("ARGUS_STORE_TIMEOUT"),
			Destination: &x.storeTimeout,
		},
	}
}

func (x Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", x.addr),
		slog.Int("rate-limit", x.rateLimit),
		slog.Int("ws-queue-size", x.queueSize),
		slog.Duration("ws-send-timeout", x.sendTimeout),
		slog.Duration("store-timeout", x.storeTimeout),
	)
}

func (x *Server) Validate() error {
	if x.queueSize <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "ws-queue-size must be positive", goerr.V("size", x.queueSize))
	}
	if x.rateLimit < 0 {
		return goerr.Wrap(ErrInvalidConfig, "rate-limit must not be negative", goerr.V("limit", x.rateLimit))
	}
	return nil
}

func (x *Server) Addr() string { return x.addr }
func (x *Server) RateLimit() int { return x.rateLimit }
func (x *Server) QueueSize() int { return x.queueSize }
func (x *Server) SendTimeout() time.Duration { return x.sendTimeout }
func (x *Server) StoreTimeout() time.Duration { return x.storeTimeout }
func (x *Server) OriginPatterns() []string { return x.originPatterns }
