package a2a

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-a2a-go/auth"
	a2aserver "trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	mesh "trpc.group/trpc-go/trpc-rag-go/a2a"
	"trpc.group/trpc-go/trpc-rag-go/log"
	"trpc.group/trpc-go/trpc-rag-go/rag"
)

const defaultUserIDHeader = "X-User-ID"

// UserIDFromContext returns the authenticated user ID from the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	user, ok := ctx.Value(auth.AuthUserKey).(*auth.User)
	if !ok {
		return "", false
	}
	return user.ID, true
}

// NewContextWithUserID returns a new context carrying the user ID.
func NewContextWithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		log.Warnf("NewContextWithUserID: ctx is nil, do nothing")
		return ctx
	}
	return context.WithValue(ctx, auth.AuthUserKey, &auth.User{ID: userID})
}

// ProcessorBuilder returns a message processor over the engine.
type ProcessorBuilder func(engine *rag.Engine) taskmanager.MessageProcessor

// ProcessorHook wraps the message processor, for cross-cutting concerns
// such as request logging or quota checks.
type ProcessorHook func(next taskmanager.MessageProcessor) taskmanager.MessageProcessor

// TaskManagerBuilder returns a task manager over the processor.
type TaskManagerBuilder func(processor taskmanager.MessageProcessor) taskmanager.TaskManager

// defaultAuthProvider identifies callers by a request header, falling
// back to a generated anonymous ID.
type defaultAuthProvider struct {
	userIDHeader string
}

func (d *defaultAuthProvider) Authenticate(r *http.Request) (*auth.User, error) {
	if r == nil {
		return nil, errors.New("request is nil")
	}
	header := d.userIDHeader
	if header == "" {
		header = defaultUserIDHeader
	}
	userID := r.Header.Get(header)
	if userID == "" {
		log.Warnf("a2aserver: no %s header, using an anonymous user", header)
		userID = uuid.NewString()
	}
	return &auth.User{ID: userID}, nil
}

type options struct {
	engine             *rag.Engine
	mesh               *mesh.Registry
	agentCard          *a2aserver.AgentCard
	queryConverter     MessageToQuery
	resultConverter    ResultToMessage
	processorBuilder   ProcessorBuilder
	processorHook      ProcessorHook
	taskManagerBuilder TaskManagerBuilder
	host               string
	userIDHeader       string
	enableStreaming    bool
	extraOptions       []a2aserver.Option
}

// Option is a function that configures the server.
type Option func(*options)

// WithEngine sets the pipeline engine the server runs queries on.
func WithEngine(engine *rag.Engine) Option {
	return func(opts *options) {
		opts.engine = engine
	}
}

// WithMeshRegistry sets the agent registry the served card is derived
// from. Without it the built-in pipeline registry is used.
func WithMeshRegistry(registry *mesh.Registry) Option {
	return func(opts *options) {
		opts.mesh = registry
	}
}

// WithAgentCard overrides the derived agent card entirely.
func WithAgentCard(agentCard a2aserver.AgentCard) Option {
	return func(opts *options) {
		opts.agentCard = &agentCard
	}
}

// WithHost sets the host the server advertises and listens on.
func WithHost(host string) Option {
	return func(opts *options) {
		opts.host = host
	}
}

// WithStreaming toggles streaming support on the advertised card.
// Streaming is enabled by default.
func WithStreaming(enabled bool) Option {
	return func(opts *options) {
		opts.enableStreaming = enabled
	}
}

// WithUserIDHeader overrides the request header the default auth provider
// reads the user ID from.
func WithUserIDHeader(header string) Option {
	return func(opts *options) {
		opts.userIDHeader = header
	}
}

// WithQueryConverter replaces the inbound message converter.
func WithQueryConverter(converter MessageToQuery) Option {
	return func(opts *options) {
		opts.queryConverter = converter
	}
}

// WithResultConverter replaces the outbound message converter.
func WithResultConverter(converter ResultToMessage) Option {
	return func(opts *options) {
		opts.resultConverter = converter
	}
}

// WithProcessorBuilder replaces the message processor construction.
func WithProcessorBuilder(builder ProcessorBuilder) Option {
	return func(opts *options) {
		opts.processorBuilder = builder
	}
}

// WithProcessMessageHook wraps the message processor.
func WithProcessMessageHook(hook ProcessorHook) Option {
	return func(opts *options) {
		opts.processorHook = hook
	}
}

// WithTaskManagerBuilder replaces the task manager construction.
func WithTaskManagerBuilder(builder TaskManagerBuilder) Option {
	return func(opts *options) {
		opts.taskManagerBuilder = builder
	}
}

// WithExtraA2AOptions passes additional options to the underlying A2A
// server.
func WithExtraA2AOptions(opts ...a2aserver.Option) Option {
	return func(options *options) {
		options.extraOptions = append(options.extraOptions, opts...)
	}
}
