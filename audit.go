package goVK

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/MrEthical07/goVK/internal/audit"
	"github.com/MrEthical07/goVK/internal/rate"
	"github.com/MrEthical07/goVK/session"
	"github.com/MrEthical07/goVK/transport"
)

// AuditEvent is the record delivered to an [AuditSink].
type AuditEvent = audit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = audit.Sink

// NoOpSink drops audit events.
type NoOpSink = audit.NoOpSink

// ChannelSink delivers audit events into a buffered channel.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] on w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// Audit event types.
const (
	AuditEventAPICall               = "api_call"
	AuditEventTokenExchangeSuccess  = "token_exchange_success"
	AuditEventTokenExchangeFailure  = "token_exchange_failure"
	AuditEventTokenExchangeRejected = "token_exchange_rejected"
	AuditEventTokenCheck            = "token_check"
	AuditEventPasswordGrantRejected = "password_grant_rejected"
	AuditEventSessionSaved          = "session_saved"
	AuditEventSessionResumed        = "session_resumed"
	AuditEventSessionForgotten      = "session_forgotten"
	AuditEventStateRejected         = "state_rejected"
)

// AuditErrorCode is the coarse error class recorded in [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrRemoteAPI         AuditErrorCode = "remote_api"
	auditErrAlreadyAuthorized AuditErrorCode = "already_authorized"
	auditErrConfiguration     AuditErrorCode = "configuration"
	auditErrRateLimited       AuditErrorCode = "rate_limited"
	auditErrCircuitOpen       AuditErrorCode = "circuit_open"
	auditErrHTTPStatus        AuditErrorCode = "http_status"
	auditErrTransport         AuditErrorCode = "transport"
	auditErrInvalidResponse   AuditErrorCode = "invalid_response"
	auditErrInvalidState      AuditErrorCode = "invalid_state"
	auditErrSessionNotFound   AuditErrorCode = "session_not_found"
	auditErrUnavailable       AuditErrorCode = "backend_unavailable"
	auditErrCanceled          AuditErrorCode = "canceled"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: RequestIDFromContext(ctx),
		AppID:     c.cfg.App.ID,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if method, ok := metadata["method"]; ok {
		event.Method = method
		delete(metadata, "method")
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var statusErr *transport.StatusError
	switch {
	case errors.Is(err, ErrRemoteAPI):
		return auditErrRemoteAPI
	case errors.Is(err, ErrAlreadyAuthorized):
		return auditErrAlreadyAuthorized
	case errors.Is(err, ErrConfiguration):
		return auditErrConfiguration
	case errors.Is(err, ErrRateLimited), errors.Is(err, rate.ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, transport.ErrCircuitOpen):
		return auditErrCircuitOpen
	case errors.As(err, &statusErr):
		return auditErrHTTPStatus
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return auditErrCanceled
	case errors.Is(err, transport.ErrRequestFailed), errors.Is(err, transport.ErrResponseTooLarge):
		return auditErrTransport
	case errors.Is(err, ErrInvalidResponse):
		return auditErrInvalidResponse
	case errors.Is(err, ErrInvalidState):
		return auditErrInvalidState
	case errors.Is(err, session.ErrNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, session.ErrRedisUnavailable), errors.Is(err, rate.ErrRedisUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
