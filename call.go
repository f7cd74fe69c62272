package goVK

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Response formats.
const (
	// FormatJSON requests a JSON body and returns it undecoded.
	FormatJSON = "json"
	// FormatXML requests an XML body and returns it undecoded.
	FormatXML = "xml"
	// FormatArray requests JSON and decodes it; used by [Client.API].
	FormatArray = "array"
)

// CallOptions select the response format and HTTP method of [Client.Call].
type CallOptions struct {
	// Format defaults to [FormatJSON]. [FormatArray] is sent as json.
	Format string
	// HTTPMethod is "get" (default) or "post". The "execute" method is
	// always posted.
	HTTPMethod string
}

// API calls method and decodes the JSON response. VK error objects are part
// of the returned map; they are not turned into Go errors.
func (c *Client) API(ctx context.Context, method string, params Params) (map[string]any, error) {
	body, err := c.Call(ctx, method, params, CallOptions{Format: FormatArray})
	if err != nil {
		return nil, err
	}

	m, err := DecodeResponse(body)
	if err != nil {
		c.metricInc(MetricAPICallFailure)
		return nil, err
	}
	return m, nil
}

// Call signs and sends an API method call and returns the raw body.
//
// The request carries params plus timestamp, api_id and random, and the
// stored access_token and v unless params already has them. Keys are sorted
// and signed with [Sign]. params is not modified.
//
//	Performance: 1 HTTP round-trip, plus 1 Redis round-trip with the shared limiter.
func (c *Client) Call(ctx context.Context, method string, params Params, opts CallOptions) ([]byte, error) {
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = WithRequestID(ctx, requestID)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			err = fmt.Errorf("%w: %w", ErrRateLimited, err)
			c.metricInc(MetricAPICallRateLimited)
			c.emitAudit(ctx, AuditEventAPICall, false, "", err, func() map[string]string {
				return map[string]string{"method": method}
			})
			return nil, err
		}
	}

	wire, err := c.signedParams(params)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" || format == FormatArray {
		format = FormatJSON
	}
	endpoint := c.APIURL(method, format)

	post := method == "execute" || strings.EqualFold(opts.HTTPMethod, "post")
	httpMethod := "GET"
	if post {
		httpMethod = "POST"
	}

	start := time.Now()
	var body []byte
	if post {
		body, err = c.transport.Post(ctx, endpoint, toValues(wire))
	} else {
		body, err = c.transport.Get(ctx, endpoint+"?"+toValues(wire).Encode())
	}
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.Observe(MetricAPICallLatency, elapsed)
	}

	if err != nil {
		c.metricInc(MetricAPICallFailure)
		c.emitAudit(ctx, AuditEventAPICall, false, "", err, func() map[string]string {
			return map[string]string{"method": method, "http_method": httpMethod}
		})
		c.logger.Warn("vk api call failed",
			zap.String("method", method),
			zap.String("http_method", httpMethod),
			zap.String("request_id", requestID),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	c.metricInc(MetricAPICallSuccess)
	c.logger.Debug("vk api call",
		zap.String("method", method),
		zap.String("http_method", httpMethod),
		zap.String("request_id", requestID),
		zap.Duration("duration", elapsed),
	)
	return body, nil
}

// signedParams renders a copy of params with the injected fields and sig.
func (c *Client) signedParams(params Params) (map[string]string, error) {
	random, err := c.nonce()
	if err != nil {
		return nil, fmt.Errorf("vk nonce: %w", err)
	}

	p := params.Clone()
	p["timestamp"] = c.now().Unix()
	p["api_id"] = c.cfg.App.ID
	p["random"] = random

	c.mu.RLock()
	token, version := c.accessToken, c.apiVersion
	c.mu.RUnlock()

	if !p.Has("access_token") && token != "" {
		p["access_token"] = token
	}
	if !p.Has("v") && version != "" {
		p["v"] = version
	}

	wire := p.encode()
	wire["sig"] = Sign(wire, c.cfg.App.Secret)
	return wire, nil
}

// DecodeResponse decodes a JSON object. Numbers are kept as json.Number so
// 64-bit ids survive.
func DecodeResponse(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidResponse)
	}
	return m, nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func intField(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0
			}
			return int64(f)
		}
		return n
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
