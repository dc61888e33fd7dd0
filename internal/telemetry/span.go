package telemetry

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/restpad/internal/nettrace"
)

const (
	attrRequestID    = attribute.Key("restpad.request.id")
	attrRequestName  = attribute.Key("restpad.request.name")
	attrHost         = attribute.Key("http.host")
	attrDurationMS   = attribute.Key("restpad.duration_ms")
	attrBodyBytes    = attribute.Key("restpad.response.bytes")
	attrPhase        = attribute.Key("restpad.phase")
	attrPhaseMS      = attribute.Key("restpad.phase.duration_ms")
	attrPhaseAddr    = attribute.Key("restpad.phase.addr")
	attrPhaseReused  = attribute.Key("restpad.phase.reused")
	attrPhaseFailure = attribute.Key("restpad.phase.error")

	phaseEvent = "restpad.phase"
)

// RequestStart describes a request about to leave. ID and Name come from the
// stored request and may be empty for ad hoc sends.
type RequestStart struct {
	ID          string
	Name        string
	HTTPRequest *http.Request
}

// RequestResult is what the client learned once the exchange finished.
type RequestResult struct {
	Err        error
	StatusCode int
	Duration   time.Duration
	BodyBytes  int
	Timeline   *nettrace.Timeline
}

func (info RequestStart) spanName() string {
	if name := strings.TrimSpace(info.Name); name != "" {
		return name
	}
	req := info.HTTPRequest
	switch {
	case req == nil || req.Method == "":
		return "http.request"
	case req.URL == nil || req.URL.Host == "":
		return req.Method
	default:
		return req.Method + " " + req.URL.Host
	}
}

func (info RequestStart) attributes() []attribute.KeyValue {
	req := info.HTTPRequest
	attrs := make([]attribute.KeyValue, 0, 8)
	if req.Method != "" {
		attrs = append(attrs, semconv.HTTPMethodKey.String(req.Method))
	}
	if u := req.URL; u != nil {
		attrs = append(attrs, semconv.HTTPURLKey.String(u.Redacted()))
		if u.Scheme != "" {
			attrs = append(attrs, semconv.HTTPSchemeKey.String(u.Scheme))
		}
		if u.Host != "" {
			attrs = append(attrs, attrHost.String(u.Host))
		}
		if target := u.RequestURI(); target != "" {
			attrs = append(attrs, semconv.HTTPTargetKey.String(target))
		}
	}
	if id := strings.TrimSpace(info.ID); id != "" {
		attrs = append(attrs, attrRequestID.String(id))
	}
	if name := strings.TrimSpace(info.Name); name != "" {
		attrs = append(attrs, attrRequestName.String(name))
	}
	return attrs
}

func serviceAttributes(cfg Config) []attribute.KeyValue {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = defaultServiceName
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(name)}
	if v := strings.TrimSpace(cfg.Version); v != "" {
		attrs = append(attrs, semconv.ServiceVersion(v))
	}
	return attrs
}

type requestSpan struct {
	span trace.Span
}

func (rs *requestSpan) End(result RequestResult) {
	if rs == nil || rs.span == nil {
		return
	}
	span := rs.span

	if result.StatusCode > 0 {
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(result.StatusCode))
	}
	if result.Duration > 0 {
		span.SetAttributes(attrDurationMS.Int64(result.Duration.Milliseconds()))
	}
	if result.BodyBytes > 0 {
		span.SetAttributes(attrBodyBytes.Int(result.BodyBytes))
	}
	recordPhases(span, result.Timeline)

	switch {
	case result.Err != nil:
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	case result.StatusCode >= 400:
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", result.StatusCode))
	default:
		span.SetStatus(codes.Ok, "OK")
	}
	span.End()
}

// recordPhases adds one event per network phase, stamped at the phase end.
func recordPhases(span trace.Span, tl *nettrace.Timeline) {
	if tl == nil {
		return
	}
	for _, p := range tl.Phases {
		attrs := []attribute.KeyValue{
			attrPhase.String(string(p.Kind)),
			attrPhaseMS.Float64(float64(p.Duration) / float64(time.Millisecond)),
		}
		if p.Addr != "" {
			attrs = append(attrs, attrPhaseAddr.String(p.Addr))
		}
		if p.Kind == nettrace.PhaseConnect {
			attrs = append(attrs, attrPhaseReused.Bool(p.Reused))
		}
		if p.Err != "" {
			attrs = append(attrs, attrPhaseFailure.String(p.Err))
		}
		opts := []trace.EventOption{trace.WithAttributes(attrs...)}
		if !p.End.IsZero() {
			opts = append(opts, trace.WithTimestamp(p.End))
		}
		span.AddEvent(phaseEvent, opts...)
	}
}
