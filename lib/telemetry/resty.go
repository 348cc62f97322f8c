package telemetry

import (
	"strings"

	"ticketleap-admin/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

// bodies longer than this are cut before being attached to a span
const maxBodyAttribute = 16 * 1024

// InstrumentResty wraps every request made by client in a client span.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(
			req.Context(), "http "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
		)
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
}

func truncate(body string) string {
	if len(body) <= maxBodyAttribute {
		return body
	}
	return body[:maxBodyAttribute] + "...(truncated)"
}

// headerAttributes follows the http.request.header.<name> convention.
func headerAttributes(prefix string, headers map[string][]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(headers))
	for name := range headers {
		attrs = append(attrs, attribute.StringSlice(
			prefix+strings.ToLower(name),
			restyutil.HeaderValues(headers, name),
		))
	}
	return attrs
}

func onAfterResponse(_ *resty.Client, res *resty.Response) error {
	span := trace.SpanFromContext(res.Request.Context())
	defer span.End()

	// RawRequest is only populated once the request was sent
	if raw := res.Request.RawRequest; raw != nil {
		span.SetAttributes(httpconv.ClientRequest(raw)...)
		span.SetAttributes(headerAttributes("http.request.header.", raw.Header)...)
		span.SetAttributes(attribute.String("http.request.body", truncate(restyutil.RequestBody(raw))))
	}
	span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	span.SetAttributes(headerAttributes("http.response.header.", res.Header())...)
	span.SetAttributes(attribute.String("http.response.body", truncate(res.String())))

	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}
	return nil
}

func onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if req.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
	}
}
