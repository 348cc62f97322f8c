package core

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"ticketleap-admin/lib/htmlutil"
	"ticketleap-admin/lib/restyutil"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	csrfCookie = "csrftoken"
	csrfField  = "csrfmiddlewaretoken"
	csrfHeader = "X-CSRFToken"
)

type PageRequest struct {
	Path  string
	Query map[string]string
	// marks the request as XMLHttpRequest, some admin fragments are only
	// rendered for ajax requests
	Ajax    bool
	Referer string
}

func (s *Session) newRequest(ctx context.Context, ajax bool, referer string) *resty.Request {
	req := s.Http.R().SetContext(ctx)
	if ajax {
		req.SetHeader("X-Requested-With", "XMLHttpRequest")
	}
	if referer != "" {
		req.SetHeader("Referer", s.Url(referer))
	}
	return req
}

func (s *Session) checkSession(res *resty.Response) error {
	if strings.HasPrefix(finalUrl(res).Path, loginPath) {
		return &AuthError{Err: ErrSessionExpired}
	}
	return nil
}

// Page fetches an admin page and parses it.
func (s *Session) Page(ctx context.Context, req PageRequest) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "Session:Page")
	defer span.End()

	target := s.Url(req.Path)
	span.SetAttributes(attribute.String("url", target))

	res, err := s.newRequest(ctx, req.Ajax, req.Referer).
		SetQueryParams(req.Query).
		Get(target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, &TransportError{Method: http.MethodGet, Url: target, Err: err}
	}
	err = s.checkSession(res)
	if err != nil {
		span.SetStatus(codes.Error, "session expired")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
		return nil, &TransportError{Method: http.MethodGet, Url: target, Status: res.StatusCode()}
	}

	doc, err := parseDocument(res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}
	return doc, nil
}

// Submission describes a form submission the way the admin site's own
// forms would send it.
type Submission struct {
	// what is being done and to which human-facing key, used in errors
	Action string
	Key    string

	// defaults to POST, GET is used for link actions
	Method string
	Path   string
	Query  map[string]string

	Fields payload.Fields
	Files  []*resty.MultipartField
	// send Fields url-encoded instead of as multipart/form-data
	UrlEncoded bool

	Ajax    bool
	Referer string
}

// Submit sends a mutating request. Submissions made through one session
// never overlap. Validation errors rendered by the platform are returned
// as a *SubmissionRejectedError.
func (s *Session) Submit(ctx context.Context, sub Submission) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "Session:Submit")
	defer span.End()

	s.submitMutex.Lock()
	defer s.submitMutex.Unlock()

	method := sub.Method
	if method == "" {
		method = http.MethodPost
	}
	target := s.Url(sub.Path)
	span.SetAttributes(
		attribute.String("action", sub.Action),
		attribute.String("key", sub.Key),
		attribute.String("method", method),
		attribute.String("url", target),
	)

	token := s.CSRFToken()
	req := s.newRequest(ctx, sub.Ajax, sub.Referer).
		SetQueryParams(sub.Query)
	if token != "" {
		req.SetHeader(csrfHeader, token)
	}

	if method != http.MethodGet {
		fields := sub.Fields.Clone()
		if _, ok := fields.Get(csrfField); !ok && token != "" {
			fields.Set(csrfField, token)
		}
		if sub.UrlEncoded {
			values := url.Values{}
			for _, f := range fields.All() {
				values.Add(f.Name, f.Value)
			}
			req.SetFormDataFromValues(values)
		} else {
			req.SetMultipartFields(fields.Multipart()...)
			req.SetMultipartFields(sub.Files...)
		}
	}

	res, err := req.Execute(method, target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit")
		return nil, &TransportError{Method: method, Url: target, Err: err}
	}
	err = s.checkSession(res)
	if err != nil {
		span.SetStatus(codes.Error, "session expired")
		return nil, err
	}

	messages := rejectionMessages(res)
	if res.IsError() || len(messages) > 0 {
		dump := restyutil.WriteRejected(s.output, res)
		slog.WarnContext(
			ctx, "submission rejected",
			"action", sub.Action,
			"key", sub.Key,
			"status", res.StatusCode(),
			"messages", messages,
			"dump", dump,
		)
		span.SetStatus(codes.Error, "submission rejected")
		return res, &SubmissionRejectedError{
			Action:   sub.Action,
			Key:      sub.Key,
			Status:   res.StatusCode(),
			Messages: messages,
		}
	}

	return res, nil
}

// rejectionMessages collects the validation messages Django renders into
// an html response.
func rejectionMessages(res *resty.Response) []string {
	if !strings.Contains(res.Header().Get("Content-Type"), "html") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil
	}

	var messages []string
	doc.Find(".errorlist li, .alert-error").Each(func(_ int, s *goquery.Selection) {
		text := htmlutil.Text(s)
		if text != "" {
			messages = append(messages, text)
		}
	})
	return messages
}
