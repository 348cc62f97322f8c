package core

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"ticketleap-admin/lib/restyutil"
	"ticketleap-admin/lib/scrapers/ticketleap/payload"
	"ticketleap-admin/lib/testutil"

	"github.com/stretchr/testify/require"
)

func login(t *testing.T, p *testutil.FakePlatform, output restyutil.InstrumentOutput) *Session {
	t.Helper()
	session, err := Login(context.Background(), ClientOptions{
		LoginUrl:  p.Url(),
		RateLimit: 100,
		Output:    output,
	}, testutil.Username, testutil.Password)
	require.NoError(t, err)
	return session
}

func TestLogin(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	session := login(t, p, nil)

	require.Equal(t, p.Url(), session.Origin.String())
	require.NotEmpty(t, session.CSRFToken())
	require.Equal(t, p.Url()+"/admin/events", session.Url("/admin/events"))
}

func TestLoginWrongPassword(t *testing.T) {
	p := testutil.NewFakePlatform(t)

	_, err := Login(context.Background(), ClientOptions{LoginUrl: p.Url()}, testutil.Username, "hunter2")
	require.ErrorIs(t, err, ErrLoginFailed)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, "auth: failed to login to ticketleap", err.Error())
}

func TestSessionExpired(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	session := login(t, p, nil)

	_, err := session.Page(context.Background(), PageRequest{Path: "/admin/events"})
	require.NoError(t, err)

	p.ExpireSessions()
	_, err = session.Page(context.Background(), PageRequest{Path: "/admin/events"})
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestPageStatus(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	session := login(t, p, nil)

	_, err := session.Page(context.Background(), PageRequest{Path: "/admin/events/missing/details"})
	require.ErrorIs(t, err, ErrTransport)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, http.StatusNotFound, transportErr.Status)
}

func TestPageDocumentUrl(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	session := login(t, p, nil)

	doc, err := session.Page(context.Background(), PageRequest{Path: "/admin/events"})
	require.NoError(t, err)
	require.Equal(t, "/admin/events", doc.Url.Path)
}

func TestSubmit(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	start := time.Date(2019, time.September, 29, 13, 0, 0, 0, time.UTC)
	event := p.AddEvent("spring-gala", "Spring Gala", start)
	p.AddTicket("spring-gala", event.Dates[0].Uuid, "General Admission", "20")

	output := restyutil.NewMemoryOutput()
	session := login(t, p, output)

	fields := payload.NewFields(
		payload.Field{Name: "title", Value: "Spring Gala 2"},
		payload.Field{Name: "slug", Value: "spring-gala-2"},
		payload.Field{Name: "copy_tickets", Value: "on"},
	)
	fields.Merge(payload.DateRows([]payload.DateRange{
		{Start: start.AddDate(1, 0, 0), End: start.AddDate(1, 0, 0).Add(time.Hour)},
	}))

	_, err := session.Submit(context.Background(), Submission{
		Action: "clone event",
		Key:    "spring-gala",
		Path:   "/admin/events/clone/" + event.Uuid,
		Fields: fields,
	})
	require.NoError(t, err)

	clone, ok := p.Event("spring-gala-2")
	require.True(t, ok)
	require.Len(t, clone.Dates, 1)
	require.Equal(t, []string{"General Admission"}, testutil.TicketNames(clone.Dates[0].Tickets))
	require.Empty(t, output.Messages())
}

func TestSubmitRejected(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	p.AddEvent("spring-gala", "Spring Gala", time.Date(2019, time.September, 29, 13, 0, 0, 0, time.UTC))
	p.AddEvent("taken", "Taken")
	event, _ := p.Event("spring-gala")

	output := restyutil.NewMemoryOutput()
	session := login(t, p, output)

	fields := payload.NewFields(
		payload.Field{Name: "title", Value: "Taken"},
		payload.Field{Name: "slug", Value: "taken"},
	)
	fields.Merge(payload.ManagementForm("dates", 0, 0))

	_, err := session.Submit(context.Background(), Submission{
		Action: "clone event",
		Key:    "spring-gala",
		Path:   "/admin/events/clone/" + event.Uuid,
		Fields: fields,
	})
	require.ErrorIs(t, err, ErrSubmissionRejected)

	var rejected *SubmissionRejectedError
	require.True(t, errors.As(err, &rejected))
	require.Equal(t, http.StatusOK, rejected.Status)
	require.Equal(t, []string{"Event with this slug already exists."}, rejected.Messages)

	messages := output.Messages()
	require.Len(t, messages, 1)
	for id, dump := range messages {
		require.True(t, strings.HasPrefix(id, "rejected-"))
		require.Contains(t, dump, "POST")
	}
	require.Equal(t, 1, p.CountRequests(http.MethodPost, "/admin/events/clone/"))
}

func TestSubmitUrlEncoded(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	p.AddEvent("spring-gala", "Spring Gala")
	session := login(t, p, nil)

	_, err := session.Submit(context.Background(), Submission{
		Action: "modify post purchase message",
		Key:    "spring-gala",
		Path:   "/admin/events/spring-gala/details/modify-post-purchase-message",
		Fields: payload.NewFields(payload.Field{
			Name:  "post_purchase_message",
			Value: "See you there!",
		}),
		UrlEncoded: true,
		Ajax:       true,
	})
	require.NoError(t, err)

	event, ok := p.Event("spring-gala")
	require.True(t, ok)
	require.Equal(t, "See you there!", event.PostPurchaseMessage)
}

func TestSubmitErrorStatus(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	session := login(t, p, nil)

	_, err := session.Submit(context.Background(), Submission{
		Action: "delete ticket",
		Key:    "General Admission",
		Method: http.MethodGet,
		Path:   "/admin/events/missing/performance/x/ticket/y/delete/",
		Query:  map[string]string{"submit": "delete"},
		Ajax:   true,
	})
	var rejected *SubmissionRejectedError
	require.True(t, errors.As(err, &rejected))
	require.Equal(t, http.StatusNotFound, rejected.Status)
}

func TestDomainRedirectPolicy(t *testing.T) {
	require.Equal(t, "ticketleap.com", registrableDomain("www.ticketleap.com"))
	require.Equal(t, "127.0.0.1", registrableDomain("127.0.0.1"))

	policy := domainRedirectPolicy("www.ticketleap.com")
	allowed := []string{
		"https://ticketleap.com/admin/",
		"https://box-office.ticketleap.com/admin/",
	}
	for _, target := range allowed {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		require.NoError(t, err)
		require.NoError(t, policy.Apply(req, nil), target)
	}

	req, err := http.NewRequest(http.MethodGet, "https://evil.example.com/", nil)
	require.NoError(t, err)
	require.Error(t, policy.Apply(req, nil))
}
