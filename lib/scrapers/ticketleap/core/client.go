// Package core owns the authenticated ticketleap session: login, cookie and
// CSRF lifecycle, page fetches and form submissions.
package core

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"ticketleap-admin/lib/restyutil"
	"ticketleap-admin/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/ticketleap/core")

const DefaultLoginUrl = "https://www.ticketleap.com"

const (
	loginPath = "/login/"
	adminPath = "/admin/"
)

var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

type ClientOptions struct {
	// defaults to DefaultLoginUrl
	LoginUrl string
	// requests per second, defaults to 2
	RateLimit float64
	// defaults to 30 seconds
	Timeout time.Duration
	// rejected exchanges are always written here, every exchange is
	// written while debug logging is enabled. can be nil.
	Output restyutil.InstrumentOutput
}

// Session is an authenticated browser session on one ticketleap account.
// It is created by Login and replaced wholesale by logging in again.
type Session struct {
	// scheme and host of the account's admin site, like
	// https://<account>.ticketleap.com
	Origin *url.URL
	Http   *resty.Client

	loginPage   *url.URL
	output      restyutil.InstrumentOutput
	submitMutex sync.Mutex
}

// registrableDomain returns the domain redirects are allowed to stay
// within, "ticketleap.com" for "www.ticketleap.com".
func registrableDomain(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

func domainRedirectPolicy(host string) resty.RedirectPolicy {
	domain := registrableDomain(host)
	return resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		target := req.URL.Hostname()
		if target == domain || strings.HasSuffix(target, "."+domain) {
			return nil
		}
		return fmt.Errorf("refusing redirect to %s, outside of %s", target, domain)
	})
}

func newHttpClient(loginUrl *url.URL, opts ClientOptions) (*resty.Client, error) {
	client := resty.New()
	client.SetBaseURL(loginUrl.String())
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeaders(defaultHeaders)
	client.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(10),
		domainRedirectPolicy(loginUrl.Hostname()),
	)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	requestsPerSecond := opts.RateLimit
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	// max burst >= 1 just means that no requests will be dropped
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	rateLimiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, "scrapers/ticketleap/http")
	restyutil.InstrumentClient(client, opts.Output)

	return client, nil
}

func finalUrl(res *resty.Response) *url.URL {
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		return res.RawResponse.Request.URL
	}
	parsed, err := url.Parse(res.Request.URL)
	if err != nil {
		return &url.URL{}
	}
	return parsed
}

func parseDocument(res *resty.Response) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, err
	}
	doc.Url = finalUrl(res)
	return doc, nil
}

func cookieValue(client *resty.Client, target *url.URL, name string) string {
	jar := client.GetClient().Jar
	if jar == nil {
		return ""
	}
	for _, cookie := range jar.Cookies(target) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

// Login authenticates against the login page and returns a session bound
// to the account origin the platform redirected to.
func Login(ctx context.Context, opts ClientOptions, username, password string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	rawLoginUrl := opts.LoginUrl
	if rawLoginUrl == "" {
		rawLoginUrl = DefaultLoginUrl
	}
	loginUrl, err := url.Parse(rawLoginUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse login url")
		return nil, err
	}
	loginPage := loginUrl.ResolveReference(&url.URL{Path: loginPath})

	client, err := newHttpClient(loginUrl, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create http client")
		return nil, err
	}

	res, err := client.R().
		SetContext(ctx).
		Get(loginPage.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return nil, &TransportError{Method: http.MethodGet, Url: loginPage.String(), Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "login page returned an error status")
		return nil, &TransportError{Method: http.MethodGet, Url: loginPage.String(), Status: res.StatusCode()}
	}
	doc, err := parseDocument(res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse login page")
		return nil, err
	}

	csrfToken := cookieValue(client, loginPage, csrfCookie)
	if csrfToken == "" {
		csrfToken = doc.Find("input[name=csrfmiddlewaretoken]").AttrOr("value", "")
	}
	if csrfToken == "" {
		span.SetStatus(codes.Error, "failed to find csrf token")
		return nil, &MalformedPageError{Page: loginPage.String(), Landmark: "csrftoken"}
	}

	res, err = client.R().
		SetContext(ctx).
		SetHeader("Referer", loginPage.String()).
		SetFormData(map[string]string{
			csrfField:  csrfToken,
			"username": username,
			"password": password,
		}).
		Post(loginPage.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return nil, &TransportError{Method: http.MethodPost, Url: loginPage.String(), Err: err}
	}

	// the platform answers 200 for wrong credentials too, only the redirect
	// into the admin site means the login went through
	landed := finalUrl(res)
	span.SetAttributes(attribute.String("landed", landed.String()))
	if !strings.HasPrefix(landed.Path, adminPath) {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return nil, &AuthError{Err: ErrLoginFailed}
	}

	origin := &url.URL{Scheme: landed.Scheme, Host: landed.Host}
	client.SetBaseURL(origin.String())

	s := &Session{
		Origin:    origin,
		Http:      client,
		loginPage: loginPage,
		output:    opts.Output,
	}
	// later requests should look like they come from within the admin site
	s.Http.SetHeader("Referer", s.Url(adminPath))
	return s, nil
}

// Url resolves path against the account origin.
func (s *Session) Url(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return s.Origin.String() + path
	}
	return s.Origin.ResolveReference(ref).String()
}

// CSRFToken returns the current token from the cookie jar. The platform may
// rotate it, so it is read on every submission.
func (s *Session) CSRFToken() string {
	token := cookieValue(s.Http, s.Origin, csrfCookie)
	if token != "" {
		return token
	}
	// host-only cookie set by the login page
	return cookieValue(s.Http, s.loginPage, csrfCookie)
}
