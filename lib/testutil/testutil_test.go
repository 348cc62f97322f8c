package testutil

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func newBrowser(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func login(t *testing.T, p *FakePlatform, client *http.Client, password string) *http.Response {
	res, err := client.Get(p.Url() + "/login/")
	require.NoError(t, err)
	res.Body.Close()

	base, err := url.Parse(p.Url())
	require.NoError(t, err)
	token := ""
	for _, c := range client.Jar.Cookies(base) {
		if c.Name == csrfCookie {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)

	res, err = client.PostForm(p.Url()+"/login/", url.Values{
		csrfField:  {token},
		"username": {Username},
		"password": {password},
	})
	require.NoError(t, err)
	return res
}

func TestLogin(t *testing.T) {
	p := NewFakePlatform(t)
	client := newBrowser(t)

	res := login(t, p, client, "wrong")
	res.Body.Close()
	require.Equal(t, "/login/", res.Request.URL.Path)

	res = login(t, p, client, Password)
	res.Body.Close()
	require.Equal(t, "/admin/", res.Request.URL.Path)

	p.ExpireSessions()
	res, err := client.Get(p.Url() + "/admin/events")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, "/login/", res.Request.URL.Path)
}

func TestEventPages(t *testing.T) {
	p := NewFakePlatform(t)
	start := time.Date(2019, time.September, 29, 13, 0, 0, 0, time.UTC)
	event := p.AddEvent("spring-gala", "Spring Gala", start)
	p.AddTicket("spring-gala", event.Dates[0].Uuid, "General Admission", "20")

	client := newBrowser(t)
	login(t, p, client, Password).Body.Close()

	res, err := client.Get(p.Url() + "/admin/events")
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	require.Equal(t,
		"/admin/events/spring-gala/details?d=Sep-29-2019_at_0100PM",
		doc.Find("a[title=Manage]").AttrOr("href", ""),
	)
	require.Equal(t,
		"#dialog=/admin/events/clone/"+event.Uuid,
		doc.Find("a[title=Clone]").AttrOr("href", ""),
	)

	res, err = client.Get(p.Url() + "/admin/events/spring-gala/details")
	require.NoError(t, err)
	doc, err = goquery.NewDocumentFromReader(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	item := doc.Find("div.dropdown.hide li")
	require.Equal(t, event.Dates[0].Uuid, item.AttrOr("id", ""))
	require.Equal(t, "Sep 29, 2019 1:00p.m.-3:00p.m.", strings.TrimSpace(item.Text()))

	p.SetDrift(Drift{DetailsWithoutDates: true})
	res, err = client.Get(p.Url() + "/admin/events/spring-gala/details")
	require.NoError(t, err)
	doc, err = goquery.NewDocumentFromReader(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	require.Equal(t, 0, doc.Find("div.dropdown").Length())

	res, err = client.Get(p.Url() + "/admin/events/missing/details")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCsrfRequired(t *testing.T) {
	p := NewFakePlatform(t)
	event := p.AddEvent("spring-gala", "Spring Gala", time.Date(2019, time.September, 29, 13, 0, 0, 0, time.UTC))

	client := newBrowser(t)
	login(t, p, client, Password).Body.Close()

	res, err := client.PostForm(p.Url()+"/admin/events/clone/"+event.Uuid, url.Values{"title": {"Copy"}})
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	require.Equal(t, 1, p.CountRequests(http.MethodPost, "/admin/events/clone/"))
}

func TestDateText(t *testing.T) {
	start := time.Date(2019, time.September, 29, 23, 0, 0, 0, time.UTC)
	d := Date{Start: start, End: start.Add(2 * time.Hour)}
	require.Equal(t, "Sep 29, 2019 11:00p.m.-Sep 30, 2019 1:00a.m.", d.Text())
}
