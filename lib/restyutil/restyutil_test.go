package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "secret-session"})
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`<ul class="errorlist"><li>This field is required.</li></ul>`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWriteRejected(t *testing.T) {
	srv := newServer(t)
	output := NewMemoryOutput()

	res, err := resty.New().R().
		SetHeader("X-CSRFToken", "secret-token").
		SetFormData(map[string]string{"name": "Adult"}).
		Post(srv.URL + "/admin/events/spring-gala/tickets/edit")
	require.NoError(t, err)

	id := WriteRejected(output, res)
	require.True(t, strings.HasPrefix(id, "rejected-"))

	dump := output.Messages()[id]
	require.Contains(t, dump, "---- REQUEST ----")
	require.Contains(t, dump, "POST "+srv.URL+"/admin/events/spring-gala/tickets/edit")
	require.Contains(t, dump, "name=Adult")
	require.Contains(t, dump, "X-Csrftoken: <redacted>")
	require.Contains(t, dump, "---- RESPONSE ----")
	require.Contains(t, dump, "400 ")
	require.Contains(t, dump, "This field is required.")
	require.NotContains(t, dump, "secret-token")
	require.NotContains(t, dump, "secret-session")

	require.Equal(t, "", WriteRejected(nil, res))
}

func TestLoginBodyRedacted(t *testing.T) {
	srv := newServer(t)
	output := NewMemoryOutput()

	res, err := resty.New().R().
		SetFormData(map[string]string{"username": "box-office", "password": "hunter2"}).
		Post(srv.URL + "/login/")
	require.NoError(t, err)

	id := WriteRejected(output, res)
	dump := output.Messages()[id]
	require.NotContains(t, dump, "hunter2")
	require.Contains(t, dump, "<redacted>")
}

func TestHeaderValues(t *testing.T) {
	headers := http.Header{
		"Cookie": {"a=1", "b=2"},
		"Accept": {"text/html"},
	}
	require.Equal(t, []string{"<redacted>", "<redacted>"}, HeaderValues(headers, "Cookie"))
	require.Equal(t, []string{"text/html"}, HeaderValues(headers, "Accept"))
}

func TestFilesystemOutput(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("1", "exchange")

	contents, err := os.ReadFile(filepath.Join(output.Directory(), "1"))
	require.NoError(t, err)
	require.Equal(t, "exchange", string(contents))
	require.FileExists(t, keep)
}

func TestRequestWithoutBody(t *testing.T) {
	srv := newServer(t)
	output := NewMemoryOutput()

	res, err := resty.New().R().Get(srv.URL + "/admin/events")
	require.NoError(t, err)
	require.Equal(t, "", RequestBody(res.Request.RawRequest))

	id := WriteRejected(output, res)
	require.Contains(t, output.Messages()[id], "GET "+srv.URL+"/admin/events")
}
