package testutil

import (
	"html/template"
	"net/http"
)

var pages = template.Must(template.New("pages").Parse(`
{{define "control"}}
{{- if eq .Kind "checkbox"}}<input type="checkbox" name="{{.Name}}"{{if .Checked}} checked{{end}}>
{{- else if eq .Kind "select"}}<select name="{{.Name}}">{{range .Options}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}</select>
{{- else if eq .Kind "textarea"}}<textarea name="{{.Name}}">{{.Value}}</textarea>
{{- else}}<input type="{{.Kind}}" name="{{.Name}}" value="{{.Value}}">
{{- end}}
{{end}}

{{define "errors"}}{{if .}}<ul class="errorlist">{{range .}}<li>{{.}}</li>{{end}}</ul>{{end}}{{end}}

{{define "login"}}<!DOCTYPE html>
<html><head><title>Log in | TicketLeap</title></head><body>
{{template "errors" .Errors}}
<form name="login" method="post" action="/login/">
<input type="hidden" name="csrfmiddlewaretoken" value="{{.Token}}">
<input type="text" name="username">
<input type="password" name="password">
<input type="submit" value="Log in">
</form>
</body></html>{{end}}

{{define "dashboard"}}<!DOCTYPE html>
<html><body><div id="admin-dashboard"><a href="/admin/events">Events</a></div></body></html>{{end}}

{{define "events"}}<!DOCTYPE html>
<html><body>
<table class="events">
{{range .Events}}<tr>
<td><a title="Manage" href="{{.Href}}">{{.Title}}</a></td>
{{if $.Clone}}<td><a title="Clone" href="{{.CloneHref}}">Clone</a></td>{{end}}
</tr>
{{end}}</table>
</body></html>{{end}}

{{define "details"}}<!DOCTYPE html>
<html><body>
<h1>{{.Title}}</h1>
{{if .Dropdown}}<div class="dropdown hide"><ul>
{{range .Dates}}<li id="{{.Uuid}}"><a href="#">{{.Text}}</a></li>
{{end}}</ul></div>{{end}}
</body></html>{{end}}

{{define "tickets"}}<table class="tickets">
{{range .}}<tr class="ticket-type" id="ticket-type-{{.Uuid}}">
<td>
	{{.Name}}
</td>
<td>{{index .Fields "price"}}</td>
</tr>
{{end}}</table>{{end}}

{{define "form"}}<!DOCTYPE html>
<html><body>
{{template "errors" .Errors}}
<form name="{{.Name}}" method="post" enctype="multipart/form-data">
<input type="hidden" name="csrfmiddlewaretoken" value="{{.Token}}">
{{range .Controls}}{{template "control" .}}
{{end}}<input type="submit" name="save" value="Save">
</form>
</body></html>{{end}}
`))

type Option struct {
	Value    string
	Selected bool
}

type Control struct {
	Name    string
	Kind    string
	Value   string
	Checked bool
	Options []Option
}

type formPage struct {
	Name     string
	Token    string
	Errors   []string
	Controls []Control
}

var ticketOptions = map[string][]string{
	"pricing_type":    {"fixed", "variable"},
	"visibility":      {"all", "hidden"},
	"delivery_method": {"ticket", "will_call"},
}

func selectControl(name, value string, choices []string) Control {
	c := Control{Name: name, Kind: "select"}
	found := false
	for _, choice := range choices {
		selected := choice == value
		found = found || selected
		c.Options = append(c.Options, Option{Value: choice, Selected: selected})
	}
	if !found && value != "" {
		c.Options = append(c.Options, Option{Value: value, Selected: true})
	}
	return c
}

func ticketControls(prefix string, fields map[string]string) []Control {
	var controls []Control
	for _, f := range TicketFields {
		name := prefix + f
		value := fields[f]
		switch {
		case f == "limit_inventory":
			controls = append(controls, Control{Name: name, Kind: "checkbox", Checked: value == "on"})
		case f == "description":
			controls = append(controls, Control{Name: name, Kind: "textarea", Value: value})
		case ticketOptions[f] != nil:
			controls = append(controls, selectControl(name, value, ticketOptions[f]))
		default:
			controls = append(controls, Control{Name: name, Kind: "text", Value: value})
		}
	}
	return controls
}

func hidden(name, value string) Control {
	return Control{Name: name, Kind: "hidden", Value: value}
}

func managementControls(prefix string, total, initial int) []Control {
	return []Control{
		hidden(prefix+"-TOTAL_FORMS", itoa(total)),
		hidden(prefix+"-INITIAL_FORMS", itoa(initial)),
		hidden(prefix+"-MIN_NUM_FORMS", "0"),
		hidden(prefix+"-MAX_NUM_FORMS", "1000"),
	}
}

func render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := pages.ExecuteTemplate(w, name, data)
	if err != nil {
		panic(err)
	}
}
