package testutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const (
	csrfCookie    = "csrftoken"
	sessionCookie = "sessionid"
	csrfField     = "csrfmiddlewaretoken"
	mediaHost     = "https://ticketleap-media-master.s3.amazonaws.com"
	dateRowLayout = "01/02/2006 03:04 PM"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func (p *FakePlatform) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login/{$}", p.loginPage)
	mux.HandleFunc("POST /login/{$}", p.login)

	mux.HandleFunc("GET /admin/{$}", p.authed(p.dashboard))
	mux.HandleFunc("GET /admin/events", p.authed(p.eventList))
	mux.HandleFunc("GET /admin/events/{a}/{b}", p.authed(p.eventPage))
	mux.HandleFunc("POST /admin/events/{a}/{b}", p.authed(p.csrf(p.cloneEvent)))
	mux.HandleFunc("POST /admin/events/create", p.authed(p.csrf(p.createEvent)))
	mux.HandleFunc("POST /admin/events/{slug}/details/modify-post-purchase-message", p.authed(p.csrf(p.postPurchaseMessage)))

	mux.HandleFunc("GET /admin/events/{slug}/performance/{date}/tickets/{$}", p.authed(p.ticketList))
	mux.HandleFunc("GET /admin/events/{slug}/performance/{date}/tickets/edit/{$}", p.authed(p.ticketsForm))
	mux.HandleFunc("POST /admin/events/{slug}/performance/{date}/tickets/edit/{$}", p.authed(p.csrf(p.saveTickets)))
	mux.HandleFunc("GET /admin/events/{slug}/performance/{date}/ticket/{ticket}/edit/{$}", p.authed(p.ticketForm))
	mux.HandleFunc("POST /admin/events/{slug}/performance/{date}/ticket/{ticket}/edit/{$}", p.authed(p.csrf(p.saveTicket)))
	mux.HandleFunc("GET /admin/events/{slug}/performance/{date}/ticket/{ticket}/delete/{$}", p.authed(p.deleteTicket))

	mux.HandleFunc("POST /admin/galleries/media/create", p.authed(p.csrf(p.uploadImage)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		mux.ServeHTTP(w, r)
	})
}

func csrfToken(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (p *FakePlatform) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		p.mutex.Lock()
		ok := err == nil && p.sessions[cookie.Value]
		p.mutex.Unlock()
		if !ok {
			target := "/login/?next=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next(w, r)
	}
}

func (p *FakePlatform) csrf(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseMultipartForm(32 << 20)
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		expected := csrfToken(r)
		given := r.PostForm.Get(csrfField)
		if given == "" {
			given = r.Header.Get("X-CSRFToken")
		}
		if expected == "" || given != expected {
			http.Error(w, "CSRF verification failed. Request aborted.", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func writeJson(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		panic(err)
	}
}

type loginData struct {
	Token  string
	Errors []string
}

func (p *FakePlatform) loginPage(w http.ResponseWriter, r *http.Request) {
	token := csrfToken(r)
	if token == "" {
		token = strings.ReplaceAll(newUuid(), "-", "")
		http.SetCookie(w, &http.Cookie{Name: csrfCookie, Value: token, Path: "/"})
	}
	render(w, http.StatusOK, "login", loginData{Token: token})
}

func (p *FakePlatform) login(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token := csrfToken(r)
	if token == "" || r.PostForm.Get(csrfField) != token {
		http.Error(w, "CSRF verification failed. Request aborted.", http.StatusForbidden)
		return
	}

	if r.PostForm.Get("username") != Username || r.PostForm.Get("password") != Password {
		render(w, http.StatusOK, "login", loginData{
			Token:  token,
			Errors: []string{"Please enter a correct username and password."},
		})
		return
	}

	session := newUuid()
	p.mutex.Lock()
	p.sessions[session] = true
	p.mutex.Unlock()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: session, Path: "/", HttpOnly: true})
	http.Redirect(w, r, "/admin/", http.StatusFound)
}

func (p *FakePlatform) dashboard(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "dashboard", nil)
}

type eventRow struct {
	Title     string
	Href      string
	CloneHref string
}

func (p *FakePlatform) eventList(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	rows := make([]eventRow, len(p.events))
	for i, e := range p.events {
		href := "/admin/events/" + e.Slug + "/details"
		if len(e.Dates) > 0 {
			href += "?d=" + e.Dates[0].Start.Format("Jan-2-2006_at_0304PM")
		}
		rows[i] = eventRow{
			Title:     e.Title,
			Href:      href,
			CloneHref: "#dialog=/admin/events/clone/" + e.Uuid,
		}
	}
	render(w, http.StatusOK, "events", map[string]any{
		"Events": rows,
		"Clone":  !p.drift.EventsWithoutClone,
	})
}

func (p *FakePlatform) eventPage(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")

	p.mutex.Lock()
	defer p.mutex.Unlock()

	switch {
	case a == "clone":
		source := p.eventByUuid(b)
		if source == nil {
			http.NotFound(w, r)
			return
		}
		render(w, http.StatusOK, "form", cloneForm(csrfToken(r), source, nil))
	case b == "details":
		e := p.event(a)
		if e == nil {
			http.NotFound(w, r)
			return
		}
		render(w, http.StatusOK, "details", map[string]any{
			"Title":    e.Title,
			"Dates":    e.Dates,
			"Dropdown": !p.drift.DetailsWithoutDates,
		})
	default:
		http.NotFound(w, r)
	}
}

func cloneForm(token string, source *Event, errs []string) formPage {
	controls := []Control{
		{Name: "title", Kind: "text", Value: source.Title},
		{Name: "slug", Kind: "text", Value: source.Slug},
		{Name: "copy_tickets", Kind: "checkbox", Checked: true},
	}
	controls = append(controls, managementControls("dates", len(source.Dates), 0)...)
	for i, d := range source.Dates {
		controls = append(controls, dateControls(i, d)...)
	}
	return formPage{Name: "clone", Token: token, Errors: errs, Controls: controls}
}

func dateControls(index int, d Date) []Control {
	prefix := fmt.Sprintf("dates-%d-", index)
	part := func(t time.Time) (string, string, string) {
		return t.Format("01/02/2006"), t.Format("03:04"), strings.ToLower(t.Format("PM"))
	}
	startDate, startTime, startAmpm := part(d.Start)
	endDate, endTime, endAmpm := part(d.End)
	return []Control{
		{Name: prefix + "start_date", Kind: "text", Value: startDate},
		{Name: prefix + "start_time", Kind: "text", Value: startTime},
		selectControl(prefix+"start_ampm", startAmpm, []string{"am", "pm"}),
		{Name: prefix + "end_date", Kind: "text", Value: endDate},
		{Name: prefix + "end_time", Kind: "text", Value: endTime},
		selectControl(prefix+"end_ampm", endAmpm, []string{"am", "pm"}),
	}
}

func formsetTotal(form url.Values, prefix string) (int, error) {
	total, err := strconv.Atoi(form.Get(prefix + "-TOTAL_FORMS"))
	if err != nil {
		return 0, fmt.Errorf("ManagementForm data is missing or has been tampered with")
	}
	return total, nil
}

func parseDateRows(form url.Values) ([]Date, error) {
	total, err := formsetTotal(form, "dates")
	if err != nil {
		return nil, err
	}
	parse := func(prefix, which string) (time.Time, error) {
		text := fmt.Sprintf(
			"%s %s %s",
			form.Get(prefix+which+"_date"),
			form.Get(prefix+which+"_time"),
			strings.ToUpper(form.Get(prefix+which+"_ampm")),
		)
		return time.Parse(dateRowLayout, text)
	}

	dates := make([]Date, total)
	for i := 0; i < total; i++ {
		prefix := fmt.Sprintf("dates-%d-", i)
		start, err := parse(prefix, "start")
		if err != nil {
			return nil, fmt.Errorf("Enter a valid date.")
		}
		end, err := parse(prefix, "end")
		if err != nil {
			return nil, fmt.Errorf("Enter a valid date.")
		}
		if end.Before(start) {
			return nil, fmt.Errorf("The end of a date must be after its start.")
		}
		dates[i] = Date{Uuid: newUuid(), Start: start, End: end}
	}
	return dates, nil
}

func (p *FakePlatform) slugTaken(slug string) bool {
	return p.event(slug) != nil
}

func (p *FakePlatform) cloneEvent(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")
	if a != "clone" {
		http.NotFound(w, r)
		return
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	source := p.eventByUuid(b)
	if source == nil {
		http.NotFound(w, r)
		return
	}

	title := r.PostForm.Get("title")
	slug := r.PostForm.Get("slug")
	var errs []string
	if title == "" {
		errs = append(errs, "Title: This field is required.")
	}
	if slug == "" || p.slugTaken(slug) {
		errs = append(errs, "Event with this slug already exists.")
	}
	dates, err := parseDateRows(r.PostForm)
	if err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		render(w, http.StatusOK, "form", cloneForm(csrfToken(r), source, errs))
		return
	}

	clone := &Event{
		Uuid:                newUuid(),
		Slug:                slug,
		Title:               title,
		Fields:              map[string]string{},
		PostPurchaseMessage: source.PostPurchaseMessage,
	}
	for k, v := range source.Fields {
		clone.Fields[k] = v
	}
	clone.Fields["title"] = title
	clone.Fields["slug"] = slug

	var template []Ticket
	if r.PostForm.Get("copy_tickets") == "on" && len(source.Dates) > 0 {
		template = source.Dates[0].Tickets
	}
	for i := range dates {
		for _, t := range template {
			copied := copyTicket(t)
			copied.Uuid = newUuid()
			dates[i].Tickets = append(dates[i].Tickets, copied)
		}
	}
	clone.Dates = dates
	p.events = append(p.events, clone)

	http.Redirect(w, r, "/admin/events/"+slug+"/details", http.StatusFound)
}

func ticketRow(form url.Values, prefix string) map[string]string {
	fields := map[string]string{}
	for _, f := range TicketFields {
		fields[f] = form.Get(prefix + f)
	}
	return fields
}

func validateTicket(fields map[string]string) []string {
	var errs []string
	if fields["name"] == "" {
		errs = append(errs, "Name: This field is required.")
	}
	if fields["pricing_type"] == "fixed" && fields["price"] != "" {
		_, err := strconv.ParseFloat(fields["price"], 64)
		if err != nil {
			errs = append(errs, "Price: Enter a number.")
		}
	}
	if fields["limit_inventory"] == "on" {
		_, err := strconv.Atoi(fields["inventory"])
		if err != nil {
			errs = append(errs, "Inventory: Enter a whole number.")
		}
	}
	return errs
}

func (p *FakePlatform) createEvent(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	form := r.PostForm
	title := form.Get("title")
	slug := form.Get("slug")

	var errs []string
	if title == "" {
		errs = append(errs, "Title: This field is required.")
	}
	if slug == "" || p.slugTaken(slug) {
		errs = append(errs, "Event with this slug already exists.")
	}
	if form.Get("hero_image_url") == "" {
		errs = append(errs, "Please upload an event image.")
	}
	dates, err := parseDateRows(form)
	if err != nil {
		errs = append(errs, err.Error())
	}
	var tickets []Ticket
	total, err := formsetTotal(form, "tickets")
	if err != nil {
		errs = append(errs, err.Error())
	}
	for i := 0; i < total; i++ {
		fields := ticketRow(form, fmt.Sprintf("tickets-%d-", i))
		errs = append(errs, validateTicket(fields)...)
		tickets = append(tickets, Ticket{Fields: fields})
	}
	if len(errs) > 0 {
		render(w, http.StatusOK, "form", formPage{Name: "create", Token: csrfToken(r), Errors: errs})
		return
	}

	e := &Event{
		Uuid:   newUuid(),
		Slug:   slug,
		Title:  title,
		Fields: map[string]string{},
	}
	for name, values := range form {
		if strings.HasPrefix(name, "dates-") || strings.HasPrefix(name, "tickets-") || name == csrfField {
			continue
		}
		e.Fields[name] = values[0]
	}
	for i := range dates {
		for _, t := range tickets {
			copied := copyTicket(t)
			copied.Uuid = newUuid()
			dates[i].Tickets = append(dates[i].Tickets, copied)
		}
	}
	e.Dates = dates
	p.events = append(p.events, e)

	http.Redirect(w, r, "/admin/events/"+slug+"/details", http.StatusFound)
}

func (p *FakePlatform) postPurchaseMessage(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	e := p.event(r.PathValue("slug"))
	if e == nil {
		http.NotFound(w, r)
		return
	}
	e.PostPurchaseMessage = r.PostForm.Get("post_purchase_message")
	writeJson(w, http.StatusOK, map[string]any{"success": true})
}

func (p *FakePlatform) requestDate(w http.ResponseWriter, r *http.Request) *Date {
	date := p.date(r.PathValue("slug"), r.PathValue("date"))
	if date == nil {
		http.NotFound(w, r)
	}
	return date
}

func (p *FakePlatform) ticketList(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	date := p.requestDate(w, r)
	if date == nil {
		return
	}
	render(w, http.StatusOK, "tickets", date.Tickets)
}

func ticketsForm(name, token string, date *Date, errs []string) formPage {
	controls := managementControls("tickets", len(date.Tickets), len(date.Tickets))
	for i, t := range date.Tickets {
		prefix := fmt.Sprintf("tickets-%d-", i)
		controls = append(controls, hidden(prefix+"id", t.Uuid))
		controls = append(controls, ticketControls(prefix, t.Fields)...)
	}
	return formPage{Name: name, Token: token, Errors: errs, Controls: controls}
}

func (p *FakePlatform) ticketsFormName() string {
	if p.drift.RenameTicketsForm {
		return "ticket-types"
	}
	return "tickets"
}

func (p *FakePlatform) ticketsForm(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	date := p.requestDate(w, r)
	if date == nil {
		return
	}
	render(w, http.StatusOK, "form", ticketsForm(p.ticketsFormName(), csrfToken(r), date, nil))
}

func (p *FakePlatform) saveTickets(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	date := p.requestDate(w, r)
	if date == nil {
		return
	}
	form := r.PostForm
	total, err := formsetTotal(form, "tickets")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	initial, _ := strconv.Atoi(form.Get("tickets-INITIAL_FORMS"))

	var errs []string
	updated := make([]Ticket, 0, total)
	for i := 0; i < total; i++ {
		prefix := fmt.Sprintf("tickets-%d-", i)
		fields := ticketRow(form, prefix)
		errs = append(errs, validateTicket(fields)...)

		id := form.Get(prefix + "id")
		if i < initial {
			found := false
			for _, existing := range date.Tickets {
				found = found || existing.Uuid == id
			}
			if !found {
				errs = append(errs, "Ticket does not exist.")
			}
			updated = append(updated, Ticket{Uuid: id, Fields: fields})
			continue
		}
		updated = append(updated, Ticket{Uuid: newUuid(), Fields: fields})
	}
	if len(errs) > 0 {
		render(w, http.StatusOK, "form", ticketsForm(p.ticketsFormName(), csrfToken(r), date, errs))
		return
	}

	// rows left out of the submission are kept as they were
	for _, existing := range date.Tickets {
		submitted := false
		for _, t := range updated {
			submitted = submitted || t.Uuid == existing.Uuid
		}
		if !submitted {
			updated = append(updated, existing)
		}
	}
	date.Tickets = updated

	http.Redirect(w, r, "/admin/events/"+r.PathValue("slug")+"/details", http.StatusFound)
}

func (d *Date) ticket(id string) *Ticket {
	for i := range d.Tickets {
		if d.Tickets[i].Uuid == id {
			return &d.Tickets[i]
		}
	}
	return nil
}

func (p *FakePlatform) ticketForm(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	date := p.requestDate(w, r)
	if date == nil {
		return
	}
	ticket := date.ticket(r.PathValue("ticket"))
	if ticket == nil {
		http.NotFound(w, r)
		return
	}

	controls := []Control{hidden("dates", date.Uuid)}
	controls = append(controls, ticketControls("", ticket.Fields)...)
	render(w, http.StatusOK, "form", formPage{Name: "ticket", Token: csrfToken(r), Controls: controls})
}

func (p *FakePlatform) saveTicket(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	date := p.requestDate(w, r)
	if date == nil {
		return
	}
	ticket := date.ticket(r.PathValue("ticket"))
	if ticket == nil {
		http.NotFound(w, r)
		return
	}

	fields := ticketRow(r.PostForm, "")
	errs := validateTicket(fields)
	if len(errs) > 0 {
		controls := []Control{hidden("dates", date.Uuid)}
		controls = append(controls, ticketControls("", fields)...)
		render(w, http.StatusOK, "form", formPage{Name: "ticket", Token: csrfToken(r), Errors: errs, Controls: controls})
		return
	}
	ticket.Fields = fields

	http.Redirect(w, r, "/admin/events/"+r.PathValue("slug")+"/details", http.StatusFound)
}

func (p *FakePlatform) deleteTicket(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("submit") != "delete" {
		http.Error(w, "missing confirmation", http.StatusBadRequest)
		return
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	date := p.requestDate(w, r)
	if date == nil {
		return
	}
	id := r.PathValue("ticket")
	if p.sold[id] {
		writeJson(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Tickets that have been sold cannot be deleted.",
		})
		return
	}
	for i, t := range date.Tickets {
		if t.Uuid == id {
			date.Tickets = append(date.Tickets[:i], date.Tickets[i+1:]...)
			writeJson(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	http.NotFound(w, r)
}

func (p *FakePlatform) uploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image_file")
	if err != nil {
		writeJson(w, http.StatusBadRequest, map[string]any{"error": "no image uploaded"})
		return
	}
	defer file.Close()

	_, err = imaging.Decode(file)
	if err != nil {
		writeJson(w, http.StatusBadRequest, map[string]any{"error": "invalid image"})
		return
	}

	id := newUuid()
	image := Image{
		Id:       id,
		FileName: header.Filename,
		FullUrl:  fmt.Sprintf("%s/%s/full.jpg", mediaHost, id),
		HeroUrl:  fmt.Sprintf("%s/%s/hero.jpg", mediaHost, id),
	}
	p.mutex.Lock()
	p.images = append(p.images, image)
	p.mutex.Unlock()

	writeJson(w, http.StatusOK, map[string]any{
		"medium": map[string]any{
			"id":       id,
			"full_url": image.FullUrl,
			"hero_url": image.HeroUrl,
		},
	})
}
