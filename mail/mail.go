// Package mail builds the HTML and plain-text emails sent for TMP
// submissions. Delivery is out of scope: messages are handed to an Outbox.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

// Site identifies the sender in every message.
type Site struct {
	Name       string
	URL        string
	AdminEmail string
}

// Submission is the part of a TMP submission the templates show.
type Submission struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	Story            string
	PreferredContact string
	Availability     string
	Timezone         string
	SocialLinks      []string
	CreatedAt        time.Time
}

// Message is a single email ready for delivery.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// Outbox accepts messages for later delivery.
type Outbox interface {
	Enqueue(ctx context.Context, msg Message) error
}

var funcs = template.FuncMap{
	"paragraphs": paragraphs,
	"contactBy": func(pref string) string {
		switch pref {
		case "phone":
			return "phone"
		case "email":
			return "email"
		}
		return "email or phone"
	},
}

var (
	notificationTpl = template.Must(template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/notification.html"))
	confirmationTpl = template.Must(template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/confirmation.html"))
)

type templateData struct {
	Subject    string
	Site       Site
	Submission Submission
	AdminURL   string
	Year       int
}

// SubmissionNotification builds the email telling the site owner about a
// new submission. It returns an empty Message when the site has no admin
// address.
func SubmissionNotification(sub Submission, site Site) (Message, error) {
	if site.AdminEmail == "" {
		return Message{}, nil
	}
	data := templateData{
		Subject:    fmt.Sprintf("New TMP submission from %s", oneLine(sub.Name)),
		Site:       site,
		Submission: sub,
		Year:       year(sub.CreatedAt),
	}
	if site.URL != "" && sub.ID != "" {
		data.AdminURL = strings.TrimRight(site.URL, "/") + "/admin/submissions/" + sub.ID + "/"
	}
	return build(notificationTpl, []string{site.AdminEmail}, data)
}

// SubmissionConfirmation builds the acknowledgement sent to the submitter.
// Submitters who left no email address get an empty Message.
func SubmissionConfirmation(sub Submission, site Site) (Message, error) {
	if sub.Email == "" {
		return Message{}, nil
	}
	data := templateData{
		Subject:    "We received your story",
		Site:       site,
		Submission: sub,
		Year:       year(sub.CreatedAt),
	}
	if site.Name != "" {
		data.Subject += " · " + site.Name
	}
	return build(confirmationTpl, []string{sub.Email}, data)
}

func build(tpl *template.Template, to []string, data templateData) (Message, error) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return Message{}, fmt.Errorf("mail: render %q: %w", data.Subject, err)
	}
	html := buf.String()
	text, err := textBody(html)
	if err != nil {
		return Message{}, fmt.Errorf("mail: text body: %w", err)
	}
	return Message{To: to, Subject: data.Subject, HTML: html, Text: text}, nil
}

// textBody derives the plain-text alternative from the rendered HTML.
func textBody(html string) (string, error) {
	conv := md.NewConverter("", true, nil)
	conv.Remove("head", "style", "hr")
	text, err := conv.ConvertString(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text) + "\n", nil
}

// paragraphs splits free text on blank lines.
func paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func year(t time.Time) int {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Year()
}
