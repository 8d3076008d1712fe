package folio

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/mail"
)

// Submission limits.
const (
	MaxSocialLinks = 5
	submitMax      = 5
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]{5,31}$`)

// SubmissionRequest is the public TMP intake form.
type SubmissionRequest struct {
	Name             string   `json:"name" form:"name"`
	Email            string   `json:"email" form:"email"`
	Phone            string   `json:"phone" form:"phone"`
	Story            string   `json:"story" form:"story"`
	PreferredContact string   `json:"preferred_contact" form:"preferred_contact"`
	Availability     string   `json:"availability" form:"availability"`
	Timezone         string   `json:"timezone" form:"timezone"`
	SocialLinks      []string `json:"social_links" form:"social_links"`
}

func (r *SubmissionRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Story = strings.TrimSpace(r.Story)
	r.PreferredContact = strings.ToLower(strings.TrimSpace(r.PreferredContact))
	r.Availability = strings.TrimSpace(r.Availability)
	r.Timezone = strings.TrimSpace(r.Timezone)
	r.SocialLinks = FilterEmpty(r.SocialLinks)
}

// Validate checks the request. Email is required unless a phone number is
// given, and a phone number is required when it is the preferred contact.
func (r SubmissionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(2, 100),
		),
		validation.Field(&r.Email,
			validation.When(r.Phone == "", validation.Required.Error("email or phone is required")),
			validation.When(r.PreferredContact == ContactEmail, validation.Required.Error("email is required when it is the preferred contact")),
			is.EmailFormat,
			validation.Length(0, 254),
		),
		validation.Field(&r.Phone,
			validation.When(r.PreferredContact == ContactPhone, validation.Required.Error("phone is required when it is the preferred contact")),
			validation.Match(phonePattern).Error("must be a valid phone number"),
		),
		validation.Field(&r.Story,
			validation.Required.Error("story is required"),
			validation.RuneLength(20, 5000),
		),
		validation.Field(&r.PreferredContact,
			validation.In(ContactEmail, ContactPhone, ContactEither),
		),
		validation.Field(&r.Availability, validation.RuneLength(0, 500)),
		validation.Field(&r.Timezone, validation.RuneLength(0, 64)),
		validation.Field(&r.SocialLinks,
			validation.Length(0, MaxSocialLinks),
			validation.Each(is.URL, validation.By(httpURL), validation.Length(0, 2048)),
		),
	)
}

// httpURL rejects links that are not absolute http(s) URLs.
func httpURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http or https URL")
	}
	return nil
}

func (r SubmissionRequest) submission() Submission {
	contact := r.PreferredContact
	if contact == "" {
		contact = ContactEmail
		if r.Email == "" {
			contact = ContactPhone
		}
	}
	return Submission{
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Story:            r.Story,
		PreferredContact: contact,
		Availability:     r.Availability,
		Timezone:         r.Timezone,
		SocialLinks:      r.SocialLinks,
	}
}

func (a *App) apiCreateSubmission(c echo.Context) error {
	if !a.submitLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many submissions, try again later")
	}
	var req SubmissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	sub, err := a.Store.CreateSubmission(req.submission())
	if err != nil {
		return err
	}
	a.Log.Info("submission received", zap.String("id", sub.ID), zap.String("contact", sub.PreferredContact))
	a.notifySubmission(c.Request().Context(), sub)
	return c.JSON(http.StatusCreated, sub)
}

// notifySubmission queues the admin notification and the submitter
// confirmation. Failures are logged; the submission is already stored.
func (a *App) notifySubmission(ctx context.Context, sub Submission) {
	ms := mail.Submission{
		ID:               sub.ID,
		Name:             sub.Name,
		Email:            sub.Email,
		Phone:            sub.Phone,
		Story:            sub.Story,
		PreferredContact: sub.PreferredContact,
		Availability:     sub.Availability,
		Timezone:         sub.Timezone,
		SocialLinks:      sub.SocialLinks,
		CreatedAt:        sub.CreatedAt,
	}
	site := a.Config.mailSite()
	builders := []struct {
		kind  string
		build func(mail.Submission, mail.Site) (mail.Message, error)
	}{
		{"notification", mail.SubmissionNotification},
		{"confirmation", mail.SubmissionConfirmation},
	}
	for _, b := range builders {
		kind := b.kind
		msg, err := b.build(ms, site)
		if err != nil {
			a.Log.Error("build submission email", zap.String("kind", kind), zap.String("id", sub.ID), zap.Error(err))
			continue
		}
		if len(msg.To) == 0 {
			continue
		}
		if err := a.outbox.Enqueue(ctx, msg); err != nil {
			a.Log.Error("queue submission email", zap.String("kind", kind), zap.String("id", sub.ID), zap.Error(err))
		}
	}
}
