package folio

import (
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() SubmissionRequest {
	return SubmissionRequest{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Story: "I want to talk about analytical engines and poetry.",
	}
}

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	require.Error(t, err)
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	return verrs
}

func TestSubmissionRequestValid(t *testing.T) {
	r := validRequest()
	r.SocialLinks = []string{"https://example.com/ada"}
	assert.NoError(t, r.Validate())

	phoneOnly := validRequest()
	phoneOnly.Email = ""
	phoneOnly.Phone = "+1 (555) 010-9999"
	assert.NoError(t, phoneOnly.Validate())
}

func TestSubmissionRequestRequiresContact(t *testing.T) {
	r := validRequest()
	r.Email = ""
	verrs := fieldErrors(t, r.Validate())
	assert.Contains(t, verrs, "email")
}

func TestSubmissionRequestPreferredContact(t *testing.T) {
	r := validRequest()
	r.PreferredContact = ContactPhone
	verrs := fieldErrors(t, r.Validate())
	assert.Contains(t, verrs, "phone")

	r = validRequest()
	r.PreferredContact = "pigeon"
	verrs = fieldErrors(t, r.Validate())
	assert.Contains(t, verrs, "preferred_contact")
}

func TestSubmissionRequestFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmissionRequest)
		field  string
	}{
		{"name required", func(r *SubmissionRequest) { r.Name = "" }, "name"},
		{"name too short", func(r *SubmissionRequest) { r.Name = "A" }, "name"},
		{"bad email", func(r *SubmissionRequest) { r.Email = "not-an-email" }, "email"},
		{"bad phone", func(r *SubmissionRequest) { r.Phone = "call me" }, "phone"},
		{"story too short", func(r *SubmissionRequest) { r.Story = "short" }, "story"},
		{"story too long", func(r *SubmissionRequest) { r.Story = strings.Repeat("a", 5001) }, "story"},
		{"too many links", func(r *SubmissionRequest) {
			r.SocialLinks = []string{"https://a.com", "https://b.com", "https://c.com", "https://d.com", "https://e.com", "https://f.com"}
		}, "social_links"},
		{"non-http link", func(r *SubmissionRequest) { r.SocialLinks = []string{"ftp://example.com/file"} }, "social_links"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			verrs := fieldErrors(t, r.Validate())
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestSubmissionRequestNormalize(t *testing.T) {
	r := SubmissionRequest{
		Name:             "  Ada ",
		Email:            " ADA@Example.COM ",
		PreferredContact: " Email ",
		SocialLinks:      []string{"", " https://example.com "},
	}
	r.normalize()
	assert.Equal(t, "Ada", r.Name)
	assert.Equal(t, "ada@example.com", r.Email)
	assert.Equal(t, ContactEmail, r.PreferredContact)
	assert.Equal(t, []string{"https://example.com"}, r.SocialLinks)
}

func TestSubmissionRequestDefaultContact(t *testing.T) {
	r := validRequest()
	assert.Equal(t, ContactEmail, r.submission().PreferredContact)

	r.Email = ""
	r.Phone = "+15550100"
	assert.Equal(t, ContactPhone, r.submission().PreferredContact)

	r.PreferredContact = ContactEither
	assert.Equal(t, ContactEither, r.submission().PreferredContact)
}
