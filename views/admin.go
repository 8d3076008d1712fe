package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

const timeFormat = "2006-01-02 15:04"

func csrfField(h *html, token string) {
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", token)
	h.raw(`>`)
}

// AdminLogin renders the password form.
func AdminLogin(site folio.SiteConfig) func(bool, string) templ.Component {
	return func(showError bool, csrfToken string) templ.Component {
		return adminLayout(site, "Sign in", false, component(func(h *html) {
			h.raw(`<form method="post" action="/admin/login/" class="mx-auto mt-24 max-w-sm space-y-4 rounded border bg-white p-6">`)
			h.raw(`<h1 class="text-xl font-semibold">Admin</h1>`)
			if showError {
				h.raw(`<p class="text-sm text-red-600" role="alert">Invalid password.</p>`)
			}
			csrfField(h, csrfToken)
			h.raw(`<input type="password" name="password" autocomplete="current-password" required autofocus class="w-full rounded border px-3 py-2" placeholder="Password">`)
			h.raw(`<button type="submit" class="w-full rounded bg-ink px-3 py-2 text-white">Sign in</button></form>`)
		}))
	}
}

// AdminDashboard lists posts, pages and submissions.
func AdminDashboard(d folio.AdminData) templ.Component {
	return adminLayout(d.Site, "Dashboard", false, component(func(h *html) {
		h.raw(`<header class="mb-8 flex items-center justify-between"><h1 class="text-2xl font-bold">Dashboard</h1>`)
		h.raw(`<div class="flex gap-3"><a class="rounded bg-ink px-3 py-1 text-white" href="/admin/posts/new/">New post</a>`)
		h.raw(`<form method="post" action="/admin/logout/">`)
		csrfField(h, d.CSRFToken)
		h.raw(`<button type="submit" class="rounded border px-3 py-1">Sign out</button></form></div></header>`)
		if d.Message != "" {
			h.raw(`<p class="mb-6 rounded bg-green-50 p-3 text-sm" role="status">`)
			h.text(d.Message)
			h.raw(`</p>`)
		}

		h.raw(`<section class="mb-10"><h2 class="mb-3 font-semibold">Posts</h2>`)
		if len(d.Posts) == 0 {
			h.raw(`<p class="text-stone-500">No posts yet.</p>`)
		} else {
			h.raw(`<table class="w-full text-sm"><thead><tr class="text-left"><th>Title</th><th>Status</th><th>Updated</th><th></th></tr></thead><tbody>`)
			for _, p := range d.Posts {
				h.raw(`<tr class="border-t"><td>`)
				h.text(p.Title)
				h.raw(`</td><td>`)
				h.text(string(p.Status))
				h.raw(`</td><td>`)
				h.text(p.UpdatedAt.Format(timeFormat))
				h.raw(`</td><td class="text-right"><a`)
				h.attr("href", "/admin/posts/"+PathEscape(p.Slug)+"/edit/")
				h.raw(`>Edit</a>`)
				if p.Status == folio.StatusPublished {
					h.raw(` · <a`)
					h.attr("href", p.Link())
					h.raw(`>View</a>`)
				}
				h.raw(`</td></tr>`)
			}
			h.raw(`</tbody></table>`)
		}
		h.raw(`</section>`)

		h.raw(`<section class="mb-10"><h2 class="mb-3 font-semibold">Pages</h2><ul class="space-y-1 text-sm">`)
		hasAbout := false
		for _, p := range d.Pages {
			if p.Slug == "about" {
				hasAbout = true
			}
			h.raw(`<li><a`)
			h.attr("href", "/admin/pages/"+PathEscape(p.Slug)+"/edit/")
			h.raw(`>`)
			title := p.Title
			if title == "" {
				title = p.Slug
			}
			h.text(title)
			h.raw(`</a></li>`)
		}
		if !hasAbout {
			h.raw(`<li><a href="/admin/pages/about/edit/">Create the About page</a></li>`)
		}
		h.raw(`</ul></section>`)

		h.raw(`<section><h2 class="mb-3 font-semibold">Submissions</h2>`)
		if len(d.Submissions) == 0 {
			h.raw(`<p class="text-stone-500">No submissions yet.</p>`)
		} else {
			h.raw(`<table class="w-full text-sm"><thead><tr class="text-left"><th>Name</th><th>Story</th><th>Contact</th><th>Status</th><th>Received</th></tr></thead><tbody>`)
			for _, s := range d.Submissions {
				h.raw(`<tr class="border-t"><td><a`)
				h.attr("href", "/admin/submissions/"+PathEscape(s.ID)+"/")
				h.raw(`>`)
				h.text(s.Name)
				h.raw(`</a></td><td class="text-stone-500">`)
				h.text(truncate(s.Story, 80))
				h.raw(`</td><td>`)
				if s.Email != "" {
					h.text(s.Email)
				} else {
					h.text(s.Phone)
				}
				h.raw(`</td><td>`)
				h.text(string(s.Status))
				h.raw(`</td><td>`)
				h.text(s.CreatedAt.Format(timeFormat))
				h.raw(`</td></tr>`)
			}
			h.raw(`</tbody></table>`)
		}
		h.raw(`</section>`)
	}))
}

var editorButtons = []struct {
	label, command, attr, value string
}{
	{"B", "toggleMark", "data-mark", "bold"},
	{"I", "toggleMark", "data-mark", "italic"},
	{"U", "toggleMark", "data-mark", "underline"},
	{"S", "toggleMark", "data-mark", "strikethrough"},
	{"Code", "toggleMark", "data-mark", "code"},
	{"H2", "setHeading", "data-level", "2"},
	{"H3", "setHeading", "data-level", "3"},
	{"List", "toggleBlock", "data-block", "bulleted-list"},
	{"1.", "toggleBlock", "data-block", "numbered-list"},
	{"Quote", "toggleBlock", "data-block", "block-quote"},
	{"Link", "wrapLink", "data-needs-url", "true"},
	{"Image", "insertImage", "data-needs-url", "true"},
	{"Embed", "insertEmbed", "data-needs-url", "true"},
	{"Table", "insertTable", "", ""},
	{"Undo", "undo", "", ""},
	{"Redo", "redo", "", ""},
}

func field(h *html, label, name, value string) {
	h.raw(`<label class="block text-sm">`)
	h.text(label)
	h.raw(`<input class="mt-1 w-full rounded border px-2 py-1"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(`></label>`)
}

// AdminEditor renders the rich text editor bound to an editor session.
func AdminEditor(d folio.EditorData) templ.Component {
	title := "New post"
	if d.Title != "" {
		title = d.Title
	} else if d.Kind == folio.KindPage {
		title = d.Slug
	}
	return adminLayout(d.Site, title, true, component(func(h *html) {
		h.raw(`<div`)
		h.attr("data-editor-session", d.SessionID)
		h.attr("data-csrf", d.CSRFToken)
		h.raw(` class="space-y-4"><header class="flex items-center justify-between"><a href="/admin/">&larr; Dashboard</a>`)
		h.raw(`<span data-editor-status class="text-sm text-stone-500"></span></header>`)

		h.raw(`<form data-editor-save class="grid gap-3 md:grid-cols-2">`)
		field(h, "Title", "title", d.Title)
		if d.Kind == folio.KindPost {
			if d.Slug == "" {
				field(h, "Slug", "slug", "")
			}
			field(h, "Category", "category", d.Post.Category)
			field(h, "Tags", "tags", folio.JoinTags(d.Post.Tags))
			field(h, "Cover image URL", "cover_image", d.Post.CoverImage)
			field(h, "Excerpt", "excerpt", d.Post.Excerpt)
			h.raw(`<label class="block text-sm">Status<select name="status" class="mt-1 w-full rounded border px-2 py-1">`)
			for _, st := range []folio.PostStatus{folio.StatusDraft, folio.StatusPublished, folio.StatusArchived} {
				h.raw(`<option`)
				h.attr("value", string(st))
				if st == d.Post.Status {
					h.raw(` selected`)
				}
				h.raw(`>`)
				h.text(string(st))
				h.raw(`</option>`)
			}
			h.raw(`</select></label>`)
		}
		h.raw(`<div class="md:col-span-2"><button type="submit" class="rounded bg-ink px-3 py-1 text-white">Save</button></div></form>`)

		h.raw(`<div role="toolbar" class="flex flex-wrap gap-1 border-b pb-2">`)
		for _, b := range editorButtons {
			h.raw(`<button type="button" class="rounded border px-2 py-0.5 text-sm"`)
			h.attr("data-command", b.command)
			if b.attr != "" {
				h.attr(b.attr, b.value)
			}
			h.raw(`>`)
			h.text(b.label)
			h.raw(`</button>`)
		}
		h.raw(`</div>`)
		h.raw(`<div class="relative"><div data-editor-surface contenteditable="true" spellcheck="true" class="prose min-h-[24rem] max-w-none rounded border bg-white p-4"></div>`)
		h.raw(`<ul data-editor-slash hidden class="absolute z-10 mt-1 rounded border bg-white text-sm shadow"></ul></div>`)
		h.raw(`</div>`)
	}))
}

// AdminSubmission shows one TMP submission with its status form.
func AdminSubmission(d folio.SubmissionData) templ.Component {
	s := d.Submission
	return adminLayout(d.Site, "Submission from "+s.Name, true, component(func(h *html) {
		h.raw(`<a href="/admin/">&larr; Dashboard</a><article class="mt-6 space-y-4"><h1 class="text-2xl font-bold">`)
		h.text(s.Name)
		h.raw(`</h1><dl class="grid grid-cols-[10rem_1fr] gap-2 text-sm">`)
		row := func(label, value string) {
			if value == "" {
				return
			}
			h.raw(`<dt class="font-semibold">`)
			h.text(label)
			h.raw(`</dt><dd>`)
			h.text(value)
			h.raw(`</dd>`)
		}
		row("Email", s.Email)
		row("Phone", s.Phone)
		row("Preferred contact", s.PreferredContact)
		row("Availability", s.Availability)
		row("Timezone", s.Timezone)
		row("Received", s.CreatedAt.Format(timeFormat))
		h.raw(`</dl><h2 class="font-semibold">Story</h2><p class="whitespace-pre-line">`)
		h.text(s.Story)
		h.raw(`</p>`)
		if len(s.SocialLinks) > 0 {
			h.raw(`<h2 class="font-semibold">Links</h2><ul>`)
			for _, l := range s.SocialLinks {
				h.raw(`<li><a target="_blank" rel="noopener noreferrer"`)
				h.href(l)
				h.raw(`>`)
				h.text(l)
				h.raw(`</a></li>`)
			}
			h.raw(`</ul>`)
		}

		h.raw(`<form data-submission-form class="space-y-3 border-t pt-4"`)
		h.attr("data-submission", s.ID)
		h.attr("data-csrf", d.CSRFToken)
		h.raw(`><label class="block text-sm">Status<select name="status" class="mt-1 rounded border px-2 py-1">`)
		for _, st := range d.Statuses {
			h.raw(`<option`)
			h.attr("value", string(st))
			if st == s.Status {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.text(strings.ToUpper(string(st[:1])) + string(st[1:]))
			h.raw(`</option>`)
		}
		h.raw(`</select></label><label class="block text-sm">Notes<textarea name="notes" rows="5" class="mt-1 w-full rounded border px-2 py-1">`)
		h.text(s.Notes)
		h.raw(`</textarea></label><button type="submit" class="rounded bg-ink px-3 py-1 text-white">Update</button>`)
		h.raw(`<span data-submission-status class="ml-2 text-sm text-stone-500"></span></form></article>`)
	}))
}
