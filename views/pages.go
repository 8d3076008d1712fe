package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/document"
)

// Page renders a static page such as About.
func Page(d folio.PageData) templ.Component {
	return layout(d.Site, d.Meta, "", component(func(h *html) {
		h.raw(`<article class="prose dark:prose-invert max-w-none py-8"><h1>`)
		h.text(d.Page.Title)
		h.raw(`</h1>`)
		h.component(document.Component(d.Page.Body))
		h.raw(`</article>`)
	}))
}

// Social renders the recent social threads.
func Social(d folio.SocialData) templ.Component {
	return layout(d.Site, d.Meta, "", component(func(h *html) {
		h.raw(`<section class="py-8"><h1 class="mb-6 text-3xl font-bold">Social</h1>`)
		switch {
		case d.Unavailable:
			h.raw(`<p class="text-stone-500">The feed is unavailable right now. Please check back later.</p>`)
		case len(d.Threads) == 0:
			h.raw(`<p class="text-stone-500">Nothing here yet.</p>`)
		}
		h.raw(`<ul class="space-y-6">`)
		for _, t := range d.Threads {
			h.raw(`<li class="rounded border p-4">`)
			h.raw(`<p class="whitespace-pre-line">`)
			h.text(t.Text)
			h.raw(`</p>`)
			if t.MediaURL != "" {
				h.raw(`<img class="mt-3 rounded" loading="lazy" alt=""`)
				h.attr("src", t.MediaURL)
				h.raw(`>`)
			}
			h.raw(`<p class="mt-2 text-xs text-stone-500">`)
			if !t.Timestamp.IsZero() {
				h.raw(`<time`)
				h.attr("datetime", t.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
				h.raw(`>`)
				h.text(t.Timestamp.Format(dateFormat))
				h.raw(`</time> · `)
			}
			h.text(plural(t.Likes, "like", "likes"))
			h.raw(` · `)
			h.text(plural(t.Replies, "reply", "replies"))
			if t.Permalink != "" {
				h.raw(` · <a target="_blank" rel="noopener noreferrer"`)
				h.href(t.Permalink)
				h.raw(`>View</a>`)
			}
			h.raw(`</p></li>`)
		}
		h.raw(`</ul></section>`)
	}))
}

func errorPage(code int, title, message string) templ.Component {
	return component(func(h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/public/styles.css"></head><body class="grid min-h-screen place-items-center">`)
		h.raw(`<main class="text-center"><p class="text-6xl font-bold">`, strconv.Itoa(code), `</p><h1 class="mt-2 text-xl">`)
		h.text(title)
		h.raw(`</h1><p class="mt-2 text-stone-500">`)
		h.text(message)
		h.raw(`</p><a class="mt-6 inline-block underline" href="/">Back home</a></main></body></html>`)
	})
}

func NotFound() templ.Component {
	return errorPage(404, "Page not found", "The page you are looking for does not exist.")
}

func ServerError() templ.Component {
	return errorPage(500, "Something went wrong", "Please try again in a moment.")
}
