package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

// layout wraps body in the site chrome: head with SEO metadata, nav and
// footer. jsonLD is written verbatim into a ld+json script when non-empty.
func layout(site folio.SiteConfig, meta folio.PageMeta, jsonLD string, body templ.Component) templ.Component {
	return component(func(h *html) {
		title := meta.Title
		if title == "" {
			title = site.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		if desc != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", desc)
			h.raw(`>`)
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw(`><meta property="og:url"`)
			h.attr("content", meta.URL)
			h.raw(`>`)
		}
		h.raw(`<meta property="og:title"`)
		h.attr("content", title)
		h.raw(`><meta property="og:type"`)
		h.attr("content", ogType)
		h.raw(`>`)
		if desc != "" {
			h.raw(`<meta property="og:description"`)
			h.attr("content", desc)
			h.raw(`>`)
		}
		if meta.Image != "" {
			h.raw(`<meta property="og:image"`)
			h.attr("content", meta.Image)
			h.raw(`>`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml"`)
		h.attr("title", site.Name)
		h.raw(` href="/feed.xml">`)
		h.raw(`<link rel="icon" href="/favicon.svg" type="image/svg+xml">`)
		h.raw(`<link rel="stylesheet" href="/public/styles.css">`)
		if jsonLD != "" {
			h.raw(`<script type="application/ld+json">`, jsonLD, `</script>`)
		}
		h.raw(`</head><body class="bg-paper text-ink dark:bg-neutral-900 dark:text-white">`)

		h.raw(`<header class="mx-auto max-w-3xl px-4 py-6 flex items-center justify-between"><a href="/" class="font-bold">`)
		h.text(site.Name)
		h.raw(`</a><nav class="flex gap-4 text-sm"><a href="/">Blog</a><a href="/about/">About</a>`)
		if site.Social.Endpoint != "" {
			h.raw(`<a href="/social/">Social</a>`)
		}
		h.raw(`<a href="/feed.xml">RSS</a></nav></header>`)

		h.raw(`<main class="mx-auto max-w-3xl px-4">`)
		h.component(body)
		h.raw(`</main>`)

		h.raw(`<footer class="mx-auto max-w-3xl px-4 py-10 text-xs text-stone-500">`)
		if site.Author != "" {
			h.raw(`&copy; `)
			h.text(site.Author)
		}
		h.raw(`</footer></body></html>`)
	})
}

// adminLayout is the bare chrome for admin screens. No indexing, no nav.
func adminLayout(site folio.SiteConfig, title string, scripts bool, body templ.Component) templ.Component {
	return component(func(h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<meta name="robots" content="noindex, nofollow"><title>`)
		h.text(title + " | " + site.Name)
		h.raw(`</title><link rel="stylesheet" href="/public/styles.css"></head>`)
		h.raw(`<body class="bg-stone-50 text-ink"><main class="mx-auto max-w-5xl px-4 py-8">`)
		h.component(body)
		h.raw(`</main>`)
		if scripts {
			h.raw(`<script src="/public/editor.js" defer></script>`)
		}
		h.raw(`</body></html>`)
	})
}
