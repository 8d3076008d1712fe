package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/document"
)

const dateFormat = "January 2, 2006"

// Home renders the landing page: the filterable blog feed.
func Home(d folio.HomeData) templ.Component {
	return layout(d.Site, d.Meta, folio.WebsiteJsonLD(d.Site), component(func(h *html) {
		h.raw(`<section class="py-8"><h1 class="text-3xl font-bold">`)
		h.text(d.Site.Name)
		h.raw(`</h1>`)
		if d.Site.Description != "" {
			h.raw(`<p class="mt-2 text-stone-600">`)
			h.text(d.Site.Description)
			h.raw(`</p>`)
		}
		h.raw(`</section>`)
		h.component(BlogSection(d))
	}))
}

// BlogSection renders the filter bar, post list and pager. It is also
// served alone for htmx partial swaps.
func BlogSection(d folio.HomeData) templ.Component {
	return component(func(h *html) {
		h.raw(`<section id="blog" class="space-y-6">`)

		h.raw(`<form method="get" action="/" hx-get="/?partial=blog" hx-target="#blog" hx-swap="outerHTML" class="flex gap-2">`)
		h.raw(`<input type="search" name="q" placeholder="Search posts" class="flex-1 rounded border px-3 py-1"`)
		h.attr("value", d.Filter.Query)
		h.raw(`>`)
		if d.Filter.Tag != "" {
			h.raw(`<input type="hidden" name="tag"`)
			h.attr("value", d.Filter.Tag)
			h.raw(`>`)
		}
		if d.Filter.Category != "" {
			h.raw(`<input type="hidden" name="category"`)
			h.attr("value", d.Filter.Category)
			h.raw(`>`)
		}
		h.raw(`<button type="submit" class="rounded border px-3 py-1">Search</button></form>`)

		if len(d.Categories) > 0 {
			h.raw(`<nav class="flex flex-wrap gap-2" aria-label="Categories">`)
			for _, cat := range d.Categories {
				active := cat == d.Filter.Category
				next := cat
				if active {
					next = ""
				}
				h.raw(`<a`)
				h.attr("href", query("/", map[string]string{"category": next, "tag": d.Filter.Tag, "q": d.Filter.Query}, 1))
				h.attr("class", TagClass(active))
				h.raw(`>`)
				h.text(cat)
				h.raw(`</a>`)
			}
			h.raw(`</nav>`)
		}
		if len(d.Tags) > 0 {
			h.raw(`<nav class="flex flex-wrap gap-2" aria-label="Tags">`)
			for _, tag := range d.Tags {
				active := tag == d.Filter.Tag
				next := tag
				if active {
					next = ""
				}
				h.raw(`<a`)
				h.attr("href", query("/", map[string]string{"tag": next, "category": d.Filter.Category, "q": d.Filter.Query}, 1))
				h.attr("class", TagClass(active))
				h.raw(`>#`)
				h.text(tag)
				h.raw(`</a>`)
			}
			h.raw(`</nav>`)
		}

		if len(d.Posts) == 0 {
			h.raw(`<p class="py-10 text-center text-stone-500">No posts found.</p>`)
		}
		h.raw(`<ul class="space-y-8">`)
		for _, p := range d.Posts {
			h.component(postCard(p))
		}
		h.raw(`</ul>`)

		h.component(pager(d))
		h.raw(`</section>`)
	})
}

func postCard(p folio.Post) templ.Component {
	return component(func(h *html) {
		h.raw(`<li><article>`)
		if p.CoverImage != "" {
			h.raw(`<img class="mb-3 rounded" loading="lazy" alt=""`)
			h.attr("src", p.CoverImage)
			h.raw(`>`)
		}
		h.raw(`<h2 class="text-xl font-semibold"><a`)
		h.attr("href", p.Link())
		h.raw(`>`)
		h.text(p.Title)
		h.raw(`</a></h2>`)
		h.component(byline(p))
		if p.Excerpt != "" {
			h.raw(`<p class="mt-2">`)
			h.text(p.Excerpt)
			h.raw(`</p>`)
		}
		h.raw(`</article></li>`)
	})
}

func byline(p folio.Post) templ.Component {
	return component(func(h *html) {
		h.raw(`<p class="text-xs uppercase tracking-wide text-stone-500"><time`)
		h.attr("datetime", p.Date().Format("2006-01-02"))
		h.raw(`>`)
		h.text(p.Date().Format(dateFormat))
		h.raw(`</time> · `)
		h.text(strconv.Itoa(p.ReadingTime()) + " min read")
		if p.Category != "" {
			h.raw(` · <a`)
			h.attr("href", query("/", map[string]string{"category": p.Category}, 1))
			h.raw(`>`)
			h.text(p.Category)
			h.raw(`</a>`)
		}
		h.raw(`</p>`)
	})
}

func pager(d folio.HomeData) templ.Component {
	return component(func(h *html) {
		p := d.Pagination
		if p.TotalPage <= 1 {
			return
		}
		values := map[string]string{"tag": d.Filter.Tag, "category": d.Filter.Category, "q": d.Filter.Query}
		h.raw(`<nav class="flex justify-between py-6 text-sm" aria-label="Pagination">`)
		if p.HasPrevPage() {
			h.raw(`<a rel="prev"`)
			h.attr("href", query("/", values, p.CurrentPage-1))
			h.raw(`>&larr; Newer</a>`)
		} else {
			h.raw(`<span></span>`)
		}
		h.raw(`<span>Page `, strconv.Itoa(p.CurrentPage), ` of `, strconv.Itoa(p.TotalPage), `</span>`)
		if p.HasNextPage {
			h.raw(`<a rel="next"`)
			h.attr("href", query("/", values, p.CurrentPage+1))
			h.raw(`>Older &rarr;</a>`)
		} else {
			h.raw(`<span></span>`)
		}
		h.raw(`</nav>`)
	})
}

// Post renders a single article with its related posts.
func Post(d folio.PostData) templ.Component {
	return layout(d.Site, d.Meta, folio.BlogPostingJsonLD(d.Post, d.Site), component(func(h *html) {
		p := d.Post
		h.raw(`<article class="prose dark:prose-invert max-w-none py-8"><header class="not-prose mb-6"><h1 class="text-3xl font-bold">`)
		h.text(p.Title)
		h.raw(`</h1>`)
		h.component(byline(p))
		if len(p.Tags) > 0 {
			h.raw(`<div class="mt-3 flex flex-wrap gap-2">`)
			for _, t := range p.Tags {
				h.raw(`<a`)
				h.attr("href", query("/", map[string]string{"tag": t}, 1))
				h.attr("class", TagClass(false))
				h.raw(`>#`)
				h.text(t)
				h.raw(`</a>`)
			}
			h.raw(`</div>`)
		}
		h.raw(`</header>`)
		if p.CoverImage != "" {
			h.raw(`<img class="rounded" alt=""`)
			h.attr("src", p.CoverImage)
			h.raw(`>`)
		}
		h.component(document.Component(p.Body))
		h.raw(`</article>`)

		if len(d.Related) > 0 {
			h.raw(`<aside class="border-t py-8"><h2 class="mb-4 font-semibold">Related posts</h2><ul class="space-y-2">`)
			for i, r := range d.Related {
				if i == 3 {
					break
				}
				h.raw(`<li><a`)
				h.attr("href", r.Link())
				h.raw(`>`)
				h.text(r.Title)
				h.raw(`</a></li>`)
			}
			h.raw(`</ul></aside>`)
		}
	}))
}
