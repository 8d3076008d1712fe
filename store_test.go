package folio

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/document"
	"github.com/eringen/folio/mail"
)

// setupTestStore opens a fresh database whose clock advances one minute
// per call, so saves get distinct, ordered timestamps.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func paragraphs(texts ...string) document.Document {
	blocks := make([]document.Node, len(texts))
	for i, t := range texts {
		blocks[i] = document.NewParagraph(t)
	}
	return document.New(blocks...)
}

func savePost(t *testing.T, s *Store, p Post) Post {
	t.Helper()
	if p.Body.IsEmpty() {
		p.Body = paragraphs("Body of " + p.Title)
	}
	saved, err := s.SavePost(p)
	require.NoError(t, err)
	return saved
}

func TestNewStoreMigrates(t *testing.T) {
	s := setupTestStore(t)
	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestNewStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	_, err = s.SavePost(Post{Title: "Kept", Body: paragraphs("x")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	p, err := s.GetPostAny("kept")
	require.NoError(t, err)
	assert.Equal(t, "Kept", p.Title)
}

func TestSaveAndGetPost(t *testing.T) {
	s := setupTestStore(t)

	saved := savePost(t, s, Post{
		Title:    "  Hello World  ",
		Tags:     []string{"Go", "web, Go"},
		Category: " Notes ",
		Status:   StatusPublished,
		Body:     paragraphs("First paragraph.", "Second paragraph."),
	})
	assert.Equal(t, "hello-world", saved.Slug)
	assert.Equal(t, "Hello World", saved.Title)
	assert.Equal(t, []string{"go", "web"}, saved.Tags)
	assert.Equal(t, "Notes", saved.Category)
	assert.Equal(t, "First paragraph. Second paragraph.", saved.Excerpt)
	require.NotNil(t, saved.PublishedAt)

	got, err := s.GetPost("hello-world")
	require.NoError(t, err)
	assert.Equal(t, saved.Title, got.Title)
	assert.Equal(t, saved.Tags, got.Tags)
	assert.Equal(t, saved.Excerpt, got.Excerpt)
	assert.Equal(t, saved.Body.JSON(), got.Body.JSON())
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, saved.PublishedAt.Equal(*got.PublishedAt))
}

func TestSavePostDefaults(t *testing.T) {
	s := setupTestStore(t)

	p := savePost(t, s, Post{Title: "Draft"})
	assert.Equal(t, StatusDraft, p.Status)
	assert.Nil(t, p.PublishedAt)
	assert.Equal(t, []string{}, p.Tags)

	_, err := s.GetPost("draft")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetPostAny("draft")
	assert.NoError(t, err)
}

func TestSavePostRejects(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.SavePost(Post{Title: "!!!"})
	assert.ErrorIs(t, err, ErrSlugRequired)

	_, err = s.SavePost(Post{Title: "Bad", Status: "pending"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	deep := document.NewParagraph("x")
	for i := 0; i < document.MaxDepth+1; i++ {
		deep = document.NewElement(document.Quote, deep)
	}
	_, err = s.SavePost(Post{Title: "Deep", Body: document.Document{Children: []document.Node{deep}}})
	assert.ErrorIs(t, err, document.ErrInvalidNode)

	list := document.NewElement(document.ListItem, document.NewText("x"))
	for i := 0; i < document.MaxDepth+1; i++ {
		list = document.NewElement(document.BulletedList, list)
	}
	_, err = s.SavePost(Post{Title: "Deep list", Body: document.New(list)})
	assert.ErrorIs(t, err, document.ErrInvalidNode)

	_, err = s.GetPostAny("deep")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSavePostKeepsCreatedAndPublished(t *testing.T) {
	s := setupTestStore(t)

	first := savePost(t, s, Post{Slug: "p", Title: "P", Status: StatusPublished})
	second := savePost(t, s, Post{Slug: "p", Title: "P2", Status: StatusPublished})

	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, first.PublishedAt.Equal(*second.PublishedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	// Unpublishing keeps the original publication date.
	third := savePost(t, s, Post{Slug: "p", Title: "P3", Status: StatusDraft})
	require.NotNil(t, third.PublishedAt)
	assert.True(t, first.PublishedAt.Equal(*third.PublishedAt))
}

func TestListPostsFilters(t *testing.T) {
	s := setupTestStore(t)

	savePost(t, s, Post{Title: "Go Concurrency", Tags: []string{"go"}, Category: "Engineering", Status: StatusPublished})
	savePost(t, s, Post{Title: "Travel Notes", Tags: []string{"travel"}, Category: "Life", Status: StatusPublished})
	savePost(t, s, Post{Title: "Go Generics", Tags: []string{"go", "generics"}, Category: "engineering", Status: StatusPublished})
	savePost(t, s, Post{Title: "Go Draft", Tags: []string{"go"}, Status: StatusDraft})

	posts, p, err := s.ListPosts(PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Total)
	require.Len(t, posts, 3)
	assert.Equal(t, "go-generics", posts[0].Slug, "newest first")

	posts, _, err = s.ListPosts(PostFilter{Tag: "GO"})
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	posts, _, err = s.ListPosts(PostFilter{Category: "ENGINEERING"})
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	posts, _, err = s.ListPosts(PostFilter{Query: "travel"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "travel-notes", posts[0].Slug)

	posts, _, err = s.ListPosts(PostFilter{Query: "100%"})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFiltersFoldUnicode(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, Post{Title: "École d'été", Category: "Éducation", Status: StatusPublished})
	savePost(t, s, Post{Title: "Plain", Status: StatusPublished})
	c := NewPostCache(s, time.Hour)

	for _, f := range []PostFilter{
		{Query: "ÉCOLE"},
		{Query: "été"},
		{Category: "ÉDUCATION"},
	} {
		stored, _, err := s.ListAllPosts(f)
		require.NoError(t, err)
		cached, _, err := c.ListPosts(f)
		require.NoError(t, err)
		require.Len(t, stored, 1, "store filter %+v", f)
		require.Len(t, cached, 1, "cache filter %+v", f)
		assert.Equal(t, stored[0].Slug, cached[0].Slug)
	}
}

func TestListPostsPagination(t *testing.T) {
	s := setupTestStore(t)
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		savePost(t, s, Post{Title: title, Status: StatusPublished})
	}

	posts, p, err := s.ListPosts(PostFilter{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, Pagination{Total: 5, CurrentPage: 2, TotalPage: 3, Size: 2, HasNextPage: true}, p)
	require.Len(t, posts, 2)
	assert.Equal(t, "three", posts[0].Slug)

	posts, p, err = s.ListPosts(PostFilter{Page: 9, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.False(t, p.HasNextPage)
}

func TestListAllPosts(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, Post{Title: "A", Status: StatusPublished})
	savePost(t, s, Post{Title: "B"})
	savePost(t, s, Post{Title: "C", Status: StatusArchived})

	posts, _, err := s.ListAllPosts(PostFilter{})
	require.NoError(t, err)
	assert.Len(t, posts, 3)

	posts, _, err = s.ListAllPosts(PostFilter{Status: StatusArchived})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "c", posts[0].Slug)

	_, _, err = s.ListAllPosts(PostFilter{Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetPostStatus(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, Post{Title: "Later"})

	require.NoError(t, s.SetPostStatus("later", StatusPublished))
	p, err := s.GetPost("later")
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	published := *p.PublishedAt

	require.NoError(t, s.SetPostStatus("later", StatusArchived))
	require.NoError(t, s.SetPostStatus("later", StatusPublished))
	p, err = s.GetPost("later")
	require.NoError(t, err)
	assert.True(t, published.Equal(*p.PublishedAt))

	assert.ErrorIs(t, s.SetPostStatus("missing", StatusDraft), ErrNotFound)
	assert.ErrorIs(t, s.SetPostStatus("later", "nope"), ErrInvalidStatus)
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, Post{Title: "Gone", Status: StatusPublished})

	require.NoError(t, s.DeletePost("gone"))
	_, err := s.GetPostAny("gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.DeletePost("gone"))
}

func TestListTagsAndCategories(t *testing.T) {
	s := setupTestStore(t)
	savePost(t, s, Post{Title: "A", Tags: []string{"web", "go"}, Category: "Eng", Status: StatusPublished})
	savePost(t, s, Post{Title: "B", Tags: []string{"go", "db"}, Category: "Life", Status: StatusPublished})
	savePost(t, s, Post{Title: "C", Tags: []string{"secret"}, Category: "Hidden"})

	tags, err := s.ListTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "go", "web"}, tags)

	cats, err := s.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Eng", "Life"}, cats)
}

func TestPages(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetPage("about")
	assert.ErrorIs(t, err, ErrNotFound)

	saved, err := s.SavePage(Page{Slug: "About", Title: " About me ", Body: paragraphs("Hi.")})
	require.NoError(t, err)
	assert.Equal(t, "about", saved.Slug)
	assert.Equal(t, "About me", saved.Title)

	_, err = s.SavePage(Page{Slug: "about", Title: "About", Body: paragraphs("Updated.")})
	require.NoError(t, err)

	got, err := s.GetPage("about")
	require.NoError(t, err)
	assert.Equal(t, "About", got.Title)
	assert.Equal(t, "Updated.", got.Body.PlainText())

	pages, err := s.ListPages()
	require.NoError(t, err)
	assert.Len(t, pages, 1)

	_, err = s.SavePage(Page{Slug: "///"})
	assert.ErrorIs(t, err, ErrSlugRequired)
}

func TestSubmissions(t *testing.T) {
	s := setupTestStore(t)

	sub, err := s.CreateSubmission(Submission{
		Name:        "Ada",
		Email:       "ada@example.com",
		Story:       "A long enough story about things.",
		SocialLinks: []string{"https://example.com/ada"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, SubmissionNew, sub.Status)
	assert.Equal(t, ContactEmail, sub.PreferredContact)

	got, err := s.GetSubmission(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.SocialLinks, got.SocialLinks)

	status := SubmissionScheduled
	notes := "  call on friday "
	updated, err := s.UpdateSubmission(sub.ID, SubmissionPatch{Status: &status, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, SubmissionScheduled, updated.Status)
	assert.Equal(t, "call on friday", updated.Notes)
	assert.True(t, updated.UpdatedAt.After(sub.UpdatedAt))

	// Any status may follow any other.
	back := SubmissionNew
	updated, err = s.UpdateSubmission(sub.ID, SubmissionPatch{Status: &back})
	require.NoError(t, err)
	assert.Equal(t, SubmissionNew, updated.Status)
	assert.Equal(t, "call on friday", updated.Notes)

	bad := SubmissionStatus("lost")
	_, err = s.UpdateSubmission(sub.ID, SubmissionPatch{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.UpdateSubmission("missing", SubmissionPatch{Notes: &notes})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteSubmission(sub.ID))
	assert.ErrorIs(t, s.DeleteSubmission(sub.ID), ErrNotFound)
}

func TestListSubmissions(t *testing.T) {
	s := setupTestStore(t)
	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		sub, err := s.CreateSubmission(Submission{Name: name, Email: "x@example.com", Story: "story"})
		require.NoError(t, err)
		ids = append(ids, sub.ID)
	}
	declined := SubmissionDeclined
	_, err := s.UpdateSubmission(ids[0], SubmissionPatch{Status: &declined})
	require.NoError(t, err)

	subs, p, err := s.ListSubmissions(SubmissionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Total)
	require.Len(t, subs, 3)
	assert.Equal(t, "C", subs[0].Name)

	subs, _, err = s.ListSubmissions(SubmissionFilter{Status: SubmissionDeclined})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "A", subs[0].Name)

	_, _, err = s.ListSubmissions(SubmissionFilter{Status: "x"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOutbox(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Enqueue(ctx, mail.Message{To: []string{"a@example.com"}, Subject: "First", Text: "1"}))
	require.NoError(t, s.Enqueue(ctx, mail.Message{Subject: "Nobody"}))
	require.NoError(t, s.Enqueue(ctx, mail.Message{To: []string{"b@example.com"}, Subject: "Second", HTML: "<p>2</p>"}))

	msgs, p, err := s.ListOutbox(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Total)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Second", msgs[0].Subject)
	assert.Equal(t, []string{"a@example.com"}, msgs[1].To)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web"}, ParseTags(",go,web,"))
	assert.Nil(t, ParseTags(","))
	assert.Nil(t, ParseTags(""))
}
