// Package folio is a personal portfolio and blog engine built with Go,
// Echo, and templ. It serves the blog feed, static pages and a social feed,
// and gives the site owner an admin surface with a rich-text editor,
// submission review and a mail outbox.
//
// Users provide their own templ templates via the ViewFuncs struct (the
// views package has defaults), and folio handles the handler logic,
// middleware, and database operations.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/mail"
	"github.com/eringen/folio/social"
)

// App is the central folio application. It wires together the store,
// cache, handlers, middleware, and user-provided templates.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Cache     *PostCache
	Views     ViewFuncs
	Log       *zap.Logger
	Sessions  *EditorSessions
	Social    *social.Client
	Previewer *social.Previewer

	loginLimiter  *RateLimiter
	submitLimiter *RateLimiter
	outbox        mail.Outbox
	socialCache   social.Cache
	redisCache    *social.RedisCache
	customRoutes  []func(*App)
	staticDir     string
	stops         []func()
}

// New creates a new folio App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the database and sets up caches, background workers,
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Init() error {
	if err := a.Config.validate(); err != nil {
		return err
	}
	if a.Log == nil {
		log, err := NewLogger(a.Config.Log)
		if err != nil {
			return err
		}
		a.Log = log
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.submitLimiter = NewRateLimiter(5, 10*time.Minute)
	a.stops = append(a.stops, a.loginLimiter.Stop, a.submitLimiter.Stop)

	a.Sessions = NewEditorSessions(EditorSessionTTL, a.Log.Named("editor"))
	a.stops = append(a.stops, a.Sessions.StartSweeper(10*time.Minute))

	if a.outbox == nil {
		a.outbox = &storeOutbox{store: a.Store, log: a.Log.Named("outbox")}
	}

	if a.socialCache == nil && a.Config.RedisURL != "" {
		rc, err := social.NewRedisCache(context.Background(), a.Config.RedisURL)
		if err != nil {
			a.Log.Warn("redis unavailable, using in-memory social cache", zap.Error(err))
		} else {
			a.redisCache = rc
			a.socialCache = rc
		}
	}
	a.Social = social.NewClient(a.Config.socialConfig(), a.socialCache, a.Log.Named("social"))
	a.Previewer = social.NewPreviewer()

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Log.Info("server starting", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets (the admin editor client) are served under /public/
	// ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/editor.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public pages
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/about/", a.handleAbout)
	e.GET("/social/", a.handleSocial)

	// Public JSON API
	api := e.Group("/api")
	api.GET("/posts", a.apiListPosts)
	api.GET("/posts/:slug", a.apiGetPost)
	api.GET("/tags", a.apiListTags)
	api.GET("/categories", a.apiListCategories)
	api.GET("/pages/:slug", a.apiGetPage)
	api.GET("/social/threads", a.apiSocialThreads)
	api.POST("/tmp/submissions", a.apiCreateSubmission)

	// Admin pages
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	adminPages := e.Group("/admin", requireAdmin)
	adminPages.GET("/posts/new/", a.handleAdminNewPost)
	adminPages.GET("/posts/:slug/edit/", a.handleAdminEditPost)
	adminPages.GET("/pages/:slug/edit/", a.handleAdminEditPage)
	adminPages.GET("/submissions/:id/", a.handleAdminSubmission)

	// Admin JSON API
	admin := e.Group("/admin/api", requireAdminAPI)
	admin.GET("/posts", a.adminListPosts)
	admin.POST("/posts", a.adminSavePost)
	admin.GET("/posts/:slug", a.adminGetPost)
	admin.PUT("/posts/:slug", a.adminSavePost)
	admin.PATCH("/posts/:slug/status", a.adminSetPostStatus)
	admin.DELETE("/posts/:slug", a.adminDeletePost)

	admin.GET("/pages", a.adminListPages)
	admin.GET("/pages/:slug", a.adminGetPage)
	admin.PUT("/pages/:slug", a.adminSavePage)

	admin.GET("/submissions", a.adminListSubmissions)
	admin.GET("/submissions/:id", a.adminGetSubmission)
	admin.PATCH("/submissions/:id", a.adminUpdateSubmission)
	admin.DELETE("/submissions/:id", a.adminDeleteSubmission)

	admin.GET("/outbox", a.adminListOutbox)
	admin.POST("/preview", a.adminPreview)

	admin.POST("/editor/sessions", a.editorCreateSession)
	admin.GET("/editor/sessions/:id", a.editorGetSession)
	admin.POST("/editor/sessions/:id/commands", a.editorExec)
	admin.POST("/editor/sessions/:id/save", a.editorSave)
	admin.DELETE("/editor/sessions/:id", a.editorDeleteSession)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.redisCache != nil {
		a.redisCache.Close()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// storeOutbox persists messages in the outbox table. Nothing is delivered;
// an external sender drains the table.
type storeOutbox struct {
	store *Store
	log   *zap.Logger
}

func (o *storeOutbox) Enqueue(ctx context.Context, msg mail.Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	if err := o.store.Enqueue(ctx, msg); err != nil {
		return err
	}
	o.log.Info("mail queued", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
