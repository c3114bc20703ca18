// Package homespace is a multi-user personal-page engine built with Go,
// Echo, and templ: self-registration with admin approval, session login,
// editable home and personal-page profiles, and per-user media galleries
// (images, audio, video) with public/private visibility control.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// homespace owns the stores, handlers, middleware, and media lifecycle.
package homespace

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/homespace/activity"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	PublicHome       func() templ.Component
	Login            func(errorMsg string, csrfToken string) templ.Component
	Register         func(errorMsg string, csrfToken string) templ.Component
	RegisterSuccess  func() templ.Component
	Home             func(account Account, csrfToken string) templ.Component
	EditProfile      func(account Account, csrfToken string) templ.Component
	AdminPanel       func(view ModerationView, viewer string, csrfToken string) templ.Component
	PersonalPage     func(view PageView, csrfToken string) templ.Component
	EditPersonalPage func(page PersonalPage, csrfToken string) templ.Component
	Gallery          func(page PersonalPage, csrfToken string) templ.Component
	UserNotFound     func(username string) templ.Component
	NotFound         func() templ.Component
	ServerError      func() templ.Component
}

// App is the central homespace application. It wires together the stores,
// media service, handlers, middleware, and user-provided templates.
type App struct {
	Config     SiteConfig
	Echo       *echo.Echo
	Users      *UserStore
	Pages      *PageStore
	Media      *MediaService
	Moderation *Moderation
	Views      ViewFuncs

	loginLimiter  *LoginLimiter
	activityStore *activity.Store
	customRoutes  []func(*App)
	staticDir     string
}

// New creates a new homespace App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the stores, middleware, routes, and starts the server.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}

	if a.Config.ActivityEnabled && a.activityStore != nil {
		stopCleanup := a.activityStore.StartCleanupScheduler(a.Config.ActivityRetentionDays, 24*time.Hour)
		defer stopCleanup()
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// init builds the stores, services, middleware, and routes without binding
// a listener.
func (a *App) init() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("homespace: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("homespace: SessionSecret is required")
	}

	a.Users = NewUserStore(
		filepath.Join(a.Config.DataDir, "users_data.json"),
		a.Config.AdminUsername,
		a.Config.AdminPassword,
	)
	a.Pages = NewPageStore(filepath.Join(a.Config.DataDir, "personal_pages.json"))

	blobs, err := NewDirBlobStore(a.Config.UploadsDir)
	if err != nil {
		return fmt.Errorf("homespace: init blob store: %w", err)
	}
	a.Media = NewMediaService(a.Pages, blobs)
	a.Moderation = NewModeration(a.Users)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Config.ActivityEnabled {
		store, err := activity.NewStore(a.Config.ActivityDatabasePath)
		if err != nil {
			return fmt.Errorf("homespace: init activity store: %w", err)
		}
		a.activityStore = store
		if err := activity.InitSalt(store); err != nil {
			return fmt.Errorf("homespace: init activity salt: %w", err)
		}
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)

	// Public routes
	e.GET("/", a.handleIndex)
	e.GET("/public", a.handlePublicHome)
	e.GET("/register", a.handleRegisterForm)
	e.POST("/register", a.handleRegister)
	e.GET("/register-success", a.handleRegisterSuccess)
	e.GET("/login", a.handleLoginForm)
	e.POST("/login", a.handleLogin)
	e.POST("/logout", a.handleLogout)

	// Answers JSON 401 itself rather than redirecting, so the gallery
	// uploader can surface the failure in place.
	e.POST("/upload-image-instant", a.handleUploadInstant)

	// Authenticated routes
	auth := e.Group("", a.requireUser)
	auth.GET("/home", a.handleHome)
	auth.GET("/edit-profile", a.handleEditProfileForm)
	auth.POST("/edit-profile", a.handleEditProfile)
	auth.GET("/personal-page", a.handlePersonalPage)
	auth.GET("/view-user", a.handleViewUser)
	auth.GET("/edit-personal-page", a.handleEditPersonalPageForm)
	auth.POST("/edit-personal-page", a.handleEditPersonalPage)
	auth.GET("/image-gallery", a.handleGallery)
	auth.POST("/delete-image", a.handleDeleteMedia)
	auth.POST("/set-background", a.handleSetBackground)
	auth.POST("/toggle-visibility", a.handleToggleVisibility)
	auth.GET("/uploads/:filename", a.handleServeUpload)

	// Admin routes
	admin := e.Group("/admin", a.requireAdmin)
	admin.GET("", a.handleAdmin)
	admin.POST("/approve", a.handleAdminApprove)
	admin.POST("/reject", a.handleAdminReject)
	admin.POST("/role", a.handleAdminRole)
	admin.POST("/toggle-panel", a.handleAdminTogglePanel)
	admin.GET("/activity", a.handleAdminActivity)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.activityStore != nil {
		return a.activityStore.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
// This is a convenience function for use in scaffolded main.go files.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("homespace: required environment variable %s is not set", key)
	}
	return v
}
