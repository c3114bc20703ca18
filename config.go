package homespace

// SiteConfig holds all configuration for a homespace site.
type SiteConfig struct {
	Name string // Site name shown by templates (default "Homespace")
	URL  string // Canonical URL (default "http://localhost:3000")

	Addr       string // Listen address (default ":3000")
	DataDir    string // Directory for the JSON documents (default "data")
	UploadsDir string // Directory for uploaded blobs (default "data/uploads")

	AdminUsername string // Seed admin account name (default "admin")
	AdminPassword string // Required: seed admin password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	ActivityEnabled       bool   // Record personal-page visits (default off)
	ActivityDatabasePath  string // Activity SQLite path (default "data/activity.db")
	ActivityRetentionDays int    // Visit retention (default 365)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Homespace"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "data/uploads"
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.ActivityDatabasePath == "" {
		c.ActivityDatabasePath = "data/activity.db"
	}
	if c.ActivityRetentionDays == 0 {
		c.ActivityRetentionDays = 365
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
