package homespace

import "encoding/json"

// Role distinguishes ordinary accounts from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Visibility controls who may view an uploaded media item.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// Toggle returns the opposite visibility state.
func (v Visibility) Toggle() Visibility {
	if v == VisibilityPublic {
		return VisibilityPrivate
	}
	return VisibilityPublic
}

// MediaKind classifies an uploaded file into one of the three gallery
// collections.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// Account is an approved user. The map key in the users document carries the
// username, so it is not serialized on the record itself.
type Account struct {
	Username  string `json:"-"`
	Password  string `json:"password"`
	Message   string `json:"msg"`
	Role      Role   `json:"role"`
	BgColor   string `json:"bg_color"`
	TextColor string `json:"text_color"`
	Theme     string `json:"theme"`
}

// IsAdmin reports whether the account holds the admin role.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// PendingUser is a self-submitted registration awaiting an admin decision.
type PendingUser struct {
	Password string `json:"password"`
}

// MediaItem is one uploaded file's metadata: its process-wide storage key
// and its visibility. Its byte content lives in the BlobStore.
type MediaItem struct {
	Filename   string     `json:"filename"`
	Visibility Visibility `json:"visibility"`
}

// UnmarshalJSON accepts both the current object shape and the legacy bare
// filename string, normalizing the latter to a private item so callers only
// ever see one shape.
func (m *MediaItem) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		m.Filename = name
		m.Visibility = VisibilityPrivate
		return nil
	}
	type plain MediaItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPrivate
	}
	*m = MediaItem(p)
	return nil
}

// PersonalPage is a user's customizable profile: title, description, colors,
// an optional background image reference, and the three media collections.
type PersonalPage struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	BgColor         string      `json:"bg_color"`
	TextColor       string      `json:"text_color"`
	Images          []MediaItem `json:"images"`
	Audio           []MediaItem `json:"audio"`
	Video           []MediaItem `json:"video"`
	BackgroundImage string      `json:"background_image,omitempty"`
}

// PageView is the render model for a personal page after visibility
// filtering. Owner and Viewer coincide when a user looks at their own page.
type PageView struct {
	Owner           string
	Viewer          string
	ViewerIsAdmin   bool
	Title           string
	Description     string
	BgColor         string
	TextColor       string
	Images          []MediaItem
	Audio           []MediaItem
	Video           []MediaItem
	BackgroundImage string
}

// ModerationView is the admin panel render model. When the panel is
// disabled, Pending is empty and PendingCount is zero regardless of the
// stored queue.
type ModerationView struct {
	PanelEnabled bool
	Pending      []string
	PendingCount int
	Accounts     []Account
	UserCount    int
}
