package homespace

import (
	"crypto/subtle"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// usersDocument is the on-disk shape of the accounts file: approved users,
// the pending-registration queue, and the global admin-panel flag, all in
// one JSON document.
type usersDocument struct {
	Users             map[string]*Account     `json:"users"`
	PendingUsers      map[string]*PendingUser `json:"pending_users"`
	AdminPanelEnabled *bool                   `json:"admin_panel_enabled"`
}

// UserStore holds user accounts and the pending-registration queue, mirrored
// to a single JSON file. Every mutation rewrites the whole file: last write
// wins, there is no transaction log. The mutex only keeps concurrent
// handlers memory-safe; it does not merge competing writes.
type UserStore struct {
	mu   sync.RWMutex
	path string
	doc  usersDocument
}

// NewUserStore loads the accounts file at path. A missing or unreadable
// file degrades to the seeded default: a single admin account with the
// given credentials and the panel enabled.
func NewUserStore(path, adminUsername, adminPassword string) *UserStore {
	s := &UserStore{path: path}
	found, err := loadJSON(path, &s.doc)
	if !found || err != nil || len(s.doc.Users) == 0 {
		s.doc = usersDocument{
			Users: map[string]*Account{
				adminUsername: {
					Password:  adminPassword,
					Message:   "Welcome back, " + adminUsername + ".",
					Role:      RoleAdmin,
					BgColor:   "#000000",
					TextColor: "#ffffff",
					Theme:     "dark",
				},
			},
		}
	}
	if s.doc.PendingUsers == nil {
		s.doc.PendingUsers = map[string]*PendingUser{}
	}
	if s.doc.AdminPanelEnabled == nil {
		enabled := true
		s.doc.AdminPanelEnabled = &enabled
	}
	return s
}

func (s *UserStore) persist() error {
	return saveJSON(s.path, &s.doc)
}

// FindAccount returns the account for username, with Username populated.
func (s *UserStore) FindAccount(username string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.doc.Users[username]
	if !ok {
		return Account{}, false
	}
	out := *acct
	out.Username = username
	return out, true
}

// VerifyCredentials checks an exact match against the stored password.
// Passwords are stored and compared in plain text; only the comparison
// itself is constant-time.
func (s *UserStore) VerifyCredentials(username, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.doc.Users[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(acct.Password)) == 1
}

// Register validates a self-registration and, on success, places it in the
// pending queue for admin approval. The username namespace is shared with
// approved accounts.
func (s *UserStore) Register(username, password, confirmPassword string) error {
	username = strings.TrimSpace(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case username == "" || password == "" || confirmPassword == "":
		return ErrEmptyField
	case utf8.RuneCountInString(username) < 3:
		return ErrUsernameTooShort
	case utf8.RuneCountInString(password) < 3:
		return ErrPasswordTooShort
	case password != confirmPassword:
		return ErrPasswordMismatch
	}
	if _, taken := s.doc.Users[username]; taken {
		return ErrUsernameTaken
	}
	if _, pending := s.doc.PendingUsers[username]; pending {
		return ErrUsernamePending
	}

	s.doc.PendingUsers[username] = &PendingUser{Password: password}
	return s.persist()
}

// Approve promotes a pending registration to a full account with the user
// role and a generated welcome message.
func (s *UserStore) Approve(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.doc.PendingUsers[username]
	if !ok {
		return ErrNotFound
	}
	s.doc.Users[username] = &Account{
		Password:  pending.Password,
		Message:   "Welcome, " + username + "!",
		Role:      RoleUser,
		BgColor:   "#000000",
		TextColor: "#ffffff",
		Theme:     "dark",
	}
	delete(s.doc.PendingUsers, username)
	return s.persist()
}

// Reject discards a pending registration.
func (s *UserStore) Reject(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.PendingUsers[username]; !ok {
		return ErrNotFound
	}
	delete(s.doc.PendingUsers, username)
	return s.persist()
}

// SetRole changes an account's role. An admin may not demote themselves:
// actor is the acting admin's username.
func (s *UserStore) SetRole(actor, username string, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.doc.Users[username]
	if !ok {
		return ErrNotFound
	}
	if username == actor && role != RoleAdmin {
		return ErrSelfDemotion
	}
	acct.Role = role
	return s.persist()
}

// UpdateProfile replaces the account's display message and home colors.
func (s *UserStore) UpdateProfile(username, message, bgColor, textColor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.doc.Users[username]
	if !ok {
		return ErrNotFound
	}
	acct.Message = message
	acct.BgColor = bgColor
	acct.TextColor = textColor
	return s.persist()
}

// PanelEnabled reports the global admin-panel flag.
func (s *UserStore) PanelEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.doc.AdminPanelEnabled
}

// TogglePanel flips the admin-panel flag and returns the new state.
func (s *UserStore) TogglePanel() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := !*s.doc.AdminPanelEnabled
	s.doc.AdminPanelEnabled = &enabled
	return enabled, s.persist()
}

// Accounts returns all accounts sorted by username.
func (s *UserStore) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, 0, len(s.doc.Users))
	for name, acct := range s.doc.Users {
		a := *acct
		a.Username = name
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// PendingUsernames returns the pending queue sorted by username.
func (s *UserStore) PendingUsernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.doc.PendingUsers))
	for name := range s.doc.PendingUsers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
