package homespace

// Moderation wraps the UserStore with the admin-panel gating rule. Handlers
// reach registration moderation only through this service; the routing
// layer guarantees the caller is an admin.
type Moderation struct {
	users *UserStore
}

// NewModeration creates the moderation service over the given store.
func NewModeration(users *UserStore) *Moderation {
	return &Moderation{users: users}
}

// View builds the admin panel render model. While the panel is disabled the
// pending queue reads as empty and the count as zero; the stored queue is
// untouched and reappears in full once the panel is enabled again.
func (m *Moderation) View() ModerationView {
	accounts := m.users.Accounts()
	view := ModerationView{
		PanelEnabled: m.users.PanelEnabled(),
		Pending:      []string{},
		Accounts:     accounts,
		UserCount:    len(accounts),
	}
	if view.PanelEnabled {
		view.Pending = m.users.PendingUsernames()
		view.PendingCount = len(view.Pending)
	}
	return view
}

// Approve promotes a pending registration to an account.
func (m *Moderation) Approve(username string) error {
	return m.users.Approve(username)
}

// Reject discards a pending registration.
func (m *Moderation) Reject(username string) error {
	return m.users.Reject(username)
}

// SetRole grants or revokes the admin role. actor is the acting admin, who
// may not demote themselves.
func (m *Moderation) SetRole(actor, username string, role Role) error {
	return m.users.SetRole(actor, username, role)
}

// TogglePanel flips the panel flag and returns the new state.
func (m *Moderation) TogglePanel() (bool, error) {
	return m.users.TogglePanel()
}
