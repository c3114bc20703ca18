package homespace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserStore(t *testing.T) *UserStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users_data.json")
	return NewUserStore(path, "admin", "secret")
}

func TestNewUserStoreSeedsAdmin(t *testing.T) {
	s := newTestUserStore(t)

	acct, ok := s.FindAccount("admin")
	require.True(t, ok)
	assert.Equal(t, "admin", acct.Username)
	assert.Equal(t, RoleAdmin, acct.Role)
	assert.True(t, s.PanelEnabled())
}

func TestNewUserStoreLoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users_data.json")
	s := NewUserStore(path, "admin", "secret")
	require.NoError(t, s.Register("alice", "pass1", "pass1"))
	require.NoError(t, s.Approve("alice"))

	reloaded := NewUserStore(path, "admin", "other")
	acct, ok := reloaded.FindAccount("alice")
	require.True(t, ok)
	assert.Equal(t, RoleUser, acct.Role)

	// The seed credentials are only used for a fresh file.
	assert.True(t, reloaded.VerifyCredentials("admin", "secret"))
	assert.False(t, reloaded.VerifyCredentials("admin", "other"))
}

func TestNewUserStoreCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewUserStore(path, "admin", "secret")
	_, ok := s.FindAccount("admin")
	assert.True(t, ok)
}

func TestVerifyCredentials(t *testing.T) {
	s := newTestUserStore(t)

	assert.True(t, s.VerifyCredentials("admin", "secret"))
	assert.False(t, s.VerifyCredentials("admin", "wrong"))
	assert.False(t, s.VerifyCredentials("ghost", "secret"))
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		confirm  string
		wantErr  error
	}{
		{"empty username", "", "pass1", "pass1", ErrEmptyField},
		{"empty password", "alice", "", "", ErrEmptyField},
		{"whitespace username", "   ", "pass1", "pass1", ErrEmptyField},
		{"short username", "al", "pass1", "pass1", ErrUsernameTooShort},
		{"short password", "alice", "pw", "pw", ErrPasswordTooShort},
		{"short multibyte username", "アイ", "pass1", "pass1", ErrUsernameTooShort},
		{"short multibyte password", "alice", "アイ", "アイ", ErrPasswordTooShort},
		{"three-rune multibyte username", "アイウ", "pass1", "pass1", nil},
		{"mismatch", "alice", "pass1", "pass2", ErrPasswordMismatch},
		{"taken by account", "admin", "pass1", "pass1", ErrUsernameTaken},
		{"valid", "alice", "pass1", "pass1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestUserStore(t)
			err := s.Register(tt.username, tt.password, tt.confirm)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicatePending(t *testing.T) {
	s := newTestUserStore(t)
	require.NoError(t, s.Register("alice", "pass1", "pass1"))

	err := s.Register("alice", "pass2", "pass2")
	assert.ErrorIs(t, err, ErrUsernamePending)
}

func TestRegisterTrimsUsername(t *testing.T) {
	s := newTestUserStore(t)
	require.NoError(t, s.Register("  alice  ", "pass1", "pass1"))

	assert.Equal(t, []string{"alice"}, s.PendingUsernames())
}

func TestApprovePromotesToUser(t *testing.T) {
	s := newTestUserStore(t)
	require.NoError(t, s.Register("alice", "pass1", "pass1"))

	_, ok := s.FindAccount("alice")
	assert.False(t, ok, "pending user must not be able to log in")
	assert.False(t, s.VerifyCredentials("alice", "pass1"))

	require.NoError(t, s.Approve("alice"))

	acct, ok := s.FindAccount("alice")
	require.True(t, ok)
	assert.Equal(t, RoleUser, acct.Role)
	assert.Equal(t, "Welcome, alice!", acct.Message)
	assert.True(t, s.VerifyCredentials("alice", "pass1"))
	assert.Empty(t, s.PendingUsernames())
}

func TestApproveUnknownPending(t *testing.T) {
	s := newTestUserStore(t)
	assert.ErrorIs(t, s.Approve("ghost"), ErrNotFound)
}

func TestRejectDiscardsPending(t *testing.T) {
	s := newTestUserStore(t)
	require.NoError(t, s.Register("alice", "pass1", "pass1"))
	require.NoError(t, s.Reject("alice"))

	assert.Empty(t, s.PendingUsernames())
	assert.False(t, s.VerifyCredentials("alice", "pass1"))

	// The name is free again after rejection.
	assert.NoError(t, s.Register("alice", "pass1", "pass1"))
}

func TestSetRole(t *testing.T) {
	s := newTestUserStore(t)
	require.NoError(t, s.Register("alice", "pass1", "pass1"))
	require.NoError(t, s.Approve("alice"))

	require.NoError(t, s.SetRole("admin", "alice", RoleAdmin))
	acct, _ := s.FindAccount("alice")
	assert.Equal(t, RoleAdmin, acct.Role)

	require.NoError(t, s.SetRole("admin", "alice", RoleUser))
	acct, _ = s.FindAccount("alice")
	assert.Equal(t, RoleUser, acct.Role)
}

func TestSetRoleSelfDemotion(t *testing.T) {
	s := newTestUserStore(t)
	assert.ErrorIs(t, s.SetRole("admin", "admin", RoleUser), ErrSelfDemotion)

	// Re-granting your own role is a no-op, not a demotion.
	assert.NoError(t, s.SetRole("admin", "admin", RoleAdmin))
}

func TestUpdateProfile(t *testing.T) {
	s := newTestUserStore(t)
	require.NoError(t, s.UpdateProfile("admin", "hello", "#112233", "#445566"))

	acct, _ := s.FindAccount("admin")
	assert.Equal(t, "hello", acct.Message)
	assert.Equal(t, "#112233", acct.BgColor)
	assert.Equal(t, "#445566", acct.TextColor)

	assert.ErrorIs(t, s.UpdateProfile("ghost", "x", "", ""), ErrNotFound)
}

func TestTogglePanel(t *testing.T) {
	s := newTestUserStore(t)
	require.True(t, s.PanelEnabled())

	enabled, err := s.TogglePanel()
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, s.PanelEnabled())

	enabled, err = s.TogglePanel()
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestAccountsSorted(t *testing.T) {
	s := newTestUserStore(t)
	for _, name := range []string{"zoe", "bob", "alice"} {
		require.NoError(t, s.Register(name, "pass1", "pass1"))
		require.NoError(t, s.Approve(name))
	}

	accounts := s.Accounts()
	names := make([]string, len(accounts))
	for i, a := range accounts {
		names[i] = a.Username
	}
	assert.Equal(t, []string{"admin", "alice", "bob", "zoe"}, names)
}
