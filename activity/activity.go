// Package activity records personal-page visits without storing raw
// visitor addresses. IPs are hashed with a per-installation salt before
// they touch disk.
package activity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// salt holds the per-installation random salt for IP hashing, protected by sync.Once.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates a persistent salt for IP hashing.
// Must be called once at startup before any requests are served.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

// getSalt returns the initialized salt value.
func getSalt() string {
	return salt.value
}

// Visit represents a single personal-page view.
type Visit struct {
	ID        int64     `json:"-"`
	Page      string    `json:"page"`   // Username whose page was viewed
	Viewer    string    `json:"viewer"` // Logged-in viewer, "" for the owner
	IPHash    string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// PageStat represents visit counts for one page.
type PageStat struct {
	Page   string `json:"page"`
	Visits int    `json:"visits"`
}

// Stats holds aggregated visit data for the admin surface.
type Stats struct {
	TotalVisits    int        `json:"total_visits"`
	UniqueVisitors int        `json:"unique_visitors"`
	TopPages       []PageStat `json:"top_pages"`
}

// HashIP creates a salted SHA-256 hash of an IP address.
func HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(getSalt() + ip))
	return hex.EncodeToString(h.Sum(nil))
}
