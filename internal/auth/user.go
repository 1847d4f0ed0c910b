package auth

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is the Telegram identity of a Mini App visitor.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// DisplayName is what greetings use: first name, else username, else id.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

// SessionKey is the storage namespace of an identified user.
func (u User) SessionKey() string {
	return UserSessionKey(u.ID)
}

func UserSessionKey(telegramID int64) string {
	return "tg:" + strconv.FormatInt(telegramID, 10)
}

// AnonymousSessionKey is the storage namespace of a visitor without identity.
func AnonymousSessionKey(id string) string {
	return "anon:" + id
}

// AdminSet holds the Telegram ids allowed into the admin console.
type AdminSet map[int64]struct{}

// ParseAdminIDs reads a comma separated id list such as ADMIN_IDS. Blank
// entries are skipped.
func ParseAdminIDs(s string) (AdminSet, error) {
	set := make(AdminSet)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		set[id] = struct{}{}
	}
	return set, nil
}

func (s AdminSet) IsAdmin(id int64) bool {
	_, ok := s[id]
	return ok
}

// RoleFor returns the role a Telegram user gets.
func (s AdminSet) RoleFor(id int64) string {
	if s.IsAdmin(id) {
		return RoleAdmin
	}
	return RoleCustomer
}
