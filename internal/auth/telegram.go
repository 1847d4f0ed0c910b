package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

var (
	ErrInitDataMissing = errors.New("telegram init data is missing")
	ErrInitDataInvalid = errors.New("telegram init data signature mismatch")
	ErrInitDataExpired = errors.New("telegram init data is too old")
)

// InitData is the verified launch payload of a Telegram Mini App.
type InitData struct {
	User       *User
	AuthDate   time.Time
	QueryID    string
	StartParam string
}

// InitDataVerifier checks Telegram WebApp initData signatures.
type InitDataVerifier struct {
	botToken string
	maxAge   time.Duration
}

// NewInitDataVerifier creates a verifier. maxAge 0 disables the age check.
func NewInitDataVerifier(botToken string, maxAge time.Duration) *InitDataVerifier {
	return &InitDataVerifier{
		botToken: botToken,
		maxAge:   maxAge,
	}
}

// Verify validates raw initData against the bot token and parses it.
func (v *InitDataVerifier) Verify(raw string) (*InitData, error) {
	if strings.TrimSpace(raw) == "" || v.botToken == "" {
		return nil, ErrInitDataMissing
	}

	if err := initdata.Validate(raw, v.botToken, v.maxAge); err != nil {
		if errors.Is(err, initdata.ErrExpired) {
			return nil, ErrInitDataExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInitDataInvalid, err)
	}

	parsed, err := initdata.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitDataInvalid, err)
	}

	data := &InitData{
		AuthDate:   parsed.AuthDate(),
		QueryID:    parsed.QueryID,
		StartParam: parsed.StartParam,
	}
	if parsed.User.ID != 0 {
		data.User = &User{
			ID:           parsed.User.ID,
			FirstName:    parsed.User.FirstName,
			LastName:     parsed.User.LastName,
			Username:     parsed.User.Username,
			LanguageCode: parsed.User.LanguageCode,
			PhotoURL:     parsed.User.PhotoURL,
		}
	}
	return data, nil
}

// Sign produces a valid initData query for the given fields. A missing
// auth_date is set to now. Used by tests and the local demo mode.
func (v *InitDataVerifier) Sign(values url.Values) string {
	authDate := time.Now()
	if unix, err := strconv.ParseInt(values.Get("auth_date"), 10, 64); err == nil {
		authDate = time.Unix(unix, 0)
	}

	payload := make(map[string]string, len(values))
	for k := range values {
		if k != "hash" && k != "auth_date" {
			payload[k] = values.Get(k)
		}
	}

	signed := url.Values{}
	for k, val := range payload {
		signed.Set(k, val)
	}
	signed.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	signed.Set("hash", initdata.Sign(payload, v.botToken, authDate))
	return signed.Encode()
}
