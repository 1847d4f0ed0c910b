package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-bot-token"

func signedInitData(v *InitDataVerifier, authDate time.Time) string {
	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("query_id", "AAH-query")
	values.Set("user", `{"id":424242,"first_name":"Анна","username":"anna","language_code":"ru"}`)
	return v.Sign(values)
}

func TestInitDataVerifier_Valid(t *testing.T) {
	v := NewInitDataVerifier(testBotToken, time.Hour)

	data, err := v.Verify(signedInitData(v, time.Now()))

	require.NoError(t, err)
	require.NotNil(t, data.User)
	assert.Equal(t, int64(424242), data.User.ID)
	assert.Equal(t, "anna", data.User.Username)
	assert.Equal(t, "ru", data.User.LanguageCode)
	assert.Equal(t, "AAH-query", data.QueryID)
}

func TestInitDataVerifier_Missing(t *testing.T) {
	v := NewInitDataVerifier(testBotToken, time.Hour)

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrInitDataMissing)

	_, err = NewInitDataVerifier("", time.Hour).Verify("auth_date=1&hash=00")
	assert.ErrorIs(t, err, ErrInitDataMissing)
}

func TestInitDataVerifier_Tampered(t *testing.T) {
	v := NewInitDataVerifier(testBotToken, time.Hour)
	raw := signedInitData(v, time.Now())

	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	values.Set("user", `{"id":1,"first_name":"Mallory"}`)

	_, err = v.Verify(values.Encode())
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestInitDataVerifier_WrongBot(t *testing.T) {
	other := NewInitDataVerifier("999:other-bot", time.Hour)
	v := NewInitDataVerifier(testBotToken, time.Hour)

	_, err := v.Verify(signedInitData(other, time.Now()))
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestInitDataVerifier_NoHash(t *testing.T) {
	v := NewInitDataVerifier(testBotToken, time.Hour)

	_, err := v.Verify("auth_date=" + strconv.FormatInt(time.Now().Unix(), 10) + "&user=%7B%7D")
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestInitDataVerifier_Expired(t *testing.T) {
	v := NewInitDataVerifier(testBotToken, time.Hour)

	_, err := v.Verify(signedInitData(v, time.Now().Add(-2*time.Hour)))
	assert.ErrorIs(t, err, ErrInitDataExpired)

	noLimit := NewInitDataVerifier(testBotToken, 0)
	_, err = noLimit.Verify(signedInitData(noLimit, time.Now().Add(-48*time.Hour)))
	assert.NoError(t, err)
}

func TestInitDataVerifier_StartParamAndNoUser(t *testing.T) {
	v := NewInitDataVerifier(testBotToken, time.Hour)
	values := url.Values{}
	values.Set("start_param", "promo42")

	data, err := v.Verify(v.Sign(values))

	require.NoError(t, err)
	assert.Nil(t, data.User)
	assert.Equal(t, "promo42", data.StartParam)
	assert.WithinDuration(t, time.Now(), data.AuthDate, 5*time.Second)
}

func TestInitDataVerifier_SignMatchesWebAppHash(t *testing.T) {
	v := NewInitDataVerifier(testBotToken, 0)
	values := url.Values{}
	values.Set("auth_date", "1700000000")
	values.Set("query_id", "AAH-query")
	values.Set("user", `{"id":7,"first_name":"Ivan"}`)

	signed, err := url.ParseQuery(v.Sign(values))
	require.NoError(t, err)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(testBotToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte("auth_date=1700000000\nquery_id=AAH-query\nuser={\"id\":7,\"first_name\":\"Ivan\"}"))

	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), signed.Get("hash"))
	assert.Equal(t, "1700000000", signed.Get("auth_date"))
}
