package auth

import (
	"context"
	"fmt"

	"github.com/example/tg-storefront/internal/infrastructure/store"
	log "github.com/sirupsen/logrus"
)

// RememberKey is the blob key of the remembered user record.
const RememberKey = "shop_user"

// Rememberer keeps the last identified user of a session in a blob store, so
// a returning visitor is recognised without new initData.
type Rememberer struct {
	blobs  store.BlobStore
	jwt    *JWTService
	logger *log.Entry
}

func NewRememberer(blobs store.BlobStore, jwtService *JWTService) *Rememberer {
	return &Rememberer{
		blobs:  blobs,
		jwt:    jwtService,
		logger: log.WithField("component", "remember"),
	}
}

// Remember stores a signed record of user.
func (r *Rememberer) Remember(ctx context.Context, user User) error {
	token, _, err := r.jwt.GenerateRememberToken(user)
	if err != nil {
		return fmt.Errorf("failed to sign remembered user: %w", err)
	}
	if err := r.blobs.Set(ctx, RememberKey, []byte(token)); err != nil {
		return fmt.Errorf("failed to store remembered user: %w", err)
	}
	return nil
}

// Recall returns the remembered user. Anything unusable (missing, expired,
// forged, unreadable) yields anonymous; a bad record is dropped.
func (r *Rememberer) Recall(ctx context.Context) (*User, bool) {
	raw, ok, err := r.blobs.Get(ctx, RememberKey)
	if err != nil {
		r.logger.WithError(err).Warn("failed to read remembered user")
		return nil, false
	}
	if !ok || len(raw) == 0 {
		return nil, false
	}

	claims, err := r.jwt.ValidateRememberToken(string(raw))
	if err != nil || claims.Anonymous() {
		r.logger.WithError(err).Info("dropping remembered user")
		if err := r.Forget(ctx); err != nil {
			r.logger.WithError(err).Warn("failed to drop remembered user")
		}
		return nil, false
	}
	return claims.User(), true
}

// Forget drops the record. The blob is overwritten with an empty value.
func (r *Rememberer) Forget(ctx context.Context) error {
	return r.blobs.Set(ctx, RememberKey, []byte{})
}
