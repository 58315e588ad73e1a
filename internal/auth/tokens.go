package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gogofit/backend/internal/utils"
	"gorm.io/gorm"
)

const tokenName = "auth_token"

var ErrTokenNotFound = errors.New("auth: token not found")

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func newSecret() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// issueToken stores a new token for userID and returns the plain text
// "<id>|<secret>" form. Only the hash of the secret is persisted.
func issueToken(tx *gorm.DB, userID uint, ttl time.Duration, now time.Time) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}

	pat := PersonalAccessToken{
		UserID: userID,
		Name:   tokenName,
		Token:  hashSecret(secret),
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		pat.ExpiresAt = &exp
	}
	if err := tx.Create(&pat).Error; err != nil {
		return "", fmt.Errorf("auth: store token: %w", err)
	}
	return strconv.FormatUint(uint64(pat.ID), 10) + "|" + secret, nil
}

// revokeToken deletes exactly one token. A token that is already gone
// yields ErrTokenNotFound.
func revokeToken(ctx context.Context, d *gorm.DB, tokenID uint) error {
	res := d.WithContext(ctx).Delete(&PersonalAccessToken{}, tokenID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// SessionInfo resolves bearer tokens against personal_access_tokens.
type SessionInfo struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (si SessionInfo) now() time.Time {
	if si.Now != nil {
		return si.Now()
	}
	return time.Now()
}

// FindSessionByToken resolves token and records its use. A token past its
// expiry yields utils.ErrSessionExpired.
func (si SessionInfo) FindSessionByToken(ctx context.Context, token string) (utils.SessionData, error) {
	var pat PersonalAccessToken

	id, secret, hasID := strings.Cut(token, "|")
	if hasID {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return utils.SessionData{}, ErrTokenNotFound
		}
		if err := si.DB.WithContext(ctx).First(&pat, uint(n)).Error; err != nil {
			return utils.SessionData{}, lookupErr(err)
		}
	} else {
		secret = token
		if err := si.DB.WithContext(ctx).First(&pat, "token = ?", hashSecret(secret)).Error; err != nil {
			return utils.SessionData{}, lookupErr(err)
		}
	}

	if subtle.ConstantTimeCompare([]byte(pat.Token), []byte(hashSecret(secret))) != 1 {
		return utils.SessionData{}, ErrTokenNotFound
	}

	now := si.now().UTC()
	if pat.ExpiresAt != nil && !pat.ExpiresAt.After(now) {
		return utils.SessionData{}, utils.ErrSessionExpired
	}
	if err := si.DB.WithContext(ctx).Model(&PersonalAccessToken{}).
		Where("id = ?", pat.ID).
		UpdateColumn("last_used_at", now).Error; err != nil {
		return utils.SessionData{}, fmt.Errorf("auth: touch token: %w", err)
	}

	return utils.SessionData{UserID: pat.UserID, TokenID: pat.ID}, nil
}

func lookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTokenNotFound
	}
	return err
}
