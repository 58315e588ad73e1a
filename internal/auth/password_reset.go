package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResetStatus is the outcome of a broker call. Its value is the key of the
// translated message shown to the client.
type ResetStatus string

const (
	ResetLinkSent  ResetStatus = "passwords.sent"
	PasswordReset  ResetStatus = "passwords.reset"
	InvalidUser    ResetStatus = "passwords.user"
	InvalidToken   ResetStatus = "passwords.token"
	ResetThrottled ResetStatus = "passwords.throttled"
)

// Mailer delivers password reset links.
type Mailer interface {
	SendResetLink(ctx context.Context, email, link string) error
}

// LogMailer writes the reset link to the log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendResetLink(_ context.Context, email, link string) error {
	log.Info().Str("email", email).Str("link", link).Msg("password reset link")
	return nil
}

type BrokerOptions struct {
	AppURL   string
	Expire   time.Duration
	Throttle time.Duration
	Now      func() time.Time
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PasswordBroker issues and redeems password reset tokens.
type PasswordBroker struct {
	db     *gorm.DB
	mailer Mailer
	opts   BrokerOptions

	mu       sync.Mutex
	limiters map[string]*throttleEntry
}

func NewPasswordBroker(d *gorm.DB, mailer Mailer, opts BrokerOptions) *PasswordBroker {
	if mailer == nil {
		mailer = LogMailer{}
	}
	if opts.Expire <= 0 {
		opts.Expire = 60 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.AppURL = strings.TrimRight(opts.AppURL, "/")
	return &PasswordBroker{
		db:       d,
		mailer:   mailer,
		opts:     opts,
		limiters: make(map[string]*throttleEntry),
	}
}

// allow reports whether a link may be sent to email now. One link per
// throttle window per address.
func (b *PasswordBroker) allow(email string, now time.Time) bool {
	if b.opts.Throttle <= 0 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.limiters) > 1024 {
		for k, e := range b.limiters {
			if now.Sub(e.lastSeen) > b.opts.Throttle {
				delete(b.limiters, k)
			}
		}
	}

	e, ok := b.limiters[email]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(rate.Every(b.opts.Throttle), 1)}
		b.limiters[email] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (b *PasswordBroker) findUser(ctx context.Context, email string) (*User, error) {
	var u User
	err := b.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SendResetLink stores a fresh token for email and hands the link to the
// mailer. An earlier token for the same address is replaced.
func (b *PasswordBroker) SendResetLink(ctx context.Context, email string) (ResetStatus, error) {
	u, err := b.findUser(ctx, email)
	if err != nil {
		return "", fmt.Errorf("auth: find user: %w", err)
	}
	if u == nil {
		return InvalidUser, nil
	}

	now := b.opts.Now().UTC()
	if !b.allow(u.Email, now) {
		return ResetThrottled, nil
	}

	secret, err := newSecret()
	if err != nil {
		return "", fmt.Errorf("auth: generate reset token: %w", err)
	}
	row := PasswordResetToken{Email: u.Email, Token: hashSecret(secret), CreatedAt: now}
	if err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "created_at"}),
	}).Create(&row).Error; err != nil {
		return "", fmt.Errorf("auth: store reset token: %w", err)
	}

	link := b.opts.AppURL + "/reset-password?token=" + url.QueryEscape(secret) + "&email=" + url.QueryEscape(u.Email)
	if err := b.mailer.SendResetLink(ctx, u.Email, link); err != nil {
		return "", fmt.Errorf("auth: send reset link: %w", err)
	}
	return ResetLinkSent, nil
}

// Reset replaces the password of email when token matches a live reset
// token. The token is consumed on success.
func (b *PasswordBroker) Reset(ctx context.Context, email, token, password string) (ResetStatus, *User, error) {
	u, err := b.findUser(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("auth: find user: %w", err)
	}
	if u == nil {
		return InvalidUser, nil, nil
	}

	var row PasswordResetToken
	err = b.db.WithContext(ctx).First(&row, "email = ?", u.Email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return InvalidToken, nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("auth: find reset token: %w", err)
	}

	now := b.opts.Now().UTC()
	if now.Sub(row.CreatedAt) > b.opts.Expire {
		if err := b.db.WithContext(ctx).Delete(&PasswordResetToken{}, "email = ?", u.Email).Error; err != nil {
			log.Warn().Err(err).Str("email", u.Email).Msg("failed to delete expired reset token")
		}
		return InvalidToken, nil, nil
	}
	if subtle.ConstantTimeCompare([]byte(row.Token), []byte(hashSecret(token))) != 1 {
		return InvalidToken, nil, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", nil, err
	}
	err = b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(u).Update("password", hash).Error; err != nil {
			return err
		}
		return tx.Delete(&PasswordResetToken{}, "email = ?", u.Email).Error
	})
	if err != nil {
		return "", nil, fmt.Errorf("auth: reset password: %w", err)
	}
	return PasswordReset, u, nil
}

var (
	supportedLocales = []language.Tag{language.English, language.Indonesian}
	localeMatcher    = language.NewMatcher(supportedLocales)
	resetMessages    = buildResetCatalog()
)

func buildResetCatalog() *catalog.Builder {
	c := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(tag language.Tag, key ResetStatus, msg string) {
		_ = c.SetString(tag, string(key), msg)
	}

	set(language.English, ResetLinkSent, "We have emailed your password reset link.")
	set(language.English, PasswordReset, "Your password has been reset.")
	set(language.English, InvalidUser, "We could not send a reset link for that email address.")
	set(language.English, InvalidToken, "This password reset token is invalid.")
	set(language.English, ResetThrottled, "Please wait before retrying.")

	set(language.Indonesian, ResetLinkSent, "Kami telah mengirimkan tautan reset kata sandi ke email Anda.")
	set(language.Indonesian, PasswordReset, "Kata sandi Anda telah direset.")
	set(language.Indonesian, InvalidUser, "Kami tidak dapat mengirim tautan reset untuk alamat email tersebut.")
	set(language.Indonesian, InvalidToken, "Token reset kata sandi ini tidak valid.")
	set(language.Indonesian, ResetThrottled, "Harap tunggu sebelum mencoba lagi.")
	return c
}

// Translate renders status in the best match of the Accept-Language
// header, falling back to the configured locale.
func Translate(status ResetStatus, acceptLanguage, fallback string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{language.Make(fallback)}
	}
	_, idx, conf := localeMatcher.Match(tags...)
	tag := supportedLocales[idx]
	if conf == language.No {
		tag = language.Make(fallback)
	}
	return message.NewPrinter(tag, message.Catalog(resetMessages)).Sprintf(string(status))
}
