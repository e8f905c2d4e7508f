package application

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quizhub/config"
	"github.com/oksasatya/quizhub/internal/domain/entity"
	repo "github.com/oksasatya/quizhub/internal/domain/repository"
	"github.com/oksasatya/quizhub/pkg/helpers"
	"github.com/oksasatya/quizhub/pkg/mailer"
	tpl "github.com/oksasatya/quizhub/pkg/mailer/templates"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrDuplicateEmail     = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongOTP           = errors.New("wrong otp code")
	ErrOTPExpired         = errors.New("otp code expired")
	ErrTooManyAttempts    = errors.New("too many otp attempts")
)

// emailShape is the minimal local@domain.tld check applied at signup.
var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Publisher enqueues email jobs. Satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService drives the account lifecycle: signup, login, OTP
// challenge/response and session issue/teardown.
//
// Teachers never receive an OTP challenge; students are challenged at signup
// and again at every login.
type AuthService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Pub    Publisher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewAuthService(r repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, pub Publisher, logger *logrus.Logger, cfg *config.Config) *AuthService {
	return &AuthService{Repo: r, JWT: jwt, Redis: rdb, Pub: pub, Logger: logger, Cfg: cfg}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type SignupResult struct {
	UserID    string
	Role      entity.Role
	OTPIssued bool
}

type LoginResult struct {
	OTPRequired bool
	User        *entity.User
	Tokens      TokenPair
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Signup creates an account. Role is derived from the email domain; students
// get a pending OTP written in the same insert and the code is mailed
// best-effort. The insert is atomic on the unique email index, so concurrent
// duplicate signups collapse into ErrDuplicateEmail.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*SignupResult, error) {
	email = entity.NormalizeEmail(email)
	if !emailShape.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	role := entity.RoleForDomain(entity.EmailDomain(email), s.Cfg.TeacherDomainSet())

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Email: email, Name: name, PasswordHash: hash, Role: role}

	var code string
	if role == entity.RoleStudent {
		code, err = helpers.GenOTPCode()
		if err != nil {
			return nil, err
		}
		exp := time.Now().Add(s.Cfg.OTPTTL)
		u.OTPCode = &code
		u.OTPExpiresAt = &exp
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	if role == entity.RoleStudent {
		s.sendOTPEmail(ctx, u, tpl.SignupOTP, code)
	} else {
		s.sendEmail(ctx, u, tpl.TeacherWelcome, nil)
	}

	return &SignupResult{UserID: u.ID, Role: role, OTPIssued: role == entity.RoleStudent}, nil
}

// Authenticate validates email/password without issuing tokens. Unknown
// identity and wrong password collapse into one error so accounts cannot be
// enumerated.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and either establishes a session (teachers) or issues
// a fresh OTP challenge (students). A fresh code always overwrites any stale
// pending one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if u.Role == entity.RoleTeacher {
		pair, err := s.IssueTokens(ctx, u)
		if err != nil {
			return nil, err
		}
		return &LoginResult{User: u, Tokens: pair}, nil
	}

	code, err := helpers.GenOTPCode()
	if err != nil {
		return nil, err
	}
	exp := time.Now().Add(s.Cfg.OTPTTL)
	if err := s.Repo.SetOTP(ctx, u.ID, code, exp); err != nil {
		return nil, err
	}
	s.sendOTPEmail(ctx, u, tpl.LoginOTP, code)

	return &LoginResult{OTPRequired: true, User: u}, nil
}

// ConfirmSignupOTP consumes the post-signup challenge. On success the slot is
// cleared and the account marked verified; the caller must still log in.
func (s *AuthService) ConfirmSignupOTP(ctx context.Context, email, code string) error {
	u, err := s.lookupForOTP(ctx, email)
	if err != nil {
		return err
	}
	if err := s.matchOTP(ctx, u, code); err != nil {
		return err
	}
	if err := s.Repo.ClearOTP(ctx, u.ID); err != nil {
		return err
	}
	return s.Repo.SetVerified(ctx, u.ID)
}

// ConfirmLoginOTP consumes the login challenge and establishes the session.
// The session role is the account's role, read back after the match.
func (s *AuthService) ConfirmLoginOTP(ctx context.Context, email, code string) (*LoginResult, error) {
	u, err := s.lookupForOTP(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.matchOTP(ctx, u, code); err != nil {
		return nil, err
	}
	if err := s.Repo.ClearOTP(ctx, u.ID); err != nil {
		return nil, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Tokens: pair}, nil
}

func (s *AuthService) lookupForOTP(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil || u == nil {
		// Same failure as a wrong code so the endpoint cannot be used to
		// probe which emails exist.
		return nil, ErrWrongOTP
	}
	return u, nil
}

// matchOTP applies the shared challenge-response transition: the submitted
// code must equal the stored pending code exactly, within its expiry window
// and the bounded attempt budget. On a plain mismatch the pending code stays
// in place so the user may retry.
func (s *AuthService) matchOTP(ctx context.Context, u *entity.User, code string) error {
	if u.OTPCode == nil {
		return ErrWrongOTP
	}
	if u.OTPExpiresAt != nil && time.Now().After(*u.OTPExpiresAt) {
		if err := s.Repo.ClearOTP(ctx, u.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("clear expired otp failed")
		}
		return ErrOTPExpired
	}
	if u.OTPAttempts >= s.Cfg.OTPMaxAttempts {
		if err := s.Repo.ClearOTP(ctx, u.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("clear exhausted otp failed")
		}
		return ErrTooManyAttempts
	}
	if !helpers.OTPEqual(*u.OTPCode, code) {
		attempts, err := s.Repo.IncrementOTPAttempts(ctx, u.ID)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("increment otp attempts failed")
		}
		if err == nil && attempts >= s.Cfg.OTPMaxAttempts {
			if cerr := s.Repo.ClearOTP(ctx, u.ID); cerr != nil && s.Logger != nil {
				s.Logger.WithError(cerr).WithField("user_id", u.ID).Warn("clear exhausted otp failed")
			}
			return ErrTooManyAttempts
		}
		return ErrWrongOTP
	}
	return nil
}

// RequestPasswordReset issues a reset code for an existing account. Unknown
// emails succeed silently so the endpoint cannot be used to probe accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil || u == nil {
		return nil
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	exp := time.Now().Add(s.Cfg.OTPTTL)
	if err := s.Repo.SetOTP(ctx, u.ID, code, exp); err != nil {
		return err
	}
	s.sendOTPEmail(ctx, u, tpl.ResetOTP, code)
	return nil
}

// ResetPassword consumes the reset code and stores the new hash. Any live
// session is discarded so existing cookies die with the old password.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	u, err := s.lookupForOTP(ctx, email)
	if err != nil {
		return err
	}
	if err := s.matchOTP(ctx, u, code); err != nil {
		return err
	}
	if err := s.Repo.ClearOTP(ctx, u.ID); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	s.Logout(ctx, u.ID)
	return nil
}

// IssueTokens generates the access/refresh pair and records the session
// snapshot in Redis under a fresh session id.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, string(u.Role), sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, string(u.Role), sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := helpers.SessionKey(u.ID)
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"role":       string(u.Role),
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.Cfg.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and token pair when the refresh token's sid
// still matches the live session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, *entity.User, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, helpers.SessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, nil, ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return pair, u, nil
}

// Logout unconditionally discards the session.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	if s.Redis == nil || userID == "" {
		return
	}
	if err := s.Redis.Del(ctx, helpers.SessionKey(userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}

func (s *AuthService) sendOTPEmail(ctx context.Context, u *entity.User, template, code string) {
	s.sendEmail(ctx, u, template, map[string]any{"Code": code})
}

// sendEmail enqueues a mail job. Delivery is best-effort: the state
// transition that triggered the mail has already happened and a queue
// failure must not roll it back, so errors are logged and swallowed.
func (s *AuthService) sendEmail(ctx context.Context, u *entity.User, template string, extra map[string]any) {
	if s.Pub == nil || (s.Cfg != nil && !s.Cfg.MailSendEnabled) {
		return
	}
	data := map[string]any{
		"Name":      u.Name,
		"Email":     u.Email,
		"AppName":   s.Cfg.AppName,
		"ExpiresIn": s.Cfg.OTPTTL.String(),
	}
	for k, v := range extra {
		data[k] = v
	}
	job := mailer.EmailJob{To: u.Email, Template: template, Data: data}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  u.ID,
			"template": template,
		}).Warn("failed to enqueue email")
	}
}
