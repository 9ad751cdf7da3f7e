package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cardwallet/internal/auth"
	"cardwallet/internal/errors"
	"cardwallet/internal/mailer"
	"cardwallet/internal/model"
	"cardwallet/internal/repository"
	"cardwallet/internal/validation"
)

const bcryptCost = 10

// AuthService handles registration, authentication and the email flows.
type AuthService interface {
	Register(ctx context.Context, email, password, name, phone string) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	// Activate confirms the email of the authenticated user. The uid must
	// decode to the requester's own ID before the token is even checked.
	Activate(ctx context.Context, userID uint, uid, token string) error
	ResendActivation(ctx context.Context, userID uint) error
	// PreCheck validates an email/password pair without touching storage.
	PreCheck(email, password string) error
	ResetPassword(ctx context.Context, email, phoneLastDigits string) error
	// ResetPasswordConfirm consumes the uid/token pair mailed by ResetPassword
	// and sets a new password.
	ResetPasswordConfirm(ctx context.Context, uid, token, newPassword string) error
}

type authService struct {
	userRepo      repository.UserRepository
	jwtService    *auth.JWTService
	tokenStore    auth.TokenStoreInterface
	tokenSource   *auth.TokenSource
	mail          mailer.Mailer
	activationURL string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	tokenSource *auth.TokenSource,
	mail mailer.Mailer,
	activationURL string,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtService:    jwtService,
		tokenStore:    tokenStore,
		tokenSource:   tokenSource,
		mail:          mail,
		activationURL: activationURL,
	}
}

// Register creates an inactive user and queues the activation email.
func (s *authService) Register(ctx context.Context, email, password, name, phone string) (*model.User, error) {
	fieldErrs := validation.CollectFieldErrors(map[string][]string{
		"email":        validation.Email(email),
		"name":         validation.Name(name, validation.MaxUserNameLen),
		"phone_number": validation.Phone(phone),
		"password":     validation.Password(password, email),
	})
	if !fieldErrs.Empty() {
		return nil, fieldErrs
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.ErrUserAlreadyExists
	}
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PhoneNumber:  phone,
		PasswordHash: string(hashedPassword),
		Active:       false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendActivation(ctx, user); err != nil {
		return nil, fmt.Errorf("queue activation email: %w", err)
	}
	return user, nil
}

func (s *authService) sendActivation(ctx context.Context, user *model.User) error {
	uid := auth.EncodeUID(user.ID)
	token := s.tokenSource.MakeToken(user)
	url := strings.NewReplacer("{uid}", uid, "{token}", token).Replace(s.activationURL)
	return s.mail.SendActivation(ctx, user.Email, uid, token, url)
}

// Login authenticates a user and returns access and refresh tokens. Users with
// unconfirmed email may still log in.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", "", nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, errors.ErrInvalidCredentials
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", errors.ErrInvalidCredentials
	}

	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return "", errors.ErrInvalidCredentials
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return "", errors.ErrInvalidCredentials
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", errors.ErrInvalidCredentials
	}

	accessToken, err = s.jwtService.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates the refresh token and blacklists the presented access
// token for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return errors.ErrInvalidCredentials
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
		return err
	}

	if accessToken == "" {
		return nil
	}
	claims, err := s.jwtService.ValidateToken(accessToken)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		// An access token that no longer validates needs no blacklisting.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.tokenStore.BlacklistAccessToken(ctx, claims.ID, ttl)
}

// Activate marks the user's email as confirmed.
func (s *authService) Activate(ctx context.Context, userID uint, uid, token string) error {
	idFromUID, err := auth.DecodeUID(uid)
	if err != nil || idFromUID != userID {
		return errors.ErrInvalidUID
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return errors.ErrUserNotFound
	}
	if user.Active {
		return errors.ErrAlreadyActivated
	}
	if !s.tokenSource.CheckToken(user, token) {
		return errors.ErrInvalidActivationToken
	}

	user.Active = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}
	return nil
}

// ResendActivation queues a fresh activation email for an unconfirmed user.
func (s *authService) ResendActivation(ctx context.Context, userID uint) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return errors.ErrUserNotFound
	}
	if user.Active {
		return errors.ErrAlreadyActivated
	}
	return s.sendActivation(ctx, user)
}

// PreCheck runs the registration validation rules without creating anything.
func (s *authService) PreCheck(email, password string) error {
	fieldErrs := validation.CollectFieldErrors(map[string][]string{
		"email":    validation.Email(email),
		"password": validation.Password(password, email),
	})
	if !fieldErrs.Empty() {
		return fieldErrs
	}
	return nil
}

// ResetPassword queues a password-reset email after checking the last four
// phone digits. Unknown emails succeed silently so the endpoint cannot be
// used to enumerate registered addresses.
func (s *authService) ResetPassword(ctx context.Context, email, phoneLastDigits string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	phone := user.PhoneNumber
	if len(phone) < 4 || phone[len(phone)-4:] != phoneLastDigits {
		return errors.ErrPhoneDigitsMismatch
	}

	uid := auth.EncodeUID(user.ID)
	token := s.tokenSource.MakeToken(user)
	return s.mail.SendPasswordReset(ctx, user.Email, uid, token)
}

// ResetPasswordConfirm sets a new password for the user the uid decodes to,
// after the token verifies against that user's current password hash. The hash
// change invalidates the token, so it is single use.
func (s *authService) ResetPasswordConfirm(ctx context.Context, uid, token, newPassword string) error {
	userID, err := auth.DecodeUID(uid)
	if err != nil {
		return errors.ErrInvalidUID
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		// Unknown uids look the same as malformed ones; no account enumeration.
		return errors.ErrInvalidUID
	}
	if !s.tokenSource.CheckToken(user, token) {
		return errors.ErrInvalidActivationToken
	}

	fieldErrs := validation.CollectFieldErrors(map[string][]string{
		"new_password": validation.Password(newPassword, user.Email),
	})
	if !fieldErrs.Empty() {
		return fieldErrs
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
