package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/medimanage/api/internal/domain"
	"github.com/medimanage/api/pkg/auth"
	"github.com/medimanage/api/pkg/metrics"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CalculationDeleter and PrescriptionDeleter cover the cascade when an
// account is removed: every owned record goes with it.
type CalculationDeleter interface {
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type PrescriptionDeleter interface {
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type AuthService struct {
	userRepo         UserRepository
	calculationRepo  CalculationDeleter
	prescriptionRepo PrescriptionDeleter
	jwtManager       *auth.JWTManager
	collector        *metrics.Collector
	auditSvc         *AuditService
	log              *zap.Logger
}

func NewAuthService(
	userRepo UserRepository,
	calculationRepo CalculationDeleter,
	prescriptionRepo PrescriptionDeleter,
	jwtManager *auth.JWTManager,
	collector *metrics.Collector,
	auditSvc *AuditService,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		calculationRepo:  calculationRepo,
		prescriptionRepo: prescriptionRepo,
		jwtManager:       jwtManager,
		collector:        collector,
		auditSvc:         auditSvc,
		log:              log,
	}
}

type RegisterCommand struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func (s *AuthService) Register(ctx context.Context, cmd *RegisterCommand, ip string) (*domain.User, error) {
	var fields []string
	if cmd.Name == "" {
		fields = append(fields, "name is required")
	}
	if cmd.Email == "" {
		fields = append(fields, "email is required")
	}
	if err := validatePasswordStrength(cmd.Password); err != nil {
		fields = append(fields, err.Error())
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if cmd.Password != cmd.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if _, err := s.userRepo.GetByEmail(ctx, cmd.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Name:         cmd.Name,
		Email:        cmd.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.collector.UsersRegisteredTotal.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: user.ID, UserRole: string(user.Role),
		Action: "create", ResourceType: "user", ResourceID: user.ID.String(), IPAddress: ip,
	})

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, ip string) (*domain.TokenPair, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Use bcrypt dummy hash to prevent timing-based user enumeration.
		// An attacker measuring response time should not be able to determine
		// whether the email exists in the system.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}

	if user.IsLocked() {
		return nil, nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		// Record failed attempt; lock if threshold exceeded
		_ = s.userRepo.UpdateLoginAttempt(ctx, user.ID, false)
		s.log.Warn("failed login attempt",
			zap.String("email", email),
			zap.String("ip", ip),
		)
		return nil, nil, ErrInvalidCredentials
	}

	_ = s.userRepo.UpdateLoginAttempt(ctx, user.ID, true)

	claims := &domain.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	pair, err := s.jwtManager.GenerateTokenPair(claims)
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: user.ID, UserRole: string(user.Role),
		Action: "login", ResourceType: "user", ResourceID: user.ID.String(), IPAddress: ip,
	})

	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", ip),
	)

	return pair, user, nil
}

// RefreshToken issues a new token pair given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-validate user is still active
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	updatedClaims := &domain.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	return s.jwtManager.GenerateTokenPair(updatedClaims)
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user.PasswordHash = string(hash)
	return s.userRepo.Update(ctx, user)
}

// DeleteAccount removes the user and cascades over owned records: the live
// calculation and all prescriptions go first, the account last.
func (s *AuthService) DeleteAccount(ctx context.Context, callerID, targetID uuid.UUID, ip string) error {
	if callerID != targetID {
		return ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if err := s.calculationRepo.DeleteByUser(ctx, targetID); err != nil {
		return fmt.Errorf("deleting calculations: %w", err)
	}
	if err := s.prescriptionRepo.DeleteByUser(ctx, targetID); err != nil {
		return fmt.Errorf("deleting prescriptions: %w", err)
	}
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: string(user.Role),
		Action: "delete", ResourceType: "user", ResourceID: targetID.String(), IPAddress: ip,
	})

	s.log.Info("user account deleted", zap.String("user_id", targetID.String()))
	return nil
}

func validatePasswordStrength(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
