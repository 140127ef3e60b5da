package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/delego-hq/delego/internal/application/port"
	"github.com/delego-hq/delego/internal/domain/apperr"
	"github.com/delego-hq/delego/internal/domain/entity"
	"github.com/delego-hq/delego/pkg/utils"
)

// AuthConfig holds token issuance settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LoginResult is a token together with the authenticated employee
type LoginResult struct {
	Token    string           `json:"token"`
	Employee *entity.Employee `json:"employee"`
}

// AuthService issues and verifies actor identity. Self-registration
// creates a plain employee account; roles are granted by admins.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*entity.Employee, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyToken(token string) (int64, error)
	Me(ctx context.Context, actorID int64) (*entity.Employee, error)
}

type authServiceImpl struct {
	employeeRepo port.EmployeeRepository
	txManager    port.TransactionManager
	cfg          AuthConfig
	logger       Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(employeeRepo port.EmployeeRepository, txManager port.TransactionManager, cfg AuthConfig, logger Logger) AuthService {
	return &authServiceImpl{
		employeeRepo: employeeRepo,
		txManager:    txManager,
		cfg:          cfg,
		logger:       logger,
	}
}

// Register creates a new active employee account
func (s *authServiceImpl) Register(ctx context.Context, username, email, password string) (*entity.Employee, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperr.Validationf("username, email and password are required")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, apperr.Validationf("invalid email: %s", email)
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, apperr.Validationf("%s", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var created *entity.Employee
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.employeeRepo.FindByUsernameOrEmail(txCtx, username, email, 0)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflictf("employee with this username or email already exists")
		}

		employee := &entity.Employee{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			Role:         entity.RoleEmployee,
			IsActive:     true,
			CreatedAt:    time.Now(),
		}
		if err := s.employeeRepo.Create(txCtx, employee); err != nil {
			return err
		}
		created = employee
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Employee registered", "id", created.ID, "username", username)
	return created, nil
}

// Login verifies credentials and issues a signed token. Bad email and
// bad password are indistinguishable to the caller; an inactive account
// is Forbidden rather than Unauthorized.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Validationf("email and password are required")
	}

	employee, err := s.employeeRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, apperr.Unauthorizedf("invalid credentials")
	}
	if !employee.IsActive {
		return nil, apperr.Forbiddenf("account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorizedf("invalid credentials")
	}

	token, err := s.issueToken(employee.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Employee logged in", "id", employee.ID)
	return &LoginResult{Token: token, Employee: employee}, nil
}

func (s *authServiceImpl) issueToken(employeeID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", employeeID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses a signed token and returns the employee id it
// carries. Any parse or signature failure is Unauthorized.
func (s *authServiceImpl) VerifyToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, apperr.Unauthorizedf("invalid or expired token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, apperr.Unauthorizedf("invalid token claims")
	}

	var employeeID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &employeeID); err != nil {
		return 0, apperr.Unauthorizedf("invalid token subject")
	}
	return employeeID, nil
}

// Me returns the authenticated employee's own account
func (s *authServiceImpl) Me(ctx context.Context, actorID int64) (*entity.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, apperr.NotFoundf("employee %d not found", actorID)
	}
	return employee, nil
}
