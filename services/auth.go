package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffhubio/staffhub/db"
)

type AuthService struct {
	PG        *sql.DB
	Redis     *redis.Client
	JWTSecret string
	TokenTTL  time.Duration
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Employee db.Employee `json:"employee"`
	Token    string      `json:"token"`
}

// AuthClaims are the JWT claims issued at login.
type AuthClaims struct {
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(pg *sql.DB, redisClient *redis.Client, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		PG:        pg,
		Redis:     redisClient,
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTL,
	}
}

// HashPassword creates a bcrypt hash of the password
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// Login verifies the credentials against the employee directory and issues
// a signed token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var resp LoginResponse
	var passwordHash string

	err := s.PG.QueryRow(`
		SELECT e.id, e.name, e.email, e.role, e.department_id, e.is_active, e.password_hash, d.name
		FROM employees e
		JOIN departments d ON e.department_id = d.id
		WHERE e.email = $1
	`, req.Email).Scan(
		&resp.Employee.ID, &resp.Employee.Name, &resp.Employee.Email, &resp.Employee.Role,
		&resp.Employee.DepartmentID, &resp.Employee.IsActive, &passwordHash,
		&resp.Employee.DepartmentName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return resp, fmt.Errorf("invalid credentials")
		}
		return resp, fmt.Errorf("failed to look up employee: %w", err)
	}
	if !resp.Employee.IsActive {
		return resp, fmt.Errorf("account is deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		return resp, fmt.Errorf("invalid credentials")
	}

	token, err := s.issueToken(resp.Employee)
	if err != nil {
		return resp, err
	}
	resp.Token = token
	return resp, nil
}

// Logout revokes the token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}

	if s.Redis != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl > 0 {
			if err := s.Redis.Set(ctx, revocationKey(token), "1", ttl).Err(); err != nil {
				return fmt.Errorf("failed to revoke token: %w", err)
			}
		}
	}
	return nil
}

// ValidateToken parses and verifies a bearer token, rejecting revoked ones.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*AuthClaims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		_, err := s.Redis.Get(ctx, revocationKey(token)).Result()
		if err == nil {
			return nil, fmt.Errorf("token has been revoked")
		}
		if err != redis.Nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
	}
	return claims, nil
}

func (s *AuthService) issueToken(employee db.Employee) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		EmployeeID: employee.ID,
		Email:      employee.Email,
		Role:       employee.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(tokenStr string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func revocationKey(token string) string {
	return "auth:revoked:" + token
}
