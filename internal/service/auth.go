package service

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/templui/showcase/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const AuthCookieName = "auth_token"

// AuthService authenticates the single dashboard admin configured through the
// environment and issues the JWT that gates the admin API.
type AuthService struct {
	adminEmail        string
	adminPasswordHash string
	jwtSecret         string
	jwtExpiry         time.Duration
	secureCookies     bool
}

func NewAuthService(adminEmail, adminPasswordHash, jwtSecret string, jwtExpiry time.Duration, secureCookies bool) *AuthService {
	return &AuthService{
		adminEmail:        strings.TrimSpace(strings.ToLower(adminEmail)),
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
		jwtExpiry:         jwtExpiry,
		secureCookies:     secureCookies,
	}
}

func (s *AuthService) Login(email, password string) (*model.Admin, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if s.adminPasswordHash == "" {
		return nil, fmt.Errorf("admin login disabled: %w", ErrInvalidCredentials)
	}

	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	err := s.ComparePassword(password, s.adminPasswordHash)
	if !emailMatch || err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return &model.Admin{Email: s.adminEmail}, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateJWT returns a signed token and its expiry.
func (s *AuthService) GenerateJWT(admin *model.Admin) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.jwtExpiry)
	claims := jwt.MapClaims{
		"sub":   admin.Email,
		"email": admin.Email,
		"role":  "admin",
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (*model.Admin, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)
	if role != "admin" || email != s.adminEmail {
		return nil, fmt.Errorf("token does not belong to the admin")
	}

	return &model.Admin{Email: email}, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
