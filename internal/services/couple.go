package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"soulsync-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	recoveryCodeLength = 16
	recoveryCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	jwtExpDays         = 365

	// A partner counts as online when seen within this window
	presenceWindow = 5 * time.Minute
)

var (
	codeAdjectives = []string{"Sweet", "Lovely", "Happy", "Soul", "Heart", "Star", "Moon", "Sun"}
	codeNouns      = []string{"Mates", "Hearts", "Lovers", "Pair", "Team", "Duo", "Bond", "Connection"}
)

// CoupleStore is the persistence surface the couple service needs
type CoupleStore interface {
	Create(ctx context.Context, couple *models.Couple) error
	AddUser(ctx context.Context, user *models.CoupleUser) (bool, error)
	GetByCode(ctx context.Context, code string) (*models.Couple, error)
	GetByRecoveryCode(ctx context.Context, recoveryCode string) (*models.Couple, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	UpdateLastSeen(ctx context.Context, coupleCode, userID string, seenAt time.Time) error
	UpdatePushToken(ctx context.Context, coupleCode, userID string, pushToken *string, updatedAt time.Time) error
}

// CoupleService handles couple linking, session recovery and presence
type CoupleService struct {
	couples   CoupleStore
	jwtSecret string
	now       func() time.Time
}

// NewCoupleService creates a new couple service
func NewCoupleService(couples CoupleStore, jwtSecret string) *CoupleService {
	return &CoupleService{
		couples:   couples,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

// Session identifies one member of a linked couple
type Session struct {
	CoupleCode string `json:"couple_code"`
	UserID     string `json:"user_id"`
}

// LinkResult is returned by the linking operations
type LinkResult struct {
	CoupleCode   string `json:"couple_code"`
	UserID       string `json:"user_id"`
	RecoveryCode string `json:"recovery_code"`
	Token        string `json:"token"`
}

// CreateCouple creates a new couple with the caller as its first member
func (s *CoupleService) CreateCouple(ctx context.Context, email, name, timezone string) (*LinkResult, error) {
	if email == "" || name == "" {
		return nil, fmt.Errorf("email and name are required: %w", ErrInvalidInput)
	}
	if timezone == "" {
		timezone = "UTC"
	}

	code, err := s.generateUniqueCoupleCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate couple code: %w", err)
	}

	now := s.now()
	userID := uuid.New().String()
	couple := &models.Couple{
		Code:         code,
		RecoveryCode: generateRecoveryCode(),
		CreatedAt:    now,
		Users: []models.CoupleUser{{
			CoupleCode: code,
			UserID:     userID,
			Email:      email,
			Name:       name,
			Timezone:   timezone,
			JoinedAt:   now,
			LastSeen:   now,
		}},
	}

	if err := s.couples.Create(ctx, couple); err != nil {
		return nil, fmt.Errorf("failed to create couple: %w", err)
	}

	token, err := s.GenerateJWT(userID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LinkResult{
		CoupleCode:   code,
		UserID:       userID,
		RecoveryCode: couple.RecoveryCode,
		Token:        token,
	}, nil
}

// JoinCouple adds the caller as the second member of an existing couple
func (s *CoupleService) JoinCouple(ctx context.Context, code, email, name, timezone string) (*LinkResult, error) {
	if email == "" || name == "" {
		return nil, fmt.Errorf("email and name are required: %w", ErrInvalidInput)
	}
	if timezone == "" {
		timezone = "UTC"
	}

	couple, err := s.couples.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(couple.Users) >= 2 {
		return nil, ErrCoupleFull
	}

	now := s.now()
	userID := uuid.New().String()
	added, err := s.couples.AddUser(ctx, &models.CoupleUser{
		CoupleCode: code,
		UserID:     userID,
		Email:      email,
		Name:       name,
		Timezone:   timezone,
		JoinedAt:   now,
		LastSeen:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join couple: %w", err)
	}
	if !added {
		// Lost the race against a concurrent join
		return nil, ErrCoupleFull
	}

	token, err := s.GenerateJWT(userID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LinkResult{
		CoupleCode:   code,
		UserID:       userID,
		RecoveryCode: couple.RecoveryCode,
		Token:        token,
	}, nil
}

// RecoverSession re-establishes a session from a recovery code and the
// member's email
func (s *CoupleService) RecoverSession(ctx context.Context, recoveryCode, email string) (*LinkResult, error) {
	couple, err := s.couples.GetByRecoveryCode(ctx, recoveryCode)
	if err != nil {
		return nil, err
	}

	var found *models.CoupleUser
	for i := range couple.Users {
		if strings.EqualFold(couple.Users[i].Email, email) {
			found = &couple.Users[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("recovery code or email not found: %w", ErrNotCoupleMember)
	}

	if err := s.couples.UpdateLastSeen(ctx, couple.Code, found.UserID, s.now()); err != nil {
		return nil, err
	}

	token, err := s.GenerateJWT(found.UserID, couple.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LinkResult{
		CoupleCode:   couple.Code,
		UserID:       found.UserID,
		RecoveryCode: couple.RecoveryCode,
		Token:        token,
	}, nil
}

// GetCouple retrieves a couple with its members
func (s *CoupleService) GetCouple(ctx context.Context, code string) (*models.Couple, error) {
	return s.couples.GetByCode(ctx, code)
}

// Heartbeat bumps the caller's last-seen timestamp
func (s *CoupleService) Heartbeat(ctx context.Context, sess Session) error {
	return s.couples.UpdateLastSeen(ctx, sess.CoupleCode, sess.UserID, s.now())
}

// SavePushToken stores the caller's push token. An empty token clears it.
func (s *CoupleService) SavePushToken(ctx context.Context, sess Session, pushToken string) error {
	var tok *string
	if pushToken != "" {
		tok = &pushToken
	}
	return s.couples.UpdatePushToken(ctx, sess.CoupleCode, sess.UserID, tok, s.now())
}

// IsOnline reports whether a member was seen within the presence window
func (s *CoupleService) IsOnline(user models.CoupleUser) bool {
	return s.now().Sub(user.LastSeen) < presenceWindow
}

// GenerateJWT generates a session token carrying the user and couple
func (s *CoupleService) GenerateJWT(userID, coupleCode string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     userID,
		"couple_code": coupleCode,
		"exp":         s.now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":         s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a session token and returns the session
func (s *CoupleService) ValidateJWT(tokenString string) (Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return Session{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return Session{}, fmt.Errorf("user_id not found in token")
	}
	coupleCode, ok := claims["couple_code"].(string)
	if !ok {
		return Session{}, fmt.Errorf("couple_code not found in token")
	}

	return Session{CoupleCode: coupleCode, UserID: userID}, nil
}

// generateUniqueCoupleCode generates a human-readable couple code that
// is not already taken
func (s *CoupleService) generateUniqueCoupleCode(ctx context.Context) (string, error) {
	maxAttempts := 10
	for i := 0; i < maxAttempts; i++ {
		code := generateCoupleCode()
		exists, err := s.couples.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code existence: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique code after %d attempts", maxAttempts)
}

// generateCoupleCode builds an adjective+noun+number code, uppercased,
// e.g. SWEETHEARTS42
func generateCoupleCode() string {
	adj := codeAdjectives[randomInt(len(codeAdjectives))]
	noun := codeNouns[randomInt(len(codeNouns))]
	num := randomInt(1000)
	return strings.ToUpper(fmt.Sprintf("%s%s%d", adj, noun, num))
}

// generateRecoveryCode generates a 16-character recovery code grouped
// with dashes, e.g. AB12-CD34-EF56-GH78
func generateRecoveryCode() string {
	var b strings.Builder
	for i := 0; i < recoveryCodeLength; i++ {
		b.WriteByte(recoveryCodeChars[randomInt(len(recoveryCodeChars))])
		if (i+1)%4 == 0 && i != recoveryCodeLength-1 {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}
