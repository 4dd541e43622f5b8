package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shankarium/plm/internal/models"
)

// ErrInvalidToken is returned for missing, malformed or wrongly signed session tokens
var ErrInvalidToken = errors.New("invalid session token")

// Principal is the authenticated user carried by a session
type Principal struct {
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}

// Issuer signs and verifies HS256 session tokens. Tokens carry no exp claim and there
// is no revocation list: logout deletes the cookie, but a copied token stays valid until
// the signing key is rotated.
type Issuer struct {
	secret []byte
}

// NewIssuer creates an issuer for the given signing secret
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// Issue signs a session token for the user
func (i *Issuer) Issue(u *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  strconv.FormatInt(u.ID, 10),
		"username": u.Username,
		"role":     string(u.Role),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its principal
func (i *Issuer) Parse(tokenString string) (*Principal, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	roleStr, _ := claims["role"].(string)
	idStr, _ := claims["user_id"].(string)
	id, err := strconv.ParseInt(idStr, 10, 64)
	role := models.UserRole(roleStr)
	if err != nil || username == "" || !role.IsValid() {
		return nil, ErrInvalidToken
	}
	return &Principal{UserID: id, Username: username, Role: role}, nil
}
