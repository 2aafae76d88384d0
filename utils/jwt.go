package utils

import (
	"errors"
	"time"

	"filevault/config"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Claims struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Email    string             `json:"email"`
	Username string             `json:"username"`
	Role     string             `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

var (
	jwtSecret        = []byte("dev-access-secret")
	jwtRefreshSecret = []byte("dev-refresh-secret")
	accessTokenTTL   = 24 * time.Hour
	refreshTokenTTL  = 7 * 24 * time.Hour
)

// InitJWT points the signers at the loaded configuration. Call once after
// config.LoadConfig, before the server starts handling requests; the package
// defaults above exist only so tests can sign tokens without a config.
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.JWTSecret)
	jwtRefreshSecret = []byte(cfg.JWTRefreshSecret)
}

// GenerateTokenPair generates both access and refresh tokens
func GenerateTokenPair(userID primitive.ObjectID, email, username, role string) (*TokenPair, error) {
	accessToken, err := GenerateAccessToken(userID, email, username, role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := GenerateRefreshToken(userID, email)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// GenerateAccessToken creates a new JWT access token
func GenerateAccessToken(userID primitive.ObjectID, email, username, role string) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Email:    email,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "filevault",
			Subject:   userID.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// GenerateRefreshToken creates a new JWT refresh token
func GenerateRefreshToken(userID primitive.ObjectID, email string) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(refreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "filevault",
			Subject:   userID.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtRefreshSecret)
}

// ValidateToken validates an access token and returns its claims
func ValidateToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, jwtSecret)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func ValidateRefreshToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, jwtRefreshSecret)
}

func parseToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
