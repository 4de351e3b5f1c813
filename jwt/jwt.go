package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"Restore/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTokenRevoked = errors.New("token has been revoked")

// Identity is what a verified token says about the caller.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

type Signer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewSigner(privateKey *rsa.PrivateKey) *Signer {
	return &Signer{privateKey: privateKey, publicKey: &privateKey.PublicKey}
}

// LoadSigner reads the PEM encoded RSA key pair.
func LoadSigner(privateKeyPath, publicKeyPath string) (*Signer, error) {
	privateKey, err := loadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}
	publicKey, err := loadPublicKey(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load public key: %w", err)
	}
	return &Signer{privateKey: privateKey, publicKey: publicKey}, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(keyBytes)
}

// GenerateToken signs a token for the user that expires at expTime.
func (s *Signer) GenerateToken(identity Identity, expTime time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"userID": identity.UserID,
		"email":  identity.Email,
		"role":   identity.Role,
		"jti":    uuid.NewString(),
		"iat":    time.Now().Unix(),
		"exp":    expTime.Unix(),
	})
	return token.SignedString(s.privateKey)
}

// VerifyToken checks signature and expiry, then makes sure the token was
// not revoked by a logout.
func (s *Signer) VerifyToken(tokenString string, db *gorm.DB) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, jwt.ErrTokenSignatureInvalid
	}

	var loginToken models.LoginToken
	err = db.Where("token = ?", tokenString).First(&loginToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrTokenRevoked
		}
		return Identity{}, err
	}

	userID, _ := claims["userID"].(float64)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return Identity{UserID: uint(userID), Email: email, Role: role}, nil
}
