package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/paissadb/internal/gamedata"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/repos"
	"github.com/yungbote/paissadb/internal/types"
)

var ErrInvalidCredentials = errors.New("invalid sweeper credentials")

type SweeperClaims struct {
	jwt.RegisteredClaims
	SweeperID int64  `json:"sweeper_id"`
	WorldID   int    `json:"world_id"`
	Name      string `json:"name"`
}

type AuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (string, error)
	ParseToken(tokenString string) (*SweeperClaims, error)
	AccessTTL() time.Duration
}

type authService struct {
	log         *logger.Logger
	catalog     *gamedata.Catalog
	sweeperRepo repos.SweeperRepo
	jwtSecret   []byte
	accessTTL   time.Duration
}

func NewAuthService(
	log *logger.Logger,
	catalog *gamedata.Catalog,
	sweeperRepo repos.SweeperRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		log:         log.With("service", "AuthService"),
		catalog:     catalog,
		sweeperRepo: sweeperRepo,
		jwtSecret:   []byte(jwtSecretKey),
		accessTTL:   accessTTL,
	}
}

// Register creates or re-authenticates a sweeper and returns a bearer
// token. Sweeper ids are client-generated, so a returning sweeper must
// present the same secret it registered with.
func (as *authService) Register(ctx context.Context, req *types.RegisterRequest) (string, error) {
	if req.SweeperID == 0 {
		return "", fmt.Errorf("sweeper_id is required")
	}
	if req.Name == "" {
		return "", fmt.Errorf("sweeper name is required")
	}
	if len(req.Secret) < 8 {
		return "", fmt.Errorf("sweeper secret must be at least 8 characters")
	}
	if !as.catalog.WorldExists(req.WorldID) {
		return "", fmt.Errorf("unknown world %d", req.WorldID)
	}

	existing, err := as.sweeperRepo.GetByID(ctx, req.SweeperID)
	if err != nil {
		return "", fmt.Errorf("look up sweeper: %w", err)
	}

	sweeper := &types.Sweeper{
		ID:       req.SweeperID,
		Name:     req.Name,
		WorldID:  req.WorldID,
		LastSeen: time.Now().UTC(),
	}
	if existing != nil {
		if bcrypt.CompareHashAndPassword([]byte(existing.SecretHash), []byte(req.Secret)) != nil {
			return "", ErrInvalidCredentials
		}
		sweeper.SecretHash = existing.SecretHash
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hash sweeper secret: %w", err)
		}
		sweeper.SecretHash = string(hash)
	}

	if err := as.sweeperRepo.Upsert(ctx, sweeper); err != nil {
		return "", fmt.Errorf("store sweeper: %w", err)
	}

	return as.issueToken(sweeper)
}

func (as *authService) issueToken(sweeper *types.Sweeper) (string, error) {
	now := time.Now().UTC()
	claims := SweeperClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(sweeper.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
		SweeperID: sweeper.ID,
		WorldID:   sweeper.WorldID,
		Name:      sweeper.Name,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) ParseToken(tokenString string) (*SweeperClaims, error) {
	claims := &SweeperClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }
