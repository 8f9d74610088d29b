package app

import (
	"time"

	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/utils"
)

type Config struct {
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	GamedataDir string

	// Devaluation schedule. The defaults come from observed game
	// behavior; both are tunable when the game data changes.
	DevalInterval time.Duration
	DevalRate     float64

	// PlotStaleAfter reverts a plot to unknown when no sweeper has seen
	// it for this long. Zero disables the policy.
	PlotStaleAfter time.Duration

	Port string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
	gamedataDir := utils.GetEnv("GAMEDATA_DIR", "gamedata", log)
	devalIntervalHours := utils.GetEnvAsInt("DEVAL_INTERVAL_HOURS", 6, log)
	devalRate := utils.GetEnvAsFloat("DEVAL_RATE", 0.0042, log)
	plotStaleAfterHours := utils.GetEnvAsInt("PLOT_STALE_AFTER_HOURS", 0, log)
	port := utils.GetEnv("PORT", "8080", log)
	return Config{
		JWTSecretKey:   jwtSecretKey,
		AccessTokenTTL: time.Duration(accessTokenTTLSeconds) * time.Second,
		GamedataDir:    gamedataDir,
		DevalInterval:  time.Duration(devalIntervalHours) * time.Hour,
		DevalRate:      devalRate,
		PlotStaleAfter: time.Duration(plotStaleAfterHours) * time.Hour,
		Port:           port,
	}
}
