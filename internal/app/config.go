package app

import (
	"time"

	"github.com/yungbote/pulsefeed-backend/internal/platform/envutil"
)

type Config struct {
	JWTSecretKey   string
	Port           string
	SweepInterval  time.Duration
	RequestTimeout time.Duration
	GinReleaseMode bool
}

func LoadConfig() Config {
	return Config{
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		Port:           envutil.String("PORT", "8080"),
		SweepInterval:  envutil.Duration("SEEN_SWEEP_INTERVAL", time.Hour),
		RequestTimeout: envutil.Duration("REQUEST_TIMEOUT", 15*time.Second),
		GinReleaseMode: envutil.Bool("GIN_RELEASE_MODE", false),
	}
}
