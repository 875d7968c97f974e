package app

import (
	redisclient "github.com/yungbote/pulsefeed-backend/internal/clients/redis"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
	"github.com/yungbote/pulsefeed-backend/internal/platform/neo4jdb"
)

type Clients struct {
	Graph      *neo4jdb.Client
	ViralCache redisclient.ViralCache
}

// wireClients initializes the optional infrastructure. Both clients degrade
// to nil when unconfigured; the services treat that as "feature off".
func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")

	graph, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("neo4j init failed, follow-graph mirror disabled", "error", err)
		graph = nil
	}

	viralCache, err := redisclient.NewViralCache(log)
	if err != nil {
		log.Warn("redis init failed, viral cache disabled", "error", err)
		viralCache = nil
	}

	return Clients{Graph: graph, ViralCache: viralCache}
}
