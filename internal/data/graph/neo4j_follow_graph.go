package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
	"github.com/yungbote/pulsefeed-backend/internal/platform/neo4jdb"
)

// UpsertFollowEdge mirrors one follow edge into the graph. Best-effort: a nil
// client is a no-op and the relational follow table stays authoritative.
func UpsertFollowEdge(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, followerID, followeeID uuid.UUID) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if followerID == uuid.Nil || followeeID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Best-effort schema init.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT account_id_unique IF NOT EXISTS FOR (a:Account) REQUIRE a.id IS UNIQUE`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (a:Account {id: $follower_id})
MERGE (b:Account {id: $followee_id})
MERGE (a)-[f:FOLLOWS]->(b)
SET f.synced_at = $synced_at
`, map[string]any{
			"follower_id": followerID.String(),
			"followee_id": followeeID.String(),
			"synced_at":   now,
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

// DeleteFollowEdge removes a mirrored follow edge. Best-effort.
func DeleteFollowEdge(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, followerID, followeeID uuid.UUID) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if followerID == uuid.Nil || followeeID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (a:Account {id: $follower_id})-[f:FOLLOWS]->(b:Account {id: $followee_id})
DELETE f
`, map[string]any{
			"follower_id": followerID.String(),
			"followee_id": followeeID.String(),
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

// FriendsOfFriendsIDs returns accounts two FOLLOWS hops from the viewer that
// the viewer does not already follow. Returns nil ids on a nil client so the
// caller can fall back to the relational two-hop query.
func FriendsOfFriendsIDs(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, viewerID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if client == nil || client.Driver == nil {
		return nil, nil
	}
	if viewerID == uuid.Nil || limit <= 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (v:Account {id: $viewer_id})-[:FOLLOWS]->(:Account)-[:FOLLOWS]->(c:Account)
WHERE c.id <> $viewer_id
  AND NOT (v)-[:FOLLOWS]->(c)
RETURN DISTINCT c.id AS id
LIMIT $limit
`, map[string]any{
			"viewer_id": viewerID.String(),
			"limit":     limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	recs, _ := records.([]*neo4j.Record)
	ids := make([]uuid.UUID, 0, len(recs))
	for _, rec := range recs {
		raw, ok := rec.Get("id")
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		id, parseErr := uuid.Parse(s)
		if parseErr != nil {
			if log != nil {
				log.Warn("neo4j returned malformed account id", "error", parseErr)
			}
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
