package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/spec-kit/workaid/internal/cache"
	"github.com/spec-kit/workaid/internal/config"
	"github.com/spec-kit/workaid/internal/genai"
	"github.com/spec-kit/workaid/internal/observability"
	"github.com/spec-kit/workaid/internal/persistence"
	"github.com/spec-kit/workaid/internal/vector"
)

// The seeder loads company policy documents into the vector index so
// the assistant has something to ground its answers on. Each markdown
// file under the policies directory becomes one point in the policies
// collection.
func main() {
	policiesDir := flag.String("policies", "seed/policies", "directory of policy markdown files")
	flushCache := flag.Bool("flush-cache", true, "flush the response cache after seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	qdrantConn, err := grpc.Dial(cfg.Qdrant.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Fatal("failed to dial qdrant", zap.Error(err))
	}
	defer qdrantConn.Close()

	if err := vector.EnsureCollections(ctx, qdrant.NewCollectionsClient(qdrantConn), cfg.OpenAI.EmbeddingDims, logger); err != nil {
		logger.Fatal("failed to ensure collections", zap.Error(err))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	responseCache := cache.New(redis.Client, cfg.Cache.TTL, logger)
	genaiClient := genai.NewClient(cfg.OpenAI, cfg.AI, logger)
	store := vector.NewStore(qdrant.NewPointsClient(qdrantConn), genaiClient, responseCache, logger)

	entries, err := os.ReadDir(*policiesDir)
	if err != nil {
		logger.Fatal("failed to read policies directory", zap.String("dir", *policiesDir), zap.Error(err))
	}

	seeded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(*policiesDir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("failed to read policy file", zap.String("file", path), zap.Error(err))
		}
		text := strings.TrimSpace(string(content))
		if text == "" {
			logger.Warn("skipping empty policy file", zap.String("file", path))
			continue
		}

		id := uuid.NewString()
		extra := map[string]string{"source": entry.Name()}
		if err := store.Upsert(ctx, vector.CollectionPolicies, id, text, extra); err != nil {
			logger.Fatal("failed to index policy", zap.String("file", path), zap.Error(err))
		}
		logger.Info("indexed policy", zap.String("file", entry.Name()), zap.String("point_id", id))
		seeded++
	}

	if *flushCache {
		// Stale cached answers would shadow the fresh documents.
		responseCache.Clear(ctx)
		logger.Info("response cache flushed")
	}

	logger.Info("seeding complete", zap.Int("policies", seeded))
}
