package vector

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// EnsureCollections creates the named collections when they do not
// exist yet. Idempotent, called once at startup and by the seeder.
func EnsureCollections(ctx context.Context, collections qdrant.CollectionsClient, dims int, logger *zap.Logger) error {
	existing, err := collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	present := make(map[string]struct{}, len(existing.GetCollections()))
	for _, col := range existing.GetCollections() {
		present[col.GetName()] = struct{}{}
	}

	for _, name := range []string{CollectionPolicies, CollectionFAQs, CollectionTickets} {
		if _, ok := present[name]; ok {
			continue
		}
		logger.Info("creating vector collection", zap.String("collection", name))
		_, err := collections.Create(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(dims),
						Distance: qdrant.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}
	return nil
}
