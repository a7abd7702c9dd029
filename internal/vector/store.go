package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	qdrant "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/spec-kit/workaid/internal/cache"
	"github.com/spec-kit/workaid/internal/genai"
)

// Named collections partitioning the vector index.
const (
	CollectionPolicies = "policies"
	CollectionFAQs     = "faqs"
	CollectionTickets  = "tickets"
)

// PayloadDocumentKey stores the denormalized source text so hits can be
// used without a second lookup.
const PayloadDocumentKey = "document"

// SearchResult is one ranked hit from a similarity query.
type SearchResult struct {
	ID       string            `json:"id"`
	Score    float32           `json:"score"`
	Document string            `json:"document"`
	Payload  map[string]string `json:"payload,omitempty"`
}

// QueryCache is the slice of the cache gateway the store uses to make
// repeated queries cheap.
type QueryCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// Store is the gateway to the hosted vector index. Searches are
// best-effort: any underlying failure degrades to an empty result list.
type Store struct {
	points   qdrant.PointsClient
	embedder genai.Embedder
	cache    QueryCache
	logger   *zap.Logger
}

// NewStore builds the gateway.
func NewStore(points qdrant.PointsClient, embedder genai.Embedder, queryCache QueryCache, logger *zap.Logger) *Store {
	return &Store{points: points, embedder: embedder, cache: queryCache, logger: logger}
}

// Upsert embeds text and writes the point into the named collection.
// The payload always carries the original text under the document key.
func (s *Store) Upsert(ctx context.Context, collection, id, text string, extra map[string]string) error {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed for upsert: %w", err)
	}

	payload := map[string]*qdrant.Value{
		PayloadDocumentKey: {Kind: &qdrant.Value_StringValue{StringValue: text}},
	}
	for key, val := range extra {
		payload[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
	}

	point := &qdrant.PointStruct{
		Id: &qdrant.PointId{
			PointIdOptions: &qdrant.PointId_Uuid{Uuid: id},
		},
		Vectors: &qdrant.Vectors{
			VectorsOptions: &qdrant.Vectors_Vector{
				Vector: &qdrant.Vector{Data: embedding},
			},
		},
		Payload: payload,
	}

	if _, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         []*qdrant.PointStruct{point},
	}); err != nil {
		return fmt.Errorf("upsert point into %s: %w", collection, err)
	}
	return nil
}

// Query returns the topK nearest neighbors for text, ranked by
// similarity score descending. Results are cached under the literal
// (collection, text, topK) triple. Failures degrade to an empty list.
func (s *Store) Query(ctx context.Context, collection, text string, topK int) []SearchResult {
	key := cache.Key("vector_query", collection, text, strconv.Itoa(topK))
	if cached, ok := s.cache.Get(ctx, key); ok {
		var results []SearchResult
		if err := json.Unmarshal([]byte(cached), &results); err == nil {
			return results
		}
		s.logger.Warn("discarding malformed cached query result", zap.String("key", key))
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("query embedding failed",
			zap.String("collection", collection),
			zap.Error(err))
		return nil
	}

	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		s.logger.Warn("vector search failed",
			zap.String("collection", collection),
			zap.Error(err))
		return nil
	}

	results := make([]SearchResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		result := SearchResult{
			ID:      point.GetId().GetUuid(),
			Score:   point.GetScore(),
			Payload: map[string]string{},
		}
		for key, val := range point.GetPayload() {
			if key == PayloadDocumentKey {
				result.Document = val.GetStringValue()
				continue
			}
			result.Payload[key] = val.GetStringValue()
		}
		results = append(results, result)
	}

	if encoded, err := json.Marshal(results); err == nil {
		s.cache.Set(ctx, key, string(encoded))
	}
	return results
}

// Delete removes a point from the named collection.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{
						{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete point from %s: %w", collection, err)
	}
	return nil
}
