package vector

import (
	"context"
	"errors"
	"testing"

	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
)

type fakeEmbedder struct {
	vec  []float32
	err  error
	seen []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.seen = append(f.seen, text)
	return f.vec, f.err
}

type fakeCache struct {
	store map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string]string{}} }

func (f *fakeCache) Get(_ context.Context, key string) (string, bool) {
	val, ok := f.store[key]
	return val, ok
}

func (f *fakeCache) Set(_ context.Context, key, value string) { f.store[key] = value }

// fakePoints overrides only the PointsClient methods the store calls.
type fakePoints struct {
	qdrant.PointsClient
	upserts    []*qdrant.UpsertPoints
	upsertErr  error
	searchResp *qdrant.SearchResponse
	searchErr  error
	searches   int
	deletes    []*qdrant.DeletePoints
}

func (f *fakePoints) Upsert(_ context.Context, req *qdrant.UpsertPoints, _ ...grpc.CallOption) (*qdrant.PointsOperationResponse, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts = append(f.upserts, req)
	return &qdrant.PointsOperationResponse{}, nil
}

func (f *fakePoints) Search(_ context.Context, _ *qdrant.SearchPoints, _ ...grpc.CallOption) (*qdrant.SearchResponse, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResp, nil
}

func (f *fakePoints) Delete(_ context.Context, req *qdrant.DeletePoints, _ ...grpc.CallOption) (*qdrant.PointsOperationResponse, error) {
	f.deletes = append(f.deletes, req)
	return &qdrant.PointsOperationResponse{}, nil
}

func scoredPoint(id string, score float32, document string) *qdrant.ScoredPoint {
	return &qdrant.ScoredPoint{
		Id:    &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}},
		Score: score,
		Payload: map[string]*qdrant.Value{
			PayloadDocumentKey: {Kind: &qdrant.Value_StringValue{StringValue: document}},
			"department":       {Kind: &qdrant.Value_StringValue{StringValue: "it"}},
		},
	}
}

func TestStoreUpsertCarriesDocumentPayload(t *testing.T) {
	points := &fakePoints{}
	store := NewStore(points, &fakeEmbedder{vec: []float32{1, 2, 3}}, newFakeCache(), zaptest.NewLogger(t))

	err := store.Upsert(context.Background(), CollectionTickets, "id-1", "VPN keeps dropping", map[string]string{"department": "it"})
	require.NoError(t, err)
	require.Len(t, points.upserts, 1)

	req := points.upserts[0]
	assert.Equal(t, CollectionTickets, req.CollectionName)
	require.Len(t, req.Points, 1)
	payload := req.Points[0].Payload
	assert.Equal(t, "VPN keeps dropping", payload[PayloadDocumentKey].GetStringValue())
	assert.Equal(t, "it", payload["department"].GetStringValue())
	assert.Equal(t, "id-1", req.Points[0].Id.GetUuid())
}

func TestStoreUpsertPropagatesEmbedFailure(t *testing.T) {
	points := &fakePoints{}
	store := NewStore(points, &fakeEmbedder{err: errors.New("quota exceeded")}, newFakeCache(), zaptest.NewLogger(t))

	err := store.Upsert(context.Background(), CollectionFAQs, "id-1", "text", nil)
	assert.Error(t, err)
	assert.Empty(t, points.upserts)
}

func TestStoreQueryReturnsRankedResults(t *testing.T) {
	points := &fakePoints{searchResp: &qdrant.SearchResponse{
		Result: []*qdrant.ScoredPoint{
			scoredPoint("a", 0.92, "first doc"),
			scoredPoint("b", 0.85, "second doc"),
		},
	}}
	store := NewStore(points, &fakeEmbedder{vec: []float32{1}}, newFakeCache(), zaptest.NewLogger(t))

	results := store.Query(context.Background(), CollectionFAQs, "vpn", 5)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 0.92, results[0].Score, 0.001)
	assert.Equal(t, "first doc", results[0].Document)
	assert.Equal(t, "it", results[0].Payload["department"])
}

func TestStoreQueryUsesCache(t *testing.T) {
	points := &fakePoints{searchResp: &qdrant.SearchResponse{
		Result: []*qdrant.ScoredPoint{scoredPoint("a", 0.9, "doc")},
	}}
	store := NewStore(points, &fakeEmbedder{vec: []float32{1}}, newFakeCache(), zaptest.NewLogger(t))
	ctx := context.Background()

	first := store.Query(ctx, CollectionPolicies, "leave policy", 5)
	second := store.Query(ctx, CollectionPolicies, "leave policy", 5)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, points.searches)
}

func TestStoreDeleteTargetsPointByID(t *testing.T) {
	points := &fakePoints{}
	store := NewStore(points, &fakeEmbedder{}, newFakeCache(), zaptest.NewLogger(t))

	err := store.Delete(context.Background(), CollectionFAQs, "id-1")
	require.NoError(t, err)
	require.Len(t, points.deletes, 1)

	req := points.deletes[0]
	assert.Equal(t, CollectionFAQs, req.CollectionName)
	ids := req.Points.GetPoints().GetIds()
	require.Len(t, ids, 1)
	assert.Equal(t, "id-1", ids[0].GetUuid())
}

func TestStoreQueryDegradesToEmpty(t *testing.T) {
	t.Run("search failure", func(t *testing.T) {
		points := &fakePoints{searchErr: errors.New("unavailable")}
		store := NewStore(points, &fakeEmbedder{vec: []float32{1}}, newFakeCache(), zaptest.NewLogger(t))
		assert.Empty(t, store.Query(context.Background(), CollectionFAQs, "q", 5))
	})
	t.Run("embed failure", func(t *testing.T) {
		points := &fakePoints{}
		store := NewStore(points, &fakeEmbedder{err: errors.New("quota")}, newFakeCache(), zaptest.NewLogger(t))
		assert.Empty(t, store.Query(context.Background(), CollectionFAQs, "q", 5))
		assert.Zero(t, points.searches)
	})
}
