package retrieval

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/go-collection-boot/linq"
)

const (
	// EmbeddingDimensions matches nomic-embed-text, the default embedding model.
	EmbeddingDimensions = 768

	cityChunkIndexName = "cityChunkEmbeddingIndex"
	cityChunkPath      = "embedding"

	// The Atlas index carries no city filter field, so extra neighbours are
	// requested and filtered here.
	overFetch = 4
)

// CityChunkModel is one ingested passage of a city guide.
type CityChunkModel struct {
	ChunkID   string    `json:"chunkId" bson:"_id"`
	City      string    `json:"city" bson:"city"` // CityTag form
	Source    string    `json:"source" bson:"source"`
	Text      string    `json:"text" bson:"text"`
	Embedding []float32 `json:"-" bson:"embedding"`
}

func (m CityChunkModel) Id() string { return m.ChunkID }

func (m CityChunkModel) CollectionName() string { return "city_chunks" }

func (m CityChunkModel) VectorIndexSpecs() []odm.VectorIndexSpec {
	return []odm.VectorIndexSpec{
		{
			Name:          cityChunkIndexName,
			Path:          cityChunkPath,
			Type:          "vector",
			NumDimensions: EmbeddingDimensions,
			Similarity:    "cosine",
			Quantization:  "scalar",
		},
	}
}

// MongoRetriever runs Atlas vector search over CityChunkModel documents.
type MongoRetriever struct {
	chunks   odm.OdmCollectionInterface[CityChunkModel]
	embedder Embedder
}

func NewMongoRetriever(chunks odm.OdmCollectionInterface[CityChunkModel], embedder Embedder) *MongoRetriever {
	return &MongoRetriever{chunks: chunks, embedder: embedder}
}

func (r *MongoRetriever) Retrieve(ctx context.Context, city, query string, k int) ([]string, error) {
	if r.chunks == nil {
		return nil, ErrNotConfigured
	}

	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := async.Await(r.chunks.VectorSearch(ctx, emb, odm.VectorSearchParams{
		IndexName:     cityChunkIndexName,
		Path:          cityChunkPath,
		K:             k * overFetch,
		NumCandidates: k * overFetch * 10,
	}))
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	docs, err := linq.Pipe2(
		linq.FromSlice(ctx, hits),
		linq.Select(func(h odm.SearchHit[CityChunkModel]) CityChunkModel { return h.Doc }),
		linq.ToSlice[CityChunkModel](),
	)
	if err != nil {
		return nil, err
	}
	return topForCity(docs, CityTag(city), k), nil
}

func topForCity(docs []CityChunkModel, tag string, k int) []string {
	out := make([]string, 0, k)
	for _, d := range docs {
		if len(out) == k {
			break
		}
		if d.City == tag && d.Text != "" {
			out = append(out, d.Text)
		}
	}
	return out
}
