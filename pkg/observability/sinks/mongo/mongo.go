// Package mongo is a pluggable observability.EngineHooks implementation
// that persists engine transition events to a MongoDB collection, for
// hosts that want a durable audit trail of collapse/expand/layout/render
// activity rather than (or alongside) a metrics backend. It follows the
// same thin-wrapper-over-an-existing-client shape as pkg/cache.RedisCache:
// the caller owns the *mongo.Client's lifecycle, this sink only owns the
// collection handle it was given.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hydro-project/flowviz/pkg/observability"
)

// Sink records engine events as documents in a MongoDB collection.
// Writes are fire-and-forget from the caller's perspective: a write
// failure is swallowed (observability must never break the engine it
// instruments), but is reported through OnWriteError if set.
type Sink struct {
	observability.NoopEngineHooks

	collection   *mongo.Collection
	timeout      time.Duration
	OnWriteError func(error)
}

// New wraps an existing collection. Pass the timeout budget for each
// insert; zero defaults to 5 seconds.
func New(collection *mongo.Collection, timeout time.Duration) *Sink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sink{collection: collection, timeout: timeout}
}

type event struct {
	Kind        string    `bson:"kind"`
	ContainerID string    `bson:"container_id,omitempty"`
	NodeCount   int       `bson:"node_count,omitempty"`
	EdgeCount   int       `bson:"edge_count,omitempty"`
	DurationMS  int64     `bson:"duration_ms"`
	Err         string    `bson:"error,omitempty"`
	At          time.Time `bson:"at"`
}

func (s *Sink) insert(ctx context.Context, e event) {
	e.At = time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.collection.InsertOne(ctx, e); err != nil && s.OnWriteError != nil {
		s.OnWriteError(err)
	}
}

func (s *Sink) OnCollapse(ctx context.Context, containerID string, duration time.Duration, err error) {
	s.insert(ctx, event{Kind: "collapse", ContainerID: containerID, DurationMS: duration.Milliseconds(), Err: errString(err)})
}

func (s *Sink) OnExpand(ctx context.Context, containerID string, duration time.Duration, err error) {
	s.insert(ctx, event{Kind: "expand", ContainerID: containerID, DurationMS: duration.Milliseconds(), Err: errString(err)})
}

func (s *Sink) OnLayout(ctx context.Context, nodeCount, edgeCount int, duration time.Duration, err error) {
	s.insert(ctx, event{Kind: "layout", NodeCount: nodeCount, EdgeCount: edgeCount, DurationMS: duration.Milliseconds(), Err: errString(err)})
}

func (s *Sink) OnRender(ctx context.Context, nodeCount, edgeCount int, duration time.Duration) {
	s.insert(ctx, event{Kind: "render", NodeCount: nodeCount, EdgeCount: edgeCount, DurationMS: duration.Milliseconds()})
}

func (s *Sink) OnInvariantViolation(ctx context.Context, err error) {
	s.insert(ctx, event{Kind: "invariant_violation", Err: errString(err)})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Ensure Sink implements EngineHooks.
var _ observability.EngineHooks = (*Sink)(nil)

// EnsureIndexes creates the indexes this sink's query patterns rely on
// (time-ordered reads, filtering by kind). Safe to call repeatedly.
func EnsureIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "at", Value: -1}}},
	})
	return err
}
