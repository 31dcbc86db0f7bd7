// Package modelstore persists fitted clustering models as compact binary
// snapshots, locally or in S3-compatible object storage.
package modelstore

import (
	"context"
	"fmt"
	"os"

	"github.com/hupe1980/clustergo"
)

// ErrNotFound is returned when a model does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for storing immutable model snapshots.
type Store interface {
	// Put writes a snapshot atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Get reads a full snapshot.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes a snapshot.
	Delete(ctx context.Context, name string) error
	// List returns all snapshot names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Snapshot is the persisted state of a fitted model. Centroids are
// row-major k x d.
type Snapshot[T clustergo.Float] struct {
	Clusters  int
	Features  int
	Centroids []T
	Inertia   float64
}

// SnapshotOf captures the fitted state of a model.
func SnapshotOf[T clustergo.Float](km *clustergo.KMeans[T]) (*Snapshot[T], error) {
	c, err := km.Centroids(clustergo.RowMajor)
	if err != nil {
		return nil, err
	}
	inertia, err := km.Inertia()
	if err != nil {
		return nil, err
	}
	return &Snapshot[T]{
		Clusters:  km.Clusters(),
		Features:  km.Features(),
		Centroids: c,
		Inertia:   inertia,
	}, nil
}

// Apply restores the snapshot's centroids into a model with a matching
// cluster count. A snapshot taken from a model with a different k is
// rejected rather than partially installed.
func (s *Snapshot[T]) Apply(km *clustergo.KMeans[T]) error {
	if s.Clusters != km.Clusters() {
		return &clustergo.ErrInvalidDimensions{
			Param:      "snapshot clusters",
			Value:      s.Clusters,
			Constraint: fmt.Sprintf("== %d model clusters", km.Clusters()),
		}
	}
	return km.Restore(s.Centroids, s.Features, s.Features, clustergo.RowMajor)
}

// Save encodes a fitted model and writes it to the store.
func Save[T clustergo.Float](ctx context.Context, store Store, name string, km *clustergo.KMeans[T], opts ...CodecOption) error {
	snap, err := SnapshotOf(km)
	if err != nil {
		return err
	}
	data, err := Encode(snap, opts...)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// Load reads and decodes a snapshot from the store.
func Load[T clustergo.Float](ctx context.Context, store Store, name string) (*Snapshot[T], error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return Decode[T](data)
}
