// Package clustergo provides an adaptive k-means clustering engine.
//
// The engine runs the classic Lloyd iteration or the triangle-inequality
// accelerated Elkan variant, generic over float32 and float64. Inner loops
// are served by width-tiered kernels picked per problem shape from
// benchmark-derived, microarchitecture-aware tables; a bounded write-once
// cache of per-sample distance bounds accelerates warm-started refits.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	km, _ := clustergo.New[float64](3, clustergo.WithSeed(42))
//	_ = km.SetData(data, nSamples, nFeatures, nFeatures, clustergo.RowMajor)
//
//	result, _ := km.Fit(ctx)
//	fmt.Println(result.Labels, result.Inertia)
//
//	labels, _ := km.Predict(ctx, queries, nQueries, nFeatures, clustergo.RowMajor)
//
// Warm restarts reuse the previous solution:
//
//	_ = km.SetInitialCentroids(result.Centroids, nFeatures, clustergo.RowMajor)
//	result2, _ := km.Fit(ctx)  // converges immediately on unchanged data
//
// Fitted models can be persisted with the modelstore package, locally or to
// S3-compatible object storage.
package clustergo
