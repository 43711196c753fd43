package geo

// Cluster is a group of items that share one representative coordinate.
// Key is the representative rounded to 4 decimal places and identifies
// the covered region; the clustering radius itself is the caller's
// radiusMeters, not the rounding step.
type Cluster[T any] struct {
	Key     string
	Rep     Coordinate
	Members []T
}

// Group partitions items into clusters whose members all lie within
// radiusMeters of the cluster's representative (its first item). The pass
// is greedy over the input order: each unvisited item seeds a cluster and
// collects every remaining unvisited item within radius, so every item
// lands in exactly one cluster and no cluster is empty. Membership is
// order-dependent; callers that need reproducible clusters across runs
// must sort items by a stable key first.
func Group[T any](items []T, at func(T) Coordinate, radiusMeters float64) []Cluster[T] {
	visited := make([]bool, len(items))

	var clusters []Cluster[T]
	for i := range items {
		if visited[i] {
			continue
		}
		rep := at(items[i])
		cluster := Cluster[T]{
			Key:     rep.RoundedKey(),
			Rep:     rep,
			Members: []T{items[i]},
		}
		visited[i] = true

		for j := i + 1; j < len(items); j++ {
			if visited[j] {
				continue
			}
			if Distance(rep, at(items[j])) <= radiusMeters {
				cluster.Members = append(cluster.Members, items[j])
				visited[j] = true
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}
