package anomaly

import (
	"math"
	"math/rand"
)

const eulerGamma = 0.5772156649

// node is one split or leaf of an isolation tree. Leaves have left < 0.
type node struct {
	feature int
	split   float64
	left    int
	right   int
	size    int
}

type tree struct {
	nodes []node
}

// forest is an ensemble of isolation trees fitted on random sub-samples.
type forest struct {
	trees      []tree
	sampleSize int
}

// growForest fits n trees, each on sampleSize rows drawn without
// replacement. Tree depth is limited to ceil(log2(sampleSize)).
func growForest(x [][]float64, n, sampleSize int, rng *rand.Rand) forest {
	if sampleSize > len(x) {
		sampleSize = len(x)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))
	f := forest{trees: make([]tree, n), sampleSize: sampleSize}
	for t := range f.trees {
		perm := rng.Perm(len(x))[:sampleSize]
		sample := make([][]float64, sampleSize)
		for i, idx := range perm {
			sample[i] = x[idx]
		}
		var tr tree
		tr.grow(sample, 0, maxDepth, rng)
		f.trees[t] = tr
	}
	return f
}

// grow appends the subtree isolating rows and returns its index.
func (t *tree) grow(rows [][]float64, depth, maxDepth int, rng *rand.Rand) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, node{left: -1, right: -1, size: len(rows)})
	if depth >= maxDepth || len(rows) <= 1 {
		return id
	}

	width := len(rows[0])
	lo := make([]float64, width)
	hi := make([]float64, width)
	copy(lo, rows[0])
	copy(hi, rows[0])
	for _, r := range rows[1:] {
		for j, v := range r {
			lo[j] = math.Min(lo[j], v)
			hi[j] = math.Max(hi[j], v)
		}
	}
	candidates := make([]int, 0, width)
	for j := 0; j < width; j++ {
		if hi[j] > lo[j] {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		return id
	}

	feature := candidates[rng.Intn(len(candidates))]
	split := lo[feature] + rng.Float64()*(hi[feature]-lo[feature])
	if split >= hi[feature] {
		split = lo[feature]
	}
	var left, right [][]float64
	for _, r := range rows {
		if r[feature] <= split {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := t.grow(left, depth+1, maxDepth, rng)
	r := t.grow(right, depth+1, maxDepth, rng)
	t.nodes[id].feature = feature
	t.nodes[id].split = split
	t.nodes[id].left = l
	t.nodes[id].right = r
	return id
}

// pathLength is the depth at which x is isolated, corrected by the expected
// path length of the rows left unsplit in its leaf.
func (t *tree) pathLength(x []float64) float64 {
	depth := 0
	i := 0
	for t.nodes[i].left >= 0 {
		n := t.nodes[i]
		if x[n.feature] <= n.split {
			i = n.left
		} else {
			i = n.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(t.nodes[i].size)
}

// score returns -2^(-E[h(x)]/c(ψ)); values near -1 are anomalies, values
// near -0.5 and above are regular.
func (f forest) score(x []float64) float64 {
	var sum float64
	for i := range f.trees {
		sum += f.trees[i].pathLength(x)
	}
	mean := sum / float64(len(f.trees))
	return -math.Pow(2, -mean/averagePathLength(f.sampleSize))
}

// averagePathLength is c(n), the mean path length of an unsuccessful
// search in a binary search tree of n nodes.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}
