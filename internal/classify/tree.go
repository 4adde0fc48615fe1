package classify

import (
	"math"
	"sort"

	"github.com/aquaneuron/aquaneuron-sim/internal/randx"
)

// TreeParams controls the growth of a single CART tree.
type TreeParams struct {
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    int // features considered per split; 0 means all
}

type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	proba     []float64 // class fractions; set on leaves only
}

// Tree is a fitted classification tree split on Gini impurity.
type Tree struct {
	nodes      []node
	importance []float64 // normalised impurity decrease per feature
	depth      int
}

type grower struct {
	X       [][]float64
	y       []int
	classes int
	params  TreeParams
	rng     *randx.Stream
	tree    *Tree
	total   float64
}

// GrowTree fits a tree on the rows idx of X (duplicates allowed, as in a
// bootstrap sample).
func GrowTree(rng *randx.Stream, X [][]float64, y []int, classes int, idx []int, p TreeParams) *Tree {
	width := len(X[0])
	if p.MaxFeatures <= 0 || p.MaxFeatures > width {
		p.MaxFeatures = width
	}
	if p.MinSamplesLeaf < 1 {
		p.MinSamplesLeaf = 1
	}
	g := &grower{
		X: X, y: y, classes: classes, params: p, rng: rng,
		tree:  &Tree{importance: make([]float64, width)},
		total: float64(len(idx)),
	}
	g.grow(append([]int(nil), idx...), 0)

	var sum float64
	for _, v := range g.tree.importance {
		sum += v
	}
	if sum > 0 {
		for j := range g.tree.importance {
			g.tree.importance[j] /= sum
		}
	}
	return g.tree
}

func (g *grower) counts(idx []int) []float64 {
	c := make([]float64, g.classes)
	for _, i := range idx {
		c[g.y[i]]++
	}
	return c
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	s := 1.0
	for _, c := range counts {
		p := c / n
		s -= p * p
	}
	return s
}

func (g *grower) leaf(counts []float64, n float64) int {
	proba := make([]float64, len(counts))
	for k, c := range counts {
		proba[k] = c / n
	}
	g.tree.nodes = append(g.tree.nodes, node{feature: -1, left: -1, right: -1, proba: proba})
	return len(g.tree.nodes) - 1
}

func (g *grower) grow(idx []int, depth int) int {
	if depth > g.tree.depth {
		g.tree.depth = depth
	}
	n := float64(len(idx))
	counts := g.counts(idx)
	impurity := gini(counts, n)

	if depth >= g.params.MaxDepth || len(idx) < 2*g.params.MinSamplesLeaf || impurity == 0 {
		return g.leaf(counts, n)
	}

	feature, threshold, decrease, ok := g.bestSplit(idx, counts, impurity)
	if !ok {
		return g.leaf(counts, n)
	}

	var left, right []int
	for _, i := range idx {
		if g.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	g.tree.importance[feature] += decrease / g.total

	at := len(g.tree.nodes)
	g.tree.nodes = append(g.tree.nodes, node{feature: feature, threshold: threshold})
	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.tree.nodes[at].left, g.tree.nodes[at].right = l, r
	return at
}

// bestSplit scans a random subset of features for the threshold with the
// largest weighted Gini decrease. If the subset holds no valid split the
// remaining features are tried too.
func (g *grower) bestSplit(idx []int, counts []float64, impurity float64) (feature int, threshold, decrease float64, ok bool) {
	n := float64(len(idx))
	minLeaf := g.params.MinSamplesLeaf
	order := g.rng.Perm(len(g.X[0]))

	sorted := append([]int(nil), idx...)
	left := make([]float64, g.classes)
	right := make([]float64, g.classes)

	best := 0.0
	for visited, f := range order {
		if visited >= g.params.MaxFeatures && ok {
			break
		}
		sort.SliceStable(sorted, func(a, b int) bool { return g.X[sorted[a]][f] < g.X[sorted[b]][f] })
		for k := range left {
			left[k] = 0
			right[k] = counts[k]
		}
		for pos := 0; pos < len(sorted)-1; pos++ {
			c := g.y[sorted[pos]]
			left[c]++
			right[c]--
			nl := float64(pos + 1)
			nr := n - nl
			if pos+1 < minLeaf || len(sorted)-pos-1 < minLeaf {
				continue
			}
			lo, hi := g.X[sorted[pos]][f], g.X[sorted[pos+1]][f]
			if lo == hi {
				continue
			}
			d := n*impurity - nl*gini(left, nl) - nr*gini(right, nr)
			if d > best+1e-12 {
				best, feature, threshold, ok = d, f, lo+(hi-lo)/2, true
				if threshold == hi {
					threshold = lo
				}
			}
		}
	}
	return feature, threshold, best, ok
}

// PredictProba returns the class fractions of the leaf x falls into.
func (t *Tree) PredictProba(x []float64) []float64 {
	i := 0
	for {
		nd := t.nodes[i]
		if nd.feature < 0 {
			return nd.proba
		}
		if x[nd.feature] <= nd.threshold {
			i = nd.left
		} else {
			i = nd.right
		}
	}
}

// Importance returns the tree's normalised impurity decrease per feature.
func (t *Tree) Importance() []float64 { return t.importance }

// Depth returns the depth of the deepest leaf.
func (t *Tree) Depth() int { return t.depth }

// Leaves returns the number of leaves.
func (t *Tree) Leaves() int {
	n := 0
	for _, nd := range t.nodes {
		if nd.feature < 0 {
			n++
		}
	}
	return n
}

// SqrtFeatures is the usual max-features rule for classification forests.
func SqrtFeatures(width int) int {
	return max(1, int(math.Sqrt(float64(width))))
}
