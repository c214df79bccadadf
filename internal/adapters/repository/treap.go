package repository

// Order-statistics treap over the roster.
//
// Ordering: conservative score DESC, then id ASC. "less" means ranks
// earlier, so an in-order walk yields the leaderboard best first and the
// subtree sizes give a contestant's rank in O(log n).

type node struct {
	id    int64
	score float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aScore float64, aID int64, bScore float64, bID int64) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id int64, score float64, prio uint64) *node {
	if n == nil {
		return &node{id: id, score: score, prio: prio, size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id int64, score float64) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.id == id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based position of (score, id), or 0 when absent.
func rankOf(n *node, id int64, score float64) int {
	before := 0
	for n != nil {
		switch {
		case n.id == id:
			return before + nsize(n.left) + 1
		case less(score, id, n.score, n.id):
			n = n.left
		default:
			before += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit node ids in rank order.
func collectTopN(n *node, limit int, out *[]int64) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.id)
	}
	collectTopN(n.right, limit, out)
}
