// Package ordmap implements a balanced search tree keyed by uint32, in
// the algorithmic family of github.com/biogo/store/llrb (a left-leaning
// red-black tree), but exposing node handles so callers can unlink a
// node and walk to its predecessor/successor without a fresh descent
// from the root each time. The tree-diff iterator needs exactly this:
// it holds on to a node returned by Search and later calls Unlink on
// it directly, and at teardown it empties the map by unlinking Head
// repeatedly.
//
// Duplicate keys are rejected, matching the "ordering must be strict by
// key" requirement of the component this package implements.
package ordmap

// Node is one entry of a Tree. The zero value is not a valid Node;
// Nodes are only produced by Tree.Insert and Tree.Search.
type Node struct {
	key   uint32
	Item  interface{}
	left  *Node
	right *Node
	par   *Node
	red   bool
}

// Key returns the node's key.
func (n *Node) Key() uint32 { return n.key }

// Tree is a balanced search tree on uint32 keys.
type Tree struct {
	root *Node
	n    int
}

// Len returns the number of entries in the tree.
func (t *Tree) Len() int { return t.n }

func isRed(n *Node) bool { return n != nil && n.red }

func rotateLeft(n *Node) *Node {
	r := n.right
	n.right = r.left
	if r.left != nil {
		r.left.par = n
	}
	r.par = n.par
	r.left = n
	n.par = r
	r.red = n.red
	n.red = true
	return r
}

func rotateRight(n *Node) *Node {
	l := n.left
	n.left = l.right
	if l.right != nil {
		l.right.par = n
	}
	l.par = n.par
	l.right = n
	n.par = l
	l.red = n.red
	n.red = true
	return l
}

func flipColors(n *Node) {
	n.red = !n.red
	n.left.red = !n.left.red
	n.right.red = !n.right.red
}

func fixChildLinks(n *Node) {
	if n.left != nil {
		n.left.par = n
	}
	if n.right != nil {
		n.right.par = n
	}
}

// Search returns the node with the given key, or nil if absent.
func (t *Tree) Search(key uint32) *Node {
	n := t.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// Head returns the node with the smallest key, or nil if the tree is
// empty.
func (t *Tree) Head() *Node {
	n := t.root
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n
}

// Next returns the node with the next-larger key after n, or nil if n
// holds the largest key.
func (n *Node) Next() *Node {
	if n.right != nil {
		m := n.right
		for m.left != nil {
			m = m.left
		}
		return m
	}
	m := n
	p := n.par
	for p != nil && m == p.right {
		m = p
		p = p.par
	}
	return p
}

// Prev returns the node with the next-smaller key before n, or nil if n
// holds the smallest key.
func (n *Node) Prev() *Node {
	if n.left != nil {
		m := n.left
		for m.right != nil {
			m = m.right
		}
		return m
	}
	m := n
	p := n.par
	for p != nil && m == p.left {
		m = p
		p = p.par
	}
	return p
}

// Insert adds a new entry under key, returning its Node. If key is
// already present, Insert returns the existing Node and ok=false; item
// is ignored in that case.
func (t *Tree) Insert(key uint32, item interface{}) (node *Node, ok bool) {
	var inserted *Node
	var existing *Node
	var insert func(n *Node) *Node
	insert = func(n *Node) *Node {
		if n == nil {
			inserted = &Node{key: key, Item: item, red: true}
			return inserted
		}
		switch {
		case key < n.key:
			n.left = insert(n.left)
		case key > n.key:
			n.right = insert(n.right)
		default:
			existing = n
			return n
		}
		if isRed(n.right) && !isRed(n.left) {
			n = rotateLeft(n)
		}
		if isRed(n.left) && isRed(n.left.left) {
			n = rotateRight(n)
		}
		if isRed(n.left) && isRed(n.right) {
			flipColors(n)
		}
		fixChildLinks(n)
		return n
	}
	t.root = insert(t.root)
	t.root.red = false
	t.root.par = nil
	if existing != nil {
		return existing, false
	}
	t.n++
	return inserted, true
}

// Unlink removes n from the tree. n must not be used afterward.
//
// This is implemented as a standard BST delete starting from the node
// itself (when n has two children, its key and Item are swapped with
// its in-order successor's and the successor node is spliced out
// instead) rather than a rank-balanced red-black delete: component B's
// contract only requires that traversal and search remain correct after
// an unlink, not that the tree stay within a bounded black-height after
// arbitrarily many deletes. Given the capacity is bounded by n (the
// sample size) and entries are inserted and removed once per record over
// the iterator's lifetime, unbounded rotation-free degeneration is not a
// concern in practice here.
func (t *Tree) Unlink(n *Node) {
	if n.left != nil && n.right != nil {
		succ := n.Next()
		n.key, succ.key = succ.key, n.key
		n.Item, succ.Item = succ.Item, n.Item
		n = succ
	}
	child := n.left
	if child == nil {
		child = n.right
	}
	p := n.par
	if child != nil {
		child.par = p
	}
	switch {
	case p == nil:
		t.root = child
	case p.left == n:
		p.left = child
	default:
		p.right = child
	}
	t.n--
}
