package packer

import (
	"cmp"
	"slices"
)

// node of a growing binary tree packer. Used node has its top-left corner
// taken by an item, right and down hold the remaining free space.
type node struct {
	x, y, w, h  int
	used        bool
	right, down *node
}

func (n *node) find(w, h int) *node {
	if n == nil {
		return nil
	}
	if n.used {
		if r := n.right.find(w, h); r != nil {
			return r
		}
		return n.down.find(w, h)
	}
	if w <= n.w && h <= n.h {
		return n
	}
	return nil
}

func (n *node) split(w, h int) *node {
	n.used = true
	n.down = &node{x: n.x, y: n.y + h, w: n.w, h: n.h - h}
	n.right = &node{x: n.x + w, y: n.y, w: n.w - w, h: h}
	return n
}

type treePacker struct {
	root *node
}

// fit finds place for a w x h block growing the sheet when necessary.
// Growth direction keeps the sheet roughly square.
func (tp *treePacker) fit(w, h int) *node {
	if tp.root == nil {
		tp.root = &node{w: w, h: h}
	}
	if n := tp.root.find(w, h); n != nil {
		return n.split(w, h)
	}
	return tp.grow(w, h)
}

func (tp *treePacker) grow(w, h int) *node {
	r := tp.root
	canDown := w <= r.w
	canRight := h <= r.h

	shouldRight := canRight && r.h >= r.w+w
	shouldDown := canDown && r.w >= r.h+h

	switch {
	case shouldRight:
		return tp.growRight(w, h)
	case shouldDown:
		return tp.growDown(w, h)
	case canRight:
		return tp.growRight(w, h)
	case canDown:
		return tp.growDown(w, h)
	}
	// Largest items go first, so this is only reachable for unsorted input.
	return nil
}

func (tp *treePacker) growRight(w, h int) *node {
	old := tp.root
	tp.root = &node{
		used:  true,
		w:     old.w + w,
		h:     old.h,
		down:  old,
		right: &node{x: old.w, w: w, h: old.h},
	}
	if n := tp.root.find(w, h); n != nil {
		return n.split(w, h)
	}
	return nil
}

func (tp *treePacker) growDown(w, h int) *node {
	old := tp.root
	tp.root = &node{
		used:  true,
		w:     old.w,
		h:     old.h + h,
		down:  &node{y: old.h, w: old.w, h: h},
		right: old,
	}
	if n := tp.root.find(w, h); n != nil {
		return n.split(w, h)
	}
	return nil
}

// binaryTree packs items largest first. Input order breaks ties.
func binaryTree(items []Item, padding int) []Placement {
	order := slices.Clone(items)
	slices.SortStableFunc(order, func(a, b Item) int {
		if c := cmp.Compare(max(b.Width, b.Height), max(a.Width, a.Height)); c != 0 {
			return c
		}
		return cmp.Compare(b.Width*b.Height, a.Width*a.Height)
	})

	tp := &treePacker{}
	res := make([]Placement, 0, len(order))
	for _, it := range order {
		n := tp.fit(it.Width+padding, it.Height+padding)
		if n == nil {
			// cannot happen for sorted input, keep item visible anyway
			n = &node{x: tp.root.w, y: 0}
			tp.root = &node{used: true, w: tp.root.w + it.Width + padding, h: max(tp.root.h, it.Height+padding), down: tp.root}
		}
		res = append(res, Placement{Item: it, X: n.x, Y: n.y})
	}
	return res
}
