// Package packer arranges images on a sprite sheet.
package packer

import (
	"cmp"
	"fmt"
	"image"
	"image/draw"
	"slices"

	"github.com/maruel/natural"

	"cssprite/common"
	"cssprite/utils/debug"
)

// Item is an image to be placed.
type Item struct {
	Key    string
	Width  int
	Height int
}

// Placement is an item with its position on the sheet.
type Placement struct {
	Item
	X int
	Y int
}

// Rect returns area occupied by placement.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Layout is the packing result. Sheet size does not include padding after
// right-most and bottom-most images.
type Layout struct {
	Algorithm  common.Layout
	Padding    int
	Width      int
	Height     int
	Placements []Placement
	index      map[string]int
}

// Find returns placement of an item.
func (l *Layout) Find(key string) (Placement, bool) {
	i, ok := l.index[key]
	if !ok {
		return Placement{}, false
	}
	return l.Placements[i], true
}

// Pack places items using requested algorithm. Items are sorted in natural
// key order first and duplicate keys are placed once, so result does not
// depend on input order.
func Pack(items []Item, algo common.Layout, padding int) (*Layout, error) {
	if padding < 0 {
		return nil, fmt.Errorf("negative padding %d", padding)
	}

	sorted := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Width <= 0 || it.Height <= 0 {
			return nil, fmt.Errorf("image %q has empty size %dx%d", it.Key, it.Width, it.Height)
		}
		if _, ok := seen[it.Key]; ok {
			continue
		}
		seen[it.Key] = struct{}{}
		sorted = append(sorted, it)
	}
	slices.SortFunc(sorted, func(a, b Item) int {
		switch {
		case natural.Less(a.Key, b.Key):
			return -1
		case natural.Less(b.Key, a.Key):
			return 1
		}
		return cmp.Compare(a.Key, b.Key)
	})

	l := &Layout{Algorithm: algo, Padding: padding}
	switch algo {
	case common.LayoutBinaryTree:
		l.Placements = binaryTree(sorted, padding)
	case common.LayoutTopDown:
		l.Placements = linear(sorted, padding, false, true)
	case common.LayoutLeftRight:
		l.Placements = linear(sorted, padding, true, false)
	case common.LayoutDiagonal:
		l.Placements = linear(sorted, padding, true, true)
	case common.LayoutAltDiagonal:
		l.Placements = altDiagonal(sorted, padding)
	default:
		return nil, fmt.Errorf("unknown layout %v", algo)
	}

	l.index = make(map[string]int, len(l.Placements))
	for i, p := range l.Placements {
		l.index[p.Key] = i
		l.Width = max(l.Width, p.X+p.Width)
		l.Height = max(l.Height, p.Y+p.Height)
	}
	return l, nil
}

// Restore rebuilds layout from previously computed placements.
func Restore(algo common.Layout, padding, width, height int, placements []Placement) *Layout {
	l := &Layout{Algorithm: algo, Padding: padding, Width: width, Height: height, Placements: placements}
	l.index = make(map[string]int, len(placements))
	for i, p := range placements {
		l.index[p.Key] = i
	}
	return l
}

// linear puts items one after another moving right, down or both.
func linear(items []Item, padding int, right, down bool) []Placement {
	res := make([]Placement, 0, len(items))
	x, y := 0, 0
	for _, it := range items {
		res = append(res, Placement{Item: it, X: x, Y: y})
		if right {
			x += it.Width + padding
		}
		if down {
			y += it.Height + padding
		}
	}
	return res
}

// altDiagonal goes from bottom-left corner to top-right one.
func altDiagonal(items []Item, padding int) []Placement {
	total := 0
	for _, it := range items {
		total += it.Height + padding
	}
	res := make([]Placement, 0, len(items))
	x, used := 0, 0
	for _, it := range items {
		used += it.Height + padding
		res = append(res, Placement{Item: it, X: x, Y: total - used})
		x += it.Width + padding
	}
	return res
}

// Compose draws images at their places. Every placement must have an
// image.
func Compose(l *Layout, images map[string]image.Image) (*image.NRGBA, error) {
	sheet := image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	for _, p := range l.Placements {
		img, ok := images[p.Key]
		if !ok {
			return nil, fmt.Errorf("no image for %q", p.Key)
		}
		if b := img.Bounds(); b.Dx() != p.Width || b.Dy() != p.Height {
			return nil, fmt.Errorf("image %q is %dx%d, placement expects %dx%d", p.Key, b.Dx(), b.Dy(), p.Width, p.Height)
		}
		draw.Draw(sheet, p.Rect(), img, img.Bounds().Min, draw.Src)
	}
	return sheet, nil
}

// Dump writes layout description to the tree writer.
func (l *Layout) Dump(tw *debug.TreeWriter, depth int) {
	tw.Pairs(depth, "layout", l.Algorithm.String(), "padding", l.Padding, "width", l.Width, "height", l.Height)
	for _, p := range l.Placements {
		tw.Pairs(depth+1, "x", p.X, "y", p.Y, "w", p.Width, "h", p.Height, "key", p.Key)
	}
}
