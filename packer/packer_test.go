package packer

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"cssprite/common"
	"cssprite/utils/debug"
)

var allLayouts = []common.Layout{
	common.LayoutBinaryTree,
	common.LayoutTopDown,
	common.LayoutLeftRight,
	common.LayoutDiagonal,
	common.LayoutAltDiagonal,
}

func randomItems(n int, seed uint64) []Item {
	rnd := rand.New(rand.NewPCG(seed, seed+1))
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Key: fmt.Sprintf("img%d.png", i), Width: 1 + rnd.IntN(64), Height: 1 + rnd.IntN(64)}
	}
	return items
}

// checkLayout verifies that every placement is inside the sheet and that
// padded boxes do not overlap.
func checkLayout(t *testing.T, l *Layout, padding int) {
	t.Helper()
	sheet := image.Rect(0, 0, l.Width, l.Height)
	for i, a := range l.Placements {
		if !a.Rect().In(sheet) {
			t.Errorf("%s: %v is outside of sheet %v", a.Key, a.Rect(), sheet)
		}
		pa := image.Rect(a.X, a.Y, a.X+a.Width+padding, a.Y+a.Height+padding)
		for _, b := range l.Placements[i+1:] {
			pb := image.Rect(b.X, b.Y, b.X+b.Width+padding, b.Y+b.Height+padding)
			if pa.Overlaps(pb) {
				t.Errorf("%s %v overlaps %s %v", a.Key, pa, b.Key, pb)
			}
		}
	}
}

func TestPackNoOverlap(t *testing.T) {
	for _, algo := range allLayouts {
		for _, padding := range []int{0, 2} {
			t.Run(fmt.Sprintf("%s/%d", algo, padding), func(t *testing.T) {
				items := randomItems(40, 7)
				l, err := Pack(items, algo, padding)
				if err != nil {
					t.Fatal(err)
				}
				if len(l.Placements) != len(items) {
					t.Fatalf("placed %d of %d", len(l.Placements), len(items))
				}
				checkLayout(t, l, padding)
			})
		}
	}
}

func TestPackDeterministic(t *testing.T) {
	items := randomItems(25, 3)
	reversed := make([]Item, len(items))
	for i, it := range items {
		reversed[len(items)-1-i] = it
	}
	for _, algo := range allLayouts {
		a, err := Pack(items, algo, 1)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Pack(reversed, algo, 1)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(a, b, cmpopts.IgnoreUnexported(Layout{})); diff != "" {
			t.Errorf("%s: input order changed layout (-a +b):\n%s", algo, diff)
		}
	}
}

func TestPackLinear(t *testing.T) {
	items := []Item{
		{Key: "b10.png", Width: 10, Height: 20},
		{Key: "b2.png", Width: 30, Height: 5},
		{Key: "a.png", Width: 4, Height: 4},
	}
	type xy struct{ X, Y int }

	tests := []struct {
		algo common.Layout
		w, h int
		want map[string]xy
	}{
		{common.LayoutTopDown, 30, 33, map[string]xy{"a.png": {0, 0}, "b2.png": {0, 6}, "b10.png": {0, 13}}},
		{common.LayoutLeftRight, 48, 20, map[string]xy{"a.png": {0, 0}, "b2.png": {6, 0}, "b10.png": {38, 0}}},
		{common.LayoutDiagonal, 48, 33, map[string]xy{"a.png": {0, 0}, "b2.png": {6, 6}, "b10.png": {38, 13}}},
		{common.LayoutAltDiagonal, 48, 33, map[string]xy{"a.png": {0, 29}, "b2.png": {6, 22}, "b10.png": {38, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.algo.String(), func(t *testing.T) {
			l, err := Pack(items, tt.algo, 2)
			if err != nil {
				t.Fatal(err)
			}
			if l.Width != tt.w || l.Height != tt.h {
				t.Errorf("sheet %dx%d, want %dx%d", l.Width, l.Height, tt.w, tt.h)
			}
			got := map[string]xy{}
			for _, p := range l.Placements {
				got[p.Key] = xy{p.X, p.Y}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("positions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPackBinaryTreeSquares(t *testing.T) {
	items := []Item{
		{Key: "1", Width: 10, Height: 10},
		{Key: "2", Width: 10, Height: 10},
		{Key: "3", Width: 10, Height: 10},
		{Key: "4", Width: 10, Height: 10},
	}
	l, err := Pack(items, common.LayoutBinaryTree, 0)
	if err != nil {
		t.Fatal(err)
	}
	if l.Width != 20 || l.Height != 20 {
		t.Errorf("four squares packed into %dx%d", l.Width, l.Height)
	}
	checkLayout(t, l, 0)
}

func TestPackDuplicatesAndErrors(t *testing.T) {
	l, err := Pack([]Item{
		{Key: "a", Width: 5, Height: 5},
		{Key: "a", Width: 5, Height: 5},
		{Key: "b", Width: 3, Height: 3},
	}, common.LayoutTopDown, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Placements) != 2 {
		t.Errorf("duplicate key placed twice: %d placements", len(l.Placements))
	}
	if p, ok := l.Find("b"); !ok || p.Y != 5 {
		t.Errorf("Find(b) = %+v, %v", p, ok)
	}
	if _, ok := l.Find("missing"); ok {
		t.Error("Find must fail for unknown key")
	}

	if _, err := Pack([]Item{{Key: "z", Width: 0, Height: 4}}, common.LayoutTopDown, 0); err == nil {
		t.Error("expected error for empty image")
	}
	if _, err := Pack(nil, common.LayoutTopDown, -1); err == nil {
		t.Error("expected error for negative padding")
	}
	if _, err := Pack(nil, common.Layout(42), 0); err == nil {
		t.Error("expected error for unknown layout")
	}

	empty, err := Pack(nil, common.LayoutBinaryTree, 0)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Width != 0 || empty.Height != 0 || len(empty.Placements) != 0 {
		t.Errorf("unexpected empty layout %+v", empty)
	}
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCompose(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	l, err := Pack([]Item{{Key: "r", Width: 2, Height: 2}, {Key: "b", Width: 3, Height: 1}}, common.LayoutTopDown, 1)
	if err != nil {
		t.Fatal(err)
	}
	sheet, err := Compose(l, map[string]image.Image{"r": solid(2, 2, red), "b": solid(3, 1, blue)})
	if err != nil {
		t.Fatal(err)
	}
	if sheet.Bounds() != image.Rect(0, 0, 3, 4) {
		t.Fatalf("unexpected sheet bounds %v", sheet.Bounds())
	}
	// "b" sorts first
	if got := sheet.NRGBAAt(2, 0); got != blue {
		t.Errorf("pixel (2,0) = %v", got)
	}
	if got := sheet.NRGBAAt(0, 1); got.A != 0 {
		t.Errorf("padding must stay transparent, got %v", got)
	}
	if got := sheet.NRGBAAt(1, 3); got != red {
		t.Errorf("pixel (1,3) = %v", got)
	}

	if _, err := Compose(l, map[string]image.Image{"r": solid(2, 2, red)}); err == nil {
		t.Error("expected error for missing image")
	}
	if _, err := Compose(l, map[string]image.Image{"r": solid(2, 2, red), "b": solid(1, 1, blue)}); err == nil {
		t.Error("expected error for size mismatch")
	}
}

func TestDump(t *testing.T) {
	l, err := Pack([]Item{{Key: "icon.png", Width: 2, Height: 3}}, common.LayoutLeftRight, 0)
	if err != nil {
		t.Fatal(err)
	}
	tw := debug.NewTreeWriter()
	l.Dump(tw, 0)
	want := "layout=left-right padding=0 width=2 height=3\n  x=0 y=0 w=2 h=3 key=icon.png\n"
	if got := tw.String(); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
	if !strings.Contains(tw.String(), "icon.png") {
		t.Error("dump must mention image")
	}
}

func TestRestore(t *testing.T) {
	l, err := Pack(randomItems(5, 11), common.LayoutBinaryTree, 1)
	if err != nil {
		t.Fatal(err)
	}
	r := Restore(l.Algorithm, l.Padding, l.Width, l.Height, l.Placements)
	for _, p := range l.Placements {
		got, ok := r.Find(p.Key)
		if !ok || got != p {
			t.Errorf("Find(%s) = %+v, %v; want %+v", p.Key, got, ok, p)
		}
	}
}
