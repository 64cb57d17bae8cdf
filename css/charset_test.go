package css

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	t.Run("no charset", func(t *testing.T) {
		in := []byte(`.a { content: "ж" }`)
		out, err := Decode(in)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(in, out) {
			t.Errorf("data changed: %q", out)
		}
	})

	t.Run("bom", func(t *testing.T) {
		out, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, ".a{}"...))
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != ".a{}" {
			t.Errorf("BOM not removed: %q", out)
		}
	})

	t.Run("utf-8 declared", func(t *testing.T) {
		in := []byte(`@charset "utf-8"; .a { content: "ж" }`)
		out, err := Decode(in)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(in, out) {
			t.Errorf("data changed: %q", out)
		}
	})

	t.Run("windows-1251", func(t *testing.T) {
		in := append([]byte(`@charset "windows-1251"; .a { content: "`), 0xC0, '"', ' ', '}')
		out, err := Decode(in)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(out), `content: "А"`) {
			t.Errorf("unexpected decoded data %q", out)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := Decode([]byte(`@charset "no-such-thing"; .a{}`)); err == nil {
			t.Error("expected error for unknown charset")
		}
	})
}

func TestIsUTF8(t *testing.T) {
	for name, want := range map[string]bool{
		"UTF-8":        true,
		"utf-8":        true,
		"windows-1251": false,
		"bogus":        false,
	} {
		if got := IsUTF8(name); got != want {
			t.Errorf("IsUTF8(%q) = %v, want %v", name, got, want)
		}
	}
}
