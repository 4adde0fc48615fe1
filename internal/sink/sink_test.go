package sink

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/aquaneuron/aquaneuron-sim/internal/render"
)

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	s := New(dir, 1)
	for i := 0; i < 2; i++ {
		if err := s.EnsureDir(); err != nil {
			t.Fatalf("EnsureDir #%d: %v", i+1, err)
		}
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("expected directory %s: %v", dir, err)
	}
}

func TestSave_WritesPNGWithHash(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 1)

	a, err := s.Save("fig.png", image.Pt(40, 30), func(surf *Surface) error {
		render.FillRect(surf.Canvas, image.Rect(0, 0, 10, 10), render.Hex("DC2626"))
		return nil
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a.Path != filepath.Join(dir, "fig.png") || a.Width != 40 || a.Height != 30 {
		t.Fatalf("unexpected artifact: %+v", a)
	}

	data, err := os.ReadFile(a.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	sum := sha256.Sum256(data)
	if a.SHA256 != hex.EncodeToString(sum[:]) || a.Bytes != int64(len(data)) {
		t.Fatalf("artifact hash/size do not match file")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	r, g, b, _ := img.At(20, 20).RGBA()
	if r>>8 != 0xF8 || g>>8 != 0xFA || b>>8 != 0xFC {
		t.Fatalf("background = %x %x %x, want F8FAFC", r>>8, g>>8, b>>8)
	}
	r, _, _, _ = img.At(5, 5).RGBA()
	if r>>8 != 0xDC {
		t.Fatalf("drawn pixel red = %x, want DC", r>>8)
	}
}

func TestSave_Scale(t *testing.T) {
	s := New(t.TempDir(), 0.5)
	a, err := s.Save("half.png", image.Pt(100, 60), func(*Surface) error { return nil })
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a.Width != 50 || a.Height != 30 {
		t.Fatalf("scaled size = %dx%d, want 50x30", a.Width, a.Height)
	}
}

func TestSave_DrawErrorLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 1)
	boom := errors.New("boom")

	_, err := s.Save("bad.png", image.Pt(10, 10), func(*Surface) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped draw error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty output dir, found %d entries", len(entries))
	}
}

func TestSave_ReusedSurfaceIsCleared(t *testing.T) {
	s := New(t.TempDir(), 1)
	size := image.Pt(8, 8)
	if _, err := s.Save("one.png", size, func(surf *Surface) error {
		render.FillRect(surf.Canvas, surf.Bounds(), render.Hex("000000"))
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save("two.png", size, func(surf *Surface) error {
		if c := surf.Canvas.RGBAAt(4, 4); c.R != 0xF8 {
			t.Fatalf("surface not cleared: %v", c)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestSave_InvalidArguments(t *testing.T) {
	s := New(t.TempDir(), 1)
	noop := func(*Surface) error { return nil }
	if _, err := s.Save("", image.Pt(1, 1), noop); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := s.Save("../escape.png", image.Pt(1, 1), noop); err == nil {
		t.Fatalf("expected error for name with a directory")
	}
	if _, err := s.Save("zero.png", image.Pt(0, 5), noop); err == nil {
		t.Fatalf("expected error for empty size")
	}
}

func TestExisting(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 1)
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	got := s.Existing([]string{"a.png", "b.png"})
	if len(got) != 1 || got[0] != "a.png" {
		t.Fatalf("Existing = %v, want [a.png]", got)
	}
}

func TestLogger_WritesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(&buf)
	defer SetLogger(nil)

	s := New(t.TempDir(), 1)
	if _, err := s.Save("log.png", image.Pt(4, 4), func(*Surface) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("figure=log.png")) {
		t.Fatalf("expected log line, got %q", buf.String())
	}
}
