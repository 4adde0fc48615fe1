// Package sink writes rendered figures to the output directory. A figure
// draws onto a pooled surface that is released when Save returns, whether
// or not drawing succeeded.
package sink

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/aquaneuron/aquaneuron-sim/internal/render"
)

// Background is the colour every surface starts from.
var Background = render.Hex("F8FAFC")

// Surface is the canvas a figure draws on, at its nominal size.
type Surface struct {
	Canvas *image.RGBA
}

// Bounds is the drawable area.
func (s *Surface) Bounds() image.Rectangle { return s.Canvas.Bounds() }

// Artifact describes one written file.
type Artifact struct {
	Name   string
	Path   string
	Width  int
	Height int
	Bytes  int64
	SHA256 string
}

// Sink writes PNG artifacts into one directory.
type Sink struct {
	dir   string
	scale float64

	mu    sync.Mutex
	pools map[image.Point]*sync.Pool
}

// New returns a sink writing into dir. Figures are resampled by scale
// before encoding; 1 keeps the nominal size.
func New(dir string, scale float64) *Sink {
	if scale <= 0 {
		scale = 1
	}
	return &Sink{dir: dir, scale: scale, pools: map[image.Point]*sync.Pool{}}
}

// Dir returns the output directory.
func (s *Sink) Dir() string { return s.dir }

// EnsureDir creates the output directory if needed. Calling it again is a
// no-op.
func (s *Sink) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %q: %w", s.dir, err)
	}
	return nil
}

// Path returns where an artifact called name is written.
func (s *Sink) Path(name string) string { return filepath.Join(s.dir, name) }

// Existing returns the names that already exist in the output directory.
func (s *Sink) Existing(names []string) []string {
	var out []string
	for _, n := range names {
		if _, err := os.Stat(s.Path(n)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func (s *Sink) pool(size image.Point) *sync.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[size]
	if !ok {
		p = &sync.Pool{New: func() any {
			return &Surface{Canvas: image.NewRGBA(image.Rectangle{Max: size})}
		}}
		s.pools[size] = p
	}
	return p
}

// acquire hands out a surface of the given size, cleared to Background.
func (s *Sink) acquire(size image.Point) *Surface {
	surf := s.pool(size).Get().(*Surface)
	render.FillRect(surf.Canvas, surf.Canvas.Bounds(), Background)
	return surf
}

func (s *Sink) release(surf *Surface) {
	s.pool(surf.Canvas.Bounds().Size()).Put(surf)
}

// Save draws a figure of the given nominal size and writes it as PNG to
// <dir>/<name>. The file is written through a temporary file in the same
// directory so a failed run never leaves a truncated image behind.
func (s *Sink) Save(name string, size image.Point, draw func(*Surface) error) (Artifact, error) {
	if strings.TrimSpace(name) == "" || filepath.Base(name) != name {
		return Artifact{}, fmt.Errorf("invalid artifact name %q", name)
	}
	if size.X <= 0 || size.Y <= 0 {
		return Artifact{}, fmt.Errorf("artifact %s: invalid size %v", name, size)
	}
	if err := s.EnsureDir(); err != nil {
		return Artifact{}, err
	}

	surf := s.acquire(size)
	defer s.release(surf)

	if err := draw(surf); err != nil {
		return Artifact{}, fmt.Errorf("draw %s: %w", name, err)
	}

	out := s.scaled(surf.Canvas)
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return Artifact{}, fmt.Errorf("encode %s: %w", name, err)
	}
	sum := sha256.Sum256(buf.Bytes())

	path := s.Path(name)
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return Artifact{}, fmt.Errorf("write %s: %w", name, err)
	}
	a := Artifact{
		Name:   name,
		Path:   path,
		Width:  out.Bounds().Dx(),
		Height: out.Bounds().Dy(),
		Bytes:  int64(buf.Len()),
		SHA256: hex.EncodeToString(sum[:]),
	}
	logf(name, "wrote %dx%d, %d bytes, sha256 %s", a.Width, a.Height, a.Bytes, a.SHA256[:12])
	return a, nil
}

// scaled resamples img by the sink's scale with Catmull-Rom filtering.
func (s *Sink) scaled(img *image.RGBA) image.Image {
	if s.scale == 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*s.scale+0.5))
	h := max(1, int(float64(b.Dy())*s.scale+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func writeAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
