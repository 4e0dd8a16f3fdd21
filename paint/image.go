package paint

import (
	"encoding/binary"
	"hash/fnv"
	"image"
	"math"
	"reflect"

	"github.com/gogpu/asyncdraw"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/cache"
	xdraw "golang.org/x/image/draw"
)

// ImageMode controls how an image is fitted into the node's bounds.
type ImageMode int

const (
	// ImageStretch scales the image to the bounds, ignoring aspect ratio.
	ImageStretch ImageMode = iota
	// ImageFit scales the image to fit inside the bounds, centered.
	ImageFit
	// ImageFill scales the image to cover the bounds, centered and cropped.
	ImageFill
)

// Image paints a raster image.
//
// The source is resampled once per device size with a Catmull-Rom
// kernel, so the pixels drawn match the pass's scale one to one.
// Resampled copies are kept in a process-wide LRU cache keyed by the
// source value; a source that is modified after being painted must be
// passed as a new image.
type Image struct {
	Source image.Image
	Mode   ImageMode
}

type resampleKey struct {
	src  image.Image
	crop image.Rectangle
	w, h int
}

// resampled caches device-resolution copies of image sources.
var resampled = cache.NewSharded[resampleKey, *gg.ImageBuf](8, hashResampleKey)

// hashResampleKey picks a shard from the source's address, when it has
// one, and the requested geometry.
func hashResampleKey(k resampleKey) uint64 {
	var buf [7 * 8]byte
	v := reflect.ValueOf(k.src)
	if v.Kind() == reflect.Pointer {
		binary.LittleEndian.PutUint64(buf[0:], uint64(v.Pointer()))
	}
	for i, n := range []int{k.crop.Min.X, k.crop.Min.Y, k.crop.Max.X, k.crop.Max.Y, k.w, k.h} {
		binary.LittleEndian.PutUint64(buf[8*(i+1):], uint64(n))
	}
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// Measure implements asyncdraw.Measurer: the source's pixel size, one
// pixel per logical unit.
func (im Image) Measure(asyncdraw.Size) asyncdraw.Size {
	if im.Source == nil {
		return asyncdraw.Size{}
	}
	b := im.Source.Bounds()
	return asyncdraw.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// Paint implements asyncdraw.Painter.
func (im Image) Paint(c asyncdraw.Canvas, size asyncdraw.Size, scale float64) {
	if im.Source == nil || size.Empty() || im.Source.Bounds().Empty() {
		return
	}
	s, ok := surfaceOf(c, "image")
	if !ok {
		return
	}

	dst, crop := im.place(size)
	w := max(1, int(math.Round(dst.W*scale)))
	h := max(1, int(math.Round(dst.H*scale)))

	buf := resample(resampleKey{src: im.Source, crop: crop, w: w, h: h})
	s.DrawImageEx(buf, gg.DrawImageOptions{
		X:             dst.X,
		Y:             dst.Y,
		DstWidth:      dst.W,
		DstHeight:     dst.H,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

// place returns the destination rectangle in local units and the source
// region to draw into it.
func (im Image) place(size asyncdraw.Size) (asyncdraw.Rect, image.Rectangle) {
	b := im.Source.Bounds()
	sw, sh := float64(b.Dx()), float64(b.Dy())

	switch im.Mode {
	case ImageFit:
		k := min(size.W/sw, size.H/sh)
		w, h := sw*k, sh*k
		return asyncdraw.R((size.W-w)/2, (size.H-h)/2, w, h), b
	case ImageFill:
		k := max(size.W/sw, size.H/sh)
		cw := min(max(1, int(math.Round(size.W/k))), b.Dx())
		ch := min(max(1, int(math.Round(size.H/k))), b.Dy())
		x0 := b.Min.X + (b.Dx()-cw)/2
		y0 := b.Min.Y + (b.Dy()-ch)/2
		return asyncdraw.R(0, 0, size.W, size.H), image.Rect(x0, y0, x0+cw, y0+ch)
	default:
		return asyncdraw.R(0, 0, size.W, size.H), b
	}
}

// resample returns key.src's crop scaled to key.w x key.h pixels.
func resample(key resampleKey) *gg.ImageBuf {
	create := func() *gg.ImageBuf {
		dst := image.NewRGBA(image.Rect(0, 0, key.w, key.h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), key.src, key.crop, xdraw.Src, nil)
		return gg.ImageBufFromImage(dst)
	}
	// Sources whose dynamic type is not comparable cannot be map keys.
	if !reflect.TypeOf(key.src).Comparable() {
		return create()
	}
	return resampled.GetOrCreate(key, create)
}
