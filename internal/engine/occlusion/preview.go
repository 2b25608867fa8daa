package occlusion

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Preview renders the depth buffer as a grayscale image no larger than
// size x size. Nearer surfaces are brighter; empty cells are black.
func Preview(ctx *Context, size int) *image.Gray {
	if ctx == nil || size <= 0 {
		return nil
	}
	full := image.NewGray(image.Rect(0, 0, ctx.Width, ctx.Height))
	lo, hi, ok := ctx.DepthRange()
	if ok {
		span := hi - lo
		for y := range ctx.Height {
			for x := range ctx.Width {
				i := y*ctx.Width + x
				if ctx.Owner[i] < 0 {
					continue
				}
				t := 1.0
				if span > 1e-12 {
					t = (float64(ctx.Depth[i]) - lo) / span
				}
				full.SetGray(x, y, color.Gray{Y: uint8(48 + t*207)})
			}
		}
	}

	w, h := fit(ctx.Width, ctx.Height, size)
	if w == ctx.Width && h == ctx.Height {
		return full
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), full, full.Bounds(), draw.Src, nil)
	return dst
}

// fit scales w x h down to fit inside size x size, keeping the aspect ratio.
func fit(w, h, size int) (int, int) {
	if w <= size && h <= size {
		return w, h
	}
	if w >= h {
		return size, max(1, h*size/w)
	}
	return max(1, w*size/h), size
}
