// Package compositor overlays a brand logo onto a generated poster. It is
// pure and deterministic: no network I/O, no state across calls, safe for
// concurrent use on independent poster/logo pairs.
package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Anchor names the poster corner or edge the logo is placed against.
type Anchor string

const (
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorTopCenter   Anchor = "top-center"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorCenter      Anchor = "center"
)

// SizeMode selects how the target logo width is derived.
type SizeMode string

const (
	SizeSmall  SizeMode = "small"  // 10% of poster width
	SizeMedium SizeMode = "medium" // 15% of poster width
	SizeLarge  SizeMode = "large"  // 20% of poster width
	SizeCustom SizeMode = "custom" // absolute pixels from CustomSize
)

// edgeMargin is the fixed offset from the relevant poster edge for every
// non-center anchor.
const edgeMargin = 20

// Dimensions is an absolute pixel size.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PlacementSpec configures one compositing call. Opacity is 0..1 and applies
// to the logo layer only. In custom size mode the caller is responsible for
// preserving the logo's aspect ratio; the given dimensions are used verbatim.
type PlacementSpec struct {
	Anchor     Anchor      `json:"position"`
	Size       SizeMode    `json:"size"`
	Opacity    float64     `json:"opacity"`
	CustomSize *Dimensions `json:"customSize,omitempty"`
}

// CompositeError reports which source image could not be decoded, or an
// encoding failure. No partial output accompanies it.
type CompositeError struct {
	Image string // "poster" or "logo", empty for encode failures
	Err   error
}

func (e *CompositeError) Error() string {
	if e.Image != "" {
		return fmt.Sprintf("compositor: failed to load %s image: %v", e.Image, e.Err)
	}
	return fmt.Sprintf("compositor: %v", e.Err)
}

func (e *CompositeError) Unwrap() error {
	return e.Err
}

// Composite draws the poster as a full-canvas base layer and the logo on top
// at the computed size, position, and opacity, then encodes the result as PNG
// at the poster's original dimensions.
func Composite(posterData, logoData []byte, spec PlacementSpec) ([]byte, error) {
	poster, _, err := image.Decode(bytes.NewReader(posterData))
	if err != nil {
		return nil, &CompositeError{Image: "poster", Err: err}
	}
	logo, _, err := image.Decode(bytes.NewReader(logoData))
	if err != nil {
		return nil, &CompositeError{Image: "logo", Err: err}
	}

	posterBounds := poster.Bounds()
	logoBounds := logo.Bounds()
	size := logoSize(posterBounds.Dx(), logoBounds.Dx(), logoBounds.Dy(), spec)
	pos := logoPosition(posterBounds.Dx(), posterBounds.Dy(), size, spec.Anchor)

	canvas := image.NewRGBA(image.Rect(0, 0, posterBounds.Dx(), posterBounds.Dy()))
	xdraw.Draw(canvas, canvas.Bounds(), poster, posterBounds.Min, xdraw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), logo, logoBounds, xdraw.Over, nil)

	opacity := spec.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	target := image.Rect(pos.X, pos.Y, pos.X+size.Width, pos.Y+size.Height)
	xdraw.DrawMask(canvas, target, scaled, image.Point{}, mask, image.Point{}, xdraw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, &CompositeError{Err: err}
	}
	return buf.Bytes(), nil
}

// logoSize derives the target logo dimensions. Custom mode uses the given
// pixels verbatim; the named modes derive width as a fixed fraction of the
// poster width and height from the logo's native aspect ratio.
func logoSize(posterWidth, logoWidth, logoHeight int, spec PlacementSpec) Dimensions {
	if spec.Size == SizeCustom && spec.CustomSize != nil {
		return *spec.CustomSize
	}
	var fraction float64
	switch spec.Size {
	case SizeSmall:
		fraction = 0.10
	case SizeLarge:
		fraction = 0.20
	default:
		fraction = 0.15
	}
	targetWidth := float64(posterWidth) * fraction
	aspect := float64(logoWidth) / float64(logoHeight)
	return Dimensions{
		Width:  int(math.Round(targetWidth)),
		Height: int(math.Round(targetWidth / aspect)),
	}
}

// logoPosition computes the top-left pixel of the logo for the given anchor.
// Unknown anchors fall back to top-right.
func logoPosition(posterWidth, posterHeight int, size Dimensions, anchor Anchor) image.Point {
	switch anchor {
	case AnchorTopLeft:
		return image.Point{X: edgeMargin, Y: edgeMargin}
	case AnchorTopCenter:
		return image.Point{X: (posterWidth - size.Width) / 2, Y: edgeMargin}
	case AnchorBottomLeft:
		return image.Point{X: edgeMargin, Y: posterHeight - size.Height - edgeMargin}
	case AnchorBottomRight:
		return image.Point{X: posterWidth - size.Width - edgeMargin, Y: posterHeight - size.Height - edgeMargin}
	case AnchorCenter:
		return image.Point{X: (posterWidth - size.Width) / 2, Y: (posterHeight - size.Height) / 2}
	default:
		return image.Point{X: posterWidth - size.Width - edgeMargin, Y: edgeMargin}
	}
}

// ParseAnchor normalizes free-form input to a known anchor; unknown values
// fall back to top-right at placement time.
func ParseAnchor(v string) Anchor {
	return Anchor(strings.ToLower(strings.TrimSpace(v)))
}

// ParseSizeMode normalizes free-form input; unknown values behave as medium.
func ParseSizeMode(v string) SizeMode {
	return SizeMode(strings.ToLower(strings.TrimSpace(v)))
}
