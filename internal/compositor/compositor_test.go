package compositor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

func TestLogoSizeNamedModes(t *testing.T) {
	cases := []struct {
		mode       SizeMode
		wantWidth  int
		wantHeight int
	}{
		{SizeSmall, 100, 50},
		{SizeMedium, 150, 75},
		{SizeLarge, 200, 100},
	}
	for _, tc := range cases {
		got := logoSize(1000, 200, 100, PlacementSpec{Size: tc.mode})
		if got.Width != tc.wantWidth || got.Height != tc.wantHeight {
			t.Errorf("%s: got %dx%d, want %dx%d", tc.mode, got.Width, got.Height, tc.wantWidth, tc.wantHeight)
		}
	}
}

func TestLogoSizeCustomVerbatim(t *testing.T) {
	got := logoSize(1000, 200, 100, PlacementSpec{
		Size:       SizeCustom,
		CustomSize: &Dimensions{Width: 50, Height: 50},
	})
	if got.Width != 50 || got.Height != 50 {
		t.Fatalf("custom size not applied verbatim: got %dx%d", got.Width, got.Height)
	}
}

func TestLogoSizeCustomWithoutDimensionsFallsBackToMedium(t *testing.T) {
	got := logoSize(1000, 200, 100, PlacementSpec{Size: SizeCustom})
	if got.Width != 150 || got.Height != 75 {
		t.Fatalf("expected medium fallback, got %dx%d", got.Width, got.Height)
	}
}

func TestLogoPositionAnchors(t *testing.T) {
	size := Dimensions{Width: 150, Height: 75}
	cases := []struct {
		anchor Anchor
		want   image.Point
	}{
		{AnchorTopLeft, image.Point{X: 20, Y: 20}},
		{AnchorTopRight, image.Point{X: 830, Y: 20}},
		{AnchorTopCenter, image.Point{X: 425, Y: 20}},
		{AnchorBottomLeft, image.Point{X: 20, Y: 905}},
		{AnchorBottomRight, image.Point{X: 830, Y: 905}},
		{AnchorCenter, image.Point{X: 425, Y: 462}},
		{Anchor("diagonal"), image.Point{X: 830, Y: 20}},
		{Anchor(""), image.Point{X: 830, Y: 20}},
	}
	for _, tc := range cases {
		got := logoPosition(1000, 1000, size, tc.anchor)
		if got != tc.want {
			t.Errorf("%q: got %v, want %v", tc.anchor, got, tc.want)
		}
	}
}

func TestCompositePlacesLogoTopRight(t *testing.T) {
	poster := solidPNG(t, 1000, 1000, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	logo := solidPNG(t, 200, 100, color.RGBA{R: 250, G: 20, B: 20, A: 255})

	out, err := Composite(poster, logo, PlacementSpec{
		Anchor:  AnchorTopRight,
		Size:    SizeMedium,
		Opacity: 1,
	})
	if err != nil {
		t.Fatalf("composite: %v", err)
	}

	img := decodePNG(t, out)
	if img.Bounds().Dx() != 1000 || img.Bounds().Dy() != 1000 {
		t.Fatalf("output dimensions changed: %v", img.Bounds())
	}

	// Center of the expected 150x75 region at (830,20) is logo-colored.
	r, _, _, _ := img.At(830+75, 20+37).RGBA()
	if r>>8 < 200 {
		t.Errorf("expected logo pixel inside placement region, got red=%d", r>>8)
	}

	// Just outside the region the poster shows through.
	r, _, _, _ = img.At(820, 110).RGBA()
	if r>>8 > 50 {
		t.Errorf("expected poster pixel outside placement region, got red=%d", r>>8)
	}
}

func TestCompositeOpacityBlendsLayers(t *testing.T) {
	poster := solidPNG(t, 400, 400, color.RGBA{A: 255})
	logo := solidPNG(t, 100, 100, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out, err := Composite(poster, logo, PlacementSpec{
		Anchor:  AnchorCenter,
		Size:    SizeSmall,
		Opacity: 0.5,
	})
	if err != nil {
		t.Fatalf("composite: %v", err)
	}

	img := decodePNG(t, out)
	r, _, _, _ := img.At(200, 200).RGBA()
	got := int(r >> 8)
	if got < 100 || got > 160 {
		t.Errorf("expected half-blended pixel around 128, got %d", got)
	}
}

func TestCompositeZeroOpacityTreatedAsOpaque(t *testing.T) {
	poster := solidPNG(t, 400, 400, color.RGBA{A: 255})
	logo := solidPNG(t, 100, 100, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out, err := Composite(poster, logo, PlacementSpec{Anchor: AnchorCenter, Size: SizeSmall})
	if err != nil {
		t.Fatalf("composite: %v", err)
	}
	img := decodePNG(t, out)
	r, _, _, _ := img.At(200, 200).RGBA()
	if r>>8 < 240 {
		t.Errorf("expected fully opaque logo when opacity unset, got red=%d", r>>8)
	}
}

func TestCompositeRejectsBadPoster(t *testing.T) {
	logo := solidPNG(t, 10, 10, color.RGBA{A: 255})
	_, err := Composite([]byte("not an image"), logo, PlacementSpec{})
	var ce *CompositeError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompositeError, got %v", err)
	}
	if ce.Image != "poster" {
		t.Errorf("expected poster named in error, got %q", ce.Image)
	}
}

func TestCompositeRejectsBadLogo(t *testing.T) {
	poster := solidPNG(t, 10, 10, color.RGBA{A: 255})
	_, err := Composite(poster, []byte{0xff, 0xd8, 0x00}, PlacementSpec{})
	var ce *CompositeError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompositeError, got %v", err)
	}
	if ce.Image != "logo" {
		t.Errorf("expected logo named in error, got %q", ce.Image)
	}
}
