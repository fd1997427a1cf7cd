package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// The tray icon is a 16x16 speaker glyph rendered once at first use. The
// locked variant fills the body; the unlocked variant draws an outline.
var (
	iconOnce     sync.Once
	iconUnlocked []byte
	iconLocked   []byte
)

// Icon returns PNG bytes for the requested icon variant.
func Icon(locked bool) []byte {
	iconOnce.Do(func() {
		iconUnlocked = renderIcon(false)
		iconLocked = renderIcon(true)
	})
	if locked {
		return iconLocked
	}
	return iconUnlocked
}

func renderIcon(locked bool) []byte {
	const size = 16
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	fg := color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	if locked {
		fg = color.NRGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}
	}

	set := func(x, y int) {
		if x >= 0 && x < size && y >= 0 && y < size {
			img.SetNRGBA(x, y, fg)
		}
	}

	// Speaker box.
	for y := 5; y <= 10; y++ {
		for x := 2; x <= 4; x++ {
			set(x, y)
		}
	}
	// Speaker cone.
	for y := 2; y <= 13; y++ {
		depth := y - 2
		if y > 7 {
			depth = 13 - y
		}
		for x := 5; x <= 5+depth && x <= 8; x++ {
			set(x, y)
		}
	}
	// Sound waves.
	for _, p := range [][2]int{
		{10, 5}, {10, 6}, {10, 7}, {10, 8}, {10, 9}, {10, 10},
		{12, 3}, {13, 4}, {13, 5}, {14, 6}, {14, 7}, {14, 8}, {14, 9}, {13, 10}, {13, 11}, {12, 12},
	} {
		set(p[0], p[1])
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory NRGBA cannot fail.
		panic(err)
	}
	return buf.Bytes()
}
