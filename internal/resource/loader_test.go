package resource

import (
	"os"
	"path/filepath"
	"testing"
)

// tgaUncompressed builds a minimal bottom-up 24-bpp type-2 TGA.
func tgaUncompressed(w, h int, rgb [3]byte) []byte {
	data := make([]byte, 18, 18+w*h*3)
	data[2] = tgaTypeUncompressed
	data[12] = byte(w)
	data[13] = byte(w >> 8)
	data[14] = byte(h)
	data[15] = byte(h >> 8)
	data[16] = 24
	for i := 0; i < w*h; i++ {
		data = append(data, rgb[2], rgb[1], rgb[0]) // BGR order
	}
	return data
}

// tgaRLE builds a 32-bpp type-10 TGA with one full-image run packet.
func tgaRLE(w, h int, rgba [4]byte) []byte {
	data := make([]byte, 18)
	data[2] = tgaTypeRLE
	data[12] = byte(w)
	data[13] = byte(w >> 8)
	data[14] = byte(h)
	data[15] = byte(h >> 8)
	data[16] = 32
	data[17] = 0x20 // top-down
	n := w * h
	for n > 0 {
		run := n
		if run > 128 {
			run = 128
		}
		data = append(data, 0x80|byte(run-1), rgba[2], rgba[1], rgba[0], rgba[3])
		n -= run
	}
	return data
}

func TestDecodeTGAUncompressed(t *testing.T) {
	img, err := DecodeTGA("red", tgaUncompressed(4, 2, [3]byte{200, 10, 30}))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 4 || img.Height != 2 {
		t.Fatalf("size = %dx%d, want 4x2", img.Width, img.Height)
	}
	if len(img.Pixels) != 4*2*4 {
		t.Fatalf("pixel bytes = %d, want %d", len(img.Pixels), 4*2*4)
	}
	// BGR source must arrive as RGBA with full alpha.
	if img.Pixels[0] != 200 || img.Pixels[1] != 10 || img.Pixels[2] != 30 || img.Pixels[3] != 255 {
		t.Errorf("first pixel = %v", img.Pixels[:4])
	}
}

func TestDecodeTGARLE(t *testing.T) {
	img, err := DecodeTGA("blue", tgaRLE(16, 16, [4]byte{0, 0, 255, 128}))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 16*16; i++ {
		p := img.Pixels[i*4:]
		if p[0] != 0 || p[1] != 0 || p[2] != 255 || p[3] != 128 {
			t.Fatalf("pixel %d = %v", i, p[:4])
		}
	}
}

func TestDecodeTGARejectsGarbage(t *testing.T) {
	if _, err := DecodeTGA("x", []byte{1, 2, 3}); err == nil {
		t.Error("short data accepted")
	}
	bad := tgaUncompressed(2, 2, [3]byte{0, 0, 0})
	bad[2] = 1 // color-mapped
	if _, err := DecodeTGA("x", bad); err == nil {
		t.Error("color-mapped TGA accepted")
	}
}

func TestLoaderSearchOrderAndCache(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()

	if err := os.WriteFile(filepath.Join(low, "a.tga"),
		tgaUncompressed(1, 1, [3]byte{1, 1, 1}), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(high, "a.tga"),
		tgaUncompressed(1, 1, [3]byte{9, 9, 9}), 0o644); err != nil {
		t.Fatal(err)
	}

	sys := NewSystem()
	l := NewLoader(sys)
	l.AddDir(low)
	l.AddDir(high) // highest priority

	if err := l.LoadImage("a", "a.tga"); err != nil {
		t.Fatal(err)
	}
	img := sys.Image("a")
	if img == nil {
		t.Fatal("image not registered")
	}
	if img.Pixels[0] != 9 {
		t.Errorf("loaded from low-priority dir: pixel = %d", img.Pixels[0])
	}

	// Second load of the same path must hit the cache.
	if err := l.LoadImage("a2", "a.tga"); err != nil {
		t.Fatal(err)
	}
	hits, misses := l.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("cache stats = %d/%d, want 1 hit, 1 miss", hits, misses)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	l := NewLoader(NewSystem())
	l.AddDir(t.TempDir())
	if err := l.LoadImage("x", "missing.tga"); err == nil {
		t.Error("missing file did not error")
	}
}
