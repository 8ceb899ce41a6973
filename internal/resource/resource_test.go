package resource_test

import (
	"errors"
	"testing"

	"github.com/kiln-gfx/kiln/internal/render/null"
	"github.com/kiln-gfx/kiln/internal/resource"
)

func newSystem(t *testing.T) (*resource.System, *null.Backend) {
	t.Helper()
	sys := resource.NewSystem()
	backend := null.New(null.Options{SourceKey: "glsl410"})
	sys.Subscribe(backend)
	return sys, backend
}

func testImage(id string) *resource.Image {
	return &resource.Image{ID: id, Width: 1, Height: 1, Pixels: []byte{255, 255, 255, 255}}
}

func testShader(id string) *resource.Shader {
	return &resource.Shader{
		ID:           id,
		Sources:      map[string]string{"glsl410": "#version 410 core\n"},
		TextureSlots: []string{"tex0"},
	}
}

func TestRefcountedImageLifecycle(t *testing.T) {
	sys, backend := newSystem(t)

	// Two references, one created event.
	if err := sys.AddImage(testImage("atlas")); err != nil {
		t.Fatal(err)
	}
	if err := sys.AddImage(testImage("atlas")); err != nil {
		t.Fatal(err)
	}
	if refs := sys.Refs(resource.KindImage, "atlas"); refs != 2 {
		t.Fatalf("refs = %d, want 2", refs)
	}
	if !backend.HasTexture("atlas") {
		t.Fatal("backend missing texture after first add")
	}

	// First release keeps the texture alive.
	if err := sys.ReleaseImage("atlas"); err != nil {
		t.Fatal(err)
	}
	if !backend.HasTexture("atlas") {
		t.Fatal("texture destroyed while still referenced")
	}

	// Last release removes it.
	if err := sys.ReleaseImage("atlas"); err != nil {
		t.Fatal(err)
	}
	if backend.HasTexture("atlas") {
		t.Fatal("texture survived last release")
	}
	if refs := sys.Refs(resource.KindImage, "atlas"); refs != 0 {
		t.Errorf("refs = %d after removal, want 0", refs)
	}
}

func TestReleaseUnknownResource(t *testing.T) {
	sys, _ := newSystem(t)

	err := sys.ReleaseImage("nope")
	var unknown *resource.UnknownResourceError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownResourceError", err)
	}
	if unknown.Kind != resource.KindImage || unknown.ID != "nope" {
		t.Errorf("error carries %v/%q", unknown.Kind, unknown.ID)
	}
}

func TestShaderLifecycle(t *testing.T) {
	sys, backend := newSystem(t)

	if err := sys.AddShader(testShader("sprite")); err != nil {
		t.Fatal(err)
	}
	if !backend.HasShader("sprite") {
		t.Fatal("backend missing shader")
	}
	if sys.Shader("sprite") == nil {
		t.Fatal("Shader lookup failed")
	}

	if err := sys.ReleaseShader("sprite"); err != nil {
		t.Fatal(err)
	}
	if backend.HasShader("sprite") {
		t.Fatal("shader survived release")
	}
}

// A shader with no source for the backend's key must fail fast at add
// time, not at draw time.
func TestShaderMissingSourceFailsAdd(t *testing.T) {
	sys, _ := newSystem(t)

	sh := testShader("sprite")
	sh.Sources = map[string]string{"glsl330": "#version 330 core\n"}

	err := sys.AddShader(sh)
	var noSource *resource.NoSourceError
	if !errors.As(err, &noSource) {
		t.Fatalf("err = %v, want NoSourceError", err)
	}
	if noSource.ShaderID != "sprite" || noSource.Key != "glsl410" {
		t.Errorf("error carries %q/%q", noSource.ShaderID, noSource.Key)
	}
}

// The same id arriving at a backend twice is a duplicate even if two
// systems feed it.
func TestDuplicateResourceAtBackend(t *testing.T) {
	backend := null.New(null.Options{})

	ev := resource.Event{Kind: resource.KindImage, Image: testImage("atlas")}
	if err := backend.ResourceCreated(ev); err != nil {
		t.Fatal(err)
	}
	err := backend.ResourceCreated(ev)
	var dup *resource.DuplicateResourceError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want DuplicateResourceError", err)
	}
}

func TestEventID(t *testing.T) {
	img := resource.Event{Kind: resource.KindImage, Image: testImage("a")}
	sh := resource.Event{Kind: resource.KindShader, Shader: testShader("b")}
	if img.ID() != "a" || sh.ID() != "b" {
		t.Errorf("event ids = %q/%q, want a/b", img.ID(), sh.ID())
	}
}
