// Package resource implements the engine-level resource system: image
// and shader records keyed by id, reference counting, and the
// created/removed event stream the renderer backends subscribe to.
package resource

import (
	"go.uber.org/zap"

	"github.com/kiln-gfx/kiln/internal/logger"
)

// Kind identifies a resource type.
type Kind uint8

const (
	KindImage Kind = iota
	KindShader
)

// String returns the kind name for error messages.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindShader:
		return "shader"
	default:
		return "unknown"
	}
}

// Image is a decoded pixel resource. Pixels are tightly packed RGBA8,
// already parsed by whatever loaded them.
type Image struct {
	ID     string
	Width  int
	Height int
	Pixels []byte
}

// Shader is a shader resource with per-backend sources and its declared
// binding layout.
type Shader struct {
	ID string

	// Sources maps a backend source key (e.g. "glsl410") to source text.
	Sources map[string]string

	// TextureSlots lists the sampler uniform names in slot order. A draw
	// command must provide at least this many textures.
	TextureSlots []string

	// UniformBlocks lists the uniform block names the program declares.
	UniformBlocks []string
}

// Source returns the shader source for the given backend key, or a
// NoSourceError if the shader carries none for that backend.
func (s *Shader) Source(key string) (string, error) {
	if src, ok := s.Sources[key]; ok {
		return src, nil
	}
	return "", &NoSourceError{ShaderID: s.ID, Key: key}
}

// Event carries a created/removed notification. Exactly one of Image or
// Shader is set, matching Kind.
type Event struct {
	Kind   Kind
	Image  *Image
	Shader *Shader
}

// ID returns the id of the resource the event refers to.
func (e Event) ID() string {
	if e.Kind == KindImage {
		return e.Image.ID
	}
	return e.Shader.ID
}

// Listener receives resource lifecycle events. Handlers run
// synchronously; an error aborts the operation and propagates to the
// caller (fail-fast, no retry).
type Listener interface {
	ResourceCreated(Event) error
	ResourceRemoved(Event) error
}

type imageEntry struct {
	image *Image
	refs  int
}

type shaderEntry struct {
	shader *Shader
	refs   int
}

// System is the reference-counted resource registry. It is single
// threaded, like the rendering core it feeds.
type System struct {
	images    map[string]*imageEntry
	shaders   map[string]*shaderEntry
	listeners []Listener
}

// NewSystem creates an empty resource system.
func NewSystem() *System {
	return &System{
		images:  make(map[string]*imageEntry),
		shaders: make(map[string]*shaderEntry),
	}
}

// Subscribe registers a listener for created/removed events.
func (s *System) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// AddImage registers an image, incrementing its reference count. The
// first registration fires ResourceCreated on all listeners.
func (s *System) AddImage(img *Image) error {
	if entry, ok := s.images[img.ID]; ok {
		entry.refs++
		return nil
	}
	s.images[img.ID] = &imageEntry{image: img, refs: 1}
	logger.Debug("image created", zap.String("id", img.ID),
		zap.Int("width", img.Width), zap.Int("height", img.Height))
	return s.fireCreated(Event{Kind: KindImage, Image: img})
}

// ReleaseImage decrements an image's reference count. When it reaches
// zero the backend objects are released via ResourceRemoved and the
// record is dropped. Removal events must only be fired after all draw
// commands referencing the id have been submitted; that ordering is the
// caller's responsibility.
func (s *System) ReleaseImage(id string) error {
	entry, ok := s.images[id]
	if !ok {
		return &UnknownResourceError{Kind: KindImage, ID: id}
	}
	entry.refs--
	if entry.refs > 0 {
		return nil
	}
	delete(s.images, id)
	logger.Debug("image removed", zap.String("id", id))
	return s.fireRemoved(Event{Kind: KindImage, Image: entry.image})
}

// AddShader registers a shader, incrementing its reference count. The
// first registration fires ResourceCreated on all listeners.
func (s *System) AddShader(sh *Shader) error {
	if entry, ok := s.shaders[sh.ID]; ok {
		entry.refs++
		return nil
	}
	s.shaders[sh.ID] = &shaderEntry{shader: sh, refs: 1}
	logger.Debug("shader created", zap.String("id", sh.ID))
	return s.fireCreated(Event{Kind: KindShader, Shader: sh})
}

// ReleaseShader decrements a shader's reference count, firing
// ResourceRemoved when it reaches zero.
func (s *System) ReleaseShader(id string) error {
	entry, ok := s.shaders[id]
	if !ok {
		return &UnknownResourceError{Kind: KindShader, ID: id}
	}
	entry.refs--
	if entry.refs > 0 {
		return nil
	}
	delete(s.shaders, id)
	logger.Debug("shader removed", zap.String("id", id))
	return s.fireRemoved(Event{Kind: KindShader, Shader: entry.shader})
}

// Image returns a registered image, or nil.
func (s *System) Image(id string) *Image {
	if entry, ok := s.images[id]; ok {
		return entry.image
	}
	return nil
}

// Shader returns a registered shader, or nil.
func (s *System) Shader(id string) *Shader {
	if entry, ok := s.shaders[id]; ok {
		return entry.shader
	}
	return nil
}

// Refs returns the current reference count for a resource, 0 if absent.
func (s *System) Refs(kind Kind, id string) int {
	switch kind {
	case KindImage:
		if entry, ok := s.images[id]; ok {
			return entry.refs
		}
	case KindShader:
		if entry, ok := s.shaders[id]; ok {
			return entry.refs
		}
	}
	return 0
}

func (s *System) fireCreated(ev Event) error {
	for _, l := range s.listeners {
		if err := l.ResourceCreated(ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) fireRemoved(ev Event) error {
	for _, l := range s.listeners {
		if err := l.ResourceRemoved(ev); err != nil {
			return err
		}
	}
	return nil
}
