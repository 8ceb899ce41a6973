package gl33

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/kiln-gfx/kiln/internal/logger"
	"github.com/kiln-gfx/kiln/internal/render"
	"github.com/kiln-gfx/kiln/internal/resource"
)

// cameraBlockBinding is the uniform block binding point every program's
// camera block is wired to.
const cameraBlockBinding = 0

type texture struct {
	id     uint32
	width  int32
	height int32
}

type program struct {
	id uint32
	// texLocations holds the sampler uniform locations in slot order.
	texLocations []int32
}

// ResourceCreated uploads images as textures and compiles shaders as
// programs. Failures propagate to the resource system untouched.
func (b *Backend) ResourceCreated(ev resource.Event) error {
	switch ev.Kind {
	case resource.KindImage:
		if _, ok := b.textures[ev.Image.ID]; ok {
			return &resource.DuplicateResourceError{Kind: resource.KindImage, ID: ev.Image.ID}
		}
		b.textures[ev.Image.ID] = createTexture(ev.Image)
		// createTexture clobbered unit 0's binding.
		b.state.InvalidateSlot(0)
		logger.Debug("texture created",
			zap.String("id", ev.Image.ID),
			zap.Int("width", ev.Image.Width),
			zap.Int("height", ev.Image.Height),
		)

	case resource.KindShader:
		if _, ok := b.programs[ev.Shader.ID]; ok {
			return &resource.DuplicateResourceError{Kind: resource.KindShader, ID: ev.Shader.ID}
		}
		p, err := b.compile(ev.Shader)
		if err != nil {
			return err
		}
		b.programs[ev.Shader.ID] = p
		logger.Debug("shader compiled", zap.String("id", ev.Shader.ID))
	}
	return nil
}

// ResourceRemoved destroys the GPU object backing the resource.
func (b *Backend) ResourceRemoved(ev resource.Event) error {
	switch ev.Kind {
	case resource.KindImage:
		if _, ok := b.textures[ev.Image.ID]; !ok {
			return &resource.UnknownResourceError{Kind: resource.KindImage, ID: ev.Image.ID}
		}
		b.destroyTexture(ev.Image.ID)

	case resource.KindShader:
		if _, ok := b.programs[ev.Shader.ID]; !ok {
			return &resource.UnknownResourceError{Kind: resource.KindShader, ID: ev.Shader.ID}
		}
		b.destroyProgram(ev.Shader.ID)
	}
	return nil
}

func createTexture(img *resource.Image) *texture {
	t := &texture{width: int32(img.Width), height: int32(img.Height)}

	// Create on unit 0 so only one tracked slot binding goes stale.
	gl.ActiveTexture(gl.TEXTURE0)
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	var pixels interface{}
	if len(img.Pixels) > 0 {
		pixels = img.Pixels
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, t.width, t.height, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return t
}

func (b *Backend) destroyTexture(id string) {
	t := b.textures[id]
	if fbo, ok := b.fbos[id]; ok {
		gl.DeleteFramebuffers(1, &fbo)
		delete(b.fbos, id)
	}
	gl.DeleteTextures(1, &t.id)
	delete(b.textures, id)
	b.state.InvalidateTexture(id)
}

func (b *Backend) destroyProgram(id string) {
	gl.DeleteProgram(b.programs[id].id)
	delete(b.programs, id)
	b.state.InvalidateProgram(id)
}

// compile builds a program from the shader's glsl330 source. The source
// carries both stages; each is compiled with a stage define injected
// after the #version line.
func (b *Backend) compile(sh *resource.Shader) (*program, error) {
	src, err := sh.Source(SourceKey)
	if err != nil {
		return nil, err
	}

	vert, err := compileStage(withStageDefine(src, "VERTEX_SHADER"), gl.VERTEX_SHADER)
	if err != nil {
		return nil, &render.ShaderError{ID: sh.ID, Reason: "vertex: " + err.Error()}
	}
	defer gl.DeleteShader(vert)

	frag, err := compileStage(withStageDefine(src, "FRAGMENT_SHADER"), gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, &render.ShaderError{ID: sh.ID, Reason: "fragment: " + err.Error()}
	}
	defer gl.DeleteShader(frag)

	id := gl.CreateProgram()
	gl.AttachShader(id, vert)
	gl.AttachShader(id, frag)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(id, logLen, nil, &log[0])
		gl.DeleteProgram(id)
		return nil, &render.ShaderError{ID: sh.ID, Reason: "link: " + string(log[:logLen])}
	}

	for _, name := range sh.UniformBlocks {
		idx := gl.GetUniformBlockIndex(id, gl.Str(name+"\x00"))
		if idx == gl.INVALID_INDEX {
			gl.DeleteProgram(id)
			return nil, &render.UniformBlockError{Shader: sh.ID, Block: name}
		}
		gl.UniformBlockBinding(id, idx, cameraBlockBinding)
	}

	p := &program{id: id, texLocations: make([]int32, len(sh.TextureSlots))}

	// Sampler uniforms bind to fixed units matching their slot order.
	gl.UseProgram(id)
	for i, name := range sh.TextureSlots {
		loc := gl.GetUniformLocation(id, gl.Str(name+"\x00"))
		p.texLocations[i] = loc
		if loc >= 0 {
			gl.Uniform1i(loc, int32(i))
		}
	}
	gl.UseProgram(0)

	return p, nil
}

func compileStage(source string, stage uint32) (uint32, error) {
	shader := gl.CreateShader(stage)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", string(log[:logLen]))
	}
	return shader, nil
}

// withStageDefine injects a stage define directly after the #version
// line so a single source can serve both stages.
func withStageDefine(src, define string) string {
	if i := strings.Index(src, "\n"); i >= 0 && strings.HasPrefix(strings.TrimSpace(src), "#version") {
		return src[:i+1] + "#define " + define + " 1\n" + src[i+1:]
	}
	return "#define " + define + " 1\n" + src
}

func (b *Backend) useProgram(id string) (*program, error) {
	p, ok := b.programs[id]
	if !ok {
		return nil, &render.ShaderError{ID: id, Reason: "not compiled"}
	}
	if b.state.SetProgram(id) {
		gl.UseProgram(p.id)
	}
	return p, nil
}

// bindTarget binds the backbuffer or a lazily created framebuffer
// wrapping the target texture.
func (b *Backend) bindTarget(t render.Target) error {
	if t.Kind == render.TargetBackbuffer {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil
	}

	fbo, ok := b.fbos[t.Texture]
	if !ok {
		tex, texOK := b.textures[t.Texture]
		if !texOK {
			return fmt.Errorf("gl33: render target texture %q not loaded", t.Texture)
		}
		var err error
		if fbo, err = createFramebuffer(tex); err != nil {
			return err
		}
		b.fbos[t.Texture] = fbo
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	return nil
}

// createFramebuffer wraps a texture in a framebuffer with a
// depth/stencil renderbuffer.
func createFramebuffer(tex *texture) (uint32, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex.id, 0)

	var depth uint32
	gl.GenRenderbuffers(1, &depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, tex.width, tex.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, depth)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		gl.DeleteRenderbuffers(1, &depth)
		return 0, fmt.Errorf("gl33: framebuffer incomplete: 0x%x", status)
	}
	return fbo, nil
}

// samplerFor returns a cached sampler object for the given state.
func (b *Backend) samplerFor(s render.SamplerState) uint32 {
	if id, ok := b.samplers[s]; ok {
		return id
	}
	var id uint32
	gl.GenSamplers(1, &id)
	gl.SamplerParameteri(id, gl.TEXTURE_MIN_FILTER, filterMode(s.MinFilter))
	gl.SamplerParameteri(id, gl.TEXTURE_MAG_FILTER, filterMode(s.MagFilter))
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_S, wrapMode(s.WrapU))
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_T, wrapMode(s.WrapV))
	b.samplers[s] = id
	return id
}
