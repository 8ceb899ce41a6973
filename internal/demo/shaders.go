package demo

import (
	"github.com/kiln-gfx/kiln/internal/render/gl33"
	"github.com/kiln-gfx/kiln/internal/render/gl41"
	"github.com/kiln-gfx/kiln/internal/resource"
)

// spriteBody is the stage-combined sprite shader; the backend injects
// VERTEX_SHADER or FRAGMENT_SHADER after the #version line.
const spriteBody = `
layout(std140) uniform Camera {
    mat4 view;
    mat4 proj;
};

#ifdef VERTEX_SHADER

layout(location = 0) in vec3 in_pos;
layout(location = 1) in vec4 in_color;
layout(location = 2) in vec2 in_uv;

out vec4 v_color;
out vec2 v_uv;

void main() {
    v_color = in_color;
    v_uv = in_uv;
    gl_Position = proj * view * vec4(in_pos, 1.0);
}

#else

uniform sampler2D tex0;

in vec4 v_color;
in vec2 v_uv;

out vec4 out_color;

void main() {
    out_color = texture(tex0, v_uv) * v_color;
}

#endif
`

func spriteShader() *resource.Shader {
	return &resource.Shader{
		ID: "sprite",
		Sources: map[string]string{
			gl41.SourceKey: "#version 410 core\n" + spriteBody,
			gl33.SourceKey: "#version 330 core\n" + spriteBody,
		},
		TextureSlots:  []string{"tex0"},
		UniformBlocks: []string{"Camera"},
	}
}
