package primitives

import rl "github.com/gen2brain/raylib-go/raylib"

// litShader is a single directional light with wrapped diffuse, so the faces of translucent
// cubes turned away from the light stay readable.
type litShader struct {
	shader rl.Shader
	ok     bool

	locView, locLight, locAmbient, locWrap int32
}

var (
	ambient   = [4]float32{0.35, 0.37, 0.4, 1.0}
	lightWrap = []float32{0.3}
)

func loadLitShader() litShader {
	s := litShader{shader: rl.LoadShaderFromMemory(litVS, litFS)}
	s.ok = rl.IsShaderValid(s.shader)
	if !s.ok {
		return s
	}
	s.locView = rl.GetShaderLocation(s.shader, "viewPos")
	s.locLight = rl.GetShaderLocation(s.shader, "lightDir")
	s.locAmbient = rl.GetShaderLocation(s.shader, "ambient")
	s.locWrap = rl.GetShaderLocation(s.shader, "wrap")
	return s
}

// apply uploads the per-frame uniforms. The arrays are copied so cgo never sees Go pointers
// into the registry.
func (s *litShader) apply(viewPos, lightDir [3]float32) {
	if !s.ok {
		return
	}
	amb := ambient
	set := func(loc int32, v []float32, typ rl.ShaderUniformDataType) {
		if loc >= 0 {
			rl.SetShaderValueV(s.shader, loc, v, typ, 1)
		}
	}
	set(s.locView, viewPos[:], rl.ShaderUniformVec3)
	set(s.locLight, lightDir[:], rl.ShaderUniformVec3)
	set(s.locAmbient, amb[:], rl.ShaderUniformVec4)
	set(s.locWrap, lightWrap, rl.ShaderUniformFloat)
}

func (s *litShader) unload() {
	if s.ok {
		rl.UnloadShader(s.shader)
		s.ok = false
	}
}

const litVS = `#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
uniform mat4 mvp;
uniform mat4 matModel;
out vec3 worldPos;
out vec3 normal;
void main() {
  worldPos = (matModel * vec4(vertexPosition, 1.0)).xyz;
  normal = normalize(mat3(matModel) * vertexNormal);
  gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`

const litFS = `#version 330
in vec3 worldPos;
in vec3 normal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform float wrap;
out vec4 finalColor;
void main() {
  vec3 n = normalize(normal);
  float d = max((dot(n, normalize(lightDir)) + wrap) / (1.0 + wrap), 0.0);
  vec3 v = normalize(viewPos - worldPos);
  float rim = pow(1.0 - max(dot(n, v), 0.0), 3.0) * 0.15;
  vec3 rgb = colDiffuse.rgb * (ambient.rgb + d * 0.7) + rim;
  finalColor = vec4(rgb, colDiffuse.a);
}
`
