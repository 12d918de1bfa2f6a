package gfx

// 内置着色器程序名
const (
	ShaderBasicVS    = "basic_vs"
	ShaderBasicPS    = "basic_ps"
	ShaderSkyVS      = "sky_vs"
	ShaderSkyPS      = "sky_ps"
	ShaderParticleVS = "particle_vs"
	ShaderParticlePS = "particle_ps"
)

// knownShaders 设备可以加载的程序
var knownShaders = map[string]bool{
	ShaderBasicVS:    true,
	ShaderBasicPS:    true,
	ShaderSkyVS:      true,
	ShaderSkyPS:      true,
	ShaderParticleVS: true,
	ShaderParticlePS: true,
}

// IsKnownShader 检查着色器程序名是否受支持
func IsKnownShader(name string) bool {
	return knownShaders[name]
}
