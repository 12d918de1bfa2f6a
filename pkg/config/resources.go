package config

// 程序化资源名称
// ResourceManager 在启动时按这些名称生成网格与材质，实体工厂按名称取用
const (
	MeshSphere = "sphere"
	MeshCube   = "cube"
	MeshSkybox = "skybox"
	MeshMarker = "marker"
	MeshPlanet = "planet"

	MaterialAsteroid   = "asteroid"
	MaterialProjectile = "projectile"
	MaterialPlanet     = "planet"
	MaterialSky        = "sky"
	MaterialMarker     = "marker"
	MaterialParticle   = "particle"
)

// 程序化纹理名称
const (
	TextureAsteroid   = "asteroid"
	TextureProjectile = "projectile"
	TexturePlanet     = "planet"
	TextureSky        = "sky"
	TextureMarker     = "marker"
	TextureParticle   = "particle"
	TextureButtonPlay = "button_play"
	TextureButtonQuit = "button_quit"
)

// MeshParticles 粒子动态网格
const MeshParticles = "particles"
