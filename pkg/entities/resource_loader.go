package entities

import "github.com/gonewx/starfield/pkg/gfx"

// ResourceLoader 实体工厂依赖的资源查询接口
// game.ResourceManager 实现此接口
type ResourceLoader interface {
	GetMesh(name string) (*gfx.Mesh, error)
	GetMaterial(name string) (*gfx.Material, error)
}

func loadPair(rm ResourceLoader, meshName, materialName string) (*gfx.Mesh, *gfx.Material, error) {
	mesh, err := rm.GetMesh(meshName)
	if err != nil {
		return nil, nil, err
	}
	material, err := rm.GetMaterial(materialName)
	if err != nil {
		return nil, nil, err
	}
	return mesh, material, nil
}
