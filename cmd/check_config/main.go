// check_config 校验游戏配置文件并输出摘要
//
// 用法：
//
//	go run ./cmd/check_config [-file data/game.yaml]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/gonewx/starfield/pkg/config"
)

var file = flag.String("file", "data/game.yaml", "要校验的配置文件")

func main() {
	flag.Parse()

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.ParseGameConfig(data)
	if err != nil {
		fmt.Printf("Invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File: %s (%d bytes, xxhash %016x)\n", *file, len(data), xxhash.Sum64(data))
	fmt.Printf("Window: %dx%d @ %d TPS\n", cfg.Window.Width, cfg.Window.Height, cfg.Window.TPS)
	fmt.Printf("Seed: %q -> %d\n", cfg.Seed, cfg.SeedValue())
	fmt.Printf("Physics: gravity %v, step %.4f x %d\n", cfg.Physics.Gravity, cfg.Physics.FixedTimeStep, cfg.Physics.MaxSubSteps)
	fmt.Printf("Asteroids: spawn %.1fs, despawn %.1fs, max %d\n",
		cfg.Asteroids.SpawnInterval, cfg.Asteroids.DespawnInterval, cfg.Asteroids.MaxSlots)
	fmt.Printf("Projectiles: cooldown %.1fs, lifetime %.1fs, mode %s\n",
		cfg.Projectiles.Cooldown, cfg.Projectiles.Lifetime, cfg.Projectiles.FireMode)
	fmt.Printf("Minimap: %dx%d at (%d,%d)\n", cfg.Minimap.Width, cfg.Minimap.Height, cfg.Minimap.X, cfg.Minimap.Y)
	fmt.Println("OK")
}
