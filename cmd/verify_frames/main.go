// verify_frames 无窗口运行若干帧并输出统计
//
// 使用记录设备代替 GPU、脚本输入代替键盘鼠标：
// 第 1 帧点击 Play 进入游戏，之后按固定间隔开火，最后按 Escape 退出。
//
// 用法：
//
//	go run ./cmd/verify_frames -frames 1200 -fire-every 90
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/game"
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/gonewx/starfield/pkg/input"
	"github.com/gonewx/starfield/pkg/logger"
	"github.com/gonewx/starfield/pkg/scenes"
	"github.com/gonewx/starfield/pkg/ui"
	"go.uber.org/zap"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "游戏配置文件（默认使用内置默认值）")
	frames     = flag.Int("frames", 600, "运行的帧数")
	fireEvery  = flag.Int("fire-every", 60, "每隔多少帧按一次开火键，0 表示不开火")
	report     = flag.Int("report", 120, "每隔多少帧输出一次统计")
	seed       = flag.String("seed", "", "覆盖配置中的随机种子")
)

func main() {
	flag.Parse()
	log := logger.New(*verbose)
	defer log.Sync()

	if err := run(log); err != nil {
		fmt.Fprintf(os.Stderr, "verify_frames: %v\n", err)
		os.Exit(1)
	}
}

func run(log *zap.Logger) error {
	cfg := config.DefaultGameConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadGameConfig(*configPath); err != nil {
			return err
		}
	}
	if *seed != "" {
		cfg.Seed = *seed
	}

	dev := gfx.NewRecordingDevice()
	rm := game.NewResourceManager(dev, log)
	if err := rm.LoadAll(context.Background()); err != nil {
		return err
	}

	in := input.NewScriptedService()
	sprites := &ui.RecordingSprites{}
	scene, err := scenes.NewSpaceScene(scenes.SpaceDeps{
		Config:    cfg,
		Device:    dev,
		Sprites:   sprites,
		Resources: rm,
		Input:     in,
		Seed:      cfg.SeedValue(),
		Logger:    log,
	})
	if err != nil {
		return err
	}
	defer scene.Close()

	dt := 1.0 / float64(cfg.Window.TPS)
	play := scene.Menu().Play.Bounds
	p := image.Pt((play.Min.X+play.Max.X)/2, (play.Min.Y+play.Max.Y)/2)

	var submits, maxSubmits int
	for f := 1; f <= *frames; f++ {
		script(in, f, p)

		err := scene.Update(dt)
		if errors.Is(err, game.ErrQuit) {
			fmt.Printf("quit at frame %d\n", f)
			break
		}

		dev.Reset()
		sprites.Reset()
		scene.Draw(nil)
		n := len(dev.Submits())
		submits += n
		if n > maxSubmits {
			maxSubmits = n
		}

		if *report > 0 && f%*report == 0 {
			printStats(f, scene.Stats(), n)
		}
	}

	st := scene.Stats()
	fmt.Println("---- summary ----")
	printStats(st.Frames, st, 0)
	fmt.Printf("presented frames: %d, submits total %d, max per frame %d\n", dev.Frames, submits, maxSubmits)
	return nil
}

// script 第 1 帧点击 Play，按间隔开火，最后一帧按 Escape
func script(in *input.ScriptedService, f int, play image.Point) {
	in.ReleaseAll()
	switch {
	case f == 1:
		in.MoveCursor(play.X, play.Y)
		in.Pointer = true
	case f == *frames:
		in.Press(input.ActionQuit)
	case *fireEvery > 0 && f%*fireEvery == 0:
		in.Press(input.ActionFire)
	}
}

func printStats(f int, st scenes.Stats, submits int) {
	fmt.Printf("frame %5d  phase %-8s  asteroids %3d/%-3d  projectiles %3d/%-3d  particles %4d  bodies %3d  mode %-6s  submits %d\n",
		f, st.Phase, st.AsteroidsAlive, st.AsteroidSlots, st.ProjectilesAlive, st.ProjectileSlots,
		st.Particles, st.Bodies, st.FireMode, submits)
}
