package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gonewx/starfield/pkg/app"
	"github.com/gonewx/starfield/pkg/embedded"
	"github.com/gonewx/starfield/pkg/logger"
	"go.uber.org/zap"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "游戏配置文件（默认使用内置 data/game.yaml）")
	seed       = flag.String("seed", "", "覆盖配置中的随机种子")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源
	embedded.Init(dataFS)

	log := logger.New(*verbose)
	defer log.Sync()

	gameApp, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		Seed:       *seed,
		Logger:     log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "游戏初始化失败: %v\n", err)
		os.Exit(1)
	}

	if err := gameApp.Run(); err != nil {
		log.Error("game loop exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "游戏异常退出: %v\n", err)
		os.Exit(1)
	}
}
