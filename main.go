package main

import (
	"log"
	"os"

	"github.com/hoshinonyaruko/centipede-in-im/api"
	"github.com/hoshinonyaruko/centipede-in-im/config"
	"github.com/hoshinonyaruko/centipede-in-im/logger"
	"github.com/hoshinonyaruko/centipede-in-im/memimg"
	"github.com/hoshinonyaruko/centipede-in-im/sqlite"
)

func main() {
	EnsureFoldersExist()
	// Initialize the configuration
	config.LoadConfig("./config.json")
	lg := logger.NewLogger()

	// 获取blockSize
	blockSize := config.GetConfigValue("blocksize").(int)
	// 载入精灵图片到内存
	sprites := memimg.NewStore(blockSize)
	if err := sprites.LoadSprites("./sprites"); err != nil {
		lg.Warn("loading sprites: %v", err)
	}
	// 检测并热更新到内存 加速绘图
	go func() {
		err := sprites.WatchSprites("./sprites", nil, func(err error) {
			lg.Warn("sprite watcher: %v", err)
		})
		if err != nil {
			lg.Error("sprite watcher stopped: %v", err)
		}
	}()

	db, err := sqlite.Open(config.GetConfigValue("database").(string))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	service := api.New(db, sprites, lg, api.Options{
		SelfPath:  config.GetConfigValue("selfpath").(string),
		StaticDir: "./static",
		BlockSize: blockSize,
		Settings:  config.Settings(),
	})
	// 从配置单例读取端口 监听
	if err := service.Router().Run(":" + config.GetConfigValue("port").(string)); err != nil {
		log.Fatal(err)
	}
}

// EnsureFoldersExists 检查并创建必需的文件夹
func EnsureFoldersExist() {
	folders := []string{"sprites", "static"}

	for _, folder := range folders {
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			err := os.Mkdir(folder, 0755) // 使用0755权限以确保读写权限
			if err != nil {
				// 如果创建失败，则记录错误并可能退出程序
				log.Fatalf("Failed to create %s directory: %s", folder, err)
			}
			log.Printf("Created %s directory", folder)
		} else {
			// 文件夹已存在
			log.Printf("%s directory already exists", folder)
		}
	}
}
