package config

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/hoshinonyaruko/centipede-in-im/board"
)

// AppConfig holds the structure of the configuration
type AppConfig struct {
	SelfPath        string `json:"selfpath"`
	Port            string `json:"port"`
	Blocksize       int    `json:"blocksize"`
	Database        string `json:"database"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Lives           int    `json:"lives"`
	CentipedeLength int    `json:"centipede_length"`
	Mushrooms       int    `json:"mushrooms"`
	MushroomPoints  int    `json:"mushroom_points"`
	SegmentPoints   int    `json:"segment_points"`
	HeadPoints      int    `json:"head_points"`
	WaveBonus       int    `json:"wave_bonus"`
	UpdatePeriodMs  int    `json:"update_period_ms"` // 游戏速度，每个周期的毫秒数
	BulletStep      int    `json:"bullet_step"`
	MaxBullets      int    `json:"max_bullets"`
	MaxCatchUpTicks int    `json:"max_catch_up_ticks"`
}

var (
	instance *AppConfig
	once     sync.Once
)

func defaults() *AppConfig {
	d := board.DefaultSettings()
	return &AppConfig{
		SelfPath:        "www.example.com", // Default value
		Port:            "38870",           // Default value
		Blocksize:       20,
		Database:        "game.db",
		Width:           d.Width,
		Height:          d.Height,
		Lives:           d.StartingLives,
		CentipedeLength: d.CentipedeLength,
		Mushrooms:       d.Mushrooms,
		MushroomPoints:  d.MushroomPoints,
		SegmentPoints:   d.SegmentPoints,
		HeadPoints:      d.HeadPoints,
		WaveBonus:       d.WaveBonus,
		UpdatePeriodMs:  int(d.UpdatePeriod / time.Millisecond),
		BulletStep:      d.BulletStep,
		MaxBullets:      d.MaxBullets,
		MaxCatchUpTicks: d.MaxCatchUpTicks,
	}
}

// LoadConfig initializes and returns the instance of AppConfig
func LoadConfig(filePath string) *AppConfig {
	once.Do(func() {
		instance = defaults()
		// Load the config file if it exists, otherwise create one
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			saveConfig(filePath)
		} else {
			loadConfig(filePath)
		}
	})
	return instance
}

// loadConfig loads the settings from the file
func loadConfig(filePath string) {
	file, err := os.Open(filePath)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(instance); err != nil {
		panic(err)
	}
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string) {
	file, err := os.Create(filePath)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(instance); err != nil {
		panic(err)
	}
}

// Settings 把配置转换为棋盘规则参数，未加载配置时返回默认值
func Settings() board.Settings {
	c := instance
	if c == nil {
		c = defaults()
	}
	return board.Settings{
		Width:           c.Width,
		Height:          c.Height,
		StartingLives:   c.Lives,
		CentipedeLength: c.CentipedeLength,
		Mushrooms:       c.Mushrooms,
		MushroomPoints:  c.MushroomPoints,
		SegmentPoints:   c.SegmentPoints,
		HeadPoints:      c.HeadPoints,
		WaveBonus:       c.WaveBonus,
		UpdatePeriod:    time.Duration(c.UpdatePeriodMs) * time.Millisecond,
		BulletStep:      c.BulletStep,
		MaxBullets:      c.MaxBullets,
		MaxCatchUpTicks: c.MaxCatchUpTicks,
	}
}

// GetConfigValue returns the value of the configuration by key
func GetConfigValue(key string) interface{} {
	c := instance
	if c == nil {
		c = defaults()
	}
	switch key {
	case "selfpath":
		return c.SelfPath
	case "port":
		return c.Port
	case "blocksize":
		return c.Blocksize
	case "database":
		return c.Database
	default:
		return ""
	}
}
