package board

import "time"

const (
	BoardWidth  = 25 // 棋盘宽度，单位为蘑菇/蜈蚣节
	BoardHeight = 30 // 棋盘高度
)

// Settings 控制一局游戏的规则参数
type Settings struct {
	Width           int
	Height          int
	StartingLives   int
	CentipedeLength int
	Mushrooms       int
	MushroomPoints  int
	SegmentPoints   int
	HeadPoints      int
	WaveBonus       int
	UpdatePeriod    time.Duration
	BulletStep      int // 每个周期子弹移动的格数
	MaxBullets      int // 同时在飞的子弹上限
	MaxCatchUpTicks int // 一次 Update 最多补跑的周期数
}

// DefaultSettings returns the arcade defaults.
func DefaultSettings() Settings {
	return Settings{
		Width:           BoardWidth,
		Height:          BoardHeight,
		StartingLives:   3,
		CentipedeLength: 12,
		Mushrooms:       40,
		MushroomPoints:  1,
		SegmentPoints:   10,
		HeadPoints:      100,
		WaveBonus:       500,
		UpdatePeriod:    150 * time.Millisecond,
		BulletStep:      2,
		MaxBullets:      1,
		MaxCatchUpTicks: 600,
	}
}

// normalize 修正不合法的参数，保证棋盘至少能容纳蜈蚣和射手
func (s Settings) normalize() Settings {
	d := DefaultSettings()
	if s.Width < 2 {
		s.Width = d.Width
	}
	if s.Height < 3 {
		s.Height = d.Height
	}
	if s.StartingLives < 1 {
		s.StartingLives = d.StartingLives
	}
	if s.CentipedeLength < 1 {
		s.CentipedeLength = d.CentipedeLength
	}
	if s.CentipedeLength > s.Width {
		s.CentipedeLength = s.Width
	}
	if s.Mushrooms < 0 {
		s.Mushrooms = 0
	}
	// 分数只增不减
	if s.MushroomPoints < 0 {
		s.MushroomPoints = 0
	}
	if s.SegmentPoints < 0 {
		s.SegmentPoints = 0
	}
	if s.HeadPoints < 0 {
		s.HeadPoints = 0
	}
	if s.WaveBonus < 0 {
		s.WaveBonus = 0
	}
	if s.UpdatePeriod <= 0 {
		s.UpdatePeriod = d.UpdatePeriod
	}
	if s.BulletStep < 1 {
		s.BulletStep = 1
	}
	if s.MaxBullets < 1 {
		s.MaxBullets = 1
	}
	if s.MaxCatchUpTicks < 1 {
		s.MaxCatchUpTicks = d.MaxCatchUpTicks
	}
	return s
}
