package render

import (
	"image"
	"image/color"

	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

// SpriteSource 提供按名称查找的图片，找不到时使用纯色图形代替
type SpriteSource interface {
	Get(name string) (image.Image, bool)
}

// Sprite 描述一种棋子的外观
type Sprite struct {
	Name   string
	Color  color.RGBA
	Circle bool
}

func MakeHeadSegment() Sprite {
	return Sprite{Name: "head", Color: color.RGBA{R: 230, G: 40, B: 60, A: 255}, Circle: true}
}

func MakeBodySegment() Sprite {
	return Sprite{Name: "body", Color: color.RGBA{R: 60, G: 200, B: 80, A: 255}, Circle: true}
}

func MakeTailSegment() Sprite {
	return Sprite{Name: "tail", Color: color.RGBA{R: 30, G: 140, B: 60, A: 255}, Circle: true}
}

func MakeShooter() Sprite {
	return Sprite{Name: "shooter", Color: color.RGBA{R: 240, G: 220, B: 40, A: 255}}
}

func MakeMushroom() Sprite {
	return Sprite{Name: "mushroom", Color: color.RGBA{R: 160, G: 90, B: 200, A: 255}}
}

func MakeBullet() Sprite {
	return Sprite{Name: "bullet", Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}}
}

// SegmentSprite 按节的类型选择外观
func SegmentSprite(kind structs.Kind) Sprite {
	switch kind {
	case structs.KindHead:
		return MakeHeadSegment()
	case structs.KindTail:
		return MakeTailSegment()
	default:
		return MakeBodySegment()
	}
}
