// 把棋盘快照画成图片
package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

// 背景和网格按尺寸缓存
var backgroundCache sync.Map

// HUDHeight 顶部状态栏高度，按格子大小计算
func HUDHeight(blockSize int) int {
	if blockSize < 16 {
		return 16
	}
	return blockSize
}

// Board renders a snapshot. The board area starts below the status bar.
func Board(s structs.Snapshot, sprites SpriteSource, blockSize int) image.Image {
	hud := HUDHeight(blockSize)
	width := s.Width * blockSize
	height := s.Height*blockSize + hud

	dc := gg.NewContext(width, height)
	dc.DrawImage(background(width, height, hud, blockSize), 0, 0)

	draw := func(sp Sprite, p structs.Position) {
		drawSprite(dc, sprites, sp, p, blockSize, hud)
	}
	for _, m := range s.Mushrooms {
		draw(MakeMushroom(), m)
	}
	for _, c := range s.Centipedes {
		for _, seg := range c {
			draw(SegmentSprite(seg.Kind), seg.Position)
		}
	}
	for _, b := range s.Bullets {
		draw(MakeBullet(), b.Position)
	}
	if s.State != structs.StateOver {
		draw(MakeShooter(), s.Shooter)
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(fmt.Sprintf("SCORE %d   LIVES %d   LEVEL %d", s.Score, s.Lives, s.Level),
		4, float64(hud)/2, 0, 0.5)

	if s.State != structs.StateOver {
		return dc.Image()
	}

	// 游戏结束时模糊画面并写上提示
	over := gg.NewContextForImage(imaging.Blur(dc.Image(), 3))
	over.SetRGB(1, 0.2, 0.2)
	over.DrawStringAnchored("GAME OVER", float64(width)/2, float64(height)/2, 0.5, 0.5)
	return over.Image()
}

func background(width, height, hud, blockSize int) image.Image {
	key := fmt.Sprintf("%d_%d_%d", width, height, blockSize)
	if cached, ok := backgroundCache.Load(key); ok {
		return cached.(image.Image)
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB(0.15, 0.15, 0.2)
	dc.DrawRectangle(0, 0, float64(width), float64(hud))
	dc.Fill()
	renderGrid(dc, width, height, hud, blockSize)

	img := dc.Image()
	backgroundCache.Store(key, img)
	return img
}

func renderGrid(dc *gg.Context, width, height, hud, blockSize int) {
	dc.SetRGB(0.12, 0.12, 0.12)
	dc.SetLineWidth(1)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), float64(hud), float64(x), float64(height))
		dc.Stroke()
	}
	for y := hud; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}

func drawSprite(dc *gg.Context, sprites SpriteSource, sp Sprite, p structs.Position, blockSize, hud int) {
	x := p.X * blockSize
	y := p.Y*blockSize + hud
	if sprites != nil {
		if img, found := sprites.Get(sp.Name); found {
			dc.DrawImage(img, x, y)
			return
		}
	}

	// 图片缺失时用纯色图形表示
	dc.SetColor(sp.Color)
	if sp.Circle {
		half := float64(blockSize) / 2
		dc.DrawCircle(float64(x)+half, float64(y)+half, half-1)
	} else {
		dc.DrawRectangle(float64(x+1), float64(y+1), float64(blockSize-2), float64(blockSize-2))
	}
	dc.Fill()
}

// SaveImage 保存为 PNG，自动创建目录
func SaveImage(img image.Image, fileName string) error {
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return err
	}
	return gg.SavePNG(fileName, img)
}
