package board

import (
	"github.com/hoshinonyaruko/centipede-in-im/centipede"
	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

// Snapshot 导出棋盘的完整状态
func (b *Board) Snapshot() structs.Snapshot {
	s := structs.Snapshot{
		Width:      b.settings.Width,
		Height:     b.settings.Height,
		Mushrooms:  b.Mushrooms(),
		Score:      b.score,
		Lives:      b.lives,
		Level:      b.level,
		State:      b.state,
		Shooter:    b.shooter,
		Bullets:    b.Bullets(),
		LastUpdate: b.lastUpdate,
	}
	for _, c := range b.centipedes {
		s.Centipedes = append(s.Centipedes, c.Segments())
	}
	return s
}

// Restore replaces the board state with s. The board takes the snapshot's
// dimensions; the other settings are kept.
func (b *Board) Restore(s structs.Snapshot) {
	if s.Width > 0 && s.Height > 0 {
		b.settings.Width = s.Width
		b.settings.Height = s.Height
		b.settings = b.settings.normalize()
	}
	b.grid = make([]bool, b.settings.Width*b.settings.Height)
	for _, p := range s.Mushrooms {
		b.PlaceMushroom(p)
	}

	b.score = s.Score
	b.lives = s.Lives
	b.level = s.Level
	b.state = s.State
	if b.state == "" {
		b.state = structs.StateIdle
	}
	b.shooter = s.Shooter
	b.bullets = append([]structs.Bullet(nil), s.Bullets...)
	b.lastUpdate = s.LastUpdate
	b.events = nil

	b.centipedes = nil
	for _, segments := range s.Centipedes {
		if len(segments) > 0 {
			b.centipedes = append(b.centipedes, centipede.FromSegments(segments))
		}
	}
}
