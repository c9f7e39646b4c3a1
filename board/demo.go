package board

import "github.com/hoshinonyaruko/centipede-in-im/structs"

// autopilot 演示模式下的射手：每个周期向最低一节蜈蚣所在的列挪一格，能开火就开火
func (b *Board) autopilot() {
	target, ok := b.lowestSegment()
	if !ok {
		return
	}

	next := b.shooter
	switch {
	case target.X < b.shooter.X:
		next.X--
	case target.X > b.shooter.X:
		next.X++
	}
	if next != b.shooter {
		b.moveShooter(next)
		if !b.Active() {
			return
		}
	}
	b.fire()
}

// lowestSegment 选离射手最近的一行里水平距离最近的那一节
func (b *Board) lowestSegment() (structs.Position, bool) {
	var best structs.Position
	found := false
	for _, c := range b.centipedes {
		for _, s := range c.Segments() {
			if !found || s.Y > best.Y || (s.Y == best.Y && abs(s.X-b.shooter.X) < abs(best.X-b.shooter.X)) {
				best = s.Position
				found = true
			}
		}
	}
	return best, found
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
