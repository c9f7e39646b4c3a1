// Package centipede 管理蜈蚣的节链：移动和截断。
package centipede

import (
	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

// Field is the part of the board a centipede needs to move across it.
type Field interface {
	Width() int
	Height() int
	IsPositionAvailable(p structs.Position) bool
}

// Centipede 一条蜈蚣，segments[0] 是头，最后一节是尾。
type Centipede struct {
	segments []structs.Segment
}

// New 在 head 处放置蜈蚣头，身体沿 dx 的反方向水平展开。
func New(length int, head structs.Position, dx int) *Centipede {
	if length < 1 {
		return &Centipede{}
	}
	if dx >= 0 {
		dx = 1
	} else {
		dx = -1
	}
	segments := make([]structs.Segment, length)
	for i := range segments {
		segments[i] = structs.Segment{
			Position: head.Add(-dx*i, 0),
			Dx:       dx,
			Dy:       1,
		}
	}
	c := &Centipede{segments: segments}
	c.relabel()
	return c
}

// FromSegments rebuilds a centipede from a stored chain, head first.
func FromSegments(segments []structs.Segment) *Centipede {
	c := &Centipede{segments: append([]structs.Segment(nil), segments...)}
	c.relabel()
	return c
}

// relabel 根据顺序重新标记头、身体和尾
func (c *Centipede) relabel() {
	last := len(c.segments) - 1
	for i := range c.segments {
		switch {
		case i == 0:
			c.segments[i].Kind = structs.KindHead
		case i == last:
			c.segments[i].Kind = structs.KindTail
		default:
			c.segments[i].Kind = structs.KindBody
		}
	}
}

// Segments returns a copy of the chain, head first.
func (c *Centipede) Segments() []structs.Segment {
	return append([]structs.Segment(nil), c.segments...)
}

func (c *Centipede) Len() int {
	return len(c.segments)
}

func (c *Centipede) Empty() bool {
	return len(c.segments) == 0
}

// Head 返回蜈蚣头，空蜈蚣返回 false
func (c *Centipede) Head() (structs.Segment, bool) {
	if len(c.segments) == 0 {
		return structs.Segment{}, false
	}
	return c.segments[0], true
}

// At returns the segment at index i.
func (c *Centipede) At(i int) (structs.Segment, bool) {
	if i < 0 || i >= len(c.segments) {
		return structs.Segment{}, false
	}
	return c.segments[i], true
}

// IndexAt 返回占据该格子的节的下标，没有则返回 -1
func (c *Centipede) IndexAt(p structs.Position) int {
	for i, s := range c.segments {
		if s.Position == p {
			return i
		}
	}
	return -1
}

// AdvanceInBoard moves the chain one cell. The head keeps its horizontal
// heading until the next cell is off the board or taken, then reverses and
// drops one row along Dy, bouncing off the top and bottom edges. Every other
// segment takes the previous cell and headings of the segment ahead of it.
func (c *Centipede) AdvanceInBoard(f Field) {
	if len(c.segments) == 0 {
		return
	}

	head := c.segments[0]
	next := head.Position.Add(head.Dx, 0)
	if !f.IsPositionAvailable(next) {
		head.Dx = -head.Dx
		if y := head.Y + head.Dy; y < 0 || y >= f.Height() {
			head.Dy = -head.Dy
		}
		next = head.Position.Add(0, head.Dy)
		if next.Y < 0 || next.Y >= f.Height() {
			// 棋盘只有一行，原地掉头
			next = head.Position
		}
	}

	// 身体从尾到头依次跟随前一节
	for i := len(c.segments) - 1; i > 0; i-- {
		kind := c.segments[i].Kind
		c.segments[i] = c.segments[i-1]
		c.segments[i].Kind = kind
	}

	head.Position = next
	c.segments[0] = head
}

// TruncateAtNode removes segment i. The receiver keeps the segments ahead of
// it, the last of which becomes the tail. The segments behind it are returned
// as a new centipede led by a fresh head, or nil when i was the last segment.
// An index outside the chain leaves it unchanged.
func (c *Centipede) TruncateAtNode(i int) *Centipede {
	if i < 0 || i >= len(c.segments) {
		return nil
	}

	var rest *Centipede
	if i+1 < len(c.segments) {
		rest = FromSegments(c.segments[i+1:])
	}

	c.segments = append([]structs.Segment(nil), c.segments[:i]...)
	c.relabel()
	return rest
}
