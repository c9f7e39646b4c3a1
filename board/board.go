// Package board 管理一局蜈蚣游戏的全部状态：蘑菇、射手、子弹、蜈蚣、得分和生命。
package board

import (
	"math/rand"
	"time"

	"github.com/hoshinonyaruko/centipede-in-im/centipede"
	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

// EventKind 一个周期内发生的事件类型
type EventKind string

const (
	EventMushroom EventKind = "mushroom" // 子弹打掉蘑菇
	EventSegment  EventKind = "segment"  // 子弹打中身体
	EventHead     EventKind = "head"     // 子弹打中头
	EventLife     EventKind = "life"     // 射手被蜈蚣碰到
	EventWave     EventKind = "wave"     // 蜈蚣全灭，新一波
	EventOver     EventKind = "over"     // 游戏结束
)

// Event 游戏事件
type Event struct {
	Kind     EventKind        `json:"kind"`
	Position structs.Position `json:"position"`
}

// Board is not safe for concurrent use; callers serialize access per board.
type Board struct {
	settings   Settings
	rng        *rand.Rand
	grid       []bool // 蘑菇占用表，下标 y*width+x
	score      int
	lives      int
	level      int
	state      structs.State
	shooter    structs.Position
	bullets    []structs.Bullet
	centipedes []*centipede.Centipede
	lastUpdate time.Time
	events     []Event
}

// New 创建一个空闲状态的棋盘，rng 为空时使用当前时间作为种子
func New(settings Settings, rng *rand.Rand) *Board {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := settings.normalize()
	b := &Board{
		settings: s,
		rng:      rng,
		grid:     make([]bool, s.Width*s.Height),
		state:    structs.StateIdle,
	}
	b.shooter = b.shooterStart()
	return b
}

func (b *Board) Width() int { return b.settings.Width }
func (b *Board) Height() int { return b.settings.Height }
func (b *Board) Score() int { return b.score }
func (b *Board) LivesRemaining() int { return b.lives }
func (b *Board) Level() int { return b.level }
func (b *Board) State() structs.State { return b.state }
func (b *Board) Shooter() structs.Position { return b.shooter }
func (b *Board) UpdatePeriod() time.Duration { return b.settings.UpdatePeriod }

// Active 游戏是否在进行中（包括演示模式）
func (b *Board) Active() bool {
	return b.state == structs.StatePlaying || b.state == structs.StateDemo
}

// Bullets returns a copy of the bullets in flight.
func (b *Board) Bullets() []structs.Bullet {
	return append([]structs.Bullet(nil), b.bullets...)
}

// Centipedes returns the live centipedes. The slice is a copy but the
// centipedes are shared with the board.
func (b *Board) Centipedes() []*centipede.Centipede {
	return append([]*centipede.Centipede(nil), b.centipedes...)
}

// SegmentCount 所有蜈蚣的节数之和
func (b *Board) SegmentCount() int {
	n := 0
	for _, c := range b.centipedes {
		n += c.Len()
	}
	return n
}

// Start resets the board and begins a game driven by the player.
func (b *Board) Start() {
	b.reset(structs.StatePlaying)
}

// StartDemoMode resets the board and lets the autopilot play.
func (b *Board) StartDemoMode() {
	b.reset(structs.StateDemo)
}

func (b *Board) reset(state structs.State) {
	for i := range b.grid {
		b.grid[i] = false
	}
	b.score = 0
	b.lives = b.settings.StartingLives
	b.level = 1
	b.state = state
	b.shooter = b.shooterStart()
	b.bullets = nil
	b.events = nil
	b.lastUpdate = time.Time{}
	b.placeMushrooms(b.settings.Mushrooms)
	b.centipedes = []*centipede.Centipede{b.spawnCentipede()}
}

func (b *Board) shooterStart() structs.Position {
	return structs.Position{X: b.settings.Width / 2, Y: b.settings.Height - 1}
}

// spawnCentipede 在第一行左侧放一条向右爬的蜈蚣
func (b *Board) spawnCentipede() *centipede.Centipede {
	length := b.settings.CentipedeLength
	// 出生的格子上不能留蘑菇，否则子弹先打到蘑菇，打不到这一节
	for x := 0; x < length; x++ {
		b.DestroyMushroomAt(structs.Position{X: x, Y: 0})
	}
	return centipede.New(length, structs.Position{X: length - 1, Y: 0}, 1)
}

// placeMushrooms 随机放置蘑菇，避开第一行和射手所在的最后一行
func (b *Board) placeMushrooms(count int) {
	rows := b.settings.Height - 2
	if capacity := b.settings.Width * rows; count > capacity {
		count = capacity
	}
	placed := 0
	for attempts := 0; placed < count && attempts < count*20; attempts++ {
		p := structs.Position{X: b.rng.Intn(b.settings.Width), Y: 1 + b.rng.Intn(rows)}
		if b.HasMushroom(p) {
			continue
		}
		b.PlaceMushroom(p)
		placed++
	}
}

func (b *Board) inBounds(p structs.Position) bool {
	return p.X >= 0 && p.X < b.settings.Width && p.Y >= 0 && p.Y < b.settings.Height
}

func (b *Board) index(p structs.Position) int {
	return p.Y*b.settings.Width + p.X
}

// IsPositionAvailable reports whether p is on the board and free of mushrooms.
func (b *Board) IsPositionAvailable(p structs.Position) bool {
	return b.inBounds(p) && !b.grid[b.index(p)]
}

// HasMushroom 格子上是否有蘑菇
func (b *Board) HasMushroom(p structs.Position) bool {
	return b.inBounds(p) && b.grid[b.index(p)]
}

// PlaceMushroom 放置蘑菇，越界则忽略
func (b *Board) PlaceMushroom(p structs.Position) {
	if b.inBounds(p) {
		b.grid[b.index(p)] = true
	}
}

// DestroyMushroomAt removes the mushroom at p. It is a no-op when there is none.
func (b *Board) DestroyMushroomAt(p structs.Position) {
	if b.inBounds(p) {
		b.grid[b.index(p)] = false
	}
}

// Mushrooms 返回所有蘑菇的位置，按行优先顺序
func (b *Board) Mushrooms() []structs.Position {
	var out []structs.Position
	for i, occupied := range b.grid {
		if occupied {
			out = append(out, structs.Position{X: i % b.settings.Width, Y: i / b.settings.Width})
		}
	}
	return out
}

// FireBullet spawns a bullet above the shooter. Ignored in demo mode, when
// the game is not running, or when the bullet limit is reached.
func (b *Board) FireBullet() {
	if b.state != structs.StatePlaying {
		return
	}
	b.fire()
}

func (b *Board) fire() {
	if !b.Active() || len(b.bullets) >= b.settings.MaxBullets {
		return
	}
	p := b.shooter.Add(0, -1)
	if !b.inBounds(p) {
		return
	}
	b.bullets = append(b.bullets, structs.Bullet{Position: p})
	// 紧贴射手的格子也可能有目标
	b.resolveBulletContacts()
}

// MoveShooterToPoint moves the shooter to p clamped to the board. Ignored in
// demo mode and when the game is not running.
func (b *Board) MoveShooterToPoint(p structs.Position) {
	if b.state != structs.StatePlaying {
		return
	}
	b.moveShooter(p)
}

func (b *Board) moveShooter(p structs.Position) {
	b.shooter = structs.Position{
		X: clamp(p.X, 0, b.settings.Width-1),
		Y: clamp(p.Y, 0, b.settings.Height-1),
	}
	b.resolveShooterContacts()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Update runs every whole update period elapsed since the previous call and
// returns how many ran. The first call after a start only records now.
func (b *Board) Update(now time.Time) int {
	if !b.Active() {
		return 0
	}
	if b.lastUpdate.IsZero() {
		b.lastUpdate = now
		return 0
	}

	period := b.settings.UpdatePeriod
	ticks := int(now.Sub(b.lastUpdate) / period)
	if ticks <= 0 {
		return 0
	}
	b.lastUpdate = b.lastUpdate.Add(time.Duration(ticks) * period)
	if ticks > b.settings.MaxCatchUpTicks {
		ticks = b.settings.MaxCatchUpTicks
	}

	ran := 0
	for ; ran < ticks && b.Active(); ran++ {
		b.Step()
	}
	return ran
}

// Step advances the game by exactly one update period.
func (b *Board) Step() {
	if !b.Active() {
		return
	}
	if b.state == structs.StateDemo {
		b.autopilot()
	}

	b.moveBullets()

	for _, c := range b.centipedes {
		c.AdvanceInBoard(b)
		// 蜈蚣换行时会压坏脚下的蘑菇
		if head, ok := c.Head(); ok {
			b.DestroyMushroomAt(head.Position)
		}
	}

	b.resolveCollisions()
	if !b.Active() {
		return
	}

	if len(b.centipedes) == 0 {
		b.nextWave()
	}
}

// moveBullets 逐格移动子弹，每移动一格都检查碰撞，避免穿过目标
func (b *Board) moveBullets() {
	for step := 0; step < b.settings.BulletStep && len(b.bullets) > 0; step++ {
		kept := b.bullets[:0]
		for _, bullet := range b.bullets {
			bullet.Y--
			if bullet.Y >= 0 {
				kept = append(kept, bullet)
			}
		}
		b.bullets = kept
		b.resolveBulletContacts()
	}
}

func (b *Board) resolveCollisions() {
	b.resolveBulletContacts()
	b.resolveShooterContacts()
}

func (b *Board) resolveBulletContacts() {
	kept := b.bullets[:0]
	for _, bullet := range b.bullets {
		if b.bulletHit(bullet.Position) {
			continue
		}
		kept = append(kept, bullet)
	}
	b.bullets = kept
}

// bulletHit 处理子弹在 p 处的碰撞，返回子弹是否被消耗
func (b *Board) bulletHit(p structs.Position) bool {
	if b.HasMushroom(p) {
		b.DestroyMushroomAt(p)
		b.score += b.settings.MushroomPoints
		b.events = append(b.events, Event{Kind: EventMushroom, Position: p})
		return true
	}
	for i, c := range b.centipedes {
		if idx := c.IndexAt(p); idx >= 0 {
			b.hitSegment(i, idx)
			return true
		}
	}
	return false
}

// hitSegment 截断蜈蚣，打中的格子长出蘑菇
func (b *Board) hitSegment(ci, idx int) {
	c := b.centipedes[ci]
	seg, _ := c.At(idx)

	kind, points := EventSegment, b.settings.SegmentPoints
	if seg.Kind == structs.KindHead {
		kind, points = EventHead, b.settings.HeadPoints
	}
	b.score += points

	if rest := c.TruncateAtNode(idx); rest != nil {
		b.centipedes = append(b.centipedes, rest)
	}
	b.pruneCentipedes()
	b.PlaceMushroom(seg.Position)
	b.events = append(b.events, Event{Kind: kind, Position: seg.Position})
}

func (b *Board) pruneCentipedes() {
	kept := b.centipedes[:0]
	for _, c := range b.centipedes {
		if !c.Empty() {
			kept = append(kept, c)
		}
	}
	b.centipedes = kept
}

func (b *Board) resolveShooterContacts() {
	if !b.Active() {
		return
	}
	for _, c := range b.centipedes {
		if c.IndexAt(b.shooter) >= 0 {
			b.loseLife()
			return
		}
	}
}

// loseLife 扣一条命；命用完则结束，否则射手归位并重新放出本波蜈蚣
func (b *Board) loseLife() {
	hit := b.shooter
	if b.lives > 0 {
		b.lives--
	}
	b.events = append(b.events, Event{Kind: EventLife, Position: hit})
	b.bullets = nil
	if b.lives == 0 {
		b.state = structs.StateOver
		b.events = append(b.events, Event{Kind: EventOver, Position: hit})
		return
	}
	b.shooter = b.shooterStart()
	b.centipedes = []*centipede.Centipede{b.spawnCentipede()}
}

func (b *Board) nextWave() {
	b.level++
	b.score += b.settings.WaveBonus
	b.centipedes = []*centipede.Centipede{b.spawnCentipede()}
	b.events = append(b.events, Event{Kind: EventWave, Position: structs.Position{}})
}

// DrainEvents returns and clears the events recorded since the last call.
func (b *Board) DrainEvents() []Event {
	events := b.events
	b.events = nil
	return events
}
