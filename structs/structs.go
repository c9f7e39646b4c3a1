package structs

import "time"

// Position 描述棋盘上的一个格子坐标，原点在左上角，Y 向下增长。
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add 返回偏移后的坐标
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Kind 蜈蚣节的类型
type Kind string

const (
	KindHead Kind = "head"
	KindBody Kind = "body"
	KindTail Kind = "tail"
)

// Segment 描述蜈蚣的一节。
type Segment struct {
	Position
	Kind Kind `json:"kind"`
	Dx   int  `json:"dx"` // 水平方向 +1 向右, -1 向左
	Dy   int  `json:"dy"` // 换行方向 +1 向下, -1 向上
}

// Bullet 飞行中的子弹
type Bullet struct {
	Position
}

// State 游戏状态
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StateDemo    State = "demo"
	StateOver    State = "over"
)

// Snapshot 描述整个棋盘的状态，用于持久化、推送和绘图。
type Snapshot struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Mushrooms  []Position  `json:"mushrooms"`
	Score      int         `json:"score"`
	Lives      int         `json:"lives"`
	Level      int         `json:"level"`
	State      State       `json:"state"`
	Shooter    Position    `json:"shooter"`
	Bullets    []Bullet    `json:"bullets"`
	Centipedes [][]Segment `json:"centipedes"`
	LastUpdate time.Time   `json:"last_update"`
}

// Game 描述一个群的游戏实例
type Game struct {
	GroupID  string   `json:"group_id"`
	Snapshot Snapshot `json:"snapshot"`
}

// ScoreRecord 一局结束后的得分记录
type ScoreRecord struct {
	GroupID   string    `json:"group_id"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}
