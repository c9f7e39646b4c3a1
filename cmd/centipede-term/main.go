// centipede-term 在终端里本地运行一局蜈蚣
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/hoshinonyaruko/centipede-in-im/board"
	"github.com/hoshinonyaruko/centipede-in-im/config"
	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

type Game struct {
	screen     tcell.Screen
	board      *board.Board
	audioInit  bool
	sampleRate beep.SampleRate
}

func NewGame(screen tcell.Screen, b *board.Board) *Game {
	return &Game{screen: screen, board: b, sampleRate: beep.SampleRate(44100)}
}

func (g *Game) initAudio() error {
	err := speaker.Init(g.sampleRate, g.sampleRate.N(time.Second/10))
	if err == nil {
		g.audioInit = true
	}
	return err
}

// tone 播放一个短音
func (g *Game) tone(freq int, d time.Duration) {
	if !g.audioInit {
		return
	}
	sine, err := generators.SineTone(g.sampleRate, float64(freq))
	if err != nil {
		return
	}
	speaker.Play(beep.Take(g.sampleRate.N(d), sine))
}

func (g *Game) playEvents(events []board.Event) {
	for _, e := range events {
		switch e.Kind {
		case board.EventHead:
			g.tone(1320, 60*time.Millisecond)
		case board.EventSegment:
			g.tone(880, 40*time.Millisecond)
		case board.EventMushroom:
			g.tone(440, 20*time.Millisecond)
		case board.EventLife, board.EventOver:
			g.tone(110, 300*time.Millisecond)
		case board.EventWave:
			g.tone(660, 150*time.Millisecond)
		}
	}
}

// handleInput 返回 false 表示退出
func (g *Game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		shooter := g.board.Shooter()
		switch ev.Key() {
		case tcell.KeyLeft:
			g.board.MoveShooterToPoint(shooter.Add(-1, 0))
		case tcell.KeyRight:
			g.board.MoveShooterToPoint(shooter.Add(1, 0))
		case tcell.KeyUp:
			g.board.MoveShooterToPoint(shooter.Add(0, -1))
		case tcell.KeyDown:
			g.board.MoveShooterToPoint(shooter.Add(0, 1))
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				g.board.FireBullet()
			case 'h':
				g.board.MoveShooterToPoint(shooter.Add(-1, 0))
			case 'l':
				g.board.MoveShooterToPoint(shooter.Add(1, 0))
			case 'k':
				g.board.MoveShooterToPoint(shooter.Add(0, -1))
			case 'j':
				g.board.MoveShooterToPoint(shooter.Add(0, 1))
			case 'r':
				g.board.Start()
			case 'd':
				g.board.StartDemoMode()
			}
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

func (g *Game) put(p structs.Position, r rune, style tcell.Style) {
	// 每个格子占两列，画面比例更接近正方形
	g.screen.SetContent(p.X*2+1, p.Y+1, r, nil, style)
}

func (g *Game) draw() {
	g.screen.Clear()
	s := g.board.Snapshot()

	hud := fmt.Sprintf("SCORE %d  LIVES %d  LEVEL %d  %s", s.Score, s.Lives, s.Level, s.State)
	for i, r := range hud {
		g.screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Foreground(tcell.ColorWhite))
	}

	for _, m := range s.Mushrooms {
		g.put(m, '♣', tcell.StyleDefault.Foreground(tcell.ColorPurple))
	}
	for _, c := range s.Centipedes {
		for _, seg := range c {
			switch seg.Kind {
			case structs.KindHead:
				g.put(seg.Position, '@', tcell.StyleDefault.Foreground(tcell.ColorRed))
			case structs.KindTail:
				g.put(seg.Position, 'o', tcell.StyleDefault.Foreground(tcell.ColorDarkGreen))
			default:
				g.put(seg.Position, 'O', tcell.StyleDefault.Foreground(tcell.ColorGreen))
			}
		}
	}
	for _, b := range s.Bullets {
		g.put(b.Position, '|', tcell.StyleDefault.Foreground(tcell.ColorWhite))
	}
	if s.State != structs.StateOver {
		g.put(s.Shooter, 'A', tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}

	// 边框
	border := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for y := 1; y <= s.Height; y++ {
		g.screen.SetContent(0, y, '│', nil, border)
		g.screen.SetContent(s.Width*2+1, y, '│', nil, border)
	}

	g.screen.Show()
}

func (g *Game) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !g.handleInput(ev) {
				return
			}
		case now := <-ticker.C:
			g.board.Update(now)
			g.playEvents(g.board.DrainEvents())
			g.draw()
		}
	}
}

func (g *Game) cleanup() {
	if g.audioInit {
		speaker.Close()
	}
	g.screen.Fini()
}

func main() {
	configPath := flag.String("config", "", "optional config.json with board settings")
	demo := flag.Bool("demo", false, "start in demo mode")
	mute := flag.Bool("mute", false, "disable sound")
	flag.Parse()

	if *configPath != "" {
		config.LoadConfig(*configPath)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	b := board.New(config.Settings(), nil)
	if *demo {
		b.StartDemoMode()
	} else {
		b.Start()
	}

	game := NewGame(screen, b)
	if !*mute {
		if err := game.initAudio(); err != nil {
			// Non-fatal, game can run without sound
			log.Printf("Audio initialization failed: %v", err)
		}
	}
	defer game.cleanup()

	game.run()
}
