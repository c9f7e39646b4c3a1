package api

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hoshinonyaruko/centipede-in-im/board"
	"github.com/hoshinonyaruko/centipede-in-im/logger"
	"github.com/hoshinonyaruko/centipede-in-im/render"
	"github.com/hoshinonyaruko/centipede-in-im/sqlite"
	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

var errNoGame = errors.New("no game for this group, call /start first")

// Options 服务参数
type Options struct {
	SelfPath  string
	StaticDir string
	BlockSize int
	Settings  board.Settings
}

// API 按群管理游戏，每个群的请求串行执行
type API struct {
	db      *sql.DB
	sprites render.SpriteSource
	log     *logger.Logger
	opts    Options
	locks   sync.Map // groupID -> *sync.Mutex
	now     func() time.Time
}

func New(db *sql.DB, sprites render.SpriteSource, log *logger.Logger, opts Options) *API {
	if opts.StaticDir == "" {
		opts.StaticDir = "./static"
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = 20
	}
	if opts.Settings == (board.Settings{}) {
		opts.Settings = board.DefaultSettings()
	}
	if opts.Settings.UpdatePeriod <= 0 {
		opts.Settings.UpdatePeriod = board.DefaultSettings().UpdatePeriod
	}
	return &API{
		db:      db,
		sprites: sprites,
		log:     log,
		opts:    opts,
		now:     time.Now,
	}
}

// Router 注册所有路由
func (a *API) Router() *gin.Engine {
	router := gin.Default()
	// 开始或重新开始一局，demo=1 为演示模式
	router.GET("/start", a.Start())
	// 移动射手
	router.GET("/move-shooter", a.MoveShooter())
	// 开火
	router.GET("/fire", a.Fire())
	// 渲染函数 返回静态地址
	router.GET("/render-map", a.RenderMap())
	// 删除地图
	router.GET("/delete-map", a.DeleteMap())
	// 排行榜
	router.GET("/scores", a.Scores())
	// websocket 实时推送
	router.GET("/watch", a.Watch())
	router.Static("/static", a.opts.StaticDir) // 静态文件服务
	return router
}

// lock takes the group's mutex. DeleteMap drops the entry, so a waiter that
// wakes on a dropped mutex retries with the current one.
func (a *API) lock(groupID string) func() {
	for {
		v, _ := a.locks.LoadOrStore(groupID, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		mu.Lock()
		if cur, ok := a.locks.Load(groupID); ok && cur == v {
			return mu.Unlock
		}
		mu.Unlock()
	}
}

func (a *API) newBoard() *board.Board {
	return board.New(a.opts.Settings, rand.New(rand.NewSource(a.now().UnixNano())))
}

// withGame loads the group's board, advances it to the current time, runs fn
// and saves the result. A game that ends on the way is added to the scores.
func (a *API) withGame(groupID string, fn func(b *board.Board)) (*board.Board, error) {
	return a.withGameThen(groupID, fn, nil)
}

// withGameThen is withGame with then run on the saved board before the group
// lock is released.
func (a *API) withGameThen(groupID string, fn func(b *board.Board), then func(b *board.Board) error) (*board.Board, error) {
	defer a.lock(groupID)()

	game, err := sqlite.LoadGame(a.db, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNoGame
	}
	if err != nil {
		return nil, fmt.Errorf("loading game %s: %w", groupID, err)
	}

	b := a.newBoard()
	b.Restore(game.Snapshot)
	wasActive := b.Active()

	b.Update(a.now())
	if fn != nil {
		fn(b)
	}

	for _, e := range b.DrainEvents() {
		a.log.Event(groupID, string(e.Kind), e.Position.X, e.Position.Y)
	}
	if wasActive && b.State() == structs.StateOver {
		rec := structs.ScoreRecord{GroupID: groupID, Score: b.Score(), Level: b.Level(), CreatedAt: a.now()}
		if err := sqlite.RecordScore(a.db, rec); err != nil {
			a.log.Error("recording score of %s: %v", groupID, err)
		}
	}

	game.Snapshot = b.Snapshot()
	if err := sqlite.SaveGame(a.db, game); err != nil {
		return nil, fmt.Errorf("saving game %s: %w", groupID, err)
	}
	if then != nil {
		if err := then(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (a *API) fail(c *gin.Context, err error) {
	if errors.Is(err, errNoGame) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	a.log.Error("%v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func requireGroup(c *gin.Context) (string, bool) {
	groupID := c.Query("groupid")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: groupid"})
		return "", false
	}
	// groupid 会拼进文件名, 不允许路径
	if filepath.Base(groupID) != groupID || strings.ContainsAny(groupID, `/\`) || strings.Contains(groupID, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid groupid"})
		return "", false
	}
	return groupID, true
}

func (a *API) Start() gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := requireGroup(c)
		if !ok {
			return
		}
		demo := c.Query("demo") == "1" || c.Query("demo") == "true"

		unlock := a.lock(groupID)
		b := a.newBoard()
		if demo {
			b.StartDemoMode()
		} else {
			b.Start()
		}
		b.Update(a.now())
		err := sqlite.SaveGame(a.db, &structs.Game{GroupID: groupID, Snapshot: b.Snapshot()})
		unlock()
		if err != nil {
			a.fail(c, fmt.Errorf("saving new game %s: %w", groupID, err))
			return
		}

		a.log.Info("group %s started a game (demo=%v)", groupID, demo)
		c.JSON(http.StatusOK, gin.H{"state": b.State(), "width": b.Width(), "height": b.Height(), "lives": b.LivesRemaining()})
	}
}

func (a *API) MoveShooter() gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := requireGroup(c)
		if !ok {
			return
		}
		x, errX := strconv.Atoi(c.Query("x"))
		y, errY := strconv.Atoi(c.Query("y"))
		if errX != nil || errY != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x and y must be integers"})
			return
		}

		b, err := a.withGame(groupID, func(b *board.Board) {
			b.MoveShooterToPoint(structs.Position{X: x, Y: y})
		})
		if err != nil {
			a.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shooter": b.Shooter(), "lives": b.LivesRemaining(), "state": b.State()})
	}
}

func (a *API) Fire() gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := requireGroup(c)
		if !ok {
			return
		}

		b, err := a.withGame(groupID, func(b *board.Board) {
			b.FireBullet()
		})
		if err != nil {
			a.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bullets": len(b.Bullets()), "score": b.Score(), "state": b.State()})
	}
}

func (a *API) RenderMap() gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := requireGroup(c)
		if !ok {
			return
		}

		// 绘图和保存都在组锁内, 避免并发请求写同一个文件
		b, err := a.withGameThen(groupID, nil, func(b *board.Board) error {
			img := render.Board(b.Snapshot(), a.sprites, a.opts.BlockSize)
			fileName := filepath.Join(a.opts.StaticDir, groupID+".png")
			if err := render.SaveImage(img, fileName); err != nil {
				return fmt.Errorf("saving image of %s: %w", groupID, err)
			}
			return nil
		})
		if err != nil {
			a.fail(c, err)
			return
		}

		imageUrl := fmt.Sprintf("http://%s/static/%s.png", a.opts.SelfPath, groupID)
		c.JSON(http.StatusOK, gin.H{
			"image_url": imageUrl,
			"score":     b.Score(),
			"lives":     b.LivesRemaining(),
			"level":     b.Level(),
			"state":     b.State(),
		})
	}
}

func (a *API) DeleteMap() gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, ok := requireGroup(c)
		if !ok {
			return
		}

		unlock := a.lock(groupID)
		deleted, err := sqlite.DeleteGame(a.db, groupID)
		if err == nil {
			a.locks.Delete(groupID)
		}
		unlock()
		if err != nil {
			a.fail(c, fmt.Errorf("deleting game %s: %w", groupID, err))
			return
		}
		if !deleted {
			a.fail(c, errNoGame)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Map deleted successfully"})
	}
}

func (a *API) Scores() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		scores, err := sqlite.TopScores(a.db, limit)
		if err != nil {
			a.fail(c, fmt.Errorf("loading scores: %w", err))
			return
		}
		if scores == nil {
			scores = []structs.ScoreRecord{}
		}
		c.JSON(http.StatusOK, gin.H{"scores": scores})
	}
}
