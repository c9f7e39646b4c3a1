package board

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.Width = 10
	s.Height = 10
	s.CentipedeLength = 5
	s.Mushrooms = 0
	s.BulletStep = 10
	s.UpdatePeriod = 100 * time.Millisecond
	return s
}

func newTestBoard(s Settings) *Board {
	return New(s, rand.New(rand.NewSource(1)))
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestStart(t *testing.T) {
	s := testSettings()
	s.Mushrooms = 15
	b := newTestBoard(s)
	assert.Equal(t, structs.StateIdle, b.State())

	b.Start()

	assert.Equal(t, structs.StatePlaying, b.State())
	assert.Equal(t, 0, b.Score())
	assert.Equal(t, s.StartingLives, b.LivesRemaining())
	assert.Equal(t, 1, b.Level())
	assert.Equal(t, structs.Position{X: 5, Y: 9}, b.Shooter())
	require.Len(t, b.Centipedes(), 1)
	assert.Equal(t, s.CentipedeLength, b.SegmentCount())
	assert.Len(t, b.Mushrooms(), 15)
	for _, m := range b.Mushrooms() {
		assert.True(t, m.Y > 0 && m.Y < s.Height-1, "mushroom on a reserved row: %v", m)
	}
}

func TestStartResetsState(t *testing.T) {
	b := newTestBoard(testSettings())
	b.Start()
	b.MoveShooterToPoint(structs.Position{X: 2, Y: 9})
	b.FireBullet()
	b.Step()
	require.Greater(t, b.Score(), 0)

	b.Start()

	assert.Equal(t, 0, b.Score())
	assert.Empty(t, b.Bullets())
	assert.Equal(t, 5, b.SegmentCount())
	assert.Empty(t, b.Mushrooms())
}

func TestPositionAvailability(t *testing.T) {
	b := newTestBoard(testSettings())
	b.Start()
	p := structs.Position{X: 3, Y: 4}

	assert.True(t, b.IsPositionAvailable(p))
	b.PlaceMushroom(p)
	assert.False(t, b.IsPositionAvailable(p))

	b.DestroyMushroomAt(p)
	assert.True(t, b.IsPositionAvailable(p))
	b.DestroyMushroomAt(p)
	assert.True(t, b.IsPositionAvailable(p))

	assert.False(t, b.IsPositionAvailable(structs.Position{X: -1, Y: 0}))
	assert.False(t, b.IsPositionAvailable(structs.Position{X: 0, Y: 10}))
	b.DestroyMushroomAt(structs.Position{X: 50, Y: 50})
}

func TestMoveShooterClamps(t *testing.T) {
	b := newTestBoard(testSettings())
	b.Start()

	b.MoveShooterToPoint(structs.Position{X: -4, Y: 40})
	assert.Equal(t, structs.Position{X: 0, Y: 9}, b.Shooter())

	b.MoveShooterToPoint(structs.Position{X: 99, Y: 8})
	assert.Equal(t, structs.Position{X: 9, Y: 8}, b.Shooter())
}

func TestFireBulletLimit(t *testing.T) {
	s := testSettings()
	s.BulletStep = 1
	b := newTestBoard(s)
	b.Start()

	b.FireBullet()
	b.FireBullet()

	require.Len(t, b.Bullets(), 1)
	assert.Equal(t, structs.Position{X: 5, Y: 8}, b.Bullets()[0].Position)

	b.Step()
	assert.Equal(t, structs.Position{X: 5, Y: 7}, b.Bullets()[0].Position)
}

func TestFireIgnoredWhenIdle(t *testing.T) {
	b := newTestBoard(testSettings())
	b.FireBullet()
	b.MoveShooterToPoint(structs.Position{X: 0, Y: 0})

	assert.Empty(t, b.Bullets())
	assert.Equal(t, structs.Position{X: 5, Y: 9}, b.Shooter())
}

func TestBulletDestroysMushroom(t *testing.T) {
	s := testSettings()
	b := newTestBoard(s)
	b.Start()
	m := structs.Position{X: 5, Y: 4}
	b.PlaceMushroom(m)

	b.FireBullet()
	b.Step()

	assert.False(t, b.HasMushroom(m))
	assert.Equal(t, s.MushroomPoints, b.Score())
	assert.Empty(t, b.Bullets())
	assert.True(t, hasEvent(b.DrainEvents(), EventMushroom))
	assert.Empty(t, b.DrainEvents())
}

func TestFireUntilHeadIsHit(t *testing.T) {
	s := testSettings()
	b := newTestBoard(s)
	b.Start()
	b.MoveShooterToPoint(structs.Position{X: 7, Y: 9})

	for i := 0; i < 50 && b.Score() == 0; i++ {
		b.FireBullet()
		b.Step()
	}

	assert.Equal(t, s.HeadPoints, b.Score())
	assert.Equal(t, s.CentipedeLength-1, b.SegmentCount())
	require.Len(t, b.Centipedes(), 1)
	assert.True(t, b.HasMushroom(structs.Position{X: 7, Y: 0}))
	assert.True(t, hasEvent(b.DrainEvents(), EventHead))

	head, ok := b.Centipedes()[0].Head()
	require.True(t, ok)
	assert.Equal(t, structs.KindHead, head.Kind)
}

func TestHitInTheMiddleSplits(t *testing.T) {
	s := testSettings()
	b := newTestBoard(s)
	b.Start()
	b.MoveShooterToPoint(structs.Position{X: 2, Y: 9})

	b.FireBullet()
	b.Step()

	assert.Equal(t, s.SegmentPoints, b.Score())
	assert.Equal(t, s.CentipedeLength-1, b.SegmentCount())
	cs := b.Centipedes()
	require.Len(t, cs, 2)
	assert.Equal(t, 2, cs[0].Len())
	assert.Equal(t, 2, cs[1].Len())
	assert.True(t, b.HasMushroom(structs.Position{X: 2, Y: 0}))
}

func TestShooterContactCostsALife(t *testing.T) {
	s := testSettings()
	b := newTestBoard(s)
	b.Restore(structs.Snapshot{
		Width:   10,
		Height:  10,
		Lives:   3,
		Level:   1,
		State:   structs.StatePlaying,
		Shooter: structs.Position{X: 5, Y: 9},
		Centipedes: [][]structs.Segment{{
			{Position: structs.Position{X: 4, Y: 9}, Kind: structs.KindHead, Dx: 1, Dy: 1},
		}},
	})

	b.Step()

	assert.Equal(t, 2, b.LivesRemaining())
	assert.Equal(t, structs.StatePlaying, b.State())
	assert.Equal(t, structs.Position{X: 5, Y: 9}, b.Shooter())
	assert.Equal(t, s.CentipedeLength, b.SegmentCount())
	assert.True(t, hasEvent(b.DrainEvents(), EventLife))
}

func TestLastLifeEndsTheGame(t *testing.T) {
	b := newTestBoard(testSettings())
	b.Restore(structs.Snapshot{
		Width:   10,
		Height:  10,
		Score:   42,
		Lives:   1,
		Level:   1,
		State:   structs.StatePlaying,
		Shooter: structs.Position{X: 5, Y: 9},
		Centipedes: [][]structs.Segment{{
			{Position: structs.Position{X: 4, Y: 9}, Kind: structs.KindHead, Dx: 1, Dy: 1},
		}},
	})

	b.Step()

	assert.Equal(t, 0, b.LivesRemaining())
	assert.Equal(t, structs.StateOver, b.State())
	assert.Equal(t, 42, b.Score())
	assert.True(t, hasEvent(b.DrainEvents(), EventOver))

	b.Step()
	assert.Equal(t, 0, b.Update(time.Now()))
	assert.Equal(t, 0, b.LivesRemaining())
}

func TestClearingTheWave(t *testing.T) {
	s := testSettings()
	b := newTestBoard(s)
	b.Restore(structs.Snapshot{
		Width:   10,
		Height:  10,
		Lives:   3,
		Level:   1,
		State:   structs.StatePlaying,
		Shooter: structs.Position{X: 5, Y: 9},
		Centipedes: [][]structs.Segment{{
			{Position: structs.Position{X: 5, Y: 5}, Kind: structs.KindHead, Dx: 1, Dy: 1},
		}},
	})

	b.FireBullet()
	b.Step()

	assert.Equal(t, 2, b.Level())
	assert.Equal(t, s.HeadPoints+s.WaveBonus, b.Score())
	assert.Equal(t, s.CentipedeLength, b.SegmentCount())
	assert.True(t, hasEvent(b.DrainEvents(), EventWave))
}

func TestRespawnClearsTopRowMushrooms(t *testing.T) {
	s := testSettings()
	b := newTestBoard(s)
	b.Restore(structs.Snapshot{
		Width:     10,
		Height:    10,
		Lives:     3,
		Level:     1,
		State:     structs.StatePlaying,
		Mushrooms: []structs.Position{{X: 2, Y: 0}, {X: 7, Y: 0}},
		Shooter:   structs.Position{X: 5, Y: 9},
		Centipedes: [][]structs.Segment{{
			{Position: structs.Position{X: 5, Y: 5}, Kind: structs.KindHead, Dx: 1, Dy: 1},
		}},
	})

	b.FireBullet()
	b.Step()
	require.Equal(t, 2, b.Level())

	assert.False(t, b.HasMushroom(structs.Position{X: 2, Y: 0}))
	assert.True(t, b.HasMushroom(structs.Position{X: 7, Y: 0}))
	for _, c := range b.Snapshot().Centipedes {
		for _, seg := range c {
			assert.False(t, b.HasMushroom(seg.Position), "segment at %v", seg.Position)
		}
	}

	// 生命减少后重新出生同样如此
	b.Restore(structs.Snapshot{
		Width:     10,
		Height:    10,
		Lives:     3,
		Level:     2,
		State:     structs.StatePlaying,
		Mushrooms: []structs.Position{{X: 1, Y: 0}},
		Shooter:   structs.Position{X: 5, Y: 9},
		Centipedes: [][]structs.Segment{{
			{Position: structs.Position{X: 4, Y: 9}, Kind: structs.KindHead, Dx: 1, Dy: 1},
		}},
	})
	b.Step()
	require.Equal(t, 2, b.LivesRemaining())
	assert.False(t, b.HasMushroom(structs.Position{X: 1, Y: 0}))
}

func TestNegativePointsNeverLowerScore(t *testing.T) {
	s := testSettings()
	s.MushroomPoints = -5
	s.SegmentPoints = -5
	s.HeadPoints = -5
	s.WaveBonus = -5
	b := newTestBoard(s)
	b.Start()

	b.PlaceMushroom(structs.Position{X: 5, Y: 4})
	b.FireBullet()
	b.Step()
	require.False(t, b.HasMushroom(structs.Position{X: 5, Y: 4}))
	assert.Equal(t, 0, b.Score())

	b.Restore(structs.Snapshot{
		Width:   10,
		Height:  10,
		Score:   7,
		Lives:   3,
		Level:   1,
		State:   structs.StatePlaying,
		Shooter: structs.Position{X: 5, Y: 9},
		Centipedes: [][]structs.Segment{{
			{Position: structs.Position{X: 5, Y: 5}, Kind: structs.KindHead, Dx: 1, Dy: 1},
		}},
	})
	b.FireBullet()
	b.Step()
	require.Equal(t, 2, b.Level())
	assert.Equal(t, 7, b.Score())
}

func TestUpdateCadence(t *testing.T) {
	s := testSettings()
	s.MaxCatchUpTicks = 5
	b := newTestBoard(s)
	b.Start()
	t0 := time.Unix(1000, 0)
	assert.Equal(t, 100*time.Millisecond, b.UpdatePeriod())

	assert.Equal(t, 0, b.Update(t0))
	assert.Equal(t, 2, b.Update(t0.Add(250*time.Millisecond)))
	assert.Equal(t, 0, b.Update(t0.Add(299*time.Millisecond)))
	assert.Equal(t, 1, b.Update(t0.Add(300*time.Millisecond)))
	assert.Equal(t, 5, b.Update(t0.Add(10*time.Second)))
	assert.Equal(t, 0, b.Update(t0.Add(10*time.Second)))
}

func TestScoreNeverDecreases(t *testing.T) {
	s := testSettings()
	s.Mushrooms = 20
	s.BulletStep = 2
	b := newTestBoard(s)
	b.StartDemoMode()

	last := 0
	for i := 0; i < 300 && b.Active(); i++ {
		b.Step()
		assert.GreaterOrEqual(t, b.Score(), last)
		assert.GreaterOrEqual(t, b.LivesRemaining(), 0)
		last = b.Score()
	}
	assert.Greater(t, b.Score(), 0)
}

func TestDemoIgnoresPlayerInput(t *testing.T) {
	b := newTestBoard(testSettings())
	b.StartDemoMode()

	b.FireBullet()
	b.MoveShooterToPoint(structs.Position{X: 0, Y: 0})

	assert.Empty(t, b.Bullets())
	assert.Equal(t, structs.Position{X: 5, Y: 9}, b.Shooter())
	assert.Equal(t, structs.StateDemo, b.State())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := testSettings()
	s.Mushrooms = 12
	s.BulletStep = 1
	b := newTestBoard(s)
	b.Start()
	b.Update(time.Unix(1000, 0))
	b.FireBullet()
	b.Step()
	b.Step()

	restored := newTestBoard(DefaultSettings())
	restored.Restore(b.Snapshot())

	assert.Equal(t, b.Snapshot(), restored.Snapshot())
	assert.Equal(t, 10, restored.Width())
}
