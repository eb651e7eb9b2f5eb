package battle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
)

func TestIdleTimer_FiresOnce(t *testing.T) {
	var called atomic.Int32
	battle.NewIdleTimer(10*time.Millisecond, func() { called.Add(1) })
	assert.Eventually(t, func() bool { return called.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), called.Load())
}

func TestIdleTimer_StopPreventsCallback(t *testing.T) {
	var called atomic.Int32
	it := battle.NewIdleTimer(40*time.Millisecond, func() { called.Add(1) })
	it.Stop()
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, called.Load())
}

func TestIdleTimer_StopIdempotent(t *testing.T) {
	it := battle.NewIdleTimer(50*time.Millisecond, func() {})
	assert.NotPanics(t, func() {
		it.Stop()
		it.Stop()
		it.Stop()
	})
}

func TestAfterFunc_ReturnsIdleTimer(t *testing.T) {
	tm := battle.AfterFunc(time.Hour, func() {})
	defer tm.Stop()
	assert.IsType(t, &battle.IdleTimer{}, tm)
}
