package sketch

import (
	"log/slog"
	"time"
)

// Timer is a single frame-driven callback. Scheduling replaces any pending
// callback, so at most one is ever outstanding.
type Timer struct {
	pending   bool
	remaining time.Duration
	fn        func()
}

// Schedule arms the timer to call fn once after d of advanced time.
func (t *Timer) Schedule(d time.Duration, fn func()) {
	t.pending = true
	t.remaining = d
	t.fn = fn
}

// Cancel disarms the timer.
func (t *Timer) Cancel() {
	t.pending = false
	t.fn = nil
}

// Pending reports whether a callback is armed.
func (t *Timer) Pending() bool { return t.pending }

// Remaining returns the time left before the pending callback fires.
func (t *Timer) Remaining() time.Duration { return t.remaining }

// Advance moves time forward by dt and fires the callback when due. The timer
// is disarmed before the callback runs so the callback may schedule again.
func (t *Timer) Advance(dt time.Duration) {
	if !t.pending {
		return
	}
	t.remaining -= dt
	if t.remaining > 0 {
		return
	}
	fn := t.fn
	t.Cancel()
	fn()
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// ScheduleChange arms the next regeneration. Once the change budget is spent
// it arms a pause instead.
func (o *Orchestrator) ScheduleChange() {
	interval := ms(o.cfg.ChangeIntervalMs)
	if o.state.NumChanges < o.state.MaxChanges {
		o.timer.Schedule(interval, o.change)
		return
	}
	o.timer.Schedule(interval, o.pause)
}

func (o *Orchestrator) change() {
	o.state.NumChanges++
	o.TakeSnapshot()
	for _, l := range o.layers {
		o.RegenerateLayer(l)
	}
	o.emit(EventChange)
	o.ScheduleChange()
}

func (o *Orchestrator) pause() {
	o.state.Paused = true
	o.emit(EventPause)
	if o.cfg.Restart {
		o.timer.Schedule(ms(o.cfg.RestartDelayMs), o.Restart)
		return
	}
	o.state.Idle = true
	o.emit(EventIdle)
	slog.Info("change budget spent", "changes", o.state.NumChanges)
}

// TakeSnapshot captures the current scene into the accumulator, if any.
func (o *Orchestrator) TakeSnapshot() {
	if o.acc == nil {
		return
	}
	o.acc.Render()
	o.acc.Swap()
}

// Restart unpauses, redraws the per-run options, resets every layer, clears
// the accumulator and starts the composition's schedule from zero.
func (o *Orchestrator) Restart() {
	o.timer.Cancel()
	o.cellArmed = false
	o.state.Paused = false
	o.state.Idle = false
	o.state.drawRunOptions(o.cfg, o.rng)
	for _, l := range o.layers {
		o.ResetLayer(l)
	}
	o.state.Frame = 0
	if o.acc != nil {
		o.acc.SetBlend(o.accumulatorBlend())
		o.acc.Clear()
	}
	o.state.NumChanges = 0
	o.state.NumCells = 0
	o.emit(EventRestart)
	o.startSchedule()
}

// RequestCell captures a cell if one was already scheduled, then schedules the
// next one at a jittered delay while the cell budget lasts. The first call only
// arms the schedule; once the budget is spent further calls do nothing.
func (o *Orchestrator) RequestCell() {
	if o.state.Idle {
		return
	}
	if o.cellArmed {
		o.timer.Cancel()
		o.createCell()
	}
	if o.state.NumCells >= o.cfg.MaxCells {
		o.timer.Cancel()
		if !o.state.Idle {
			o.state.Idle = true
			o.emit(EventIdle)
		}
		return
	}
	o.timer.Schedule(ms(o.rng.Int(o.cfg.CellMinMs, o.cfg.CellMaxMs)), o.RequestCell)
	o.cellArmed = true
}

func (o *Orchestrator) createCell() {
	o.state.NumCells++
	o.TakeSnapshot()
	for _, l := range o.layers {
		o.RegenerateLayer(l)
	}
	o.emit(EventCell)
}
