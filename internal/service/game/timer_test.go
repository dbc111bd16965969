package game

import (
	"testing"
	"time"
)

func tickingContext() *RoomContext {
	ctx := testContext()
	ctx.Started = true
	ctx.State.Phase = PHASE_GUESS
	ctx.State.Timers.Blue = 3
	ctx.tickGen = 1

	return ctx
}

func TestHandleTick_CountsDown(t *testing.T) {
	ctx := tickingContext()

	next := handleTick(ctx, &TickRequest{Gen: 1})

	if next != "" {
		t.Fatalf("mid-countdown tick must not switch stages, got %q", next)
	}

	if ctx.State.Timers.Blue != 2 {
		t.Fatalf("timer should drop to 2, got %d", ctx.State.Timers.Blue)
	}
}

func TestHandleTick_ExpirySwitchesTurn(t *testing.T) {
	ctx := tickingContext()
	ctx.State.Timers.Blue = 1

	next := handleTick(ctx, &TickRequest{Gen: 1})

	if next != STAGE_CLUE {
		t.Fatalf("expiring tick should switch back to the clue stage, got %q", next)
	}

	if ctx.State.CurrentTeam != TEAM_RED {
		t.Fatalf("turn should pass to red on expiry, got %q", ctx.State.CurrentTeam)
	}

	if ctx.State.Phase != PHASE_CLUE {
		t.Fatalf("phase should return to clue, got %q", ctx.State.Phase)
	}

	if ctx.State.Timers.Blue != 0 || ctx.State.Timers.Red != 0 {
		t.Fatalf("timers should be cleared on expiry, got %+v", ctx.State.Timers)
	}
}

func TestHandleTick_PausedFreezesTimer(t *testing.T) {
	ctx := tickingContext()
	ctx.Paused = true

	for i := 0; i < 5; i++ {
		if next := handleTick(ctx, &TickRequest{Gen: 1}); next != "" {
			t.Fatalf("paused tick must not switch stages, got %q", next)
		}
	}

	if ctx.State.Timers.Blue != 3 {
		t.Fatalf("paused timer must not move, got %d", ctx.State.Timers.Blue)
	}
}

func TestHandleTick_StaleGenerationIgnored(t *testing.T) {
	ctx := tickingContext()
	ctx.tickGen = 2

	if next := handleTick(ctx, &TickRequest{Gen: 1}); next != "" {
		t.Fatalf("stale tick must not switch stages, got %q", next)
	}

	if ctx.State.Timers.Blue != 3 {
		t.Fatalf("stale tick must not move the timer, got %d", ctx.State.Timers.Blue)
	}
}

func TestHandleTick_CluePhaseIsUntimed(t *testing.T) {
	ctx := tickingContext()
	ctx.State.Phase = PHASE_CLUE

	for i := 0; i < 5; i++ {
		if next := handleTick(ctx, &TickRequest{Gen: 1}); next != "" {
			t.Fatalf("clue-phase tick must not switch stages, got %q", next)
		}
	}

	if ctx.State.Timers.Blue != 3 {
		t.Fatalf("clue-phase timer must not move, got %d", ctx.State.Timers.Blue)
	}
}

func TestHandleTick_FinishedGameIgnoresTicks(t *testing.T) {
	ctx := tickingContext()
	ctx.State.Winner = TEAM_RED

	if next := handleTick(ctx, &TickRequest{Gen: 1}); next != "" {
		t.Fatalf("tick after the game ended must not switch stages, got %q", next)
	}

	if ctx.State.Timers.Blue != 3 {
		t.Fatalf("tick after the game ended must not move the timer, got %d", ctx.State.Timers.Blue)
	}
}

func TestStartTicker_BumpsGeneration(t *testing.T) {
	ctx := tickingContext()
	defer ctx.StopTicker()

	before := ctx.tickGen

	ctx.StartTicker()

	if ctx.tickGen != before+1 {
		t.Fatalf("starting the ticker should bump the generation, got %d want %d", ctx.tickGen, before+1)
	}

	// 重启后旧代次的 tick 立即失效
	if next := handleTick(ctx, &TickRequest{Gen: before}); next != "" {
		t.Fatalf("tick from the previous generation must be dropped")
	}

	if ctx.State.Timers.Blue != 3 {
		t.Fatalf("dropped tick must not move the timer, got %d", ctx.State.Timers.Blue)
	}
}

func TestTicker_DeliversTicksToChannel(t *testing.T) {
	ctx := tickingContext()
	defer ctx.StopTicker()

	ctx.StartTicker()

	select {
	case wrapper := <-ctx.TickCh:
		req := TryUnwrapTickRequest(wrapper)
		if req == nil {
			t.Fatalf("ticker should emit native tick requests")
		}

		if req.Gen != ctx.tickGen {
			t.Fatalf("tick should carry the current generation, got %d want %d", req.Gen, ctx.tickGen)
		}

	case <-time.After(3 * time.Second):
		t.Fatalf("ticker did not emit within 3 seconds")
	}
}
