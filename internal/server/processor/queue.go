package processor

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"chessai/internal/core"
	"chessai/internal/rules"
	"chessai/internal/server/engine"

	"go.uber.org/zap"
)

const searchTimeout = 10 * time.Second

// level is the engine setting for one difficulty.
type level struct {
	depth int
	skill int
}

var levels = map[core.Difficulty]level{
	core.DifficultyEasy:   {depth: 1, skill: 0},
	core.DifficultyMedium: {depth: 3, skill: 10},
	core.DifficultyHard:   {depth: 5, skill: 20},
}

func levelFor(d core.Difficulty) level {
	if l, ok := levels[d]; ok {
		return l
	}
	return levels[core.DifficultyMedium]
}

// EngineTask contains computer move calculation request and response channel
type EngineTask struct {
	FEN        string
	Difficulty core.Difficulty
	Response   chan<- EngineResult
}

// EngineResult contains the outcome of an engine calculation
type EngineResult struct {
	Move     string
	Score    int
	Depth    int
	IsMate   bool
	MateIn   int
	Fallback bool // chosen at random because no engine was available
	Error    error
}

// EngineQueue manages async engine computations
type EngineQueue struct {
	tasks   chan EngineTask
	workers int
	path    string
	logger  *zap.Logger
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewEngineQueue starts workerCount workers, each owning an engine process
// started from enginePath.
func NewEngineQueue(workerCount int, enginePath string, logger *zap.Logger) *EngineQueue {
	if workerCount < 1 {
		workerCount = 2 // Default
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &EngineQueue{
		tasks:   make(chan EngineTask, 100),
		workers: workerCount,
		path:    enginePath,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	q.start()
	return q
}

func (q *EngineQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// worker processes engine tasks. Without an engine it still answers, with
// random legal moves.
func (q *EngineQueue) worker(id int) {
	defer q.wg.Done()

	eng, err := engine.New(q.path)
	if err != nil {
		q.logger.Warn("engine unavailable, worker plays random moves",
			zap.Int("worker", id), zap.String("path", q.path), zap.Error(err))
		eng = nil
	} else {
		defer eng.Close()
	}

	for {
		select {
		case task := <-q.tasks:
			result := q.processTask(eng, task)

			// Send result if receiver still listening
			select {
			case task.Response <- result:
			case <-time.After(100 * time.Millisecond):
			}

		case <-q.ctx.Done():
			return
		}
	}
}

func (q *EngineQueue) processTask(eng *engine.UCI, task EngineTask) EngineResult {
	if eng == nil {
		return randomMove(task.FEN)
	}

	lvl := levelFor(task.Difficulty)
	eng.SetSkillLevel(lvl.skill)
	eng.SetPosition(task.FEN, nil)

	ctx, cancel := context.WithTimeout(q.ctx, searchTimeout)
	defer cancel()

	search, err := eng.Search(ctx, lvl.depth)
	if err != nil {
		q.logger.Warn("engine search failed, playing random move", zap.Error(err))
		return randomMove(task.FEN)
	}

	if search.BestMove == "" || search.BestMove == "(none)" {
		return EngineResult{IsMate: search.IsMate, MateIn: search.MateIn}
	}

	return EngineResult{
		Move:   search.BestMove,
		Score:  search.Score,
		Depth:  search.Depth,
		IsMate: search.IsMate,
		MateIn: search.MateIn,
	}
}

func randomMove(fen string) EngineResult {
	r, err := rules.NewFromFEN(fen)
	if err != nil {
		return EngineResult{Error: err}
	}
	moves := r.ValidMoveCodes()
	if len(moves) == 0 {
		return EngineResult{Fallback: true}
	}
	return EngineResult{Move: moves[rand.Intn(len(moves))], Fallback: true}
}

// Submit adds a task to the queue
func (q *EngineQueue) Submit(task EngineTask) error {
	if q.ctx.Err() != nil {
		return fmt.Errorf("queue is shutting down")
	}
	select {
	case q.tasks <- task:
		return nil
	case <-q.ctx.Done():
		return fmt.Errorf("queue is shutting down")
	default:
		return fmt.Errorf("queue is full")
	}
}

// BestMove queues a search and waits for its answer. An empty move with a
// nil error means the side to move has no legal move.
func (q *EngineQueue) BestMove(ctx context.Context, fen string, d core.Difficulty) (string, error) {
	respChan := make(chan EngineResult, 1)
	if err := q.Submit(EngineTask{FEN: fen, Difficulty: d, Response: respChan}); err != nil {
		return "", err
	}

	select {
	case result := <-respChan:
		if result.Error != nil {
			return "", result.Error
		}
		q.logger.Debug("engine move",
			zap.String("move", result.Move),
			zap.Int("score", result.Score),
			zap.Int("depth", result.Depth),
			zap.Bool("fallback", result.Fallback),
		)
		return result.Move, nil
	case <-ctx.Done():
		return "", fmt.Errorf("engine timeout: %w", ctx.Err())
	}
}

// Shutdown gracefully stops the queue
func (q *EngineQueue) Shutdown(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
