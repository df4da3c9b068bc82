// Package main implements the interactive terminal client for playing
// against the chess AI server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chessai/internal/client/api"
	"chessai/internal/client/commands"
	"chessai/internal/client/controller"
	"chessai/internal/client/display"
	"chessai/internal/client/prefs"
	"chessai/internal/client/session"
	"chessai/internal/core"
	"chessai/internal/rules"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	var (
		apiURL      = flag.String("api", "http://localhost:5000", "Game server base URL")
		prefsDir    = flag.String("prefs", "", "Preferences directory (default: user config dir)")
		themeName   = flag.String("theme", "brown", "Board theme: off, brown, green, gray")
		historyFile = flag.String("history", ".chess_history", "Readline history file")
		timeout     = flag.Duration("timeout", 30*time.Second, "Per-request timeout")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if !display.IsTerminal(os.Stdout) {
		display.Disable()
	}

	logger := newLogger(*debug)
	defer logger.Sync()

	theme, err := display.ParseTheme(*themeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}

	var store *prefs.Store
	dir := *prefsDir
	if dir == "" {
		dir, err = prefs.DefaultDir()
	}
	if err == nil {
		store, err = prefs.Open(dir)
	}
	if err != nil {
		logger.Warn("preferences unavailable", zap.Error(err))
	} else {
		defer store.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loop := controller.NewLoop(ctx, *timeout)
	go loop.Run()

	view := display.NewTerminal(os.Stdout, theme)
	client := api.New(*apiURL, logger.Named("api"))
	client.Trace = os.Stdout

	ctl := controller.New(core.DefaultConfig(), controller.Deps{
		Rules:      rules.New(),
		Transport:  client,
		Dispatcher: loop,
		Board:      view,
		Status:     view,
		Logger:     logger.Named("controller"),
	})

	// A nil *prefs.Store must not reach the interface.
	var sessionStore session.Store
	if store != nil {
		sessionStore = store
	}
	mgr := session.NewManager(ctl, client, sessionStore, view, logger.Named("session"))

	s := &clientSession{
		apiURL: *apiURL,
		client: client,
		ctl:    ctl,
		mgr:    mgr,
		view:   view,
		store:  store,
		loop:   loop,
	}

	fmt.Printf("%sChess vs AI%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, *apiURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n")

	var initErr error
	loop.Do(func() { initErr = mgr.Init() })
	if initErr != nil {
		logger.Warn("session init", zap.Error(initErr))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     *historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	registry := commands.NewRegistry(s, os.Stdout)

	for ctx.Err() == nil {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" {
			line = "exit"
		}

		if strings.HasSuffix(line, " -v") {
			s.verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.verbose = false
		}

		if err := registry.Execute(line); errors.Is(err, commands.ErrExit) {
			break
		}
	}

	cancel()
	loop.Wait()
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// clientSession ties the client components together for the commands.
type clientSession struct {
	apiURL  string
	client  *api.Client
	ctl     *controller.Controller
	mgr     *session.Manager
	view    *display.Terminal
	store   *prefs.Store
	loop    *controller.Loop
	verbose bool
}

func (s *clientSession) APIBaseURL() string                 { return s.apiURL }
func (s *clientSession) SetAPIBaseURL(url string)           { s.apiURL = url }
func (s *clientSession) Client() *api.Client                { return s.client }
func (s *clientSession) Controller() *controller.Controller { return s.ctl }
func (s *clientSession) Manager() *session.Manager          { return s.mgr }
func (s *clientSession) View() *display.Terminal            { return s.view }
func (s *clientSession) IsVerbose() bool                    { return s.verbose }
func (s *clientSession) Do(fn func()) bool                  { return s.loop.Do(fn) }

func (s *clientSession) Stats() (*prefs.Stats, error) {
	if s.store == nil {
		return nil, fmt.Errorf("preferences store is not available")
	}
	return s.store.LoadStats()
}

func buildPrompt(s *clientSession) string {
	var (
		player core.Color
		status core.Status
		state  controller.State
	)
	if !s.loop.Do(func() {
		player = s.ctl.PlayerColor()
		status = s.ctl.Status()
		state = s.ctl.State()
	}) {
		return display.Prompt("chess")
	}

	promptStr := "chess" + display.Yellow + " [" + display.Reset + display.ColorForTurn(player) + display.Yellow + "]"
	switch {
	case status.GameOver():
		promptStr += " - " + display.Magenta + "game over" + display.Reset
	case state != controller.StateIdle:
		promptStr += " - " + display.White + "waiting" + display.Reset
	default:
		promptStr += " - Turn:" + display.ColorForTurn(status.Turn)
	}
	return display.Prompt(promptStr)
}
