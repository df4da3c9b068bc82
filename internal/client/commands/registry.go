package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"chessai/internal/client/api"
	"chessai/internal/client/controller"
	"chessai/internal/client/display"
	"chessai/internal/client/prefs"
	"chessai/internal/client/session"
	"chessai/internal/core"
)

// ErrExit is returned by Execute when the user asks to leave.
var ErrExit = errors.New("exit")

// Session is what commands need from the running client.
type Session interface {
	APIBaseURL() string
	SetAPIBaseURL(string)
	Client() *api.Client
	Controller() *controller.Controller
	Manager() *session.Manager
	View() *display.Terminal
	Stats() (*prefs.Stats, error)
	IsVerbose() bool
	// Do runs fn on the controller goroutine and waits for it.
	Do(fn func()) bool
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(Session, []string) error
}

type Registry struct {
	session  Session
	out      io.Writer
	commands map[string]*Command
}

// NewRegistry registers all commands. Output goes to out.
func NewRegistry(s Session, out io.Writer) *Registry {
	r := &Registry{
		session:  s,
		out:      out,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerSettingsCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler: func(Session, []string) error {
			fmt.Fprintf(r.out, "%sGoodbye!%s\n", display.Cyan, display.Reset)
			return ErrExit
		},
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. A bare square is a click and a bare move
// code is a move. Handler errors are printed; only ErrExit is returned.
func (r *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists && len(args) == 0 {
		if core.Square(cmdName).Valid() {
			cmd, args = r.commands["click"], parts
		} else if _, err := core.ParseMoveCode(cmdName); err == nil {
			cmd, args = r.commands["move"], parts
		}
	}
	if cmd == nil {
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		fmt.Fprintf(r.out, "Type 'help' for available commands\n")
		return nil
	}

	r.session.Client().SetVerbose(r.session.IsVerbose())

	if err := cmd.Handler(r.session, args); err != nil {
		if errors.Is(err, ErrExit) {
			return err
		}
		fmt.Fprintf(r.out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
	return nil
}

func (r *Registry) helpHandler(s Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(r.out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(r.out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(r.out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Fprintf(r.out, "\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)

	printGroup := func(title string, names []string) {
		fmt.Fprintf(r.out, "%s%s:%s\n", display.Yellow, title, display.Reset)
		for _, name := range names {
			cmd, exists := r.commands[name]
			if !exists {
				continue
			}
			shortPart := "    "
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
			}
			fmt.Fprintf(r.out, "  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	printGroup("Game Commands", []string{"click", "drag", "move", "new", "takeback", "show", "flip", "history", "status"})
	fmt.Fprintln(r.out)
	printGroup("Settings", []string{"color", "difficulty", "theme", "stats"})
	fmt.Fprintln(r.out)
	printGroup("Utility Commands", []string{"health", "state", "url", "clear", "help", "exit"})

	fmt.Fprintf(r.out, "\nA bare square (e2) clicks it, a bare move (e2e4) plays it\n")
	fmt.Fprintf(r.out, "Type 'help <command>' for detailed usage\n")
	fmt.Fprintf(r.out, "Add '-v' to any command for verbose output\n")
	return nil
}
