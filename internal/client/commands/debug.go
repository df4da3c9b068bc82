package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"chessai/internal/client/display"
)

const debugTimeout = 10 * time.Second

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     r.healthHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show the server's game as JSON",
		Usage:       "state",
		Handler:     r.serverStateHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     r.urlHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func (r *Registry) healthHandler(s Session, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), debugTimeout)
	defer cancel()

	resp, err := s.Client().Health(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%sServer Health:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(r.out, "  Status:  %s\n", resp.Status)
	t := time.Unix(resp.Time, 0)
	fmt.Fprintf(r.out, "  Time:    %s\n", t.Format("2006-01-02 15:04:05"))
	if resp.Storage != "" {
		fmt.Fprintf(r.out, "  Storage: %s\n", resp.Storage)
	}
	return nil
}

func (r *Registry) serverStateHandler(s Session, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), debugTimeout)
	defer cancel()

	resp, err := s.Client().State(ctx)
	if err != nil {
		return err
	}
	display.PrettyPrintJSON(r.out, resp)

	var local string
	s.Do(func() { local = s.Controller().FEN() })
	if local != "" && local != resp.FEN {
		fmt.Fprintf(r.out, "%sLocal position differs: %s%s\n", display.Yellow, local, display.Reset)
	}
	return nil
}

func (r *Registry) urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current API URL: %s\n", s.APIBaseURL())
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	s.SetAPIBaseURL(url)
	s.Client().SetBaseURL(url)

	fmt.Fprintf(r.out, "%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)
	return nil
}

func clearHandler(s Session, args []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
