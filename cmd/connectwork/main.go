package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/term"

	"connectwork/internal/api"
	"connectwork/internal/config"
	"connectwork/internal/logutil"
	"connectwork/internal/notify"
	"connectwork/internal/session"
	"connectwork/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired dependencies for the subcommands.
type app struct {
	cfg      config.Config
	client   *api.Client
	sessions *session.Manager
	center   *notify.Center
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" {
		printUsage(stdout)
		if len(args) == 0 {
			return errors.New("missing command")
		}
		return nil
	}

	cfg := config.Load()
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logutil.New(stderr, level)

	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	db, err := storage.NewDB(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer db.Close()

	deviceID, err := db.DeviceID()
	if err != nil {
		logger.Warn("device id unavailable", "err", err)
	}

	client := api.New(cfg.APIBaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithTokenSource(db),
		api.WithDeviceID(deviceID),
		api.WithLogger(logger),
		api.WithOnUnauthorized(func() {
			fmt.Fprintln(stderr, "Session expired. Please log in again.")
		}),
	)

	sessions := session.NewManager(db, client, logger)
	ctx := context.Background()
	sessions.Load(ctx)
	center := notify.NewCenter(client, sessions, logger)

	a := &app{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		center:   center,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "verify":
		return a.cmdVerify(ctx, rest)
	case "feed":
		return a.cmdFeed(ctx)
	case "post":
		return a.cmdPost(ctx, rest)
	case "like":
		return a.cmdLike(ctx, rest)
	case "comment":
		return a.cmdComment(ctx, rest)
	case "vacancies":
		return a.cmdVacancies(ctx, rest)
	case "apply":
		return a.cmdApply(ctx, rest)
	case "applications":
		return a.cmdApplications(ctx)
	case "notifications":
		return a.cmdNotifications(ctx, rest)
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: connectwork <command> [flags]

Commands:
  login          Log in with email and password
  logout         Log out and clear the local session
  whoami         Show the current session (use -refresh to sync the profile)
  register       Create an account
  verify         Confirm the emailed verification code
  feed           Show the post feed
  post           Publish a post
  like           Like a post (-undo to remove the like)
  comment        Comment on a post
  vacancies      Browse job vacancies
  apply          Apply to a vacancy
  applications   List submitted applications
  notifications  Manage notifications (list|read|read-all|delete|delete-all)

Environment:
  CONNECTWORK_API_URL, CONNECTWORK_STATE_DIR, CONNECTWORK_HTTP_TIMEOUT, CONNECTWORK_DEBUG`)
}

// requireAuth guards the authenticated commands and warns about a token the
// server is about to reject anyway.
func (a *app) requireAuth() error {
	if !a.sessions.IsAuthenticated() {
		return errors.New("not logged in; run: connectwork login")
	}
	if api.TokenExpired(a.sessions.Token(), time.Now()) {
		fmt.Fprintln(a.stderr, "Warning: stored token looks expired; log in again if requests fail.")
	}
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
