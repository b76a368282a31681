package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/bitbybit-prep/bitbybit-cli/internal/api"
	"github.com/bitbybit-prep/bitbybit-cli/internal/auth"
	"github.com/bitbybit-prep/bitbybit-cli/internal/config"
	"github.com/bitbybit-prep/bitbybit-cli/internal/logger"
)

// app bundles what every subcommand needs.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *auth.TokenStore
	client *api.Client
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	store := auth.NewTokenStore(cfg.TokenPath)
	a := &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		client: api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, store, log),
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "login":
		err = a.cmdLogin()
	case "logout":
		err = a.cmdLogout()
	case "register":
		err = a.cmdRegister()
	case "reset-password":
		err = a.cmdResetPassword(os.Args[2:])
	case "whoami":
		err = a.cmdWhoami()
	case "profile":
		err = a.cmdProfile(os.Args[2:])
	case "courses":
		err = a.cmdCourses(os.Args[2:])
	case "notes":
		err = a.cmdNotes(os.Args[2:])
	case "history":
		err = a.cmdHistory()
	case "exam":
		err = a.cmdExam(os.Args[2:])
	case "admin":
		err = a.cmdAdmin(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		// Expired or missing sessions get a friendlier hint than a raw error.
		if isAuthError(err) {
			fmt.Fprintln(os.Stderr, "You are not logged in (or your session expired). Run: bitbybit login")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Print(`Bit by Bit: exam preparation from the terminal

Usage: bitbybit <command> [args]

Account:
  login                 Log in and store the session token
  logout                Forget the stored session
  register              Create a new student account
  reset-password [--confirm]
                        Request or complete a password reset
  whoami                Show the logged-in account
  profile [--edit]      Show or edit profile fields

Study:
  courses [id]          Browse the course catalog
  notes <topic|chapter> <id>
                        Read study notes
  history               Show past exam attempts
  exam <exam_id>        Take an exam (timed, interactive)

Admin:
  admin generate        Draft questions from a catalog source
  admin save-bulk       Draft and persist questions into an exam
  admin upload-questions [--exam-id N | --new-title T] <file.csv>
  admin upload-notes <file.csv>
  admin edit-notes <chapter_id> <notes.md>
`)
}
