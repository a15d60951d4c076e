package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	DeepLink(ctx context.Context, args []string) error

	AddExpense(ctx context.Context) error
	AddTask(ctx context.Context) error
	AddEvent(ctx context.Context) error
	LogMood(ctx context.Context) error
	AddDiary(ctx context.Context) error
	AddPost(ctx context.Context) error
	AddNote(ctx context.Context) error

	Toggle(ctx context.Context, args []string) error
	Like(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	Uncomment(ctx context.Context, args []string) error
	FromFeed(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error

	List(ctx context.Context, args []string) error
	Chart(ctx context.Context, args []string) error
	Dashboard(ctx context.Context) error
	Stats(ctx context.Context) error
	Profile(ctx context.Context) error
	Avatar(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, forgot, reset, deeplink <url>, status, exit"
	helpSignedIn  = `Available commands:
  add: expense, task, event, mood, diary, post, note
  list <collection> [all|week|month|year|range <from> <to>]   (alias: filter)
  delete <collection> <id>, toggle <taskId>, fromfeed <postId>
  like <postId>, comment <postId>, uncomment <postId> <commentId>
  chart [kind [from to]], dashboard, stats, profile, avatar <path>
  sync, status, logout, exit`
)

// runREPL starts a simple read–eval–print loop for the StudentHub CLI.
//
// It reads a line from in, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Errors returned by handlers are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sh %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("error:", describe(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpSignedIn)
		} else {
			printlnFn(helpAnonymous)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "forgot":
		return a.ForgotPassword(ctx)
	case "reset":
		return a.ResetPassword(ctx)
	case "deeplink":
		return a.DeepLink(ctx, args)
	case "status":
		return a.Status(ctx)
	}

	if !a.isLoggedIn() {
		printlnFn("Please login first (type 'help' for commands)")
		return nil
	}

	switch cmd {
	case "add":
		if len(args) == 0 {
			printlnFn("Usage: add <expense|task|event|mood|diary|post|note>")
			return nil
		}
		return add(ctx, a, args[0])
	case "list", "l", "filter":
		return a.List(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "toggle":
		return a.Toggle(ctx, args)
	case "like":
		return a.Like(ctx, args)
	case "comment":
		return a.Comment(ctx, args)
	case "uncomment":
		return a.Uncomment(ctx, args)
	case "fromfeed":
		return a.FromFeed(ctx, args)
	case "chart":
		return a.Chart(ctx, args)
	case "dashboard":
		return a.Dashboard(ctx)
	case "stats":
		return a.Stats(ctx)
	case "profile":
		return a.Profile(ctx)
	case "avatar":
		return a.Avatar(ctx, args)
	case "sync":
		return a.Sync(ctx)
	case "logout":
		return a.Logout(ctx)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

func add(ctx context.Context, a execIface, what string) error {
	switch what {
	case "expense":
		return a.AddExpense(ctx)
	case "task":
		return a.AddTask(ctx)
	case "event":
		return a.AddEvent(ctx)
	case "mood":
		return a.LogMood(ctx)
	case "diary":
		return a.AddDiary(ctx)
	case "post":
		return a.AddPost(ctx)
	case "note":
		return a.AddNote(ctx)
	default:
		printlnFn("Unknown kind:", what)
		return nil
	}
}
