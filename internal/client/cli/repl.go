package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophdrive/internal/client/api"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. Every command
// receives the words that followed it on the line.
type execIface interface {
	Help(ctx context.Context, args []string) error
	Pwd(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Cd(ctx context.Context, args []string) error
	Mkdir(ctx context.Context, args []string) error
	Put(ctx context.Context, args []string) error
	PutTree(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	Copy(ctx context.Context, args []string) error
	URL(ctx context.Context, args []string) error
	Find(ctx context.Context, args []string) error
	Activity(ctx context.Context, args []string) error
	Select(ctx context.Context, args []string) error
	SelectAll(ctx context.Context, args []string) error
	Unselect(ctx context.Context, args []string) error
	ShowSession(ctx context.Context, args []string) error
	CopySelection(ctx context.Context, args []string) error
	CutSelection(ctx context.Context, args []string) error
	ClearClipboard(ctx context.Context, args []string) error
	Paste(ctx context.Context, args []string) error
	Retry(ctx context.Context, args []string) error
	Token(ctx context.Context, args []string) error
}

// errUsage makes the REPL print the command's usage line.
var errUsage = errors.New("usage")

var usage = map[string]string{
	"cd":       "cd <path>",
	"mkdir":    "mkdir <name>",
	"put":      "put [-d] <local file> [name]",
	"puttree":  "puttree <local dir>",
	"rename":   "rename <name> <new name>",
	"rm":       "rm <name>...",
	"mv":       "mv <destination> <name>...",
	"cp":       "cp <destination> <name>...",
	"url":      "url <file name>",
	"find":     "find [term] [mime=type] [by=uploader] [from=date] [to=date] [min=bytes] [max=bytes]",
	"activity": "activity [limit]",
	"select":   "select <name>...",
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It stops on EOF or on "exit" / "quit". Command errors are reported and the
// loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("drive %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var run func(context.Context, []string) error
		switch cmd {
		case "help":
			run = a.Help
		case "pwd":
			run = a.Pwd
		case "l", "ls":
			run = a.List
		case "cd":
			run = a.Cd
		case "mkdir":
			run = a.Mkdir
		case "put":
			run = a.Put
		case "puttree":
			run = a.PutTree
		case "rename":
			run = a.Rename
		case "rm":
			run = a.Remove
		case "mv":
			run = a.Move
		case "cp":
			run = a.Copy
		case "url":
			run = a.URL
		case "find":
			run = a.Find
		case "activity":
			run = a.Activity
		case "select":
			run = a.Select
		case "selall":
			run = a.SelectAll
		case "unselect":
			run = a.Unselect
		case "sel":
			run = a.ShowSession
		case "copy":
			run = a.CopySelection
		case "cut":
			run = a.CutSelection
		case "clear":
			run = a.ClearClipboard
		case "paste":
			run = a.Paste
		case "retry":
			run = a.Retry
		case "token":
			run = a.Token
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		report(cmd, run(ctx, args))
	}
}

func report(cmd string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		printlnFn("Usage:", usage[cmd])
	case api.IsUnauthorized(err):
		printlnFn("Error:", err, "(use 'token' to enter a new one)")
	default:
		printlnFn("Error:", err)
	}
}
