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

const helpText = `Available commands:
  countries | states | cities       list live records
  add <country|state|city> [...]    create a record (prompts for missing fields)
  rename <type> <uuid> [name]       rename a record
  delete <type> <uuid>              soft-delete a record without live children
  sync                              run a sync cycle when online
  status                            show device, mode, pending changes and last sync
  reset                             wipe cloud and local data (asks for confirmation)
  exit | quit                       leave the program`

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Reset(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The prompt, including statusFn's text, goes to prompt. The loop exits on
// EOF, on "exit"/"quit", or when ctx is done.
//
// Handler errors are reported to the user and never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, prompt io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(prompt, "geo %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "countries", "states", "cities":
			cmdErr = a.List(ctx, []string{cmd})

		case "l", "list":
			cmdErr = a.List(ctx, args)

		case "add":
			cmdErr = a.Add(ctx, args)

		case "rename":
			cmdErr = a.Rename(ctx, args)

		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)

		case "sync":
			cmdErr = a.Sync(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "reset":
			cmdErr = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
