package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	hasUsableRole() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Menu(ctx context.Context) error
	Open(ctx context.Context, path string) error
	Refresh(ctx context.Context) error
	Verify(ctx context.Context) error
	Status(ctx context.Context) error
}

const noRoleMessage = "Your account has no usable role. Contact an administrator."

// noRoleCommands are the only commands left to a session without a usable role.
var noRoleCommands = map[string]bool{
	"help": true, "status": true, "logout": true, "exit": true, "quit": true,
}

// runREPL starts a simple read–eval–print loop for the gatekeeper console.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           show available commands
//	  - login          authenticate
//	  - open <path>    navigate; asks for credentials first
//	  - status         show connectivity and session state
//	  - exit | quit    leave the program
//
//	Logged in without a usable role (none, or one the console does not know):
//	  - help           show available commands
//	  - status         show connectivity and session state
//	  - logout         log out
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - help           show available commands
//	  - whoami         show the identity and its permissions
//	  - menu           list the sections this identity may open
//	  - open <path>    navigate to a section
//	  - refresh        renew the access token
//	  - verify         check the session against the server
//	  - status         show connectivity and session state
//	  - logout         log out
//	  - exit | quit    leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		if a.isLoggedIn() && !a.hasUsableRole() && !noRoleCommands[cmd] {
			printlnFn(noRoleMessage)
			continue
		}

		switch cmd {
		case "help":
			switch {
			case a.isLoggedIn() && !a.hasUsableRole():
				printlnFn("Available commands: status, logout, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: whoami, menu, open <path>, refresh, verify, status, logout, exit")
			default:
				printlnFn("Available commands: login, open <path>, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "menu":
			_ = a.Menu(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "refresh":
			_ = a.Refresh(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
