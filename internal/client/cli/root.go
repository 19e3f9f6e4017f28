package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.user == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.user)
}

// Root runs the read-eval-print loop until EOF or an exit command. Command
// handlers report their own errors; the loop itself never gives up on a
// failed command.
func (a *App) Root(ctx context.Context) {
	fmt.Println("roamsync CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("roam %s> ", a.getStatus())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: list, add, edit, delete, sync, status, whoami, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, status, exit")
			}
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.logout(ctx)
		case "whoami":
			a.whoami(ctx)
		case "list", "l":
			a.list(ctx)
		case "add":
			a.add(ctx)
		case "edit":
			a.edit(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "sync":
			a.syncNow(ctx)
		case "status":
			a.status(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
