package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roamsync/roamsync/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) register(ctx context.Context) {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Register(ctx, email, username, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			fmt.Println("An account with that email or username already exists.")
			return
		}
		fmt.Println("Registration failed:", err)
		return
	}

	a.user = sess.User.Email
	fmt.Println("Welcome,", sess.User.Username)
}

func (a *App) login(ctx context.Context) {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUnauthorized):
			fmt.Println("Invalid email or password.")
		case errors.Is(err, common.ErrNetwork):
			fmt.Println("Server unreachable. Login requires connectivity.")
		default:
			fmt.Println("Login failed:", err)
		}
		return
	}

	a.user = sess.User.Email
	fmt.Println("Welcome back,", sess.User.Username)
}

func (a *App) logout(ctx context.Context) {
	if err := a.auth.Logout(ctx); err != nil {
		fmt.Println("Logout failed:", err)
		return
	}
	a.user = ""
	fmt.Println("Signed out.")
}

func (a *App) whoami(ctx context.Context) {
	u, err := a.auth.Profile(ctx)
	if err != nil {
		if errors.Is(err, common.ErrAuthRequired) || errors.Is(err, common.ErrSessionExpired) {
			fmt.Println("Not signed in.")
			a.user = ""
			return
		}
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("%s <%s>\n", u.Username, u.Email)
}
