// Command authctl is the operator CLI for the auth service: bootstrap an
// admin account, revoke a user's sessions, purge expired refresh tokens.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/gridmesh/authcore/internal/auth"
	"github.com/gridmesh/authcore/internal/common"
	"github.com/gridmesh/authcore/internal/password"
	"github.com/gridmesh/authcore/internal/server/config"
	"github.com/gridmesh/authcore/internal/server/db"
	"github.com/gridmesh/authcore/internal/server/refreshtokens"
	"github.com/gridmesh/authcore/internal/server/users"
)

const usage = `usage: authctl <command> [args]

commands:
  create-admin <email> <username>   create an admin account (prompts for password)
  revoke-user <email>               revoke every refresh session of the user
  cleanup                           delete expired refresh-token rows
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	m, err := db.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer m.Close()

	tokens := refreshtokens.NewService(m.Conn(), m.RefreshTokens(), cfg.RefreshTokenTTL)

	switch os.Args[1] {
	case "create-admin":
		err = createAdmin(ctx, m.Users(), os.Args[2:])
	case "revoke-user":
		err = revokeUser(ctx, m.Users(), tokens, os.Args[2:])
	case "cleanup":
		err = cleanup(ctx, tokens)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}

func createAdmin(ctx context.Context, repo users.Repository, args []string) error {
	if len(args) != 2 {
		return errors.New("create-admin needs <email> and <username>")
	}
	email, username := strings.ToLower(strings.TrimSpace(args[0])), args[1]

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", common.ErrDuplicateEmail, email)
	}

	plaintext, err := promptPassword()
	if err != nil {
		return err
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return err
	}

	user, err := repo.Create(ctx, &users.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	})
	if err != nil {
		return err
	}

	fmt.Printf("admin %s created (id %s)\n", user.Email, user.ID)
	return nil
}

func promptPassword() (string, error) {
	read := func(prompt string) (string, error) {
		fmt.Print(prompt)
		if term.IsTerminal(int(os.Stdin.Fd())) {
			b, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			return string(b), err
		}
		// Piped input (scripts, tests).
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		return strings.TrimRight(line, "\r\n"), err
	}

	pw, err := read("password: ")
	if err != nil {
		return "", err
	}
	if len(pw) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}

	confirm, err := read("confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", errors.New("passwords do not match")
	}
	return pw, nil
}

func revokeUser(ctx context.Context, repo users.Repository, tokens *refreshtokens.Service, args []string) error {
	if len(args) != 1 {
		return errors.New("revoke-user needs <email>")
	}

	user, err := repo.GetByEmail(ctx, args[0])
	if err != nil {
		return err
	}

	if err := tokens.RevokeAllForUser(ctx, user.ID); err != nil {
		return err
	}

	fmt.Printf("all sessions of %s revoked\n", user.Email)
	return nil
}

func cleanup(ctx context.Context, tokens *refreshtokens.Service) error {
	start := time.Now()
	n, err := tokens.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d expired refresh tokens in %s\n", n, time.Since(start).Round(time.Millisecond))
	return nil
}
