package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/quna/internal/auth"
	"github.com/mrlokans/quna/internal/config"
	"github.com/mrlokans/quna/internal/database"
	"github.com/mrlokans/quna/internal/database/users"
	"github.com/mrlokans/quna/internal/entities"
)

// CreateUserCommand creates an account from the command line, typically the
// first administrator of a fresh deployment.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	Role         string
	DatabasePath string
	WithToken    bool
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (defaults to $QUNA_PASSWORD)")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleMember), "Role: admin or member")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.WithToken, "token", false, "Also generate an API token for the user")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Password == "" {
		cmd.Password = os.Getenv("QUNA_PASSWORD")
	}

	switch {
	case cmd.Username == "":
		return fmt.Errorf("required flag -username not provided")
	case cmd.Email == "":
		return fmt.Errorf("required flag -email not provided")
	case cmd.Password == "":
		return fmt.Errorf("password not provided: use -password or QUNA_PASSWORD")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	cfg := config.NewConfig()

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	svc := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	user, err := svc.CreateUser(ctx, cmd.Username, cmd.Email, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created %s %q (%s)\n", user.Role, user.Username, user.ID)

	if cmd.WithToken {
		token, err := svc.GenerateToken(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		fmt.Printf("API token (shown once): %s\n", token)
	}

	return nil
}
