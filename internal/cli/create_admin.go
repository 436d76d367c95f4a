package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/config"
	"github.com/masonr9/CSC400Project-sub000/internal/database"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// CreateAdminCommand bootstraps an administrator account from the terminal,
// for deployments where the /setup page is not reachable.
type CreateAdminCommand struct {
	fs *flag.FlagSet

	dbPath   string
	username string
	email    string
	password string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	cmd := &CreateAdminCommand{
		fs: flag.NewFlagSet("create-admin", flag.ContinueOnError),
	}

	cmd.fs.StringVar(&cmd.dbPath, "db", config.DefaultDatabasePath, "Path to the SQLite database")
	cmd.fs.StringVar(&cmd.username, "username", "", "Admin username (required)")
	cmd.fs.StringVar(&cmd.email, "email", "", "Admin email address (required)")
	cmd.fs.StringVar(&cmd.password, "password", "", "Admin password (prompted if omitted)")

	cmd.fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: create-admin [options]\n\n")
		fmt.Fprintf(os.Stderr, "Create an administrator account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.fs.PrintDefaults()
	}

	return cmd
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	return cmd.fs.Parse(args)
}

func (cmd *CreateAdminCommand) Run() error {
	if cmd.username == "" {
		return fmt.Errorf("-username is required")
	}
	if cmd.email == "" {
		return fmt.Errorf("-email is required")
	}

	password := cmd.password
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	db, err := database.NewDatabase(cmd.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(db.DB, config.NewConfig().Auth)
	user, err := service.CreateUser(cmd.username, cmd.email, password, entities.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("Created administrator %q (id %d)\n", user.Username, user.ID)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if strings.TrimSpace(string(first)) == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return string(first), nil
}
