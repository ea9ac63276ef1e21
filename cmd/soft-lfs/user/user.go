package user

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/soft-lfs/cmd"
	"github.com/charmbracelet/soft-lfs/pkg/db"
	"github.com/charmbracelet/soft-lfs/pkg/db/migrate"
	"github.com/spf13/cobra"
)

// Command returns the user command. It manages the users of the database
// identity provider.
func Command() *cobra.Command {
	userCmd := &cobra.Command{
		Use:                "user",
		Aliases:            []string{"users"},
		Short:              "Manage database users",
		PersistentPreRunE:  initUserContext,
		PersistentPostRunE: cmd.CloseDBContext,
	}

	userCmd.AddCommand(
		createCommand(),
		deleteCommand(),
		listCommand(),
		setPasswordCommand(),
	)

	return userCmd
}

// initUserContext opens the database and makes sure the schema is current.
func initUserContext(c *cobra.Command, args []string) error {
	if err := cmd.InitDBContext(c, args); err != nil {
		return err
	}
	ctx := c.Context()
	if err := migrate.Migrate(ctx, db.FromContext(ctx)); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// readPassword returns the password flag or, when empty, the first line of
// r.
func readPassword(flag string, r io.Reader) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func createCommand() *cobra.Command {
	var password string
	createCmd := &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create a new user",
		Long:  "Create a new user. The password is read from standard input unless --password is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			p, err := cmd.UserProvider(c)
			if err != nil {
				return err
			}
			pass, err := readPassword(password, c.InOrStdin())
			if err != nil {
				return err
			}

			return p.CreateUser(ctx, args[0], pass)
		},
	}

	createCmd.Flags().StringVarP(&password, "password", "p", "", "the user password")

	return createCmd
}

func deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			p, err := cmd.UserProvider(c)
			if err != nil {
				return err
			}

			return p.DeleteUser(ctx, args[0])
		},
	}
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			p, err := cmd.UserProvider(c)
			if err != nil {
				return err
			}
			users, err := p.Users(ctx)
			if err != nil {
				return err
			}

			for _, u := range users {
				c.Println(u.Username)
			}

			return nil
		},
	}
}

func setPasswordCommand() *cobra.Command {
	var password string
	setPasswordCmd := &cobra.Command{
		Use:   "set-password USERNAME",
		Short: "Set the password of a user",
		Long:  "Set the password of a user. The password is read from standard input unless --password is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			p, err := cmd.UserProvider(c)
			if err != nil {
				return err
			}
			pass, err := readPassword(password, c.InOrStdin())
			if err != nil {
				return err
			}

			return p.SetSecret(ctx, args[0], pass)
		},
	}

	setPasswordCmd.Flags().StringVarP(&password, "password", "p", "", "the new password")

	return setPasswordCmd
}
