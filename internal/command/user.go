package command

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sohansahooo/vidshort/internal/auth"
	"github.com/sohansahooo/vidshort/internal/db"
	"github.com/sohansahooo/vidshort/internal/models"
	"github.com/sohansahooo/vidshort/internal/repositories"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
		userUpdateCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create user",
		Long: "Creates a user with the provided email. The password may be provided\n" +
			"via stdin or through the interactive prompt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, closeDB, err := openUsers(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			email := strings.TrimSpace(args[0])
			passwd, err := prompt("password: ", true)
			if err != nil {
				return err
			}

			user, err := auth.PrepareUserForPersistence(models.User{
				ID:       uuid.NewString(),
				Email:    email,
				Password: string(passwd),
			}, true)
			if err != nil {
				return err
			}
			if err := users.Create(cmd.Context(), user); err != nil {
				if errors.Is(err, repositories.ErrConflict) {
					return fmt.Errorf("user %s already exists", email)
				}
				return err
			}

			slog.Default().InfoContext(cmd.Context(), "created user", slog.String("email", email), slog.String("id", user.ID))
			return nil
		},
	}
}

func userUpdateCommand() *cobra.Command {
	var (
		newEmail      string
		resetPassword bool
	)
	cmd := &cobra.Command{
		Use:   "update EMAIL",
		Short: "Update user",
		Long: "Changes the email and/or password of an existing user. The stored hash is\n" +
			"only replaced when --password is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if newEmail == "" && !resetPassword {
				return errors.New("nothing to update: pass --email and/or --password")
			}

			users, closeDB, err := openUsers(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			logger := slog.Default().With(slog.String("email", args[0]))
			user, err := users.FindByEmail(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			if newEmail != "" {
				user.Email = strings.TrimSpace(newEmail)
			}
			if resetPassword {
				passwd, err := prompt("new password: ", true)
				if err != nil {
					return err
				}
				user.Password = string(passwd)
			}

			user, err = auth.PrepareUserForPersistence(user, resetPassword)
			if err != nil {
				return err
			}
			if err := users.Update(cmd.Context(), user); err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "updated user",
				slog.String("newEmail", user.Email),
				slog.Bool("passwordChanged", resetPassword),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&newEmail, "email", "", "new email address")
	cmd.Flags().BoolVar(&resetPassword, "password", false, "prompt for a new password")
	return cmd
}

func openUsers(cmd *cobra.Command) (repositories.UserRepository, func(), error) {
	cfg, err := configFrom(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	cache := db.NewCache(db.PostgresConnector(cfg.DatabaseURL), cfg.ConnectTimeout)
	return repositories.NewPostgresUserRepository(cache), cache.Reset, nil
}
