package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/corretora/internal/auth"
	"github.com/JaimeStill/corretora/pkg/database"
	"github.com/JaimeStill/corretora/pkg/logging"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin or agency account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			create, err := userCommandFromFlags(cmd)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := logging.New(&cfg.Logging)
			db, err := database.New(&cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Connection().Close()

			if err := db.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			sys := auth.New(auth.NewStore(db.Connection()), &cfg.Auth, logger)
			user, err := sys.CreateUser(cmd.Context(), create)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().String("email", "", "login email")
	cmd.Flags().String("nome", "", "display name")
	cmd.Flags().String("senha", "", "initial password")
	cmd.Flags().String("role", string(auth.RoleAdmin), "admin or imobiliaria")
	cmd.Flags().String("imobiliaria", "", "agency id, required for imobiliaria accounts")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("nome")
	_ = cmd.MarkFlagRequired("senha")

	return cmd
}

func userCommandFromFlags(cmd *cobra.Command) (auth.CreateUserCommand, error) {
	email, _ := cmd.Flags().GetString("email")
	nome, _ := cmd.Flags().GetString("nome")
	senha, _ := cmd.Flags().GetString("senha")
	role, _ := cmd.Flags().GetString("role")
	agency, _ := cmd.Flags().GetString("imobiliaria")

	create := auth.CreateUserCommand{
		Email: email,
		Nome:  nome,
		Senha: senha,
		Role:  auth.Role(role),
	}

	if agency != "" {
		id, err := uuid.Parse(agency)
		if err != nil {
			return create, fmt.Errorf("invalid --imobiliaria: %w", err)
		}
		create.ImobiliariaID = &id
	}

	return create, nil
}
