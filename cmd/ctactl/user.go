package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cta-backend/internal/adapter/repository/mysql"
	"cta-backend/internal/domain/user"
	"cta-backend/internal/infrastructure/security"
	useruc "cta-backend/internal/usecase/user"
)

type createUserOpts struct {
	name     string
	email    string
	password string
	role     string
}

func newCreateUserCmd() *cobra.Command {
	var o createUserOpts
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account",
		Long:  "Creates an account directly in the store, typically the first admin of a fresh install.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, log, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			users := mysql.NewUserRepository(gdb)
			uc := useruc.NewUsecase(users, mysql.NewInspectionRepository(gdb), security.NewBcryptHasher(security.DefaultCost), log)
			// the operator already holds the store credentials
			u, err := uc.Create(cmd.Context(), user.RoleSuperAdmin, useruc.CreateInput{
				Name:     o.name,
				Email:    o.email,
				Password: o.password,
				Role:     o.role,
			})
			if err != nil {
				return fmt.Errorf("creating user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s> role=%s\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.name, "name", "", "display name")
	cmd.Flags().StringVar(&o.email, "email", "", "login email")
	cmd.Flags().StringVar(&o.password, "password", "", "initial password")
	cmd.Flags().StringVar(&o.role, "role", "admin", "technician, supervisor, admin or superadmin")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
