package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/db"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminInput services.CreateAdminInput

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator account",
	Long: `Creates an administrator account. The password is read from ADMIN_PASSWORD
so it does not end up in shell history.

	healthcare-booking-server admin create --email admin@example.com --first-name Ada --last-name Admin
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		adminInput.Password = os.Getenv("ADMIN_PASSWORD")
		if adminInput.Password == "" {
			return errors.New("ADMIN_PASSWORD is required")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		gdb, err := db.Open(cmd.Context(), cfg.Database, false)
		if err != nil {
			return err
		}
		defer func() {
			_ = db.Close(gdb)
		}()

		user, err := services.NewUserService(store.NewUserStore(gdb)).CreateAdmin(cmd.Context(), adminInput)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd)

	adminCreateCmd.Flags().StringVar(&adminInput.Email, "email", "", "admin email")
	adminCreateCmd.Flags().StringVar(&adminInput.FirstName, "first-name", "", "first name")
	adminCreateCmd.Flags().StringVar(&adminInput.LastName, "last-name", "", "last name")
	_ = adminCreateCmd.MarkFlagRequired("email")
}
