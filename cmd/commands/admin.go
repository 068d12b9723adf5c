package commands

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gamecatalog/repository"
	"gamecatalog/service"

	"github.com/spf13/cobra"
)

var (
	adminLogin    string
	adminPassword string
	ratingWorkers int
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing user",
	Long: `Create an admin account or promote an existing user.

The password may be given with --password or the ADMIN_PASSWORD variable.
It is ignored when the login already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminPassword == "" {
			adminPassword = os.Getenv("ADMIN_PASSWORD")
		}
		if adminLogin == "" {
			return errors.New("--login is required")
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		tokens, err := service.NewTokenService(rt.cfg.JWTSecret, rt.cfg.JWTExpiry)
		if err != nil {
			return err
		}
		auth := service.NewAuthService(repository.NewUserRepository(rt.db), tokens, nil, rt.log)
		user, err := auth.EnsureAdmin(cmd.Context(), adminLogin, adminPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %q ready (id %d)\n", user.Login, user.ID)
		return nil
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute-ratings",
	Short: "Rebuild every game rating from approved reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		reviews := service.NewReviewService(repository.NewReviewRepository(rt.db), nil, rt.log)
		n, err := reviews.RecomputeAllRatings(cmd.Context(), ratingWorkers)
		fmt.Fprintf(cmd.OutOrStdout(), "%d game ratings recomputed\n", n)
		return err
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminLogin, "login", "", "Admin login")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password for a new account")
	recomputeCmd.Flags().IntVar(&ratingWorkers, "workers", runtime.NumCPU(), "Parallel workers")
	rootCmd.AddCommand(createAdminCmd, recomputeCmd)
}
