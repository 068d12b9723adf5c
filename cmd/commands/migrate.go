package commands

import (
	"gamecatalog/db"

	"github.com/spf13/cobra"
)

var withSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the database schema.

Examples:
  gamecatalog migrate          # Apply the schema
  gamecatalog migrate --seed   # Apply the schema and load sample data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		if err := db.Migrate(rt.db); err != nil {
			return err
		}
		rt.log.Info("Database migrated")

		if withSeed {
			return runSeed(rt)
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample publishers, developers and games",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()
		return runSeed(rt)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&withSeed, "seed", false, "Load sample data after migrating")
	rootCmd.AddCommand(migrateCmd, seedCmd)
}

func runSeed(rt *app) error {
	n, err := db.Seed(rt.db)
	if err != nil {
		return err
	}
	rt.log.WithField("games", n).Info("Sample data loaded")
	return nil
}
