package main

import (
	"log"
	"os"

	config "github.com/anjiri1684/mentorship/configs"
	"github.com/anjiri1684/mentorship/database"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("🔥 %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mentorship",
		Short:         "Mentorship marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API, chat socket and background jobs",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe()
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := config.Load()
				if err != nil {
					return err
				}
				db, err := database.ConnectDB(s)
				if err != nil {
					return err
				}
				return database.Migrate(db)
			},
		},
		&cobra.Command{
			Use:   "seed-admin",
			Short: "Create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := config.Load()
				if err != nil {
					return err
				}
				db, err := database.ConnectDB(s)
				if err != nil {
					return err
				}
				return database.SeedAdmin(db, s)
			},
		},
	)
	return root
}
