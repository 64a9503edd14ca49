package cli

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/soldier14/quizdrill/internal/app"
	"github.com/soldier14/quizdrill/internal/config"
	"github.com/soldier14/quizdrill/internal/domain"
	pgstore "github.com/soldier14/quizdrill/internal/infra/postgres"
	transport "github.com/soldier14/quizdrill/internal/transport/http"
)

// NewSeedCmd loads a sample quiz into Postgres and prints dev tokens, so
// a fresh database can be exercised immediately.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a sample quiz and print dev tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("postgres url not configured")
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}

			db := pgstore.OpenBun(cfg.Postgres.URL)
			defer db.Close()

			catalog := app.NewCatalogService(pgstore.NewCatalogStore(db), nil)
			quiz, err := catalog.CreateQuiz(cmd.Context(), SampleQuizInput())
			if err != nil {
				if errors.Is(err, domain.ErrNameTaken) {
					log.Printf("sample quiz already present, skipping")
					return printTokens(cfg)
				}
				return err
			}
			log.Printf("seeded quiz %q (%s)", quiz.Name, quiz.ID)
			return printTokens(cfg)
		},
	}
}

func printTokens(cfg config.Config) error {
	if cfg.Auth.Secret == "" {
		return nil
	}
	auth := transport.NewAuthenticator(cfg.Auth.Secret)
	student, err := auth.Token("dev-student", transport.RoleStudent, 24*time.Hour)
	if err != nil {
		return err
	}
	admin, err := auth.Token("dev-admin", transport.RoleAdmin, 24*time.Hour)
	if err != nil {
		return err
	}
	log.Printf("student token: %s", student)
	log.Printf("admin token:   %s", admin)
	return nil
}

// SampleQuizInput is the demo quiz used by seed and the memory-backed
// dev server.
func SampleQuizInput() app.CreateQuizInput {
	return app.CreateQuizInput{
		Name: "Basic Math",
		Questions: []app.QuestionInput{
			{
				Type: domain.QuestionMultipleChoice,
				Text: "What is 2 + 2?",
				Options: []app.OptionInput{
					{Text: "3"},
					{Text: "4", Correct: true},
					{Text: "5"},
				},
			},
			{
				Type:        domain.QuestionObjective,
				Text:        "Is 7 a prime number?",
				Explanation: "7 has no divisors other than 1 and itself.",
				Options: []app.OptionInput{
					{Text: "Yes", Correct: true},
					{Text: "No"},
				},
			},
		},
	}
}
