package main

import (
	"fmt"

	"github.com/GunnarEriksson/askme"
	"github.com/GunnarEriksson/askme/authentication/github_auth"
	"github.com/GunnarEriksson/askme/cmd"
	"github.com/GunnarEriksson/askme/notifier"
	"github.com/GunnarEriksson/askme/pgstore"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)

	// setup database
	pgcfg := fmt.Sprintf(
		"user=%v dbname=%v sslmode=disable password=%v host=%v",
		cfg.DatabaseUser,
		cfg.DatabaseName,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
	)
	pg := pgstore.New(pgcfg)

	// setup authentication
	ll := logger.With().Str("component", "github auth").Logger()
	authService := github_auth.New(cfg.ServerSecret, cfg.GithubClientID, cfg.GithubClientSecret, ll)

	// fire the server
	s := askme.NewServer(&askme.ServerConfig{
		Addr:             cfg.Addr,
		QuestionsPerPage: cfg.QuestionsPerPage,
		SessionSecret:    cfg.ServerSecret,
	}, logger, pg, authService)

	if cfg.SlackToken != "" {
		nl := logger.With().Str("component", "slack notifier").Logger()
		n := notifier.New(cfg.SlackToken, cfg.SlackChannel, cfg.BaseURL, nl)
		s.AddQuestionHook(n.QuestionHook())
		s.AddCommentHook(n.CommentHook())
	}

	err = s.Prepare()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot prepare server")
	}

	err = s.Start()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot start server")
	}
}
