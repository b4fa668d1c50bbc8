package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"

	accountsx "github.com/samantha-labs/assistant/agent/accounts"
	agentsx "github.com/samantha-labs/assistant/agent/agents"
	contractx "github.com/samantha-labs/assistant/agent/contract"
	llmx "github.com/samantha-labs/assistant/agent/llm"
	"github.com/samantha-labs/assistant/agent/orchestrator"
	promptx "github.com/samantha-labs/assistant/agent/prompt"
	statex "github.com/samantha-labs/assistant/agent/state"
	toolx "github.com/samantha-labs/assistant/agent/tool"
	configx "github.com/samantha-labs/assistant/pkg/config"
	_ "github.com/samantha-labs/assistant/pkg/logger/autoload"
	serverx "github.com/samantha-labs/assistant/server"
)

type AppConfig struct {
	StateBackend    string `envconfig:"STATE_BACKEND" split_words:"true" default:"memory"`
	AccountsBackend string `envconfig:"ACCOUNTS_BACKEND" split_words:"true" default:"memory"`

	// Seed account for local runs with the in-memory account store.
	SeedEmail     string `envconfig:"SEED_EMAIL" split_words:"true"`
	SeedNotesPath string `envconfig:"SEED_NOTES_PATH" split_words:"true"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm configuration")
	}

	store := buildStateStore(*appCfg)
	accounts := buildAccountStore(*appCfg)
	tools := buildToolRegistry()
	prompts := promptx.LoadPromptSet()

	general, err := agentsx.NewGeneralAgent(ctx, buildModel(ctx, *llmCfg, contractx.AgentTypeGeneral), prompts.General)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build general agent")
	}
	executor, err := agentsx.NewExecutorAgent(ctx, buildModel(ctx, *llmCfg, contractx.AgentTypeExecutor), prompts.Executor, tools)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build executor agent")
	}
	synthesizer, err := agentsx.NewSynthesizerAgent(ctx, buildModel(ctx, *llmCfg, contractx.AgentTypeSynthesizer), prompts.Synthesizer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build synthesizer agent")
	}

	registry, err := agentsx.NewRegistry(general, executor, synthesizer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build agent registry")
	}
	supervisor, err := agentsx.NewSupervisor(ctx, buildModel(ctx, *llmCfg, contractx.AgentTypeSupervisor), prompts.Supervisor, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build supervisor")
	}

	service, err := orchestrator.New(store, accounts, supervisor, registry, tools)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build turn service")
	}

	srvCfg := configx.MustNew[serverx.Config]("SERVER")
	srv := serverx.New(*srvCfg, service)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}
}

func buildModel(ctx context.Context, cfg llmx.Config, agentType contractx.AgentType) einomodel.ToolCallingChatModel {
	orCfg := cfg.OpenRouterFor(agentType)
	m, err := orCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("agent", string(agentType)).Msg("failed to build chat model")
	}
	return m
}

func buildStateStore(cfg AppConfig) statex.Store {
	switch cfg.StateBackend {
	case "redis":
		redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build redis state store")
		}
		return store
	default:
		log.Warn().Msg("using in-memory state store, checkpoints are lost on restart")
		return statex.NewMemoryStore()
	}
}

func buildAccountStore(cfg AppConfig) accountsx.Store {
	switch cfg.AccountsBackend {
	case "postgres":
		pgCfg := configx.MustNew[accountsx.PostgresConfig]("POSTGRES")
		store, err := accountsx.NewPostgresStore(*pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build postgres account store")
		}
		return store
	default:
		var seed []*accountsx.Account
		if cfg.SeedEmail != "" {
			seed = append(seed, &accountsx.Account{
				Email:     cfg.SeedEmail,
				NotesPath: cfg.SeedNotesPath,
			})
		}
		log.Warn().Msg("using in-memory account store")
		return accountsx.NewMemoryStore(seed...)
	}
}

func buildToolRegistry() *toolx.Registry {
	weatherCfg := configx.MustNew[toolx.WeatherConfig]("WEATHER")
	websearchCfg := configx.MustNew[toolx.WebSearchConfig]("WEBSEARCH")
	githubCfg := configx.MustNew[toolx.GitHubConfig]("GITHUB")
	gmailCfg := configx.MustNew[toolx.GmailConfig]("GMAIL")

	notesSearch, notesRead, notesWrite := toolx.NewNotesTools(*githubCfg)

	registry, err := toolx.NewRegistry(
		toolx.NewShellTool(),
		toolx.NewWeatherTool(*weatherCfg),
		toolx.NewWebSearchTool(*websearchCfg),
		notesSearch,
		notesRead,
		notesWrite,
		toolx.NewGmailTool(*gmailCfg),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool registry")
	}
	return registry
}
