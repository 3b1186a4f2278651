package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petrel-ai/attendant/internal/api"
	"github.com/petrel-ai/attendant/internal/chatws"
	"github.com/petrel-ai/attendant/internal/config"
	"github.com/petrel-ai/attendant/internal/console"
	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/gateway"
	"github.com/petrel-ai/attendant/internal/ipc"
	"github.com/petrel-ai/attendant/internal/kv"
	"github.com/petrel-ai/attendant/internal/lane"
	"github.com/petrel-ai/attendant/internal/orchestrator"
	"github.com/petrel-ai/attendant/internal/plugins"
	"github.com/petrel-ai/attendant/internal/thread"
	"github.com/petrel-ai/attendant/internal/users"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	backend, err := openBackend(cfg.Storage)
	if err != nil {
		return err
	}
	defer backend.Close()

	threads := thread.NewStore(backend)
	userSvc := users.NewService(backend)

	completion := gateway.NewOpenAI(gateway.OpenAIConfig{
		APIKey:      cfg.Completion.APIKey,
		APIBase:     cfg.Completion.APIBase,
		Model:       cfg.Completion.Model,
		Temperature: cfg.Completion.Temperature,
	})

	reg := extension.NewRegistry()
	orch := orchestrator.New(reg, threads, completion, backend, orchestrator.Config{
		ClearRetrievalCacheAfterUse: cfg.Retrieval.ClearCacheAfterUse,
	})

	// Registration order is processing order within each capability.
	reg.RegisterCommandProcessor(plugins.NewClearHistory(orch, cfg.Assistant.ClearCommand))
	reg.RegisterContext(plugins.NewPersona(cfg.Assistant.Persona))
	reg.RegisterContext(plugins.NewTaskmanContext())
	reg.RegisterPreprocessor(plugins.NewTaskman(threads, completion, reg, ""))
	reg.RegisterRetriever(plugins.NewRecall(backend))
	reg.RegisterMessageHandler(plugins.NewTextHandler(orch))
	reg.RegisterIPCCommand(plugins.NewStatus(chatws.Platform, console.Platform))
	reg.RegisterIPCCommand(plugins.NewChatEvent(reg, userSvc))

	bus := ipc.NewBus(reg)
	lanes := lane.NewManager(func(ctx context.Context, req lane.Request) ([]extension.Reply, error) {
		return orch.HandleTextMessage(ctx, req.Platform, req.RoomID, req.Sender, req.Content, req.Context)
	})
	defer lanes.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tasks := orch.Tasks()
	tasks.Go("bus", func(context.Context) error {
		if err := bus.Run(ctx); err != context.Canceled {
			return err
		}
		return nil
	})
	tasks.Go("api", func(context.Context) error {
		return api.NewServer(cfg.API.Host, cfg.API.Port, bus).Start(ctx)
	})
	tasks.Go("console", func(context.Context) error {
		return console.NewServer(cfg.Console.Host, cfg.Console.Port, lanes).Start(ctx)
	})
	if cfg.Chat.GatewayURL != "" {
		tasks.Go("chatws", func(context.Context) error {
			return chatws.NewClient(cfg.Chat.GatewayURL, cfg.Chat.Token, bus).Start(ctx)
		})
	}

	log.Printf("[Serve] attendant up, storage backend %s", cfg.Storage.Backend)
	<-ctx.Done()
	log.Println("[Serve] shutting down")
	tasks.Wait()
	return nil
}

// openBackend picks the key-value backend from config.
func openBackend(cfg config.StorageConfig) (kv.Store, error) {
	switch cfg.Backend {
	case "memory":
		return kv.NewMemory(), nil
	case "redis":
		return kv.OpenRedis(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	case "pebble", "":
		path := cfg.Path
		if path == "" {
			home, _ := os.UserHomeDir()
			path = home + "/.attendant/data"
		}
		return kv.OpenPebble(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
