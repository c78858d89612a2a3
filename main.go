package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"rudra/auth"
	"rudra/client"
	"rudra/config"
	"rudra/conversation"
	"rudra/engine"
	"rudra/provider"
	"rudra/render"
	"rudra/server"
	"rudra/storage"
	"rudra/tools"
)

const Version = "v0.1.0"

func main() {
	mode := "serve"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		mode = args[0]
		args = args[1:]
	}

	cfg, err := config.Load(os.Getenv("RUDRA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Debug {
		if err := config.EnableDebugLog(cfg.DataDir); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to enable debug log: %v\n", err)
		}
	}

	switch mode {
	case "serve":
		if err := runServer(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "chat":
		if err := runChat(cfg, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Println("rudra", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q (want serve, chat, or version)\n", mode)
		os.Exit(1)
	}
}

func runServer(cfg *config.Config) error {
	log := logrus.New()
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	prov, err := provider.NewProvider(provider.Config{
		Type:    provider.ProviderType(cfg.Provider.Type),
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.Model,
		APIKey:  cfg.Provider.APIKey,
	})
	if err != nil {
		return err
	}

	registry := tools.NewRegistry(tools.Config{
		WeatherAPIKey: cfg.Weather.APIKey,
		StockAPIKey:   cfg.Stocks.APIKey,
	})

	eng := &engine.Engine{
		Provider:     prov,
		Tools:        registry,
		SystemPrompt: cfg.SystemPrompt,
		MaxSteps:     cfg.MaxSteps,
	}

	srv := server.New(auth.NewService(store), store, eng, log)

	log.WithFields(logrus.Fields{
		"addr":     cfg.ListenAddr,
		"provider": cfg.Provider.Type,
		"model":    prov.GetModel(),
	}).Info("starting server")

	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		httpSrv.Shutdown(context.Background())
	}()

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// runChat is a line-oriented terminal client against a running server.
func runChat(cfg *config.Config, args []string) error {
	serverURL := "http://localhost" + cfg.ListenAddr
	if len(args) > 0 {
		serverURL = args[0]
	}

	ctx := context.Background()
	c := client.New(serverURL)

	in := bufio.NewScanner(os.Stdin)

	email := prompt(in, "Email: ")
	password := prompt(in, "Password: ")
	identity, err := c.Login(ctx, email, password)
	if err != nil {
		fmt.Println("Login failed, registering a new account.")
		name := prompt(in, "Name: ")
		if _, err := c.Register(ctx, name, email, password); err != nil {
			return err
		}
		if identity, err = c.Login(ctx, email, password); err != nil {
			return err
		}
	}
	fmt.Printf("Hello, %s.\n", identity.Name)

	chat, err := c.CreateChat(ctx, "New Chat")
	if err != nil {
		return err
	}

	conv := conversation.New(nil)
	titled := false

	for {
		line := prompt(in, "> ")
		if line == "" {
			return nil
		}

		conv.AppendUser(line)
		if err := c.SubmitTurn(ctx, conv, chat.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Turn failed: %v (your message is kept, try again)\n", err)
			continue
		}

		messages := conv.Messages()
		printDecision(render.Decide(messages[len(messages)-1]))

		if !titled {
			if first, ok := conv.FirstUserMessage(); ok {
				if err := c.SyncTitle(ctx, chat.ID, conversation.TitleFromMessage(first.Content)); err == nil {
					titled = true
				}
			}
		}
	}
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func printDecision(d render.Decision) {
	if d.Suppress {
		return
	}
	if d.ShowText {
		fmt.Println(d.Text)
	}
	if d.ShowFallback {
		fmt.Println(render.FallbackText)
	}
	for _, name := range d.PendingToolNames {
		fmt.Printf("[%s running...]\n", name)
	}
	for _, card := range d.ResultCards {
		if tools.Failed(card) {
			continue
		}
		fmt.Printf("-- %s --\n", card.ToolName)
		for key, value := range card.Result {
			fmt.Printf("  %s: %v\n", key, value)
		}
	}
}
