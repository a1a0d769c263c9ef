package main

import (
	"chatroom/contract"
	errs "chatroom/errors"
	"chatroom/internal"
	"chatroom/moderation"
	"chatroom/observability"
	"chatroom/runtime"
	"chatroom/runtime/workers"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the room, binds every port up front and serves until a signal or a fatal accept error.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censor, err := buildCensor(config, log)
	if err != nil {
		return exitConfig, err
	}

	// 2. Room
	stats := observability.NewRoomStats()
	directory := runtime.NewDirectory()
	broadcaster := runtime.NewBroadcaster(log, directory, stats)
	server := runtime.NewServer(log, directory, broadcaster, censor, stats, config.SessionOptions())

	// 3. Listeners, bind failures are fatal
	listener, err := runtime.Listen(config.Address())
	if err != nil {
		return exitRuntime, err
	}

	sup := workers.NewSupervisor(log, config.RestartInterval)
	if config.StatsInterval > 0 {
		sup.Add(workers.NewStatsWorker(log, directory, stats, config.StatsInterval))
	}
	if config.AdminPort > 0 {
		adminListener, err := listenPort(config.Host, config.AdminPort)
		if err != nil {
			_ = listener.Close()
			return exitRuntime, err
		}
		sup.Add(workers.NewAdminWorker(log, adminListener))
	}
	if config.DebugPort > 0 {
		debugListener, err := listenPort(config.Host, config.DebugPort)
		if err != nil {
			_ = listener.Close()
			return exitRuntime, err
		}
		sup.Add(workers.NewDebugWorker(log, debugListener, internal.NewDebugRouter(directory, stats)))
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 5. Chat server, errors are reported on errChan
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat server", "address", listener.Addr().String(), "at", time.Now().UTC())
		errChan <- server.Serve(ctx, listener)
	}()

	// 6. Wait for Stop or Error
	code := exitOK
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		err = <-errChan
	case err = <-errChan:
		log.Error("Chat server stopped", "error", err)
		code = exitRuntime
		stop()
	}

	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")
	return code, err
}

// buildCensor merges CENSORED_WORDS with the word lists under CENSORED_DIR.
// It returns a nil Censor when there is nothing to mask.
func buildCensor(config internal.Config, log *slog.Logger) (contract.Censor, error) {
	words := config.Words()
	if config.CensoredDir != "" {
		data, err := moderation.NewCensoredLoader(os.DirFS(config.CensoredDir)).LoadAll(".")
		if err != nil && !errors.Is(err, errs.ErrEmptyWords) {
			return nil, fmt.Errorf("failed to load censored words from %s: %w", config.CensoredDir, err)
		}
		if data != nil {
			log.Info(fmt.Sprintf("%d censored files loaded %v", len(data.Languages), data.Languages))
			words = lo.Uniq(append(words, data.Words...))
		}
	}
	if len(words) == 0 {
		return nil, nil
	}

	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return nil, err
	}
	moderator, err := moderation.NewModerator(words, replacement, log)
	if errors.Is(err, errs.ErrEmptyWords) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(words)))
	return moderator, nil
}

func listenPort(host string, port int) (net.Listener, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return listener, nil
}
