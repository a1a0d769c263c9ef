package main

import (
	"bufio"
	"chatroom/client"
	errs "chatroom/errors"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type options struct {
	host     string
	port     int
	name     string
	noColour bool
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := client.LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	code := exitOK
	var opts options
	rootCmd := &cobra.Command{
		Use:           "chatclient",
		Short:         "Terminal client for the chat room",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				config.Host = opts.host
			}
			if cmd.Flags().Changed("port") {
				config.Port = opts.port
			}
			if opts.noColour {
				config.Colours = false
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := chat(ctx, config, opts.name, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				code = exitRuntime
				return err
			}
			return nil
		},
	}
	rootCmd.Flags().StringVar(&opts.host, "host", config.Host, "chat server host")
	rootCmd.Flags().IntVar(&opts.port, "port", config.Port, "chat server port")
	rootCmd.Flags().StringVar(&opts.name, "name", "", "username, asked on stdin when empty")
	rootCmd.Flags().BoolVar(&opts.noColour, "no-colour", false, "disable coloured output")

	if err := rootCmd.Execute(); err != nil {
		if code == exitOK {
			code = exitConfig
		}
		return code, err
	}
	return code, nil
}

// chat joins the room and pumps lines both ways until the server hangs up,
// stdin ends or ctx is canceled.
func chat(ctx context.Context, config client.Config, name string, in io.Reader, out io.Writer) error {
	c, err := client.Dial(ctx, config.Address())
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	context.AfterFunc(ctx, func() { _ = c.Close() })

	renderer := client.NewRenderer(out, config.Colours)
	input := bufio.NewScanner(in)

	if name == "" {
		fmt.Fprint(out, "Username: ")
		if !input.Scan() {
			return errs.ErrEmptyUsername
		}
		name = input.Text()
	}
	if err := c.Join(name); err != nil {
		return err
	}

	serverDone := make(chan error, 1)
	go func() {
		for {
			line, err := c.ReadLine()
			if err != nil {
				serverDone <- err
				return
			}
			renderer.Render(line)
		}
	}()

	left := make(chan struct{})
	go func() {
		for input.Scan() {
			if err := c.Send(input.Text()); err != nil {
				return
			}
		}
		// stdin closed, leave the room
		close(left)
		_ = c.Close()
	}()

	err = <-serverDone
	select {
	case <-left:
		return nil
	default:
	}
	if ctx.Err() != nil || errors.Is(err, errs.ErrSessionClosed) {
		fmt.Fprintln(out, "Disconnected.")
		return nil
	}
	return err
}
