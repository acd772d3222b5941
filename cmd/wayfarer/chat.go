package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/wayfarer/internal/catalog"
	"github.com/MikeSquared-Agency/wayfarer/internal/config"
	"github.com/MikeSquared-Agency/wayfarer/internal/processor"
	"github.com/MikeSquared-Agency/wayfarer/internal/session"
	"github.com/MikeSquared-Agency/wayfarer/internal/speaker"
)

const consoleSession = "console"

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to wayfarer on the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return chat(ctx, config.Load(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// chat reads one utterance per line and prints each reply once it has been
// "spoken". /reset starts over, /exit quits.
func chat(parent context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	setupLogging(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	registry := session.NewRegistry(cfg.SessionTTL, nil, slog.Default(), sessionOptions(cfg)...)
	planner := newPlanner(cfg, catalog.Default())

	played := make(chan struct{}, 1)
	var proc *processor.Processor
	mailbox := speaker.NewMailbox(speaker.WriterSynthesizer{W: out, Prefix: "wayfarer: "}, func(e speaker.Event) {
		proc.OnSpeakerEvent(e)
		if e.Kind == speaker.EventEnded || e.Kind == speaker.EventError {
			select {
			case played <- struct{}{}:
			default:
			}
		}
	}, slog.Default())
	mailbox.SetTimeout(cfg.SpeakerTimeout)
	proc = processor.New(registry, planner, mailbox, nil, nil, slog.Default())
	go mailbox.Run(ctx)

	fmt.Fprintln(out, "Ask for directions, a day plan, somewhere to eat or a few hours to explore. /reset starts over, /exit quits.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			if err := registry.Reset(ctx, consoleSession); err != nil && !errors.Is(err, session.ErrNotFound) {
				return err
			}
			fmt.Fprintln(out, "Session reset.")
			continue
		}

		if _, err := proc.Process(ctx, consoleSession, line); err != nil {
			return err
		}

		select {
		case <-played:
		case <-time.After(cfg.SpeakerTimeout):
		case <-ctx.Done():
			return nil
		}
	}
	return scanner.Err()
}
