package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vbonduro/photoshare/internal/client"
	"github.com/vbonduro/photoshare/internal/config"
	"github.com/vbonduro/photoshare/internal/domain"
	"github.com/vbonduro/photoshare/internal/notify"
	"github.com/vbonduro/photoshare/internal/sharing"
	"golang.org/x/term"
)

const usage = `usage: sharecli <command> [arguments]

commands:
  contacts list
  contacts add <name> [phone]
  contacts rm [-yes] <id>
  share [-no-open] <contact> <photo-id>...
  history
  received
  read <share-id>
  watch`

// openWait bounds how long share waits for the messenger to launch.
const openWait = 5 * time.Second

type app struct {
	api      *client.Client
	contacts *sharing.ContactStore
	recorder *sharing.Recorder
	history  *sharing.History
	logger   *slog.Logger

	in     *bufio.Reader
	out    io.Writer
	opener sharing.LinkOpener
	// interactive reports whether confirmation prompts can be shown.
	interactive func() bool
}

func newApp(cfg *config.ClientConfig, logger *slog.Logger, in io.Reader, out io.Writer) (*app, error) {
	api, err := client.New(client.Config{BaseURL: cfg.BaseURL, Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	links := sharing.NewLinkGenerator(cfg.DefaultCountryCode)
	contacts := sharing.NewContactStore(api, logger)
	return &app{
		api:         api,
		contacts:    contacts,
		recorder:    sharing.NewRecorder(api, contacts, links, logger),
		history:     sharing.NewHistory(api, links),
		logger:      logger,
		in:          bufio.NewReader(in),
		out:         out,
		opener:      systemOpener{},
		interactive: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "contacts":
		return a.runContacts(ctx, args[1:])
	case "share":
		return a.share(ctx, args[1:])
	case "history":
		return a.showHistory(ctx)
	case "received":
		return a.showReceived(ctx)
	case "read":
		if len(args) != 2 {
			return errors.New("usage: sharecli read <share-id>")
		}
		if err := a.history.MarkRead(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "marked as read")
		return nil
	case "watch":
		return a.watch(ctx)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func (a *app) runContacts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: sharecli contacts list|add|rm")
	}
	switch args[0] {
	case "list", "ls":
		contacts, err := a.contacts.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPHONE")
		for _, c := range contacts {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.Phone)
		}
		return tw.Flush()
	case "add":
		if len(args) < 2 || len(args) > 3 {
			return errors.New("usage: sharecli contacts add <name> [phone]")
		}
		phone := ""
		if len(args) == 3 {
			phone = args[2]
		}
		c, err := a.contacts.Add(ctx, args[1], phone)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "added %s (%s)\n", c.Name, c.ID)
		return nil
	case "rm", "remove":
		fs := flag.NewFlagSet("contacts rm", flag.ContinueOnError)
		fs.SetOutput(a.out)
		yes := fs.Bool("yes", false, "skip the confirmation prompt")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("usage: sharecli contacts rm [-yes] <id>")
		}
		id := fs.Arg(0)
		c, err := a.contacts.Get(ctx, id)
		if err != nil {
			return err
		}
		if !*yes {
			ok, err := a.confirm(fmt.Sprintf("Remove contact %s?", c.Name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "cancelled")
				return nil
			}
		}
		if err := a.contacts.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "removed %s\n", c.Name)
		return nil
	default:
		return fmt.Errorf("unknown contacts command %q", args[0])
	}
}

// confirm asks a yes/no question. Non-interactive input must pass -yes.
func (a *app) confirm(question string) (bool, error) {
	if !a.interactive() {
		return false, errors.New("refusing to prompt without a terminal; pass -yes")
	}
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (a *app) share(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("share", flag.ContinueOnError)
	fs.SetOutput(a.out)
	noOpen := fs.Bool("no-open", false, "print the messenger link instead of opening it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("usage: sharecli share [-no-open] <contact> <photo-id>...")
	}

	contact, err := a.resolveContact(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	opened := make(chan string, 1)
	opener := sharing.OpenerFunc(func(uri string) error {
		defer func() { opened <- uri }()
		if *noOpen {
			return nil
		}
		return a.opener.Open(uri)
	})
	coord := sharing.NewCoordinator(a.recorder, opener, a.logger, sharing.WithOpenDelay(0))
	defer coord.Close()

	if err := coord.SelectContact(*contact); err != nil {
		return err
	}
	receipt, err := coord.Share(ctx, fs.Args()[1:])
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, coord.Snapshot().Message)
	if receipt.Link == nil {
		fmt.Fprintf(a.out, "%s has no phone number; no messenger link\n", contact.Name)
		return nil
	}
	fmt.Fprintln(a.out, receipt.Link.URI)

	select {
	case <-opened:
	case <-time.After(openWait):
		a.logger.Warn("messenger did not open in time")
	case <-ctx.Done():
	}
	return nil
}

// resolveContact matches an id first, then a case-insensitive name.
func (a *app) resolveContact(ctx context.Context, ref string) (*domain.Contact, error) {
	contacts, err := a.contacts.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if c.ID == ref {
			return &c, nil
		}
	}
	for _, c := range contacts {
		if strings.EqualFold(c.Name, ref) {
			return &c, nil
		}
	}
	return nil, &sharing.NotFoundError{Resource: "contact", ID: ref}
}

func (a *app) showHistory(ctx context.Context) error {
	view, err := a.history.Views(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Sent (%d)\n", len(view.Sent))
	for _, e := range view.Sent {
		a.printEntry(e)
	}
	fmt.Fprintf(a.out, "Received (%d)\n", len(view.Received))
	for _, e := range view.Received {
		a.printEntry(e)
	}
	return nil
}

func (a *app) showReceived(ctx context.Context) error {
	shares, err := a.history.Received(ctx)
	if err != nil {
		return err
	}
	for _, s := range shares {
		fmt.Fprintf(a.out, "%s  from %s  %d photo(s)  %s  %s\n",
			s.ID, s.From, s.Count(), s.Status, s.CreatedAt.Local().Format(time.DateTime))
	}
	return nil
}

func (a *app) printEntry(e sharing.Entry) {
	s := e.Share
	fmt.Fprintf(a.out, "  %s  %s  %d photo(s)  %s", s.ID, s.CounterpartyName(), s.Count(), s.CreatedAt.Local().Format(time.DateTime))
	if s.Direction == domain.DirectionReceived {
		fmt.Fprintf(a.out, "  %s", s.Status)
	}
	if e.Preview.Overflow > 0 {
		fmt.Fprintf(a.out, "  +%d more", e.Preview.Overflow)
	}
	fmt.Fprintln(a.out)
	if e.Link != nil {
		fmt.Fprintf(a.out, "    %s\n", e.Link.URI)
	}
}

func (a *app) watch(ctx context.Context) error {
	fmt.Fprintln(a.out, "watching for events, press Ctrl-C to stop")
	return a.api.Watch(ctx, func(ev notify.Event) {
		switch ev.Type {
		case notify.EventShareCreated:
			fmt.Fprintf(a.out, "%s  %s shared %d photo(s) with %s\n", ev.Timestamp.Local().Format(time.TimeOnly), ev.From, ev.PhotoCount, ev.To)
		case notify.EventShareRead:
			fmt.Fprintf(a.out, "%s  share %s read\n", ev.Timestamp.Local().Format(time.TimeOnly), ev.ShareID)
		default:
			fmt.Fprintf(a.out, "%s  %s %s\n", ev.Timestamp.Local().Format(time.TimeOnly), ev.Type, ev.ContactID)
		}
	})
}
