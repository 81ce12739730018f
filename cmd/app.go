package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"lobbyctl/internal/api"
	"lobbyctl/internal/cli"
	"lobbyctl/internal/config"
	"lobbyctl/internal/i18n"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/lobby"
	"lobbyctl/internal/modal"
	"lobbyctl/internal/navigation"
	"lobbyctl/internal/playflow"
	"lobbyctl/internal/session"
	"lobbyctl/pkg/logging"

	"github.com/spf13/cobra"
)

// app is the wired client behind one command invocation.
type app struct {
	cfg    *config.Config
	locale i18n.Locale

	cookies   *session.CookieStore
	lobbyHTTP *api.Client
	lobby     *lobby.Client
	identity  *identity.Client
	service   *session.Service
	store     *session.Store
	nav       *navigation.Navigator
	modals    *modal.Manager
	play      *playflow.Orchestrator
	catalog   *i18n.Catalog

	out      io.Writer
	printer  *cli.Printer
	progress *cli.Progress

	promptOnce sync.Once
	prompter   *cli.Prompter
	promptErr  error

	sessionOnce sync.Once
}

// appOptions override the environment of an app in tests.
type appOptions struct {
	cfg      *config.Config
	in       io.Reader
	out      io.Writer
	cookies  string
	start    string
	noSpin   bool
	prompter *cli.Prompter
}

// newApp loads the configuration selected by the global flags and wires
// the clients. start is the initial lobby location (e.g. "/#loginLobby").
func newApp(cmd *cobra.Command, start string) (*app, error) {
	cfg, err := config.LoadConfig(configPath, devMode)
	if err != nil {
		return nil, err
	}
	return buildApp(appOptions{
		cfg:     cfg,
		out:     cmd.OutOrStdout(),
		cookies: config.SessionDir(configPath),
		start:   start,
		noSpin:  quietOutput,
	})
}

func buildApp(opts appOptions) (*app, error) {
	cfg := opts.cfg

	key := cfg.Locale
	if localeFlag != "" {
		key = localeFlag
	}
	loc := i18n.Match(key)

	cookies, err := session.NewCookieStore(opts.cookies)
	if err != nil {
		return nil, err
	}

	lobbyHTTP, err := api.NewLobby(cfg, cookies)
	if err != nil {
		return nil, err
	}
	identityHTTP, err := api.NewIdentity(cfg)
	if err != nil {
		return nil, err
	}

	lobbyClient := lobby.New(lobbyHTTP, lobby.WithSessionTimeout(cfg.SessionTimeout))
	identityClient := identity.New(identityHTTP, cfg.Identity.ClientID)
	service := session.NewService(identityClient, lobbyClient, loc.Locale)

	start := opts.start
	if start == "" {
		start = "/"
	}
	nav, err := navigation.NewNavigator(cfg.Lobby.Host, start)
	if err != nil {
		return nil, err
	}
	modals := modal.NewManager()
	modals.Attach(nav)

	out := opts.out
	if out == nil {
		out = os.Stdout
	}

	a := &app{
		cfg:       cfg,
		locale:    loc,
		cookies:   cookies,
		lobbyHTTP: lobbyHTTP,
		lobby:     lobbyClient,
		identity:  identityClient,
		service:   service,
		store:     session.NewStore(service),
		nav:       nav,
		modals:    modals,
		play:      playflow.New(lobbyClient, nav),
		catalog:   i18n.NewCatalog(cfg.LocalisationDir, loc.Key),
		out:       out,
		printer:   &cli.Printer{Out: out, Format: cli.OutputFormat(outputFormat), NoHeaders: noHeaders},
		progress:  cli.NewProgress(os.Stderr, opts.noSpin || quietOutput),
		prompter:  opts.prompter,
	}
	if a.prompter == nil && opts.in != nil {
		a.prompter = cli.NewPrompter(opts.in, out)
	}
	return a, nil
}

// close releases the terminal.
func (a *app) close() {
	if a.prompter != nil {
		_ = a.prompter.Close()
	}
}

// prompt returns the interactive prompter, opening the terminal on first use.
func (a *app) prompt() (*cli.Prompter, error) {
	a.promptOnce.Do(func() {
		if a.prompter != nil {
			return
		}
		a.prompter, a.promptErr = cli.NewTerminalPrompter()
	})
	return a.prompter, a.promptErr
}

// session checks the lobby session once and returns the account or nil.
func (a *app) session(ctx context.Context) *lobby.Account {
	a.sessionOnce.Do(func() {
		_ = a.progress.Run("Checking session...", func() error {
			a.store.Init(ctx, nil)
			return nil
		})
	})
	return a.store.Account()
}

// requireSession returns the account or an AuthRequiredError.
func (a *app) requireSession(ctx context.Context) (*lobby.Account, error) {
	if acc := a.session(ctx); acc != nil {
		return acc, nil
	}
	return nil, &cli.AuthRequiredError{Lobby: a.cfg.Lobby.Host}
}

// tr translates a message key with the active catalog.
func (a *app) tr(key string, params map[string]string) string {
	return a.catalog.Translate(key, params)
}

// say prints a line unless the output is structured.
func (a *app) say(format string, args ...any) {
	if a.printer.Structured() {
		return
	}
	fmt.Fprintf(a.out, format+"\n", args...)
}

// reportOutcome prints where the play flow leads.
func (a *app) reportOutcome(out *playflow.Outcome) {
	if out == nil {
		return
	}
	if out.Kind == playflow.Hash {
		logging.Debug("CLI", "Play flow continues at %s", out.Target)
		return
	}
	a.say("Continue in your browser: %s", out.Target)
}

// playParams collects the gameworld parameters of a command.
type playParams struct {
	server string
	uc     string
	ad     string
}

func (p *playParams) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.server, "server", "", "Gameworld uuid or id to play on")
	cmd.Flags().StringVar(&p.uc, "uc", "", "Invite code from a friend")
	cmd.Flags().StringVar(&p.ad, "ad", "", "Advertisement code")
}

func (p playParams) values() url.Values {
	q := url.Values{}
	if p.server != "" {
		q.Set("server", p.server)
	}
	if p.uc != "" {
		q.Set("uc", p.uc)
	}
	if p.ad != "" {
		q.Set("ad", p.ad)
	}
	return q
}

// location builds a lobby location from a hash and query pairs, keeping the
// order of pairs. Empty values are left out.
func location(hash string, q url.Values, pairs ...string) string {
	var parts []string
	for _, k := range navigation.PreservedParams {
		if v := q.Get(k); v != "" {
			parts = append(parts, k+"="+url.QueryEscape(v))
		}
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		parts = append(parts, pairs[i]+"="+url.QueryEscape(pairs[i+1]))
	}
	loc := "/"
	if len(parts) > 0 {
		loc += "?" + strings.Join(parts, "&")
	}
	return loc + hash
}
