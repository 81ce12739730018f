package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lobbyctl/internal/cli"
	"lobbyctl/internal/flows"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/playflow"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var (
	authEmail          string
	authCaptcha        string
	authNewsletter     bool
	authCode           string
	authActivationCode string
	authSign           string
	authToken          string
	authState          string
	authRegister       bool
	authParams         playParams
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your lobby account and session",
	Long: `Manage your lobby account and session.

The auth command group registers and activates accounts, logs in with
email or a social provider, and shows or ends the current session. The
session cookie is kept in the configuration directory.

Examples:
  lobbyctl auth login                        # Log in interactively
  lobbyctl auth login --server <uuid>        # Log in and enter a gameworld
  lobbyctl auth register --email me@example.com
  lobbyctl auth activate --code <code>       # Continue an activation
  lobbyctl auth social google --token <jwt>  # Log in with a Google credential
  lobbyctl auth status                       # Show the current session
  lobbyctl auth logout                       # End the session`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email or account name",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the session cookie",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	Args:  cobra.NoArgs,
	RunE:  runAuthRegister,
}

var authActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Activate a registered account",
	Long: `Activate a registered account.

The code identifies the registration and is part of the activation link.
The six digit activation code from the mail can be given with
--activation-code or entered when asked.`,
	Args: cobra.NoArgs,
	RunE: runAuthActivate,
}

var authResendCmd = &cobra.Command{
	Use:   "resend",
	Short: "Send the activation mail again",
	Args:  cobra.NoArgs,
	RunE:  runAuthResend,
}

var authSocialCmd = &cobra.Command{
	Use:   "social <google|facebook|apple>",
	Short: "Log in with a token from a social provider",
	Long: `Log in with a token issued by Google, Facebook or Apple.

Google expects the credential (an id token), Facebook the access token and
Apple the id token together with the state sent with the sign-in request.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthSocial,
}

func init() {
	authLoginCmd.Flags().StringVar(&authEmail, "email", "", "Email or account name")
	authParams.register(authLoginCmd)

	authRegisterCmd.Flags().StringVar(&authEmail, "email", "", "Email address")
	authRegisterCmd.Flags().BoolVar(&authNewsletter, "newsletter", false, "Subscribe to the newsletter")
	authRegisterCmd.Flags().StringVar(&authCaptcha, "captcha", "", "Captcha token")
	authParams.register(authRegisterCmd)

	authActivateCmd.Flags().StringVar(&authCode, "code", "", "Registration code from the activation link")
	authActivateCmd.Flags().StringVar(&authActivationCode, "activation-code", "", "Six digit code from the activation mail")
	authActivateCmd.Flags().StringVar(&authEmail, "email", "", "Email address from the activation link")
	authActivateCmd.Flags().StringVar(&authSign, "sign", "", "Signature from the activation link")
	authActivateCmd.Flags().StringVar(&authCaptcha, "captcha", "", "Captcha token")
	_ = authActivateCmd.MarkFlagRequired("code")
	authParams.register(authActivateCmd)

	authResendCmd.Flags().StringVar(&authCode, "code", "", "Registration code from the activation link")
	_ = authResendCmd.MarkFlagRequired("code")

	authSocialCmd.Flags().StringVar(&authToken, "token", "", "Credential, access token or id token of the provider")
	authSocialCmd.Flags().StringVar(&authState, "state", "", "State sent with an Apple sign-in request")
	authSocialCmd.Flags().StringVar(&authCaptcha, "captcha", "", "Captcha token")
	authSocialCmd.Flags().BoolVar(&authRegister, "register", false, "Report failures as a registration")
	_ = authSocialCmd.MarkFlagRequired("token")
	authParams.register(authSocialCmd)

	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd, authRegisterCmd,
		authActivateCmd, authResendCmd, authSocialCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, location("#loginLobby", authParams.values()))
	if err != nil {
		return err
	}
	defer a.close()
	return a.drive(cmd.Context(), dialogInput{email: authEmail})
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.logout(cmd.Context()); err != nil {
		return err
	}
	a.say("Logged out.")
	return nil
}

// logout ends the lobby session and forgets the cookies. The lobby is told
// even when the session check would not find a session.
func (a *app) logout(ctx context.Context) error {
	_ = a.progress.Run("Logging out...", func() error {
		a.store.Logout(ctx)
		return nil
	})
	return a.cookies.Clear()
}

// sessionStatus is the structured output of auth status.
type sessionStatus struct {
	Lobby         string `json:"lobby" yaml:"lobby"`
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	Account       string `json:"account,omitempty" yaml:"account,omitempty"`
	GUID          string `json:"guid,omitempty" yaml:"guid,omitempty"`
	Locale        string `json:"locale" yaml:"locale"`
	Unread        int    `json:"unreadNotifications" yaml:"unreadNotifications"`
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	status := sessionStatus{Lobby: a.cfg.Lobby.Host, Locale: a.locale.Key}
	if acc := a.session(ctx); acc != nil {
		status.Authenticated = true
		status.Account = acc.Name
		status.GUID = acc.GUID
		status.Unread = a.lobby.GetCalendarNotifications(ctx).UnreadCount
	}

	if ok, err := a.printer.Data(status); ok {
		return err
	}

	t := a.printer.Table("Lobby", "Account", "Locale", "Unread")
	account := "not logged in"
	if status.Authenticated {
		account = status.Account
	}
	t.Append(status.Lobby, account, status.Locale, status.Unread)
	t.Render()

	if !status.Authenticated {
		return &cli.AuthRequiredError{Lobby: a.cfg.Lobby.Host}
	}
	return nil
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, location("#registration", authParams.values()))
	if err != nil {
		return err
	}
	defer a.close()
	return a.drive(cmd.Context(), dialogInput{
		email:      authEmail,
		captcha:    authCaptcha,
		newsletter: authNewsletter,
	})
}

func runAuthActivate(cmd *cobra.Command, args []string) error {
	start := location("#activation", authParams.values(),
		"code", authCode,
		"activationCode", authActivationCode,
		"email", authEmail,
		"sign", authSign,
	)
	a, err := newApp(cmd, start)
	if err != nil {
		return err
	}
	defer a.close()
	return a.drive(cmd.Context(), dialogInput{captcha: authCaptcha})
}

func runAuthResend(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	var until time.Time
	err = a.progress.Run("Requesting mail...", func() error {
		var err error
		until, err = a.service.ResendActivation(cmd.Context(), authCode)
		return err
	})
	if err != nil {
		return err
	}
	a.say("We sent you another mail.")
	if wait := identity.CooldownSeconds(until, time.Now()); wait > 0 {
		a.say("You can request another mail in %d seconds.", wait)
	}
	return nil
}

func runAuthSocial(cmd *cobra.Command, args []string) error {
	provider, err := identity.ParseProvider(args[0])
	if err != nil {
		return err
	}
	payload, err := socialPayload(provider, authToken, authState, time.Now())
	if err != nil {
		return err
	}

	a, err := newApp(cmd, location("", authParams.values()))
	if err != nil {
		return err
	}
	defer a.close()

	origin := flows.FromLogin
	if authRegister {
		origin = flows.FromRegistration
	}
	social := flows.NewSocial(a.service, a.store, a.play, a.nav, a.locale.Locale, origin)

	ctx := cmd.Context()
	var out *playflow.Outcome
	var target string
	_ = a.progress.Run("Logging in with "+string(provider)+"...", func() error {
		out, target = social.Complete(ctx, provider, payload, authCaptcha, a.nav.Current().Query)
		return nil
	})
	if target != "" {
		return a.drive(ctx, dialogInput{})
	}
	if acc := a.store.Account(); acc != nil {
		a.say("Logged in as %s", acc.Name)
	}
	a.reportOutcome(out)
	return nil
}

// socialPayload builds the provider data of a social login. Id tokens are
// inspected without verification so an expired token fails before any
// request is made.
func socialPayload(provider identity.Provider, token, state string, now time.Time) (map[string]any, error) {
	switch provider {
	case identity.ProviderGoogle:
		if err := checkIDToken(token, now); err != nil {
			return nil, err
		}
		return flows.GooglePayload(token), nil
	case identity.ProviderApple:
		if state == "" {
			return nil, errors.New("apple sign-in requires --state")
		}
		if err := checkIDToken(token, now); err != nil {
			return nil, err
		}
		return flows.ApplePayload(token, state), nil
	default:
		return flows.FacebookPayload(token), nil
	}
}

func checkIDToken(raw string, now time.Time) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return fmt.Errorf("malformed id token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("malformed id token: %w", err)
	}
	if exp != nil && !exp.After(now) {
		return &cli.AuthFailedError{
			Operation: "social login",
			Reason:    fmt.Errorf("id token expired at %s", exp.Format(time.RFC3339)),
		}
	}
	return nil
}
