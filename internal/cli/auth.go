package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repoexplorer/pkg/config"
	"github.com/matzehuels/repoexplorer/pkg/integrations/github"
	"github.com/matzehuels/repoexplorer/pkg/session"
)

const (
	envClientID   = "GITHUB_CLIENT_ID"
	loginTimeout  = 5 * time.Minute
	whoamiTimeout = 30 * time.Second
)

func (c *CLI) githubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github",
		Short: "Manage the GitHub login used for searches",
		Long: `Log in to GitHub so searches are authenticated.

The GraphQL API rejects anonymous requests. Logging in stores a token in
$XDG_CONFIG_HOME/repoexplorer/sessions/ that is used whenever no token is
set through --token, GITHUB_TOKEN, .env or the config file.`,
	}
	cmd.AddCommand(c.githubLoginCommand(), c.githubLogoutCommand(), c.githubWhoamiCommand())
	return cmd
}

func (c *CLI) githubLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in with the GitHub device flow",
		Long: `Start the GitHub device authorization flow.

You'll be given a code to enter at https://github.com/login/device.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if existing := savedSession(ctx); existing != nil {
				printInfo("Already logged in as @%s", existing.Login())
				printDetail("Run 'repoexplorer github logout' first to switch accounts")
				return nil
			}
			if src := c.cfg.TokenSource; src != config.SourceNone {
				printWarning("A token from the %s is set and will be used instead of this login", src)
			}
			_, err := c.runDeviceLogin(ctx)
			return err
		},
	}
}

func (c *CLI) githubLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored GitHub login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deleteLogin(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

func (c *CLI) githubWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in GitHub user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := loadLogin(ctx)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, whoamiTimeout)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Checking login...")
			spinner.Start()
			user, err := github.NewClient(sess.AccessToken, github.WithTimeout(c.cfg.Timeout)).FetchUser(ctx)
			if err != nil {
				spinner.StopWithError("Login no longer valid")
				return fmt.Errorf("verify login: %w", err)
			}
			spinner.Stop()

			printSuccess("GitHub login")
			printKeyValue("Username", "@"+user.Login)
			if user.Name != "" {
				printKeyValue("Name", user.Name)
			}
			if sess.Scope != "" {
				printKeyValue("Scopes", sess.Scope)
			}
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			printKeyValue("Expires", fmt.Sprintf("%s (%d days left)",
				sess.ExpiresAt.Format("Jan 2, 2006"), int(sess.Remaining().Hours()/24)))

			if src := c.cfg.TokenSource; src != config.SourceNone && src != config.SourceSession {
				printDetail("Searches currently use the token from the %s", src)
			}
			return nil
		},
	}
}

func openLogins() (*session.LoginStore, error) {
	logins, err := session.NewLoginStore("")
	if err != nil {
		return nil, fmt.Errorf("open login store: %w", err)
	}
	return logins, nil
}

// loadLogin returns the stored login or an error telling the user to log in.
func loadLogin(ctx context.Context) (*session.Session, error) {
	logins, err := openLogins()
	if err != nil {
		return nil, err
	}
	sess, err := logins.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load login: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in (run 'repoexplorer github login' first)")
	}
	return sess, nil
}

// savedSession returns the stored login, or nil when there is none or it
// cannot be read.
func savedSession(ctx context.Context) *session.Session {
	sess, err := loadLogin(ctx)
	if err != nil {
		loggerFromContext(ctx).Debug("no saved login", "err", err)
		return nil
	}
	return sess
}

func saveLogin(ctx context.Context, tok *github.OAuthToken, user *github.User) (*session.Session, error) {
	logins, err := openLogins()
	if err != nil {
		return nil, err
	}
	sess, err := session.New(tok, user, logins.TTL())
	if err != nil {
		return nil, fmt.Errorf("create login: %w", err)
	}
	if err := logins.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save login: %w", err)
	}
	return sess, nil
}

func deleteLogin(ctx context.Context) error {
	logins, err := openLogins()
	if err != nil {
		return err
	}
	if err := logins.Delete(ctx); err != nil {
		return fmt.Errorf("delete login: %w", err)
	}
	return nil
}

func (c *CLI) runDeviceLogin(ctx context.Context) (*session.Session, error) {
	clientID := os.Getenv(envClientID)
	if clientID == "" {
		clientID = github.DefaultClientID
	}
	oauth := github.NewOAuthClient(github.OAuthConfig{ClientID: clientID})

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	code, err := oauth.RequestDeviceCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("request device code: %w", err)
	}

	printNewline()
	fmt.Println(StyleTitle.Render("GitHub Device Authorization"))
	printNewline()
	printKeyValue("Code", StyleNumber.Render(code.UserCode))
	printKeyValue("URL", StyleLink.Render(code.VerificationURI))
	printNewline()

	if err := openBrowser(code.VerificationURI); err != nil {
		printDetail("Copy the URL above and paste it in your browser")
	} else {
		printDetail("Opening browser...")
	}
	printInline("Waiting for authorization...")

	tok, err := oauth.PollForToken(ctx, code.DeviceCode, code.Interval)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	user, err := github.NewClient(tok.AccessToken, github.WithTimeout(c.cfg.Timeout)).FetchUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	sess, err := saveLogin(ctx, tok, user)
	if err != nil {
		return nil, err
	}

	printSuccess("Logged in as @%s", user.Login)
	printNextStep("Try it", "repoexplorer search "+user.Login)
	return sess, nil
}

// openBrowser opens rawURL with the platform's URL handler. Only http and
// https URLs are opened.
func openBrowser(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
