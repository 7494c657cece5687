package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime/debug"
	"strings"

	"github.com/brizzai/social-manager/internal/auth"
	"github.com/brizzai/social-manager/internal/auth/callback"
	"github.com/brizzai/social-manager/internal/auth/connections"
	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/auth/store"
	"github.com/brizzai/social-manager/internal/client"
	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/brizzai/social-manager/internal/requester"
	"github.com/brizzai/social-manager/internal/server"
	"github.com/brizzai/social-manager/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	Execute()
}

var (
	cfg *config.Config

	callbackProvider string
	callbackURL      string
	exportFormat     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "social-manager",
	Short: "Connect social media accounts through OAuth",
	Long: `Social Manager exchanges OAuth authorization codes for Instagram and TikTok
access tokens, keeps the connected accounts and answers connection checks.
Run "social-manager serve" to start the backend.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP backend",
	Run:   runServe,
}

var callbackCmd = &cobra.Command{
	Use:   "callback",
	Short: "Complete an authorization redirect against a running server",
	Long: `Completes the redirect a provider sent the browser to. Pass the full redirect
URL (or only its query string) with --url; the code is exchanged by the server.`,
	RunE: runCallback,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Browse and disconnect connected accounts",
	RunE:  runSettings,
}

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Query the connected accounts of a running server",
}

var connectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected accounts",
	Args:  cobra.NoArgs,
	RunE:  runConnectionsList,
}

var connectionsCheckCmd = &cobra.Command{
	Use:   "check <provider> <user-id>",
	Short: "Check whether an account is connected",
	Args:  cobra.ExactArgs(2),
	RunE:  runConnectionsCheck,
}

var connectionsDisconnectCmd = &cobra.Command{
	Use:   "disconnect <provider> <user-id>",
	Short: "Disconnect an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runConnectionsDisconnect,
}

var connectionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the connected accounts to stdout as YAML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runConnectionsExport,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}

		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return nil
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	}

	callbackCmd.Flags().StringVar(&callbackProvider, "provider", "", "Provider the redirect came from (taken from the URL path when empty)")
	callbackCmd.Flags().StringVar(&callbackURL, "url", "", "Redirect URL or query string")
	_ = callbackCmd.MarkFlagRequired("url")

	connectionsExportCmd.Flags().StringVar(&exportFormat, "format", connections.FormatYAML, "Output format, yaml or json")

	connectionsCmd.AddCommand(connectionsListCmd, connectionsCheckCmd, connectionsDisconnectCmd, connectionsExportCmd)
	rootCmd.AddCommand(serveCmd, callbackCmd, settingsCmd, connectionsCmd)
}

// runServe runs the backend until it receives a signal
func runServe(cmd *cobra.Command, args []string) {
	app := fx.New(
		fx.Supply(cfg),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		config.Module,
		logger.Module,
		requester.Module,
		auth.Module,
		server.Module,
	)
	if err := app.Err(); err != nil {
		pterm.Error.Printf("Failed to build server: %v\n", err)
		os.Exit(1)
	}
	app.Run()
}

func newClient() *client.Client {
	return client.New(&cfg.Client)
}

// runCallback drives one callback flow in the terminal UI
func runCallback(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()

	provider, query, err := parseRedirect(callbackProvider, callbackURL)
	if err != nil {
		return err
	}

	c := newClient()
	controller := callback.NewController(c, c, &cfg.Callback)
	flow := controller.Start(provider, query)

	p := tea.NewProgram(tui.NewCallbackApp(provider, flow, c), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	outcome := m.(tui.AppModel).Outcome()
	switch outcome.Status {
	case callback.StatusSuccess:
		pterm.Success.Println(outcome.Message)
	case callback.StatusError:
		pterm.Error.Println(outcome.Message)
		os.Exit(1)
	default:
		pterm.Warning.Println("Callback was interrupted before it finished")
	}
	return nil
}

// parseRedirect takes the provider from the flag or from a /auth/{provider}/
// path and the query from the URL
func parseRedirect(provider, raw string) (models.Provider, url.Values, error) {
	raw = strings.TrimSpace(raw)
	var query url.Values
	pathProvider := ""

	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "/") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", nil, fmt.Errorf("invalid redirect url: %w", err)
		}
		query = u.Query()
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i+1 < len(segments); i++ {
			if segments[i] == "auth" {
				pathProvider = segments[i+1]
				break
			}
		}
	} else {
		parsed, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
		if err != nil {
			return "", nil, fmt.Errorf("invalid redirect query: %w", err)
		}
		query = parsed
	}

	if provider == "" {
		provider = pathProvider
	}
	if provider == "" {
		return "", nil, errors.New("provider is required, pass --provider or a URL with an /auth/{provider}/ path")
	}
	p, err := models.ParseProvider(provider)
	if err != nil {
		return "", nil, err
	}
	return p, query, nil
}

func runSettings(cmd *cobra.Command, args []string) error {
	p := tea.NewProgram(tui.NewSettingsApp(newClient()), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	if m.(tui.AppModel).IsExported() {
		pterm.Info.Println("Export complete.")
	}
	return nil
}

func runConnectionsList(cmd *cobra.Command, args []string) error {
	list, err := newClient().Connections(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		pterm.Info.Println("No connected accounts.")
		return nil
	}

	data := pterm.TableData{{"Provider", "User ID", "Username"}}
	for _, c := range list {
		data = append(data, []string{c.Provider.String(), c.ProviderUserID, c.Username})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runConnectionsCheck(cmd *cobra.Command, args []string) error {
	provider, err := models.ParseProvider(args[0])
	if err != nil {
		return err
	}
	status, err := newClient().Check(cmd.Context(), provider, args[1])
	if err != nil {
		return err
	}
	if !status.IsConnected {
		pterm.Warning.Printfln("%s account %s is not connected", provider, args[1])
		os.Exit(3)
	}
	pterm.Success.Printfln("%s account %s is connected as %s", provider, args[1], pterm.LightGreen(status.Username))
	return nil
}

func runConnectionsDisconnect(cmd *cobra.Command, args []string) error {
	provider, err := models.ParseProvider(args[0])
	if err != nil {
		return err
	}
	err = newClient().Disconnect(cmd.Context(), provider, args[1])
	if errors.Is(err, store.ErrNotFound) {
		pterm.Warning.Printfln("No %s account %s is connected", provider, args[1])
		return nil
	}
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Disconnected %s account %s", provider, args[1])
	return nil
}

func runConnectionsExport(cmd *cobra.Command, args []string) error {
	list, err := newClient().Connections(cmd.Context())
	if err != nil {
		return err
	}
	return connections.Encode(os.Stdout, exportFormat, list)
}
