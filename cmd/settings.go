package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/contentstack/contentstack-management-go/internal/cli"
	"github.com/contentstack/contentstack-management-go/internal/client"
	"github.com/contentstack/contentstack-management-go/internal/config"
	internaloauth "github.com/contentstack/contentstack-management-go/internal/oauth"
	"github.com/contentstack/contentstack-management-go/pkg/logging"
)

// globalFlags are the persistent flags of the root command. Only flags the
// user actually set override the loaded configuration.
type globalFlags struct {
	configPath   string
	envFile      string
	endpoint     string
	apiKey       string
	appID        string
	clientID     string
	clientSecret string
	redirectURI  string
	logLevel     string
	output       string
	noPersist    bool
	quiet        bool
}

var (
	flags globalFlags

	// activeConfig is the merged configuration of the running command.
	activeConfig config.Config

	// logOutput receives log records; tests point it at a buffer.
	logOutput io.Writer = os.Stderr

	// clientOptions are added to every client, for tests.
	clientOptions []client.Option
)

func registerGlobalFlags(cmd *cobra.Command) {
	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		defaultPath = ""
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config-path", defaultPath, "Configuration directory")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Environment file loaded before the configuration")
	pf.StringVar(&flags.endpoint, "endpoint", "", "Management API endpoint (env: CONTENTSTACK_ENDPOINT)")
	pf.StringVar(&flags.apiKey, "api-key", "", "Stack API key (env: CONTENTSTACK_API_KEY)")
	pf.StringVar(&flags.appID, "app-id", "", "OAuth app id (env: CONTENTSTACK_APP_ID)")
	pf.StringVar(&flags.clientID, "client-id", "", "OAuth client id (env: CONTENTSTACK_CLIENT_ID)")
	pf.StringVar(&flags.clientSecret, "client-secret", "", "OAuth client secret, disables PKCE (env: CONTENTSTACK_CLIENT_SECRET)")
	pf.StringVar(&flags.redirectURI, "redirect-uri", "", "OAuth redirect URI (env: CONTENTSTACK_REDIRECT_URI)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (env: CONTENTSTACK_LOG_LEVEL)")
	pf.StringVarP(&flags.output, "output", "o", string(cli.OutputFormatTable), "Output format (table, json, yaml)")
	pf.BoolVar(&flags.noPersist, "no-persist", false, "Keep tokens in memory only")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress non-essential output")
}

// loadSettings merges .env, config.yaml, the environment and the flags into
// activeConfig and sets up logging.
func loadSettings(cmd *cobra.Command, _ []string) error {
	if err := cli.ValidateOutputFormat(flags.output); err != nil {
		return err
	}
	if flags.envFile != "" {
		if err := config.LoadDotEnv(flags.envFile); err != nil {
			return err
		}
	}

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	if err := cfg.Validate(false); err != nil {
		return err
	}

	logging.InitForCLI(logging.ParseLevel(cfg.LogLevel), logOutput)
	logging.Debug("CLI", "Using endpoint %s (oauth=%t, persist=%t)", cfg.Endpoint, cfg.HasOAuth(), !cfg.NoPersist)

	activeConfig = cfg
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	for name, field := range map[string]struct {
		target *string
		value  string
	}{
		"endpoint":      {&cfg.Endpoint, flags.endpoint},
		"api-key":       {&cfg.APIKey, flags.apiKey},
		"app-id":        {&cfg.OAuth.AppID, flags.appID},
		"client-id":     {&cfg.OAuth.ClientID, flags.clientID},
		"client-secret": {&cfg.OAuth.ClientSecret, flags.clientSecret},
		"redirect-uri":  {&cfg.OAuth.RedirectURI, flags.redirectURI},
		"log-level":     {&cfg.LogLevel, flags.logLevel},
	} {
		if fs.Changed(name) {
			*field.target = field.value
		}
	}
	if fs.Changed("no-persist") {
		cfg.NoPersist = flags.noPersist
	}
}

// requireOAuth fails when no OAuth app is configured.
func requireOAuth() error {
	if err := activeConfig.Validate(true); err != nil {
		return fmt.Errorf("an OAuth app is required: %w", err)
	}
	return nil
}

// newClient builds the API client for activeConfig. Tokens are persisted
// under the token directory unless --no-persist is set.
func newClient(extra ...client.Option) (*client.Client, error) {
	cfg := activeConfig
	clientCfg := client.Config{
		Endpoint:        cfg.Endpoint,
		APIKey:          cfg.APIKey,
		OrganizationUID: cfg.OrganizationUID,
		Version:         GetVersion(),
		EarlyAccess:     cfg.EarlyAccess,
		MaxAttempts:     cfg.MaxAttempts,
		RateLimit:       cfg.RateLimit,
	}

	var opts []client.Option
	if cfg.HasOAuth() {
		oauthCfg := cfg.OAuth
		clientCfg.OAuth = &oauthCfg

		if !cfg.NoPersist {
			store, err := internaloauth.NewFileStore(cfg.TokenStorageDir)
			if err != nil {
				return nil, err
			}
			opts = append(opts, client.WithPersister(store))
		}
	}

	opts = append(opts, clientOptions...)
	return client.New(clientCfg, append(opts, extra...)...)
}

// oauthClient is newClient for commands that need the OAuth handler.
func oauthClient(extra ...client.Option) (*client.Client, error) {
	if err := requireOAuth(); err != nil {
		return nil, err
	}
	return newClient(extra...)
}

func outputFormat() cli.OutputFormat {
	return cli.OutputFormat(flags.output)
}

// classify maps a failure to an error that tells the user what to do next.
func classify(c *client.Client, err error) error {
	endpoint := activeConfig.Endpoint
	if c != nil {
		endpoint = c.Endpoint()
	}
	return cli.ClassifyError(err, activeConfig.OAuth.AppID, endpoint)
}

// printf writes to the command output unless --quiet is set.
func printf(cmd *cobra.Command, format string, args ...interface{}) {
	if !flags.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}
