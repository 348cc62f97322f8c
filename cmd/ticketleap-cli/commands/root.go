package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"ticketleap-admin/lib/configutil"
	"ticketleap-admin/lib/restyutil"
	"ticketleap-admin/lib/scrapers/ticketleap/core"
	"ticketleap-admin/lib/scrapers/ticketleap/edit"
	"ticketleap-admin/lib/serviceutil"
	"ticketleap-admin/lib/telemetry"

	"github.com/spf13/cobra"
)

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// defaults to https://www.ticketleap.com
	LoginUrl string `json:"login_url"`
	// requests per second
	RateLimit float64 `json:"rate_limit"`
}

var (
	verbose    *bool
	configName *string
	dumpDir    *string
)

var rootCmd = &cobra.Command{
	Use:   "ticketleap-cli",
	Short: "ticketleap-cli manages events, dates and tickets on a ticketleap account.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	configName = rootCmd.PersistentFlags().String(
		"config", "ticketleap.json5",
		"Config file, searched for from the working directory upwards.",
	)
	dumpDir = rootCmd.PersistentFlags().String(
		"dump", "",
		"Directory to write http exchanges to, rejected submissions are always written.",
	)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadRecursively[Config](*configName)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	configutil.OverrideFromEnv(&cfg.Username, "TICKETLEAP_USERNAME")
	configutil.OverrideFromEnv(&cfg.Password, "TICKETLEAP_PASSWORD")
	configutil.OverrideFromEnv(&cfg.LoginUrl, "TICKETLEAP_LOGIN_URL")

	if cfg.Username == "" || cfg.Password == "" {
		return Config{}, fmt.Errorf(
			"no credentials, set username and password in %s or TICKETLEAP_USERNAME and TICKETLEAP_PASSWORD",
			*configName,
		)
	}
	return cfg, nil
}

func login(ctx context.Context) *core.Session {
	cfg, err := readConfig()
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	opts := core.ClientOptions{
		LoginUrl:  cfg.LoginUrl,
		RateLimit: cfg.RateLimit,
	}
	if *dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpDir)
		if err != nil {
			serviceutil.Fatal("failed to create dump directory", err)
		}
		slog.InfoContext(ctx, "dumping http exchanges", "dir", output.Directory())
		opts.Output = output
	}

	slog.DebugContext(ctx, "logging in", "username", cfg.Username)
	session, err := core.Login(ctx, opts, cfg.Username, cfg.Password)
	if err != nil {
		serviceutil.Fatal("failed to login to ticketleap", err)
	}
	return session
}

func editClient(ctx context.Context) *edit.Client {
	return edit.NewClient(login(ctx))
}
