package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kpaulsen/vmsbridge/bridge"
	"github.com/kpaulsen/vmsbridge/config"
	"github.com/kpaulsen/vmsbridge/dahua"
	"github.com/kpaulsen/vmsbridge/filter"
	"github.com/kpaulsen/vmsbridge/hikcentral"
	"github.com/kpaulsen/vmsbridge/uniview"
)

var (
	cfgFile          string
	cfg              *config.Config
	logger           zerolog.Logger
	hikcentralClient *hikcentral.Client
	dahuaClient      *dahua.Client
	univiewClient    *uniview.Client
	inventory        *bridge.Inventory

	// Command flags
	filterExpr string
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vmsbridge",
	Short: "A unified CLI for HikCentral, Dahua ICC and Uniview VMS platforms",
	Long: `vmsbridge talks to HikCentral OpenAPI, Dahua ICC and Uniview VMS
installations through a single normalized interface. Each platform keeps its
own authentication scheme; vmsbridge handles signing, sessions and token
renewal so commands can just query devices.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: teardownApp,
}

// SetVersion sets the version information shown by --version
func SetVersion(version, buildTime string) {
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and platform clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override log level from command line if specified
	if cmd.Flags().Changed("debug") && debug {
		cfg.Logging.Level = "debug"
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Debug-level logging also turns on per-request logging in the clients.
	verbose := cfg.Logging.Level == "debug"

	var sources []bridge.Source

	if cfg.Hikcentral.Enabled {
		hikcentralClient, err = hikcentral.NewClient(hikcentralClientConfig(cfg.Hikcentral, verbose), logger)
		if err != nil {
			return fmt.Errorf("failed to create HikCentral client: %w", err)
		}
		sources = append(sources, bridge.HikCentralSource{Client: hikcentralClient})
	}

	if cfg.Dahua.Enabled {
		dahuaClient, err = dahua.NewClient(dahuaClientConfig(cfg.Dahua, verbose), logger)
		if err != nil {
			return fmt.Errorf("failed to create Dahua client: %w", err)
		}
		sources = append(sources, bridge.DahuaSource{Client: dahuaClient})
	}

	if cfg.Uniview.Enabled {
		univiewClient, err = uniview.NewClient(univiewClientConfig(cfg.Uniview, verbose), logger)
		if err != nil {
			return fmt.Errorf("failed to create Uniview client: %w", err)
		}
		sources = append(sources, bridge.UniviewSource{Client: univiewClient})
	}

	inventory = bridge.NewInventory(logger, sources...)

	return nil
}

// hikcentralClientConfig maps the config file section onto a client config.
func hikcentralClientConfig(c config.HikcentralConfig, debug bool) hikcentral.Config {
	return hikcentral.Config{
		Host:          c.Host,
		Port:          c.Port,
		Protocol:      c.Protocol,
		AppKey:        c.AppKey,
		AppSecret:     c.AppSecret,
		Timeout:       c.Timeout,
		Debug:         debug,
		SkipTLSVerify: c.SkipTLSVerify,
	}
}

// dahuaClientConfig maps the config file section onto a client config.
func dahuaClientConfig(c config.DahuaConfig, debug bool) dahua.Config {
	return dahua.Config{
		Host:          c.Host,
		Port:          c.Port,
		Protocol:      c.Protocol,
		Username:      c.Username,
		Password:      c.Password,
		ClientID:      c.ClientID,
		ClientSecret:  c.ClientSecret,
		Timeout:       c.Timeout,
		Debug:         debug,
		SkipTLSVerify: c.SkipTLSVerify,
	}
}

// univiewClientConfig maps the config file section onto a client config.
func univiewClientConfig(c config.UniviewConfig, debug bool) uniview.Config {
	return uniview.Config{
		Host:              c.Host,
		Port:              c.Port,
		Protocol:          c.Protocol,
		Username:          c.Username,
		Password:          c.Password,
		KeepAliveInterval: c.KeepAliveInterval,
		Timeout:           c.Timeout,
		Debug:             debug,
		SkipTLSVerify:     c.SkipTLSVerify,
	}
}

// teardownApp closes platform clients and stops their background work
func teardownApp(cmd *cobra.Command, args []string) error {
	if univiewClient != nil {
		univiewClient.Close()
	}
	if dahuaClient != nil {
		dahuaClient.Close()
	}
	if hikcentralClient != nil {
		hikcentralClient.Close()
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices across all enabled platforms",
	Long: `Collect the device inventory from every enabled platform and print it
as a single normalized list. An optional filter expression narrows the
output, e.g. --filter 'Online && Type == "camera"'.`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
}

func runDevices(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	devices, err := inventory.Collect(ctx)
	if err != nil {
		return err
	}

	if filterExpr != "" {
		f, err := filter.New(filterExpr)
		if err != nil {
			return err
		}
		devices, err = f.Apply(devices)
		if err != nil {
			return err
		}
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		return nil
	}

	fmt.Printf("\nFound %d devices:\n", len(devices))
	fmt.Println(strings.Repeat("-", 80))

	for _, d := range devices {
		status := "offline"
		if d.Online {
			status = "online"
		}
		fmt.Printf("• [%s] %s (%s)\n", d.Vendor, d.Name, d.ID)
		fmt.Printf("  Type: %s  Status: %s\n", d.Type, status)
	}

	return nil
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connectivity to all enabled platforms",
	Long:  `Authenticate against each enabled platform and report the result.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	failures := 0

	if hikcentralClient != nil {
		fmt.Printf("Testing connection to HikCentral at %s...\n", cfg.Hikcentral.Host)
		if cameras, err := hikcentralClient.ListCameras(ctx); err != nil {
			failures++
			fmt.Printf("✗ HikCentral: %v\n", err)
		} else {
			fmt.Printf("✓ HikCentral: %d cameras\n", len(cameras))
		}
	}

	if dahuaClient != nil {
		fmt.Printf("Testing connection to Dahua ICC at %s...\n", cfg.Dahua.Host)
		if devices, err := dahuaClient.ListDevices(ctx); err != nil {
			failures++
			fmt.Printf("✗ Dahua ICC: %v\n", err)
		} else {
			fmt.Printf("✓ Dahua ICC: %d devices\n", len(devices))
		}
	}

	if univiewClient != nil {
		fmt.Printf("Testing connection to Uniview VMS at %s...\n", cfg.Uniview.Host)
		if info, err := univiewClient.GetSystemInfo(ctx); err != nil {
			failures++
			fmt.Printf("✗ Uniview VMS: %v\n", err)
		} else {
			fmt.Printf("✓ Uniview VMS: %s (%s)\n", info.DeviceModel, info.SoftwareVersion)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d platform(s) unreachable", failures)
	}

	fmt.Println("\nAll enabled platforms reachable.")
	return nil
}
