// Package cli provides the command-line interface for pagekit.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/logger"
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "WebDriver server URL",
		Value:   "http://127.0.0.1:4723",
		EnvVars: []string{"PAGEKIT_SERVER"},
	},
	&cli.StringFlag{
		Name:    "session",
		Usage:   "Existing session ID to attach to",
		EnvVars: []string{"PAGEKIT_SESSION"},
	},
	&cli.StringFlag{
		Name:    "caps",
		Usage:   "JSON or YAML file with capabilities for a new session",
		EnvVars: []string{"PAGEKIT_CAPS"},
	},
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "pagekit.yaml with wait and cache defaults",
		EnvVars: []string{"PAGEKIT_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to a file instead of stderr",
		EnvVars: []string{"PAGEKIT_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"PAGEKIT_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "pagekit",
		Usage:   "Inspect and drive WebDriver sessions",
		Version: Version,
		Description: `Pagekit talks to a WebDriver server (Selenium, Appium, UiAutomator2)
to inspect sessions and drive simple interactions from the shell.

Examples:
  pagekit status
  pagekit --caps caps.json source
  pagekit --session f4a1... find --using "accessibility id" --value login
  pagekit --session f4a1... tap --x 540 --y 960`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			statusCommand,
			sourceCommand,
			screenshotCommand,
			findCommand,
			tapCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup applies the global flags: config file, logging, and log level.
func setup(c *cli.Context) error {
	if path := c.String("config"); path != "" {
		d, err := config.Load(path)
		if err != nil {
			return err
		}
		config.Set(d)
		logger.SetCallerPrefix(d.Log.Prefix, d.Log.CaseSensitive)
		logger.SetDebug(d.Log.Debug)
	}
	if path := c.String("log-file"); path != "" {
		if err := logger.Init(path); err != nil {
			return err
		}
	}
	if c.Bool("verbose") {
		logger.SetDebug(true)
	}
	return nil
}

// connect builds a session client from the global flags: attach when a
// session ID is given, otherwise create a session from the caps file.
func connect(c *cli.Context) (*webdriver.Client, error) {
	if err := setup(c); err != nil {
		return nil, err
	}
	client := webdriver.NewClient(c.String("server"))
	if id := c.String("session"); id != "" {
		client.AttachSession(id)
		return client, nil
	}
	capsPath := c.String("caps")
	if capsPath == "" {
		return nil, fmt.Errorf("either --session or --caps is required")
	}
	caps, err := parseCapsFile(capsPath)
	if err != nil {
		return nil, err
	}
	if err := client.NewSession(caps); err != nil {
		return nil, err
	}
	return client, nil
}

// parseCapsFile reads capabilities from a YAML or JSON file; yaml.v3
// parses both.
func parseCapsFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read caps file: %w", err)
	}
	var caps map[string]interface{}
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("failed to parse caps file %s: %w", path, err)
	}
	return caps, nil
}
