package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "Print the WebDriver server status",
	Description: `Query the server status endpoint and print the result as JSON.
Works without a session.

Examples:
  pagekit status
  pagekit -s http://127.0.0.1:4444 status`,
	Action: runStatus,
}

var sourceCommand = &cli.Command{
	Name:  "source",
	Usage: "Print the page or view hierarchy source",
	Description: `Print the current page source (web) or view hierarchy XML (mobile).

Examples:
  pagekit --session f4a1... source`,
	Action: runSource,
}

var screenshotCommand = &cli.Command{
	Name:  "screenshot",
	Usage: "Capture the viewport as PNG",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file",
			Value:   "screenshot.png",
		},
	},
	Action: runScreenshot,
}

func runStatus(c *cli.Context) error {
	if err := setup(c); err != nil {
		return err
	}
	client := webdriver.NewClient(c.String("server"))
	status, err := client.Status()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}

func runSource(c *cli.Context) error {
	client, err := connect(c)
	if err != nil {
		return err
	}
	source, err := client.Source()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, source)
	return nil
}

func runScreenshot(c *cli.Context) error {
	client, err := connect(c)
	if err != nil {
		return err
	}
	data, err := client.Screenshot()
	if err != nil {
		return err
	}
	path := c.String("output")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved %d bytes to %s\n", len(data), path)
	return nil
}
