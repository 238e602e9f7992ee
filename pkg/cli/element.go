package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pagekit/pkg/by"
	"github.com/devicelab-dev/pagekit/pkg/page"
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

var findCommand = &cli.Command{
	Name:  "find",
	Usage: "Locate elements",
	Description: `Locate an element by strategy and value and print its handle ID,
text and rect. With --all, print every matching handle ID, one per
line. IDs can be fed back into other tools attached to the same
session.

Examples:
  pagekit --session f4a1... find --using "css selector" --value "#login"
  pagekit --session f4a1... find --using "accessibility id" --value menu --all`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "using",
			Usage:    "Locator strategy (see W3C and Appium strategies)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "value",
			Usage:    "Locator value",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Print every match instead of the first",
		},
	},
	Action: runFind,
}

var tapCommand = &cli.Command{
	Name:  "tap",
	Usage: "Tap a coordinate or an element",
	Description: `Tap the given viewport coordinate, or the center of a located
element when a locator is given.

Examples:
  pagekit --session f4a1... tap --x 540 --y 960
  pagekit --session f4a1... tap --using "accessibility id" --value login`,
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "x", Value: -1, Usage: "Viewport x coordinate"},
		&cli.IntFlag{Name: "y", Value: -1, Usage: "Viewport y coordinate"},
		&cli.StringFlag{Name: "using", Usage: "Locator strategy"},
		&cli.StringFlag{Name: "value", Usage: "Locator value"},
	},
	Action: runTap,
}

func runFind(c *cli.Context) error {
	strategy := c.String("using")
	if !by.Valid(strategy) {
		return fmt.Errorf("unknown locator strategy %q, expected one of: %s",
			strategy, strings.Join(by.Strategies(), ", "))
	}
	client, err := connect(c)
	if err != nil {
		return err
	}
	if c.Bool("all") {
		handles, err := client.FindElements(strategy, c.String("value"))
		if err != nil {
			return err
		}
		for _, h := range handles {
			fmt.Fprintln(c.App.Writer, h.ID())
		}
		return nil
	}
	h, err := client.FindElement(strategy, c.String("value"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "id:   %s\n", h.ID())
	if text, err := h.Text(); err == nil && text != "" {
		fmt.Fprintf(c.App.Writer, "text: %s\n", text)
	}
	if rect, err := h.Rect(); err == nil {
		fmt.Fprintf(c.App.Writer, "rect: x=%d y=%d w=%d h=%d\n", rect.X, rect.Y, rect.Width, rect.Height)
	}
	return nil
}

func runTap(c *cli.Context) error {
	client, err := connect(c)
	if err != nil {
		return err
	}
	if strategy := c.String("using"); strategy != "" {
		if !by.Valid(strategy) {
			return fmt.Errorf("unknown locator strategy %q", strategy)
		}
		p := page.New(client)
		return page.NewElement(strategy, c.String("value")).Bind(p).Tap()
	}
	x, y := c.Int("x"), c.Int("y")
	if x < 0 || y < 0 {
		return fmt.Errorf("either --x/--y or --using/--value is required")
	}
	return tapCoordinate(client, x, y)
}

func tapCoordinate(client *webdriver.Client, x, y int) error {
	return client.TapAt(x, y)
}
