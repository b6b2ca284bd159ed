// Package getcmder provides the get command that fetches the latest event from
// a running masque relay.
package getcmder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/masque/api"
	"github.com/papercomputeco/masque/pkg/cliui"
	"github.com/papercomputeco/masque/pkg/config"
	"github.com/papercomputeco/masque/pkg/logger"
)

const requestTimeout = 10 * time.Second

type getCommander struct {
	target string
	json   bool

	out        io.Writer
	httpClient *http.Client
}

const getLongDesc string = `Fetch the latest event from a running masque relay.

By default prints the latest event data exactly as served. With --json the
full event (id, event, data) is printed as indented JSON.

The relay address comes from --target, MASQUE_CLIENT_TARGET or client.target
in config.toml.

Examples:
  masque get
  masque get --json
  masque get --target http://127.0.0.1:3459`

const getShortDesc string = "Fetch the latest event from a running relay"

func NewGetCmd() *cobra.Command {
	cmder := &getCommander{
		httpClient: &http.Client{Timeout: requestTimeout},
	}

	cmd := &cobra.Command{
		Use:   "get",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagTarget})
			cmder.target = v.GetString("client.target")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagTarget, &cmder.target)
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print the full event as JSON")

	return cmd
}

func (c *getCommander) run() error {
	styled := false
	if f, ok := c.out.(*os.File); ok {
		styled = logger.IsTerminal(f)
	}

	var body []byte
	fetch := func() error {
		var err error
		body, err = c.fetch()
		return err
	}

	if styled {
		fmt.Fprintf(c.out, "\n  %s %s\n\n",
			cliui.HeaderStyle.Render("masque"),
			cliui.DimStyle.Render(c.target),
		)
		if err := cliui.Step(c.out, "Fetching latest event", fetch); err != nil {
			return err
		}
		fmt.Fprintln(c.out)
	} else if err := fetch(); err != nil {
		return err
	}

	if c.json {
		var indented bytes.Buffer
		if err := json.Indent(&indented, body, "", "  "); err != nil {
			return fmt.Errorf("decoding event: %w", err)
		}
		indented.WriteByte('\n')
		_, err := c.out.Write(indented.Bytes())
		return err
	}

	_, err := c.out.Write(body)
	if err == nil && styled {
		fmt.Fprintln(c.out)
	}
	return err
}

func (c *getCommander) fetch() ([]byte, error) {
	path := "/"
	if c.json {
		path = "/event"
	}
	url := strings.TrimRight(c.target, "/") + path

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("contacting relay at %s: %w", c.target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading relay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp api.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("relay returned %d", resp.StatusCode)
	}

	return body, nil
}
