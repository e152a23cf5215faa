package main

import (
	"fmt"

	"github.com/ocxide/monee/internal/id"
	syncnode "github.com/ocxide/monee/sync/node"
)

// SyncBindCmd sets or changes the node's host binding, which is one of the
// two inputs the background sync task multiplexes (spec.md §4.7). A fresh
// node with no AppId yet registers with the host first.
type SyncBindCmd struct {
	HostURL string `required:"" default:"${node_host_url}" env:"MONEE_NODE_HOST_URL" help:"Host base URL, e.g. http://localhost:8080."`
}

func (c *SyncBindCmd) Run(app *App) error {
	if c.HostURL == "" {
		return fmt.Errorf("sync: --host-url is required (or set MONEE_NODE_HOST_URL / node_host_url in monee.yaml)")
	}

	self, bound, err := app.nc.Store.LoadSelfApp()
	if err != nil {
		return err
	}

	nodeID := self.AppID
	if !bound || self.AppID.IsZero() {
		client := syncnode.NewHostClient(c.HostURL, id.AppID{})
		registered, err := client.Register(app.ctx)
		if err != nil {
			return fmt.Errorf("registering with host: %w", err)
		}
		nodeID = registered
	}

	result := app.nc.Task.Bind(c.HostURL, nodeID)
	select {
	case err := <-result:
		if err != nil {
			return err
		}
	case <-app.ctx.Done():
		return app.ctx.Err()
	}

	fmt.Printf("bound to %s as node %s\n", c.HostURL, nodeID)
	return nil
}
