package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/lgmendez/diasync/internal/channel"
	"github.com/lgmendez/diasync/internal/config"
	"github.com/lgmendez/diasync/internal/coordinator"
	"github.com/lgmendez/diasync/internal/diagram"
	"github.com/lgmendez/diasync/internal/gateway"
	"github.com/lgmendez/diasync/internal/progress"
	"github.com/lgmendez/diasync/internal/store"
)

// workspace bundles the synchronization layer the commands drive: the
// REST gateway, optional event channel, the in-memory store, and the
// coordinator orchestrating them.
type workspace struct {
	cfg   *config.Config
	store *store.Store
	coord *coordinator.Coordinator
	sock  *channel.Socket
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `diasync init` to create a config file", err)
	}
	return cfg, nil
}

// openWorkspace builds the coordinator stack from the config. With
// withChannel set it also dials the websocket so push updates flow into
// the store; commands that only issue one-shot operations skip it.
func openWorkspace(withChannel bool) (*workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(cfg.ServerURL, cfg.Token, gateway.WithHTTPClient(&http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}))
	if err != nil {
		return nil, fmt.Errorf("configuring gateway: %w", err)
	}

	w := &workspace{cfg: cfg, store: store.New()}

	opts := []coordinator.Option{}
	if withChannel {
		sock, err := channel.Dial(cfg.SocketURL, cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("connecting event channel: %w", err)
		}
		w.sock = sock
		opts = append(opts, coordinator.WithChannel(sock))
	}

	w.coord = coordinator.New(gw, w.store, cfg.SessionUser(), opts...)
	return w, nil
}

// Close tears down the coordinator and the websocket, if one was dialed.
func (w *workspace) Close() {
	w.coord.Close()
	if w.sock != nil {
		w.sock.Close()
	}
}

// withSpinner runs fn with a progress reporter active for its duration.
func withSpinner(message string, fn func() error) error {
	rep := progress.NewReporter()
	rep.Start(message)
	defer rep.Stop()
	return fn()
}

// printDiagram renders one diagram in the list format shared by the
// list and watch commands.
func printDiagram(d diagram.Diagram, selected bool) {
	marker := " "
	if selected {
		marker = "*"
	}
	fmt.Printf("%s %s  %s\n", marker, d.ID, d.Name)
	fmt.Printf("    owner: %s %s <%s>\n", d.Owner.FirstName, d.Owner.LastName, d.Owner.Email)
	if len(d.SharedParticipants) > 0 {
		fmt.Printf("    shared with %d participant(s):\n", len(d.SharedParticipants))
		for _, p := range d.SharedParticipants {
			fmt.Printf("      %s <%s>\n", p.ID, p.Email)
		}
	}
	fmt.Printf("    updated %s\n", d.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
}
