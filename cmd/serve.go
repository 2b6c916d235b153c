package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TreasuryDash/internal/appmanager"
	"TreasuryDash/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the services listed in services.yaml",
	Long: `Starts the logger, the cash HTTP API, the scheduled report job and the
file watcher in the order given by the service sequence file, then waits
for SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	env, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	appmanager.SetEnv(env)

	manager := appmanager.NewAppManager()

	// Load service configs from YAML
	servicesCfg, err := appmanager.LoadServiceSequence(settings.ServicesPath)
	if err != nil {
		return fmt.Errorf("failed to load service sequence: %w", err)
	}

	// Automatically register all services
	manager.AutoRegisterServices(servicesCfg)

	if err := manager.StartAll(); err != nil {
		manager.StopAll()
		return fmt.Errorf("failed to start: %w", err)
	}
	log.Info().Strs("services", manager.ServiceNames()).Msg("Treasury services running")

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	if err := manager.StopAll(); err != nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	return nil
}
