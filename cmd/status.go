package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrel-ai/attendant/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running assistant",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s:%d/health", cfg.API.Host, cfg.API.Port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Println("attendant: not running")
		return nil
	}
	defer resp.Body.Close()

	var health struct {
		Status string `json:"status"`
		Uptime int    `json:"uptime"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}

	fmt.Println("attendant Status")
	fmt.Println()
	fmt.Printf("Config: %s\n", configPathOrDefault())
	fmt.Printf("API: %s\n", url)
	fmt.Printf("Status: %s\n", health.Status)
	fmt.Printf("Uptime: %ds\n", health.Uptime)
	fmt.Printf("Storage: %s\n", cfg.Storage.Backend)
	return nil
}

func configPathOrDefault() string {
	if configPath != "" {
		return configPath
	}
	return config.GetConfigPath()
}
