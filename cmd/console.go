package cmd

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrel-ai/attendant/internal/config"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open an interactive session with a running assistant",
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Console.Host, cfg.Console.Port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s (is the assistant running?): %w", addr, err)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s. Type \\q or .quit to leave.\n\n", addr)

	done := make(chan struct{})
	go func() {
		io.Copy(os.Stdout, conn)
		close(done)
	}()
	go func() {
		io.Copy(conn, os.Stdin)
		conn.Close()
	}()

	<-done
	return nil
}
