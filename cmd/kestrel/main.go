// Kestrel CLI runs the math demo deployment and inspects the recordings it
// produces.
package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kestrel",
	Short: "Kestrel CLI runs demo deployments and reads their recordings.",
	Long: `Kestrel CLI runs the math demo deployment, with or without the live
monitoring server, and reads back the events, telemetry, command
completions, and run properties it records.`,
}

func main() {
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func envString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}

	return defaultValue
}

func envFloat32(key string, defaultValue float32) float32 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 32); err == nil {
			return float32(v)
		}
	}

	return defaultValue
}
