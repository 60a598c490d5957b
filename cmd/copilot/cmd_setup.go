package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/copilot/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Copilot Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		cfg.LLM.BaseURL = prompt(scanner, "LLM base URL", cfg.LLM.BaseURL)
		cfg.LLM.APIKey = prompt(scanner, "LLM API key", cfg.LLM.APIKey)
		cfg.LLM.Model = prompt(scanner, "LLM model name", cfg.LLM.Model)
		cfg.Telegram.Token = prompt(scanner, "Telegram bot token", cfg.Telegram.Token)

		cfg.Vehicle.Name = prompt(scanner, "Vehicle", cfg.Vehicle.Name)
		mileageStr := prompt(scanner, "Current mileage (km)", strconv.Itoa(cfg.Vehicle.FallbackMileage))
		if n, err := strconv.Atoi(mileageStr); err == nil && n > 0 {
			cfg.Vehicle.FallbackMileage = n
		}

		cfg.Weather.City = prompt(scanner, "Home city for weather", cfg.Weather.City)
		cfg.Briefing.City = cfg.Weather.City
		cfg.Briefing.Schedule = prompt(scanner, "Briefing schedule (cron)", cfg.Briefing.Schedule)

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
