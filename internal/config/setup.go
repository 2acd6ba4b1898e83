package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"golang.org/x/term"
)

var (
	telegramAPIURL = "https://api.telegram.org"
	geminiAPIURL   = "https://generativelanguage.googleapis.com"
)

// envFileOrder is the order keys are written to the env file.
var envFileOrder = []string{"BOT_TOKEN", "GEMINI_API_KEY", "ADMIN_TELEGRAM_ID"}

// IsInteractiveTerminal returns true if both stdin and stdout are TTYs.
// This is used to determine if we can run the interactive setup wizard.
func IsInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// RunSetupWizard runs an interactive wizard to collect the configuration.
// Returns true if setup was successful and the bot should continue starting.
func RunSetupWizard() bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("🗿 Chad or Chud Bot - First-time Setup"))
	fmt.Println()

	var botToken, geminiKey, adminID string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram Bot Token").
				Description("Message @BotFather on Telegram → /newbot → copy token").
				Value(&botToken).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("token is required")
					}
					return validateTelegramToken(s)
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API Key").
				Description("Get yours at https://aistudio.google.com/apikey").
				Value(&geminiKey).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("API key is required")
					}
					return validateGeminiKey(s)
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Your Telegram User ID (optional)").
				Description("Enables /stats for you. Message @userinfobot to get your ID").
				Value(&adminID).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if _, err := strconv.ParseInt(s, 10, 64); err != nil {
						return errors.New("must be a number")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nSetup cancelled.")
			return false
		}
		fmt.Printf("\nError: %v\n", err)
		return false
	}

	values := map[string]string{
		"BOT_TOKEN":      botToken,
		"GEMINI_API_KEY": geminiKey,
	}
	if adminID != "" {
		values["ADMIN_TELEGRAM_ID"] = adminID
	}

	configPath, err := FilePath()
	if err == nil {
		err = writeEnvFile(configPath, values)
	}
	if err != nil {
		fmt.Printf("\nError saving configuration: %v\n", err)
		WaitOnWindows()
		return false
	}

	for k, v := range values {
		os.Setenv(k, v)
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)
	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuration saved"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()
	fmt.Println("Starting bot...")
	fmt.Println()

	return true
}

func newValidationClient() *resty.Client {
	return resty.New().SetTimeout(10 * time.Second)
}

// validateTelegramToken validates a Telegram bot token by calling the getMe API.
func validateTelegramToken(token string) error {
	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
	}

	resp, err := newValidationClient().R().
		SetResult(&result).
		SetError(&result).
		Get(fmt.Sprintf("%s/bot%s/getMe", telegramAPIURL, token))
	if err != nil {
		return errors.New("connection failed - check your internet")
	}

	if !result.OK {
		if result.Description != "" {
			return errors.New(result.Description)
		}
		return fmt.Errorf("token rejected by Telegram (HTTP %d)", resp.StatusCode())
	}
	return nil
}

// validateGeminiKey validates a Gemini API key with the lightweight models
// list endpoint.
func validateGeminiKey(key string) error {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	resp, err := newValidationClient().R().
		SetQueryParam("key", key).
		SetError(&apiErr).
		Get(geminiAPIURL + "/v1beta/models")
	if err != nil {
		return errors.New("connection failed - check your internet")
	}

	switch code := resp.StatusCode(); {
	case code == 400 || code == 401 || code == 403:
		if apiErr.Error.Message != "" {
			return errors.New(apiErr.Error.Message)
		}
		return fmt.Errorf("API key rejected (HTTP %d)", code)
	case code != 200:
		return fmt.Errorf("unexpected response (HTTP %d)", code)
	}
	return nil
}

// writeEnvFile writes values to path with 0600 permissions since the file
// contains secrets.
func writeEnvFile(path string, values map[string]string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	// Quoted so godotenv reads special characters back unchanged
	for _, key := range envFileOrder {
		if val, ok := values[key]; ok {
			if _, err := fmt.Fprintf(f, "%s=%q\n", key, val); err != nil {
				return fmt.Errorf("failed to write %s: %w", key, err)
			}
		}
	}
	return nil
}
