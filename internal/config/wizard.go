package config

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// RunWizard interactively builds a configuration, prompting for the
// backend endpoints and the identity to sync as.
func RunWizard() (*Config, error) {
	cfg := DefaultConfig()

	// 1. Backend endpoints.
	serverPrompt := promptui.Prompt{
		Label:   "Diagram server URL",
		Default: cfg.ServerURL,
	}
	serverURL, err := serverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server URL: %w", err)
	}
	cfg.ServerURL = serverURL

	socketPrompt := promptui.Prompt{
		Label:   "Event channel URL (ws:// or wss://)",
		Default: cfg.SocketURL,
	}
	socketURL, err := socketPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("socket URL: %w", err)
	}
	cfg.SocketURL = socketURL

	// 2. Credential.
	tokenPrompt := promptui.Prompt{
		Label: "Bearer token (leave empty for none)",
		Mask:  '*',
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	cfg.Token = token

	// 3. Identity.
	idPrompt := promptui.Prompt{
		Label: "User id",
	}
	userID, err := idPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	cfg.User.ID = userID

	emailPrompt := promptui.Prompt{
		Label: "User email",
	}
	email, err := emailPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("user email: %w", err)
	}
	cfg.User.Email = email

	firstPrompt := promptui.Prompt{
		Label: "First name",
	}
	first, err := firstPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("first name: %w", err)
	}
	cfg.User.FirstName = first

	lastPrompt := promptui.Prompt{
		Label: "Last name",
	}
	last, err := lastPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("last name: %w", err)
	}
	cfg.User.LastName = last

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
