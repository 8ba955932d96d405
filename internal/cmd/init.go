package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joern1811/chatstats/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with the participants' display names",
	Long: `Interactively creates the chatstats config file.
Prompts for the sender's and the recipient's display names exactly as they
appear in the export, and writes them to ~/.config/chatstats/config.json.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	return writeInitConfig(cmd.InOrStdin(), cmd.OutOrStdout(), configDir())
}

func writeInitConfig(in io.Reader, out io.Writer, dir string) error {
	configPath := filepath.Join(dir, "config.json")
	reader := bufio.NewReader(in)

	existing := map[string]any{}

	if _, err := os.Stat(configPath); err == nil {
		existing, _ = readExistingConfig(configPath)

		fmt.Fprintf(out, "Config already exists at %s\n", configPath)
		fmt.Fprint(out, "Overwrite? [y/N]: ")

		if !strings.EqualFold(readLine(reader), "y") {
			return nil
		}
	}

	current := config.ParticipantsConfig{}
	if p, ok := existing["participants"].(map[string]any); ok {
		current.Sender, _ = p["sender"].(string)
		current.Recipient, _ = p["recipient"].(string)
	}

	sender := prompt(reader, out, "Sender display name", current.Sender)
	recipient := prompt(reader, out, "Recipient display name", current.Recipient)

	cfg := config.Config{Participants: config.ParticipantsConfig{Sender: sender, Recipient: recipient}}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // path from XDG_CONFIG_HOME or user home dir
		return fmt.Errorf("creating config directory: %w", err)
	}

	existing["participants"] = map[string]string{
		"sender":    sender,
		"recipient": recipient,
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Config written to %s\n", configPath)
	return nil
}

func prompt(r *bufio.Reader, out io.Writer, label, current string) string {
	if current != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}

	// Names may contain spaces, so read the whole line.
	if answer := readLine(r); answer != "" {
		return answer
	}
	return current
}

func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func readExistingConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from XDG_CONFIG_HOME or user home dir
	if err != nil {
		return map[string]any{}, err
	}

	cfg := map[string]any{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return map[string]any{}, err
	}

	return cfg, nil
}
