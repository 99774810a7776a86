package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/danieljhkim/cleansweep/internal/config"
	"github.com/danieljhkim/cleansweep/internal/executor"
)

// loadConfig resolves the data paths and overlays config.yaml settings.
func loadConfig() (*config.Paths, *config.Config, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, nil, err
	}
	cfg.Apply(paths)

	if err := paths.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	return paths, cfg, nil
}

// terminalConfirm builds a ConfirmFunc that prompts on out and reads y/N
// answers from in. Anything but an explicit yes is a denial.
func terminalConfirm(in io.Reader, out io.Writer) executor.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

// approveAll answers every prompt with yes. Wired only behind the explicit
// --yes flag; automation must opt in to mutations, never receive them
// implicitly.
func approveAll(string) bool { return true }
