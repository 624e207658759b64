package light

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfsLine drives one LED through the Linux sysfs LED interface.
type sysfsLine struct {
	name       string
	brightness string
}

// openSysfsLine claims the LED <root>/<name> for manual control by setting its
// trigger to "none".
func openSysfsLine(root, name string) (*sysfsLine, error) {
	ledPath := filepath.Join(root, name)
	if _, err := os.Stat(ledPath); err != nil {
		return nil, fmt.Errorf("LED %q not found at %s: %w", name, ledPath, err)
	}

	triggerPath := filepath.Join(ledPath, "trigger")
	if _, err := os.Stat(triggerPath); err == nil {
		if err := os.WriteFile(triggerPath, []byte("none"), 0644); err != nil {
			return nil, fmt.Errorf("failed to set LED %q trigger to none: %w", name, err)
		}
	}

	return &sysfsLine{
		name:       name,
		brightness: filepath.Join(ledPath, "brightness"),
	}, nil
}

func (s *sysfsLine) Write(level bool) error {
	value := "0"
	if level {
		value = "1"
	}
	if err := os.WriteFile(s.brightness, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to set LED %q brightness: %w", s.name, err)
	}
	return nil
}

func (s *sysfsLine) Read() (bool, error) {
	data, err := os.ReadFile(s.brightness)
	if err != nil {
		return false, fmt.Errorf("failed to read LED %q brightness: %w", s.name, err)
	}
	value := strings.TrimSpace(string(data))
	return value != "" && value != "0", nil
}

// sysfsAvailable reports whether both named LEDs exist under root.
func sysfsAvailable(root, green, orange string) bool {
	for _, name := range []string{green, orange} {
		if name == "" {
			return false
		}
		if _, err := os.Stat(filepath.Join(root, name, "brightness")); err != nil {
			return false
		}
	}
	return true
}
