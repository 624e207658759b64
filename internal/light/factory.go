package light

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// Output backends accepted by NewOutputs.
const (
	BackendAuto   = "auto"
	BackendSysfs  = "sysfs"
	BackendSerial = "serial"
	BackendMemory = "memory"
	BackendNoop   = "noop"
)

// OutputConfig selects and parameterizes the output backend.
type OutputConfig struct {
	Backend     string
	SysfsRoot   string
	SysfsGreen  string
	SysfsOrange string
	SerialPort  string
	SerialBaud  int
}

// DefaultOutputConfig returns the configuration used when nothing is set.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Backend:     BackendAuto,
		SysfsRoot:   sysfsLEDPath,
		SysfsGreen:  "green_led",
		SysfsOrange: "orange_led",
		SerialPort:  "/dev/ttyUSB0",
		SerialBaud:  9600,
	}
}

// NewOutputs opens the configured backend. The auto backend uses sysfs when
// both LEDs exist and falls back to no-op lines otherwise.
func NewOutputs(cfg OutputConfig, logger *slog.Logger) (Outputs, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SysfsRoot == "" {
		cfg.SysfsRoot = sysfsLEDPath
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendAuto
	}

	if backend == BackendAuto {
		boardModel := detectBoard()
		logger.Info("Detecting board for switch light", "board_model", boardModel)
		if sysfsAvailable(cfg.SysfsRoot, cfg.SysfsGreen, cfg.SysfsOrange) {
			backend = BackendSysfs
		} else {
			logger.Info("No switch light LEDs found, using no-op outputs",
				"sysfs_root", cfg.SysfsRoot,
				"green", cfg.SysfsGreen,
				"orange", cfg.SysfsOrange)
			backend = BackendNoop
		}
	}

	switch backend {
	case BackendSysfs:
		green, err := openSysfsLine(cfg.SysfsRoot, cfg.SysfsGreen)
		if err != nil {
			return Outputs{}, err
		}
		orange, err := openSysfsLine(cfg.SysfsRoot, cfg.SysfsOrange)
		if err != nil {
			return Outputs{}, err
		}
		logger.Info("Using sysfs switch light outputs", "green", cfg.SysfsGreen, "orange", cfg.SysfsOrange)
		return Outputs{Green: green, Orange: orange}, nil

	case BackendSerial:
		out, err := openSerial(cfg.SerialPort, cfg.SerialBaud)
		if err != nil {
			return Outputs{}, err
		}
		logger.Info("Using serial tower light outputs", "port", cfg.SerialPort, "baud", cfg.SerialBaud)
		return out, nil

	case BackendMemory:
		out, _, _ := NewMemoryOutputs()
		return out, nil

	case BackendNoop:
		return Outputs{
			Green:  newNoopLine("green", logger),
			Orange: newNoopLine("orange", logger),
		}, nil

	default:
		return Outputs{}, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	return strings.TrimRight(string(data), "\x00")
}
