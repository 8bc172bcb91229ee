package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Window size constants
const (
	defaultWidth  = 1000
	defaultHeight = 700
	minWidth      = 400
	minHeight     = 300
)

// getDefaultKeybindings returns the default keybinding configuration
func getDefaultKeybindings() map[string][]string {
	return GetDefaultKeybindings()
}

// validateKeybindings validates the keybindings configuration
func validateKeybindings(keybindings map[string][]string) error {
	// Check for valid key formats and detect conflicts
	keyToAction := make(map[string]string)
	validKeys := getValidKeyNames()

	for action, keys := range keybindings {
		for _, keyStr := range keys {
			// Validate key format
			if err := validateKeyString(keyStr, validKeys); err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %v", keyStr, action, err)
			}

			// Check for conflicts
			if existingAction, exists := keyToAction[keyStr]; exists {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existingAction, action)
			}
			keyToAction[keyStr] = action
		}
	}

	return nil
}

// validateKeyString validates a single key string format
func validateKeyString(keyStr string, validKeys map[string]bool) error {
	parts := strings.Split(keyStr, "+")
	if len(parts) == 0 {
		return fmt.Errorf("empty key string")
	}

	// Last part should be the actual key
	keyName := parts[len(parts)-1]
	if !validKeys[keyName] {
		return fmt.Errorf("unknown key: %s", keyName)
	}

	// Check modifiers
	for i := 0; i < len(parts)-1; i++ {
		modifier := strings.ToLower(parts[i])
		if modifier != "shift" && modifier != "ctrl" && modifier != "alt" {
			return fmt.Errorf("unknown modifier: %s", parts[i])
		}
	}

	return nil
}

// getValidKeyNames returns a set of valid key names
func getValidKeyNames() map[string]bool {
	// Add all keys from the key mapping
	keyMapping := map[string]bool{
		// Letters
		"KeyA": true, "KeyB": true, "KeyC": true, "KeyD": true,
		"KeyE": true, "KeyF": true, "KeyG": true, "KeyH": true,
		"KeyI": true, "KeyJ": true, "KeyK": true, "KeyL": true,
		"KeyM": true, "KeyN": true, "KeyO": true, "KeyP": true,
		"KeyQ": true, "KeyR": true, "KeyS": true, "KeyT": true,
		"KeyU": true, "KeyV": true, "KeyW": true, "KeyX": true,
		"KeyY": true, "KeyZ": true,

		// Numbers
		"Key0": true, "Key1": true, "Key2": true, "Key3": true,
		"Key4": true, "Key5": true, "Key6": true, "Key7": true,
		"Key8": true, "Key9": true,

		// Special keys
		"Space": true, "Backspace": true, "Enter": true, "Escape": true,
		"Tab": true, "Home": true, "End": true, "PageUp": true, "PageDown": true,
		"ArrowUp": true, "ArrowDown": true, "ArrowLeft": true, "ArrowRight": true,

		// Function keys
		"F1": true, "F2": true, "F3": true, "F4": true,
		"F5": true, "F6": true, "F7": true, "F8": true,
		"F9": true, "F10": true, "F11": true, "F12": true,

		// Punctuation
		"Comma": true, "Period": true, "Slash": true, "Semicolon": true,
		"Quote": true, "Minus": true, "Equal": true,

		// Numpad
		"Numpad0": true, "Numpad1": true, "Numpad2": true, "Numpad3": true,
		"Numpad4": true, "Numpad5": true, "Numpad6": true, "Numpad7": true,
		"Numpad8": true, "Numpad9": true, "NumpadEnter": true,
	}

	return keyMapping
}

// getValidMouseActionNames returns a set of valid mouse action names
func getValidMouseActionNames() map[string]bool {
	return map[string]bool{
		"LeftClick": true, "RightClick": true, "MiddleClick": true,
		"Back": true, "Forward": true,
		"WheelUp": true, "WheelDown": true, "WheelLeft": true, "WheelRight": true,
		"DoubleLeftClick": true, "DoubleRightClick": true, "DoubleMiddleClick": true,
	}
}

// validateMousebindings validates the mousebindings configuration
func validateMousebindings(mousebindings map[string][]string) error {
	actionToBinding := make(map[string]string)
	validNames := getValidMouseActionNames()

	for action, bindings := range mousebindings {
		for _, mouseStr := range bindings {
			if err := validateKeyString(mouseStr, validNames); err != nil {
				return fmt.Errorf("invalid mouse binding '%s' for action '%s': %v", mouseStr, action, err)
			}
			if existingAction, exists := actionToBinding[mouseStr]; exists {
				return fmt.Errorf("mouse binding conflict: '%s' is bound to both '%s' and '%s'", mouseStr, existingAction, action)
			}
			actionToBinding[mouseStr] = action
		}
	}

	return nil
}

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Warning", "Error"
}

type Config struct {
	WindowWidth           int                 `json:"window_width"`
	WindowHeight          int                 `json:"window_height"`
	Fullscreen            bool                `json:"fullscreen"`
	DoublePage            bool                `json:"double_page"`
	ResetZoomOnPageChange bool                `json:"reset_zoom_on_page_change"`
	HelpFontSize          float64             `json:"help_font_size"`
	SortMethod            int                 `json:"sort_method"`
	CacheSize             int                 `json:"cache_size"`
	PreloadEnabled        bool                `json:"preload_enabled"`
	PreloadCount          int                 `json:"preload_count"`
	LongPressTime         int                 `json:"long_press_time"` // milliseconds
	LongPressMove         float64             `json:"long_press_move"` // pixels
	PenColor              string              `json:"pen_color"`
	PenWidth              float64             `json:"pen_width"`
	HighlightColor        string              `json:"highlight_color"`
	HighlightWidth        float64             `json:"highlight_width"`
	AnnotationDir         string              `json:"annotation_dir"`
	Keybindings           map[string][]string `json:"keybindings"`
	Mousebindings         map[string][]string `json:"mousebindings"`
	Mouse                 MouseSettings       `json:"mouse"`
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "kitabu.json"
	}
	return filepath.Join(homeDir, ".kitabu.json")
}

// defaultAnnotationDir is where page snapshots live unless the config says
// otherwise
func defaultAnnotationDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "kitabu-annotations"
	}
	return filepath.Join(homeDir, ".kitabu-annotations")
}

func loadConfig() ConfigLoadResult {
	return loadConfigFromPath(getConfigPath())
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	config := Config{
		WindowWidth:           defaultWidth,
		WindowHeight:          defaultHeight,
		Fullscreen:            false,
		DoublePage:            false,                      // Default to single page mode
		ResetZoomOnPageChange: true,                       // Page turns start at fit zoom
		HelpFontSize:          24.0,                       // Default help font size
		SortMethod:            SortNatural,                // Default to natural sort
		CacheSize:             32,                         // Default cache size for pages
		PreloadEnabled:        true,                       // Default: enable preloading
		PreloadCount:          4,                          // Default: preload up to 4 pages
		LongPressTime:         500,                       // Long-press threshold
		LongPressMove:         10.0,                      // Movement tolerance before cancel
		PenColor:              "#e53935",                 // Red pen
		PenWidth:              3.0,
		HighlightColor:        "#ffeb3b", // Yellow highlighter
		HighlightWidth:        16.0,
		AnnotationDir:         defaultAnnotationDir(),
		Keybindings:           getDefaultKeybindings(),   // Default keybindings
		Mousebindings:         GetDefaultMousebindings(), // Default mousebindings
		Mouse:                 GetDefaultMouseSettings(), // Default mouse settings
	}

	result := ConfigLoadResult{
		Config:   config,
		HasError: false,
		Warnings: []string{},
		Status:   "OK",
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		// Config file not found is not an error - use defaults
		result.Status = "Default"
		return result
	}

	if err := json.Unmarshal(data, &config); err != nil {
		// Invalid config file - log warning and use defaults
		log.Printf("Warning: Invalid config file %s, using defaults: %v", configPath, err)
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
		// Keep default config values
		return result
	}

	// Validate minimum size
	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}

	// Validate help font size (minimum 12px for readability)
	if config.HelpFontSize <= 12.0 {
		config.HelpFontSize = 24.0
	}

	// Validate sort method
	if config.SortMethod < SortNatural || config.SortMethod > SortModTime {
		config.SortMethod = SortNatural
	}

	// Validate cache size (double mode needs at least two slots)
	if config.CacheSize < 2 {
		config.CacheSize = 32
	} else if config.CacheSize > 128 {
		config.CacheSize = 128
	}

	// Validate preload count (minimum 1, maximum 16)
	if config.PreloadCount < 1 {
		config.PreloadCount = 4
	} else if config.PreloadCount > 16 {
		config.PreloadCount = 16
	}

	// Validate long-press timing and movement tolerance
	if config.LongPressTime < 100 || config.LongPressTime > 2000 {
		config.LongPressTime = 500
	}
	if config.LongPressMove < 1.0 || config.LongPressMove > 100.0 {
		config.LongPressMove = 10.0
	}

	// Validate tool colors and widths
	if _, err := parseHexColor(config.PenColor); err != nil {
		log.Printf("Warning: Invalid pen color %q, using default: %v", config.PenColor, err)
		config.PenColor = "#e53935"
	}
	if _, err := parseHexColor(config.HighlightColor); err != nil {
		log.Printf("Warning: Invalid highlight color %q, using default: %v", config.HighlightColor, err)
		config.HighlightColor = "#ffeb3b"
	}
	if config.PenWidth < 0.5 || config.PenWidth > 32.0 {
		config.PenWidth = 3.0
	}
	if config.HighlightWidth < 1.0 || config.HighlightWidth > 64.0 {
		config.HighlightWidth = 16.0
	}

	if config.AnnotationDir == "" {
		config.AnnotationDir = defaultAnnotationDir()
	}

	// Validate mouse settings
	if config.Mouse.WheelSensitivity < 0.1 || config.Mouse.WheelSensitivity > 10.0 {
		config.Mouse.WheelSensitivity = 1.0
	}
	if config.Mouse.DoubleClickTime < 100 || config.Mouse.DoubleClickTime > 1000 {
		config.Mouse.DoubleClickTime = 300
	}
	if config.Mouse.DragThreshold < 0 || config.Mouse.DragThreshold > 50 {
		config.Mouse.DragThreshold = 5
	}
	if config.Mouse.DragSensitivity < 0.1 || config.Mouse.DragSensitivity > 10.0 {
		config.Mouse.DragSensitivity = 1.0
	}

	// Validate keybindings - ensure defaults exist for missing actions
	if config.Keybindings == nil {
		config.Keybindings = getDefaultKeybindings()
	} else {
		// Fill in missing keybindings with defaults
		defaults := getDefaultKeybindings()
		for action, defaultKeys := range defaults {
			if _, exists := config.Keybindings[action]; !exists {
				config.Keybindings[action] = defaultKeys
			}
		}

		// Validate keybindings and resolve conflicts
		if err := validateKeybindings(config.Keybindings); err != nil {
			log.Printf("Warning: Invalid keybindings detected, using defaults: %v", err)
			config.Keybindings = getDefaultKeybindings()
			result.Status = "Warning"
			result.Warnings = append(result.Warnings, fmt.Sprintf("Keybinding errors: %v", err))
		}
	}

	// Validate mousebindings the same way
	if config.Mousebindings == nil {
		config.Mousebindings = GetDefaultMousebindings()
	} else {
		defaults := GetDefaultMousebindings()
		for action, defaultBindings := range defaults {
			if _, exists := config.Mousebindings[action]; !exists {
				config.Mousebindings[action] = defaultBindings
			}
		}

		if err := validateMousebindings(config.Mousebindings); err != nil {
			log.Printf("Warning: Invalid mousebindings detected, using defaults: %v", err)
			config.Mousebindings = GetDefaultMousebindings()
			result.Status = "Warning"
			result.Warnings = append(result.Warnings, fmt.Sprintf("Mousebinding errors: %v", err))
		}
	}

	// Update the result with the final config
	result.Config = config
	return result
}

// getSortMethodName returns the human-readable name of a sort method
func getSortMethodName(sortMethod int) string {
	strategy := GetSortStrategy(sortMethod)
	return strategy.Name()
}

func saveConfig(config Config) {
	saveConfigToPath(config, getConfigPath())
}

func saveConfigToPath(config Config, configPath string) {
	// Don't save if size is too small
	if config.WindowWidth < minWidth || config.WindowHeight < minHeight {
		log.Printf("Warning: Not saving config with invalid window size: %dx%d",
			config.WindowWidth, config.WindowHeight)
		return
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		log.Printf("Error: Failed to marshal config: %v", err)
		return
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		log.Printf("Error: Failed to save config to %s: %v", configPath, err)
	}
}
