package main

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestConfig writes a config JSON to a temp file and loads it
func writeTestConfig(t *testing.T, configJSON string) ConfigLoadResult {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), ".kitabu.json")
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return loadConfigFromPath(configPath)
}

func TestLoadConfigDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nonexistent.json")

	result := loadConfigFromPath(configPath)

	if result.Status != "Default" {
		t.Errorf("Expected status Default for a missing file, got %q", result.Status)
	}
	if result.HasError {
		t.Error("Expected no error for a missing file")
	}

	config := result.Config
	if config.WindowWidth != defaultWidth || config.WindowHeight != defaultHeight {
		t.Errorf("Expected default window %dx%d, got %dx%d",
			defaultWidth, defaultHeight, config.WindowWidth, config.WindowHeight)
	}
	if config.LongPressTime != 500 {
		t.Errorf("Expected long press time 500, got %d", config.LongPressTime)
	}
	if config.LongPressMove != 10.0 {
		t.Errorf("Expected long press move 10.0, got %v", config.LongPressMove)
	}
	if config.PenColor != "#e53935" || config.HighlightColor != "#ffeb3b" {
		t.Errorf("Expected default tool colors, got %s and %s", config.PenColor, config.HighlightColor)
	}
	if config.SortMethod != SortNatural {
		t.Errorf("Expected natural sort, got %d", config.SortMethod)
	}
	if !config.ResetZoomOnPageChange {
		t.Error("Expected zoom reset on page change by default")
	}
	if config.CacheSize != 32 || config.PreloadCount != 4 || !config.PreloadEnabled {
		t.Errorf("Expected default cache 32 and preload 4 enabled, got %d/%d/%v",
			config.CacheSize, config.PreloadCount, config.PreloadEnabled)
	}
	if config.AnnotationDir == "" {
		t.Error("Expected a default annotation directory")
	}
	if len(config.Keybindings["exit"]) == 0 {
		t.Error("Expected default keybindings to be populated")
	}
	if config.Mouse.WheelSensitivity != 1.0 || config.Mouse.DragThreshold != 5 {
		t.Errorf("Expected default mouse settings, got %+v", config.Mouse)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name       string
		configJSON string
		check      func(t *testing.T, config Config)
	}{
		{
			name:       "Valid config",
			configJSON: `{"window_width": 1200, "window_height": 900, "double_page": true}`,
			check: func(t *testing.T, config Config) {
				if config.WindowWidth != 1200 || config.WindowHeight != 900 {
					t.Errorf("Expected 1200x900, got %dx%d", config.WindowWidth, config.WindowHeight)
				}
				if !config.DoublePage {
					t.Error("Expected double page mode")
				}
			},
		},
		{
			name:       "Width too small",
			configJSON: `{"window_width": 200, "window_height": 600}`,
			check: func(t *testing.T, config Config) {
				if config.WindowWidth != defaultWidth {
					t.Errorf("Expected width %d, got %d", defaultWidth, config.WindowWidth)
				}
				if config.WindowHeight != 600 {
					t.Errorf("Expected height 600, got %d", config.WindowHeight)
				}
			},
		},
		{
			name:       "Height too small",
			configJSON: `{"window_width": 800, "window_height": 100}`,
			check: func(t *testing.T, config Config) {
				if config.WindowHeight != defaultHeight {
					t.Errorf("Expected height %d, got %d", defaultHeight, config.WindowHeight)
				}
			},
		},
		{
			name:       "Long press timing out of range",
			configJSON: `{"long_press_time": 50, "long_press_move": 0.2}`,
			check: func(t *testing.T, config Config) {
				if config.LongPressTime != 500 {
					t.Errorf("Expected long press time 500, got %d", config.LongPressTime)
				}
				if config.LongPressMove != 10.0 {
					t.Errorf("Expected long press move 10.0, got %v", config.LongPressMove)
				}
			},
		},
		{
			name:       "Long press timing in range",
			configJSON: `{"long_press_time": 800, "long_press_move": 16}`,
			check: func(t *testing.T, config Config) {
				if config.LongPressTime != 800 {
					t.Errorf("Expected long press time 800, got %d", config.LongPressTime)
				}
				if config.LongPressMove != 16.0 {
					t.Errorf("Expected long press move 16.0, got %v", config.LongPressMove)
				}
			},
		},
		{
			name:       "Bad tool settings",
			configJSON: `{"pen_color": "red-ish", "pen_width": 500, "highlight_width": 0}`,
			check: func(t *testing.T, config Config) {
				if config.PenColor != "#e53935" {
					t.Errorf("Expected default pen color, got %s", config.PenColor)
				}
				if config.PenWidth != 3.0 {
					t.Errorf("Expected pen width 3.0, got %v", config.PenWidth)
				}
				if config.HighlightWidth != 16.0 {
					t.Errorf("Expected highlight width 16.0, got %v", config.HighlightWidth)
				}
			},
		},
		{
			name:       "Cache and preload out of range",
			configJSON: `{"cache_size": 1, "preload_count": 99}`,
			check: func(t *testing.T, config Config) {
				if config.CacheSize != 32 {
					t.Errorf("Expected cache size 32, got %d", config.CacheSize)
				}
				if config.PreloadCount != 16 {
					t.Errorf("Expected preload count capped at 16, got %d", config.PreloadCount)
				}
			},
		},
		{
			name:       "Unknown sort method",
			configJSON: `{"sort_method": 42}`,
			check: func(t *testing.T, config Config) {
				if config.SortMethod != SortNatural {
					t.Errorf("Expected natural sort fallback, got %d", config.SortMethod)
				}
			},
		},
		{
			name:       "Tiny help font",
			configJSON: `{"help_font_size": 8}`,
			check: func(t *testing.T, config Config) {
				if config.HelpFontSize != 24.0 {
					t.Errorf("Expected help font 24.0, got %v", config.HelpFontSize)
				}
			},
		},
		{
			name:       "Mouse settings out of range",
			configJSON: `{"mouse": {"wheel_sensitivity": 99, "double_click_time": 5, "drag_threshold": 500, "drag_sensitivity": 0}}`,
			check: func(t *testing.T, config Config) {
				if config.Mouse.WheelSensitivity != 1.0 {
					t.Errorf("Expected wheel sensitivity 1.0, got %v", config.Mouse.WheelSensitivity)
				}
				if config.Mouse.DoubleClickTime != 300 {
					t.Errorf("Expected double click time 300, got %d", config.Mouse.DoubleClickTime)
				}
				if config.Mouse.DragThreshold != 5 {
					t.Errorf("Expected drag threshold 5, got %d", config.Mouse.DragThreshold)
				}
				if config.Mouse.DragSensitivity != 1.0 {
					t.Errorf("Expected drag sensitivity 1.0, got %v", config.Mouse.DragSensitivity)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := writeTestConfig(t, tt.configJSON)
			if result.Status != "OK" {
				t.Errorf("Expected status OK, got %q", result.Status)
			}
			tt.check(t, result.Config)
		})
	}
}

func TestConfigInvalidJSON(t *testing.T) {
	result := writeTestConfig(t, `{"window_width": }`)

	if result.Status != "Error" || !result.HasError {
		t.Errorf("Expected an error result, got status %q", result.Status)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected a warning about the broken file")
	}
	// Defaults survive a broken file
	if result.Config.WindowWidth != defaultWidth {
		t.Errorf("Expected default width, got %d", result.Config.WindowWidth)
	}
}

func TestConfigKeybindingMerge(t *testing.T) {
	result := writeTestConfig(t, `{"keybindings": {"next_page": ["KeyN"]}}`)

	if result.Status != "OK" {
		t.Fatalf("Expected status OK, got %q", result.Status)
	}
	config := result.Config

	// The custom binding is kept
	if got := config.Keybindings["next_page"]; len(got) != 1 || got[0] != "KeyN" {
		t.Errorf("Expected next_page bound to KeyN, got %v", got)
	}
	// Actions the user did not mention keep their defaults
	if got := config.Keybindings["exit"]; len(got) == 0 || got[0] != "KeyQ" {
		t.Errorf("Expected exit to keep its default, got %v", got)
	}
}

func TestConfigKeybindingConflictFallsBack(t *testing.T) {
	// KeyQ is the default exit binding, so rebinding next_page to it
	// conflicts after the defaults are merged in
	result := writeTestConfig(t, `{"keybindings": {"next_page": ["KeyQ"]}}`)

	if result.Status != "Warning" {
		t.Errorf("Expected status Warning, got %q", result.Status)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected a keybinding warning")
	}
	// All bindings revert to defaults
	if got := result.Config.Keybindings["next_page"]; len(got) == 0 || got[0] != "ArrowRight" {
		t.Errorf("Expected next_page back at its default, got %v", got)
	}
}

func TestConfigUnknownKeyFallsBack(t *testing.T) {
	result := writeTestConfig(t, `{"keybindings": {"undo": ["SuperKey"]}}`)

	if result.Status != "Warning" {
		t.Errorf("Expected status Warning, got %q", result.Status)
	}
	if got := result.Config.Keybindings["undo"]; len(got) == 0 || got[0] != "Ctrl+KeyZ" {
		t.Errorf("Expected undo back at its default, got %v", got)
	}
}

func TestConfigMousebindingValidation(t *testing.T) {
	result := writeTestConfig(t, `{"mousebindings": {"pie_menu": ["TripleClick"]}}`)

	if result.Status != "Warning" {
		t.Errorf("Expected status Warning, got %q", result.Status)
	}
	if got := result.Config.Mousebindings["pie_menu"]; len(got) == 0 || got[0] != "RightClick" {
		t.Errorf("Expected pie_menu back at its default, got %v", got)
	}
}

func TestValidateKeyString(t *testing.T) {
	validKeys := getValidKeyNames()

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"Plain key", "KeyA", false},
		{"Shifted key", "Shift+Slash", false},
		{"Two modifiers", "Ctrl+Shift+KeyZ", false},
		{"Unknown key", "KeyÄ", true},
		{"Unknown modifier", "Meta+KeyZ", true},
		{"Function key", "F11", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateKeyString(tt.key, validKeys)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateKeyString(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".kitabu.json")

	result := loadConfigFromPath(configPath)
	config := result.Config
	config.WindowWidth = 1440
	config.DoublePage = true
	saveConfigToPath(config, configPath)

	reloaded := loadConfigFromPath(configPath)
	if reloaded.Config.WindowWidth != 1440 {
		t.Errorf("Expected saved width 1440, got %d", reloaded.Config.WindowWidth)
	}
	if !reloaded.Config.DoublePage {
		t.Error("Expected saved double page mode")
	}
}

func TestSaveConfigRefusesTinyWindow(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".kitabu.json")

	config := loadConfigFromPath(configPath).Config
	config.WindowWidth = 100
	saveConfigToPath(config, configPath)

	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Error("Expected no config file for an invalid window size")
	}
}

func TestGetSortMethodName(t *testing.T) {
	if got := getSortMethodName(SortLexical); got != "Lexical" {
		t.Errorf("Expected Lexical, got %q", got)
	}
}
