package main

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
}

// actionDefinitions contains all action definitions with default keybindings,
// mouse bindings, and descriptions. Left-button gestures (pan, draw,
// double-click zoom) and the vertical wheel are handled by the pointer
// router, not this table, because they need positions.
var actionDefinitions = []ActionDefinition{
	{"exit", []string{"KeyQ"}, []string{}, "Quit"},
	{"close_overlay", []string{"Escape"}, []string{}, "Close overlay / put tool away"},
	{"help", []string{"Shift+Slash", "F1"}, []string{}, "Show/hide help"},
	{"info", []string{"KeyI"}, []string{}, "Show/hide book info"},
	{"thumbnails", []string{"KeyT"}, []string{}, "Show/hide thumbnail strip"},

	// Navigation
	{"next_page", []string{"ArrowRight", "PageDown", "Space"}, []string{"Forward"}, "Next page (or spread)"},
	{"prev_page", []string{"ArrowLeft", "PageUp", "Backspace"}, []string{"Back"}, "Previous page (or spread)"},
	{"first_page", []string{"Home"}, []string{}, "Jump to first page"},
	{"last_page", []string{"End"}, []string{}, "Jump to last page"},
	{"page_input", []string{"KeyG"}, []string{}, "Go to page (enter page number)"},
	{"toggle_view_mode", []string{"KeyD"}, []string{"MiddleClick"}, "Toggle single/double page view"},
	{"fullscreen", []string{"KeyF", "F11", "Enter"}, []string{}, "Toggle fullscreen"},

	// Zoom
	{"zoom_in", []string{"Equal", "Shift+Equal"}, []string{}, "Zoom in"},
	{"zoom_out", []string{"Minus"}, []string{}, "Zoom out"},
	{"zoom_reset", []string{"Key0", "Numpad0"}, []string{}, "Reset zoom and pan"},

	// Annotation
	{"tool_pen", []string{"KeyP"}, []string{}, "Draw with the pen"},
	{"tool_highlight", []string{"KeyH"}, []string{}, "Draw with the highlighter"},
	{"tool_off", []string{"KeyV"}, []string{}, "Put drawing tools away"},
	{"undo", []string{"Ctrl+KeyZ"}, []string{}, "Undo annotation step"},
	{"redo", []string{"Ctrl+KeyY", "Ctrl+Shift+KeyZ"}, []string{}, "Redo annotation step"},
	{"clear_annotations", []string{"Shift+KeyC"}, []string{}, "Clear annotations on visible pages"},
	{"save_annotations", []string{"Ctrl+KeyS"}, []string{}, "Save annotations now"},
	{"export_pdf", []string{"Ctrl+KeyE"}, []string{}, "Export annotated book as PDF"},

	{"pie_menu", []string{}, []string{"RightClick"}, "Open the pie menu"},
}

// ActionExecutor provides centralized action execution logic
// This eliminates the need for duplicate ExecuteAction implementations
// in both KeybindingManager and MousebindingManager
type ActionExecutor struct{}

// NewActionExecutor creates a new ActionExecutor instance
func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction executes the given action using the InputActions interface
// This is the single source of truth for all action execution logic
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	switch action {
	case "exit":
		inputActions.Exit()
	case "close_overlay":
		inputActions.CloseOverlay()
	case "help":
		inputActions.ToggleHelp()
	case "info":
		inputActions.ToggleInfo()
	case "thumbnails":
		inputActions.ToggleThumbnails()

	// Navigation
	case "next_page":
		inputActions.NavigateNext()
	case "prev_page":
		inputActions.NavigatePrevious()
	case "first_page":
		inputActions.JumpToPage(1)
	case "last_page":
		totalPages := inputActions.GetTotalPagesCount()
		if totalPages > 0 {
			inputActions.JumpToPage(totalPages)
		}
	case "page_input":
		if !inputState.IsInPageInputMode() {
			inputActions.EnterPageInputMode()
		}
	case "toggle_view_mode":
		inputActions.ToggleViewMode()
	case "fullscreen":
		inputActions.ToggleFullscreen()

	// Zoom
	case "zoom_in":
		inputActions.ZoomIn()
	case "zoom_out":
		inputActions.ZoomOut()
	case "zoom_reset":
		inputActions.ZoomReset()

	// Annotation
	case "tool_pen":
		inputActions.SelectPen()
	case "tool_highlight":
		inputActions.SelectHighlighter()
	case "tool_off":
		inputActions.DeselectTool()
	case "undo":
		inputActions.Undo()
	case "redo":
		inputActions.Redo()
	case "clear_annotations":
		inputActions.ClearAnnotations()
	case "save_annotations":
		inputActions.SaveAnnotations()
	case "export_pdf":
		inputActions.ExportPDF()

	case "pie_menu":
		inputActions.OpenPieMenu()

	default:
		return false
	}

	return true
}

// globalActionExecutor is the global instance of ActionExecutor used throughout the application
var globalActionExecutor = NewActionExecutor()

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = action.Keys
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = action.MouseActions
	}
	return mousebindings
}
