package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputHandler handles keyboard input and bound mouse actions
type InputHandler struct {
	inputActions        InputActions
	inputState          InputState
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, inputState InputState,
	keybindingManager *KeybindingManager, mousebindingManager *MousebindingManager) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		inputState:          inputState,
		keybindingManager:   keybindingManager,
		mousebindingManager: mousebindingManager,
	}
}

// HandleInput processes all bound input for the current frame.
// Returns true if any input was processed, false otherwise.
func (h *InputHandler) HandleInput() bool {
	if h.inputActions.GetTotalPagesCount() == 0 {
		return false
	}

	// While the go-to-page prompt is capturing digits it owns the whole
	// keyboard; no other binding may fire.
	if h.inputState.IsInPageInputMode() {
		return h.handlePageInputKeys()
	}

	inputProcessed := false

	inputProcessed = h.handleApplicationKeys() || inputProcessed
	inputProcessed = h.handleOverlayKeys() || inputProcessed
	inputProcessed = h.handleNavigationKeys() || inputProcessed
	inputProcessed = h.handleZoomKeys() || inputProcessed
	inputProcessed = h.handleAnnotationKeys() || inputProcessed
	inputProcessed = h.handleBoundMouseActions() || inputProcessed

	return inputProcessed
}

func (h *InputHandler) handleApplicationKeys() bool {
	inputProcessed := false

	if h.keybindingManager.ExecuteAction("exit", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("fullscreen", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("toggle_view_mode", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("page_input", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	return inputProcessed
}

func (h *InputHandler) handleOverlayKeys() bool {
	inputProcessed := false

	if h.keybindingManager.ExecuteAction("close_overlay", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("help", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("info", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("thumbnails", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	return inputProcessed
}

func (h *InputHandler) handleNavigationKeys() bool {
	inputProcessed := false

	if h.keybindingManager.ExecuteAction("next_page", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("prev_page", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("first_page", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("last_page", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	return inputProcessed
}

func (h *InputHandler) handleZoomKeys() bool {
	inputProcessed := false

	if h.keybindingManager.ExecuteAction("zoom_in", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("zoom_out", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("zoom_reset", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	return inputProcessed
}

func (h *InputHandler) handleAnnotationKeys() bool {
	inputProcessed := false

	if h.keybindingManager.ExecuteAction("tool_pen", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("tool_highlight", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("tool_off", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("undo", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("redo", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("clear_annotations", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("save_annotations", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	if h.keybindingManager.ExecuteAction("export_pdf", h.inputActions, h.inputState) {
		inputProcessed = true
	}

	return inputProcessed
}

// handleBoundMouseActions runs the configurable mouse bindings. Positional
// mouse gestures never go through here; the pointer router owns those.
func (h *InputHandler) handleBoundMouseActions() bool {
	inputProcessed := false

	for action := range h.mousebindingManager.GetMousebindings() {
		if h.mousebindingManager.ExecuteAction(action, h.inputActions, h.inputState) {
			inputProcessed = true
		}
	}

	return inputProcessed
}

// handlePageInputKeys owns the keyboard while the go-to-page prompt is open
func (h *InputHandler) handlePageInputKeys() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		// Cancel page input
		h.inputActions.ExitPageInputMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		// Confirm page input
		h.inputActions.ProcessPageInput()
		h.inputActions.ExitPageInputMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		// Delete last character
		currentBuffer := h.inputState.GetPageInputBuffer()
		if len(currentBuffer) > 0 {
			newBuffer := currentBuffer[:len(currentBuffer)-1]
			h.inputActions.UpdatePageInputBuffer(newBuffer)
		}
		return true
	}

	// Handle digit input (both regular and numpad)
	var digit string
	if digit = h.checkDigitKeys(ebiten.Key0, ebiten.Key9, '0'); digit == "" {
		digit = h.checkDigitKeys(ebiten.KeyNumpad0, ebiten.KeyNumpad9, '0')
	}
	if digit != "" {
		currentBuffer := h.inputState.GetPageInputBuffer()
		h.inputActions.UpdatePageInputBuffer(currentBuffer + digit)
		return true
	}

	return false
}

func (h *InputHandler) checkDigitKeys(startKey, endKey ebiten.Key, baseChar rune) string {
	for key := startKey; key <= endKey; key++ {
		if inpututil.IsKeyJustPressed(key) {
			return string(baseChar + rune(key-startKey))
		}
	}
	return ""
}
