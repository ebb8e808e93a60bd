package investigation

// PanelPosition is where the analysis panel docks.
type PanelPosition string

const (
	PanelRight  PanelPosition = "right"
	PanelBottom PanelPosition = "bottom"
)

// Panel width bounds in pixels. Drag-resize requests outside the range are
// clamped, never rejected.
const (
	MinPanelWidth     = 280
	MaxPanelWidth     = 800
	DefaultPanelWidth = 420
)

// PanelState describes the analysis panel UI state.
type PanelState struct {
	Open     bool
	Width    int
	Position PanelPosition
}

func defaultPanel() PanelState {
	return PanelState{
		Open:     false,
		Width:    DefaultPanelWidth,
		Position: PanelRight,
	}
}

func clampPanelWidth(px int) int {
	if px < MinPanelWidth {
		return MinPanelWidth
	}
	if px > MaxPanelWidth {
		return MaxPanelWidth
	}
	return px
}
