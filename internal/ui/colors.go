package ui

import "image/color"

var (
	colWhite        = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colBackdrop     = color.NRGBA{R: 0, G: 0, B: 0, A: 160} // behind overlay text
	colPromptBg     = color.NRGBA{R: 40, G: 40, B: 40, A: 240}
	colPromptBorder = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	colToastInfo    = color.NRGBA{R: 60, G: 60, B: 60, A: 240}
	colToastSuccess = color.NRGBA{R: 50, G: 160, B: 80, A: 240}
	colToastError   = color.NRGBA{R: 200, G: 50, B: 50, A: 240}
	colToastText    = colWhite
)
