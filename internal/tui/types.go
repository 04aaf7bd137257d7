package tui

type stage int

const (
	stageForm stage = iota
	stageResults
)

const (
	heroTitle   = "See What You Can Get"
	heroTagline = "Revenue-based financing in a few keystrokes."
)

const (
	minWrapWidth     = 40
	defaultWrapWidth = 72
	horizontalMargin = 4
)
