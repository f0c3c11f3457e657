package display

import (
	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

// edges records which screen edges a surface is anchored to.
type edges struct {
	Top, Bottom, Left, Right bool
}

// anchorsFor returns the edges a surface at pos is anchored to. Centered
// positions anchor only vertically so the compositor centers them.
func anchorsFor(pos config.Position) edges {
	switch pos {
	case config.PositionTopLeft:
		return edges{Top: true, Left: true}
	case config.PositionTopCenter:
		return edges{Top: true}
	case config.PositionBottomLeft:
		return edges{Bottom: true, Left: true}
	case config.PositionBottomRight:
		return edges{Bottom: true, Right: true}
	case config.PositionBottomCenter:
		return edges{Bottom: true}
	default:
		return edges{Top: true, Right: true}
	}
}

// isBottom reports whether pos grows upwards from the bottom edge.
func isBottom(pos config.Position) bool {
	return anchorsFor(pos).Bottom
}

// marginsFor returns the layer-shell margin of each anchored edge.
func marginsFor(cfg config.SurfaceConfig) presenter.Insets {
	a := anchorsFor(config.Position(cfg.Position))
	var m presenter.Insets
	if a.Top {
		m.Top = cfg.OffsetY
	}
	if a.Bottom {
		m.Bottom = cfg.OffsetY
	}
	if a.Left {
		m.Left = cfg.OffsetX
	}
	if a.Right {
		m.Right = cfg.OffsetX
	}
	return m
}

// safeAreaInsets returns the screen insets entries on a surface keep clear
// of. Every level except the status bar itself also avoids the status bar.
func safeAreaInsets(cfg config.SurfaceConfig, level model.WindowLevel, statusBarHeight int) presenter.Insets {
	insets := marginsFor(cfg)
	if level != model.LevelStatusBar {
		insets.Top += statusBarHeight
	}
	return insets
}
