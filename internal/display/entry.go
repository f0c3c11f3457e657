package display

import (
	"strconv"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/entrystack/internal/layout"
	"github.com/jmylchreest/entrystack/internal/model"
)

// transitionMS is the entrance and exit animation length.
const transitionMS = 200

// entryView is the widget tree of one entry, wrapped in a revealer that
// plays its entrance and exit animations.
type entryView struct {
	entry  *model.Entry
	layout *layout.LayoutConfig

	revealer     *gtk.Revealer
	box          *gtk.Box
	closeBtn     *gtk.Button
	timestampLbl *gtk.Label

	expiry  glib.SourceHandle
	exiting bool
	onExit  []func() // called once the exit animation finished

	onDismiss func()
}

// newEntryView builds the widgets for entry from tmpl.
func newEntryView(entry *model.Entry, tmpl *layout.LayoutConfig, classes []string, fromBottom bool) *entryView {
	v := &entryView{entry: entry, layout: tmpl}

	v.box = gtk.NewBox(gtk.OrientationVertical, 6)
	v.box.SetMarginTop(8)
	v.box.SetMarginBottom(8)
	v.box.SetMarginStart(12)
	v.box.SetMarginEnd(12)
	for _, class := range classes {
		v.box.AddCSSClass(class)
	}
	if tmpl.MinWidth > 0 || tmpl.MinHeight > 0 {
		v.box.SetSizeRequest(tmpl.MinWidth, tmpl.MinHeight)
	}

	for _, elem := range tmpl.Elements {
		if widget := v.buildElement(elem); widget != nil {
			v.box.Append(widget)
		}
	}

	v.revealer = gtk.NewRevealer()
	v.revealer.SetTransitionDuration(transitionMS)
	if fromBottom {
		v.revealer.SetTransitionType(gtk.RevealerTransitionTypeSlideUp)
	} else {
		v.revealer.SetTransitionType(gtk.RevealerTransitionTypeSlideDown)
	}
	v.revealer.SetChild(v.box)

	v.connectSignals()
	return v
}

// buildElement builds a GTK widget from a layout element.
func (v *entryView) buildElement(elem layout.LayoutElement) gtk.Widgetter {
	switch elem.Type {
	case layout.ElementTypeHeader:
		return v.buildContainer(elem, gtk.OrientationHorizontal, 8, "entry-header")
	case layout.ElementTypeBox:
		orientation := gtk.OrientationVertical
		if elem.Attr("orientation", "vertical") == "horizontal" {
			orientation = gtk.OrientationHorizontal
		}
		box := v.buildContainer(elem, orientation, 4, "")
		if orientation == gtk.OrientationVertical {
			box.SetHExpand(true)
		}
		return box
	case layout.ElementTypeIcon:
		return v.buildIcon()
	case layout.ElementTypeSummary:
		return v.buildSummary()
	case layout.ElementTypeBody:
		return v.buildBody(elem)
	case layout.ElementTypeAppName:
		return v.buildAppName()
	case layout.ElementTypeTimestamp:
		return v.buildTimestamp()
	case layout.ElementTypeFeedback:
		return v.buildFeedback()
	case layout.ElementTypeClose:
		return v.buildClose()
	default:
		return nil
	}
}

func (v *entryView) buildContainer(elem layout.LayoutElement, orientation gtk.Orientation, spacing int, class string) *gtk.Box {
	if s, err := strconv.Atoi(elem.Attr("spacing", "")); err == nil {
		spacing = s
	}
	box := gtk.NewBox(orientation, spacing)
	if class != "" {
		box.AddCSSClass(class)
	}
	for _, child := range elem.Children {
		if widget := v.buildElement(child); widget != nil {
			box.Append(widget)
		}
	}
	return box
}

func (v *entryView) buildIcon() gtk.Widgetter {
	if v.entry.Content.IconName == "" {
		return nil
	}
	icon := gtk.NewImageFromIconName(v.entry.Content.IconName)
	icon.AddCSSClass("entry-icon")
	icon.SetPixelSize(v.layout.IconSize)
	return icon
}

func (v *entryView) buildSummary() gtk.Widgetter {
	lbl := gtk.NewLabel(v.entry.Content.Summary)
	lbl.AddCSSClass("entry-summary")
	lbl.SetXAlign(0)
	lbl.SetEllipsize(pango.EllipsizeEnd)
	lbl.SetMaxWidthChars(40)
	lbl.SetHExpand(true)
	return lbl
}

func (v *entryView) buildBody(elem layout.LayoutElement) gtk.Widgetter {
	if v.entry.Content.Body == "" {
		return nil
	}
	lbl := gtk.NewLabel(v.entry.Content.Body)
	lbl.AddCSSClass("entry-body")
	lbl.SetXAlign(0)
	lbl.SetWrap(true)
	lbl.SetWrapMode(pango.WrapWordChar)
	lbl.SetMaxWidthChars(50)
	if lines, err := strconv.Atoi(elem.Attr("lines", "")); err == nil && lines > 0 {
		lbl.SetLines(lines)
		lbl.SetEllipsize(pango.EllipsizeEnd)
	}
	return lbl
}

func (v *entryView) buildAppName() gtk.Widgetter {
	if v.entry.Content.AppName == "" {
		return nil
	}
	lbl := gtk.NewLabel(v.entry.Content.AppName)
	lbl.AddCSSClass("entry-appname")
	lbl.SetXAlign(0)
	return lbl
}

func (v *entryView) buildTimestamp() gtk.Widgetter {
	v.timestampLbl = gtk.NewLabel(humanize.Time(v.entry.CreatedAt))
	v.timestampLbl.AddCSSClass("entry-timestamp")
	v.timestampLbl.SetXAlign(1)
	return v.timestampLbl
}

func (v *entryView) buildFeedback() gtk.Widgetter {
	name := feedbackIcon(v.entry.Attributes.Feedback)
	if name == "" {
		return nil
	}
	icon := gtk.NewImageFromIconName(name)
	icon.AddCSSClass("entry-feedback")
	return icon
}

func (v *entryView) buildClose() gtk.Widgetter {
	v.closeBtn = gtk.NewButtonFromIconName("window-close-symbolic")
	v.closeBtn.AddCSSClass("entry-close")
	v.closeBtn.SetVisible(false)
	return v.closeBtn
}

// connectSignals sets up hover and click handling.
func (v *entryView) connectSignals() {
	if v.closeBtn != nil {
		v.closeBtn.ConnectClicked(func() {
			if v.onDismiss != nil {
				v.onDismiss()
			}
		})
	}

	motionCtrl := gtk.NewEventControllerMotion()
	motionCtrl.ConnectEnter(func(x, y float64) {
		if v.closeBtn != nil {
			v.closeBtn.SetVisible(true)
		}
		if v.timestampLbl != nil {
			v.timestampLbl.SetText(humanize.Time(v.entry.CreatedAt))
		}
	})
	motionCtrl.ConnectLeave(func() {
		if v.closeBtn != nil {
			v.closeBtn.SetVisible(false)
		}
	})
	v.box.AddController(motionCtrl)

	if v.entry.Attributes.ScreenInteraction != model.InteractionDismiss {
		return
	}
	clickCtrl := gtk.NewGestureClick()
	clickCtrl.SetButton(0)
	clickCtrl.ConnectReleased(func(nPress int, x, y float64) {
		if v.onDismiss != nil {
			v.onDismiss()
		}
	})
	v.box.AddController(clickCtrl)
}

// cancelExpiry stops a pending display-duration timer.
func (v *entryView) cancelExpiry() {
	if v.expiry != 0 {
		glib.SourceRemove(v.expiry)
		v.expiry = 0
	}
}
