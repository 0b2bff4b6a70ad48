// Package layout computes where certificate text is drawn.
//
// [Compute] turns a design record, the user's overrides and a canvas size
// into an ordered list of [Op] values that any immediate-mode 2D surface can
// replay: text with a contrast stroke and optional shadow, a shadow reset,
// and the decorative border.
//
// # Safe zone
//
// All text stays inside the central rectangle inset 20% from each edge (on
// the 800x600 reference canvas: x 160-640, y 120-480). The six blocks are
// stacked in a fixed order, each at least a minimum gap below the previous
// one:
//
//	title         >= zone top + 40
//	presentation  >= title + 50
//	recipient     >= presentation + 40
//	body          >= recipient + 60, one line every bodySize+5 px
//	date, signature (one row) >= last body line + 60
//
// Vertical constants scale with canvas height and horizontal insets with
// canvas width. Font sizes do not scale.
//
// Title, presentation line, recipient and the first body line are always
// inside the zone with their gaps intact. Further body lines and the footer
// row are clamped to the zone bottom, so a body too tall for the zone
// squeezes the footer gap rather than leaving the zone.
//
// # Contrast
//
// Every text op carries a stroke of the opposite tonal extreme of its fill,
// chosen by perceived brightness (299R + 587G + 114B) / 1000 > 128.
package layout
