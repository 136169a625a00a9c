package logic

import "github.com/samber/lo"

// InvView is a scrollable view over the cached lines of the inventory file.
type InvView struct {
	Path        string
	Lines       []string
	Offset      int
	VisibleRows int
}

// LineLoader reads a text file into lines.
type LineLoader func(path string) ([]string, error)

// MaxOffset is the largest valid scroll offset.
func (v InvView) MaxOffset() int {
	return max(0, len(v.Lines)-v.VisibleRows)
}

// Scroll moves the offset by delta rows, clamped to [0, MaxOffset].
func (v *InvView) Scroll(delta int) {
	v.Offset = lo.Clamp(v.Offset+delta, 0, v.MaxOffset())
}

// Replace swaps in new content, keeping the offset where it still fits.
func (v *InvView) Replace(lines []string) {
	v.Lines = lines
	v.Offset = lo.Clamp(v.Offset, 0, v.MaxOffset())
}

// Visible returns the lines currently in the viewport.
func (v InvView) Visible() []string {
	if v.Offset >= len(v.Lines) {
		return nil
	}
	end := min(len(v.Lines), v.Offset+v.VisibleRows)
	return v.Lines[v.Offset:end]
}
