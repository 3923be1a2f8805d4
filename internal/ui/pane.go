package ui

import (
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/unpack/internal/formatter"
	"github.com/oakwood-commons/unpack/internal/outline"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

// pane is one scrollable view of display lines with a cursor.
type pane struct {
	title  string
	indent string
	lines  []formatter.Line
	index  map[pathid.ID][]int
	cursor int
	offset int
}

func newPane(title, indent string) pane {
	return pane{title: title, indent: indent, index: map[pathid.ID][]int{}}
}

// setLines replaces the content, keeping the cursor on the same line
// number when it still exists.
func (p *pane) setLines(lines []formatter.Line) {
	p.lines = lines
	p.index = make(map[pathid.ID][]int, len(lines))
	for i, l := range lines {
		if l.ID != pathid.None {
			p.index[l.ID] = append(p.index[l.ID], i)
		}
	}
	p.cursor = clamp(p.cursor, 0, len(lines)-1)
	p.offset = clamp(p.offset, 0, p.cursor)
}

// current returns the path ID under the cursor.
func (p *pane) current() pathid.ID {
	if p.cursor < 0 || p.cursor >= len(p.lines) {
		return pathid.None
	}
	return p.lines[p.cursor].ID
}

func (p *pane) move(delta, height int) {
	p.cursor = clamp(p.cursor+delta, 0, len(p.lines)-1)
	p.reveal(p.cursor, height)
}

func (p *pane) top(height int) {
	p.cursor = 0
	p.reveal(p.cursor, height)
}

func (p *pane) bottom(height int) {
	p.cursor = max(len(p.lines)-1, 0)
	p.reveal(p.cursor, height)
}

// first returns the first line labeled id, or -1.
func (p *pane) first(id pathid.ID) int {
	if rows := p.index[id]; len(rows) > 0 {
		return rows[0]
	}
	return -1
}

// reveal scrolls the least amount that brings line into the window of
// height rows, leaving the offset alone when it is already visible.
func (p *pane) reveal(line, height int) {
	if height <= 0 || line < 0 {
		return
	}
	switch {
	case line < p.offset:
		p.offset = line
	case line >= p.offset+height:
		p.offset = line - height + 1
	}
	p.offset = clamp(p.offset, 0, max(len(p.lines)-height, 0))
}

// visible returns the window of lines starting at offset.
func (p *pane) visible(height int) []formatter.Line {
	if height <= 0 || p.offset >= len(p.lines) {
		return nil
	}
	end := min(p.offset+height, len(p.lines))
	return p.lines[p.offset:end]
}

// truncate cuts l so that its indented text fits width cells, marking the
// cut with an ellipsis.
func truncate(l formatter.Line, indent string, width int) formatter.Line {
	room := width - runewidth.StringWidth(indent)*l.Depth
	if runewidth.StringWidth(l.Text()) <= room {
		return l
	}
	out := l
	out.Segments = nil
	for _, seg := range l.Segments {
		w := runewidth.StringWidth(seg.Text)
		if w < room {
			out.Segments = append(out.Segments, seg)
			room -= w
			continue
		}
		if room > 0 {
			seg.Text = runewidth.Truncate(seg.Text, room-1, "") + "…"
			out.Segments = append(out.Segments, seg)
		}
		break
	}
	if len(out.Segments) == 0 {
		out.Segments = []outline.Segment{outline.PunctSeg("…")}
	}
	return out
}

// truncateText cuts s to width cells.
func truncateText(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
