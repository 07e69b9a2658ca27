package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"LineDuel/internal/state"
)

// Page layout in millimetres, A4 landscape.
const (
	pageMargin = 12.0
	pageWidth  = 297.0
	arenaScale = (pageWidth - 2*pageMargin) / state.ArenaWidth
)

// WriteRound renders both trails of a round to w as a one-page PDF.
func WriteRound(w io.Writer, snap state.Snapshot, at time.Time) error {
	p := gofpdf.New("L", "mm", "A4", "")
	p.SetTitle("LineDuel round", true)
	p.AddPage()

	p.SetFont("Helvetica", "", 10)
	p.SetXY(pageMargin, pageMargin-6)
	p.CellFormat(0, 5, caption(snap, at), "", 0, "L", false, 0, "")

	top := pageMargin
	p.SetDrawColor(160, 160, 160)
	p.SetLineWidth(0.2)
	p.Rect(pageMargin, top, state.ArenaWidth*arenaScale, state.ArenaHeight*arenaScale, "D")

	p.SetLineCapStyle("round")
	p.SetLineWidth(5 * arenaScale)
	p.SetDrawColor(255, 0, 0)
	drawTrail(p, snap.Local, top)
	p.SetDrawColor(0, 0, 255)
	drawTrail(p, snap.Opponent, top)

	if err := p.Error(); err != nil {
		return fmt.Errorf("render round: %w", err)
	}
	return p.Output(w)
}

// SaveRound writes the round to a timestamped file in dir and returns its path.
func SaveRound(dir string, snap state.Snapshot, at time.Time) (string, error) {
	path := filepath.Join(dir, "lineduel-"+at.Format("20060102-150405")+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteRound(f, snap, at); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

func drawTrail(p *gofpdf.Fpdf, segs []state.Segment, top float64) {
	for _, s := range segs {
		p.Line(
			pageMargin+s.P1.X*arenaScale, top+s.P1.Y*arenaScale,
			pageMargin+s.P2.X*arenaScale, top+s.P2.Y*arenaScale,
		)
	}
}

func caption(snap state.Snapshot, at time.Time) string {
	return fmt.Sprintf("%s  phase: %s  wins: %d  losses: %d  segments: %d red / %d blue",
		at.Format("2006-01-02 15:04:05"), snap.Phase, snap.Score.Wins, snap.Score.Losses,
		len(snap.Local), len(snap.Opponent))
}
