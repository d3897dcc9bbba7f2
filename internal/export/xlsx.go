// Package export renders league standings as downloadable files.
package export

import (
	"fmt"
	"io"

	"github.com/tenpin/leaguebook/internal/standings"
	"github.com/xuri/excelize/v2"
)

const (
	teamSheet       = "Teams"
	individualSheet = "Individuals"
)

var (
	teamHeader       = []any{"Rank", "Team", "Points", "Wins", "Losses", "Ties", "Scratch", "Handicap", "Total"}
	individualHeader = []any{"Rank", "Bowler", "Team", "Games", "Average", "Handicap", "High Game", "High Series"}
)

// WriteStandingsXLSX writes a workbook with one sheet of team standings and
// one of individual standings.
func WriteStandingsXLSX(w io.Writer, snap *standings.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), teamSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(individualSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: snap.League.Name + " standings", Creator: "leaguebook"}); err != nil {
		return fmt.Errorf("set properties: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	teamRows := make([][]any, 0, len(snap.Teams))
	teamNames := make(map[string]string, len(snap.Teams))
	for _, e := range snap.Teams {
		teamNames[e.Team.ID.String()] = e.Team.Name
		teamRows = append(teamRows, []any{
			e.Rank, e.Team.Name, e.Points, e.Team.Wins, e.Team.Losses, e.Team.Ties,
			e.ScratchTotal, e.HandicapTotal, e.ScratchTotal + e.HandicapTotal,
		})
	}
	if err := writeSheet(f, teamSheet, teamHeader, teamRows, bold); err != nil {
		return err
	}

	bowlerRows := make([][]any, 0, len(snap.Individuals))
	for i, b := range snap.Individuals {
		bowlerRows = append(bowlerRows, []any{
			i + 1, b.Name, teamNames[b.TeamID.String()], b.GamesPlayed,
			b.Average, b.Handicap, b.HighGame, b.HighSeries,
		})
	}
	if err := writeSheet(f, individualSheet, individualHeader, bowlerRows, bold); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("%s freeze header: %w", sheet, err)
	}
	return nil
}
