// Package export renders reservation lists as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Reservations"

var header = []any{"ID", "Reservation date", "User ID", "User name", "User email", "Venue ID", "Venue name", "Province", "Created at"}

// WriteReservations writes rows as a single-sheet xlsx workbook to w.
func WriteReservations(w io.Writer, rows []models.Reservation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		var userName, userEmail, venueName, province string
		if r.User != nil {
			userName, userEmail = r.User.Name, r.User.Email
		}
		if r.Venue != nil {
			venueName, province = r.Venue.Name, r.Venue.Province
		}
		row := []any{
			r.ID,
			r.ResvDate.UTC().Format(time.RFC3339),
			r.UserID,
			userName,
			userEmail,
			r.VenueID,
			venueName,
			province,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
