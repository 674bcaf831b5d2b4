package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"casamira/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// BookingExporter writes the bookings collection to a styled XLSX file for
// the front office.
type BookingExporter struct {
	exportPath string
	logger     *zerolog.Logger
}

func NewBookingExporter(exportPath string, logger *zerolog.Logger) *BookingExporter {
	return &BookingExporter{exportPath: exportPath, logger: logger}
}

var columns = []string{"ID", "Guest", "Email", "Phone", "Room Type", "Check-in", "Check-out", "Guests", "Special Requests", "Status", "Created", "Updated"}

// Export writes all bookings to a timestamped file and returns its path.
func (e *BookingExporter) Export(bookings []models.Booking) (string, error) {
	if err := os.MkdirAll(e.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for col, title := range columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, b := range bookings {
		values := []any{
			b.ID, b.Name, b.Email, b.Phone, b.RoomType, b.CheckIn, b.CheckOut,
			b.Guests, b.SpecialRequests, b.Status,
			b.CreatedAt.Format("2006-01-02 15:04"), b.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 6)
	_ = f.SetColWidth(sheetName, "B", "E", 20)
	_ = f.SetColWidth(sheetName, "F", "H", 12)
	_ = f.SetColWidth(sheetName, "I", "L", 22)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	filePath := filepath.Join(e.exportPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("bookings export created")
	return filePath, nil
}
