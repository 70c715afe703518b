package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"museobot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// handleExport builds an xlsx with every booking and sends it to the chat.
func (b *Bot) handleExport(ctx context.Context, logger *zerolog.Logger, chatID int64) {
	b.send(chatID, "Preparing the export, one moment...")

	filePath, err := b.exportToExcel(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("export bookings")
		b.send(chatID, "Could not build the export file. Please try again later.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	doc.Caption = fmt.Sprintf("Bookings export, %s", time.Now().Format("2006-01-02"))
	if _, err := b.api.Send(doc); err != nil {
		logger.Error().Err(err).Str("file_path", filePath).Msg("send export document")
		b.send(chatID, "Could not deliver the export file.")
	}
}

// exportToExcel создает Excel файл с данными о бронированиях
func (b *Bot) exportToExcel(ctx context.Context) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := b.bookings.GetAllBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Name", "Address", "Date", "Time Slot", "Tickets", "Total ($)", "Created At"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), booking.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), booking.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), booking.Address)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), booking.Date.Format(models.DateLayout))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), string(booking.TimeSlot))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), booking.TicketCount)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), booking.TotalPrice())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), booking.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	// Настраиваем ширину колонок
	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "C", 28)
	_ = f.SetColWidth(sheetName, "D", "E", 22)
	_ = f.SetColWidth(sheetName, "F", "G", 10)
	_ = f.SetColWidth(sheetName, "H", "H", 20)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}
