package bookings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

const (
	rosterSheet      = "Roster"
	rosterTimeFormat = "2006-01-02 15:04"
)

// RosterFile сформированная выгрузка списка записавшихся
type RosterFile struct {
	FileName string
	Content  []byte
}

// ExportSlotRoster формирует xlsx со списком подтвержденных записей на слот.
// Доступно только владельцу слота.
func (s *Service) ExportSlotRoster(ctx context.Context, teacherID uuid.UUID, slotID int64) (*RosterFile, error) {
	s.logger.Info("ExportSlotRoster: slot id=%d for teacher=%s", slotID, teacherID)

	bookings, slot, err := s.ownedSlotBookings(ctx, "ExportSlotRoster", teacherID, slotID)
	if err != nil {
		return nil, err
	}

	content, err := buildRoster(slot, bookings)
	if err != nil {
		s.logger.Error("ExportSlotRoster: failed to build roster for slot id=%d: %v", slotID, err)
		return nil, err
	}

	s.logger.Info("ExportSlotRoster: exported %d bookings of slot id=%d", len(bookings), slotID)
	return &RosterFile{
		FileName: fmt.Sprintf("slot-%d-%s.xlsx", slot.ID, slot.Date.Format(domain.DateFormat)),
		Content:  content,
	}, nil
}

func buildRoster(slot *domain.Slot, bookings []*domain.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), rosterSheet); err != nil {
		return nil, fmt.Errorf("%w: rename sheet: %v", ErrExport, err)
	}

	header := [][]interface{}{
		{"Subject", slot.Subject},
		{"Kind", string(slot.Kind)},
		{"Date", slot.Date.Format(domain.DateFormat)},
		{"Start", slot.StartTime.String()},
		{"Booked", len(bookings)},
		{},
		{"#", "Student ID", "Booked at"},
	}
	for i, row := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("%w: write header: %v", ErrExport, err)
		}
	}

	first := len(header) + 1
	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, first+i)
		row := []interface{}{i + 1, b.StudentID.String(), b.CreatedAt.UTC().Format(rosterTimeFormat)}
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("%w: write row: %v", ErrExport, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("%w: create style: %v", ErrExport, err)
	}
	if err := f.SetCellStyle(rosterSheet, "A1", fmt.Sprintf("A%d", len(header)-2), bold); err != nil {
		return nil, fmt.Errorf("%w: apply style: %v", ErrExport, err)
	}
	if err := f.SetCellStyle(rosterSheet, fmt.Sprintf("A%d", len(header)), fmt.Sprintf("C%d", len(header)), bold); err != nil {
		return nil, fmt.Errorf("%w: apply style: %v", ErrExport, err)
	}
	if err := f.SetColWidth(rosterSheet, "B", "C", 40); err != nil {
		return nil, fmt.Errorf("%w: set column width: %v", ErrExport, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: write workbook: %v", ErrExport, err)
	}
	return buf.Bytes(), nil
}
