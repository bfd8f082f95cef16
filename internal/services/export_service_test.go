package services

import (
	"strings"
	"testing"
	"time"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
)

func TestAttendanceRecord(t *testing.T) {
	registered := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	checkedIn := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)

	row := &repositories.AttendanceRow{
		RegistrationID:  12,
		ParticipantID:   "user-42",
		ParticipantName: "Asha Rao",
		Email:           "asha@example.com",
		TeamName:        "Nullpointers",
		Status:          "completed",
		Attendance:      true,
		MerchSize:       "M",
		MerchColor:      "black",
		MerchQuantity:   1,
		RegisteredAt:    registered,
		CheckedInAt:     &checkedIn,
	}

	record := attendanceRecord(row)
	if len(record) != len(attendanceHeader) {
		t.Fatalf("record has %d columns, header has %d", len(record), len(attendanceHeader))
	}
	if record[0] != "12" {
		t.Errorf("expected registration id 12, got %s", record[0])
	}
	if record[6] != "true" {
		t.Errorf("expected attendance true, got %s", record[6])
	}
	if record[10] != registered.Format(time.RFC3339) {
		t.Errorf("unexpected registered_at: %s", record[10])
	}
	if record[11] != checkedIn.Format(time.RFC3339) {
		t.Errorf("unexpected checked_in_at: %s", record[11])
	}

	t.Run("no checkin leaves the column empty", func(t *testing.T) {
		row := &repositories.AttendanceRow{RegisteredAt: registered}
		record := attendanceRecord(row)
		if record[11] != "" {
			t.Errorf("expected empty checked_in_at, got %s", record[11])
		}
	})
}

func TestExportFileName(t *testing.T) {
	event := &models.Event{ID: 7, Name: "Hack Night"}

	name := exportFileName(event, "csv")
	if !strings.HasPrefix(name, "attendance_event_7_") {
		t.Errorf("unexpected prefix: %s", name)
	}
	if !strings.HasSuffix(name, ".csv") {
		t.Errorf("unexpected extension: %s", name)
	}
}
