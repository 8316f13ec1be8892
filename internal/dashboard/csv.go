package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/creativa-studio/lead-service/internal/domain"
)

const exportTimeLayout = "2006-01-02 15:04"

// WriteCSV serializes leads with a header row. Embedded quotes in fields are
// doubled per RFC 4180.
func WriteCSV(w io.Writer, leads []domain.Lead) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Name", "Email", "Phone", "Message", "Date", "Status"}); err != nil {
		return err
	}
	for _, lead := range leads {
		record := []string{
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.Message,
			lead.CreatedAt.Format(exportTimeLayout),
			string(lead.Status),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportFilename stamps the export with the current date.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("leads_%s.csv", now.Format("2006-01-02"))
}
