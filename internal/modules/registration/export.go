package registration

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"festreg/internal/repository"
)

var exportHeader = []string{
	"RegistrationID", "Name", "Email", "Mobile", "Address", "State", "Pin",
	"AadhaarNumber", "CompetitionID", "CompetitionName", "WorkPlace",
	"PassportNumber", "Amount", "PaymentStatus", "PaymentId", "CreatedAt", "UpdatedAt",
}

// ExportCSV streams all registrations matching the filter as CSV.
func (s *Service) ExportCSV(ctx context.Context, f repository.RegistrationFilter, w io.Writer) (int, error) {
	regs, err := s.registrations.List(ctx, f)
	if err != nil {
		return 0, err
	}
	if len(regs) == 0 {
		return 0, ErrNotFound
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}
	for _, r := range regs {
		row := []string{
			r.RegistrationID,
			r.Name,
			r.Email,
			r.Mobile,
			r.Address,
			r.State,
			r.Pin,
			r.AadhaarNumber,
			strconv.FormatInt(r.CompetitionID, 10),
			r.CompetitionName,
			r.WorkPlace,
			r.PassportNumber,
			strconv.FormatFloat(r.Amount, 'f', 2, 64),
			string(r.PaymentStatus),
			r.PaymentID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(regs), cw.Error()
}
