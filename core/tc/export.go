package tc

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/shraddhaWorks/new-timelly-sub001/core/student"
	"github.com/shraddhaWorks/new-timelly-sub001/core/user"
)

var registerHeader = []string{
	"Student", "Roll No", "Status", "Reason", "Issued", "Document URL", "Requested By", "Created",
}

// ExportRegister renders the school's TC register matching filter as an xlsx
// workbook and returns it with a suggested filename.
func (svc *Service) ExportRegister(ctx context.Context, actor user.User, filter Filter) (*bytes.Buffer, string, error) {
	filter.Clean()
	schoolID, err := svc.resolveSchool(ctx, actor)
	if err != nil {
		return nil, "", err
	}
	sch, err := svc.schools.GetSchoolByID(ctx, schoolID)
	if err != nil {
		return nil, "", err
	}
	certs, err := svc.repo.FilterTCs(ctx, schoolID, filter)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]string, 0, len(certs))
	for _, cert := range certs {
		var stu student.Student
		if s, err := svc.students.GetStudentByID(ctx, cert.StudentID, schoolID); err == nil {
			stu = s
		}
		rows = append(rows, []string{
			cert.StudentID,
			stu.RollNo,
			string(cert.Status),
			cert.Reason.String,
			fmtTime(cert.IssuedDate.Time, cert.IssuedDate.Valid),
			cert.TCDocumentURL.String,
			cert.RequestedByID.String,
			cert.CreatedAt.Format("2006-01-02"),
		})
	}

	f, err := newRegisterWorkbook(sch.Name, rows)
	if err != nil {
		return nil, "", err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", errors.Wrap(err, "writing workbook")
	}
	name := fmt.Sprintf("tc-register-%s-%s.xlsx", sch.Code, time.Now().Format("2006-01-02"))
	return buf, name, nil
}

func fmtTime(t time.Time, valid bool) string {
	if !valid {
		return ""
	}
	return t.Format("2006-01-02")
}

func newRegisterWorkbook(sheet string, rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, errors.Wrap(err, "renaming sheet")
	}

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, h := range registerHeader {
		cell := fmt.Sprintf("%s1", colName(col+1))
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return nil, errors.Wrapf(err, "setting cell %s", cell)
		}
	}
	end := colName(len(registerHeader)) + "1"
	_ = f.SetCellStyle(sheet, "A1", end, bold)
	_ = f.AutoFilter(sheet, "A1:"+end, nil)

	for r, row := range rows {
		for c, val := range row {
			cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return nil, errors.Wrapf(err, "setting cell %s", cell)
			}
		}
	}

	// heuristic widths from header and the first rows
	for c := 1; c <= len(registerHeader); c++ {
		width := len(registerHeader[c-1])
		for r := 0; r < len(rows) && r < 50; r++ {
			if l := len(rows[r][c-1]); l > width {
				width = l
			}
		}
		w := float64(width) * 0.9
		if w < 12 {
			w = 12
		}
		if w > 40 {
			w = 40
		}
		_ = f.SetColWidth(sheet, colName(c), colName(c), w)
	}
	return f, nil
}

func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}
