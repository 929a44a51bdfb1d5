package export

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// Sheet names in the report workbook.
const (
	ClaimsSheet = "Claims"
	FlagsSheet  = "Flags"
)

// Row is one analyzed (or failed) claim file.
type Row struct {
	Path    string
	HashHex string
	Result  entity.ClaimAnalysisResult
	Err     error
}

// Service produces XLSX bytes for batch reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var claimHeaders = []string{
	"File",
	"Action",
	"Score",
	"Claim Type",
	"Amount",
	"Date of Incident",
	"Policy Number",
	"Claimant Name",
	"Signature",
	"Flags",
	"Error",
	"SHA-256",
}

var flagHeaders = []string{"File", "Code", "Severity", "Message"}

// ExportClaimsXLSX writes one row per file to the Claims sheet and one row
// per flag to the Flags sheet, in the order given.
func (s *Service) ExportClaimsXLSX(ctx context.Context, rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ClaimsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(FlagsSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(ClaimsSheet)
	f.SetActiveSheet(activeIndex)

	writeRow(f, ClaimsSheet, 1, toAny(claimHeaders))
	writeRow(f, FlagsSheet, 1, toAny(flagHeaders))

	claimRow, flagRow := 2, 2
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		writeRow(f, ClaimsSheet, claimRow, claimCells(r))
		claimRow++

		if r.Err != nil {
			continue
		}
		for _, fl := range r.Result.Flags {
			writeRow(f, FlagsSheet, flagRow, []any{r.Path, fl.Code, string(fl.Severity), truncate(fl.Message, 200)})
			flagRow++
		}
	}

	_ = f.SetColWidth(ClaimsSheet, "A", "A", 48) // path
	_ = f.SetColWidth(ClaimsSheet, "B", "C", 10)
	_ = f.SetColWidth(ClaimsSheet, "D", "I", 18)
	_ = f.SetColWidth(ClaimsSheet, "J", "K", 60)
	_ = f.SetColWidth(ClaimsSheet, "L", "L", 66)
	_ = f.SetColWidth(FlagsSheet, "A", "A", 48)
	_ = f.SetColWidth(FlagsSheet, "B", "C", 22)
	_ = f.SetColWidth(FlagsSheet, "D", "D", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"flags", flagRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func claimCells(r Row) []any {
	if r.Err != nil {
		return []any{r.Path, "", "", "", "", "", "", "", "", "", truncate(r.Err.Error(), 200), r.HashHex}
	}
	res := r.Result
	codes := make([]string, len(res.Flags))
	for i, fl := range res.Flags {
		codes[i] = fl.Code
	}
	return []any{
		r.Path,
		string(res.Action),
		math.Round(res.Score.Value*100) / 100,
		cellValue(res.Fields.Get(constants.FieldClaimType).Value),
		cellValue(res.Fields.Get(constants.FieldAmount).Value),
		cellValue(res.Fields.Get(constants.FieldDateOfIncident).Value),
		cellValue(res.Fields.Get(constants.FieldPolicyNumber).Value),
		cellValue(res.Fields.Get(constants.FieldClaimantName).Value),
		cellValue(res.Fields.Get(constants.FieldSignaturePresent).Value),
		strings.Join(codes, ", "),
		"",
		r.HashHex,
	}
}

// cellValue keeps amounts numeric so the sheet can sum them.
func cellValue(v entity.TypedValue) any {
	if d, ok := v.Amount(); ok {
		return d.Round(2).InexactFloat64()
	}
	if b, ok := v.Bool(); ok {
		if b {
			return "yes"
		}
		return "no"
	}
	if x := v.Interface(); x != nil {
		return x
	}
	return ""
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
