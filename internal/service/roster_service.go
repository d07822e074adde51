package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/internal/roster"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

// RosterConfig bounds roster intake.
type RosterConfig struct {
	MaxRows         int
	DuplicatePolicy roster.DuplicatePolicy
}

// RosterService turns uploaded or posted tabular data into a student roster.
type RosterService struct {
	extract   roster.Extractor
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       RosterConfig
}

// NewRosterService constructs the service. A nil extractor selects the default heuristic.
func NewRosterService(extract roster.Extractor, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg RosterConfig) *RosterService {
	if extract == nil {
		extract = roster.ExtractIdentifier
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DuplicatePolicy == "" {
		cfg.DuplicatePolicy = roster.DuplicateKeep
	}
	return &RosterService{extract: extract, validator: validate, metrics: metrics, logger: logger, cfg: cfg}
}

// Parse builds a roster from a JSON request.
func (s *RosterService) Parse(ctx context.Context, req dto.RosterRequest) (*dto.RosterResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster payload")
	}

	var (
		rows    []roster.Row
		tabular bool
	)
	switch {
	case len(req.Rows) > 0:
		rows = make([]roster.Row, len(req.Rows))
		for i, r := range req.Rows {
			rows[i] = roster.Row(r)
		}
		tabular = true
	case len(req.Records) > 0:
		rows = roster.RowsFromRecords(req.Records, req.Fields)
		header := true
		req.HeaderPresent = &header
	case strings.TrimSpace(req.Text) != "":
		rows = roster.LinesToRows(req.Text)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "one of rows, records or text is required")
	}

	return s.build(ctx, rows, tabular, req.HeaderPresent, req.Mapping, req.Duplicates, toStudents(req.Existing))
}

// Upload reads a roster file (CSV, XLSX or plain text) and builds the roster.
func (s *RosterService) Upload(ctx context.Context, filename string, r io.Reader, opts dto.RosterUploadOptions) (*dto.RosterResponse, error) {
	if err := s.validator.Struct(opts); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster upload options")
	}
	format := roster.FormatFromFilename(filename)
	rows, err := roster.Read(format, r)
	if err != nil {
		return nil, err
	}

	var mapping *roster.Mapping
	if opts.IDColumn != "" || opts.NameColumn != "" || opts.BranchColumn != "" {
		mapping = &roster.Mapping{IDColumn: opts.IDColumn, NameColumn: opts.NameColumn, BranchColumn: opts.BranchColumn}
	}
	s.logger.Debug("roster file decoded", zap.String("filename", filename), zap.String("format", string(format)), zap.Int("rows", len(rows)))
	return s.build(ctx, rows, format != roster.FormatText, opts.HeaderPresent, mapping, opts.Duplicates, nil)
}

func (s *RosterService) build(_ context.Context, rows []roster.Row, tabular bool, header *bool, mapping *roster.Mapping, duplicates string, existing []models.Student) (*dto.RosterResponse, error) {
	if s.cfg.MaxRows > 0 && len(rows) > s.cfg.MaxRows {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("roster has %d rows, limit is %d", len(rows), s.cfg.MaxRows))
	}
	policy := s.cfg.DuplicatePolicy
	if duplicates != "" {
		parsed, err := roster.ParseDuplicatePolicy(duplicates)
		if err != nil {
			return nil, err
		}
		policy = parsed
	}

	headerPresent := false
	switch {
	case header != nil:
		headerPresent = *header
	case tabular && len(rows) > 0:
		headerPresent = roster.DetectHeader(rows[0])
	}

	builder := roster.NewBuilder(roster.WithExtractor(s.extract), roster.WithDuplicatePolicy(policy))
	res, err := builder.Build(rows, headerPresent, mapping)
	if err != nil {
		return nil, err
	}

	students, dups := res.Students, res.Duplicates
	if len(existing) > 0 {
		students, dups, err = roster.ResolveDuplicates(roster.Merge(existing, students), policy)
		if err != nil {
			return nil, err
		}
	}

	s.metrics.ObserveRoster(len(res.Students), len(res.SkippedRows))
	if len(res.SkippedRows) > 0 {
		s.logger.Info("roster rows skipped", zap.Ints("rows", res.SkippedRows))
	}

	return &dto.RosterResponse{
		Students:      students,
		Count:         len(students),
		HeaderPresent: res.HeaderPresent,
		Columns:       res.Columns,
		SkippedRows:   res.SkippedRows,
		Duplicates:    dups,
	}, nil
}

func toStudents(in []dto.StudentPayload) []models.Student {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Student, 0, len(in))
	for _, p := range in {
		id := strings.TrimSpace(p.ID)
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = id
		}
		out = append(out, models.Student{ID: id, Name: name, Branch: strings.TrimSpace(p.Branch)})
	}
	return out
}
