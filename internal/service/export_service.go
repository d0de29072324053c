package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ait-ops/cmms-api/internal/models"
	"github.com/ait-ops/cmms-api/pkg/export"
	"github.com/ait-ops/cmms-api/pkg/flexdate"
	"github.com/ait-ops/cmms-api/pkg/storage"
)

type scheduleWeekLister interface {
	ListWeek(ctx context.Context, weekStart time.Time) ([]models.ScheduleEntry, error)
}

type exportEquipmentLister interface {
	List(ctx context.Context, filter models.EquipmentFilter) ([]models.EquipmentRecord, int, error)
}

type exportWorkOrderLister interface {
	List(ctx context.Context, filter models.WorkOrderFilter) ([]models.WorkOrder, int, error)
}

type exportPartLister interface {
	List(ctx context.Context, filter models.PartFilter) ([]models.Part, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	schedules  scheduleWeekLister
	equipment  exportEquipmentLister
	workOrders exportWorkOrderLister
	parts      exportPartLister
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(
	schedules scheduleWeekLister,
	equipment exportEquipmentLister,
	workOrders exportWorkOrderLister,
	parts exportPartLister,
	store fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		schedules:  schedules,
		equipment:  equipment,
		workOrders: workOrders,
		parts:      parts,
		storage:    store,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the dataset for a job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(string(job.Type)), timestamp, job.Params.Format)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeWeeklySchedule:
		return s.buildScheduleDataset(ctx, job.Params)
	case models.ReportTypeEquipment:
		return s.buildEquipmentDataset(ctx)
	case models.ReportTypeWorkOrders:
		return s.buildWorkOrderDataset(ctx, job.Params)
	case models.ReportTypeLowStock:
		return s.buildLowStockDataset(ctx)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildScheduleDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	weekStart, ok := flexdate.Parse(params.WeekStart)
	if !ok {
		return export.Dataset{}, "", fmt.Errorf("invalid week start %q", params.WeekStart)
	}
	entries, err := s.schedules.ListWeek(ctx, weekStart)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		completed := ""
		if entry.CompletedAt != nil {
			completed = entry.CompletedAt.UTC().Format("2006-01-02")
		}
		rows = append(rows, map[string]string{
			"BFM No":     entry.BFMNo,
			"PM Type":    entry.PMType,
			"Technician": entry.Technician,
			"Status":     entry.Status,
			"Reason":     entry.Reason,
			"Completed":  completed,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"BFM No", "PM Type", "Technician", "Status", "Reason", "Completed"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Weekly PM Schedule %s", weekStart.Format("2006-01-02"))
	return dataset, title, nil
}

func (s *ExportService) buildEquipmentDataset(ctx context.Context) (export.Dataset, string, error) {
	records, _, err := s.equipment.List(ctx, models.EquipmentFilter{Page: 1, PageSize: 100})
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, map[string]string{
			"BFM No":      record.BFMNo,
			"Description": record.Description,
			"Status":      record.Status,
			"Weekly":      boolMark(record.HasWeekly),
			"Monthly":     boolMark(record.HasMonthly),
			"Six Month":   boolMark(record.HasSixMonth),
			"Annual":      boolMark(record.HasAnnual),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"BFM No", "Description", "Status", "Weekly", "Monthly", "Six Month", "Annual"},
		Rows:    rows,
	}
	return dataset, "Equipment Roster", nil
}

func (s *ExportService) buildWorkOrderDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	filter := models.WorkOrderFilter{Page: 1, PageSize: 100}
	if params.Status != nil {
		filter.Status = *params.Status
	}
	orders, _, err := s.workOrders.List(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(orders))
	for _, order := range orders {
		technician := ""
		if order.Technician != nil {
			technician = *order.Technician
		}
		rows = append(rows, map[string]string{
			"ID":          order.ID,
			"BFM No":      order.BFMNo,
			"Description": order.Description,
			"Status":      string(order.Status),
			"Technician":  technician,
			"Reported":    order.ReportedAt.UTC().Format("2006-01-02"),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"ID", "BFM No", "Description", "Status", "Technician", "Reported"},
		Rows:    rows,
	}
	return dataset, "Corrective Work Orders", nil
}

func (s *ExportService) buildLowStockDataset(ctx context.Context) (export.Dataset, string, error) {
	parts, _, err := s.parts.List(ctx, models.PartFilter{LowStock: true, Page: 1, PageSize: 100})
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(parts))
	for _, part := range parts {
		rows = append(rows, map[string]string{
			"Part Number":   part.PartNumber,
			"Description":   part.Description,
			"Qty On Hand":   fmt.Sprintf("%d", part.QtyOnHand),
			"Reorder Point": fmt.Sprintf("%d", part.ReorderPoint),
			"Unit Cost":     fmt.Sprintf("%.2f", part.UnitCost),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Part Number", "Description", "Qty On Hand", "Reorder Point", "Unit Cost"},
		Rows:    rows,
	}
	return dataset, "Low Stock Parts", nil
}

func boolMark(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
