package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/oss"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

var (
	ErrImportEmpty    = errors.New("导入文件为空")
	ErrImportTooLarge = errors.New("导入行数超出上限")
	ErrImportNoHeader = errors.New("缺少表头行，至少需要 name 列")
)

type ImportService struct {
	leadRepo *repository.LeadRepository
	ossCli   *oss.Client
	maxRows  int
}

func NewImportService(leadRepo *repository.LeadRepository, ossCli *oss.Client, cfg *config.Config) *ImportService {
	maxRows := cfg.Import.MaxRows
	if maxRows <= 0 {
		maxRows = 5000
	}
	return &ImportService{
		leadRepo: leadRepo,
		ossCli:   ossCli,
		maxRows:  maxRows,
	}
}

// ImportLeads 从 CSV 批量导入线索。表头至少要有 name 列，
// 可选 email / phone / notes。坏行跳过并记下行号，不整单回滚。
func (s *ImportService) ImportLeads(companyID int64, groupID *int64, r io.Reader, raw []byte) (*dto.ImportLeadsResponse, error) {
	var groupManager *int64
	if groupID != nil {
		group, err := s.leadRepo.GetGroupByID(companyID, *groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGroupNotFound
			}
			return nil, err
		}
		if group.AssignedTo == nil {
			return nil, ErrGroupUnassigned
		}
		groupManager = group.AssignedTo
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 行宽不齐的文件也先读进来，按行校验
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrImportEmpty
	}
	if err != nil {
		return nil, err
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, ErrImportNoHeader
	}

	resp := &dto.ImportLeadsResponse{}
	var batch []*model.Lead

	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, dto.ImportError{
				Row:     rowNum,
				Message: fmt.Sprintf("解析失败: %v", err),
			})
			continue
		}

		if resp.Imported+resp.Skipped >= s.maxRows {
			return nil, ErrImportTooLarge
		}

		name := field(record, nameCol)
		if name == "" {
			resp.Skipped++
			resp.Errors = append(resp.Errors, dto.ImportError{
				Row:     rowNum,
				Message: "name 为空",
			})
			continue
		}

		lead := &model.Lead{
			CompanyID: companyID,
			Name:      name,
			Status:    model.LeadStatusUnassigned,
			Source:    "csv",
			GroupID:   groupID,
		}
		if groupManager != nil {
			// 进组的线索继承组的经理归属
			lead.AssignedTo = groupManager
			lead.Status = model.LeadStatusAssigned
		}
		if i, ok := cols["email"]; ok {
			lead.Email = field(record, i)
		}
		if i, ok := cols["phone"]; ok {
			lead.Phone = field(record, i)
		}
		if i, ok := cols["notes"]; ok {
			lead.Notes = field(record, i)
		}

		batch = append(batch, lead)
		resp.Imported++
	}

	if resp.Imported == 0 && resp.Skipped == 0 {
		return nil, ErrImportEmpty
	}

	if err := s.leadRepo.CreateBatch(batch); err != nil {
		return nil, err
	}

	// 原始文件留档，失败不影响导入结果
	if s.ossCli != nil && len(raw) > 0 {
		if _, err := s.ossCli.UploadImport(companyID, raw); err != nil {
			log.Printf("archive import file for company %d failed: %v", companyID, err)
		}
	}

	return resp, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
