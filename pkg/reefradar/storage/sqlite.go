package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reefradar/reefradar/pkg/reefradar/model"
)

const DefaultDBFile = "reefradar.sqlite3"
const errDBClientNil = "db client is nil"

// DBClient wraps the gorm handle for the reference corpus and the analysis
// record store.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// SiteRecord is a persisted reference site. The mean embedding is stored as
// a JSON-encoded float array; at 1280 dimensions that stays well under
// sqlite's blob comfort zone and avoids a vector-column dependency.
type SiteRecord struct {
	SiteID    string `gorm:"primaryKey;type:varchar(64)" json:"site_id"`
	Country   string `gorm:"index:idx_site_country" json:"country"`
	Category  string `gorm:"index:idx_site_category" json:"category"`
	Embedding []byte `json:"-"`
	CreatedAt time.Time
}

// AnalysisRecord is a persisted classification outcome, complete or failed.
type AnalysisRecord struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"analysis_id"`
	Status     string `gorm:"index:idx_analysis_status" json:"status"`
	Label      string `json:"label"`
	Confidence float64 `json:"confidence"`
	Synthetic  bool   `json:"synthetic"`
	Result     []byte `json:"-"`
	ErrorCode  string `json:"error_code,omitempty"`
	ErrorMsg   string `json:"error,omitempty"`
	CreatedAt  time.Time
}

// NewDBClient opens the database at REEFRADAR_DB_PATH or the default file.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("REEFRADAR_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

// NewDBClientWithPath opens (creating if needed) the sqlite database at
// dbPath and migrates the schema.
func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&SiteRecord{}, &AnalysisRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ListSites returns the full reference corpus with decoded embeddings.
func (c *DBClient) ListSites() ([]model.ReferenceSite, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []SiteRecord
	if err := c.DB.Order("site_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying reference sites: %w", err)
	}

	sites := make([]model.ReferenceSite, 0, len(rows))
	for _, row := range rows {
		var emb []float64
		if len(row.Embedding) > 0 {
			if err := json.Unmarshal(row.Embedding, &emb); err != nil {
				return nil, fmt.Errorf("decoding embedding for site %s: %w", row.SiteID, err)
			}
		}
		sites = append(sites, model.ReferenceSite{
			SiteID:        row.SiteID,
			Country:       row.Country,
			Category:      model.Category(row.Category),
			MeanEmbedding: emb,
		})
	}
	return sites, nil
}

// UpsertSite inserts or replaces one reference site.
func (c *DBClient) UpsertSite(site model.ReferenceSite) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	emb, err := json.Marshal(site.MeanEmbedding)
	if err != nil {
		return fmt.Errorf("encoding embedding for site %s: %w", site.SiteID, err)
	}

	record := SiteRecord{
		SiteID:    site.SiteID,
		Country:   site.Country,
		Category:  string(site.Category),
		Embedding: emb,
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", site.SiteID).Delete(&SiteRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
}

// SaveResult persists a completed analysis.
func (c *DBClient) SaveResult(result *model.AnalysisResult) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	doc, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding analysis result: %w", err)
	}

	record := AnalysisRecord{
		ID:         result.AnalysisID,
		Status:     result.Status,
		Label:      string(result.Classification.Label),
		Confidence: result.Classification.Confidence,
		Synthetic:  result.Embedding.Synthetic,
		Result:     doc,
	}
	if err := c.DB.Create(&record).Error; err != nil {
		return fmt.Errorf("creating analysis record: %w", err)
	}
	return nil
}

// SaveFailure records a failed analysis with its stable error code.
func (c *DBClient) SaveFailure(analysisID, code, message string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	record := AnalysisRecord{
		ID:        analysisID,
		Status:    model.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  message,
	}
	if err := c.DB.Create(&record).Error; err != nil {
		return fmt.Errorf("creating failure record: %w", err)
	}
	return nil
}

// GetResult fetches a stored analysis by id. A failed analysis returns its
// recorded code and message as a model.Error.
func (c *DBClient) GetResult(analysisID string) (*model.AnalysisResult, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var record AnalysisRecord
	err := c.DB.Where("id = ?", analysisID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.NewError(model.CodeAnalysisNotFound, "analysis %s not found", analysisID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis %s: %w", analysisID, err)
	}

	if record.Status == model.StatusFailed {
		return nil, &model.Error{Code: record.ErrorCode, Message: record.ErrorMsg}
	}

	var result model.AnalysisResult
	if err := json.Unmarshal(record.Result, &result); err != nil {
		return nil, fmt.Errorf("decoding analysis %s: %w", analysisID, err)
	}
	return &result, nil
}

// Counts returns the number of reference sites and analyses, for metrics.
func (c *DBClient) Counts() (sites int64, analyses int64, err error) {
	if c == nil || c.DB == nil {
		return 0, 0, errors.New(errDBClientNil)
	}
	if err := c.DB.Model(&SiteRecord{}).Count(&sites).Error; err != nil {
		return 0, 0, fmt.Errorf("counting sites: %w", err)
	}
	if err := c.DB.Model(&AnalysisRecord{}).Count(&analyses).Error; err != nil {
		return 0, 0, fmt.Errorf("counting analyses: %w", err)
	}
	return sites, analyses, nil
}
