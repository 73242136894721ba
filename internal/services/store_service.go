package services

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrSlugTaken     = errors.New("slug already in use")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// StoreService owns the operator-facing store surface. SetFeatured is the
// only code path in the repository that writes is_featured; billing handlers
// have no access to it.
type StoreService struct {
	db *gorm.DB
}

func NewStoreService(db *gorm.DB) *StoreService {
	return &StoreService{db: db}
}

func (s *StoreService) CreateStore(req *dto.CreateStoreRequest) (*models.Store, error) {
	name := strings.TrimSpace(req.Name)
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if name == "" || !slugPattern.MatchString(slug) {
		return nil, errors.New("name required and slug must be lowercase-hyphenated")
	}

	var existing models.Store
	if err := s.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return nil, ErrSlugTaken
	}

	store := models.Store{
		Name:    name,
		Slug:    slug,
		Website: req.Website,
		Tier:    models.TierNone,
	}
	if err := s.db.Create(&store).Error; err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return &store, nil
}

func (s *StoreService) GetStore(id uint) (*models.Store, error) {
	var store models.Store
	if err := s.db.First(&store, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &store, nil
}

func (s *StoreService) ListStores() ([]models.Store, error) {
	var stores []models.Store
	if err := s.db.Order("id").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// SetFeatured flips the operator-controlled visibility switch. Billing events
// never reach this flag; a store can be featured with a lapsed window or
// unfeatured while paid up.
func (s *StoreService) SetFeatured(id uint, featured bool) error {
	res := s.db.Model(&models.Store{}).Where("id = ?", id).Update("is_featured", featured)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStoreNotFound
	}
	slog.Info("store featured flag set", "store_id", id, "featured", featured)
	return nil
}
