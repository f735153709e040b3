package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus-food-api/apperr"
	"campus-food-api/media"
	"campus-food-api/models"
	"campus-food-api/store"
	"campus-food-api/tags"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RestaurantService writes a restaurant together with its menu and tags as
// one unit and compensates media uploads when the unit fails.
type RestaurantService struct {
	db    *gorm.DB
	media media.Store
	log   *zap.SugaredLogger
}

func NewRestaurantService(db *gorm.DB, ms media.Store, log *zap.SugaredLogger) *RestaurantService {
	return &RestaurantService{db: db, media: ms, log: log}
}

// CreatedRestaurant is the result of Create
type CreatedRestaurant struct {
	Restaurant *models.Restaurant `json:"restaurant"`
	Menus      []models.MenuItem  `json:"menus"`
}

// Create persists a new restaurant owned by p with its tags and menu
func (s *RestaurantService) Create(ctx context.Context, p Principal, in RestaurantInput, file *media.File) (*CreatedRestaurant, error) {
	d, err := in.decode()
	if err != nil {
		return nil, err
	}
	r := &models.Restaurant{
		OwnerID:       p.ID,
		Sell:          true,
		BusinessHours: hoursColumn(nil),
		ReviewStats:   models.EmptyReviewStats(),
		GroupStats:    models.EmptyCounts(),
	}
	in.apply(r, d)
	if err := requireDeliveryTerms(in, r.Delivery); err != nil {
		return nil, err
	}
	if err := validateRestaurant(r, d.menu); err != nil {
		return nil, err
	}

	seq, err := store.NextSequence(ctx, s.db, models.RestaurantSequence)
	if err != nil {
		return nil, err
	}
	r.PublicID = seq

	staged, err := s.stage(ctx, file)
	if err != nil {
		return nil, err
	}
	if staged != nil {
		r.Image, r.ImageHandle = staged.URL, staged.Handle
	}

	var menus []models.MenuItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, err := tags.Resolve(ctx, tx, d.tags)
		if err != nil {
			return err
		}
		r.Tags = resolved
		if err := tx.Omit("Tags.*").Create(r).Error; err != nil {
			return fmt.Errorf("failed to insert restaurant: %w", err)
		}
		menus = buildMenu(r.ID, d.menu)
		if len(menus) > 0 {
			if err := tx.Create(&menus).Error; err != nil {
				return fmt.Errorf("failed to insert menu: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Errorw("restaurant create rolled back", "restaurantId", seq, "error", err)
		if staged != nil {
			s.discard(ctx, staged.Handle)
		}
		return nil, err
	}

	s.log.Infow("restaurant created", "id", r.ID, "restaurantId", r.PublicID, "menuItems", len(menus))
	if menus == nil {
		menus = []models.MenuItem{}
	}
	return &CreatedRestaurant{Restaurant: r, Menus: menus}, nil
}

// Update merges in onto the restaurant addressed by key. A present tags or
// menu field replaces the stored list entirely; an absent one leaves it alone.
func (s *RestaurantService) Update(ctx context.Context, p Principal, key string, in RestaurantInput, file *media.File) (*models.Restaurant, error) {
	d, err := in.decode()
	if err != nil {
		return nil, err
	}
	r, err := store.FindRestaurant(s.db.WithContext(ctx), key)
	if err != nil {
		return nil, err
	}
	if !p.CanManage(r) {
		return nil, apperr.Forbidden("only the owner or an admin may edit this restaurant")
	}

	wasDelivery := r.Delivery
	in.apply(r, d)
	if err := requireDeliveryTerms(in, r.Delivery && !wasDelivery); err != nil {
		return nil, err
	}
	if err := validateRestaurant(r, d.menu); err != nil {
		return nil, err
	}

	staged, err := s.stage(ctx, file)
	if err != nil {
		return nil, err
	}
	oldHandle := r.ImageHandle
	var released []string
	if staged != nil {
		r.Image, r.ImageHandle = staged.URL, staged.Handle
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Restaurant{}).Where("id = ?", r.ID).Updates(editableColumns(r)).Error; err != nil {
			return fmt.Errorf("failed to update restaurant: %w", err)
		}
		if d.tagsSet {
			resolved, err := tags.Resolve(ctx, tx, d.tags)
			if err != nil {
				return err
			}
			if err := replaceTags(tx, r, resolved); err != nil {
				return err
			}
		}
		if d.menuSet {
			var old []models.MenuItem
			err := tx.Select("image", "image_handle").
				Where("restaurant_id = ? AND image_handle <> ''", r.ID).Find(&old).Error
			if err != nil {
				return fmt.Errorf("failed to load menu images: %w", err)
			}
			if err := tx.Where("restaurant_id = ?", r.ID).Delete(&models.MenuItem{}).Error; err != nil {
				return fmt.Errorf("failed to clear menu: %w", err)
			}
			menus := buildMenu(r.ID, d.menu)
			released = carryImageHandles(menus, old)
			if len(menus) > 0 {
				if err := tx.Create(&menus).Error; err != nil {
					return fmt.Errorf("failed to insert menu: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		s.log.Errorw("restaurant update rolled back", "id", r.ID, "error", err)
		if staged != nil {
			s.discard(ctx, staged.Handle)
		}
		return nil, err
	}
	if staged != nil && oldHandle != "" {
		released = append(released, oldHandle)
	}
	for _, h := range released {
		s.discard(ctx, h)
	}

	s.log.Infow("restaurant updated", "id", r.ID, "menuReplaced", d.menuSet, "tagsReplaced", d.tagsSet)
	return s.load(ctx, r.ID, false)
}

// AddMenuItem creates a single menu item on an existing restaurant
func (s *RestaurantService) AddMenuItem(ctx context.Context, p Principal, key string, in MenuInput, file *media.File) (*models.MenuItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	r, err := store.FindRestaurant(s.db.WithContext(ctx), key)
	if err != nil {
		return nil, err
	}
	if !p.CanManage(r) {
		return nil, apperr.Forbidden("only the owner or an admin may edit this menu")
	}

	staged, err := s.stage(ctx, file)
	if err != nil {
		return nil, err
	}
	item := buildMenu(r.ID, []MenuInput{in})[0]
	if staged != nil {
		item.Image, item.ImageHandle = staged.URL, staged.Handle
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if staged != nil {
			s.discard(ctx, staged.Handle)
		}
		return nil, fmt.Errorf("failed to insert menu item: %w", err)
	}
	return &item, nil
}

// SetDeleted soft-deletes or restores a restaurant together with its menu
func (s *RestaurantService) SetDeleted(ctx context.Context, p Principal, key string, deleted bool) (*models.Restaurant, error) {
	r, err := store.FindRestaurantAny(s.db.WithContext(ctx), key)
	if err != nil {
		return nil, err
	}
	if !p.CanManage(r) {
		return nil, apperr.Forbidden("only the owner or an admin may delete this restaurant")
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Restaurant{}).Where("id = ?", r.ID).Update("is_deleted", deleted).Error; err != nil {
			return err
		}
		return tx.Model(&models.MenuItem{}).Where("restaurant_id = ?", r.ID).Update("is_deleted", deleted).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle restaurant %s: %w", r.ID, err)
	}
	return s.load(ctx, r.ID, true)
}

// Delete removes a restaurant permanently together with its menu, tag links
// and reviews. Orders keep their line item snapshots. Stored images are
// released once the transaction has committed.
func (s *RestaurantService) Delete(ctx context.Context, key string) error {
	r, err := store.FindRestaurantAny(s.db.WithContext(ctx), key)
	if err != nil {
		return err
	}
	var handles []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.MenuItem{}).Where("restaurant_id = ? AND image_handle <> ''", r.ID).
			Pluck("image_handle", &handles).Error
		if err != nil {
			return fmt.Errorf("failed to load menu images: %w", err)
		}
		if err := tx.Where("restaurant_id = ?", r.ID).Delete(&models.MenuItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete menu: %w", err)
		}
		if err := tx.Where("restaurant_id = ?", r.ID).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}
		if err := tx.Model(r).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to unlink tags: %w", err)
		}
		if err := tx.Delete(&models.Restaurant{}, "id = ?", r.ID).Error; err != nil {
			return fmt.Errorf("failed to delete restaurant: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Errorw("restaurant delete rolled back", "id", r.ID, "error", err)
		return err
	}
	if r.ImageHandle != "" {
		handles = append(handles, r.ImageHandle)
	}
	for _, h := range handles {
		s.discard(ctx, h)
	}
	s.log.Infow("restaurant deleted", "id", r.ID, "restaurantId", r.PublicID, "images", len(handles))
	return nil
}

// ListQuery filters the restaurant listing
type ListQuery struct {
	Q              string
	Category       string
	Delivery       *bool
	Sell           *bool
	Page           int
	Size           int
	IncludeDeleted bool
}

// List returns a page of restaurants and the total match count
func (s *RestaurantService) List(ctx context.Context, q ListQuery) ([]models.Restaurant, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Restaurant{}).Scopes(store.Visible(q.IncludeDeleted))
	if term := strings.TrimSpace(q.Q); term != "" {
		like := "%" + term + "%"
		query = query.Where("name LIKE ? OR address LIKE ?", like, like)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.Delivery != nil {
		query = query.Where("delivery = ?", *q.Delivery)
	}
	if q.Sell != nil {
		query = query.Where("sell = ?", *q.Sell)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count restaurants: %w", err)
	}
	var out []models.Restaurant
	err := query.Preload("Tags", store.Active).Scopes(store.Paginate(q.Page, q.Size)).
		Order("public_id ASC").Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return out, total, nil
}

// Get returns a restaurant by either key with its tags and active menu
func (s *RestaurantService) Get(ctx context.Context, key string, includeDeleted bool) (*models.Restaurant, error) {
	find := store.FindRestaurant
	if includeDeleted {
		find = store.FindRestaurantAny
	}
	r, err := find(s.db.WithContext(ctx), key)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, r.ID, includeDeleted)
}

// Menu returns the active menu items of a restaurant
func (s *RestaurantService) Menu(ctx context.Context, key string) ([]models.MenuItem, error) {
	r, err := store.FindRestaurant(s.db.WithContext(ctx), key)
	if err != nil {
		return nil, err
	}
	var items []models.MenuItem
	err = s.db.WithContext(ctx).Scopes(store.Active).Where("restaurant_id = ?", r.ID).
		Order("created_at ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	return items, nil
}

func (s *RestaurantService) load(ctx context.Context, id string, includeDeleted bool) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.db.WithContext(ctx).
		Preload("Tags", store.Active).
		Preload("Menu", store.Visible(includeDeleted)).
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload restaurant %s: %w", id, err)
	}
	return &r, nil
}

// stage uploads file, mapping rejected content to a validation error
func (s *RestaurantService) stage(ctx context.Context, file *media.File) (*media.Object, error) {
	if file == nil {
		return nil, nil
	}
	obj, err := s.media.Upload(ctx, *file)
	if errors.Is(err, media.ErrTooLarge) || errors.Is(err, media.ErrUnsupportedType) {
		return nil, apperr.Validation("image: %v", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	return &obj, nil
}

// discard deletes a media object on a best-effort basis
func (s *RestaurantService) discard(ctx context.Context, handle string) {
	if err := s.media.Delete(context.WithoutCancel(ctx), handle); err != nil {
		s.log.Errorw("failed to delete media", "handle", handle, "error", err)
	}
}

func replaceTags(tx *gorm.DB, r *models.Restaurant, resolved []models.Tag) error {
	assoc := tx.Model(r).Association("Tags")
	var err error
	if len(resolved) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(resolved)
	}
	if err != nil {
		return fmt.Errorf("failed to replace tags: %w", err)
	}
	return nil
}

func editableColumns(r *models.Restaurant) map[string]any {
	return map[string]any{
		"name":            r.Name,
		"phone":           r.Phone,
		"address":         r.Address,
		"link":            r.Link,
		"category":        r.Category,
		"delivery":        r.Delivery,
		"delivery_price":  r.DeliveryPrice,
		"delivery_number": r.DeliveryNumber,
		"business_hours":  r.BusinessHours,
		"order_time":      r.OrderTime,
		"sell":            r.Sell,
		"menu_image":      r.MenuImage,
		"image":           r.Image,
		"image_handle":    r.ImageHandle,
	}
}

// carryImageHandles hands the stored image of a replaced menu item to the new
// item showing the same URL and returns the handles nobody references anymore.
func carryImageHandles(menus []models.MenuItem, old []models.MenuItem) []string {
	byURL := lo.SliceToMap(old, func(m models.MenuItem) (string, string) { return m.Image, m.ImageHandle })
	for i := range menus {
		if h, ok := byURL[menus[i].Image]; ok && menus[i].Image != "" {
			menus[i].ImageHandle = h
			delete(byURL, menus[i].Image)
		}
	}
	return lo.Values(byURL)
}

func buildMenu(restaurantID string, in []MenuInput) []models.MenuItem {
	items := make([]models.MenuItem, 0, len(in))
	for _, m := range in {
		t := m.Tags
		if t == nil {
			t = []string{}
		}
		items = append(items, models.MenuItem{
			RestaurantID: restaurantID,
			Name:         strings.TrimSpace(m.Name),
			Price:        *m.Price,
			Tags:         datatypes.NewJSONSlice(t),
			Image:        m.Image,
			OrderStats:   models.EmptyCounts(),
		})
	}
	return items
}
