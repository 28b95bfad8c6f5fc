package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/fishonary/catalog/internal/db"
	caterr "github.com/fishonary/catalog/internal/errors"
	"github.com/fishonary/catalog/internal/logger"
)

// Location is the reverse-geocoded capture point supplied fully formed by
// the caller. The store persists it verbatim.
type Location struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// CreateFishParams carries the caller-supplied fields of a new catch record.
type CreateFishParams struct {
	Name     string
	Type     string
	Photo    string // base64 image payload, stored inline
	Location Location
	Date     string // YYYY-MM-DD by caller convention, not parsed here
	WriterID uint64
	Notes    string
}

// CatalogRepository owns all reads and writes to the user and fish tables
// and maintains the membership invariant between them: after every completed
// write, a user's fish_ids list holds exactly the ids of the fish rows whose
// writer is that user.
//
// Multi-statement mutations run inside a single transaction and under a
// store-wide mutex. The app is a single logical writer, but overlapping
// async calls could otherwise interleave the read-modify-write of a
// membership list and lose an append.
type CatalogRepository struct {
	db  *gorm.DB
	log *slog.Logger
	mu  sync.Mutex
}

// NewCatalogRepository creates a new repository bound to the given DB
// connection. A nil logger falls back to the global one.
func NewCatalogRepository(gdb *gorm.DB, log *slog.Logger) *CatalogRepository {
	if log == nil {
		log = logger.L()
	}
	return &CatalogRepository{db: gdb, log: log}
}

// FindUserByEmail returns the user with the given email, or nil when no row
// matches. Absence is not an error.
func (r *CatalogRepository) FindUserByEmail(ctx context.Context, email string) (*db.User, error) {
	if email == "" {
		return nil, caterr.Validation("email must not be empty")
	}

	var user db.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, caterr.Map(err)
	}
	return &user, nil
}

// CreateUser inserts a new account row with an empty membership list, then
// re-reads and returns the stored row. Callers are expected to check
// FindUserByEmail first; the unique email index still rejects a duplicate
// defensively, reported as a conflict.
func (r *CatalogRepository) CreateUser(ctx context.Context, email, name string) (*db.User, error) {
	if email == "" || name == "" {
		return nil, caterr.Validation("email and name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user := db.User{Name: name, Email: email, FishIDs: db.FishIDs{}}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, caterr.Map(err)
	}

	var created db.User
	if err := r.db.WithContext(ctx).First(&created, user.ID).Error; err != nil {
		return nil, caterr.Map(err)
	}
	return &created, nil
}

// UpdateUserName changes only the display name and returns the updated row.
func (r *CatalogRepository) UpdateUserName(ctx context.Context, userID uint64, name string) (*db.User, error) {
	if name == "" {
		return nil, caterr.Validation("name must not be empty")
	}
	return r.updateUser(ctx, userID, map[string]interface{}{"name": name})
}

// UpdateUserPhoto replaces the profile photo payload. An empty string clears
// it.
func (r *CatalogRepository) UpdateUserPhoto(ctx context.Context, userID uint64, photo string) (*db.User, error) {
	return r.updateUser(ctx, userID, map[string]interface{}{"photo": photo})
}

// UpdateUserSubscription sets the subscription fields. The store treats them
// as opaque state; no integrity rule depends on them.
func (r *CatalogRepository) UpdateUserSubscription(ctx context.Context, userID uint64, subscribed bool, subscribeAt string, period int) (*db.User, error) {
	return r.updateUser(ctx, userID, map[string]interface{}{
		"is_subscriber":    subscribed,
		"subscribe_at":     subscribeAt,
		"subscribe_period": period,
	})
}

func (r *CatalogRepository) updateUser(ctx context.Context, userID uint64, fields map[string]interface{}) (*db.User, error) {
	if userID == 0 {
		return nil, caterr.Validation("user id must not be zero")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return nil, caterr.Map(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, caterr.NotFound("user", userID)
	}

	var user db.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, caterr.Map(err)
	}
	return &user, nil
}

// DeleteUser removes the account row and every catch written by it. The
// schema cascades the fish rows via the writer foreign key; the explicit
// delete keeps the behavior independent of the connection's pragma state.
func (r *CatalogRepository) DeleteUser(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return caterr.Validation("user id must not be zero")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&db.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return caterr.NotFound("user", userID)
		}
		return tx.Where("writer = ?", userID).Delete(&db.Fish{}).Error
	})
	return caterr.Map(err)
}

// CreateFish inserts a catch record and appends its id to the writer's
// membership list as one atomic unit. A failure after the insert rolls the
// insert back, so no fish row is ever observable without a matching
// membership entry.
func (r *CatalogRepository) CreateFish(ctx context.Context, p CreateFishParams) (*db.Fish, error) {
	switch {
	case p.Type == "":
		return nil, caterr.Validation("type must not be empty")
	case p.Photo == "":
		return nil, caterr.Validation("photo must not be empty")
	case p.Date == "":
		return nil, caterr.Validation("date must not be empty")
	case p.WriterID == 0:
		return nil, caterr.Validation("writer id must not be zero")
	case p.Location.Latitude < -90 || p.Location.Latitude > 90:
		return nil, caterr.Validation("latitude out of range")
	case p.Location.Longitude < -180 || p.Location.Longitude > 180:
		return nil, caterr.Validation("longitude out of range")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var created db.Fish
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fish := db.Fish{
			Name:         p.Name,
			Type:         p.Type,
			Date:         p.Date,
			Latitude:     p.Location.Latitude,
			Longitude:    p.Location.Longitude,
			LocationName: p.Location.Name,
			Photo:        p.Photo,
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
			Writer:       p.WriterID,
			Notes:        p.Notes,
		}
		if err := tx.Create(&fish).Error; err != nil {
			return err
		}

		var writer db.User
		if err := tx.First(&writer, p.WriterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return caterr.NotFound("user", p.WriterID)
			}
			return err
		}

		ids := append(writer.FishIDs, fish.ID)
		if err := tx.Model(&db.User{}).Where("id = ?", p.WriterID).Update("fish_ids", ids).Error; err != nil {
			return err
		}

		return tx.First(&created, fish.ID).Error
	})
	if err != nil {
		return nil, caterr.Map(err)
	}
	return &created, nil
}

// GetFish returns the catch with the given id, or nil when absent. Absence
// is not an error; an id that matches no row, zero included, reads as nil.
func (r *CatalogRepository) GetFish(ctx context.Context, id uint64) (*db.Fish, error) {
	var fish db.Fish
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fish).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, caterr.Map(err)
	}
	return &fish, nil
}

// GetFishForUser resolves the user's membership list to full catch rows, in
// list order. An id that no longer resolves is a consistency violation left
// behind by an earlier failure; it is logged and skipped so the browsing
// screens keep working instead of failing the whole read.
func (r *CatalogRepository) GetFishForUser(ctx context.Context, userID uint64) ([]db.Fish, error) {
	if userID == 0 {
		return nil, caterr.Validation("user id must not be zero")
	}

	var user db.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, caterr.NotFound("user", userID)
		}
		return nil, caterr.Map(err)
	}

	out := make([]db.Fish, 0, len(user.FishIDs))
	for _, id := range user.FishIDs {
		var fish db.Fish
		err := r.db.WithContext(ctx).First(&fish, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("membership entry resolved to nothing, skipping",
				"user_id", userID, "fish_id", id)
			continue
		}
		if err != nil {
			return nil, caterr.Map(err)
		}
		out = append(out, fish)
	}
	return out, nil
}

// GetFishByDate returns a user's catches for one calendar date. Dates match
// by lexical equality of the caller-supplied YYYY-MM-DD string.
func (r *CatalogRepository) GetFishByDate(ctx context.Context, userID uint64, date string) ([]db.Fish, error) {
	if userID == 0 {
		return nil, caterr.Validation("user id must not be zero")
	}
	if date == "" {
		return nil, caterr.Validation("date must not be empty")
	}

	var out []db.Fish
	err := r.db.WithContext(ctx).
		Where("writer = ? AND date = ?", userID, date).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, caterr.Map(err)
	}
	return out, nil
}

// DeleteFish removes a catch row and its entry in the owner's membership
// list as one atomic unit. A row owned by a different user is reported as
// not found: rewriting a non-owner's list would break the membership
// invariant for the real owner.
func (r *CatalogRepository) DeleteFish(ctx context.Context, id, ownerID uint64) error {
	if id == 0 {
		return caterr.Validation("fish id must not be zero")
	}
	if ownerID == 0 {
		return caterr.Validation("owner id must not be zero")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fish db.Fish
		if err := tx.First(&fish, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return caterr.NotFound("fish", id)
			}
			return err
		}
		if fish.Writer != ownerID {
			return caterr.NotFound("fish", id)
		}

		if err := tx.Delete(&db.Fish{}, id).Error; err != nil {
			return err
		}

		var owner db.User
		if err := tx.First(&owner, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return caterr.NotFound("user", ownerID)
			}
			return err
		}

		return tx.Model(&db.User{}).
			Where("id = ?", ownerID).
			Update("fish_ids", owner.FishIDs.Without(id)).Error
	})
	return caterr.Map(err)
}

// ListAllFishCoordinates returns the coordinates and photo of every catch in
// the store, with no ownership filter. Feeds the map overview.
func (r *CatalogRepository) ListAllFishCoordinates(ctx context.Context) ([]db.FishCoordinate, error) {
	var coords []db.FishCoordinate
	err := r.db.WithContext(ctx).
		Model(&db.Fish{}).
		Select("latitude, longitude, photo").
		Order("id").
		Scan(&coords).Error
	if err != nil {
		return nil, caterr.Map(err)
	}
	return coords, nil
}
