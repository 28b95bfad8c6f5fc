package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FishIDs stores a user's catch ids as a JSON array in a single TEXT column.
// The slice is ordered (append order = catch creation order) and is the
// maintained membership index over Fish.Writer: after every completed write
// it holds exactly the ids of the fish rows written by the owning user.
type FishIDs []uint64

func (ids FishIDs) Value() (driver.Value, error) {
	if ids == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uint64(ids))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (ids *FishIDs) Scan(value interface{}) error {
	if ids == nil {
		return fmt.Errorf("db.FishIDs: Scan on nil pointer")
	}
	if value == nil {
		*ids = FishIDs{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("db.FishIDs: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*ids = FishIDs{}
		return nil
	}

	var arr []uint64
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		*ids = arr
		return nil
	}

	// legacy rows stored a bare id instead of an array
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		*ids = FishIDs{n}
		return nil
	}

	return fmt.Errorf("db.FishIDs: cannot decode %q", raw)
}

// Contains reports whether id is in the list.
func (ids FishIDs) Contains(id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with every occurrence of id removed.
func (ids FishIDs) Without(id uint64) FishIDs {
	out := make(FishIDs, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// User is an account row. The id is assigned by the store and immutable;
// email is the unique identity key resolved by the auth collaborator.
type User struct {
	ID              uint64  `gorm:"primaryKey;autoIncrement"`
	Name            string  `gorm:"size:128;default:Fisher"`
	Email           string  `gorm:"uniqueIndex;size:128;not null"`
	Photo           string  `gorm:"type:text"`
	FishIDs         FishIDs `gorm:"column:fish_ids;type:text;not null"`
	IsSubscriber    bool    `gorm:"not null"`
	SubscribeAt     string  `gorm:"size:32"`
	SubscribePeriod int     `gorm:"not null"`
}

// Fish is a single catch record. Photo holds the base64 image payload inline;
// the store never decodes or validates image content. CreatedAt is set once
// at insert and never changes.
type Fish struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement"`
	Name         string  `gorm:"size:128"`
	Type         string  `gorm:"size:64;not null"`
	Date         string  `gorm:"size:10;not null;index"`
	Latitude     float64 `gorm:"not null"`
	Longitude    float64 `gorm:"not null"`
	LocationName string  `gorm:"not null"`
	Photo        string  `gorm:"type:text;not null"`
	CreatedAt    string  `gorm:"size:32;not null"`
	Writer       uint64  `gorm:"not null;index"`
	Notes        string  `gorm:"not null"`
}

// FishCoordinate is the denormalized map/overview projection of a catch.
type FishCoordinate struct {
	Latitude  float64
	Longitude float64
	Photo     string
}
