package db

import (
	"encoding/base64"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var demoSpecies = []string{
	"Bass", "Trout", "Pike", "Carp", "Perch", "Salmon", "Catfish", "Mackerel",
}

// SeedDemoData resets both tables and populates them with demo users and
// catches. Membership lists are rebuilt from the inserted fish ids so the
// data starts consistent. Development tooling only.
func SeedDemoData(gdb *gorm.DB, users, catchesPerUser int) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	if err := gdb.Exec("DELETE FROM fish").Error; err != nil {
		return fmt.Errorf("failed to clear fish: %w", err)
	}
	if err := gdb.Exec("DELETE FROM users").Error; err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	// sqlite_sequence only exists after the first AUTOINCREMENT insert
	_ = gdb.Exec("DELETE FROM sqlite_sequence WHERE name IN ('fish', 'users')").Error

	log.Println("Cleared existing data")

	for i := 0; i < users; i++ {
		user := User{
			Name:    gofakeit.Name(),
			Email:   gofakeit.Email(),
			FishIDs: FishIDs{},
		}
		if err := gdb.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		ids := make(FishIDs, 0, catchesPerUser)
		for j := 0; j < catchesPerUser; j++ {
			caught := time.Now().UTC().AddDate(0, 0, -r.Intn(365))

			fish := Fish{
				Name:         gofakeit.PetName(),
				Type:         demoSpecies[r.Intn(len(demoSpecies))],
				Date:         caught.Format("2006-01-02"),
				Latitude:     gofakeit.Latitude(),
				Longitude:    gofakeit.Longitude(),
				LocationName: gofakeit.City(),
				Photo:        demoPhoto(r),
				CreatedAt:    caught.Format(time.RFC3339),
				Writer:       user.ID,
				Notes:        gofakeit.Sentence(6),
			}
			if err := gdb.Create(&fish).Error; err != nil {
				return fmt.Errorf("failed to seed fish: %w", err)
			}
			ids = append(ids, fish.ID)
		}

		if err := gdb.Model(&User{}).Where("id = ?", user.ID).Update("fish_ids", ids).Error; err != nil {
			return fmt.Errorf("failed to write membership list: %w", err)
		}
	}

	log.Printf("Seeded %d users with %d catches each.", users, catchesPerUser)
	return nil
}

// demoPhoto fakes a small base64 payload; real callers store encoded camera
// output here.
func demoPhoto(r *rand.Rand) string {
	buf := make([]byte, 64)
	r.Read(buf)
	return base64.StdEncoding.EncodeToString(buf)
}
