package messenger

import (
	"log"
	"os"

	"gorm.io/gorm"
)

// Service is the messaging core: conversation directory, message store,
// summary builder and fan-out policy. Every operation takes the caller's
// user id explicitly; identity resolution happens once at the boundary.
type Service struct {
	db  *gorm.DB
	pub Publisher
	log *log.Logger
}

func NewService(db *gorm.DB, pub Publisher) *Service {
	return &Service{
		db:  db,
		pub: pub,
		log: log.New(os.Stdout, "messenger: ", log.LstdFlags),
	}
}
