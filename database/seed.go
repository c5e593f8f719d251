package database

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"classroom-messenger/model"
)

type seedUser struct {
	name     string
	email    string
	password string
}

var defaultUsers = []seedUser{
	{"Austin Brown", "abrown9034@conestogac.on.ca", "password1"},
	{"Khemara Oeun", "koeun8402@conestogac.on.ca", "password2"},
	{"Amanda Esteves", "aesteves3831@conestogac.on.ca", "password3"},
	{"Tristan Lagace", "tlagace9030@conestogac.on.ca", "password4"},
}

var defaultCourses = []string{
	"Web Programming",
	"Mobile Development",
	"User Experience",
	"Programming Concepts II",
	"Database:SQL",
}

// Seed fills empty user and course tables with the classroom defaults so a
// fresh deployment is usable right away.
func Seed(db *gorm.DB) {
	var users int64
	db.Model(&model.User{}).Count(&users)
	if users == 0 {
		for i, u := range defaultUsers {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("seed: hash password for %s: %v", u.email, err)
				continue
			}
			db.Create(&model.User{
				Username:    fmt.Sprintf("student%d", i+1),
				Email:       u.email,
				DisplayName: u.name,
				Password:    string(hash),
				Role:        "user",
				UserType:    "student",
			})
		}
		log.Printf("seeded %d users", len(defaultUsers))
	}

	var courses int64
	db.Model(&model.Course{}).Count(&courses)
	if courses == 0 {
		for _, name := range defaultCourses {
			db.Create(&model.Course{Name: name})
		}
		log.Printf("seeded %d courses", len(defaultCourses))
	}
}
