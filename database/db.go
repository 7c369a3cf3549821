package database

import (
	"database/sql"
	"log"
	"scene-index-service/config"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDB opens the scene catalog connection.
func InitDB() error {
	db, err := sql.Open("postgres", config.Cfg.DB.ConnString())
	if err != nil {
		return err
	}
	if err = db.Ping(); err != nil {
		return err
	}
	DB = db
	log.Println("Scene catalog connected.")
	return nil
}
