package main

import (
	"fmt"
	"os"

	"rental-service/internal/store"
	"rental-service/pkg/config"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
)

func main() {
	open := func() (*store.Store, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		logger.InitLogger(cfg)

		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, err
		}
		return store.New(db), nil
	}

	if err := newRootCmd(open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
