package main

import (
	"context"
	"log"

	"github.com/Apurer/sales-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("sales api exited: %v", err)
	}
}
