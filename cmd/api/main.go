package main

import (
	"context"
	"log"

	"github.com/Apurer/campus-canteen/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("canteen api: %v", err)
	}
}
