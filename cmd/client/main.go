package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/geosync/internal/client/cli"
	"github.com/dmitrijs2005/geosync/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer app.Close()

	app.Run(ctx)

}
