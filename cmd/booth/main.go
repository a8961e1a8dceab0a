package main

import (
	stdLog "log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Astemirdum/booth-service/booth/app"
	"github.com/Astemirdum/booth-service/booth/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", err)
	}
	app.Run(config.NewConfig())
}
