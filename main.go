package main

import (
	"fmt"

	"github.com/CrestPay/CrestPay-Backend/api"
	"github.com/CrestPay/CrestPay-Backend/utils"
)

var envPath string = "."

func main() {

	config, err := utils.LoadConfig(envPath)
	if err != nil {
		panic(fmt.Sprintf("Could not load config: %v", err))
	}

	server := api.NewServer(envPath)
	server.Start(config.ServerPort)
}
