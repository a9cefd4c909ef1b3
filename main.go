package main

import (
	"github.com/Rakhulsr/techstore-api/app/cmd"
	"github.com/Rakhulsr/techstore-api/app/configs"
)

func main() {
	env := configs.LoadEnv()
	logger := configs.SetupLogger(env)

	cmd.RunCli(env, logger)
}
