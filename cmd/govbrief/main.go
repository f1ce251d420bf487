package main

import (
	"govbrief/cmd/handlers"
	"govbrief/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
