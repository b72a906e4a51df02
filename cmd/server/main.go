package main

import (
	"github.com/eleven-am/helmet-detector/internal/bootstrap"
)

// @title Helmet Detector API
// @version 1.0.0
// @description Detects riders without helmets in images and videos and reads the offending number plate

// @BasePath /

//go:generate swag init -g main.go -d ./,../../internal -o ../../docs

func main() {
	bootstrap.Run()
}
