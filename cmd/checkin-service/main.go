package main

import (
	"os"

	"github.com/empowher/empowher-server/checkinservice"
)

func main() {
	if err := checkinservice.Run(); err != nil {
		os.Exit(1)
	}
}
