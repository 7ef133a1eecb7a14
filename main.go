package main

import (
	"log"

	"github.com/akarpov/fare-mailer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
