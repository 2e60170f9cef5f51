package main

import (
	"log"
	"os"

	porccircuit "github.com/MuriData/porc-zkproof/circuits/porc"
)

func main() {
	keysDir := "."
	if len(os.Args) > 1 {
		keysDir = os.Args[1]
	}

	if _, err := porccircuit.ExportProofFixture(keysDir); err != nil {
		log.Fatal(err)
	}
}
