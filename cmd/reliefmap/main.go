package main

import "github.com/MeKo-Tech/reliefmap/internal/cmd"

func main() {
	cmd.Execute()
}
